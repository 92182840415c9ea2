package security

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenMalformed is returned when a token's signature or structure is invalid.
var ErrTokenMalformed = errors.New("token malformed")

// AccessClaims holds JWT claims for the access token. Subject is the username;
// UserID is the optional numeric user identifier (0 when absent).
type AccessClaims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"uid,omitempty"`
}

// TokenProvider issues and validates stateless signed access tokens using
// RS256 or ES256 (private/public key). Access tokens are never persisted and
// never revoked; they rely on short expiry.
type TokenProvider struct {
	privateKey crypto.Signer
	publicKey  crypto.PublicKey
	issuer     string
	audience   string
	accessTTL  time.Duration
	nowF       func() time.Time
}

// NewTokenProvider returns a TokenProvider that signs with the given private
// key (RS256 or ES256). Key material is loaded once at startup; rotating keys
// means constructing a new provider, no code changes.
func NewTokenProvider(privateKey crypto.Signer, publicKey crypto.PublicKey, issuer, audience string, accessTTL time.Duration) *TokenProvider {
	return &TokenProvider{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		nowF:       func() time.Time { return time.Now().UTC() },
	}
}

// Generate issues an access token for subject (username) with issued-at = now
// and expiry = now + access TTL. userID is optional; pass 0 to omit the claim.
// Returns the signed token and its expiration time.
func (p *TokenProvider) Generate(subject string, userID int64) (token string, expiresAt time.Time, err error) {
	now := p.nowF()
	expiresAt = now.Add(p.accessTTL)
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID,
	}
	token, err = p.sign(claims)
	return token, expiresAt, err
}

func (p *TokenProvider) sign(claims jwt.Claims) (string, error) {
	var method jwt.SigningMethod
	switch p.privateKey.Public().(type) {
	case *rsa.PublicKey:
		method = jwt.SigningMethodRS256
	case *ecdsa.PublicKey:
		method = jwt.SigningMethodES256
	default:
		return "", ErrTokenMalformed
	}
	t := jwt.NewWithClaims(method, claims)
	return t.SignedString(p.privateKey)
}

// parse verifies signature and structure only. Expiry is checked by Validate
// against the provider clock, so claims of an expired but otherwise
// well-formed token remain extractable.
func (p *TokenProvider) parse(tokenString string) (*AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); ok {
			return p.publicKey, nil
		}
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); ok {
			return p.publicKey, nil
		}
		return nil, ErrTokenMalformed
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, ErrTokenMalformed
	}
	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

// ExtractUsername returns the token's subject, or ErrTokenMalformed.
func (p *TokenProvider) ExtractUsername(tokenString string) (string, error) {
	claims, err := p.parse(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ExtractUserID returns the numeric user id claim, or 0 if the token carries
// none. Returns ErrTokenMalformed on an invalid token.
func (p *TokenProvider) ExtractUserID(tokenString string) (int64, error) {
	claims, err := p.parse(tokenString)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

// ExtractExpiration returns the token's expiry instant, or ErrTokenMalformed.
func (p *TokenProvider) ExtractExpiration(tokenString string) (time.Time, error) {
	claims, err := p.parse(tokenString)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrTokenMalformed
	}
	return claims.ExpiresAt.Time, nil
}

// Validate reports whether the token has a valid signature, matches
// expectedSubject, carries the configured issuer and audience, and has not
// expired at the provider's current time.
func (p *TokenProvider) Validate(tokenString, expectedSubject string) bool {
	claims, err := p.parse(tokenString)
	if err != nil {
		return false
	}
	if claims.Subject != expectedSubject {
		return false
	}
	if claims.Issuer != p.issuer {
		return false
	}
	audOk := false
	for _, a := range claims.Audience {
		if a == p.audience {
			audOk = true
			break
		}
	}
	if !audOk {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return p.nowF().Before(claims.ExpiresAt.Time)
}
