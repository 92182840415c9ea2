package security

import (
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"strings"
)

// ErrInvalidKey is returned when key material cannot be decoded or is of an
// unsupported type.
var ErrInvalidKey = errors.New("invalid key")

// decodeKeyBlock accepts inline PEM or a path to a PEM file and returns the
// first decoded block.
func decodeKeyBlock(s string) (*pem.Block, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrInvalidKey
	}
	raw := []byte(s)
	if !strings.HasPrefix(s, "-----BEGIN") {
		var err error
		raw, err = os.ReadFile(s)
		if err != nil {
			return nil, err
		}
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, ErrInvalidKey
	}
	return block, nil
}

// ParsePrivateKey parses an RSA or ECDSA private key from inline PEM or a
// PEM file path. PKCS#1, PKCS#8, and SEC1 encodings are accepted.
func ParsePrivateKey(s string) (crypto.Signer, error) {
	block, err := decodeKeyBlock(s)
	if err != nil {
		return nil, err
	}
	switch block.Type {
	case "RSA PRIVATE KEY":
		return x509.ParsePKCS1PrivateKey(block.Bytes)
	case "EC PRIVATE KEY":
		return x509.ParseECPrivateKey(block.Bytes)
	case "PRIVATE KEY":
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		if signer, ok := key.(crypto.Signer); ok {
			return signer, nil
		}
		return nil, ErrInvalidKey
	}
	return nil, ErrInvalidKey
}

// ParsePublicKey parses an RSA or ECDSA public key from inline PEM or a PEM
// file path.
func ParsePublicKey(s string) (crypto.PublicKey, error) {
	block, err := decodeKeyBlock(s)
	if err != nil {
		return nil, err
	}
	switch block.Type {
	case "RSA PUBLIC KEY":
		return x509.ParsePKCS1PublicKey(block.Bytes)
	case "PUBLIC KEY":
		return x509.ParsePKIXPublicKey(block.Bytes)
	}
	return nil, ErrInvalidKey
}
