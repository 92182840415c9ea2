package security

import "golang.org/x/crypto/bcrypt"

// Hasher wraps bcrypt for credential storage. The zero value is unusable;
// construct via NewHasher.
type Hasher struct {
	Cost int
}

// NewHasher returns a Hasher with cost clamped into bcrypt's supported range.
// Non-positive cost falls back to the bcrypt default. Tests pass bcrypt.MinCost
// to keep hashing fast.
func NewHasher(cost int) *Hasher {
	switch {
	case cost <= 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &Hasher{Cost: cost}
}

// Hash returns the bcrypt hash of password, ready for storage. The plaintext
// must never be logged or persisted.
func (h *Hasher) Hash(password []byte) (string, error) {
	out, err := bcrypt.GenerateFromPassword(password, h.Cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Compare checks password against a stored hash. A nil return means a match;
// bcrypt.ErrMismatchedHashAndPassword means the password is wrong.
func (h *Hasher) Compare(hash string, password []byte) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), password)
}
