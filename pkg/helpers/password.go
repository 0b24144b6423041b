package helpers

import "golang.org/x/crypto/bcrypt"

// Hasher hashes plaintext passwords with bcrypt at a fixed cost.
// bcrypt salts every call, so hashing the same input twice gives different results.
type Hasher struct {
	Cost int
}

// NewHasher returns a Hasher; an out-of-range cost falls back to bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{Cost: cost}
}

// Hash hashes the plain text password using bcrypt
func (h *Hasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
