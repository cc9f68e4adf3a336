package identity

import (
	"crypto/rand"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes and verifies passwords. Hashes are opaque strings.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// Bcrypt hashes with golang.org/x/crypto/bcrypt.
type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(hash), err
}

func (b Bcrypt) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

const tempAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// TempPasswordLen is the length of generated passwords.
const TempPasswordLen = 8

// TempPassword returns a random lower-case alphanumeric password.
func TempPassword() string {
	out := make([]byte, TempPasswordLen)
	max := big.NewInt(int64(len(tempAlphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("crypto/rand failed: " + err.Error())
		}
		out[i] = tempAlphabet[idx.Int64()]
	}
	return string(out)
}
