package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword produces a bcrypt digest with a fresh random salt. Two hashes
// of the same plaintext never match byte for byte.
func HashPassword(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// VerifyPassword recomputes the hash using the salt and cost embedded in the
// digest and compares in constant time. A malformed digest verifies as false.
func VerifyPassword(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
