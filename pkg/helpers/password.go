package helpers

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a plaintext password with bcrypt. The result embeds
// its own salt and cost; the operation is one-way.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareHashAndPassword reports whether plain matches the bcrypt hash.
// A mismatch is not an error, it is simply false.
func CompareHashAndPassword(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
