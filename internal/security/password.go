package security

import "golang.org/x/crypto/bcrypt"

// Cost 12 keeps a hash around 250ms on current hardware, slow enough for
// stolen-dump resistance without hurting interactive sign-in.
const bcryptCost = 12

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcryptCost)
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
