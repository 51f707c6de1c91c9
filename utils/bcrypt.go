package utils

import "golang.org/x/crypto/bcrypt"

// bcrypt cost shared by user passwords and sync credential secrets.
const secretHashCost = bcrypt.DefaultCost

func HashSecret(s string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(s), secretHashCost)
}

func CompareSecret(hashed string, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
