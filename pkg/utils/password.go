package utils

import "golang.org/x/crypto/bcrypt"

// bcrypt cost 固定 10，与存量哈希兼容
const bcryptCost = 10

func HashPassword(pw string) string {
	b, _ := bcrypt.GenerateFromPassword([]byte(pw), bcryptCost)
	return string(b)
}
func CheckPassword(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}
