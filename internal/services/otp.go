package services

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

var otpSpace = big.NewInt(1000000)

// OTPGenerator — 6-значные числовые коды, равномерно по 000000–999999.
type OTPGenerator struct{}

// Generate возвращает код и его bcrypt-хэш. Сам код нигде не сохраняется —
// в хранилище попадает только хэш.
func (OTPGenerator) Generate() (code, hash string, err error) {
	n, err := rand.Int(rand.Reader, otpSpace)
	if err != nil {
		return "", "", fmt.Errorf("otp generate: %w", err)
	}
	code = fmt.Sprintf("%06d", n.Int64())

	h, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", "", fmt.Errorf("otp hash: %w", err)
	}
	return code, string(h), nil
}

// Matches сверяет введённый код с сохранённым хэшем.
func (OTPGenerator) Matches(hash, code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
