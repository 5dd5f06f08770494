package utils

import (
	"fmt"
	"math/rand"
)

// GenerateOTPCode returns a 6-digit code for email verification.
func GenerateOTPCode() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}
