package utils

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"unicode"
)

const (
	Lowercase = "abcdefghijklmnopqrstuvwxyz"
	Uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	Digits    = "0123456789"
	Symbols   = "!@#$%^&*()_+-=[]{}|;:,.<>?"
)

// maxAttempts bounds regeneration when a draw misses a required class.
const maxAttempts = 100

var (
	ErrTooShort     = errors.New("password length must be at least 8 characters")
	ErrNoCharacters = errors.New("no character sets selected")
)

type GeneratorConfig struct {
	Length     int
	UseLower   bool
	UseUpper   bool
	UseDigits  bool
	UseSymbols bool
}

// AccountPasswordConfig is used when suggesting initial account passwords.
func AccountPasswordConfig(length int) GeneratorConfig {
	return GeneratorConfig{
		Length:     length,
		UseLower:   true,
		UseUpper:   true,
		UseDigits:  true,
		UseSymbols: true,
	}
}

// GeneratePassword draws a random password containing at least one
// character from every enabled class.
func GeneratePassword(config GeneratorConfig) (string, error) {
	if config.Length < 8 {
		return "", ErrTooShort
	}

	charset := buildCharset(config)
	if charset == "" {
		return "", ErrNoCharacters
	}

	n := big.NewInt(int64(len(charset)))
	password := make([]byte, config.Length)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		for i := range password {
			idx, err := rand.Int(rand.Reader, n)
			if err != nil {
				return "", err
			}
			password[i] = charset[idx.Int64()]
		}
		if meetsComplexity(string(password), config) {
			return string(password), nil
		}
	}
	return "", errors.New("could not satisfy character class requirements")
}

func buildCharset(config GeneratorConfig) string {
	var builder strings.Builder
	if config.UseLower {
		builder.WriteString(Lowercase)
	}
	if config.UseUpper {
		builder.WriteString(Uppercase)
	}
	if config.UseDigits {
		builder.WriteString(Digits)
	}
	if config.UseSymbols {
		builder.WriteString(Symbols)
	}
	return builder.String()
}

func meetsComplexity(password string, config GeneratorConfig) bool {
	return (!config.UseLower || strings.ContainsAny(password, Lowercase)) &&
		(!config.UseUpper || strings.ContainsAny(password, Uppercase)) &&
		(!config.UseDigits || strings.ContainsAny(password, Digits)) &&
		(!config.UseSymbols || strings.ContainsAny(password, Symbols))
}

// EvaluatePasswordStrength scores password from 0 to 100.
func EvaluatePasswordStrength(password string) int {
	if len(password) == 0 {
		return 0
	}

	score := 0
	switch {
	case len(password) >= 16:
		score += 40
	case len(password) >= 12:
		score += 30
	case len(password) >= 8:
		score += 20
	default:
		score += 10
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, c := range password {
		switch {
		case unicode.IsLower(c):
			hasLower = true
		case unicode.IsUpper(c):
			hasUpper = true
		case unicode.IsDigit(c):
			hasDigit = true
		case unicode.IsPunct(c) || unicode.IsSymbol(c):
			hasSymbol = true
		}
	}

	types := 0
	for _, has := range []bool{hasLower, hasUpper, hasDigit, hasSymbol} {
		if has {
			types++
			score += 10
		}
	}
	// bonus for mixing classes
	if types > 1 {
		score += (types - 1) * 10
	}

	for i := 0; i < len(password)-1; i++ {
		if password[i] == password[i+1] {
			score -= 5
		}
	}

	return min(max(score, 0), 100)
}

// StrengthLabel buckets a score from EvaluatePasswordStrength.
func StrengthLabel(score int) string {
	switch {
	case score >= 80:
		return "Strong"
	case score >= 50:
		return "Fair"
	default:
		return "Weak"
	}
}
