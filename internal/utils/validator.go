package utils

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 12
	MaxNameLength     = 50
	// PasswordSpecialChars 密码中至少包含其中一个字符
	PasswordSpecialChars = "!@#$%^&*()-_+=[]{}|;:,.<>?/~`"
)

var (
	userNamePattern  = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	groupNamePattern = regexp.MustCompile(`^[a-zA-Z0-9 ]+$`)
)

// HashPassword 使用 bcrypt 对密码进行哈希
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// CheckPassword 验证密码
func CheckPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// ValidatePassword returns every policy rule the password breaks; an empty
// result means the password is acceptable.
func ValidatePassword(password string) []string {
	var reasons []string
	if utf8.RuneCountInString(password) < MinPasswordLength {
		reasons = append(reasons, "password must be at least 12 characters long")
	}

	var digit, upper, lower, special bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		}
		if strings.ContainsRune(PasswordSpecialChars, r) {
			special = true
		}
	}
	if !digit {
		reasons = append(reasons, "password must contain at least one numerical digit")
	}
	if !upper {
		reasons = append(reasons, "password must contain at least one capital letter")
	}
	if !lower {
		reasons = append(reasons, "password must contain at least one lowercase letter")
	}
	if !special {
		reasons = append(reasons, "password must contain at least one special character in "+PasswordSpecialChars)
	}
	return reasons
}

// ValidateUserName 验证用户名格式（1-50个字符，字母数字下划线）
func ValidateUserName(username string) bool {
	if len(username) == 0 || len(username) > MaxNameLength {
		return false
	}
	return userNamePattern.MatchString(username)
}

// ValidateEmail requires exactly one '@' and at least one '.'.
func ValidateEmail(email string) bool {
	return strings.Count(email, "@") == 1 && strings.Contains(email, ".")
}

// ValidateDisplayName 显示名非空且不超过 50 个字符
func ValidateDisplayName(name string) bool {
	n := utf8.RuneCountInString(name)
	return n > 0 && n <= MaxNameLength
}

// ValidateGroupName allows letters, digits and spaces, at most 50 characters,
// and must contain something other than spaces.
func ValidateGroupName(name string) bool {
	if len(name) > MaxNameLength || strings.TrimSpace(name) == "" {
		return false
	}
	return groupNamePattern.MatchString(name)
}
