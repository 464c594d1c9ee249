package utils

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	t.Run("accepts a strong password", func(t *testing.T) {
		assert.Empty(t, ValidatePassword("Correct-Horse9"))
	})

	t.Run("reports every broken rule", func(t *testing.T) {
		reasons := ValidatePassword("abc")
		assert.Len(t, reasons, 4)
		assert.Contains(t, reasons, "password must be at least 12 characters long")
		assert.Contains(t, reasons, "password must contain at least one numerical digit")
		assert.Contains(t, reasons, "password must contain at least one capital letter")
	})

	t.Run("requires a special character", func(t *testing.T) {
		reasons := ValidatePassword("Abcdefghijk1")
		require.Len(t, reasons, 1)
		assert.True(t, strings.HasPrefix(reasons[0], "password must contain at least one special character"))
	})

	t.Run("length counts characters not bytes", func(t *testing.T) {
		// 11 characters, more than 12 bytes
		assert.Contains(t, ValidatePassword("Ab1!éééééée"), "password must be at least 12 characters long")
	})
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("Correct-Horse9")
	require.NoError(t, err)
	assert.NotEqual(t, "Correct-Horse9", hash)
	assert.True(t, CheckPassword(hash, "Correct-Horse9"))
	assert.False(t, CheckPassword(hash, "correct-horse9"))
}

func TestValidateUserName(t *testing.T) {
	cases := map[string]bool{
		"alice":                 true,
		"bob_2":                 true,
		"":                      false,
		"has space":             false,
		"semi;colon":            false,
		strings.Repeat("a", 50): true,
		strings.Repeat("a", 51): false,
	}
	for name, want := range cases {
		assert.Equal(t, want, ValidateUserName(name), "username %q", name)
	}
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("alice@example.com"))
	assert.False(t, ValidateEmail("alice.example.com"))
	assert.False(t, ValidateEmail("alice@@example.com"))
	assert.False(t, ValidateEmail("alice@example"))
}

func TestValidateGroupName(t *testing.T) {
	assert.True(t, ValidateGroupName("Study"))
	assert.True(t, ValidateGroupName("Year 12 Maths"))
	assert.False(t, ValidateGroupName(""))
	assert.False(t, ValidateGroupName("   "))
	assert.False(t, ValidateGroupName("no-dashes"))
	assert.False(t, ValidateGroupName(strings.Repeat("g", 51)))
}

func TestProperty_PasswordPolicy(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("short passwords are always rejected", prop.ForAll(
		func(s string) bool {
			if len([]rune(s)) >= MinPasswordLength {
				return true
			}
			return len(ValidatePassword(s)) > 0
		},
		gen.AnyString(),
	))

	properties.Property("padding a valid core keeps the password valid", prop.ForAll(
		func(pad string) bool {
			return len(ValidatePassword("Aa1!"+pad+"zzzzzzzz")) == 0
		},
		gen.AlphaString(),
	))

	properties.Property("alphanumeric identifiers up to 50 chars are valid usernames", prop.ForAll(
		func(s string) bool {
			if len(s) == 0 || len(s) > MaxNameLength {
				return !ValidateUserName(s)
			}
			return ValidateUserName(s)
		},
		gen.Identifier(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
