package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeDBName(t *testing.T) {
	tests := []struct {
		name     string
		testName string
		prefix   string
	}{
		{name: "subtest separators", testName: "TestRepo/creates profile", prefix: "TestRepo_creates_profile_"},
		{name: "dots and dollars", testName: "Test.v1$x", prefix: "Test_v1_x_"},
		{name: "plain", testName: "TestPlain", prefix: "TestPlain_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeDBName(tt.testName)
			assert.True(t, strings.HasPrefix(got, tt.prefix), got)
			assert.LessOrEqual(t, len(got), maxDBNameLen)
			assert.False(t, strings.ContainsAny(got, invalidDBChars))
		})
	}

	t.Run("long names are truncated", func(t *testing.T) {
		got := SanitizeDBName(strings.Repeat("TestVeryLongName", 10))
		assert.LessOrEqual(t, len(got), maxDBNameLen)
	})

	t.Run("unique per call", func(t *testing.T) {
		assert.NotEqual(t, SanitizeDBName("TestSame"), SanitizeDBName("TestSame"))
	})
}
