package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidFlagFormat(t *testing.T) {
	tests := []struct {
		name  string
		flag  string
		valid bool
	}{
		{"Simple", "CCTF{caesar_salad}", true},
		{"SurroundingWhitespace", "  CCTF{caesar_salad}\n", true},
		{"Symbols", "CCTF{x0r-!s_fun?}", true},
		{"MissingWrapper", "caesar_salad", false},
		{"WrongPrefix", "FLAG{caesar_salad}", false},
		{"LowercasePrefix", "cctf{caesar_salad}", false},
		{"EmptyBody", "CCTF{}", false},
		{"UnclosedBrace", "CCTF{caesar_salad", false},
		{"SpaceInBody", "CCTF{caesar salad}", false},
		{"NestedBrace", "CCTF{a{b}}", false},
		{"Empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidFlagFormat("CCTF", tt.flag))
		})
	}
}

func TestWrapFlag(t *testing.T) {
	flag := WrapFlag("CCTF", "vigenere")
	assert.Equal(t, "CCTF{vigenere}", flag)
	assert.True(t, ValidFlagFormat("CCTF", flag))
}
