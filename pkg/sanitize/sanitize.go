// Package sanitize validates chat messages before they reach the dispatcher.
package sanitize

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxInputSize is 8KB; a CJK character takes three bytes.
	DefaultMaxInputSize = 8192
	// EnvMaxInputSize is the environment variable to override the default
	EnvMaxInputSize = "DRAMAFLOW_MAX_INPUT_SIZE"
)

var (
	ErrEmptyInput    = errors.New("message is empty")
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// Input applies InputWithLimit with MaxInputSize().
func Input(input string) (string, error) {
	return InputWithLimit(input, MaxInputSize())
}

// InputWithLimit rejects blank, oversized or non-UTF-8 input and strips control
// characters other than newline, tab and carriage return.
func InputWithLimit(input string, limit int) (string, error) {
	if len(input) > limit {
		// Never truncate.
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	out := input
	if strings.IndexFunc(input, unsafeControl) >= 0 {
		var b strings.Builder
		b.Grow(len(input))
		for _, r := range input {
			if !unsafeControl(r) {
				b.WriteRune(r)
			}
		}
		out = b.String()
	}

	if strings.TrimSpace(out) == "" {
		return "", ErrEmptyInput
	}
	return out, nil
}

func unsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}

// MaxInputSize reads EnvMaxInputSize, falling back to DefaultMaxInputSize.
func MaxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
