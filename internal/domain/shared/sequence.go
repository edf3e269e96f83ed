package shared

import (
	"context"
	"fmt"
	"strings"
)

// MaxCodePrefixLength is the maximum allowed length for a code prefix
const MaxCodePrefixLength = 16

// CodeAllocator allocates sequential, prefix-scoped document codes.
// Codes have the form PREFIX-NNNN with a zero-padded numeric suffix starting
// at 0001 for a fresh prefix. Implementations must guarantee that two
// concurrent allocations for the same prefix never return the same code.
type CodeAllocator interface {
	// Next returns the next code for the given prefix
	Next(ctx context.Context, prefix string) (string, error)

	// Reserve advances the prefix's counter to at least seq. Codes that
	// enter the system with an explicit suffix (bulk imports) must be
	// reserved so Next never re-issues them.
	Reserve(ctx context.Context, prefix string, seq int64) error
}

// ValidateCodePrefix checks that a prefix is well formed.
// A prefix must be non-empty, at most MaxCodePrefixLength characters, and
// consist of uppercase letters and digits only. Malformed prefixes are
// rejected rather than truncated or normalized.
func ValidateCodePrefix(prefix string) error {
	if prefix == "" {
		return NewDomainError("INVALID_PREFIX", "Code prefix cannot be empty")
	}
	if len(prefix) > MaxCodePrefixLength {
		return NewDomainError("INVALID_PREFIX", fmt.Sprintf("Code prefix exceeds %d characters", MaxCodePrefixLength))
	}
	for _, r := range prefix {
		isUpper := r >= 'A' && r <= 'Z'
		isDigit := r >= '0' && r <= '9'
		if !isUpper && !isDigit {
			return NewDomainError("INVALID_PREFIX", "Code prefix must contain only uppercase letters and digits")
		}
	}
	return nil
}

// ParseCode splits a PREFIX-NNNN code into its prefix and numeric suffix.
// Returns ok=false for codes that do not follow the allocator's format,
// such as externally assigned order numbers.
func ParseCode(code string) (prefix string, seq int64, ok bool) {
	idx := strings.LastIndex(code, "-")
	if idx <= 0 || idx == len(code)-1 {
		return "", 0, false
	}
	prefix = code[:idx]
	if ValidateCodePrefix(prefix) != nil {
		return "", 0, false
	}
	suffix := code[idx+1:]
	if len(suffix) > 18 {
		return "", 0, false
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return "", 0, false
		}
		seq = seq*10 + int64(r-'0')
	}
	if seq == 0 {
		return "", 0, false
	}
	return prefix, seq, true
}

// FormatCode renders a code from a prefix and a sequence value.
// The suffix is zero-padded to 4 digits and grows wider naturally past 9999.
func FormatCode(prefix string, seq int64) string {
	return fmt.Sprintf("%s-%04d", prefix, seq)
}
