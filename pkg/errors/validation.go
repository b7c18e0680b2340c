package errors

import (
	"math"
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateTargetCount rejects negative target sizes.
// what names the quantity in the message ("target row count", "image count").
func ValidateTargetCount(what string, n int) error {
	if n < 0 {
		return New(ErrCodeInvalidInput, "%s must be non-negative, got %d", what, n)
	}
	return nil
}

// ValidateProbability checks that p lies in [0, 1].
func ValidateProbability(name string, p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return New(ErrCodeInvalidConfig, "%s must be within [0, 1], got %v", name, p)
	}
	return nil
}

// ValidateRange checks that 0 <= lo <= hi and both bounds are finite.
func ValidateRange(name string, lo, hi float64) error {
	if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return New(ErrCodeInvalidConfig, "%s bounds must be finite, got [%v, %v]", name, lo, hi)
	}
	if lo < 0 {
		return New(ErrCodeInvalidConfig, "%s lower bound must be non-negative, got %v", name, lo)
	}
	if lo > hi {
		return New(ErrCodeInvalidConfig, "%s lower bound %v exceeds upper bound %v", name, lo, hi)
	}
	return nil
}

// ValidateArchiveEntry validates a member name read from an archive.
// It rejects names that would be written outside the extraction directory.
//
// Validation rules:
//   - Name cannot be empty
//   - No null bytes or control characters
//   - No absolute paths
//   - No parent-directory components after cleaning
func ValidateArchiveEntry(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "archive entry name cannot be empty")
	}

	for _, r := range name {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "archive entry %q contains invalid characters", name)
		}
	}

	slashed := strings.ReplaceAll(name, "\\", "/")
	if strings.HasPrefix(slashed, "/") || filepath.IsAbs(name) || filepath.VolumeName(name) != "" {
		return New(ErrCodeInvalidPath, "archive entry %q must be relative", name)
	}

	clean := filepath.ToSlash(filepath.Clean(filepath.FromSlash(slashed)))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return New(ErrCodeInvalidPath, "archive entry %q escapes the extraction directory", name)
	}

	return nil
}
