package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// txidRegex matches a 64-character lowercase hex transaction id.
var txidRegex = regexp.MustCompile(`^[0-9a-f]{64}$`)

// ValidateTxid validates a Bitcoin transaction id: exactly 64 lowercase
// hex characters. Uppercase hex is rejected so txids are usable as
// canonical map keys without normalization at every call site.
func ValidateTxid(txid string) error {
	if txid == "" {
		return New(ErrCodeInvalidTxid, "txid cannot be empty")
	}
	if len(txid) != 64 {
		return New(ErrCodeInvalidTxid, "txid must be 64 hex characters, got %d", len(txid))
	}
	if !txidRegex.MatchString(txid) {
		return New(ErrCodeInvalidTxid, "txid contains non-hex or uppercase characters: %q", txid)
	}
	return nil
}

// addressRegex is a loose syntactic check covering base58 and bech32
// address alphabets. It does not verify checksums; the engine only needs
// addresses to be safe for use as index keys and display strings.
var addressRegex = regexp.MustCompile(`^[a-zA-Z0-9]{14,90}$`)

// ValidateAddress validates an address string syntactically.
func ValidateAddress(addr string) error {
	if addr == "" {
		return New(ErrCodeInvalidInput, "address cannot be empty")
	}
	if !addressRegex.MatchString(addr) {
		return New(ErrCodeInvalidInput, "invalid address: %q", addr)
	}
	return nil
}

// ValidateLabelFilename validates a label-file name for safety.
// It ensures the filename is a simple basename without path components.
func ValidateLabelFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidInput, "label filename cannot be empty")
	}

	// Must be a simple filename, not a path
	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidInput, "label filename cannot contain path separators")
	}

	if strings.HasPrefix(filename, ".") {
		return New(ErrCodeInvalidInput, "label filename cannot be a hidden file")
	}

	return nil
}

// ValidatePath validates a file path for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	// Check for null bytes and control characters
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}

	// Must not be absolute path
	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidInput, "path must be relative (cannot start with /)")
	}

	// Check for path traversal
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidInput, "path cannot contain path traversal sequences (..)")
	}

	// No backslashes (potential Windows path injection)
	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidInput, "path cannot contain backslashes")
	}

	return nil
}
