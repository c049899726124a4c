// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package remote

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var credentialShape = regexp.MustCompile(`^sk-`)

// ValidateCredential checks the credential shape: non-empty after trimming
// and starting with "sk-". It does not contact the remote service.
func ValidateCredential(key string) error {
	key = strings.TrimSpace(key)
	err := validation.Validate(key,
		validation.Required.Error("must not be empty"),
		validation.Match(credentialShape).Error(`must start with "sk-"`),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	return nil
}

// MaskCredential returns a preview safe to print: the first 7 and last 4
// characters. Short values are masked entirely.
func MaskCredential(key string) string {
	key = strings.TrimSpace(key)
	if len(key) < 12 {
		return strings.Repeat("*", len(key))
	}
	return key[:7] + "..." + key[len(key)-4:]
}

// keyFingerprint returns a short SHA-256 fingerprint for logs. The key itself
// is never logged.
func keyFingerprint(key string) string {
	if key == "" {
		return "none"
	}
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:8]
}
