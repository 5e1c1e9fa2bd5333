// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-cipherlab.
//
// go-cipherlab is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package rest

import (
	"fmt"
	"mime"
	"path"
	"strings"
)

const (
	// MaxFilenameLength bounds download and upload names.
	MaxFilenameLength = 255

	// DefaultDownloadName is used when a download has no usable name.
	DefaultDownloadName = "download.dat"
)

// SanitizeString removes control characters and truncates s. Used for
// client-supplied values that end up in logs.
func SanitizeString(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)

	if len(s) > 1000 {
		s = s[:1000] + "..."
	}
	return s
}

// SanitizeFilename reduces a client-supplied name to a safe base name for
// Content-Disposition. Directory components, control characters and
// quotes are removed; an empty result becomes DefaultDownloadName.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	name = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 || r == '"' {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == "/" || name == ".." {
		return DefaultDownloadName
	}
	if len(name) > MaxFilenameLength {
		name = name[:MaxFilenameLength]
	}
	return name
}

// ValidateCipherType checks that a cipher name was supplied and is short
// enough to log.
func ValidateCipherType(cipher string) error {
	if strings.TrimSpace(cipher) == "" {
		return fmt.Errorf("%w: cipher_type is required", ErrInvalidRequest)
	}
	if len(cipher) > 64 {
		return fmt.Errorf("%w: cipher_type too long (max 64 characters)", ErrInvalidRequest)
	}
	return nil
}

// attachmentDisposition renders a Content-Disposition header for name.
func attachmentDisposition(name string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": SanitizeFilename(name)})
}
