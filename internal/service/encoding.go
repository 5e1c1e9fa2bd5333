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

package service

import (
	"encoding/base64"
	"path"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/jeremyhahn/go-cipherlab/pkg/types"
)

const (
	// BinaryDataText previews an inline decrypt result that is not UTF-8.
	BinaryDataText = "(binary data)"

	// FileProcessedText previews a binary file result.
	FileProcessedText = "file processed"

	defaultExt = "bin"
)

// DecodeText returns data as a UTF-8 string, reading it as Latin-1 when it
// is not valid UTF-8. Latin-1 maps every byte, so this never fails.
func DecodeText(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return []byte(strings.ToValidUTF8(string(data), "�"))
	}
	return decoded
}

// DecodeInlineCiphertext reads pasted byte-cipher ciphertext. Whitespace is
// removed and the rest is decoded as standard padded base64; anything that
// is not valid base64 is taken as the raw UTF-8 bytes of text.
func DecodeInlineCiphertext(text string) []byte {
	candidate := strings.Join(strings.Fields(text), "")
	if decoded, err := base64.StdEncoding.Strict().DecodeString(candidate); err == nil {
		return decoded
	}
	return []byte(text)
}

// EncodeDisplay renders binary output as standard base64.
func EncodeDisplay(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DisplayText renders an inline decrypt result: the text when it is UTF-8,
// BinaryDataText otherwise.
func DisplayText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	return BinaryDataText
}

// PreviewText renders a file result: the text when it is UTF-8, base64
// otherwise.
func PreviewText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	return EncodeDisplay(data)
}

// baseName strips any client-supplied directories from an upload name.
func baseName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	base := path.Base(name)
	if base == "." || base == "/" {
		return ""
	}
	return base
}

// splitExt splits name at its final dot. Leading dots belong to the stem,
// so ".env" has no extension.
func splitExt(name string) (stem, ext string) {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || strings.Trim(name[:i], ".") == "" {
		return name, ""
	}
	return name[:i], name[i+1:]
}

// FileExt returns the lower-case extension of name without the dot, or
// "bin" when there is none.
func FileExt(name string) string {
	_, ext := splitExt(name)
	if ext == "" {
		return defaultExt
	}
	return strings.ToLower(ext)
}

// OutputFilename names a file result:
//
//	encrypt, letter cipher  <stem>_encrypted.txt
//	encrypt, byte cipher    <stem>_encrypted.dat
//	decrypt, letter cipher  <stem>_decrypted.txt
//	decrypt, byte cipher    <stem>_decrypted.<ext>
func OutputFilename(name, ext string, op types.Operation, letter bool) string {
	stem, _ := splitExt(name)
	switch {
	case op == types.OperationEncrypt && letter:
		return stem + "_encrypted.txt"
	case op == types.OperationEncrypt:
		return stem + "_encrypted.dat"
	case letter:
		return stem + "_decrypted.txt"
	default:
		if ext == "" {
			ext = defaultExt
		}
		return stem + "_decrypted." + ext
	}
}
