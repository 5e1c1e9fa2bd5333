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

// Package metadata frames a payload with its original filename so a
// decrypted byte cipher result can be saved under the right name.
//
// The header is plain ASCII framing followed by the raw payload:
//
//	FNAME:<name>;EXT:<ext>;<payload>
package metadata

import (
	"bytes"
	"strings"
)

const (
	Marker          = "FNAME:"
	ExtDelimiter    = ";EXT:"
	FieldTerminator = ';'
)

// Header is the filename information carried in front of a payload.
type Header struct {
	Name string
	Ext  string
}

// Filename joins Name and Ext with a dot.
func (h *Header) Filename() string {
	if h.Ext == "" {
		return h.Name
	}
	return h.Name + "." + h.Ext
}

// Wrap returns FNAME:<name>;EXT:<ext>; followed by payload. name and ext
// must not contain ";EXT:" or ';' respectively or the header will not
// round trip.
func Wrap(name, ext string, payload []byte) []byte {
	out := make([]byte, 0, len(Marker)+len(name)+len(ExtDelimiter)+len(ext)+1+len(payload))
	out = append(out, Marker...)
	out = append(out, name...)
	out = append(out, ExtDelimiter...)
	out = append(out, ext...)
	out = append(out, FieldTerminator)
	out = append(out, payload...)
	return out
}

// Unwrap splits a header off data. When data does not start with the
// marker or either delimiter is missing it returns (nil, data, false);
// it never fails. The returned payload aliases data.
//
// Invalid UTF-8 in the name or extension is dropped.
func Unwrap(data []byte) (*Header, []byte, bool) {
	if !bytes.HasPrefix(data, []byte(Marker)) {
		return nil, data, false
	}
	endName := bytes.Index(data, []byte(ExtDelimiter))
	if endName < 0 {
		return nil, data, false
	}
	extStart := endName + len(ExtDelimiter)
	endExt := bytes.IndexByte(data[extStart:], FieldTerminator)
	if endExt < 0 {
		return nil, data, false
	}
	endExt += extStart

	h := &Header{
		Name: strings.ToValidUTF8(string(data[len(Marker):endName]), ""),
		Ext:  strings.ToValidUTF8(string(data[extStart:endExt]), ""),
	}
	return h, data[endExt+1:], true
}
