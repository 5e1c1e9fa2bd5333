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

// Package types holds the shared vocabulary of the cipher engine: the closed
// set of cipher variants, the operation direction and the typed error
// taxonomy returned by every engine call.
package types

import (
	"strings"
)

// =============================================================================
// Variant
// =============================================================================

// Variant identifies one of the supported cipher schemes. The set is closed;
// the engine dispatches on it through a fixed handler table.
type Variant string

const (
	VariantVigenere         Variant = "vigenere"
	VariantAutokey          Variant = "autokey"
	VariantPlayfair         Variant = "playfair"
	VariantAffine           Variant = "affine"
	VariantHill             Variant = "hill"
	VariantExtendedVigenere Variant = "extended_vigenere"
	VariantSuper            Variant = "super"
	VariantUnknown          Variant = "unknown"
)

// Variants lists every supported variant in display order.
var Variants = []Variant{
	VariantVigenere,
	VariantAutokey,
	VariantPlayfair,
	VariantAffine,
	VariantHill,
	VariantExtendedVigenere,
	VariantSuper,
}

// String returns the string representation of the variant.
func (v Variant) String() string {
	return string(v)
}

// IsValid returns true if the variant is one of the supported schemes.
func (v Variant) IsValid() bool {
	switch v {
	case VariantVigenere, VariantAutokey, VariantPlayfair, VariantAffine,
		VariantHill, VariantExtendedVigenere, VariantSuper:
		return true
	default:
		return false
	}
}

// Domain reports whether the variant works on letters or on raw bytes.
func (v Variant) Domain() Domain {
	switch v {
	case VariantExtendedVigenere, VariantSuper:
		return DomainByte
	case VariantVigenere, VariantAutokey, VariantPlayfair, VariantAffine, VariantHill:
		return DomainLetter
	default:
		return DomainUnknown
	}
}

// BinarySafe returns true when the variant preserves arbitrary bytes.
func (v Variant) BinarySafe() bool {
	return v.Domain() == DomainByte
}

// ParseVariant converts a string to a Variant. Hyphens and case are
// ignored so "Extended-Vigenere" parses. Returns VariantUnknown if the
// string does not name a supported scheme.
func ParseVariant(s string) Variant {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "_")
	switch s {
	case "vigenere":
		return VariantVigenere
	case "autokey", "autokey_vigenere":
		return VariantAutokey
	case "playfair":
		return VariantPlayfair
	case "affine":
		return VariantAffine
	case "hill":
		return VariantHill
	case "extended_vigenere", "extended":
		return VariantExtendedVigenere
	case "super":
		return VariantSuper
	default:
		return VariantUnknown
	}
}

// =============================================================================
// Domain
// =============================================================================

// Domain is the kind of symbol a cipher operates on.
type Domain string

const (
	// DomainLetter ciphers work on the 26 letters A-Z after normalization.
	DomainLetter Domain = "letter"
	// DomainByte ciphers work on raw bytes modulo 256.
	DomainByte    Domain = "byte"
	DomainUnknown Domain = "unknown"
)

func (d Domain) String() string {
	return string(d)
}

// =============================================================================
// Operation
// =============================================================================

// Operation is the direction of a transform.
type Operation string

const (
	OperationEncrypt Operation = "encrypt"
	OperationDecrypt Operation = "decrypt"
	OperationUnknown Operation = "unknown"
)

func (o Operation) String() string {
	return string(o)
}

// IsValid returns true for encrypt and decrypt.
func (o Operation) IsValid() bool {
	return o == OperationEncrypt || o == OperationDecrypt
}

// ParseOperation converts a string to an Operation.
func ParseOperation(s string) Operation {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "encrypt", "enc", "e":
		return OperationEncrypt
	case "decrypt", "dec", "d":
		return OperationDecrypt
	default:
		return OperationUnknown
	}
}
