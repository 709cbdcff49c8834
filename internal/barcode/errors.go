package barcode

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidLength        = errors.New("barcode: invalid length")
	ErrNonNumericCharacter  = errors.New("barcode: non-numeric character")
	ErrChecksumMismatch     = errors.New("barcode: checksum mismatch")
	ErrUnsupportedSymbology = errors.New("barcode: unsupported symbology")
)

// ErrorKind classifies a DecodeError.
type ErrorKind int

const (
	InvalidLength ErrorKind = iota + 1
	NonNumericCharacter
	ChecksumMismatch
)

// String returns the snake_case name used in API payloads and reports.
func (k ErrorKind) String() string {
	switch k {
	case InvalidLength:
		return "invalid_length"
	case NonNumericCharacter:
		return "non_numeric_character"
	case ChecksumMismatch:
		return "checksum_mismatch"
	default:
		return "unknown"
	}
}

func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ErrorKind) UnmarshalText(text []byte) error {
	for _, kind := range []ErrorKind{InvalidLength, NonNumericCharacter, ChecksumMismatch} {
		if kind.String() == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("barcode: unknown error kind %q", text)
}

// DecodeError describes why a code was rejected. Only the fields relevant to
// Kind are populated.
type DecodeError struct {
	Kind      ErrorKind `json:"kind"`
	Symbology Symbology `json:"symbology,omitempty"`
	Input     string    `json:"input"`

	// InvalidLength
	ExpectedLength int `json:"expected_length,omitempty"`
	ActualLength   int `json:"actual_length,omitempty"`

	// NonNumericCharacter; Position is a byte offset into Input. Char holds the
	// offending rune, or a \xNN escape when the byte is not valid UTF-8.
	Position int    `json:"position,omitempty"`
	Char     string `json:"char,omitempty"`

	// ChecksumMismatch
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
}

func (e *DecodeError) Error() string {
	switch e.Kind {
	case InvalidLength:
		if e.ExpectedLength == 0 {
			return fmt.Sprintf("barcode: invalid length: %d digits matches no supported symbology", e.ActualLength)
		}
		return fmt.Sprintf("barcode: invalid %s length: got %d digits, want %d",
			e.Symbology, e.ActualLength, e.ExpectedLength)
	case NonNumericCharacter:
		return fmt.Sprintf("barcode: non-numeric character %q at position %d", e.Char, e.Position)
	case ChecksumMismatch:
		return fmt.Sprintf("barcode: checksum mismatch: expected check digit %s, got %s", e.Expected, e.Actual)
	default:
		return "barcode: decode error"
	}
}

// Unwrap maps the error kind to its sentinel so errors.Is works.
func (e *DecodeError) Unwrap() error {
	switch e.Kind {
	case InvalidLength:
		return ErrInvalidLength
	case NonNumericCharacter:
		return ErrNonNumericCharacter
	case ChecksumMismatch:
		return ErrChecksumMismatch
	default:
		return nil
	}
}

// KindOf returns the ErrorKind of err, or 0 when err is not a DecodeError.
func KindOf(err error) ErrorKind {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}
