package barcode

import (
	"fmt"
	"strings"
)

// Symbology identifies a GS1 code family. Each symbology fixes its digit count.
type Symbology int

const (
	SymbologyUnknown Symbology = iota
	SymbologyEAN13
	SymbologyUPCA
	SymbologyITF14
	SymbologyEAN8
)

// Symbologies returns all supported symbologies in a stable order.
func Symbologies() []Symbology {
	return []Symbology{SymbologyEAN13, SymbologyUPCA, SymbologyITF14, SymbologyEAN8}
}

// Length returns the number of digits a code of this symbology carries,
// check digit included. It returns 0 for unknown symbologies.
func (s Symbology) Length() int {
	switch s {
	case SymbologyEAN13:
		return 13
	case SymbologyUPCA:
		return 12
	case SymbologyITF14:
		return 14
	case SymbologyEAN8:
		return 8
	default:
		return 0
	}
}

// Valid reports whether s is one of the supported symbologies.
func (s Symbology) Valid() bool {
	return s.Length() > 0
}

func (s Symbology) String() string {
	switch s {
	case SymbologyEAN13:
		return "ean13"
	case SymbologyUPCA:
		return "upca"
	case SymbologyITF14:
		return "itf14"
	case SymbologyEAN8:
		return "ean8"
	default:
		return "unknown"
	}
}

// ParseSymbology parses a symbology name. Dashes, underscores and case are
// ignored, so "EAN-13", "ean_13" and "ean13" are equivalent.
func ParseSymbology(s string) (Symbology, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	switch key {
	case "ean13", "gtin13", "jan":
		return SymbologyEAN13, nil
	case "upca", "upc", "gtin12":
		return SymbologyUPCA, nil
	case "itf14", "gtin14", "itf":
		return SymbologyITF14, nil
	case "ean8", "gtin8":
		return SymbologyEAN8, nil
	default:
		return SymbologyUnknown, fmt.Errorf("%w: %q", ErrUnsupportedSymbology, s)
	}
}

func (s Symbology) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedSymbology, int(s))
	}
	return []byte(s.String()), nil
}

func (s *Symbology) UnmarshalText(text []byte) error {
	parsed, err := ParseSymbology(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// DecodedBarcode is the result of a successful decode.
//
// Prefix + BodyDigits + CheckDigit always equals Normalized. For UPC-A the
// normalized form is the 13-digit EAN-13 equivalent. For ITF-14 the region
// is resolved from RegionPrefix, the three digits after the packaging
// indicator.
type DecodedBarcode struct {
	RawCode      string        `json:"raw_code" yaml:"raw_code"`
	Normalized   string        `json:"normalized" yaml:"normalized"`
	Symbology    Symbology     `json:"symbology" yaml:"symbology"`
	Prefix       string        `json:"prefix" yaml:"prefix"`
	BodyDigits   string        `json:"body_digits" yaml:"body_digits"`
	CheckDigit   string        `json:"check_digit" yaml:"check_digit"`
	Indicator    string        `json:"indicator,omitempty" yaml:"indicator,omitempty"`
	RegionPrefix string        `json:"region_prefix" yaml:"region_prefix"`
	RegionName   string        `json:"region_name" yaml:"region_name"`
	Region       *PrefixRegion `json:"region,omitempty" yaml:"region,omitempty"`
	IsValid      bool          `json:"is_valid" yaml:"is_valid"`
}
