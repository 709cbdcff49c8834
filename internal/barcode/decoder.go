package barcode

import (
	"fmt"
	"unicode/utf8"
)

// checkNumeric returns a NonNumericCharacter error for the first byte of code
// outside '0'..'9'.
func checkNumeric(code string, sym Symbology) error {
	for i := 0; i < len(code); i++ {
		if code[i] >= '0' && code[i] <= '9' {
			continue
		}
		char := fmt.Sprintf("\\x%02x", code[i])
		if r, size := utf8.DecodeRuneInString(code[i:]); r != utf8.RuneError || size > 1 {
			char = string(r)
		}
		return &DecodeError{
			Kind:      NonNumericCharacter,
			Symbology: sym,
			Input:     code,
			Position:  i,
			Char:      char,
		}
	}
	return nil
}

// ValidateLength checks that code consists of ASCII digits only and has
// exactly sym.Length() of them. Non-digit input is reported before a length
// mismatch.
func ValidateLength(code string, sym Symbology) error {
	if !sym.Valid() {
		return fmt.Errorf("%w: %d", ErrUnsupportedSymbology, int(sym))
	}
	if err := checkNumeric(code, sym); err != nil {
		return err
	}
	if len(code) != sym.Length() {
		return &DecodeError{
			Kind:           InvalidLength,
			Symbology:      sym,
			Input:          code,
			ExpectedLength: sym.Length(),
			ActualLength:   len(code),
		}
	}
	return nil
}

// ComputeCheckDigit returns the GS1 modulo-10 check digit ('0'..'9') for a
// payload. The rightmost payload digit is weighted 3 and weights alternate
// 1/3 towards the left, so left zero padding never changes the result.
func ComputeCheckDigit(payload string) (byte, error) {
	if err := checkNumeric(payload, SymbologyUnknown); err != nil {
		return 0, err
	}
	return '0' + byte(checksum(payload)), nil
}

func checksum(payload string) int {
	total := 0
	weight := 3
	for i := len(payload) - 1; i >= 0; i-- {
		total += int(payload[i]-'0') * weight
		weight = 4 - weight
	}
	return (10 - total%10) % 10
}

// normalize maps a validated code to its canonical digit string.
func normalize(code string, sym Symbology) string {
	if sym == SymbologyUPCA {
		return "0" + code
	}
	return code
}

// Decode validates raw as a code of the given symbology and segments it.
//
// Failures are returned as *DecodeError (InvalidLength, NonNumericCharacter or
// ChecksumMismatch). An unassigned GS1 prefix is not an error: RegionName is
// set to UnknownRegion and Region is nil.
//
// For ITF-14, Prefix keeps the first three digits including the packaging
// indicator, while the region is resolved from RegionPrefix (digits 2 to 4).
// 14006381333938 therefore resolves to Germany rather than to the unassigned
// prefix 140.
func Decode(raw string, sym Symbology) (*DecodedBarcode, error) {
	if err := ValidateLength(raw, sym); err != nil {
		return nil, err
	}

	code := normalize(raw, sym)
	payload, check := code[:len(code)-1], code[len(code)-1:]

	expected := byte('0' + checksum(payload))
	if check[0] != expected {
		return nil, &DecodeError{
			Kind:      ChecksumMismatch,
			Symbology: sym,
			Input:     raw,
			Expected:  string(expected),
			Actual:    check,
		}
	}

	d := &DecodedBarcode{
		RawCode:    raw,
		Normalized: code,
		Symbology:  sym,
		Prefix:     payload[:3],
		BodyDigits: payload[3:],
		CheckDigit: check,
		IsValid:    true,
	}

	d.RegionPrefix = d.Prefix
	if sym == SymbologyITF14 {
		d.Indicator = code[:1]
		d.RegionPrefix = code[1:4]
	}

	region, ok := lookupRegion(d.RegionPrefix, sym)
	if ok {
		d.Region = &region
		d.RegionName = region.Name
	} else {
		d.RegionName = UnknownRegion
	}
	return d, nil
}

// DetectSymbology picks a symbology from the digit count of code.
func DetectSymbology(code string) (Symbology, error) {
	if err := checkNumeric(code, SymbologyUnknown); err != nil {
		return SymbologyUnknown, err
	}
	for _, sym := range Symbologies() {
		if sym.Length() == len(code) {
			return sym, nil
		}
	}
	return SymbologyUnknown, &DecodeError{
		Kind:         InvalidLength,
		Input:        code,
		ActualLength: len(code),
	}
}

// DecodeAuto detects the symbology by length and decodes raw with it.
func DecodeAuto(raw string) (*DecodedBarcode, error) {
	sym, err := DetectSymbology(raw)
	if err != nil {
		return nil, err
	}
	return Decode(raw, sym)
}

// Complete appends the check digit to a payload of sym.Length()-1 digits.
func Complete(payload string, sym Symbology) (string, error) {
	if !sym.Valid() {
		return "", fmt.Errorf("%w: %d", ErrUnsupportedSymbology, int(sym))
	}
	if err := checkNumeric(payload, sym); err != nil {
		return "", err
	}
	if want := sym.Length() - 1; len(payload) != want {
		return "", &DecodeError{
			Kind:           InvalidLength,
			Symbology:      sym,
			Input:          payload,
			ExpectedLength: want,
			ActualLength:   len(payload),
		}
	}
	return payload + string('0'+byte(checksum(payload))), nil
}
