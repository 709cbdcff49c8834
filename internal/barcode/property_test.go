package barcode

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genDigits generates digit strings of exactly n characters.
func genDigits(n int) gopter.Gen {
	return gen.SliceOfN(n, gen.NumChar()).Map(func(r []rune) string {
		return string(r)
	})
}

func genSymbology() gopter.Gen {
	return gen.OneConstOf(SymbologyEAN13, SymbologyUPCA, SymbologyITF14, SymbologyEAN8)
}

// TestDecode_RoundTrip verifies that completed payloads decode and that the
// segments reassemble into the normalized code.
func TestDecode_RoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)

	for _, sym := range Symbologies() {
		properties.Property(sym.String()+" segments reassemble", prop.ForAll(
			func(payload string) bool {
				code, err := Complete(payload, sym)
				if err != nil {
					return false
				}
				d, err := Decode(code, sym)
				if err != nil {
					return false
				}
				return d.IsValid &&
					d.RawCode == code &&
					len(d.Prefix) == 3 &&
					len(d.CheckDigit) == 1 &&
					d.Prefix+d.BodyDigits+d.CheckDigit == d.Normalized
			},
			genDigits(sym.Length()-1),
		))
	}

	properties.TestingRun(t)
}

// TestComputeCheckDigit_Deterministic verifies the check digit is a pure
// function of the payload and unaffected by left zero padding.
func TestComputeCheckDigit_Deterministic(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("same payload, same digit", prop.ForAll(
		func(payload string) bool {
			a, errA := ComputeCheckDigit(payload)
			b, errB := ComputeCheckDigit(payload)
			return errA == nil && errB == nil && a == b && a >= '0' && a <= '9'
		},
		gen.NumString(),
	))

	properties.Property("left zero padding is neutral", prop.ForAll(
		func(payload string) bool {
			a, _ := ComputeCheckDigit(payload)
			b, _ := ComputeCheckDigit("0" + payload)
			return a == b
		},
		gen.NumString(),
	))

	properties.TestingRun(t)
}

// TestDecode_SingleDigitErrorDetected verifies that changing the check digit
// of a valid code is always reported as a checksum mismatch.
func TestDecode_SingleDigitErrorDetected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("altered check digit is rejected", prop.ForAll(
		func(payload string, delta int) bool {
			code, err := Complete(payload, SymbologyEAN13)
			if err != nil {
				return false
			}
			last := code[len(code)-1] - '0'
			altered := code[:len(code)-1] + string('0'+byte((int(last)+delta)%10))
			_, err = Decode(altered, SymbologyEAN13)
			return KindOf(err) == ChecksumMismatch
		},
		genDigits(12),
		gen.IntRange(1, 9),
	))

	properties.TestingRun(t)
}

// TestDecode_Totality verifies Decode never panics and returns exactly one of
// a result or an error for arbitrary input.
func TestDecode_Totality(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("arbitrary strings", prop.ForAll(
		func(raw string, sym Symbology) bool {
			d, err := Decode(raw, sym)
			return (d == nil) != (err == nil)
		},
		gen.AnyString(),
		genSymbology(),
	))

	properties.Property("digit strings of any length", prop.ForAll(
		func(n int, sym Symbology) bool {
			raw := make([]byte, n)
			for i := range raw {
				raw[i] = '0' + byte(i%10)
			}
			d, err := Decode(string(raw), sym)
			if n != sym.Length() {
				return d == nil && KindOf(err) == InvalidLength
			}
			return (d == nil) != (err == nil)
		},
		gen.IntRange(0, 100),
		genSymbology(),
	))

	properties.TestingRun(t)
}

// TestPrefixTable_Disjoint verifies every prefix in 0..999 matches at most one
// range and that lookups agree with a linear scan.
func TestPrefixTable_Disjoint(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("at most one range per prefix", prop.ForAll(
		func(n int) bool {
			matches := 0
			var linear PrefixRegion
			for _, r := range prefixTable {
				if r.Contains(n) {
					matches++
					linear = r
				}
			}
			got, ok := LookupPrefix(n)
			if matches == 0 {
				return !ok
			}
			return matches == 1 && ok && got.Start == linear.Start && got.Name == linear.Name
		},
		gen.IntRange(0, 999),
	))

	properties.TestingRun(t)
}
