// Package barcode decodes numeric GS1 identification codes.
//
// It validates EAN-13, UPC-A, ITF-14 and EAN-8 digit strings, verifies the
// GS1 modulo-10 check digit, splits the code into prefix, body and check
// digit and resolves the 3-digit GS1 prefix to the member organization that
// issued it.
//
// Everything in this package is pure: no I/O, no logging, no shared mutable
// state. All functions are safe for concurrent use.
//
// Example:
//
//	d, err := barcode.Decode("4006381333931", barcode.SymbologyEAN13)
//	if err != nil {
//		var de *barcode.DecodeError
//		if errors.As(err, &de) && de.Kind == barcode.ChecksumMismatch {
//			// de.Expected, de.Actual
//		}
//	}
//	fmt.Println(d.RegionName) // Germany
package barcode
