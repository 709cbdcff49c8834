package cmd

import (
	"fmt"

	"github.com/MeKo-Tech/gs1decode/internal/barcode"
	"github.com/spf13/cobra"
)

// checkDigitCmd represents the check-digit command.
var checkDigitCmd = &cobra.Command{
	Use:   "check-digit <payload>...",
	Short: "Compute the GS1 check digit for code payloads",
	Long: `Compute the modulo-10 check digit of each payload and print the completed
code. A payload is a code without its final check digit, e.g. 12 digits for
EAN-13. With --symbology auto the symbology follows from the payload length.

Examples:
  gs1decode check-digit 400638133393
  gs1decode check-digit 01234567890 -s upca
  gs1decode check-digit 9638507 --digit-only -s auto`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		sym, auto, _, err := decodeSettings(cmd, cfg)
		if err != nil {
			return err
		}
		digitOnly, _ := cmd.Flags().GetBool("digit-only")

		out := cmd.OutOrStdout()
		for _, payload := range args {
			target := sym
			if auto {
				target = symbologyForPayload(payload)
			}

			var code string
			if target == barcode.SymbologyUnknown {
				_, err = barcode.ComputeCheckDigit(payload)
				if err == nil {
					err = &barcode.DecodeError{Kind: barcode.InvalidLength, Input: payload, ActualLength: len(payload)}
				}
			} else {
				code, err = barcode.Complete(payload, target)
			}
			if err != nil {
				return fmt.Errorf("payload %q: %w", payload, err)
			}

			if digitOnly {
				_, _ = fmt.Fprintln(out, code[len(code)-1:])
			} else {
				_, _ = fmt.Fprintln(out, code)
			}
		}
		return nil
	},
}

// symbologyForPayload returns the symbology whose codes are one digit longer
// than payload.
func symbologyForPayload(payload string) barcode.Symbology {
	for _, sym := range barcode.Symbologies() {
		if sym.Length()-1 == len(payload) {
			return sym
		}
	}
	return barcode.SymbologyUnknown
}

func init() {
	rootCmd.AddCommand(checkDigitCmd)
	addDecodeFlags(checkDigitCmd)
	checkDigitCmd.Flags().Bool("digit-only", false, "print only the check digit")
}
