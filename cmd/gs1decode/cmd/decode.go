package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/MeKo-Tech/gs1decode/internal/batch"
	"github.com/spf13/cobra"
)

// decodeCmd represents the decode command.
var decodeCmd = &cobra.Command{
	Use:   "decode [codes...]",
	Short: "Validate and decode GS1 codes",
	Long: `Validate one or more GS1 codes, verify the check digit and resolve the
GS1 prefix to its country or region.

Codes are read from the arguments, or one per line from stdin when no
arguments (or "-") are given. The exit status is non-zero when any code is
invalid.

Examples:
  gs1decode decode 4006381333931
  gs1decode decode 012345678905 --symbology upca
  gs1decode decode 10012345678902 96385074 -s auto --format json
  cat codes.txt | gs1decode decode --lang de`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE:         runDecodeCommand,
}

func runDecodeCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	sym, auto, tag, err := decodeSettings(cmd, cfg)
	if err != nil {
		return err
	}
	format, outputFile := outputSettings(cmd, cfg)

	var codes []batch.Code
	if len(args) == 0 || (len(args) == 1 && args[0] == batch.StdinPath) {
		codes, err = batch.ReadCodes(cmd.InOrStdin(), "", false)
		if err != nil {
			return err
		}
	} else {
		for _, a := range args {
			codes = append(codes, batch.Code{Value: a})
		}
	}
	if len(codes) == 0 {
		return batch.ErrNoCodes
	}

	opts := batch.DecodeOptions{Symbology: sym, Auto: auto, Language: tag}
	entries := make([]batch.Entry, len(codes))
	failed := 0
	for i, c := range codes {
		entries[i] = batch.DecodeEntry(c, opts)
		if entries[i].Err != nil {
			failed++
			slog.Debug("Code rejected", "code", c.Value, "error", entries[i].Err)
		}
	}

	output, err := batch.FormatEntries(entries, format)
	if err != nil {
		return err
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(output), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
	} else {
		_, _ = fmt.Fprint(cmd.OutOrStdout(), output)
	}

	if failed > 0 {
		return fmt.Errorf("%w (%d of %d)", errDecodeFailed, failed, len(codes))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	addDecodeFlags(decodeCmd)
	addOutputFlags(decodeCmd)
}
