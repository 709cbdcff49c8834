package cmd

import (
	"errors"

	"github.com/MeKo-Tech/gs1decode/internal/barcode"
	"github.com/MeKo-Tech/gs1decode/internal/config"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
)

const (
	outputFormatText = "text"
	outputFormatJSON = "json"
	outputFormatCSV  = "csv"
	outputFormatYAML = "yaml"
)

// errDecodeFailed makes the process exit non-zero when any code is rejected.
var errDecodeFailed = errors.New("one or more codes failed to decode")

// decodeSettings resolves the symbology and display language from the
// configuration, with --symbology and --lang taking precedence.
func decodeSettings(cmd *cobra.Command, cfg *config.Config) (barcode.Symbology, bool, language.Tag, error) {
	decoder := *cfg
	if cmd.Flags().Changed("symbology") {
		decoder.Decoder.DefaultSymbology, _ = cmd.Flags().GetString("symbology")
	}
	if cmd.Flags().Changed("lang") {
		decoder.Decoder.Language, _ = cmd.Flags().GetString("lang")
	}

	sym, auto, err := decoder.Symbology()
	if err != nil {
		return barcode.SymbologyUnknown, false, language.Und, err
	}
	tag, err := decoder.Language()
	if err != nil {
		return barcode.SymbologyUnknown, false, language.Und, err
	}
	return sym, auto, tag, nil
}

// outputSettings resolves --format and --output against the configuration.
func outputSettings(cmd *cobra.Command, cfg *config.Config) (string, string) {
	format := cfg.Output.Format
	if cmd.Flags().Changed("format") {
		format, _ = cmd.Flags().GetString("format")
	}
	if format == "" {
		format = outputFormatText
	}

	file := cfg.Output.File
	if cmd.Flags().Changed("output") {
		file, _ = cmd.Flags().GetString("output")
	}
	return format, file
}

func addDecodeFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("symbology", "s", "ean13", "symbology: ean13, upca, itf14, ean8 or auto")
	cmd.Flags().String("lang", "en", "language for region names (BCP 47, e.g. de, zh-Hant)")
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", outputFormatText, "output format: text, json, csv, yaml")
	cmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
}
