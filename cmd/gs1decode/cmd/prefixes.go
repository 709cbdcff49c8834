package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/MeKo-Tech/gs1decode/internal/barcode"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// prefixRow is one line of prefixes output.
type prefixRow struct {
	Prefix string   `json:"prefix" yaml:"prefix"`
	Found  bool     `json:"found" yaml:"found"`
	Name   string   `json:"name" yaml:"name"`
	Local  string   `json:"localized_name,omitempty" yaml:"localized_name,omitempty"`
	Codes  []string `json:"codes,omitempty" yaml:"codes,omitempty"`
	Note   string   `json:"note,omitempty" yaml:"note,omitempty"`
}

// prefixesCmd represents the prefixes command.
var prefixesCmd = &cobra.Command{
	Use:   "prefixes [prefix...]",
	Short: "List the GS1 prefix table or resolve prefixes",
	Long: `Without arguments, list every range of the GS1 prefix table. With
arguments, resolve each 3-digit prefix to its region; unassigned prefixes
report "` + barcode.UnknownRegion + `".

Examples:
  gs1decode prefixes
  gs1decode prefixes 400 471 999
  gs1decode prefixes --lang zh-Hant --format json`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		_, _, tag, err := decodeSettings(cmd, cfg)
		if err != nil {
			return err
		}
		format, _ := outputSettings(cmd, cfg)

		var rows []prefixRow
		if len(args) == 0 {
			for _, region := range barcode.PrefixTable() {
				rows = append(rows, newPrefixRow(region.Range(), region, true, tag))
			}
		} else {
			for _, p := range args {
				region, ok := barcode.ResolvePrefixRegion(p)
				rows = append(rows, newPrefixRow(p, region, ok, tag))
			}
		}

		return writePrefixRows(cmd.OutOrStdout(), rows, format)
	},
}

func newPrefixRow(prefix string, region barcode.PrefixRegion, found bool, tag language.Tag) prefixRow {
	if !found {
		row := prefixRow{Prefix: prefix, Name: barcode.UnknownRegion}
		if local := barcode.LocalizedUnknownRegion(tag); local != row.Name {
			row.Local = local
		}
		return row
	}
	row := prefixRow{
		Prefix: prefix,
		Found:  true,
		Name:   region.Name,
		Codes:  region.Codes,
		Note:   region.LocalizedNote(tag),
	}
	if local := region.LocalizedName(tag); local != region.Name {
		row.Local = local
	}
	return row
}

func writePrefixRows(w io.Writer, rows []prefixRow, format string) error {
	switch format {
	case outputFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case outputFormatYAML:
		enc := yaml.NewEncoder(w)
		defer func() { _ = enc.Close() }()
		return enc.Encode(rows)
	case outputFormatCSV:
		cw := csv.NewWriter(w)
		_ = cw.Write([]string{"prefix", "found", "name", "localized_name", "note"})
		for _, r := range rows {
			_ = cw.Write([]string{r.Prefix, strconv.FormatBool(r.Found), r.Name, r.Local, r.Note})
		}
		cw.Flush()
		return cw.Error()
	case outputFormatText, "":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, r := range rows {
			name := r.Name
			if r.Local != "" {
				name = r.Local + " (" + r.Name + ")"
			}
			if r.Note != "" {
				name += " [" + r.Note + "]"
			}
			_, _ = fmt.Fprintf(tw, "%s\t%s\n", r.Prefix, name)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func init() {
	rootCmd.AddCommand(prefixesCmd)
	prefixesCmd.Flags().String("lang", "en", "language for region names (BCP 47, e.g. de, zh-Hant)")
	prefixesCmd.Flags().StringP("format", "f", outputFormatText, "output format: text, json, csv, yaml")
}
