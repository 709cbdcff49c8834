package batch

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/gs1decode/internal/barcode"
	"gopkg.in/yaml.v3"
)

// Record is the serialized form of an Entry.
type Record struct {
	Source    string                  `json:"source,omitempty" yaml:"source,omitempty"`
	Line      int                     `json:"line,omitempty" yaml:"line,omitempty"`
	Code      string                  `json:"code" yaml:"code"`
	Valid     bool                    `json:"valid" yaml:"valid"`
	Region    string                  `json:"region,omitempty" yaml:"region,omitempty"`
	Result    *barcode.DecodedBarcode `json:"result,omitempty" yaml:"result,omitempty"`
	Error     string                  `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorType string                  `json:"error_type,omitempty" yaml:"error_type,omitempty"`
}

// Summary counts valid and failed codes in a report.
type Summary struct {
	Total  int `json:"total" yaml:"total"`
	Valid  int `json:"valid" yaml:"valid"`
	Failed int `json:"failed" yaml:"failed"`
}

// Report is the document written by the json and yaml formats.
type Report struct {
	Codes   []Record `json:"codes" yaml:"codes"`
	Summary Summary  `json:"summary" yaml:"summary"`
}

// ToRecord converts an entry into its serialized form.
func ToRecord(e Entry) Record {
	rec := Record{
		Source: e.Source,
		Line:   e.Line,
		Code:   e.Value,
		Valid:  e.Err == nil,
		Region: e.Region,
		Result: e.Result,
	}
	if e.Err != nil {
		rec.Error = e.Err.Error()
		rec.ErrorType = errorType(e.Err)
	}
	return rec
}

// BuildReport converts entries into a Report.
func BuildReport(entries []Entry) Report {
	report := Report{Codes: make([]Record, len(entries))}
	for i, e := range entries {
		report.Codes[i] = ToRecord(e)
		if e.Err != nil {
			report.Summary.Failed++
		} else {
			report.Summary.Valid++
		}
	}
	report.Summary.Total = len(entries)
	return report
}

func errorType(err error) string {
	if kind := barcode.KindOf(err); kind != 0 {
		return kind.String()
	}
	return "error"
}

// FormatEntries renders entries as text, json, csv or yaml.
func FormatEntries(entries []Entry, format string) (string, error) {
	switch format {
	case "json":
		return formatJSON(entries)
	case "csv":
		return formatCSV(entries)
	case "yaml":
		return formatYAML(entries)
	case "text", "":
		return formatText(entries), nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}

func formatJSON(entries []Entry) (string, error) {
	bts, err := json.MarshalIndent(BuildReport(entries), "", "  ")
	if err != nil {
		return "", err
	}
	return string(bts) + "\n", nil
}

func formatYAML(entries []Entry) (string, error) {
	bts, err := yaml.Marshal(BuildReport(entries))
	if err != nil {
		return "", err
	}
	return string(bts), nil
}

var csvHeader = []string{
	"source", "line", "code", "valid", "symbology", "normalized", "prefix", "body_digits",
	"check_digit", "indicator", "region_prefix", "region", "error_type", "error",
}

func formatCSV(entries []Entry) (string, error) {
	var output strings.Builder
	writer := csv.NewWriter(&output)

	if err := writer.Write(csvHeader); err != nil {
		return "", err
	}

	for _, e := range entries {
		line := ""
		if e.Line > 0 {
			line = strconv.Itoa(e.Line)
		}
		row := []string{e.Source, line, e.Value, strconv.FormatBool(e.Err == nil)}
		if d := e.Result; d != nil {
			row = append(row, d.Symbology.String(), d.Normalized, d.Prefix, d.BodyDigits,
				d.CheckDigit, d.Indicator, d.RegionPrefix, e.Region, "", "")
		} else {
			row = append(row, "", "", "", "", "", "", "", "", errorType(e.Err), e.Err.Error())
		}
		if err := writer.Write(row); err != nil {
			return "", err
		}
	}

	writer.Flush()
	return output.String(), writer.Error()
}

func formatText(entries []Entry) string {
	var output strings.Builder
	for _, e := range entries {
		output.WriteString(FormatEntryText(e))
		output.WriteString("\n")
	}
	return output.String()
}

// FormatEntryText renders one entry as a single human readable line.
func FormatEntryText(e Entry) string {
	var b strings.Builder
	if e.Source != "" {
		fmt.Fprintf(&b, "%s:%d: ", e.Source, e.Line)
	}

	if e.Err != nil {
		fmt.Fprintf(&b, "%s INVALID (%s): %v", e.Value, errorType(e.Err), e.Err)
		return b.String()
	}

	d := e.Result
	fmt.Fprintf(&b, "%s [%s] ", d.Normalized, d.Symbology)
	if d.Indicator != "" {
		fmt.Fprintf(&b, "indicator %s | ", d.Indicator)
	}
	fmt.Fprintf(&b, "prefix %s | body %s | check %s | %s", d.Prefix, d.BodyDigits, d.CheckDigit, e.Region)
	if d.RegionPrefix != d.Prefix {
		fmt.Fprintf(&b, " (%s)", d.RegionPrefix)
	}
	return b.String()
}
