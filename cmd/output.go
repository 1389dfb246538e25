package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by --format.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// outputFormatter writes command results as text, JSON or YAML.
type outputFormatter struct {
	Format string
	Writer io.Writer
}

func newOutputFormatter(format string, w io.Writer) (*outputFormatter, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	switch f {
	case "":
		f = FormatText
	case FormatText, FormatJSON, FormatYAML:
	default:
		return nil, fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
	return &outputFormatter{Format: f, Writer: w}, nil
}

// Write encodes data for the structured formats and calls text otherwise.
func (o *outputFormatter) Write(data any, text func(w io.Writer) error) error {
	switch o.Format {
	case FormatJSON:
		enc := json.NewEncoder(o.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case FormatYAML:
		enc := yaml.NewEncoder(o.Writer)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	default:
		return text(o.Writer)
	}
}

func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().String("format", FormatText, "output format: text, json or yaml")
}

func formatterFor(cmd *cobra.Command) (*outputFormatter, error) {
	format, _ := cmd.Flags().GetString("format")
	return newOutputFormatter(format, cmd.OutOrStdout())
}
