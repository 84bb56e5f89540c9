package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

var (
	successText = color.New(color.FgGreen).SprintFunc()
	alertText   = color.New(color.FgYellow).SprintFunc()
	errorText   = color.New(color.FgRed).SprintFunc()
	promptText  = color.New(color.FgCyan, color.Bold).SprintFunc()
	dimText     = color.New(color.Faint).SprintFunc()
)

// outputFormat is the value of an --output flag
type outputFormat string

const (
	outputTable outputFormat = "table"
	outputJSON  outputFormat = "json"
	outputYAML  outputFormat = "yaml"
)

func (f *outputFormat) String() string { return string(*f) }

func (f *outputFormat) Set(s string) error {
	switch outputFormat(s) {
	case outputTable, outputJSON, outputYAML:
		*f = outputFormat(s)
		return nil
	}
	return fmt.Errorf("unknown output format %q (table, json, yaml)", s)
}

func (f *outputFormat) Type() string { return "format" }

// render writes v as JSON or YAML, or calls table for the table format
func render(w io.Writer, format outputFormat, v any, tableFn func(t table.Writer)) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleRounded)
		tableFn(t)
		t.Render()
		return nil
	}
}

func stdout() io.Writer {
	return os.Stdout
}
