package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// OutputFormatter renders command results as text, JSON or YAML.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

func newFormatter(opts *RootOptions, w io.Writer) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: w}
}

// Response is the envelope for structured output.
type Response struct {
	Status string `json:"status" yaml:"status"`
	Data   any    `json:"data,omitempty" yaml:"data,omitempty"`
}

// Success writes data in the configured format. text renders the human
// form and is only used for the text format.
func (f *OutputFormatter) Success(data any, text func(io.Writer) error) error {
	switch f.Format {
	case "json":
		return json.NewEncoder(f.Writer).Encode(Response{Status: "ok", Data: data})
	case "yaml":
		return f.yaml(Response{Status: "ok", Data: data})
	default:
		if text != nil {
			return text(f.Writer)
		}
		_, err := fmt.Fprintln(f.Writer, data)
		return err
	}
}

// Raw writes v without the envelope.
func (f *OutputFormatter) Raw(v any) error {
	if f.Format == "yaml" {
		return f.yaml(v)
	}
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (f *OutputFormatter) yaml(v any) error {
	enc := yaml.NewEncoder(f.Writer)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
