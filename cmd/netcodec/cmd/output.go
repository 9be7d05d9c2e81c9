package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/cheetah-game-platform/realtime/pkg/codec"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// writeValue prints v as indented JSON or as YAML
func writeValue(w io.Writer, format string, v interface{}) error {
	switch format {
	case formatJSON, formatTable, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// writeCodecTable lists codecs one per line
func writeCodecTable(w io.Writer, codecs []*codec.Codec) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "NAME\tSIZE\tFIELDS")
	for _, c := range codecs {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Name(), formatSize(c), formatFields(c.Fields()))
	}

	return tw.Flush()
}

// writeLayoutTable prints the fields of one codec
func writeLayoutTable(w io.Writer, c *codec.Codec) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Codec:\t%s\n", c.Name())
	fmt.Fprintf(tw, "Type:\t%s\n", c.Type())
	fmt.Fprintf(tw, "Size:\t%s\n", formatSize(c))
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "FIELD\tTYPE\tSTRATEGY\tDETAIL\tSIZE")
	for _, f := range c.Fields() {
		size := "var"
		if f.Size >= 0 {
			size = fmt.Sprint(f.Size)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", f.Name, f.Type, f.Strategy, formatDetail(f), size)
	}

	return tw.Flush()
}

func formatSize(c *codec.Codec) string {
	if size, fixed := c.FixedSize(); fixed {
		return fmt.Sprint(size)
	}
	return "var"
}

func formatFields(fields []codec.FieldLayout) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return strings.Join(names, ", ")
}

func formatDetail(f codec.FieldLayout) string {
	var parts []string
	if f.Formatter != "" {
		parts = append(parts, f.Formatter)
	}
	if f.Record != "" {
		parts = append(parts, f.Record)
	}
	if f.Capacity > 0 {
		parts = append(parts, fmt.Sprintf("cap=%d", f.Capacity))
	}
	if f.LengthField != "" {
		parts = append(parts, "len="+f.LengthField)
	}
	return strings.Join(parts, " ")
}
