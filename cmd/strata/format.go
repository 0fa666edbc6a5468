package main

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatYAML = "yaml"
)

func checkFormat(format string) error {
	switch format {
	case formatText, formatYAML:
		return nil
	}
	return fmt.Errorf("unknown --format %q (want %s or %s)", format, formatText, formatYAML)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
