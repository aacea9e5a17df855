package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var (
	stdout      io.Writer = os.Stdout
	stderrIsTTY           = func() bool { return isTerminal(os.Stderr) }
)

// render writes v in the selected output format.
func render(w io.Writer, format string, v fmt.Stringer) error {
	switch strings.ToLower(format) {
	case "", "text":
		_, err := fmt.Fprintln(w, v.String())
		return err
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return errors.Wrap(err, "encode json")
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, "encode yaml")
		}
		return enc.Close()
	default:
		return errors.Errorf("unknown output format %q", format)
	}
}
