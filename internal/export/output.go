package export

import (
	"strings"

	"github.com/ibal-unist/picdump/internal/security"
)

// Output is where and how an exporter writes its files.
type Output struct {
	// Dir is the output directory, relative to the Sink root.
	Dir string
	// Prefix starts every file name.
	Prefix string
	// Delimiter separates columns in text files. Empty means tab.
	Delimiter string
}

// WithDefaults fills empty fields from def.
func (o Output) WithDefaults(def Output) Output {
	if o.Dir == "" {
		o.Dir = def.Dir
	}
	if o.Prefix == "" {
		o.Prefix = def.Prefix
	}
	if o.Delimiter == "" {
		o.Delimiter = def.Delimiter
	}
	if o.Delimiter == "" {
		o.Delimiter = DefaultDelimiter
	}
	return o
}

// Validate checks the directory and prefix.
func (o Output) Validate() error {
	if err := security.ValidateOutputDir(o.Dir); err != nil {
		return Invalidf("%v", err)
	}
	if err := security.ValidateFilePrefix(o.Prefix); err != nil {
		return Invalidf("%v", err)
	}
	if strings.ContainsAny(o.Delimiter, "\r\n") {
		return Invalidf("delimiter %q contains a line break", o.Delimiter)
	}
	return nil
}
