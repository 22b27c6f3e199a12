package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Options represents the top-level highrustc.yaml configuration: project-wide
// transpile defaults that a bare CLI invocation falls back to.
type Options struct {
	// Input is the default source file to transpile.
	Input string `yaml:"input,omitempty"`

	// Output is the default output file path.
	Output string `yaml:"output,omitempty"`

	// WatchPaths names the file `highrustc watch` observes when --path is
	// not given; only the first entry is used, in place of Input.
	WatchPaths []string `yaml:"watch_paths,omitempty"`

	// DefaultParamType substitutes for any function parameter that omits a
	// type annotation. Defaults to "i32" when empty.
	DefaultParamType string `yaml:"default_param_type,omitempty"`

	// IndentWidth is the number of spaces per indentation level in emitted
	// output. Defaults to 4 when zero.
	IndentWidth int `yaml:"indent_width,omitempty"`

	// ExtraBorrowHelpers names additional call-target functions recognised
	// as shared-borrow helpers, alongside the built-in `ref`/`borrow` pair.
	ExtraBorrowHelpers []string `yaml:"extra_borrow_helpers,omitempty"`
}

// LoadOptions reads and parses a highrustc.yaml file.
func LoadOptions(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseOptions(data, path)
}

// ParseOptions parses highrustc.yaml content from bytes. path is used only
// for error messages.
func ParseOptions(data []byte, path string) (*Options, error) {
	var opts Options
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &opts, nil
}

// FindOptions searches for highrustc.yaml starting from dir and walking up
// through parent directories. Returns an empty path and nil error if none is
// found anywhere up to the filesystem root.
func FindOptions(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, "highrustc.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		candidate = filepath.Join(dir, "highrustc.yml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}
