// Package config loads YAML configuration files into typed structs.
//
// Values may reference the environment as $VAR, ${VAR} or ${VAR:-fallback}.
// Unknown keys are rejected so a misspelled option fails loudly.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Validator is implemented by targets that check themselves after decoding.
type Validator interface {
	Validate() error
}

// Load reads filename into target and validates it.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", filename, err)
	}
	if err := Decode(bytes.NewReader(data), target); err != nil {
		return fmt.Errorf("config: %s: %w", filename, err)
	}
	return nil
}

// LoadOptional is Load for files that may be absent. A missing file keeps
// the values already in target, which are validated as they are.
func LoadOptional[T any](filename string, target *T) error {
	err := Load(filename, target)
	if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return validate(target)
}

// Decode expands environment references in r, decodes the YAML strictly
// into target and validates the result. An empty document leaves target
// unchanged.
func Decode[T any](r io.Reader, target *T) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(strings.NewReader(os.Expand(string(raw), lookupEnv)))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse: %w", err)
	}
	return validate(target)
}

func validate(target any) error {
	if v, ok := target.(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("invalid: %w", err)
		}
	}
	return nil
}

// lookupEnv resolves one os.Expand reference, honouring a ":-" fallback
// for unset or empty variables.
func lookupEnv(ref string) string {
	name, fallback, hasFallback := strings.Cut(ref, ":-")
	if v := os.Getenv(name); v != "" || !hasFallback {
		return v
	}
	return fallback
}
