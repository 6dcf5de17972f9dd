// Package config loads forty96 settings from an optional CUE file.
//
// The file is unified with an embedded, closed schema, so unknown fields and
// out-of-range values are rejected with CUE's own diagnostics and every
// omitted field takes its schema default.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE string

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "forty96.cue"

// Config is the resolved configuration.
type Config struct {
	Size    int
	Spawn   bool
	Timeout time.Duration
	Verbose bool

	// Source is the file the values came from, empty for pure defaults.
	Source string
}

// fileConfig mirrors #Config for decoding.
type fileConfig struct {
	Size    int    `json:"size"`
	Spawn   bool   `json:"spawn"`
	Timeout string `json:"timeout"`
	Verbose bool   `json:"verbose"`
}

// Default returns the schema defaults.
func Default() Config {
	cfg, err := decode(schema(cuecontext.New()), "")
	if err != nil {
		// The embedded schema is fixed at build time.
		panic(fmt.Sprintf("config: embedded schema: %v", err))
	}
	return cfg
}

// Load reads and validates the CUE file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(path, data)
}

// LoadOptional is Load, except that a missing file yields Default().
func LoadOptional(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Parse validates CUE source against the schema. filename is used in
// diagnostics only.
func Parse(filename string, data []byte) (Config, error) {
	ctx := cuecontext.New()

	file := ctx.CompileBytes(data, cue.Filename(filename))
	if err := file.Err(); err != nil {
		return Config{}, fmt.Errorf("compile %s: %s", filename, details(err))
	}

	v := schema(ctx).Unify(file)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Config{}, fmt.Errorf("validate %s: %s", filename, details(err))
	}
	return decode(v, filename)
}

func schema(ctx *cue.Context) cue.Value {
	return ctx.CompileString(schemaCUE, cue.Filename("schema.cue")).
		LookupPath(cue.ParsePath("#Config"))
}

func decode(v cue.Value, source string) (Config, error) {
	var raw fileConfig
	if err := v.Decode(&raw); err != nil {
		return Config{}, fmt.Errorf("decode config: %s", details(err))
	}

	timeout, err := time.ParseDuration(raw.Timeout)
	if err != nil {
		return Config{}, fmt.Errorf("config timeout: %w", err)
	}
	if timeout <= 0 {
		return Config{}, fmt.Errorf("config timeout must be positive, got %s", raw.Timeout)
	}

	return Config{
		Size:    raw.Size,
		Spawn:   raw.Spawn,
		Timeout: timeout,
		Verbose: raw.Verbose,
		Source:  source,
	}, nil
}

// details flattens a CUE error list into one line per error.
func details(err error) string {
	return cueerrors.Details(err, nil)
}
