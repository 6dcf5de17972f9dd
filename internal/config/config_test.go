package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 4, cfg.Size)
	assert.True(t, cfg.Spawn)
	assert.Equal(t, time.Hour, cfg.Timeout)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, cfg.Source)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		want    Config
		wantErr string
	}{
		{
			name: "empty file takes defaults",
			src:  ``,
			want: Config{Size: 4, Spawn: true, Timeout: time.Hour},
		},
		{
			name: "all fields",
			src: `size: 6
spawn: false
timeout: "90s"
verbose: true`,
			want: Config{Size: 6, Spawn: false, Timeout: 90 * time.Second, Verbose: true},
		},
		{
			name: "smallest board",
			src:  `size: 2`,
			want: Config{Size: 2, Spawn: true, Timeout: time.Hour},
		},
		{
			name:    "size too large",
			src:     `size: 16`,
			wantErr: "validate",
		},
		{
			name:    "wrong type",
			src:     `spawn: "yes"`,
			wantErr: "validate",
		},
		{
			name:    "unknown field",
			src:     `colour: "blue"`,
			wantErr: "validate",
		},
		{
			name:    "syntax error",
			src:     `size: [`,
			wantErr: "compile",
		},
		{
			name:    "bad duration",
			src:     `timeout: "soon"`,
			wantErr: "config timeout",
		},
		{
			name:    "zero duration",
			src:     `timeout: "0s"`,
			wantErr: "must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse("test.cue", []byte(tt.src))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.want.Source = "test.cue"
			assert.Equal(t, tt.want, cfg)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte("size: 5\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Size)
	assert.Equal(t, path, cfg.Source)
}

func TestLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.cue")

	_, err := Load(path)
	assert.Error(t, err)

	cfg, err := LoadOptional(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOptional_InvalidFileStillFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte("size: 1\n"), 0o644))

	_, err := LoadOptional(path)
	assert.Error(t, err)
}
