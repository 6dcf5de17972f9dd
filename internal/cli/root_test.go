package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI with opts as the root options and returns stdout.
func execute(t *testing.T, opts *RootOptions, stdin string, args ...string) (string, error) {
	t.Helper()

	if opts == nil {
		opts = &RootOptions{}
	}
	cmd := newRootCommand(opts)
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "forty96", cmd.Use)
	assert.Contains(t, cmd.Long, "puzzle engine")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"play", "test", "trace", "version"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "", configFlag.DefValue)
}

func TestPlayCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	playCmd, _, err := cmd.Find([]string{"play"})
	require.NoError(t, err)

	sizeFlag := playCmd.Flags().Lookup("size")
	require.NotNil(t, sizeFlag)
	assert.Equal(t, "0", sizeFlag.DefValue)

	spawnFlag := playCmd.Flags().Lookup("spawn")
	require.NotNil(t, spawnFlag)
	assert.Equal(t, "true", spawnFlag.DefValue)

	require.NotNil(t, playCmd.Flags().Lookup("timeout"))
}

func TestTestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	testCmd, _, err := cmd.Find([]string{"test"})
	require.NoError(t, err)

	journalFlag := testCmd.Flags().Lookup("journal")
	require.NotNil(t, journalFlag)
	assert.Equal(t, "false", journalFlag.DefValue)
}

func TestTraceCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	traceCmd, _, err := cmd.Find([]string{"trace"})
	require.NoError(t, err)

	require.NotNil(t, traceCmd.Flags().Lookup("state"))
	require.NotNil(t, traceCmd.Flags().Lookup("size"))
	require.NotNil(t, traceCmd.Flags().Lookup("spawn"))
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, nil, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "forty96 "+Version+"\n", out)

	out, err = execute(t, nil, "", "version", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string
		Data   map[string]string
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, Version, resp.Data["version"])
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, nil, "", "version", "--format", "xml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forty96.cue")
	require.NoError(t, os.WriteFile(path, []byte("size: 3\nspawn: false\n"), 0o644))

	opts := &RootOptions{}
	_, err := execute(t, opts, "", "--config", path, "version")
	require.NoError(t, err)
	require.NotNil(t, opts.Config)
	assert.Equal(t, 3, opts.Config.Size)
	assert.False(t, opts.Config.Spawn)
	assert.Equal(t, path, opts.Config.Source)

	// The config drives commands that are not given explicit flags.
	out, err := execute(t, &RootOptions{}, "", "--config", path, "trace", "--state", "[[0,2,0],[0,0,0],[0,0,0]]", "left")
	require.NoError(t, err)
	assert.Contains(t, out, "left: ok")
	assert.Contains(t, out, "[     2     0     0 ]\n[     0     0     0 ]\n[     0     0     0 ]")
}

func TestConfigFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forty96.cue")
	require.NoError(t, os.WriteFile(path, []byte("size: 99\n"), 0o644))

	_, err := execute(t, nil, "", "--config", path, "version")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestConfigFile_Missing(t *testing.T) {
	_, err := execute(t, nil, "", "--config", filepath.Join(t.TempDir(), "nope.cue"), "version")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestVerboseOverridesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forty96.cue")
	require.NoError(t, os.WriteFile(path, []byte("verbose: false\n"), 0o644))

	opts := &RootOptions{}
	_, err := execute(t, opts, "", "--config", path, "-v", "version")
	require.NoError(t, err)
	assert.True(t, opts.Config.Verbose)
}
