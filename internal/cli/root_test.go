package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout and the error.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	if errBuf.Len() > 0 {
		t.Log(errBuf.String())
	}
	return buf.String(), err
}

// tempDB returns a fresh sqlite database path.
func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "polyquery.db")
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "polyquery", cmd.Use)
	assert.Contains(t, cmd.Long, "polymorphic child record")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"migrate", "seed", "create", "search", "explain", "queries", "verify"}

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

	for _, name := range []string{"config", "db", "driver"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestCriteriaFlags(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"search", "explain"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		for _, flag := range []string{"code", "validation", "national-id", "birth-type", "age", "lenient"} {
			assert.NotNil(t, sub.Flags().Lookup(flag), "%s --%s", name, flag)
		}
	}
}

func TestRootInvalidFormat(t *testing.T) {
	_, err := execute(t, "--db", tempDB(t), "--format", "xml", "queries")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRootInvalidDriver(t *testing.T) {
	out, err := execute(t, "--driver", "postgres", "queries")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid driver")
	assert.Contains(t, out, "Error [E_CONFIG]: invalid configuration")

	out, err = execute(t, "--format", "json", "--driver", "postgres", "queries")
	require.Error(t, err)
	resp := decodeData(t, out, nil)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeConfig, resp.Error.Code)
}

func TestRootStoreOpenFailure(t *testing.T) {
	db := filepath.Join(t.TempDir(), "missing", "polyquery.db")

	out, err := execute(t, "--db", db, "--format", "json", "migrate")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to open sqlite3 database")

	resp := decodeData(t, out, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeStore, resp.Error.Code)
}

func TestRootConfigFile(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "from-config.db")
	cfgFile := filepath.Join(dir, "polyquery.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("database: "+db+"\nformat: json\n"), 0644))

	out, err := execute(t, "--config", cfgFile, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, `"status":"ok"`)
	assert.FileExists(t, db)
}

func TestRootFlagOverridesConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "polyquery.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("format: json\n"), 0644))

	out, err := execute(t, "--config", cfgFile, "--db", filepath.Join(dir, "x.db"), "--format", "text", "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "migrated sqlite3 database to version 1")
}

func TestStandaloneCommandResolvesConfig(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", Database: tempDB(t)}
	cmd := NewMigrateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "version 1")
	require.NotNil(t, rootOpts.Config)
	assert.Equal(t, rootOpts.Database, rootOpts.Config.Database)
}

func TestStandaloneCommandInvalidFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "yaml", Database: tempDB(t)}
	cmd := NewQueriesCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error [E_CONFIG]: invalid format")
}

func TestIsValidFormat(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))
	assert.False(t, isValidFormat("yaml"))
	assert.False(t, isValidFormat(""))
}
