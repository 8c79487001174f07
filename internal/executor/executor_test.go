package executor

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/ashutoshrp06/sitesmith/internal/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newPosixExecutor(t *testing.T, cfg Config) *CommandExecutor {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("posix shell tests")
	}
	cfg.Platform = normalize.Posix
	if cfg.WorkDir == "" {
		cfg.WorkDir = t.TempDir()
	}
	return NewCommandExecutor(cfg)
}

func TestCommandExecutor_StdoutIsSuccess(t *testing.T) {
	e := newPosixExecutor(t, Config{})

	res := e.Run(context.Background(), "echo hello")
	require.True(t, res.OK(), res.String())
	assert.Equal(t, "Success: hello\n", res.String())
}

func TestCommandExecutor_EmptyOutputUsesDefault(t *testing.T) {
	e := newPosixExecutor(t, Config{})

	res := e.Run(context.Background(), "mkdir demo")
	require.True(t, res.OK())
	assert.Equal(t, "Success: "+DefaultSuccessMessage, res.String())
	assert.DirExists(t, e.workDir+"/demo")
}

func TestCommandExecutor_NonZeroExit(t *testing.T) {
	e := newPosixExecutor(t, Config{})

	res := e.Run(context.Background(), "echo boom >&2; exit 3")
	require.False(t, res.OK())
	assert.Contains(t, res.String(), "Error: ")
	assert.Contains(t, res.Message, "exit code 3")
	assert.Contains(t, res.Message, "boom")
}

func TestCommandExecutor_StderrIsFailure(t *testing.T) {
	e := newPosixExecutor(t, Config{})

	res := e.Run(context.Background(), "echo bad thing >&2")
	require.False(t, res.OK())
	assert.Equal(t, "Error: bad thing", res.String())
}

func TestCommandExecutor_ToleratedStderr(t *testing.T) {
	e := newPosixExecutor(t, Config{})

	res := e.Run(context.Background(), "echo 'ObjectNotFound: no such item' >&2; echo done")
	require.True(t, res.OK(), res.String())
	assert.Equal(t, "Success: done\n", res.String())

	res = e.Run(context.Background(), "echo 'CommandNotFoundException' >&2")
	require.True(t, res.OK(), res.String())
	assert.Equal(t, "Success: "+DefaultSuccessMessage, res.String())
}

func TestCommandExecutor_CustomToleratedStderr(t *testing.T) {
	e := newPosixExecutor(t, Config{ToleratedStderr: []string{"npm WARN"}})

	res := e.Run(context.Background(), "echo 'npm WARN deprecated' >&2")
	assert.True(t, res.OK())

	res = e.Run(context.Background(), "echo 'ObjectNotFound' >&2")
	assert.False(t, res.OK())
}

func TestCommandExecutor_Timeout(t *testing.T) {
	e := newPosixExecutor(t, Config{Timeout: 50 * time.Millisecond})

	res := e.Run(context.Background(), "sleep 5")
	assert.False(t, res.OK())
	assert.Less(t, res.Duration, 5*time.Second)
}

func TestCommandExecutor_MissingShell(t *testing.T) {
	e := NewCommandExecutor(Config{
		Platform:  normalize.Posix,
		Shell:     "/definitely/not/a/shell",
		ShellArgs: []string{"-c"},
	})

	res := e.Run(context.Background(), "echo hi")
	assert.False(t, res.OK())
	assert.NotEmpty(t, res.Message)
}

func TestCommandExecutor_LogsEachRun(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	e := newPosixExecutor(t, Config{Logger: zap.New(core)})

	e.Run(context.Background(), "true")
	e.Run(context.Background(), "false")

	require.Equal(t, 2, logs.Len())
	entries := logs.All()
	assert.Equal(t, "Command executed", entries[0].Message)
	assert.Equal(t, "Command failed", entries[1].Message)
	assert.Equal(t, "false", entries[1].ContextMap()["command"])
}

func TestClassify_Windows(t *testing.T) {
	e := NewCommandExecutor(Config{Platform: normalize.Windows, Shell: "powershell.exe"})

	res := e.classify("", "Get-Item : ObjectNotFound", nil)
	assert.True(t, res.OK())

	res = e.classify("", "Access denied", nil)
	assert.False(t, res.OK())
	assert.Equal(t, "Error: Access denied", res.String())
}
