// Package executor runs model-requested shell commands and file writes on
// the host.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/ashutoshrp06/sitesmith/internal/normalize"
	"github.com/ashutoshrp06/sitesmith/internal/types"
	"go.uber.org/zap"
)

// DefaultSuccessMessage is reported when a command succeeds without output.
const DefaultSuccessMessage = "Command executed successfully"

// DefaultToleratedStderr lists stderr fragments that do not turn a
// successful command into a failure. PowerShell prints these for harmless
// lookups such as probing a path that does not exist yet.
var DefaultToleratedStderr = []string{
	"ObjectNotFound",
	"CommandNotFoundException",
}

// Config configures a CommandExecutor.
type Config struct {
	Platform normalize.Platform
	// Shell overrides the interpreter. It is invoked as `<Shell> <ShellArgs...> <command>`.
	Shell     string
	ShellArgs []string
	WorkDir   string
	// Timeout bounds each command. Zero means no limit.
	Timeout         time.Duration
	ToleratedStderr []string
	Logger          *zap.Logger
}

// CommandExecutor runs one shell command at a time and reports the outcome
// as text for the model.
type CommandExecutor struct {
	platform  normalize.Platform
	shell     string
	shellArgs []string
	workDir   string
	timeout   time.Duration
	tolerated []string
	logger    *zap.Logger
}

func NewCommandExecutor(cfg Config) *CommandExecutor {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Platform == "" {
		cfg.Platform = normalize.Current()
	}
	if cfg.ToleratedStderr == nil {
		cfg.ToleratedStderr = DefaultToleratedStderr
	}
	if cfg.Shell == "" {
		cfg.Shell, cfg.ShellArgs = defaultShell(cfg.Platform)
	}

	return &CommandExecutor{
		platform:  cfg.Platform,
		shell:     cfg.Shell,
		shellArgs: cfg.ShellArgs,
		workDir:   cfg.WorkDir,
		timeout:   cfg.Timeout,
		tolerated: cfg.ToleratedStderr,
		logger:    cfg.Logger,
	}
}

func defaultShell(p normalize.Platform) (string, []string) {
	if p == normalize.Windows {
		return "powershell.exe", []string{"-NoProfile", "-NonInteractive", "-Command"}
	}
	if path, err := exec.LookPath("bash"); err == nil {
		return path, []string{"-c"}
	}
	return "/bin/sh", []string{"-c"}
}

// Platform returns the platform commands are normalized for.
func (e *CommandExecutor) Platform() normalize.Platform {
	return e.platform
}

// Run normalizes command for the platform and executes it through the shell.
func (e *CommandExecutor) Run(ctx context.Context, command string) types.ExecutionResult {
	start := time.Now()
	normalized := normalize.Normalize(command, e.platform)

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	args := append(append([]string{}, e.shellArgs...), normalized)
	cmd := exec.CommandContext(ctx, e.shell, args...)
	cmd.Dir = e.workDir
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := e.classify(stdout.String(), stderr.String(), err)
	result.Duration = time.Since(start)

	fields := []zap.Field{
		zap.String("command", command),
		zap.String("normalized", normalized),
		zap.Duration("duration", result.Duration),
		zap.Bool("success", result.OK()),
	}
	if result.OK() {
		e.logger.Info("Command executed", fields...)
	} else {
		e.logger.Warn("Command failed", append(fields, zap.String("error", result.Message))...)
	}

	return result
}

func (e *CommandExecutor) classify(stdout, stderr string, err error) types.ExecutionResult {
	errText := strings.TrimSpace(stderr)

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if errText == "" {
				errText = exitErr.Error()
			}
			return types.Failure(fmt.Sprintf("command failed with exit code %d: %s", exitErr.ExitCode(), errText))
		}
		return types.Failure(err.Error())
	}

	if errText != "" && !e.isTolerated(errText) {
		return types.Failure(errText)
	}

	if strings.TrimSpace(stdout) == "" {
		return types.Success(DefaultSuccessMessage)
	}
	return types.Success(stdout)
}

func (e *CommandExecutor) isTolerated(stderr string) bool {
	for _, fragment := range e.tolerated {
		if fragment != "" && strings.Contains(stderr, fragment) {
			return true
		}
	}
	return false
}
