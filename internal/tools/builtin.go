package tools

import (
	"context"

	"github.com/ashutoshrp06/sitesmith/internal/types"
)

// CommandRunner executes a shell command. *executor.CommandExecutor satisfies it.
type CommandRunner interface {
	Run(ctx context.Context, command string) types.ExecutionResult
}

// FileWriter writes a whole file. *executor.FileWriter satisfies it.
type FileWriter interface {
	Write(path, content string) types.ExecutionResult
}

// Builtin returns a registry with the standard tool set.
func Builtin(runner CommandRunner, writer FileWriter) *Registry {
	return MustNewRegistry(
		NewExecuteCommandTool(runner),
		NewWriteFileContentTool(writer),
	)
}

// ============================================================================
// executeCommand
// ============================================================================

// ExecuteCommandTool runs a single shell command, translated for the host.
type ExecuteCommandTool struct {
	runner CommandRunner
}

func NewExecuteCommandTool(runner CommandRunner) *ExecuteCommandTool {
	return &ExecuteCommandTool{runner: runner}
}

func (t *ExecuteCommandTool) Name() types.ToolName { return types.ToolExecuteCommand }

func (t *ExecuteCommandTool) Description() string {
	return "Execute a single terminal/shell command for file/folder operations"
}

func (t *ExecuteCommandTool) Parameters() []types.Parameter {
	return []types.Parameter{
		{
			Name:        "command",
			Type:        "string",
			Description: "Terminal command to execute (will be converted for Windows if needed)",
			Required:    true,
		},
	}
}

func (t *ExecuteCommandTool) Execute(ctx context.Context, params map[string]string) types.ExecutionResult {
	command := params["command"]
	if command == "" {
		return types.Failure("command is empty")
	}
	return t.runner.Run(ctx, command)
}

// ============================================================================
// writeFileContent
// ============================================================================

// WriteFileContentTool writes a file directly, avoiding shell quoting.
type WriteFileContentTool struct {
	writer FileWriter
}

func NewWriteFileContentTool(writer FileWriter) *WriteFileContentTool {
	return &WriteFileContentTool{writer: writer}
}

func (t *WriteFileContentTool) Name() types.ToolName { return types.ToolWriteFileContent }

func (t *WriteFileContentTool) Description() string {
	return "Write content to a file (more reliable than echo commands)"
}

func (t *WriteFileContentTool) Parameters() []types.Parameter {
	return []types.Parameter{
		{Name: "filePath", Type: "string", Description: "Path to the file including filename", Required: true},
		{Name: "content", Type: "string", Description: "Content to write to the file", Required: true},
	}
}

func (t *WriteFileContentTool) Execute(_ context.Context, params map[string]string) types.ExecutionResult {
	return t.writer.Write(params["filePath"], params["content"])
}
