// Package types defines shared data structures for the site builder agent.
package types

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// ToolName identifies a built-in tool.
type ToolName string

const (
	ToolExecuteCommand   ToolName = "executeCommand"
	ToolWriteFileContent ToolName = "writeFileContent"
)

// TurnKind tags the variant held by a Turn.
type TurnKind int

const (
	TurnUserText TurnKind = iota
	TurnModelText
	TurnModelToolRequest
	TurnToolResult
)

// String returns a human-readable kind name.
func (k TurnKind) String() string {
	switch k {
	case TurnUserText:
		return "user"
	case TurnModelText:
		return "model"
	case TurnModelToolRequest:
		return "tool_request"
	case TurnToolResult:
		return "tool_result"
	default:
		return "unknown"
	}
}

// Turn is one entry in a conversation history. Only the fields relevant to
// Kind are populated:
//   - TurnUserText, TurnModelText: Text
//   - TurnModelToolRequest: ToolName, Arguments, CallID
//   - TurnToolResult: ToolName, Text, CallID
type Turn struct {
	Kind      TurnKind       `json:"kind"`
	Text      string         `json:"text,omitempty"`
	ToolName  ToolName       `json:"tool_name,omitempty"`
	Arguments map[string]any `json:"arguments,omitempty"`
	CallID    string         `json:"call_id,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// UserText builds a user turn.
func UserText(text string) Turn {
	return Turn{Kind: TurnUserText, Text: text, Timestamp: time.Now()}
}

// ModelText builds a model text turn.
func ModelText(text string) Turn {
	return Turn{Kind: TurnModelText, Text: text, Timestamp: time.Now()}
}

// ModelToolRequest builds a tool request turn.
func ModelToolRequest(callID string, name ToolName, args map[string]any) Turn {
	return Turn{
		Kind:      TurnModelToolRequest,
		ToolName:  name,
		Arguments: args,
		CallID:    callID,
		Timestamp: time.Now(),
	}
}

// ToolResult builds a tool result turn.
func ToolResult(callID string, name ToolName, result string) Turn {
	return Turn{
		Kind:      TurnToolResult,
		ToolName:  name,
		Text:      result,
		CallID:    callID,
		Timestamp: time.Now(),
	}
}

// Parameter describes one tool argument.
type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// ToolDescriptor is what the model is told about a tool.
type ToolDescriptor struct {
	Name        ToolName    `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`
}

// Required returns the names of required parameters in declaration order.
func (d ToolDescriptor) Required() []string {
	var names []string
	for _, p := range d.Parameters {
		if p.Required {
			names = append(names, p.Name)
		}
	}
	return names
}

// ToolInvocation is a tool call requested by the model.
type ToolInvocation struct {
	ID        string         `json:"id,omitempty"`
	Name      ToolName       `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// Status is the outcome of a tool execution.
type Status int

const (
	StatusSuccess Status = iota
	StatusFailure
)

// ExecutionResult is the textual outcome of a tool execution.
type ExecutionResult struct {
	Status   Status
	Message  string
	Duration time.Duration
}

// Success builds a successful result.
func Success(msg string) ExecutionResult {
	return ExecutionResult{Status: StatusSuccess, Message: msg}
}

// Failure builds a failed result.
func Failure(msg string) ExecutionResult {
	return ExecutionResult{Status: StatusFailure, Message: msg}
}

// OK reports whether the execution succeeded.
func (r ExecutionResult) OK() bool {
	return r.Status == StatusSuccess
}

// String renders the result the way it is shown to the model.
func (r ExecutionResult) String() string {
	if r.OK() {
		return fmt.Sprintf("Success: %s", r.Message)
	}
	return fmt.Sprintf("Error: %s", r.Message)
}

// AgentState represents the current state of agent processing.
type AgentState int

const (
	StateIdle AgentState = iota
	StateThinking
	StateToolExecuting
	StateToolResult
	StateResponding
	StateError
)

// String returns a human-readable state name.
func (s AgentState) String() string {
	names := [...]string{
		"Idle",
		"Thinking",
		"Executing tool",
		"Tool finished",
		"Responding",
		"Error",
	}
	if int(s) < len(names) {
		return names[s]
	}
	return "Unknown"
}

// AgentEvent is sent during agent processing to update the UI.
type AgentEvent struct {
	State       AgentState
	Message     string
	ToolCall    *ToolInvocation
	ToolResult  *ExecutionResult
	FinalAnswer string
	Iterations  int
	Error       error
}

// Truncate shortens s to maxLen characters and marks the cut with "...".
// It never splits a multi-byte character.
func Truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	i := 0
	for n := 0; n < maxLen; n++ {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s[:i] + "..."
}
