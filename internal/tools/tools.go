// Package tools provides the tool framework for sitesmith.
package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ashutoshrp06/sitesmith/internal/types"
	"github.com/ashutoshrp06/sitesmith/internal/validator"
	"go.uber.org/zap"
)

var (
	// ErrToolNotFound is returned when the model names a tool that is not registered.
	ErrToolNotFound = errors.New("tool not found")
	// ErrDuplicateTool is returned when two tools share a name.
	ErrDuplicateTool = errors.New("tool already registered")
)

// Tool defines the interface that all tools must implement.
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() types.ToolName

	// Description returns a human-readable description for the LLM.
	Description() string

	// Parameters returns the parameter schema for validation.
	Parameters() []types.Parameter

	// Execute runs the tool with validated parameters.
	Execute(ctx context.Context, params map[string]string) types.ExecutionResult
}

// Describe builds the descriptor advertised to the model.
func Describe(t Tool) types.ToolDescriptor {
	return types.ToolDescriptor{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  t.Parameters(),
	}
}

// Registry is a fixed set of tools. It is built once and never changes,
// so it can be shared between sessions without locking.
type Registry struct {
	tools map[types.ToolName]Tool
	names []types.ToolName
}

// NewRegistry creates a registry holding tools.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{
		tools: make(map[types.ToolName]Tool, len(tools)),
	}

	for _, tool := range tools {
		name := tool.Name()
		if _, exists := r.tools[name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTool, name)
		}
		r.tools[name] = tool
		r.names = append(r.names, name)
	}

	sort.Slice(r.names, func(i, j int) bool { return r.names[i] < r.names[j] })
	return r, nil
}

// MustNewRegistry is NewRegistry that panics on error.
func MustNewRegistry(tools ...Tool) *Registry {
	r, err := NewRegistry(tools...)
	if err != nil {
		panic(err)
	}
	return r
}

// Get retrieves a tool by name.
func (r *Registry) Get(name types.ToolName) (Tool, bool) {
	tool, exists := r.tools[name]
	return tool, exists
}

// Names returns all registered tool names, sorted.
func (r *Registry) Names() []types.ToolName {
	return append([]types.ToolName(nil), r.names...)
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.names)
}

// Descriptors returns the metadata of every tool, sorted by name.
func (r *Registry) Descriptors() []types.ToolDescriptor {
	descs := make([]types.ToolDescriptor, 0, len(r.names))
	for _, name := range r.names {
		descs = append(descs, Describe(r.tools[name]))
	}
	return descs
}

// Subset returns a registry restricted to names. Unknown names are an error.
func (r *Registry) Subset(names ...types.ToolName) (*Registry, error) {
	picked := make([]Tool, 0, len(names))
	for _, name := range names {
		tool, ok := r.tools[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
		}
		picked = append(picked, tool)
	}
	return NewRegistry(picked...)
}

// Dispatcher resolves invocations against a registry, validates their
// arguments, and times execution.
type Dispatcher struct {
	registry  *Registry
	validator *validator.ArgumentValidator
	logger    *zap.Logger
}

// NewDispatcher creates a new tool dispatcher.
func NewDispatcher(registry *Registry, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		registry:  registry,
		validator: validator.NewArgumentValidator(),
		logger:    logger,
	}
}

// Registry returns the tools this dispatcher serves.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Dispatch runs the named tool. An unknown tool is reported as an error
// wrapping ErrToolNotFound; invalid arguments become a failed result so
// the model can correct itself.
func (d *Dispatcher) Dispatch(ctx context.Context, inv types.ToolInvocation) (types.ExecutionResult, error) {
	start := time.Now()

	tool, exists := d.registry.Get(inv.Name)
	if !exists {
		d.logger.Warn("Model requested unknown tool", zap.String("tool", string(inv.Name)))
		return types.Failure(fmt.Sprintf("unknown tool: %s", inv.Name)), fmt.Errorf("%w: %s", ErrToolNotFound, inv.Name)
	}

	params, err := d.validator.Validate(Describe(tool), inv.Arguments)
	if err != nil {
		d.logger.Warn("Tool arguments rejected",
			zap.String("tool", string(inv.Name)),
			zap.Error(err))
		result := types.Failure(fmt.Sprintf("invalid arguments for %s: %v", inv.Name, err))
		result.Duration = time.Since(start)
		return result, nil
	}

	result := tool.Execute(ctx, params)
	result.Duration = time.Since(start)

	d.logger.Debug("Tool executed",
		zap.String("tool", string(inv.Name)),
		zap.Bool("success", result.OK()),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// FormatTools renders the registry for humans.
func (r *Registry) FormatTools() string {
	var sb strings.Builder
	for _, desc := range r.Descriptors() {
		sb.WriteString(fmt.Sprintf("%s\n  %s\n", desc.Name, desc.Description))
		for _, p := range desc.Parameters {
			req := ""
			if p.Required {
				req = " (required)"
			}
			sb.WriteString(fmt.Sprintf("    - %s: %s%s\n", p.Name, p.Description, req))
		}
	}
	return sb.String()
}
