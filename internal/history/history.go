// Package history holds the ordered conversation record of one session.
package history

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ashutoshrp06/sitesmith/internal/types"
)

// ErrUnpairedTurn is returned by Validate when a tool request and its
// result are not adjacent.
var ErrUnpairedTurn = errors.New("unpaired tool turn")

// History is an append-only list of turns. It is never trimmed, so the
// model always sees the full session.
type History struct {
	turns []types.Turn
	mu    sync.RWMutex
}

func New() *History {
	return &History{
		turns: make([]types.Turn, 0),
	}
}

func (h *History) Append(turns ...types.Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.turns = append(h.turns, turns...)
}

// Turns returns a copy of the recorded turns.
func (h *History) Turns() []types.Turn {
	h.mu.RLock()
	defer h.mu.RUnlock()

	result := make([]types.Turn, len(h.turns))
	copy(result, h.turns)
	return result
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.turns)
}

// Last returns the most recent turn, if any.
func (h *History) Last() (types.Turn, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.turns) == 0 {
		return types.Turn{}, false
	}
	return h.turns[len(h.turns)-1], true
}

func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.turns = make([]types.Turn, 0)
}

// Validate checks that every tool request is immediately followed by
// exactly one result for the same tool and call, and that no result
// appears on its own.
func (h *History) Validate() error {
	return Validate(h.Turns())
}

// Validate checks the request/result pairing of an arbitrary turn slice.
func Validate(turns []types.Turn) error {
	for i, t := range turns {
		switch t.Kind {
		case types.TurnModelToolRequest:
			if i+1 >= len(turns) {
				return fmt.Errorf("%w: request for %s at %d has no result", ErrUnpairedTurn, t.ToolName, i)
			}
			next := turns[i+1]
			if next.Kind != types.TurnToolResult {
				return fmt.Errorf("%w: request for %s at %d followed by %s", ErrUnpairedTurn, t.ToolName, i, next.Kind)
			}
			if next.ToolName != t.ToolName || next.CallID != t.CallID {
				return fmt.Errorf("%w: result at %d does not match request for %s", ErrUnpairedTurn, i+1, t.ToolName)
			}
		case types.TurnToolResult:
			if i == 0 || turns[i-1].Kind != types.TurnModelToolRequest {
				return fmt.Errorf("%w: result for %s at %d has no request", ErrUnpairedTurn, t.ToolName, i)
			}
		}
	}
	return nil
}
