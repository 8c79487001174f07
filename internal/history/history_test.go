package history

import (
	"testing"

	"github.com/ashutoshrp06/sitesmith/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_AppendAndCopy(t *testing.T) {
	h := New()
	h.Append(types.UserText("hi"), types.ModelText("hello"))

	turns := h.Turns()
	require.Len(t, turns, 2)
	turns[0].Text = "mutated"

	assert.Equal(t, "hi", h.Turns()[0].Text)
	assert.Equal(t, 2, h.Len())

	last, ok := h.Last()
	require.True(t, ok)
	assert.Equal(t, types.TurnModelText, last.Kind)
}

func TestHistory_Clear(t *testing.T) {
	h := New()
	h.Append(types.UserText("hi"))
	h.Clear()

	assert.Equal(t, 0, h.Len())
	_, ok := h.Last()
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	args := map[string]any{"command": "mkdir demo"}

	tests := []struct {
		name    string
		turns   []types.Turn
		wantErr bool
	}{
		{
			name:  "empty",
			turns: nil,
		},
		{
			name: "paired request",
			turns: []types.Turn{
				types.UserText("make a folder"),
				types.ModelToolRequest("c1", types.ToolExecuteCommand, args),
				types.ToolResult("c1", types.ToolExecuteCommand, "Success: ok"),
				types.ModelText("done"),
			},
		},
		{
			name: "request without result",
			turns: []types.Turn{
				types.UserText("make a folder"),
				types.ModelToolRequest("c1", types.ToolExecuteCommand, args),
			},
			wantErr: true,
		},
		{
			name: "request followed by text",
			turns: []types.Turn{
				types.ModelToolRequest("c1", types.ToolExecuteCommand, args),
				types.ModelText("oops"),
			},
			wantErr: true,
		},
		{
			name: "orphan result",
			turns: []types.Turn{
				types.UserText("hi"),
				types.ToolResult("c1", types.ToolExecuteCommand, "Success: ok"),
			},
			wantErr: true,
		},
		{
			name: "mismatched call id",
			turns: []types.Turn{
				types.ModelToolRequest("c1", types.ToolExecuteCommand, args),
				types.ToolResult("c2", types.ToolExecuteCommand, "Success: ok"),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.turns)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnpairedTurn)
				return
			}
			assert.NoError(t, err)
		})
	}
}
