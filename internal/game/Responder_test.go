package game

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type strategyFunc func(ctx context.Context, snapshot *WorldSnapshot) (Action, error)

func (f strategyFunc) SelectAction(ctx context.Context, snapshot *WorldSnapshot) (Action, error) {
	return f(ctx, snapshot)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestRespond_Example(t *testing.T) {
	var out bytes.Buffer
	decision := Respond(context.Background(), strings.NewReader(exampleInput), &out, GreedyStrategy{})

	assert.Equal(t, "{\"action\":\"right\"}\n", out.String())
	assert.False(t, decision.Fallback)
	assert.NoError(t, decision.Err)
	assert.Equal(t, Right, decision.Action)
	assert.Equal(t, 123, decision.Turn)
	assert.Equal(t, exampleInput, string(decision.Input))
}

func TestRespond_Fallback(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		strategy Strategy
	}{
		{"empty input", "", GreedyStrategy{}},
		{"invalid json", "{not json", GreedyStrategy{}},
		{"out of range", strings.Replace(exampleInput, `"food": [5, 8]`, `"food": [50, 8]`, 1), GreedyStrategy{}},
		{"no strategy", exampleInput, nil},
		{"strategy error", exampleInput, strategyFunc(func(context.Context, *WorldSnapshot) (Action, error) {
			return "", errors.New("boom")
		})},
		{"strategy panic", exampleInput, strategyFunc(func(context.Context, *WorldSnapshot) (Action, error) {
			panic("index out of range")
		})},
		{"invalid action", exampleInput, strategyFunc(func(context.Context, *WorldSnapshot) (Action, error) {
			return "jump", nil
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			decision := Respond(context.Background(), strings.NewReader(tt.input), &out, tt.strategy)

			assert.Equal(t, "{\"action\":\"up\"}\n", out.String())
			assert.True(t, decision.Fallback)
			assert.Equal(t, Up, decision.Action)
			assert.ErrorIs(t, decision.Err, ErrMalformedOrUnexpected)
		})
	}
}

func TestRespond_ChosenUpLooksLikeFallback(t *testing.T) {
	var chosen, failed bytes.Buffer
	up := strategyFunc(func(context.Context, *WorldSnapshot) (Action, error) { return Up, nil })

	Respond(context.Background(), strings.NewReader(exampleInput), &chosen, up)
	Respond(context.Background(), strings.NewReader(""), &failed, up)
	assert.Equal(t, chosen.String(), failed.String())
}

func TestRespond_WriteErrorIsReported(t *testing.T) {
	decision := Respond(context.Background(), strings.NewReader(exampleInput), failingWriter{}, GreedyStrategy{})
	require.Error(t, decision.Err)
	assert.Contains(t, decision.Err.Error(), "broken pipe")
	assert.Equal(t, Right, decision.Action)
}

func TestRespond_InputIsCapped(t *testing.T) {
	huge := exampleInput + strings.Repeat(" ", MaxSnapshotBytes)
	var out bytes.Buffer
	decision := Respond(context.Background(), strings.NewReader(huge), &out, GreedyStrategy{})

	assert.Len(t, decision.Input, MaxSnapshotBytes)
	assert.Equal(t, "{\"action\":\"right\"}\n", out.String())
}

func TestRespondWithError(t *testing.T) {
	var out bytes.Buffer
	decision := RespondWithError(&out, errors.New("script not found"))

	assert.Equal(t, "{\"action\":\"up\"}\n", out.String())
	assert.True(t, decision.Fallback)
	assert.ErrorIs(t, decision.Err, ErrMalformedOrUnexpected)
}
