package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// Decision describes what Respond wrote. It is informational only.
type Decision struct {
	Action   Action
	Fallback bool
	Err      error
	Turn     int
	Input    []byte
}

type outputRecord struct {
	Action Action `json:"action"`
}

// Respond runs one full invocation: a single read of r, the strategy, and a
// single output line on w. Any failure along the way, panics included, writes
// the fallback record instead; the caller cannot tell the two apart.
func Respond(ctx context.Context, r io.Reader, w io.Writer, strategy Strategy) Decision {
	decision := decide(ctx, r, strategy)

	line := fallbackLine
	if !decision.Fallback {
		encoded, err := json.Marshal(outputRecord{Action: decision.Action})
		if err != nil {
			decision = failed(decision.Input, fmt.Errorf("%w: encode: %v", ErrMalformedOrUnexpected, err))
		} else {
			line = append(encoded, '\n')
		}
	}

	if _, err := w.Write(line); err != nil {
		decision.Err = errors.Join(decision.Err, fmt.Errorf("write output: %w", err))
	}

	if decision.Fallback {
		log.Warn("Decision failed, sent fallback", "action", FallbackAction, "error", decision.Err)
	} else {
		log.Debug("Decision made", "turn", decision.Turn, "action", decision.Action)
	}
	return decision
}

func decide(ctx context.Context, r io.Reader, strategy Strategy) (decision Decision) {
	defer func() {
		if p := recover(); p != nil {
			decision = failed(decision.Input, fmt.Errorf("%w: panic: %v", ErrMalformedOrUnexpected, p))
		}
	}()

	input, err := io.ReadAll(io.LimitReader(r, MaxSnapshotBytes))
	decision.Input = input
	if err != nil {
		return failed(input, fmt.Errorf("%w: read input: %v", ErrMalformedOrUnexpected, err))
	}
	if strategy == nil {
		return failed(input, fmt.Errorf("%w: no strategy configured", ErrMalformedOrUnexpected))
	}

	snapshot, err := DecodeSnapshot(input)
	if err != nil {
		return failed(input, err)
	}
	decision.Turn = snapshot.Turn

	action, err := strategy.SelectAction(ctx, snapshot)
	if err != nil {
		if !errors.Is(err, ErrMalformedOrUnexpected) {
			err = fmt.Errorf("%w: %v", ErrMalformedOrUnexpected, err)
		}
		return failed(input, err)
	}
	if !action.Valid() {
		return failed(input, fmt.Errorf("%w: strategy returned %q", ErrMalformedOrUnexpected, action))
	}

	decision.Action = action
	return decision
}

func failed(input []byte, err error) Decision {
	return Decision{Action: FallbackAction, Fallback: true, Err: err, Input: input}
}

// RespondWithError writes the fallback record for a failure that happened
// before a strategy was available.
func RespondWithError(w io.Writer, err error) Decision {
	decision := failed(nil, fmt.Errorf("%w: %v", ErrMalformedOrUnexpected, err))
	if _, werr := w.Write(fallbackLine); werr != nil {
		decision.Err = errors.Join(decision.Err, fmt.Errorf("write output: %w", werr))
	}
	log.Warn("Decision failed, sent fallback", "action", FallbackAction, "error", decision.Err)
	return decision
}
