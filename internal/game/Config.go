package game

import "time"

const (
	// FallbackAction is written whenever a decision cannot be made.
	FallbackAction = Up

	MaxSnapshotBytes     = 1 << 20
	DefaultScriptTimeout = 1000 * time.Millisecond
	LuaEntryPoint        = "nextMove"
)

// fallbackLine is the literal output record for any failed invocation.
var fallbackLine = []byte(`{"action":"up"}` + "\n")
