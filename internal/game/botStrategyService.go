package game

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

// LuaStrategy delegates the decision to a user script that defines
// nextMove(state). Each call runs in a fresh interpreter.
type LuaStrategy struct {
	StrategyName string
	proto        *lua.FunctionProto
	timeout      time.Duration
}

func NewLuaStrategy(name, source string, timeout time.Duration) (*LuaStrategy, error) {
	chunk, err := parse.Parse(strings.NewReader(source), name)
	if err != nil {
		return nil, fmt.Errorf("could not parse lua strategy %s: %w", name, err)
	}
	proto, err := lua.Compile(chunk, name)
	if err != nil {
		return nil, fmt.Errorf("could not compile lua strategy %s: %w", name, err)
	}
	if timeout <= 0 {
		timeout = DefaultScriptTimeout
	}
	return &LuaStrategy{StrategyName: name, proto: proto, timeout: timeout}, nil
}

func LoadLuaStrategy(path string, timeout time.Duration) (*LuaStrategy, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read lua strategy: %w", err)
	}
	return NewLuaStrategy(filepath.Base(path), string(source), timeout)
}

func (s *LuaStrategy) SelectAction(ctx context.Context, snapshot *WorldSnapshot) (Action, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	luaState := newSandboxState()
	defer luaState.Close()
	luaState.SetContext(ctx)

	luaState.Push(luaState.NewFunctionFromProto(s.proto))
	if err := luaState.PCall(0, 0, nil); err != nil {
		return "", s.scriptError(ctx, "could not load", err)
	}

	entry := luaState.GetGlobal(LuaEntryPoint)
	if entry.Type() != lua.LTFunction {
		return "", fmt.Errorf("%w: lua strategy %s does not define %s", ErrMalformedOrUnexpected, s.StrategyName, LuaEntryPoint)
	}

	luaState.Push(entry)
	luaState.Push(snapshotToLuaTable(luaState, snapshot))
	if err := luaState.PCall(1, 1, nil); err != nil {
		return "", s.scriptError(ctx, "could not execute", err)
	}

	luaReturn := luaState.Get(-1)
	luaState.Pop(1)
	return convertLuaReturnToAction(luaReturn)
}

func (s *LuaStrategy) scriptError(ctx context.Context, what string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: lua strategy %s exceeded %s", ErrMalformedOrUnexpected, s.StrategyName, s.timeout)
	}
	return fmt.Errorf("%w: %s lua strategy %s: %v", ErrMalformedOrUnexpected, what, s.StrategyName, err)
}

func newSandboxState() *lua.LState {
	luaState := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		luaState.Push(luaState.NewFunction(lib.open))
		luaState.Push(lua.LString(lib.name))
		luaState.Call(1, 0)
	}
	// base opens these; scripts must not reach the filesystem.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		luaState.SetGlobal(name, lua.LNil)
	}
	return luaState
}

// snapshotToLuaTable mirrors the input record. Coordinates stay 0-based.
func snapshotToLuaTable(L *lua.LState, snapshot *WorldSnapshot) *lua.LTable {
	grid := L.NewTable()
	grid.RawSetString("rows", lua.LNumber(snapshot.Grid.Rows))
	grid.RawSetString("cols", lua.LNumber(snapshot.Grid.Cols))

	state := L.NewTable()
	state.RawSetString("grid_size", grid)
	state.RawSetString("turn", lua.LNumber(snapshot.Turn))
	state.RawSetString("my_snake", snakeToLuaTable(L, snapshot.Self))
	state.RawSetString("enemy_snake", snakeToLuaTable(L, snapshot.Opponent))
	state.RawSetString("food", positionToLuaTable(L, snapshot.Food))
	return state
}

func snakeToLuaTable(L *lua.LState, snake SnakeState) *lua.LTable {
	body := L.NewTable()
	for _, segment := range snake.Body {
		body.Append(positionToLuaTable(L, segment))
	}

	tbl := L.NewTable()
	tbl.RawSetString("head", positionToLuaTable(L, snake.Head))
	tbl.RawSetString("body", body)
	tbl.RawSetString("direction", lua.LString(snake.Direction))
	tbl.RawSetString("score", lua.LNumber(snake.Score))
	tbl.RawSetString("alive", lua.LBool(snake.Alive))
	return tbl
}

func positionToLuaTable(L *lua.LState, p Position) *lua.LTable {
	tbl := L.NewTable()
	tbl.Append(lua.LNumber(p.Row))
	tbl.Append(lua.LNumber(p.Col))
	return tbl
}

// convertLuaReturnToAction accepts "up"/"down"/"left"/"right" or a unit step
// table {drow=..., dcol=...}.
func convertLuaReturnToAction(luaReturn lua.LValue) (Action, error) {
	switch value := luaReturn.(type) {
	case lua.LString:
		return ParseAction(string(value))
	case *lua.LTable:
		dRow, okRow := luaStep(value.RawGetString("drow"))
		dCol, okCol := luaStep(value.RawGetString("dcol"))
		if !okRow || !okCol {
			return "", fmt.Errorf("%w: lua step {drow=%s, dcol=%s} must hold whole numbers",
				ErrMalformedOrUnexpected, value.RawGetString("drow"), value.RawGetString("dcol"))
		}
		if action, ok := ActionForDelta(dRow, dCol); ok {
			return action, nil
		}
		return "", fmt.Errorf("%w: lua step {drow=%d, dcol=%d} is not a unit move", ErrMalformedOrUnexpected, dRow, dCol)
	default:
		return "", fmt.Errorf("%w: lua return value was type %s, expected string or table", ErrMalformedOrUnexpected, luaReturn.Type())
	}
}

// luaStep reads one step component. A missing component is zero.
func luaStep(v lua.LValue) (int, bool) {
	switch n := v.(type) {
	case *lua.LNilType:
		return 0, true
	case lua.LNumber:
		if float64(n) != math.Trunc(float64(n)) || math.Abs(float64(n)) > 1 {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
