package scripting

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/survivethenight/server/internal/core/ecs"
)

//go:embed scripts/*.lua
var builtin embed.FS

// Engine wraps a single gopher-lua VM for game logic execution.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine with the built-in scripts loaded, then loads
// every script in scriptsDir on top so operators can override functions.
// An empty scriptsDir uses the built-ins only.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	if err := e.loadBuiltin(); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load builtin scripts: %w", err)
	}
	if scriptsDir != "" {
		if err := e.loadDir(scriptsDir); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load scripts: %w", err)
		}
	}
	return e, nil
}

func (e *Engine) loadBuiltin() error {
	entries, err := builtin.ReadDir("scripts")
	if err != nil {
		return err
	}
	for _, entry := range entries {
		src, err := builtin.ReadFile("scripts/" + entry.Name())
		if err != nil {
			return err
		}
		if err := e.vm.DoString(string(src)); err != nil {
			return fmt.Errorf("load %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// WaveGroup is one line of a night's spawn plan.
type WaveGroup struct {
	Type  ecs.Type
	Count int
}

// fallbackWave is used when the script is missing or fails.
func fallbackWave(day int) []WaveGroup {
	return []WaveGroup{{Type: ecs.TypeZombie, Count: 3 + 2*day}}
}

// PlanWave calls the Lua plan_wave function for the given day number.
// Groups with unknown zombie kinds or non-positive counts are dropped.
func (e *Engine) PlanWave(day int) []WaveGroup {
	fn := e.vm.GetGlobal("plan_wave")
	if fn == lua.LNil {
		e.log.Error("lua function plan_wave not found")
		return fallbackWave(day)
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LNumber(day)); err != nil {
		e.log.Error("lua plan_wave error", zap.Error(err))
		return fallbackWave(day)
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		e.log.Error("lua plan_wave returned non-table")
		return fallbackWave(day)
	}

	var groups []WaveGroup
	rt.ForEach(func(_, v lua.LValue) {
		row, ok := v.(*lua.LTable)
		if !ok {
			return
		}
		g := WaveGroup{Type: ecs.Type(lStr(row, "type")), Count: lInt(row, "count")}
		if !g.Type.IsZombie() || g.Count <= 0 {
			e.log.Warn("lua plan_wave: ignoring group",
				zap.String("type", string(g.Type)), zap.Int("count", g.Count))
			return
		}
		groups = append(groups, g)
	})
	return groups
}

// NightDuration calls the optional Lua night_duration function. It returns
// ok=false when the script does not define one.
func (e *Engine) NightDuration(day int, base float64) (float64, bool) {
	if e.vm.GetGlobal("night_duration") == lua.LNil {
		return 0, false
	}
	v := e.callNumberFunc("night_duration", float64(day), base)
	if v <= 0 {
		return 0, false
	}
	return v, true
}

// --- Lua helpers ---

// lInt reads an integer field from a Lua table.
func lInt(t *lua.LTable, key string) int {
	return int(lua.LVAsNumber(t.RawGetString(key)))
}

// lStr reads a string field from a Lua table.
func lStr(t *lua.LTable, key string) string {
	return lua.LVAsString(t.RawGetString(key))
}

// callNumberFunc calls a Lua function with number args and returns a number result.
func (e *Engine) callNumberFunc(name string, args ...float64) float64 {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		e.log.Error("lua function not found", zap.String("name", name))
		return 0
	}

	lArgs := make([]lua.LValue, len(args))
	for i, a := range args {
		lArgs[i] = lua.LNumber(a)
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lArgs...); err != nil {
		e.log.Error("lua call error", zap.String("func", name), zap.Error(err))
		return 0
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	return float64(lua.LVAsNumber(result))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
