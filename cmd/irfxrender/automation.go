package main

import (
	"fmt"

	"github.com/spf13/afero"
	lua "github.com/yuin/gopher-lua"

	"github.com/cwbudde/algo-irfx/dsp/signalchain"
)

const automateFunc = "automate"

// automation runs a Lua script's automate(block, seconds) before every
// block. The returned table maps parameter names to numbers, booleans or
// choice labels.
type automation struct {
	state *lua.LState
	fn    lua.LValue
}

func loadAutomation(fs afero.Fs, path string) (*automation, error) {
	src, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return newAutomation(path, string(src))
}

func newAutomation(name, src string) (*automation, error) {
	L := lua.NewState()
	if err := L.DoString(src); err != nil {
		L.Close()
		return nil, fmt.Errorf("script %s: %w", name, err)
	}

	fn := L.GetGlobal(automateFunc)
	if fn.Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("script %s: no %s(block, seconds) function", name, automateFunc)
	}

	return &automation{state: L, fn: fn}, nil
}

func (a *automation) apply(store *signalchain.Store, block int, seconds float64) error {
	L := a.state
	err := L.CallByParam(lua.P{Fn: a.fn, NRet: 1, Protect: true}, lua.LNumber(block), lua.LNumber(seconds))
	if err != nil {
		return fmt.Errorf("%s(%d): %w", automateFunc, block, err)
	}

	ret := L.Get(-1)
	L.Pop(1)
	if ret.Type() == lua.LTNil {
		return nil
	}
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return fmt.Errorf("%s(%d) returned %s, want table", automateFunc, block, ret.Type())
	}

	var applyErr error
	tbl.ForEach(func(k, v lua.LValue) {
		if applyErr != nil {
			return
		}
		name := k.String()
		id, err := signalchain.Lookup(name)
		if err != nil {
			applyErr = err
			return
		}
		switch v := v.(type) {
		case lua.LNumber:
			store.Set(id, float64(v))
		case lua.LBool:
			store.SetBool(id, bool(v))
		default:
			applyErr = store.SetText(name, v.String())
		}
	})

	return applyErr
}

func (a *automation) Close() {
	a.state.Close()
}
