// Package script registers the host preference API inside an embedded
// Lua state. Scripts see a global prefs table whose functions carry
// typed values across the bridge into the durable store. Absence maps
// to nil, kind mismatches and encoding failures raise Lua errors, and
// write or delete outcomes surface as booleans, so every store result
// keeps its identity inside the scripting runtime.
package script

import (
	"context"
	"errors"

	"github.com/Shopify/go-lua"
	"github.com/louisbranch/luaprefs/internal/luavalue"
	"github.com/louisbranch/luaprefs/internal/prefstore"
)

// readStringBudget caps text reads from scripts, which cannot supply a
// buffer of their own.
const readStringBudget = 64 * 1024

// Bind registers the prefs global backed by the given store. The
// context is used for every store call a script makes.
func Bind(ctx context.Context, state *lua.State, store prefstore.Store) {
	b := &binding{ctx: ctx, store: store}
	state.NewTable()
	lua.SetFunctions(state, []lua.RegistryFunction{
		{Name: "write_boolean", Function: b.writeBoolean},
		{Name: "write_integer", Function: b.writeInteger},
		{Name: "write_float", Function: b.writeFloat},
		{Name: "write_string", Function: b.writeString},
		{Name: "read_boolean", Function: b.readBoolean},
		{Name: "read_integer", Function: b.readInteger},
		{Name: "read_float", Function: b.readFloat},
		{Name: "read_string", Function: b.readString},
		{Name: "exists", Function: b.exists},
		{Name: "delete", Function: b.delete},
	}, 0)
	state.SetGlobal("prefs")
}

type binding struct {
	ctx   context.Context
	store prefstore.Store
}

func (b *binding) writeBoolean(state *lua.State) int {
	domain := lua.CheckString(state, 1)
	key := lua.CheckString(state, 2)
	lua.CheckType(state, 3, lua.TypeBoolean)
	value := state.ToBoolean(3)
	return b.pushWriteResult(state, b.store.WriteBoolean(b.ctx, domain, key, value))
}

func (b *binding) writeInteger(state *lua.State) int {
	domain := lua.CheckString(state, 1)
	key := lua.CheckString(state, 2)
	value := lua.CheckInteger(state, 3)
	return b.pushWriteResult(state, b.store.WriteInteger(b.ctx, domain, key, int64(value)))
}

func (b *binding) writeFloat(state *lua.State) int {
	domain := lua.CheckString(state, 1)
	key := lua.CheckString(state, 2)
	value := lua.CheckNumber(state, 3)
	return b.pushWriteResult(state, b.store.WriteFloat(b.ctx, domain, key, value))
}

func (b *binding) writeString(state *lua.State) int {
	domain := lua.CheckString(state, 1)
	key := lua.CheckString(state, 2)
	value := lua.CheckString(state, 3)
	err := b.store.WriteString(b.ctx, domain, key, value)
	if errors.Is(err, prefstore.ErrInvalidText) {
		lua.Errorf(state, "%s", err.Error())
		return 0
	}
	return b.pushWriteResult(state, err)
}

// pushWriteResult reports mutation outcomes the way the store does:
// success and durability failure are both representable without an
// exception, so scripts can branch without pcall.
func (b *binding) pushWriteResult(state *lua.State, err error) int {
	state.PushBoolean(err == nil)
	return 1
}

func (b *binding) readBoolean(state *lua.State) int {
	domain := lua.CheckString(state, 1)
	key := lua.CheckString(state, 2)
	value, err := b.store.ReadBoolean(b.ctx, domain, key)
	if stop := b.checkReadError(state, err); stop {
		return 1
	}
	luavalue.Push(state, luavalue.Boolean(value))
	return 1
}

func (b *binding) readInteger(state *lua.State) int {
	domain := lua.CheckString(state, 1)
	key := lua.CheckString(state, 2)
	value, err := b.store.ReadInteger(b.ctx, domain, key)
	if stop := b.checkReadError(state, err); stop {
		return 1
	}
	luavalue.Push(state, luavalue.Integer(value))
	return 1
}

func (b *binding) readFloat(state *lua.State) int {
	domain := lua.CheckString(state, 1)
	key := lua.CheckString(state, 2)
	value, err := b.store.ReadFloat(b.ctx, domain, key)
	if stop := b.checkReadError(state, err); stop {
		return 1
	}
	luavalue.Push(state, luavalue.Float(value))
	return 1
}

func (b *binding) readString(state *lua.State) int {
	domain := lua.CheckString(state, 1)
	key := lua.CheckString(state, 2)
	value, err := b.store.ReadString(b.ctx, domain, key, readStringBudget)
	if stop := b.checkReadError(state, err); stop {
		return 1
	}
	luavalue.Push(state, luavalue.Text(value))
	return 1
}

// checkReadError translates a read failure into the script's world:
// absence pushes nil, everything else raises a Lua error carrying the
// failure kind. Returns true when a result was already produced.
func (b *binding) checkReadError(state *lua.State, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, prefstore.ErrNotFound) {
		state.PushNil()
		return true
	}
	lua.Errorf(state, "%s", err.Error())
	return true
}

func (b *binding) exists(state *lua.State) int {
	domain := lua.CheckString(state, 1)
	key := lua.CheckString(state, 2)
	found, err := b.store.Exists(b.ctx, domain, key)
	if err != nil {
		lua.Errorf(state, "%s", err.Error())
		return 0
	}
	state.PushBoolean(found)
	return 1
}

func (b *binding) delete(state *lua.State) int {
	domain := lua.CheckString(state, 1)
	key := lua.CheckString(state, 2)
	return b.pushWriteResult(state, b.store.Delete(b.ctx, domain, key))
}
