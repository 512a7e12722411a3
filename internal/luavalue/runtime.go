package luavalue

import (
	"fmt"

	"github.com/Shopify/go-lua"
)

// Runtime owns one embedded Lua state and tracks the error object left
// behind by the most recent failed chunk. A Runtime is single-threaded:
// every call must happen on the goroutine that owns it.
type Runtime struct {
	state   *lua.State
	pending Value
	raised  bool
}

// NewRuntime creates a Lua state with the standard libraries opened.
func NewRuntime() *Runtime {
	state := lua.NewState()
	lua.OpenLibraries(state)
	return &Runtime{state: state}
}

// State exposes the underlying Lua state for binding registration. The
// caller must not retain it past the Runtime's lifetime.
func (r *Runtime) State() *lua.State { return r.state }

// DoString runs a chunk of Lua source. On failure the error object the
// runtime leaves on the stack is captured as the pending error.
func (r *Runtime) DoString(source string) error {
	base := r.state.Top()
	if err := lua.LoadString(r.state, source); err != nil {
		r.capture(base, err)
		return fmt.Errorf("load chunk: %w", err)
	}
	return r.call(base)
}

// DoFile runs a Lua script file.
func (r *Runtime) DoFile(path string) error {
	base := r.state.Top()
	if err := lua.LoadFile(r.state, path, ""); err != nil {
		r.capture(base, err)
		return fmt.Errorf("load %s: %w", path, err)
	}
	return r.call(base)
}

func (r *Runtime) call(base int) error {
	if err := r.state.ProtectedCall(0, lua.MultipleReturns, 0); err != nil {
		r.capture(base, err)
		return fmt.Errorf("run chunk: %w", err)
	}
	r.state.SetTop(base)
	return nil
}

// capture records the error object the failed call pushed above the
// pre-call stack top, falling back to the Go error text when the call
// pushed nothing. Anything the caller had on the stack stays untouched.
func (r *Runtime) capture(base int, err error) {
	r.raised = true
	if r.state.Top() > base {
		r.pending = FromState(r.state, -1)
		r.state.SetTop(base)
		return
	}
	r.pending = Text(err.Error())
}

// HasPendingError reports whether a chunk failed since the last clear.
func (r *Runtime) HasPendingError() bool { return r.raised }

// PendingError returns the current error object, Nil when none. It does
// not clear the error; that is the caller's responsibility.
func (r *Runtime) PendingError() Value {
	if !r.raised {
		return Nil()
	}
	return r.pending
}

// ClearPendingError resets the pending error state.
func (r *Runtime) ClearPendingError() {
	r.raised = false
	r.pending = Value{}
}
