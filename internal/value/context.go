package value

// Key is one slot descriptor of a context: the word naming the slot plus the
// typeset constraining what it may hold (TypesetAll for plain objects).
type Key struct {
	Sym   *Symbol
	Types Typeset
}

// Context is a pair of parallel key and var slices. Objects, function
// frames, and the library context are all contexts. A function frame context
// additionally remembers the function whose invocation it reifies.
type Context struct {
	Keys []Key
	Vars []Cell

	// Fn is the owning function for frame contexts, nil otherwise.
	Fn *Func

	// Managed is set once a FRAME! value has captured this context; the
	// evaluator then leaves the storage to the garbage collector instead of
	// releasing it with the frame.
	Managed bool
}

// NewContext returns a context with room for n slots.
func NewContext(n int) *Context {
	return &Context{
		Keys: make([]Key, 0, n),
		Vars: make([]Cell, 0, n),
	}
}

// Len returns the number of slots.
func (c *Context) Len() int { return len(c.Keys) }

// Find returns the slot index for sym (case-insensitive), or -1.
func (c *Context) Find(sym *Symbol) int {
	for i := range c.Keys {
		if SameWord(c.Keys[i].Sym, sym) {
			return i
		}
	}
	return -1
}

// Append adds a slot and returns its index. The var starts unset.
func (c *Context) Append(sym *Symbol, types Typeset) int {
	c.Keys = append(c.Keys, Key{Sym: sym, Types: types})
	c.Vars = append(c.Vars, Unset())
	return len(c.Keys) - 1
}

// Ensure returns the slot index for sym, appending a new slot when absent.
func (c *Context) Ensure(sym *Symbol) int {
	if i := c.Find(sym); i >= 0 {
		return i
	}
	return c.Append(sym, TypesetAll)
}

// Var returns a pointer to the slot's cell, or nil when out of range.
func (c *Context) Var(i int) *Cell {
	if i < 0 || i >= len(c.Vars) {
		return nil
	}
	return &c.Vars[i]
}

// FrameContext builds a context shaped after a function's parameter list,
// for reified frames and specializations. Vars start as BAR! sentinels
// meaning "unfilled — acquire from the callsite".
func FrameContext(fn *Func) *Context {
	ctx := &Context{
		Keys: make([]Key, len(fn.Params)),
		Vars: make([]Cell, len(fn.Params)),
		Fn:   fn,
	}
	for i, p := range fn.Params {
		ctx.Keys[i] = Key{Sym: p.Sym, Types: p.Types}
		ctx.Vars[i] = Bar()
	}
	return ctx
}

// Bind walks an array and binds any-word cells whose spelling names a slot
// of ctx. With deep, nested arrays are entered. Words already bound are
// rebound when the context knows them; others are left alone.
func Bind(a *Array, ctx *Context, deep bool) {
	if a == nil {
		return
	}
	for i := range a.Cells {
		c := &a.Cells[i]
		switch {
		case c.Kind.IsWordKind():
			if idx := ctx.Find(c.Sym); idx >= 0 {
				c.Ctx = ctx
				c.Rel = nil
				c.Index = idx
			}
		case c.Kind.IsArrayKind():
			if deep {
				Bind(c.Series, ctx, true)
			}
		}
	}
}

// BindAll is Bind, but words not present in ctx are appended as new slots
// first. Only plain, set-, get- and lit-words add slots; refinements do not.
func BindAll(a *Array, ctx *Context, deep bool) {
	if a == nil {
		return
	}
	for i := range a.Cells {
		c := &a.Cells[i]
		switch {
		case c.Kind.IsWordKind():
			if c.Kind == KindRefinement {
				if idx := ctx.Find(c.Sym); idx >= 0 {
					c.Ctx = ctx
					c.Rel = nil
					c.Index = idx
				}
				continue
			}
			c.Ctx = ctx
			c.Rel = nil
			c.Index = ctx.Ensure(c.Sym)
		case c.Kind.IsArrayKind():
			if deep {
				BindAll(c.Series, ctx, true)
			}
		}
	}
}

// BindRelative binds words spelled like one of fn's parameters relatively to
// the function; lookup resolves them against the most recent invocation on
// the frame stack.
func BindRelative(a *Array, fn *Func, deep bool) {
	if a == nil {
		return
	}
	for i := range a.Cells {
		c := &a.Cells[i]
		switch {
		case c.Kind.IsWordKind():
			if idx := fn.FindParam(c.Sym); idx >= 0 {
				c.Rel = fn
				c.Ctx = nil
				c.Index = idx
			}
		case c.Kind.IsArrayKind():
			if deep {
				BindRelative(c.Series, fn, true)
			}
		}
	}
}
