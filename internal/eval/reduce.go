package eval

import (
	"rebo/internal/value"
)

// Reduce evaluates each top-level expression of a block and collects the
// results into a fresh block written to out. Results accumulate on the data
// stack; a throw drops them and propagates.
func (m *Machine) Reduce(out *value.Cell, block *value.Cell) bool {
	base := m.DS.Depth()
	fd := NewArrayFeed(block.Series, block.Index)
	var item value.Cell
	for !fd.AtEnd() {
		sub := m.newFrame(&item, fd, DoNext)
		if sub.run() {
			m.DS.DropTo(base)
			*out = item
			return true
		}
		m.DS.Push(item)
	}
	*out = value.Block(m.DS.PopToArray(base))
	return false
}

// ReduceOnly copies each element literally when it is a word or path listed
// in skip (or when skip is nil, every word and path), evaluating the rest.
func (m *Machine) ReduceOnly(out *value.Cell, block *value.Cell, skip *value.Array) bool {
	base := m.DS.Depth()
	fd := NewArrayFeed(block.Series, block.Index)
	var item value.Cell
	for !fd.AtEnd() {
		cur := *fd.Current
		literal := false
		switch {
		case cur.Kind == value.KindWord || cur.Kind.IsPathKind():
			if skip == nil {
				literal = true
			} else {
				for i := range skip.Cells {
					s := &skip.Cells[i]
					if cur.Kind.IsPathKind() && s.Kind == cur.Kind && Equal(s, &cur) ||
						s.Kind.IsWordKind() && cur.Kind == value.KindWord &&
							value.SameWord(s.Sym, cur.Sym) {
						literal = true
						break
					}
				}
			}
		}
		if literal {
			fd.Fetch()
			m.DS.Push(cur)
			continue
		}
		sub := m.newFrame(&item, fd, DoNext)
		if sub.run() {
			m.DS.DropTo(base)
			*out = item
			return true
		}
		m.DS.Push(item)
	}
	*out = value.Block(m.DS.PopToArray(base))
	return false
}

// ReduceNoSet is Reduce except SET-WORD! elements pass through literally,
// used when building error specifications.
func (m *Machine) ReduceNoSet(out *value.Cell, block *value.Cell) bool {
	base := m.DS.Depth()
	fd := NewArrayFeed(block.Series, block.Index)
	var item value.Cell
	for !fd.AtEnd() {
		if fd.Current.Kind == value.KindSetWord {
			m.DS.Push(*fd.Current)
			fd.Fetch()
			continue
		}
		sub := m.newFrame(&item, fd, DoNext)
		if sub.run() {
			m.DS.DropTo(base)
			*out = item
			return true
		}
		m.DS.Push(item)
	}
	*out = value.Block(m.DS.PopToArray(base))
	return false
}

// Compose copies a block with GROUP! elements replaced by their evaluated
// results. Block results splice unless only; unset results vanish; with
// deep, nested blocks are composed too (shallow-copied otherwise).
func (m *Machine) Compose(out *value.Cell, block *value.Cell, deep, only bool) bool {
	base := m.DS.Depth()
	if threw := m.composeInto(block, deep, only); threw {
		m.DS.DropTo(base)
		*out = m.composeThrown
		return true
	}
	*out = value.Block(m.DS.PopToArray(base))
	return false
}

func (m *Machine) composeInto(block *value.Cell, deep, only bool) bool {
	for i := block.Index; i < block.Series.Len(); i++ {
		cur := block.Series.At(i)
		if cur == nil {
			break
		}
		switch {
		case cur.Kind == value.KindGroup:
			var res value.Cell
			if threw := m.DoValue(&res, cur); threw {
				m.composeThrown = res
				return true
			}
			if res.IsUnset() {
				continue
			}
			if res.Kind == value.KindBlock && !only {
				// Splice the block's contents.
				for j := res.Index; j < res.Series.Len(); j++ {
					m.DS.Push(res.Series.Cells[j])
				}
				continue
			}
			m.DS.Push(res)
		case cur.Kind == value.KindBlock && deep:
			inner := m.DS.Depth()
			if threw := m.composeInto(cur, true, only); threw {
				return true
			}
			m.DS.Push(value.Block(m.DS.PopToArray(inner)))
		default:
			m.DS.Push(*cur)
		}
	}
	return false
}

// Construct performs minimal, function-free evaluation of a block into a
// context: runs of SET-WORD!s accumulate and are all assigned the
// interpreted value of the first non-set-word that follows. Lit-words and
// lit-paths unquote; the literal words none/true/on/yes/false/off/no map to
// their values; everything else assigns as-is.
func (m *Machine) Construct(ctx *value.Context, block *value.Cell) {
	base := m.DS.Depth()
	defer m.DS.DropTo(base)

	flush := func(v value.Cell) {
		for m.DS.Depth() > base {
			w := m.DS.Pop()
			idx := ctx.Ensure(w.Sym)
			*ctx.Var(idx) = v
		}
	}

	for i := block.Index; i < block.Series.Len(); i++ {
		cur := block.Series.At(i)
		if cur.Kind == value.KindSetWord {
			m.DS.Push(*cur)
			continue
		}
		if m.DS.Depth() == base {
			// A value with no pending set-words is skipped.
			continue
		}
		flush(constructValue(cur))
	}
	// Trailing set-words with no value get none.
	flush(value.None())
}

// constructValue interprets one cell under construct's no-evaluation rules.
func constructValue(c *value.Cell) value.Cell {
	switch c.Kind {
	case value.KindLitWord:
		return c.ToWordKind(value.KindWord)
	case value.KindLitPath:
		return c.ToPathKind(value.KindPath)
	case value.KindWord:
		switch c.Sym.Canon().Text {
		case "none":
			return value.None()
		case "true", "on", "yes":
			return value.Logic(true)
		case "false", "off", "no":
			return value.Logic(false)
		}
		return *c
	}
	return *c
}
