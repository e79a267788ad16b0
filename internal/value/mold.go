package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Mold renders a cell in loadable notation, as far as the datatype allows.
func Mold(c *Cell) string {
	var sb strings.Builder
	moldInto(&sb, c, true)
	return sb.String()
}

// Form renders a cell for humans: strings print bare, everything else molds.
func Form(c *Cell) string {
	var sb strings.Builder
	moldInto(&sb, c, false)
	return sb.String()
}

func moldInto(sb *strings.Builder, c *Cell, mold bool) {
	if c == nil || c.Kind == KindEnd {
		sb.WriteString("~end~")
		return
	}
	switch c.Kind {
	case KindUnset:
		sb.WriteString("~unset~")
	case KindNone:
		sb.WriteString("none")
	case KindLogic:
		if c.Int != 0 {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case KindInteger:
		sb.WriteString(strconv.FormatInt(c.Int, 10))
	case KindDecimal:
		sb.WriteString(strconv.FormatFloat(c.Dec, 'g', -1, 64))
	case KindString:
		if mold {
			sb.WriteByte('"')
			sb.WriteString(c.Str)
			sb.WriteByte('"')
		} else {
			sb.WriteString(c.Str)
		}
	case KindWord:
		sb.WriteString(c.Sym.String())
	case KindSetWord:
		sb.WriteString(c.Sym.String())
		sb.WriteByte(':')
	case KindGetWord:
		sb.WriteByte(':')
		sb.WriteString(c.Sym.String())
	case KindLitWord:
		sb.WriteByte('\'')
		sb.WriteString(c.Sym.String())
	case KindRefinement:
		sb.WriteByte('/')
		sb.WriteString(c.Sym.String())
	case KindBlock:
		sb.WriteByte('[')
		moldArray(sb, c.Series, c.Index, " ")
		sb.WriteByte(']')
	case KindGroup:
		sb.WriteByte('(')
		moldArray(sb, c.Series, c.Index, " ")
		sb.WriteByte(')')
	case KindPath, KindSetPath, KindGetPath, KindLitPath:
		switch c.Kind {
		case KindGetPath:
			sb.WriteByte(':')
		case KindLitPath:
			sb.WriteByte('\'')
		}
		moldArray(sb, c.Series, 0, "/")
		if c.Kind == KindSetPath {
			sb.WriteByte(':')
		}
	case KindBar:
		sb.WriteByte('|')
	case KindLitBar:
		sb.WriteString("'|")
	case KindFunction:
		name := "anonymous"
		class := ClassNative
		if c.Fn != nil {
			class = c.Fn.Class
			if c.Fn.Name != nil {
				name = c.Fn.Name.Text
			}
		}
		fmt.Fprintf(sb, "#[%s! %s]", class, name)
	case KindFrame:
		fmt.Fprintf(sb, "#[frame! %d]", c.Ctx.Len())
	case KindObject:
		sb.WriteString("#[object! [")
		for i, k := range c.Ctx.Keys {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(k.Sym.String())
		}
		sb.WriteString("]]")
	case KindVarargs:
		sb.WriteString("#[varargs!]")
	case KindError:
		fmt.Fprintf(sb, "#[error! %s %q]", c.Sym, c.Str)
	case KindTypeset:
		sb.WriteString("#[typeset!]")
	default:
		fmt.Fprintf(sb, "#[%s]", c.Kind)
	}
}

func moldArray(sb *strings.Builder, a *Array, from int, sep string) {
	if a == nil {
		return
	}
	for i := from; i < len(a.Cells); i++ {
		if i > from {
			sb.WriteString(sep)
		}
		moldInto(sb, &a.Cells[i], true)
	}
}
