package value

import (
	"testing"
)

func TestSymbolInterning(t *testing.T) {
	a := Intern("Foo")
	b := Intern("foo")
	c := Intern("FOO")
	if a == b {
		t.Fatal("distinct spellings must be distinct symbols")
	}
	if a.Canon() != b.Canon() || b.Canon() != c.Canon() {
		t.Fatal("case-insensitive canon must unify spellings")
	}
	if !SameWord(a, c) {
		t.Fatal("SameWord must ignore case")
	}
	if Intern("foo") != b {
		t.Fatal("interning must be stable")
	}
}

func TestConditionalTruth(t *testing.T) {
	tests := []struct {
		name string
		cell Cell
		want bool
	}{
		{"none is false", None(), false},
		{"false is false", Logic(false), false},
		{"true is true", Logic(true), true},
		{"zero is true", Integer(0), true},
		{"empty string is true", String(""), true},
		{"block is true", Block(NewArray(0)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cell.IsConditionalTrue(); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestArrayTruncationReads(t *testing.T) {
	a := ArrayOf(Integer(1), Integer(2), Integer(3))
	if a.At(2) == nil {
		t.Fatal("in-range read failed")
	}
	a.Cells = a.Cells[:1]
	if a.At(2) != nil {
		t.Fatal("out-of-range read after truncation must be nil")
	}
	if a.At(-1) != nil {
		t.Fatal("negative read must be nil")
	}
}

func TestContextFindIsCaseInsensitive(t *testing.T) {
	ctx := NewContext(4)
	idx := ctx.Append(Intern("Alpha"), TypesetAll)
	if ctx.Find(Intern("ALPHA")) != idx {
		t.Fatal("find must canonize")
	}
	if ctx.Find(Intern("beta")) != -1 {
		t.Fatal("missing word must be -1")
	}
	if ctx.Ensure(Intern("alpha")) != idx {
		t.Fatal("ensure must reuse the existing slot")
	}
}

func TestBindRelativeAndSpecific(t *testing.T) {
	fn := &Func{Params: []Param{{Sym: Intern("x"), Class: ParamNormal, Types: TypesetAny}}}
	body := ArrayOf(Word(Intern("x")), Word(Intern("y")))
	BindRelative(body, fn, true)
	if body.Cells[0].Rel != fn || body.Cells[0].Index != 0 {
		t.Fatal("x must bind relatively to the function")
	}
	if body.Cells[1].Rel != nil {
		t.Fatal("y must stay unbound")
	}
	ctx := NewContext(2)
	ctx.Append(Intern("y"), TypesetAll)
	Bind(body, ctx, true)
	if body.Cells[1].Ctx != ctx {
		t.Fatal("y must bind to the context")
	}
	if body.Cells[0].Rel != fn {
		t.Fatal("x must keep its relative binding")
	}
}

func TestTypesets(t *testing.T) {
	ts := MakeTypeset(KindInteger, KindString)
	if !ts.Has(KindInteger) || !ts.Has(KindString) || ts.Has(KindBlock) {
		t.Fatal("typeset membership wrong")
	}
	if TypesetAny.Has(KindUnset) {
		t.Fatal("any must exclude unset")
	}
	if !TypesetAll.Has(KindUnset) {
		t.Fatal("all must include unset")
	}
	if TypesetAll.Has(KindEnd) {
		t.Fatal("no typeset includes end")
	}
}

func TestMolding(t *testing.T) {
	tests := []struct {
		name string
		cell Cell
		want string
	}{
		{"integer", Integer(42), "42"},
		{"negative", Integer(-7), "-7"},
		{"decimal", Decimal(3.5), "3.5"},
		{"string", String("hi"), `"hi"`},
		{"word", Word(Intern("foo")), "foo"},
		{"set-word", SetWord(Intern("foo")), "foo:"},
		{"get-word", GetWord(Intern("foo")), ":foo"},
		{"lit-word", LitWord(Intern("foo")), "'foo"},
		{"refinement", Refinement(Intern("only")), "/only"},
		{"bar", Bar(), "|"},
		{"lit-bar", LitBar(), "'|"},
		{"none", None(), "none"},
		{"true", Logic(true), "true"},
		{"block", Block(ArrayOf(Integer(1), Word(Intern("x")))), "[1 x]"},
		{"group", Group(ArrayOf(Integer(1))), "(1)"},
		{"path", Path(ArrayOf(Word(Intern("a")), Word(Intern("b")))), "a/b"},
		{"set-path", SetPath(ArrayOf(Word(Intern("a")), Integer(2))), "a/2:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Mold(&tt.cell); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}
