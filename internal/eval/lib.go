package eval

import (
	"rebo/internal/value"
)

// numSpec is the shared spec of the binary arithmetic natives.
const numSpec = "[value1 [integer! decimal!] value2 [integer! decimal!]]"

// cmpSpec is the shared spec of the ordering natives.
const cmpSpec = "[value1 [integer! decimal! string!] value2 [integer! decimal! string!]]"

// InstallLib populates the library context: natives, infix operators, and
// the literal-word values.
func (m *Machine) InstallLib() {
	lib := m.Lib

	set := func(name string, v value.Cell) {
		idx := lib.Ensure(value.Intern(name))
		*lib.Var(idx) = v
	}

	set("true", value.Logic(true))
	set("on", value.Logic(true))
	set("yes", value.Logic(true))
	set("false", value.Logic(false))
	set("off", value.Logic(false))
	set("no", value.Logic(false))
	set("none", value.None())

	// Control.
	m.registerNative("if", "[condition then-block [block!]]", 0, nativeIf)
	m.registerNative("unless", "[condition then-block [block!]]", 0, nativeUnless)
	m.registerNative("either", "[condition true-block [block!] false-block [block!]]", 0, nativeEither)
	m.registerNative("while", "[condition [block!] body [block!]]", 0, nativeWhile)
	m.registerNative("loop", "[count [integer!] body [block!]]", 0, nativeLoop)

	// Evaluation.
	m.registerNative("do", "[source [any-type!]]", 0, nativeDo)
	m.evalFn = m.registerNative("eval", "[value [any-type!] /only]", 0, nativeEvalStub)
	m.registerNative("quote", "[:value]", value.FuncVarless, nativeQuote)
	m.registerNative("comment", "[:value]", value.FuncVarless, nativeComment)
	m.registerNative("reduce", "[block [block!] /only words [block! none!] /no-set]", 0, nativeReduce)
	m.registerNative("compose", "[block [block!] /deep /only /into target [block!]]", 0, nativeCompose)
	m.registerNative("construct", "[block [block!]]", 0, nativeConstruct)

	// Function construction.
	m.registerNative("func", "[spec [block!] body [block!]]", 0, nativeFunc)
	m.registerNative("proc", "[spec [block!] body [block!]]", 0, nativeProc)
	m.registerNative("does", "[body [block!]]", 0, nativeDoes)
	m.registerNative("closure", "[spec [block!] body [block!]]", 0, nativeClosure)
	m.registerNative("op", "[spec [block!] body [block!]]", 0, nativeOp)
	m.registerNative("specialize", "[target [word! function!] fills [block!]]", 0, nativeSpecialize)
	m.registerNative("make", "['type [word!] spec [any-type!]]", 0, nativeMake)

	// Non-local control.
	m.returnFn = m.registerNative("return", "[value [any-type!]]", 0, nativeReturn)
	m.leaveFn = m.registerNative("leave", "[]", 0, nativeLeave)
	m.registerNative("exit-from", "[target [integer! function! frame!] /with value [any-type!]]", 0, nativeExitFrom)
	m.registerNative("throw", "[value [any-type!] /name word [word!]]", 0, nativeThrow)
	m.registerNative("catch", "[block [block!] /name word [word!]]", 0, nativeCatch)
	m.registerNative("break", "[/return value [any-type!]]", 0, nativeBreak)
	m.registerNative("continue", "[]", 0, nativeContinue)

	// Words and values.
	m.registerNative("set", "['word [word! set-word! lit-word!] value [any-type!]]", 0, nativeSet)
	m.registerNative("get", "['word [word! lit-word! get-word! path! get-path!]]", 0, nativeGet)
	m.registerNative("type-of", "[value [any-type!]]", 0, nativeTypeOf)
	m.registerNative("mold", "[value [any-type!]]", 0, nativeMold)
	m.registerNative("form", "[value [any-type!]]", 0, nativeForm)
	m.registerNative("print", "[value [any-type!]]", 0, nativePrint)
	m.registerNative("probe", "[value [any-type!]]", 0, nativeProbe)
	m.registerNative("not", "[value [any-type!]]", 0, nativeNot)

	// Series.
	m.registerAction("append", "[series [block! string!] value [any-type!] /only /dup count [integer!]]", actAppend)
	m.registerAction("pick", "[series [block! string!] index [integer!]]", actPick)
	m.registerNative("first", "[series [block! group! path! string!]]", 0, nativeFirst)
	m.registerNative("poke", "[series [block!] index [integer!] value [any-type!]]", 0, nativePoke)
	m.registerNative("length?", "[series [any-block! string! object! frame!]]", 0, nativeLengthQ)

	// Varargs.
	m.registerNative("take", "[feed [varargs!]]", 0, nativeTake)
	m.registerNative("tail?", "[feed [varargs!]]", 0, nativeTailQ)

	// Math, prefix and infix.
	m.registerNative("add", numSpec, 0, nativeAdd)
	m.registerNative("subtract", numSpec, 0, nativeSubtract)
	m.registerNative("multiply", numSpec, 0, nativeMultiply)
	m.registerNative("divide", numSpec, 0, nativeDivide)
	m.registerNative("+", numSpec, value.FuncInfix, nativeAdd)
	m.registerNative("-", numSpec, value.FuncInfix, nativeSubtract)
	m.registerNative("*", numSpec, value.FuncInfix, nativeMultiply)
	m.registerNative("/", numSpec, value.FuncInfix, nativeDivide)
	m.registerNative("equal?", "[value1 [any-type!] value2 [any-type!]]", 0, nativeEqualQ)
	m.registerNative("=", "[value1 [any-type!] value2 [any-type!]]", value.FuncInfix, nativeEqualQ)
	m.registerNative("<>", "[value1 [any-type!] value2 [any-type!]]", value.FuncInfix, nativeNotEqualQ)
	m.registerNative("<", cmpSpec, value.FuncInfix, nativeLesserQ)
	m.registerNative(">", cmpSpec, value.FuncInfix, nativeGreaterQ)
	m.registerNative("<=", cmpSpec, value.FuncInfix, nativeLesserEqualQ)
	m.registerNative(">=", cmpSpec, value.FuncInfix, nativeGreaterEqualQ)

	// Host and debug.
	m.registerNative("trace", "[mode [logic!]]", 0, nativeTrace)
	m.registerNative("recycle", "[]", 0, nativeRecycle)
	m.registerNative("halt", "[]", 0, nativeHalt)
	m.registerNative("stats", "[]", 0, nativeStats)
	m.registerNative("breakpoint", "[]", 0, nativeBreakpoint)
}
