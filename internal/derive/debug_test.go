package derive_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDebugStruct(t *testing.T) {
	out := mustExpand(t, "Debug", `
struct P {
    x: i32,
    #[debug(skip)]
    y: i32,
}
`)
	assert.Equal(t, `#[automatically_derived]
impl dm::core::fmt::Debug for P {
    #[allow(unused_variables)]
    fn fmt(&self, __derive_more_f: &mut dm::core::fmt::Formatter<'_>) -> dm::core::fmt::Result {
        let x = &self.x;
        let y = &self.y;
        let mut __derive_more_out = dm::core::fmt::Formatter::debug_struct(__derive_more_f, "P");
        dm::core::fmt::DebugStruct::field(&mut __derive_more_out, "x", x);
        dm::core::fmt::DebugStruct::finish_non_exhaustive(&mut __derive_more_out)
    }
}`, out)
}

func TestDebugTupleFieldFormat(t *testing.T) {
	out := mustExpand(t, "Debug", `
struct T<A>(A, #[debug("{_1:#x}")] u8);
`)
	l := lines(out)
	assert.Contains(t, l, "A: dm::core::fmt::Debug,")
	assert.Contains(t, l, `let mut __derive_more_out = dm::__private::debug_tuple(__derive_more_f, "T");`)
	assert.Contains(t, l, "dm::__private::DebugTuple::field(&mut __derive_more_out, _0);")
	assert.Contains(t, l, `dm::__private::DebugTuple::field(&mut __derive_more_out, &dm::core::format_args!("{_1:#x}"));`)
	assert.Contains(t, l, "dm::__private::DebugTuple::finish(&mut __derive_more_out)")
}

func TestDebugUnit(t *testing.T) {
	out := mustExpand(t, "Debug", "struct U;")
	assert.Contains(t, lines(out), `dm::core::fmt::Formatter::write_str(__derive_more_f, "U")`)
}

func TestDebugEnum(t *testing.T) {
	out := mustExpand(t, "Debug", `
enum E {
    #[debug("custom {a}")]
    A { a: i32 },
    B,
}
`)
	l := lines(out)
	assert.Contains(t, l, "Self::A { a } => {")
	assert.Contains(t, l, `dm::core::write!(__derive_more_f, "custom {a}")`)
	assert.Contains(t, l, "Self::B => {")
	assert.Contains(t, l, `dm::core::fmt::Formatter::write_str(__derive_more_f, "B")`)
}

func TestDebugSkipUnderFormat(t *testing.T) {
	_, err := expand(t, "Debug", `
#[debug("x")]
struct S {
    #[debug(skip)]
    a: i32,
}
`)
	assert.NoError(t, err)
}

func TestDebugErrors(t *testing.T) {
	_, err := expand(t, "Debug", "#[debug(\"e\")]\nenum E { A }")
	assert.EqualError(t, err, "a.rs:1:1: `#[debug(\"...\", ...)]` attribute is not allowed on enum, place it on its variants instead")

	_, err = expand(t, "Debug", "#[debug(\"x\")]\nstruct S {\n    #[debug(\"{}\", 1)]\n    a: i32,\n}")
	assert.EqualError(t, err, "a.rs:3:5: `#[debug(...)]` attributes are not allowed on fields when `#[debug(\"...\", ...)]` is specified on struct")

	_, err = expand(t, "Debug", "union U { a: u8 }")
	assert.EqualError(t, err, "a.rs:1:1: `Debug` cannot be derived for unions")
}
