package derive_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayUnitStruct(t *testing.T) {
	out := mustExpand(t, "Display", "struct Unit;")
	assert.Equal(t, `#[automatically_derived]
impl dm::core::fmt::Display for Unit {
    fn fmt(&self, __derive_more_f: &mut dm::core::fmt::Formatter<'_>) -> dm::core::fmt::Result {
        __derive_more_f.write_str("Unit")
    }
}`, out)
}

func TestDisplayNewtype(t *testing.T) {
	out := mustExpand(t, "LowerHex", "struct Id<T>(T);")
	assert.Equal(t, `#[automatically_derived]
impl<T> dm::core::fmt::LowerHex for Id<T>
where
    T: dm::core::fmt::LowerHex,
{
    #[allow(unused_variables)]
    fn fmt(&self, __derive_more_f: &mut dm::core::fmt::Formatter<'_>) -> dm::core::fmt::Result {
        let _0 = &self.0;
        dm::core::fmt::LowerHex::fmt(_0, __derive_more_f)
    }
}`, out)
}

func TestDisplayTwoFieldsNeedFormat(t *testing.T) {
	_, err := expand(t, "Display", "struct Pair { a: i32, b: i32 }")
	assert.ErrorContains(t, err, "a.rs:1:8: cannot infer the format for `Display`: the struct has 2 fields")
}

func TestDisplayAllSkippedNeedsFormat(t *testing.T) {
	_, err := expand(t, "Display", "struct S(#[display(skip)] i32);")
	assert.ErrorContains(t, err, "cannot infer the field for `Display`: the struct has no eligible field")
}

func TestDisplayFormat(t *testing.T) {
	out := mustExpand(t, "Display", `
#[display("{x}-{}", y)]
struct P<T> { x: T, y: i32 }
`)
	assert.Contains(t, lines(out), "T: dm::core::fmt::Display,")
	assert.Contains(t, lines(out), "let x = &self.x;")
	assert.Contains(t, lines(out), "let y = &self.y;")
	assert.Contains(t, lines(out), `dm::core::write!(__derive_more_f, "{x}-{}", y)`)
}

func TestDisplayFormatBoundsByTrait(t *testing.T) {
	out := mustExpand(t, "Display", `
#[display("{a:?} {b:x}", b = c)]
#[display(bound(T: Clone))]
struct P<T, U, V> { a: T, c: U, d: V }
`)
	assert.Contains(t, lines(out), "T: dm::core::fmt::Debug,")
	assert.Contains(t, lines(out), "U: dm::core::fmt::LowerHex,")
	assert.Contains(t, lines(out), "T: Clone,")
	assert.NotContains(t, out, "V: ")
}

func TestDisplayTransparentCall(t *testing.T) {
	out := mustExpand(t, "Display", `
#[display("{inner:?}")]
struct W { inner: i32 }
`)
	assert.Contains(t, lines(out), "dm::core::fmt::Debug::fmt(&(inner), __derive_more_f)")
}

func TestDisplayMarkedField(t *testing.T) {
	out := mustExpand(t, "Display", `
struct M {
    id: u64,
    #[display]
    name: String,
}
`)
	assert.Contains(t, lines(out), "dm::core::fmt::Display::fmt(name, __derive_more_f)")
}

func TestDisplayEnum(t *testing.T) {
	out := mustExpand(t, "Display", `
enum E {
    A,
    B(i32),
    #[display("c={x}")]
    C { x: u8 },
}
`)
	assert.Equal(t, `#[automatically_derived]
impl dm::core::fmt::Display for E {
    #[allow(unused_variables)]
    fn fmt(&self, __derive_more_f: &mut dm::core::fmt::Formatter<'_>) -> dm::core::fmt::Result {
        match self {
            Self::A => {
                __derive_more_f.write_str("A")
            },
            Self::B(_0) => {
                dm::core::fmt::Display::fmt(_0, __derive_more_f)
            },
            Self::C { x } => {
                dm::core::write!(__derive_more_f, "c={x}")
            },
        }
    }
}`, out)
}

func TestDisplayEmptyEnum(t *testing.T) {
	out := mustExpand(t, "Display", "enum Never {}")
	assert.Contains(t, lines(out), "match *self {}")
}

func TestDisplaySharedFormat(t *testing.T) {
	out := mustExpand(t, "Display", `
#[display("<{_variant}>")]
enum E {
    #[display("a")]
    A,
    B(i32),
    C,
}
`)
	l := lines(out)
	assert.Contains(t, l, `match &dm::core::format_args!("a") {`)
	assert.Contains(t, l, `match &dm::core::format_args!("{}", _0) {`)
	assert.Contains(t, l, `match "C" {`)
	assert.Contains(t, l, `_variant => dm::core::write!(__derive_more_f, "<{_variant}>"),`)
}

func TestDisplaySharedFormatWithoutVariant(t *testing.T) {
	out := mustExpand(t, "UpperHex", `
#[upper_hex("fixed")]
enum E { A, B(i32) }
`)
	assert.NotContains(t, out, "_variant")
	assert.Contains(t, lines(out), `dm::core::write!(__derive_more_f, "fixed")`)
}

func TestDisplayUnion(t *testing.T) {
	out := mustExpand(t, "Display", `
#[display("union")]
union U { a: u8, b: i8 }
`)
	assert.Contains(t, lines(out), `dm::core::write!(__derive_more_f, "union")`)
	assert.NotContains(t, out, "let ")
}

func TestDisplayErrors(t *testing.T) {
	for _, tt := range []struct {
		name  string
		trait string
		src   string
		err   string
	}{
		{
			name:  "union without format",
			trait: "Display",
			src:   "union U { a: u8 }",
			err:   "a.rs:1:7: unions must have `#[display(\"...\", ...)]` attribute",
		},
		{
			name:  "unit variant of other trait",
			trait: "Octal",
			src:   "enum E { A }",
			err:   "a.rs:1:10: implicit formatting of unit enum variant is supported only for `Display`\n\tuse `#[octal(\"...\")]` to specify the formatting",
		},
		{
			name:  "shared variant with specifier",
			trait: "Display",
			src:   "#[display(\"{_variant:?}\")]\nenum E { A }",
			err:   "a.rs:1:1: shared format `_variant` placeholder cannot contain format specifiers",
		},
		{
			name:  "unknown named placeholder",
			trait: "Display",
			src:   "#[display(\"{z}\")]\nstruct S { x: i32 }",
			err:   "a.rs:1:1: format placeholder `{z}` does not refer to a field or an argument",
		},
		{
			name:  "missing positional argument",
			trait: "Display",
			src:   "#[display(\"{} {}\", x)]\nstruct S { x: i32 }",
			err:   "a.rs:1:1: format placeholder `{1}` refers to a missing argument\n\tthe format has 1 arguments",
		},
		{
			name:  "field directive under format",
			trait: "Display",
			src:   "#[display(\"x\")]\nstruct S {\n    #[display]\n    x: i32,\n}",
			err:   "a.rs:3:5: `#[display(...)]` on a field cannot be combined with `#[display(...)]` on its struct",
		},
		{
			name:  "skip mixed with marker",
			trait: "Display",
			src:   "struct S {\n    #[display]\n    x: i32,\n    #[display(skip)]\n    y: i32,\n}",
			err:   "a.rs:4:5: `#[display(skip)]` cannot be mixed with other `#[display(...)]` field directives",
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := expand(t, tt.trait, tt.src)
			assert.ErrorContains(t, err, tt.err)
		})
	}
}

func TestDisplayAliasResolvesToField(t *testing.T) {
	out := mustExpand(t, "Display", `
#[display("{v}", v = value)]
struct S<T> { value: T }
`)
	assert.Contains(t, lines(out), "T: dm::core::fmt::Display,")
}

func TestDisplayUnresolvedWidthIgnored(t *testing.T) {
	out := mustExpand(t, "Display", `
#[display("{x:width$}")]
struct S { x: i32 }
`)
	assert.Contains(t, lines(out), `dm::core::write!(__derive_more_f, "{x:width$}")`)
}

func TestDisplayAllowsUnusedBindings(t *testing.T) {
	out := mustExpand(t, "Display", `
#[display("{x}")]
struct P { x: i32, y: i32 }
`)
	l := lines(out)
	assert.Contains(t, l, "#[allow(unused_variables)]")
	assert.Contains(t, l, "let y = &self.y;")

	out = mustExpand(t, "Display", `
#[display("union")]
union U { a: u8, b: i8 }
`)
	assert.NotContains(t, out, "unused_variables")
}
