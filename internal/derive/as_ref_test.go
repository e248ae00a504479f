package derive_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsRefNewtype(t *testing.T) {
	out := mustExpand(t, "AsRef", "struct Name(String);")
	assert.Equal(t, `#[automatically_derived]
impl dm::core::convert::AsRef<String> for Name {
    #[inline]
    fn as_ref(&self) -> &String {
        &self.0
    }
}`, out)
}

func TestAsRefTypes(t *testing.T) {
	out := mustExpand(t, "AsRef", `
#[as_ref(str, [u8])]
struct Name(String);
`)
	assert.Equal(t, 2, strings.Count(out, "impl "))
	assert.NotContains(t, out, "__AsT")
	assert.NotContains(t, out, "impl<")
	l := lines(out)
	assert.Contains(t, l, "impl dm::core::convert::AsRef<str> for Name {")
	assert.Contains(t, l, "impl dm::core::convert::AsRef<[u8]> for Name {")
	assert.Contains(t, l, "<String as dm::core::convert::AsRef<str>>::as_ref(&self.0)")
	assert.Contains(t, l, "fn as_ref(&self) -> &[u8] {")
}

func TestAsRefTypesIncludingFieldType(t *testing.T) {
	out := mustExpand(t, "AsRef", `
#[as_ref(String, str)]
#[as_ref([u8])]
struct Name(String);
`)
	assert.Equal(t, 3, strings.Count(out, "impl "))
	l := lines(out)
	assert.Contains(t, l, "&self.0")
	assert.Contains(t, l, "impl dm::core::convert::AsRef<[u8]> for Name {")
}

func TestAsRefForward(t *testing.T) {
	out := mustExpand(t, "AsRef", `
#[as_ref(forward)]
struct Name(String);
`)
	assert.Equal(t, `#[automatically_derived]
impl<__AsT> dm::core::convert::AsRef<__AsT> for Name
where
    __AsT: ?Sized,
    String: dm::core::convert::AsRef<__AsT>,
{
    #[inline]
    fn as_ref(&self) -> &__AsT {
        <String as dm::core::convert::AsRef<__AsT>>::as_ref(&self.0)
    }
}`, out)
}

func TestAsRefForwardAvoidsParamName(t *testing.T) {
	out := mustExpand(t, "AsRef", `
#[as_ref(forward)]
struct W<__AsT>(Vec<__AsT>);
`)
	assert.Contains(t, out, "impl<__AsT, __AsT2> dm::core::convert::AsRef<__AsT2> for W<__AsT>")
}

func TestAsMutMarkedFields(t *testing.T) {
	out := mustExpand(t, "AsMut", `
struct Pair {
    #[as_mut]
    first: Vec<u8>,
    #[as_mut(str)]
    second: String,
    third: i32,
}
`)
	assert.Equal(t, 2, strings.Count(out, "impl "))
	l := lines(out)
	assert.Contains(t, l, "fn as_mut(&mut self) -> &mut Vec<u8> {")
	assert.Contains(t, l, "&mut self.first")
	assert.Contains(t, l, "<String as dm::core::convert::AsMut<str>>::as_mut(&mut self.second)")
	assert.NotContains(t, out, "third")
}

func TestAsRefErrors(t *testing.T) {
	_, err := expand(t, "AsRef", "struct P { a: i32, b: i32 }")
	assert.EqualError(t, err, "a.rs:1:8: cannot infer the field for `AsRef`: the struct has 2 eligible fields\n\tmark one field with `#[as_ref]`")

	_, err = expand(t, "AsRef", "enum E { A(i32) }")
	assert.EqualError(t, err, "a.rs:1:1: `AsRef` cannot be derived for enums")

	_, err = expand(t, "AsRef", "#[as_ref(forward)]\n#[as_ref(forward)]\nstruct S(i32);")
	assert.EqualError(t, err, "a.rs:2:1: only a single `#[as_ref(...)]` attribute is allowed here")

	_, err = expand(t, "AsRef", "struct S {\n    #[as_ref]\n    a: i32,\n    #[as_ref(ignore)]\n    b: i32,\n}")
	assert.ErrorContains(t, err, "a.rs:4:5: `#[as_ref(ignore)]` cannot be mixed")
}
