// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

package syntax_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"testing"

	"go.libucomm.org/ucommc/internal/testutil"
	"go.libucomm.org/ucommc/syntax"
)

var (
	testdata     fs.FS
	syntaxErrors map[string]*testutil.Diagnostic
)

func init() {
	var err error
	testdata, err = testutil.TestdataFS()
	if err != nil {
		panic(err)
	}
	syntaxErrors, err = testutil.LoadDiagnostics(testdata, "diagnostics/syntax_errors.json")
	if err != nil {
		panic(err)
	}
}

func syntaxTest(t *testing.T, testName string) {
	t.Parallel()

	srcPath := fmt.Sprintf("syntax/%s/%s.ucomm", testName, testName)
	src, err := fs.ReadFile(testdata, srcPath)
	testutil.AssertNoError(t, err)

	expectTree := fmt.Sprintf("syntax/%s/expect_tree.txt", testName)
	expectErr := fmt.Sprintf("syntax/%s/expect_err.json", testName)

	if _, err := fs.Stat(testdata, expectErr); err == nil {
		testExpectErr(t, src, expectErr)
	} else {
		testExpectTree(t, src, expectTree)
	}
}

func testExpectTree(t *testing.T, src []byte, expectPath string) {
	expect, err := fs.ReadFile(testdata, expectPath)
	testutil.AssertNoError(t, err)

	doc, err := syntax.Parse(src)
	testutil.AssertNoError(t, err)

	testutil.ExpectNoDiff(t, string(expect), testutil.DumpTree(doc))
}

func testExpectErr(t *testing.T, src []byte, expectPath string) {
	expectJSON, err := fs.ReadFile(testdata, expectPath)
	testutil.AssertNoError(t, err)

	test := make(map[string]any)
	decoder := json.NewDecoder(bytes.NewReader(expectJSON))
	decoder.UseNumber()
	testutil.AssertNoError(t, decoder.Decode(&test))

	errorName := test["error"].(string)
	expectErr, ok := syntaxErrors[errorName]
	if !ok {
		t.Fatalf("unknown parse error name %q", errorName)
	}

	doc, err := syntax.Parse(src)
	testutil.AssertError(t, err)
	testutil.ExpectTrue(t, doc == nil)

	parseErr := err.(*syntax.Error)
	testutil.ExpectDiagnostic(t, expectErr, parseErr.Code(), parseErr.Message())

	expectSpan := testutil.SpanOrDie(t, test["error_span"])
	testutil.ExpectEq(t, expectSpan, parseErr.Span())
}

func TestSyntax(t *testing.T) {
	t.Parallel()

	testDirs, err := fs.ReadDir(testdata, "syntax")
	testutil.AssertNoError(t, err)

	for _, testDir := range testDirs {
		if testDir.IsDir() {
			testName := testDir.Name()
			t.Run(testName, func(t *testing.T) {
				syntaxTest(t, testName)
			})
		}
	}
}

func TestDecls(t *testing.T) {
	t.Parallel()

	src := []byte(`
custom { int x; }
enum Color { RED = 1, GREEN };
struct Point { int16_t x; int16_t y; };
msg Draw
{
	enum { SOLID, DASHED };
	Point points[];
	uint8_t tag[ MAX_TAG ];
};
`)
	doc, err := syntax.Parse(src)
	testutil.AssertNoError(t, err)

	decls := doc.Decls()
	testutil.ExpectEq(t, 4, len(decls))

	custom := decls[0].(*syntax.CustomBlock)
	testutil.ExpectEq(t, " int x; ", custom.Content().Raw())
	testutil.ExpectEq(t, "int x;", custom.Content().Get())

	color := decls[1].(*syntax.Enum)
	testutil.ExpectEq(t, "Color", color.Name().Get())
	testutil.ExpectEq(t, 2, len(color.Entries()))
	testutil.ExpectEq(t, "1", color.Entries()[0].Value().Get())
	testutil.ExpectTrue(t, color.Entries()[1].Value() == nil)

	point := decls[2].(*syntax.Struct)
	testutil.ExpectEq(t, syntax.StructKind_STRUCT, point.Kind())
	testutil.ExpectEq(t, "Point", point.Name().Get())
	testutil.ExpectEq(t, 2, len(point.Members()))
	testutil.ExpectFalse(t, point.Members()[0].IsArray())

	draw := decls[3].(*syntax.Struct)
	testutil.ExpectEq(t, syntax.StructKind_MESSAGE, draw.Kind())
	testutil.ExpectEq(t, 1, len(draw.Enums()))
	testutil.ExpectTrue(t, draw.Enums()[0].Name() == nil)

	points := draw.Members()[0]
	testutil.ExpectEq(t, "Point", points.TypeName().Get())
	testutil.ExpectTrue(t, points.IsArray())
	testutil.ExpectTrue(t, points.ArraySize() == nil)

	tag := draw.Members()[1]
	testutil.ExpectTrue(t, tag.IsArray())
	testutil.ExpectEq(t, "MAX_TAG", tag.ArraySize().Get())
}

func TestEmptyDocument(t *testing.T) {
	t.Parallel()

	for _, src := range []string{"", " \n\t\n", "// only a comment\n"} {
		doc, err := syntax.Parse([]byte(src))
		testutil.AssertNoError(t, err)
		testutil.ExpectEq(t, 0, len(doc.Decls()))
	}
}

func TestNestedCustomBraces(t *testing.T) {
	t.Parallel()

	src := []byte("custom { struct X { int a[2] = {1, 2}; }; }")
	doc, err := syntax.Parse(src)
	testutil.AssertNoError(t, err)

	custom := doc.Decls()[0].(*syntax.CustomBlock)
	testutil.ExpectEq(t, "struct X { int a[2] = {1, 2}; };", custom.Content().Get())
	span := custom.Span()
	testutil.ExpectEq(t, uint32(len(src)), span.Len())
}

func TestWithoutCommentStripping(t *testing.T) {
	t.Parallel()

	src := []byte("// comment\nstruct A { uint8_t a; };\n")
	_, err := syntax.Parse(src, syntax.WithCommentStripping(false))
	testutil.AssertError(t, err)

	parseErr := err.(*syntax.Error)
	testutil.ExpectDiagnostic(t, syntaxErrors["unexpected_character"], parseErr.Code(), parseErr.Message())
	testutil.ExpectEq(t, syntax.NewSpan(0, 1), parseErr.Span())
}

func TestInvalidUtf8(t *testing.T) {
	t.Parallel()

	_, err := syntax.Parse([]byte("struct A\xff { };"))
	testutil.AssertError(t, err)

	parseErr := err.(*syntax.Error)
	testutil.ExpectDiagnostic(t, syntaxErrors["invalid_utf8"], parseErr.Code(), parseErr.Message())
	testutil.ExpectEq(t, syntax.NewSpan(8, 1), parseErr.Span())
}

func TestParseStruct(t *testing.T) {
	t.Parallel()

	opts := syntax.NewParseOptions()
	node, err := opts.ParseStruct([]byte("struct A { uint32_t len; };"))
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, "A", node.Name().Get())
	testutil.ExpectEq(t, syntax.NewSpan(0, 27), node.Span())

	var idents []string
	syntax.Walk(node, func(n syntax.Node) bool {
		if ident, ok := n.(*syntax.Ident); ok {
			idents = append(idents, ident.Get())
		}
		return true
	})
	testutil.ExpectSliceEq(t, []string{"A", "uint32_t", "len"}, idents)
}
