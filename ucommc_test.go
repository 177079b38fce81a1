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

package ucommc_test

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"go.libucomm.org/ucommc"
	"go.libucomm.org/ucommc/codegen"
	"go.libucomm.org/ucommc/compiler"
	"go.libucomm.org/ucommc/internal/testutil"
	"go.libucomm.org/ucommc/syntax"
)

var testdata fs.FS

func init() {
	var err error
	testdata, err = testutil.TestdataFS()
	if err != nil {
		panic(err)
	}
}

func readTestdata(t *testing.T, path string) []byte {
	t.Helper()
	buf, err := fs.ReadFile(testdata, path)
	testutil.AssertNoError(t, err)
	return buf
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	src := readTestdata(t, "generate/messages/messages.ucomm")
	expect := readTestdata(t, "generate/messages/expect.h")

	out, err := ucommc.Generate(src, ucommc.WithSourcePath("messages.ucomm"))
	testutil.AssertNoError(t, err)
	testutil.ExpectNoDiff(t, string(expect), out.Text)
	testutil.ExpectEq(t, 0, len(out.Warnings))
	testutil.ExpectEq(t, "messages.ucomm", out.Schema.SourcePath())
}

func TestGenerateDiagnostics(t *testing.T) {
	t.Parallel()

	src := readTestdata(t, "generate/diagnostics/diagnostics.ucomm")
	expect := readTestdata(t, "generate/diagnostics/expect_diagnostics.txt")

	opts := ucommc.NewOptions(ucommc.WithSourcePath("diagnostics.ucomm"))
	out, err := opts.Generate(src)
	testutil.AssertError(t, err)

	var compileErrs compiler.Errors
	testutil.ExpectTrue(t, errors.As(err, &compileErrs))
	testutil.ExpectEq(t, "", out.Text)

	var got strings.Builder
	for _, d := range opts.DiagnoseWarnings(src, out.Warnings) {
		fmt.Fprintln(&got, d)
	}
	diagnostics, ok := opts.Diagnose(src, err)
	testutil.ExpectTrue(t, ok)
	for _, d := range diagnostics {
		fmt.Fprintln(&got, d)
	}
	testutil.ExpectNoDiff(t, string(expect), got.String())
}

func TestSyntaxErrorDiagnostic(t *testing.T) {
	t.Parallel()

	src := []byte("// header\nstruct A { uint8_t x }\n")
	opts := ucommc.NewOptions()
	out, err := opts.Generate(src)
	testutil.AssertError(t, err)
	testutil.ExpectTrue(t, out == nil)

	var syntaxErr *syntax.Error
	testutil.AssertTrue(t, errors.As(err, &syntaxErr))

	diagnostics, ok := opts.Diagnose(src, err)
	testutil.AssertTrue(t, ok)
	testutil.ExpectEq(t, 1, len(diagnostics))

	d := diagnostics[0]
	testutil.ExpectEq(t, syntaxErr.Code(), d.Code)
	testutil.ExpectEq(t, syntax.Location{Line: 2, Column: 22}, d.Location)
	testutil.ExpectTrue(t, strings.HasPrefix(d.String(), "<input>:2:22: E"))
}

func TestDiagnoseUnknownError(t *testing.T) {
	t.Parallel()

	diagnostics, ok := ucommc.NewOptions().Diagnose(nil, errors.New("io failure"))
	testutil.ExpectFalse(t, ok)
	testutil.ExpectEq(t, 0, len(diagnostics))
}

func TestCommentStripping(t *testing.T) {
	t.Parallel()

	src := []byte("struct A { uint8_t x; }; // trailing\n")
	_, err := ucommc.Compile(src)
	testutil.ExpectNoError(t, err)

	_, err = ucommc.Compile(src, ucommc.WithCommentStripping(false))
	testutil.ExpectError(t, err)
}

func TestCodegenOptions(t *testing.T) {
	t.Parallel()

	out, err := ucommc.Generate(
		[]byte("msg Ping { uint8_t seq; };"),
		ucommc.WithCodegenOptions(codegen.WithClassName("Link")),
		ucommc.WithCodegenOptions(codegen.WithPragmaOnce(true)),
	)
	testutil.AssertNoError(t, err)
	testutil.ExpectTrue(t, strings.HasPrefix(out.Text, "#pragma once\n"))
	testutil.ExpectTrue(t, strings.Contains(out.Text, "class Link\n"))
}

func TestCompileOnly(t *testing.T) {
	t.Parallel()

	out, err := ucommc.Compile([]byte("struct Empty { };"))
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, "", out.Text)
	testutil.ExpectEq(t, 1, len(out.Warnings))
	testutil.ExpectEq(t, uint32(4004), out.Warnings[0].Code())
}
