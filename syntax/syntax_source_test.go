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
	"testing"

	"go.libucomm.org/ucommc/internal/testutil"
	"go.libucomm.org/ucommc/syntax"
)

func TestStripComments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src  string
		want string
	}{
		{"", ""},
		{"no comments\n", "no comments\n"},
		{"// all\n", "\n"},
		{"a; // b\nc;", "a; \nc;"},
		{"a // b // c", "a "},
		{"x /// y\r\nz", "x \r\nz"},
		{"one\n//\n//two\nthree", "one\n\n\nthree"},
		{"a / b", "a / b"},
	}
	for _, test := range tests {
		got := string(syntax.StripComments([]byte(test.src)))
		testutil.ExpectEq(t, test.want, got)
	}
}

func TestStripCommentsPreservesLines(t *testing.T) {
	t.Parallel()

	src := []byte("// header\nstruct A // x\n{\n\tuint8_t a; // y\n};\n")
	got := syntax.StripComments(src)
	testutil.ExpectEq(t, bytes.Count(src, []byte("\n")), bytes.Count(got, []byte("\n")))

	// Columns of surviving text are unchanged.
	offset := uint32(bytes.Index(got, []byte("uint8_t")))
	testutil.ExpectEq(t, syntax.Location{Line: 4, Column: 2}, syntax.LocationOf(got, offset))
}

func TestLocationOf(t *testing.T) {
	t.Parallel()

	src := []byte("ab\ncé\nd")
	testutil.ExpectEq(t, syntax.Location{Line: 1, Column: 1}, syntax.LocationOf(src, 0))
	testutil.ExpectEq(t, syntax.Location{Line: 1, Column: 3}, syntax.LocationOf(src, 2))
	testutil.ExpectEq(t, syntax.Location{Line: 2, Column: 1}, syntax.LocationOf(src, 3))
	// 'é' is two bytes but one column.
	testutil.ExpectEq(t, syntax.Location{Line: 2, Column: 3}, syntax.LocationOf(src, 6))
	testutil.ExpectEq(t, syntax.Location{Line: 3, Column: 1}, syntax.LocationOf(src, 7))
	testutil.ExpectEq(t, syntax.Location{Line: 3, Column: 2}, syntax.LocationOf(src, 1000))
}
