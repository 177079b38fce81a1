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

package schematext_test

import (
	"testing"

	"go.libucomm.org/ucommc/compiler"
	"go.libucomm.org/ucommc/encoding/schematext"
	"go.libucomm.org/ucommc/internal/testutil"
	"go.libucomm.org/ucommc/syntax"
)

func TestEncode(t *testing.T) {
	t.Parallel()

	doc, err := syntax.Parse([]byte(`
custom
{
	const char* name = "a\b";
}
struct uint8_t { uint16_t wide; };
struct S
{
	enum { A = 'x', B };
	uint8_t narrow;
	S2 later[];
};
struct S2 { int32_t v[2]; };
`))
	testutil.AssertNoError(t, err)
	result := compiler.Compile(doc)
	testutil.AssertNoError(t, result.Err())

	want := `custom {
	content = "const char* name = \"a\\b\";"
}
struct uint8_t {
	plain = .true
	packed_size = "(2)"
	packed_size_value = 2
	member wide {
		type = "uint16_t"
		plain = .true
		size = "2"
	}
}
struct S {
	plain = .false
	packed_size = "(1)"
	packed_size_value = 1
	enum {
		entry A = "'x'"
		entry B
	}
	member narrow {
		type = "uint8_t"
		plain = .true
		size = "1"
	}
	member later {
		type = "S2[]"
		plain = .false
		last = .true
	}
}
struct S2 {
	plain = .true
	packed_size = "((2) * 4)"
	packed_size_value = 8
	member v {
		type = "int32_t[2]"
		plain = .true
		size = "(2) * 4"
	}
}
`
	testutil.ExpectNoDiff(t, want, schematext.Encode(result.Schema()))
}
