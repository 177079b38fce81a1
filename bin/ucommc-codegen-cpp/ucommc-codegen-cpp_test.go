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

package main

import (
	"strings"
	"testing"

	"go.libucomm.org/ucommc"
	"go.libucomm.org/ucommc/encoding/schemajson"
	"go.libucomm.org/ucommc/internal/testutil"
	"go.libucomm.org/ucommc/plugin"
)

func TestGenerate(t *testing.T) {
	t.Parallel()

	resp, err := generate(&plugin.Request{
		Language:   "cpp",
		SourcePath: "proto/link.ucomm",
		Source:     "msg Ping { uint8_t seq; };",
		Options: map[string]string{
			"class_name":  "Link",
			"includes":    "board.h, <array>",
			"pragma_once": "true",
		},
	})
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, len(resp.Files) == 1)

	file := resp.Files[0]
	testutil.ExpectSliceEq(t, []string{"link.h"}, file.Path)
	testutil.ExpectTrue(t, strings.HasPrefix(file.Content, "#pragma once\n"))
	testutil.ExpectTrue(t, strings.Contains(file.Content, "#include \"board.h\"\n#include <array>\n"))
	testutil.ExpectTrue(t, strings.Contains(file.Content, "class Link\n"))
	testutil.ExpectTrue(t, strings.Contains(file.Content, "MSG_CODE = 0"))
}

func TestGenerateKeepComments(t *testing.T) {
	t.Parallel()

	const src = "custom { int x; // keep me\n }\nstruct A { uint8_t x; };"
	host, err := ucommc.Generate(
		[]byte(src),
		ucommc.WithSourcePath("keep.ucomm"),
		ucommc.WithCommentStripping(false),
	)
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, strings.Contains(host.Text, "// keep me"))

	resp, err := generate(&plugin.Request{
		SourcePath:   "keep.ucomm",
		Source:       src,
		KeepComments: true,
		Schema:       schemajson.FromSchema(host.Schema),
	})
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, len(resp.Files) == 1)
	testutil.ExpectNoDiff(t, host.Text, resp.Files[0].Content)

	stripped, err := generate(&plugin.Request{
		SourcePath: "keep.ucomm",
		Source:     src,
	})
	testutil.AssertNoError(t, err)
	testutil.ExpectFalse(t, strings.Contains(stripped.Files[0].Content, "// keep me"))
}

func TestGenerateSchemaMismatch(t *testing.T) {
	t.Parallel()

	const src = "custom { int x; // keep me\n }\nstruct A { uint8_t x; };"
	host, err := ucommc.Compile([]byte(src), ucommc.WithCommentStripping(false))
	testutil.AssertNoError(t, err)

	// Schema compiled without stripping, request asks for stripping.
	_, err = generate(&plugin.Request{
		Source: src,
		Schema: schemajson.FromSchema(host.Schema),
	})
	testutil.AssertError(t, err)
	testutil.ExpectEq(t, "Request schema does not match the compiled source", err.Error())
}

func TestGenerateErrors(t *testing.T) {
	t.Parallel()

	_, err := generate(&plugin.Request{
		SourcePath: "bad.ucomm",
		Source:     "struct A { Missing m; };",
	})
	testutil.AssertError(t, err)
	testutil.ExpectEq(t, "bad.ucomm:1:12: E3001: Unknown type 'Missing'", err.Error())

	_, err = generate(&plugin.Request{
		Source:  "struct A { uint8_t x; };",
		Options: map[string]string{"color": "blue"},
	})
	testutil.ExpectError(t, err)

	_, err = generate(&plugin.Request{
		Source:  "struct A { uint8_t x; };",
		Options: map[string]string{"pragma_once": "maybe"},
	})
	testutil.ExpectError(t, err)
}

func TestHeaderName(t *testing.T) {
	t.Parallel()

	for input, want := range map[string]string{
		"":                  "proto.h",
		"link.ucomm":        "link.h",
		"a/b/robot.proto":   "robot.h",
		`dir\windows.ucomm`: "windows.h",
		"noext":             "noext.h",
	} {
		testutil.ExpectEq(t, want, headerName(input))
	}
}
