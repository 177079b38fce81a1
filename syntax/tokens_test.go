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
	"strings"
	"testing"

	"go.libucomm.org/ucommc/internal/testutil"
	"go.libucomm.org/ucommc/syntax"
)

type strToken struct {
	kind    string
	content string
}

func tokensTest(t *testing.T, testName string) {
	t.Parallel()

	testsPath := fmt.Sprintf("tokens/%s.json", testName)
	t.Logf("reading test cases from %q", "testdata/"+testsPath)

	testsJSON, err := fs.ReadFile(testdata, testsPath)
	testutil.AssertNoError(t, err)

	tests := make(map[string][]map[string]any)
	decoder := json.NewDecoder(bytes.NewReader(testsJSON))
	decoder.UseNumber()
	testutil.AssertNoError(t, decoder.Decode(&tests))

	for ii, test := range tests["expect_ok"] {
		src := test["source"].(string)
		tokensIfaces := test["tokens"].([]any)
		tokens := make([]strToken, 0, len(tokensIfaces))
		for _, iface := range tokensIfaces {
			raw := iface.([]any)
			tokens = append(tokens, strToken{
				kind:    raw[0].(string),
				content: raw[1].(string),
			})
		}
		t.Run(fmt.Sprintf("expect_ok/%d", ii), func(t *testing.T) {
			testTokensOK(t, src, tokens)
		})
	}

	for ii, test := range tests["expect_err"] {
		t.Run(fmt.Sprintf("expect_err/%d", ii), func(t *testing.T) {
			testTokensErr(t, test)
		})
	}
}

func testTokensOK(t *testing.T, src string, want []strToken) {
	t.Logf("source: %q", src)

	tokens, err := syntax.NewTokens([]byte(src))
	testutil.AssertNoError(t, err)

	var got []strToken
	for {
		var token syntax.Token
		testutil.AssertNoError(t, tokens.Next(&token))
		if token.Kind == syntax.T_EOF {
			break
		}
		got = append(got, strToken{
			kind:    token.Kind.String(),
			content: src[:token.Len],
		})
		src = src[token.Len:]
	}

	testutil.ExpectSliceEq(t, want, got)
}

func testTokensErr(t *testing.T, test map[string]any) {
	src := test["source"].(string)
	t.Logf("source: %q", src)

	errorName := test["error"].(string)
	expectErr, ok := syntaxErrors[errorName]
	if !ok {
		t.Fatalf("unknown parse error name %q", errorName)
	}

	tokens, err := syntax.NewTokens([]byte(src))
	testutil.AssertNoError(t, err)

	for {
		var token syntax.Token
		err = tokens.Next(&token)
		if err != nil || token.Kind == syntax.T_EOF {
			break
		}
	}
	testutil.AssertError(t, err)

	tokenErr := err.(*syntax.Error)
	testutil.ExpectDiagnostic(t, expectErr, tokenErr.Code(), tokenErr.Message())

	expectSpan := testutil.SpanOrDie(t, test["error_span"])
	testutil.ExpectEq(t, expectSpan, tokenErr.Span())
}

func TestTokens(t *testing.T) {
	tokensTest(t, "tokens")
}

func TestTokenTooLong(t *testing.T) {
	t.Parallel()

	src := []byte(strings.Repeat("a", 0x10000))
	tokens, err := syntax.NewTokens(src)
	testutil.AssertNoError(t, err)

	var token syntax.Token
	err = tokens.Next(&token)
	testutil.AssertError(t, err)

	tokenErr := err.(*syntax.Error)
	testutil.ExpectDiagnostic(t, syntaxErrors["token_too_long"], tokenErr.Code(), tokenErr.Message())
}

func TestTokensSeek(t *testing.T) {
	t.Parallel()

	tokens, err := syntax.NewTokens([]byte("a = 1 + 2, b"))
	testutil.AssertNoError(t, err)

	var token syntax.Token
	testutil.AssertNoError(t, tokens.Next(&token))
	testutil.ExpectEq(t, syntax.T_IDENT, token.Kind)

	tokens.Seek(9)
	testutil.AssertNoError(t, tokens.Next(&token))
	testutil.ExpectEq(t, syntax.T_COMMA, token.Kind)
	testutil.ExpectEq(t, uint32(10), tokens.Offset())

	tokens.Seek(100)
	testutil.AssertNoError(t, tokens.Next(&token))
	testutil.ExpectEq(t, syntax.T_EOF, token.Kind)
}
