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

package testutil

import (
	"bytes"
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"testing"

	"go.libucomm.org/ucommc/syntax"
)

// TestdataFS returns the repository's top-level testdata directory.
func TestdataFS() (fs.FS, error) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return nil, errors.New("testutil: unable to locate source directory")
	}
	dir := filepath.Join(filepath.Dir(file), "..", "..", "testdata")
	if _, err := os.Stat(dir); err != nil {
		return nil, err
	}
	return os.DirFS(dir), nil
}

// Diagnostic is one entry of a diagnostics registry such as
// "diagnostics/syntax_errors.json".
type Diagnostic struct {
	Key     string
	Code    uint32
	Message string
	Pattern *regexp.Regexp
}

func LoadDiagnostics(testdata fs.FS, jsonPath string) (map[string]*Diagnostic, error) {
	type raw struct {
		Code    uint32 `json:"code"`
		Message string `json:"message"`
		Pattern string `json:"message_pattern"`
	}

	jsonData, err := fs.ReadFile(testdata, jsonPath)
	if err != nil {
		return nil, err
	}

	var rawDiagnostics map[string]raw
	decoder := json.NewDecoder(bytes.NewReader(jsonData))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&rawDiagnostics); err != nil {
		return nil, fmt.Errorf("%s: %w", jsonPath, err)
	}

	out := make(map[string]*Diagnostic, len(rawDiagnostics))
	codes := make(map[uint32]string, len(rawDiagnostics))
	for key, raw := range rawDiagnostics {
		if raw.Code == 0 {
			return nil, fmt.Errorf("%s: %q has no code", jsonPath, key)
		}
		if other, conflict := codes[raw.Code]; conflict {
			return nil, fmt.Errorf(
				"%s: code %d used by both %q and %q",
				jsonPath, raw.Code, other, key,
			)
		}
		codes[raw.Code] = key

		var pattern *regexp.Regexp
		if raw.Pattern != "" {
			pattern, err = regexp.Compile("(?i)" + raw.Pattern)
			if err != nil {
				return nil, err
			}
		}
		out[key] = &Diagnostic{
			Key:     key,
			Code:    raw.Code,
			Message: raw.Message,
			Pattern: pattern,
		}
	}
	return out, nil
}

// ExpectedDiagnostic is a registry entry together with the span it is
// expected to be reported at.
type ExpectedDiagnostic struct {
	Diagnostic
	Span syntax.Span
}

// LoadExpected reads a list of expected diagnostics of the form
//
//	{"diagnostics": [{"name": "...", "span": {"start": 0, "len": 1}}]}
//
// sorted by span start and then by code.
func LoadExpected(
	t *testing.T,
	registry map[string]*Diagnostic,
	testdata fs.FS,
	jsonPath string,
) []*ExpectedDiagnostic {
	t.Helper()

	jsonData, err := fs.ReadFile(testdata, jsonPath)
	if err != nil {
		t.Fatal(err)
	}

	type expected struct {
		Diagnostics []struct {
			Name string `json:"name"`
			Span struct {
				Start uint32 `json:"start"`
				Len   uint32 `json:"len"`
			} `json:"span"`
		} `json:"diagnostics"`
	}

	var raw expected
	if err := json.Unmarshal(jsonData, &raw); err != nil {
		t.Fatal(err)
	}

	var out []*ExpectedDiagnostic
	for _, entry := range raw.Diagnostics {
		diag, ok := registry[entry.Name]
		if !ok {
			t.Fatalf("unknown diagnostic name %q", entry.Name)
		}
		out = append(out, &ExpectedDiagnostic{
			Diagnostic: *diag,
			Span:       syntax.NewSpan(entry.Span.Start, entry.Span.Len),
		})
	}

	slices.SortFunc(out, func(a, b *ExpectedDiagnostic) int {
		if x := cmp.Compare(a.Span.Start(), b.Span.Start()); x != 0 {
			return x
		}
		return cmp.Compare(a.Code, b.Code)
	})
	return out
}

// SpanOrDie converts a decoded `{"start": N, "len": N}` object into a Span.
func SpanOrDie(t *testing.T, raw any) syntax.Span {
	t.Helper()
	obj, ok := raw.(map[string]any)
	if !ok {
		t.Fatalf("expected span object, got %#v", raw)
	}
	field := func(name string) uint32 {
		switch value := obj[name].(type) {
		case json.Number:
			n, err := value.Int64()
			if err != nil || n < 0 {
				t.Fatalf("invalid span %s %q", name, value)
			}
			return uint32(n)
		case float64:
			return uint32(value)
		default:
			t.Fatalf("missing span %s in %#v", name, raw)
		}
		return 0
	}
	return syntax.NewSpan(field("start"), field("len"))
}
