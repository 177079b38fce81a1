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

// Command ucommc-codegen-cpp is the C++ generator packaged as a codegen
// plugin. Build it for WebAssembly with TinyGo.
package main

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"go.libucomm.org/ucommc"
	"go.libucomm.org/ucommc/codegen"
	"go.libucomm.org/ucommc/encoding/schemajson"
	"go.libucomm.org/ucommc/plugin"
)

func main() {}

// generate compiles the request source with the host's settings and renders
// one header named after the source file. The request schema must match the
// compiled source. Recognized options are "class_name", "includes"
// (comma-separated), and "pragma_once".
func generate(req *plugin.Request) (*plugin.Response, error) {
	codegenOpts, err := codegenOptions(req.Options)
	if err != nil {
		return nil, err
	}
	opts := ucommc.NewOptions(
		ucommc.WithSourcePath(req.SourcePath),
		ucommc.WithCommentStripping(!req.KeepComments),
	)
	src := []byte(req.Source)
	out, err := opts.Compile(src)
	if err != nil {
		diagnostics, ok := opts.Diagnose(src, err)
		if !ok {
			return nil, err
		}
		lines := make([]string, 0, len(diagnostics))
		for _, d := range diagnostics {
			lines = append(lines, d.String())
		}
		return nil, fmt.Errorf("%s", strings.Join(lines, "\n"))
	}
	if req.Schema != nil && !req.Schema.Equal(schemajson.FromSchema(out.Schema)) {
		return nil, fmt.Errorf("Request schema does not match the compiled source")
	}

	return &plugin.Response{
		Files: []plugin.OutputFile{{
			Path:    []string{headerName(req.SourcePath)},
			Content: codegen.Generate(out.Schema, codegenOpts...),
		}},
	}, nil
}

func codegenOptions(options map[string]string) ([]codegen.Option, error) {
	var out []codegen.Option
	for key, value := range options {
		switch key {
		case "class_name":
			out = append(out, codegen.WithClassName(value))
		case "includes":
			for _, include := range strings.Split(value, ",") {
				if include = strings.TrimSpace(include); include != "" {
					out = append(out, codegen.WithIncludes(include))
				}
			}
		case "pragma_once":
			pragmaOnce, err := strconv.ParseBool(value)
			if err != nil {
				return nil, fmt.Errorf("Invalid value %q for option pragma_once", value)
			}
			out = append(out, codegen.WithPragmaOnce(pragmaOnce))
		default:
			return nil, fmt.Errorf("Unknown option %q", key)
		}
	}
	return out, nil
}

func headerName(sourcePath string) string {
	base := path.Base(strings.ReplaceAll(sourcePath, `\`, "/"))
	if base == "." || base == "/" || base == "" {
		return "proto.h"
	}
	return strings.TrimSuffix(base, path.Ext(base)) + ".h"
}
