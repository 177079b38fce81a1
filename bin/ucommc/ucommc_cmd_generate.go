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
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.libucomm.org/ucommc"
	"go.libucomm.org/ucommc/codegen"
)

type cmdGenerate struct {
	compileFlags
	outPath    string
	configPath string
	className  string
	includes   []string
	pragmaOnce bool
}

func (*cmdGenerate) help() *commandHelp {
	return &commandHelp{
		usage:   "generate [options] FILE",
		summary: "Generate a C++ header from a message definition file",
		args:    cobra.ExactArgs(1),
	}
}

func (cmd *cmdGenerate) flags(flags *pflag.FlagSet) {
	flags.StringVarP(&cmd.outPath, "output", "o", "", "write the header to this file instead of stdout")
	flags.StringVar(&cmd.configPath, "config", "", "read generator settings from a .json or .jsonnet file")
	flags.StringVar(&cmd.className, "class-name", "", "name of the generated class template (default \"Proto\")")
	flags.StringArrayVar(&cmd.includes, "include", nil, "add an #include line (repeatable)")
	flags.BoolVar(&cmd.pragmaOnce, "pragma-once", false, "start the header with #pragma once")
	flags.BoolVar(&cmd.noStripComments, "no-strip-comments", false, "do not remove // comments before parsing")
}

func (cmd *cmdGenerate) run(ctx context.Context, s *streams, argv []string) int {
	srcPath := argv[0]

	codegenOpts, err := cmd.codegenOptions()
	if err != nil {
		fmt.Fprintln(s.stderr, err)
		return 1
	}

	src, err := os.ReadFile(srcPath)
	if err != nil {
		fmt.Fprintln(s.stderr, err)
		return 1
	}
	opts := cmd.options(srcPath, ucommc.WithCodegenOptions(codegenOpts...))
	out, err := opts.Generate(src)
	if !report(s, opts, src, out, err) {
		return 1
	}

	if err := writeOutput(s, cmd.outPath, out.Text); err != nil {
		fmt.Fprintln(s.stderr, err)
		return 1
	}
	return 0
}

// codegenOptions layers command-line flags over the config file.
func (cmd *cmdGenerate) codegenOptions() ([]codegen.Option, error) {
	var opts []codegen.Option
	if cmd.configPath != "" {
		cfg, err := loadConfig(cmd.configPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, cfg.codegenOptions()...)
	}
	if cmd.className != "" {
		opts = append(opts, codegen.WithClassName(cmd.className))
	}
	if len(cmd.includes) > 0 {
		opts = append(opts, codegen.WithIncludes(cmd.includes...))
	}
	if cmd.pragmaOnce {
		opts = append(opts, codegen.WithPragmaOnce(true))
	}
	return opts, nil
}
