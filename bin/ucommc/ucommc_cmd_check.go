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

	"go.libucomm.org/ucommc/encoding/schemajson"
	"go.libucomm.org/ucommc/encoding/schematext"
)

type cmdCheck struct {
	compileFlags
}

func (*cmdCheck) help() *commandHelp {
	return &commandHelp{
		usage:   "check [options] FILE",
		summary: "Report errors and warnings without generating code",
		args:    cobra.ExactArgs(1),
	}
}

func (cmd *cmdCheck) flags(flags *pflag.FlagSet) {
	flags.BoolVar(&cmd.noStripComments, "no-strip-comments", false, "do not remove // comments before parsing")
}

func (cmd *cmdCheck) run(ctx context.Context, s *streams, argv []string) int {
	srcPath := argv[0]
	src, err := os.ReadFile(srcPath)
	if err != nil {
		fmt.Fprintln(s.stderr, err)
		return 1
	}
	opts := cmd.options(srcPath)
	out, err := opts.Compile(src)
	if !report(s, opts, src, out, err) {
		return 1
	}
	return 0
}

type cmdLayout struct {
	compileFlags
	outPath string
	format  string
}

func (*cmdLayout) help() *commandHelp {
	return &commandHelp{
		usage:   "layout [options] FILE",
		summary: "Print the wire layout computed for each struct",
		args:    cobra.ExactArgs(1),
	}
}

func (cmd *cmdLayout) flags(flags *pflag.FlagSet) {
	flags.StringVarP(&cmd.outPath, "output", "o", "", "write the layout to this file instead of stdout")
	flags.StringVarP(&cmd.format, "format", "f", "text", "output format ('text' or 'json')")
	flags.BoolVar(&cmd.noStripComments, "no-strip-comments", false, "do not remove // comments before parsing")
}

func (cmd *cmdLayout) run(ctx context.Context, s *streams, argv []string) int {
	srcPath := argv[0]

	outputJSON := false
	switch cmd.format {
	case "text":
	case "json":
		outputJSON = true
	default:
		fmt.Fprintf(s.stderr, "Unsupported output format %q\n", cmd.format)
		return 1
	}

	src, err := os.ReadFile(srcPath)
	if err != nil {
		fmt.Fprintln(s.stderr, err)
		return 1
	}
	opts := cmd.options(srcPath)
	out, err := opts.Compile(src)
	if !report(s, opts, src, out, err) {
		return 1
	}

	var output string
	if outputJSON {
		buf, err := schemajson.Encode(out.Schema)
		if err != nil {
			fmt.Fprintln(s.stderr, err)
			return 1
		}
		output = string(buf) + "\n"
	} else {
		output = schematext.Encode(out.Schema)
	}
	if err := writeOutput(s, cmd.outPath, output); err != nil {
		fmt.Fprintln(s.stderr, err)
		return 1
	}
	return 0
}
