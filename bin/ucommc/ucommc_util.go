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
	"fmt"
	"os"

	"go.libucomm.org/ucommc"
)

// compileFlags are shared by every command that reads a schema.
type compileFlags struct {
	noStripComments bool
}

func (f *compileFlags) options(srcPath string, extra ...ucommc.Option) *ucommc.Options {
	opts := []ucommc.Option{
		ucommc.WithSourcePath(srcPath),
		ucommc.WithCommentStripping(!f.noStripComments),
	}
	return ucommc.NewOptions(append(opts, extra...)...)
}

// report prints warnings and then errors to stderr. It returns false if
// err is non-nil.
func report(s *streams, opts *ucommc.Options, src []byte, out *ucommc.Output, err error) bool {
	if out != nil {
		for _, d := range opts.DiagnoseWarnings(src, out.Warnings) {
			fmt.Fprintln(s.stderr, d)
		}
	}
	if err == nil {
		return true
	}
	diagnostics, ok := opts.Diagnose(src, err)
	if !ok {
		fmt.Fprintln(s.stderr, err)
		return false
	}
	for _, d := range diagnostics {
		fmt.Fprintln(s.stderr, d)
	}
	return false
}

// writeOutput writes to stdout when outPath is empty.
func writeOutput(s *streams, outPath string, output string) error {
	if outPath == "" {
		_, err := fmt.Fprint(s.stdout, output)
		return err
	}

	openFlags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	fp, err := os.OpenFile(outPath, openFlags, 0o666)
	if err != nil {
		return err
	}
	_, writeErr := fp.WriteString(output)
	closeErr := fp.Close()
	if writeErr != nil {
		return writeErr
	}
	return closeErr
}
