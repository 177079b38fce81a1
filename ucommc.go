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

// Package ucommc compiles libucomm message schemas into C++ headers.
//
// Generate runs [syntax.Parse], [compiler.Compile] and [codegen.Generate]
// in sequence on one source file.
package ucommc

import (
	"errors"
	"fmt"

	"go.libucomm.org/ucommc/codegen"
	"go.libucomm.org/ucommc/compiler"
	"go.libucomm.org/ucommc/syntax"
)

type Option interface {
	apply(*Options)
}

type option func(*Options)

func (f option) apply(opts *Options) { f(opts) }

type Options struct {
	sourcePath    string
	stripComments bool
	codegenOpts   []codegen.Option
}

// WithSourcePath sets the path reported in diagnostics and recorded in the
// compiled schema.
func WithSourcePath(path string) Option {
	return option(func(opts *Options) {
		opts.sourcePath = path
	})
}

func WithCommentStripping(strip bool) Option {
	return option(func(opts *Options) {
		opts.stripComments = strip
	})
}

func WithCodegenOptions(codegenOpts ...codegen.Option) Option {
	return option(func(opts *Options) {
		opts.codegenOpts = append(opts.codegenOpts, codegenOpts...)
	})
}

func NewOptions(opts ...Option) *Options {
	options := &Options{
		stripComments: true,
	}
	for _, opt := range opts {
		opt.apply(options)
	}
	return options
}

// Output is the result of a successful run. Text is empty when only
// compilation was requested.
type Output struct {
	Text     string
	Schema   *compiler.Schema
	Warnings []*compiler.Warning
}

func Compile(src []byte, opts ...Option) (*Output, error) {
	return NewOptions(opts...).Compile(src)
}

func Generate(src []byte, opts ...Option) (*Output, error) {
	return NewOptions(opts...).Generate(src)
}

// Compile parses and compiles src. The returned error is a *syntax.Error
// or a compiler.Errors. When compilation fails the Output is still
// returned so that warnings can be reported alongside the errors.
func (opts *Options) Compile(src []byte) (*Output, error) {
	doc, err := syntax.Parse(src, syntax.WithCommentStripping(opts.stripComments))
	if err != nil {
		return nil, err
	}
	result := compiler.Compile(doc, compiler.WithSourcePath(opts.sourcePath))
	out := &Output{
		Schema:   result.Schema(),
		Warnings: result.Warnings,
	}
	if err := result.Err(); err != nil {
		return out, err
	}
	return out, nil
}

func (opts *Options) Generate(src []byte) (*Output, error) {
	out, err := opts.Compile(src)
	if err != nil {
		return out, err
	}
	out.Text = codegen.Generate(out.Schema, opts.codegenOpts...)
	return out, nil
}

// Diagnostic is an error or warning positioned in the source file.
type Diagnostic struct {
	Path     string
	Location syntax.Location
	Span     syntax.Span
	Code     uint32
	Message  string
	Warning  bool
}

// String formats the diagnostic as "path:line:col: E1234: message".
func (d *Diagnostic) String() string {
	path := d.Path
	if path == "" {
		path = "<input>"
	}
	severity := "E"
	if d.Warning {
		severity = "W"
	}
	return fmt.Sprintf(
		"%s:%d:%d: %s%d: %s",
		path, d.Location.Line, d.Location.Column,
		severity, d.Code, d.Message,
	)
}

// Diagnose converts an error returned by Compile or Generate into
// positioned diagnostics. It returns false for errors that carry no
// source position.
func (opts *Options) Diagnose(src []byte, err error) ([]*Diagnostic, bool) {
	src = opts.positionSource(src)

	var syntaxErr *syntax.Error
	if errors.As(err, &syntaxErr) {
		return []*Diagnostic{
			opts.diagnostic(src, syntaxErr.Span(), syntaxErr.Code(), syntaxErr.Message()),
		}, true
	}

	var compileErrs compiler.Errors
	if errors.As(err, &compileErrs) {
		out := make([]*Diagnostic, 0, len(compileErrs))
		for _, compileErr := range compileErrs {
			out = append(out, opts.diagnostic(
				src, compileErr.Span(), compileErr.Code(), compileErr.Message(),
			))
		}
		return out, true
	}
	return nil, false
}

func (opts *Options) DiagnoseWarnings(src []byte, warnings []*compiler.Warning) []*Diagnostic {
	src = opts.positionSource(src)
	out := make([]*Diagnostic, 0, len(warnings))
	for _, warning := range warnings {
		d := opts.diagnostic(src, warning.Span(), warning.Code(), warning.Message())
		d.Warning = true
		out = append(out, d)
	}
	return out
}

// Spans index into the parsed text. Stripping comments keeps every line
// break, so line and column numbers match the file as written.
func (opts *Options) positionSource(src []byte) []byte {
	if opts.stripComments {
		return syntax.StripComments(src)
	}
	return src
}

func (opts *Options) diagnostic(
	src []byte,
	span syntax.Span,
	code uint32,
	message string,
) *Diagnostic {
	return &Diagnostic{
		Path:     opts.sourcePath,
		Location: syntax.LocationOf(src, span.Start()),
		Span:     span,
		Code:     code,
		Message:  message,
	}
}
