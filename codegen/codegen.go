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

// Package codegen generates C++ serialization code for the libucomm
// runtime from a compiled schema.
package codegen

import (
	"io"
	"regexp"
	"strings"

	"go.libucomm.org/ucommc/compiler"
)

const DefaultClassName = "Proto"

var standardIncludes = []string{
	"<stdint.h>",
	"<stdlib.h>",
	"<libucomm/list.h>",
}

type Option interface {
	apply(*Options)
}

type option func(*Options)

func (f option) apply(opts *Options) { f(opts) }

type Options struct {
	className  string
	includes   []string
	pragmaOnce bool
}

// WithClassName sets the name of the generated class template.
func WithClassName(className string) Option {
	return option(func(opts *Options) {
		opts.className = className
	})
}

// WithIncludes appends #include lines after the standard ones. Names not
// already wrapped in <> or "" are quoted.
func WithIncludes(includes ...string) Option {
	return option(func(opts *Options) {
		opts.includes = append(opts.includes, includes...)
	})
}

func WithPragmaOnce(pragmaOnce bool) Option {
	return option(func(opts *Options) {
		opts.pragmaOnce = pragmaOnce
	})
}

func NewOptions(opts ...Option) *Options {
	options := &Options{
		className: DefaultClassName,
	}
	for _, opt := range opts {
		opt.apply(options)
	}
	return options
}

func Generate(schema *compiler.Schema, opts ...Option) string {
	return NewOptions(opts...).Generate(schema)
}

func GenerateTo(schema *compiler.Schema, w io.Writer, opts ...Option) error {
	return NewOptions(opts...).GenerateTo(schema, w)
}

func (opts *Options) Generate(schema *compiler.Schema) string {
	var buf strings.Builder
	_ = opts.GenerateTo(schema, &buf) // strings.Builder never fails
	return buf.String()
}

func (opts *Options) GenerateTo(schema *compiler.Schema, w io.Writer) error {
	g := generator{opts: opts, schema: schema}
	return render(w, g.file())
}

type generator struct {
	opts   *Options
	schema *compiler.Schema
}

func (g *generator) file() []item {
	var items []item
	if g.opts.pragmaOnce {
		items = append(items, line("#pragma once"), blank{})
	}
	for _, include := range standardIncludes {
		items = append(items, linef("#include %s", include))
	}
	for _, include := range g.opts.includes {
		items = append(items, linef("#include %s", quoteInclude(include)))
	}
	items = append(items, blank{})

	items = append(items, line("// Start custom area"))
	for _, custom := range g.schema.CustomBlocks() {
		items = append(items, verbatim(custom.Content()))
	}
	items = append(items, line("// End custom area"), blank{})

	class := &block{
		open:  "class " + g.opts.className,
		close: "};",
		flat:  true,
	}
	class.add(line("public:"), blank{})
	for _, enum := range g.schema.Enums() {
		class.add(enumBlock(enum), blank{})
	}
	for _, s := range g.schema.Structs() {
		class.add(g.structBlock(s), blank{})
	}
	items = append(items, line("template<class IO>"), class)
	return items
}

func quoteInclude(include string) string {
	if strings.HasPrefix(include, "<") || strings.HasPrefix(include, `"`) {
		return include
	}
	return `"` + include + `"`
}

func enumBlock(enum *compiler.Enum) *block {
	b := &block{open: "enum", close: "};"}
	if name := enum.Name(); name != "" {
		b.open = "enum " + name
	}
	for _, entry := range enum.Entries() {
		if value, ok := entry.Value(); ok {
			b.add(linef("%s = %s,", entry.Name(), value))
		} else {
			b.add(linef("%s,", entry.Name()))
		}
	}
	return b
}

func (g *generator) structBlock(s *compiler.Struct) *block {
	b := &block{open: "struct " + s.Name(), close: "};"}
	if s.IsPlain() {
		b.close = "} __attribute__((packed));"
	}

	isPlain := 0
	if s.IsPlain() {
		isPlain = 1
	}
	b.add(&block{
		open: "enum",
		body: []item{
			linef("IS_POD = %d,", isPlain),
			linef("POD_SIZE = %s,", s.PackedSize()),
		},
		close: "};",
	}, blank{})

	if id, ok := s.MessageID(); ok {
		b.add(&block{
			open:  "enum",
			body:  []item{linef("MSG_CODE = %d", id)},
			close: "};",
		}, blank{})
	}

	for _, enum := range s.Enums() {
		b.add(enumBlock(enum))
	}

	if plain := s.PlainMembers(); len(plain) > 0 {
		packed := &block{open: "struct", close: "} __attribute__((packed));"}
		for _, m := range plain {
			packed.add(memberDecl(m))
		}
		b.add(packed)
	}
	for _, m := range s.NonPlainMembers() {
		b.add(memberDecl(m))
	}
	b.add(blank{})

	b.add(g.serialize(s), blank{})
	b.add(g.deserialize(s), blank{})
	return b
}

func memberDecl(m *compiler.Member) line {
	switch {
	case m.IsDynamic():
		last := "false"
		if m.IsLast() {
			last = "true"
		}
		return linef(
			"uc::List< uc::IOInstance<IO, %s>, %s > %s;",
			last, m.TypeName(), m.Name(),
		)
	case m.IsArray():
		return linef("%s %s[%s];", m.TypeName(), m.Name(), m.ArraySize())
	default:
		return linef("%s %s;", m.TypeName(), m.Name())
	}
}

func (g *generator) serialize(s *compiler.Struct) *block {
	b := &block{
		open:  "inline bool serialize(typename IO::Handler* output) const",
		close: "}",
	}
	if size := s.PackedSize(); !size.IsZero() {
		b.add(linef("RETURN_IF_ERROR(output->write(this, %s));", size))
	}
	for _, m := range s.NonPlainMembers() {
		b.add(eachElement(s, m, "RETURN_IF_ERROR(%s.serialize(output));"))
	}
	b.add(line("return true;"))
	return b
}

func (g *generator) deserialize(s *compiler.Struct) *block {
	b := &block{
		open:  "inline bool deserialize(typename IO::Reader* input)",
		close: "}",
	}
	if size := s.PackedSize(); !size.IsZero() {
		b.add(linef("RETURN_IF_ERROR(input->read(this, %s));", size))
	}
	for _, m := range s.NonPlainMembers() {
		b.add(eachElement(s, m, "RETURN_IF_ERROR(%s.deserialize(input));"))
	}
	b.add(line("return true;"))
	return b
}

// eachElement applies a per-object statement to a member. A fixed-size
// array of non-plain structs has no operations of its own, so each
// element is visited in a loop.
func eachElement(s *compiler.Struct, m *compiler.Member, format string) item {
	if !m.IsArray() || m.IsDynamic() {
		return linef(format, m.Name())
	}
	i := loopIndex(s, m)
	return &block{
		open:  "for (size_t " + i + " = 0; " + i + " < (" + m.ArraySize() + "); ++" + i + ")",
		body:  []item{linef(format, m.Name()+"["+i+"]")},
		close: "}",
	}
}

var identifierRegexp = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// loopIndex picks an index variable name that is not otherwise visible
// inside the loop.
func loopIndex(s *compiler.Struct, m *compiler.Member) string {
	taken := make(map[string]bool)
	for _, other := range s.Members() {
		taken[other.Name()] = true
	}
	for _, enum := range s.Enums() {
		for _, entry := range enum.Entries() {
			taken[entry.Name()] = true
		}
	}
	for _, name := range identifierRegexp.FindAllString(m.ArraySize(), -1) {
		taken[name] = true
	}
	i := "i"
	for taken[i] {
		i += "_"
	}
	return i
}
