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

// Package schematext renders a compiled schema as indented text, one
// property per line. The output shows each struct's layout classification
// and is stable enough to be used as a test expectation.
package schematext

import (
	"fmt"
	"io"
	"strings"

	"go.libucomm.org/ucommc/compiler"
)

func Encode(schema *compiler.Schema) string {
	var buf strings.Builder
	EncodeTo(schema, &buf)
	return buf.String()
}

func EncodeTo(schema *compiler.Schema, w io.Writer) error {
	e := encoder{w: w, schema: schema}
	for _, decl := range schema.Decls() {
		if e.err != nil {
			break
		}
		switch decl := decl.(type) {
		case *compiler.Struct:
			e.visitStruct(decl)
		case *compiler.Enum:
			e.visitEnum(decl)
		case *compiler.CustomBlock:
			e.line("custom {")
			e.indent += 1
			e.linef("content = %s", quote(strings.TrimSpace(decl.Content())))
			e.indent -= 1
			e.line("}")
		}
	}
	return e.err
}

type encoder struct {
	w      io.Writer
	schema *compiler.Schema
	indent int
	err    error
}

func (e *encoder) line(s string) {
	if e.err != nil {
		return
	}
	if indent := strings.Repeat("\t", e.indent); indent != "" {
		if _, err := io.WriteString(e.w, indent); err != nil {
			e.err = err
			return
		}
	}
	if _, err := io.WriteString(e.w, s); err != nil {
		e.err = err
		return
	}
	if _, err := io.WriteString(e.w, "\n"); err != nil {
		e.err = err
		return
	}
}

func (e *encoder) linef(format string, a ...any) {
	e.line(fmt.Sprintf(format, a...))
}

func (e *encoder) visitStruct(s *compiler.Struct) {
	e.linef("%s %s {", s.Kind(), s.Name())
	e.indent += 1
	e.linef("plain = %s", fmtBool(s.IsPlain()))
	packedSize := s.PackedSize()
	e.linef("packed_size = %s", quote(packedSize.String()))
	if value, ok := packedSize.Value(); ok {
		e.linef("packed_size_value = %d", value)
	}
	if id, ok := s.MessageID(); ok {
		e.linef("message_id = %d", id)
	}
	for _, enum := range s.Enums() {
		e.visitEnum(enum)
	}
	for _, m := range s.Members() {
		e.visitMember(m)
	}
	e.indent -= 1
	e.line("}")
}

func (e *encoder) visitMember(m *compiler.Member) {
	e.linef("member %s {", m.Name())
	e.indent += 1
	e.linef("type = %s", quote(fmtType(e.schema, m)))
	e.linef("plain = %s", fmtBool(m.IsPlain()))
	if m.IsPlain() {
		e.linef("size = %s", quote(m.Size().String()))
	}
	if m.IsLast() {
		e.line("last = .true")
	}
	e.indent -= 1
	e.line("}")
}

func (e *encoder) visitEnum(enum *compiler.Enum) {
	if name := enum.Name(); name != "" {
		e.linef("enum %s {", name)
	} else {
		e.line("enum {")
	}
	e.indent += 1
	for _, entry := range enum.Entries() {
		if value, ok := entry.Value(); ok {
			e.linef("entry %s = %s", entry.Name(), quote(value))
		} else {
			e.linef("entry %s", entry.Name())
		}
	}
	e.indent -= 1
	e.line("}")
}

func fmtType(schema *compiler.Schema, m *compiler.Member) string {
	var typeName string
	if builtin, ok := m.Type().Builtin(); ok {
		typeName = builtin.String()
	} else {
		id, _ := m.Type().Struct()
		typeName = schema.Struct(id).Name()
	}
	if !m.IsArray() {
		return typeName
	}
	return typeName + "[" + m.ArraySize() + "]"
}

func fmtBool(value bool) string {
	if value {
		return ".true"
	}
	return ".false"
}

func quote(text string) string {
	var buf strings.Builder
	buf.WriteByte('"')
	for _, c := range text {
		if c == '\\' || c == '"' {
			buf.WriteByte('\\')
			buf.WriteRune(c)
			continue
		}
		if c == '\t' {
			buf.WriteString("\\t")
			continue
		}
		if c == '\n' {
			buf.WriteString("\\n")
			continue
		}
		if c < 0x20 || c == 0x7F {
			fmt.Fprintf(&buf, "\\x%02X", c)
			continue
		}
		buf.WriteRune(c)
	}
	buf.WriteByte('"')
	return buf.String()
}
