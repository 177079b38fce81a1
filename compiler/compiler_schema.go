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

package compiler

import (
	"fmt"

	"go.libucomm.org/ucommc/syntax"
)

type BuiltinType uint8

const (
	BuiltinType_UNKNOWN BuiltinType = iota
	BuiltinType_UINT8
	BuiltinType_INT8
	BuiltinType_UINT16
	BuiltinType_INT16
	BuiltinType_UINT32
	BuiltinType_INT32
)

var builtinTypes = map[string]BuiltinType{
	"uint8_t":  BuiltinType_UINT8,
	"int8_t":   BuiltinType_INT8,
	"uint16_t": BuiltinType_UINT16,
	"int16_t":  BuiltinType_INT16,
	"uint32_t": BuiltinType_UINT32,
	"int32_t":  BuiltinType_INT32,
}

// LookupBuiltin returns the builtin scalar type with the given C name.
func LookupBuiltin(name string) (BuiltinType, bool) {
	t, ok := builtinTypes[name]
	return t, ok
}

func (t BuiltinType) String() string {
	switch t {
	case BuiltinType_UINT8:
		return "uint8_t"
	case BuiltinType_INT8:
		return "int8_t"
	case BuiltinType_UINT16:
		return "uint16_t"
	case BuiltinType_INT16:
		return "int16_t"
	case BuiltinType_UINT32:
		return "uint32_t"
	case BuiltinType_INT32:
		return "int32_t"
	default:
		return fmt.Sprintf("BuiltinType(%d)", uint8(t))
	}
}

// Size returns the encoded size in bytes.
func (t BuiltinType) Size() uint32 {
	switch t {
	case BuiltinType_UINT8, BuiltinType_INT8:
		return 1
	case BuiltinType_UINT16, BuiltinType_INT16:
		return 2
	case BuiltinType_UINT32, BuiltinType_INT32:
		return 4
	default:
		return 0
	}
}

// StructID is an index into the struct arena of a Schema.
type StructID uint32

// TypeRef is the resolved type of a member: either a builtin scalar or a
// struct of the same schema.
type TypeRef struct {
	builtin  BuiltinType
	structID StructID
}

func builtinRef(t BuiltinType) TypeRef {
	return TypeRef{builtin: t}
}

func structRef(id StructID) TypeRef {
	return TypeRef{structID: id}
}

func (t TypeRef) Builtin() (BuiltinType, bool) {
	return t.builtin, t.builtin != BuiltinType_UNKNOWN
}

func (t TypeRef) Struct() (StructID, bool) {
	return t.structID, t.builtin == BuiltinType_UNKNOWN
}

type Schema struct {
	sourcePath   string
	decls        []Decl
	structs      []*Struct
	enums        []*Enum
	customBlocks []*CustomBlock
	byName       map[string]*Struct
}

func (s *Schema) SourcePath() string {
	return s.sourcePath
}

// Decls returns every top-level declaration in document order.
func (s *Schema) Decls() []Decl {
	return s.decls
}

// Structs returns all structs and messages in document order. The index
// of each struct equals its StructID.
func (s *Schema) Structs() []*Struct {
	return s.structs
}

func (s *Schema) Struct(id StructID) *Struct {
	return s.structs[id]
}

func (s *Schema) StructByName(name string) *Struct {
	return s.byName[name]
}

// Enums returns the top-level enums in document order.
func (s *Schema) Enums() []*Enum {
	return s.enums
}

func (s *Schema) CustomBlocks() []*CustomBlock {
	return s.customBlocks
}

// Decl is one of *Struct, *Enum, or *CustomBlock.
type Decl interface {
	Span() syntax.Span
	isDecl()
}

type Struct struct {
	id      StructID
	kind    syntax.StructKind
	name    string
	node    *syntax.Struct
	enums   []*Enum
	members []*Member

	// Set by classifyLayouts()
	isPlain    bool
	packedSize SizeExpr

	// Set by assignMessageIDs()
	messageID    uint32
	hasMessageID bool
}

var _ Decl = (*Struct)(nil)

func (*Struct) isDecl() {}

func (s *Struct) Span() syntax.Span {
	return s.node.Span()
}

func (s *Struct) NameSpan() syntax.Span {
	return s.node.Name().Span()
}

func (s *Struct) ID() StructID {
	return s.id
}

func (s *Struct) Kind() syntax.StructKind {
	return s.kind
}

func (s *Struct) IsMessage() bool {
	return s.kind == syntax.StructKind_MESSAGE
}

func (s *Struct) Name() string {
	return s.name
}

func (s *Struct) Enums() []*Enum {
	return s.enums
}

func (s *Struct) Members() []*Member {
	return s.members
}

// IsPlain reports whether the struct is a fixed-size block of bytes that
// can be copied to and from the wire in one operation.
func (s *Struct) IsPlain() bool {
	return s.isPlain
}

// PackedSize is the byte size of the struct's plain members.
func (s *Struct) PackedSize() SizeExpr {
	return s.packedSize
}

func (s *Struct) MessageID() (uint32, bool) {
	return s.messageID, s.hasMessageID
}

func (s *Struct) PlainMembers() []*Member {
	var out []*Member
	for _, m := range s.members {
		if m.isPlain {
			out = append(out, m)
		}
	}
	return out
}

func (s *Struct) NonPlainMembers() []*Member {
	var out []*Member
	for _, m := range s.members {
		if !m.isPlain {
			out = append(out, m)
		}
	}
	return out
}

type Member struct {
	name      string
	typeName  string
	type_     TypeRef
	isArray   bool
	arraySize string
	node      *syntax.Member

	// Set by classifyLayouts()
	isPlain bool
	size    SizeTerm
	isLast  bool
}

func (m *Member) Span() syntax.Span {
	return m.node.Span()
}

func (m *Member) Name() string {
	return m.name
}

// TypeName is the type as written in the source.
func (m *Member) TypeName() string {
	return m.typeName
}

func (m *Member) Type() TypeRef {
	return m.type_
}

func (m *Member) IsArray() bool {
	return m.isArray
}

// IsDynamic reports whether the member is an array with no fixed size.
func (m *Member) IsDynamic() bool {
	return m.isArray && m.arraySize == ""
}

// ArraySize is the element count of a fixed-size array, exactly as written
// (trimmed). It is empty for scalars and dynamic arrays.
func (m *Member) ArraySize() string {
	return m.arraySize
}

func (m *Member) IsPlain() bool {
	return m.isPlain
}

// Size is the member's contribution to its struct's packed size. It is
// only meaningful for plain members.
func (m *Member) Size() SizeTerm {
	return m.size
}

// IsLast reports whether this is the final non-plain member of its struct.
func (m *Member) IsLast() bool {
	return m.isLast
}

type Enum struct {
	name    string
	node    *syntax.Enum
	entries []*EnumEntry
}

var _ Decl = (*Enum)(nil)

func (*Enum) isDecl() {}

func (e *Enum) Span() syntax.Span {
	return e.node.Span()
}

// Name is empty for an anonymous enum.
func (e *Enum) Name() string {
	return e.name
}

func (e *Enum) Entries() []*EnumEntry {
	return e.entries
}

type EnumEntry struct {
	name     string
	value    string
	hasValue bool
}

func (e *EnumEntry) Name() string {
	return e.name
}

// Value returns the assigned value text, if any.
func (e *EnumEntry) Value() (string, bool) {
	return e.value, e.hasValue
}

type CustomBlock struct {
	node    *syntax.CustomBlock
	content string
}

var _ Decl = (*CustomBlock)(nil)

func (*CustomBlock) isDecl() {}

func (b *CustomBlock) Span() syntax.Span {
	return b.node.Span()
}

// Content is the text between the block's outer braces, unmodified.
func (b *CustomBlock) Content() string {
	return b.content
}
