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

package syntax

import (
	"iter"
	"strings"
)

type Span struct {
	start, len uint32
}

func NewSpan(start, len uint32) Span {
	return Span{start, len}
}

func (s *Span) Start() uint32 {
	return s.start
}

func (s *Span) End() uint32 {
	return s.start + s.len
}

func (s *Span) Len() uint32 {
	return s.len
}

type Node interface {
	Span() Span

	ChildNodes() iter.Seq[Node]

	privChildren() []Node
}

func Walk(node Node, walkFn func(Node) bool) {
	if node == nil || !walkFn(node) {
		return
	}
	for _, child := range node.privChildren() {
		Walk(child, walkFn)
	}
	walkFn(nil)
}

func iterChildren(childNodes []Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for _, child := range childNodes {
			if !yield(child) {
				return
			}
		}
	}
}

type leafNode struct{}

func (*leafNode) ChildNodes() iter.Seq[Node] {
	return func(_yield func(Node) bool) {}
}

func (*leafNode) privChildren() []Node {
	return nil
}

type Sigil struct {
	leafNode
	raw   uint8
	start uint32
}

var _ Node = (*Sigil)(nil)

func (n *Sigil) Span() Span {
	return Span{
		start: n.start,
		len:   1,
	}
}

func (n *Sigil) Get() uint8 {
	return n.raw
}

type Keyword struct {
	leafNode
	raw   string
	start uint32
}

var _ Node = (*Keyword)(nil)

func (n *Keyword) Span() Span {
	return Span{
		start: n.start,
		len:   uint32(len(n.raw)),
	}
}

func (n *Keyword) Get() string {
	return n.raw
}

type Ident struct {
	leafNode
	raw   string
	start uint32
}

var _ Node = (*Ident)(nil)

func (n *Ident) Span() Span {
	return Span{
		start: n.start,
		len:   uint32(len(n.raw)),
	}
}

func (n *Ident) Get() string {
	return n.raw
}

// RawText is an uninterpreted run of source text: an enum entry value,
// an array size, or the body of a custom block.
type RawText struct {
	leafNode
	raw   string
	start uint32
}

var _ Node = (*RawText)(nil)

func (n *RawText) Span() Span {
	return Span{
		start: n.start,
		len:   uint32(len(n.raw)),
	}
}

// Raw returns the text exactly as written.
func (n *RawText) Raw() string {
	return n.raw
}

// Get returns the text with surrounding whitespace removed.
func (n *RawText) Get() string {
	return strings.TrimSpace(n.raw)
}

type Document struct {
	span       Span
	childNodes []Node
	decls      []Decl
}

var _ Node = (*Document)(nil)

func (n *Document) Span() Span {
	return n.span
}

func (n *Document) ChildNodes() iter.Seq[Node] {
	return iterChildren(n.childNodes)
}

func (n *Document) privChildren() []Node {
	return n.childNodes
}

// Decls returns the top-level declarations in source order.
func (n *Document) Decls() []Decl {
	return n.decls
}

// Decl is a top-level declaration: one of *Struct, *Enum, or *CustomBlock.
type Decl interface {
	Node
	isDecl()
}

type Enum struct {
	span       Span
	childNodes []Node
	name       *Ident
	entries    []*EnumEntry
}

var _ Decl = (*Enum)(nil)

func (*Enum) isDecl() {}

func (n *Enum) Span() Span {
	return n.span
}

func (n *Enum) ChildNodes() iter.Seq[Node] {
	return iterChildren(n.childNodes)
}

func (n *Enum) privChildren() []Node {
	return n.childNodes
}

// Name returns nil for an anonymous enum.
func (n *Enum) Name() *Ident {
	return n.name
}

func (n *Enum) Entries() []*EnumEntry {
	return n.entries
}

type EnumEntry struct {
	span       Span
	childNodes []Node
	name       *Ident
	value      *RawText
}

var _ Node = (*EnumEntry)(nil)

func (n *EnumEntry) Span() Span {
	return n.span
}

func (n *EnumEntry) ChildNodes() iter.Seq[Node] {
	return iterChildren(n.childNodes)
}

func (n *EnumEntry) privChildren() []Node {
	return n.childNodes
}

func (n *EnumEntry) Name() *Ident {
	return n.name
}

// Value returns nil if the entry has no explicit assignment.
func (n *EnumEntry) Value() *RawText {
	return n.value
}

type StructKind uint8

const (
	StructKind_STRUCT StructKind = iota
	StructKind_MESSAGE
)

func (k StructKind) String() string {
	if k == StructKind_MESSAGE {
		return "msg"
	}
	return "struct"
}

type Struct struct {
	span       Span
	childNodes []Node
	kind       StructKind
	name       *Ident
	enums      []*Enum
	members    []*Member
}

var _ Decl = (*Struct)(nil)

func (*Struct) isDecl() {}

func (n *Struct) Span() Span {
	return n.span
}

func (n *Struct) ChildNodes() iter.Seq[Node] {
	return iterChildren(n.childNodes)
}

func (n *Struct) privChildren() []Node {
	return n.childNodes
}

func (n *Struct) Kind() StructKind {
	return n.kind
}

func (n *Struct) Name() *Ident {
	return n.name
}

func (n *Struct) Enums() []*Enum {
	return n.enums
}

func (n *Struct) Members() []*Member {
	return n.members
}

type Member struct {
	span       Span
	childNodes []Node
	typeName   *Ident
	name       *Ident
	isArray    bool
	arraySize  *RawText
}

var _ Node = (*Member)(nil)

func (n *Member) Span() Span {
	return n.span
}

func (n *Member) ChildNodes() iter.Seq[Node] {
	return iterChildren(n.childNodes)
}

func (n *Member) privChildren() []Node {
	return n.childNodes
}

func (n *Member) TypeName() *Ident {
	return n.typeName
}

func (n *Member) Name() *Ident {
	return n.name
}

func (n *Member) IsArray() bool {
	return n.isArray
}

// ArraySize returns nil for scalars and for dynamic arrays ("[]").
func (n *Member) ArraySize() *RawText {
	return n.arraySize
}

type CustomBlock struct {
	span       Span
	childNodes []Node
	content    *RawText
}

var _ Decl = (*CustomBlock)(nil)

func (*CustomBlock) isDecl() {}

func (n *CustomBlock) Span() Span {
	return n.span
}

func (n *CustomBlock) ChildNodes() iter.Seq[Node] {
	return iterChildren(n.childNodes)
}

func (n *CustomBlock) privChildren() []Node {
	return n.childNodes
}

// Content returns everything between the outer braces.
func (n *CustomBlock) Content() *RawText {
	return n.content
}
