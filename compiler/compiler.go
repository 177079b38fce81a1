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
	"cmp"
	"slices"

	"go.libucomm.org/ucommc/syntax"
)

type CompileOption interface {
	apply(*CompileOptions)
}

type compileOption func(*CompileOptions)

func (f compileOption) apply(opts *CompileOptions) { f(opts) }

type CompileOptions struct {
	sourcePath string
}

// WithSourcePath records the path of the compiled file in the schema.
func WithSourcePath(sourcePath string) CompileOption {
	return compileOption(func(opts *CompileOptions) {
		opts.sourcePath = sourcePath
	})
}

type CompileResult struct {
	schema *Schema

	Errors   []*Error
	Warnings []*Warning
}

// Schema returns nil if compilation failed.
func (r *CompileResult) Schema() *Schema {
	return r.schema
}

// Err returns the compile errors as an Errors value, or nil.
func (r *CompileResult) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return Errors(r.Errors)
}

func Compile(doc *syntax.Document, opts ...CompileOption) CompileResult {
	return NewCompileOptions(opts...).Compile(doc)
}

func NewCompileOptions(opts ...CompileOption) *CompileOptions {
	compileOptions := &CompileOptions{}
	for _, opt := range opts {
		opt.apply(compileOptions)
	}
	return compileOptions
}

func (opts *CompileOptions) Compile(doc *syntax.Document) CompileResult {
	c := compiler{
		opts: opts,
		schema: &Schema{
			sourcePath: opts.sourcePath,
			byName:     make(map[string]*Struct),
		},
	}
	c.compileDocument(doc)

	sortBySpan(c.errors, (*Error).Span, (*Error).Code)
	sortBySpan(c.warnings, (*Warning).Span, (*Warning).Code)
	if len(c.errors) > 0 {
		return CompileResult{
			Errors:   c.errors,
			Warnings: c.warnings,
		}
	}
	return CompileResult{
		schema:   c.schema,
		Warnings: c.warnings,
	}
}

func sortBySpan[T any](items []T, span func(T) syntax.Span, code func(T) uint32) {
	slices.SortStableFunc(items, func(a, b T) int {
		aSpan, bSpan := span(a), span(b)
		if x := cmp.Compare(aSpan.Start(), bSpan.Start()); x != 0 {
			return x
		}
		return cmp.Compare(code(a), code(b))
	})
}

type compiler struct {
	opts     *CompileOptions
	schema   *Schema
	errors   []*Error
	warnings []*Warning
}

func (c *compiler) err(err error) {
	c.errors = append(c.errors, err.(*Error))
}

func (c *compiler) warn(warning *Warning) {
	c.warnings = append(c.warnings, warning)
}

func (c *compiler) compileDocument(doc *syntax.Document) {
	c.collectDecls(doc)
	c.registerStructs()
	c.checkEnums()
	c.resolveMembers()
	if len(c.errors) > 0 {
		return
	}
	c.classifyLayouts()
	if len(c.errors) > 0 {
		return
	}
	c.assignMessageIDs()
}

func (c *compiler) collectDecls(doc *syntax.Document) {
	for _, decl := range doc.Decls() {
		switch node := decl.(type) {
		case *syntax.Struct:
			s := c.collectStruct(node)
			c.schema.structs = append(c.schema.structs, s)
			c.schema.decls = append(c.schema.decls, s)
		case *syntax.Enum:
			e := collectEnum(node)
			c.schema.enums = append(c.schema.enums, e)
			c.schema.decls = append(c.schema.decls, e)
		case *syntax.CustomBlock:
			b := &CustomBlock{
				node:    node,
				content: node.Content().Raw(),
			}
			c.schema.customBlocks = append(c.schema.customBlocks, b)
			c.schema.decls = append(c.schema.decls, b)
		}
	}
}

func (c *compiler) collectStruct(node *syntax.Struct) *Struct {
	s := &Struct{
		id:   StructID(len(c.schema.structs)),
		kind: node.Kind(),
		name: node.Name().Get(),
		node: node,
	}
	for _, enumNode := range node.Enums() {
		s.enums = append(s.enums, collectEnum(enumNode))
	}
	for _, memberNode := range node.Members() {
		m := &Member{
			name:     memberNode.Name().Get(),
			typeName: memberNode.TypeName().Get(),
			isArray:  memberNode.IsArray(),
			node:     memberNode,
		}
		if size := memberNode.ArraySize(); size != nil {
			m.arraySize = size.Get()
		}
		s.members = append(s.members, m)
	}
	if len(s.members) == 0 {
		c.warn(warnEmptyStruct(s.name, s.NameSpan()))
	}
	return s
}

func collectEnum(node *syntax.Enum) *Enum {
	e := &Enum{node: node}
	if name := node.Name(); name != nil {
		e.name = name.Get()
	}
	for _, entryNode := range node.Entries() {
		entry := &EnumEntry{
			name: entryNode.Name().Get(),
		}
		if value := entryNode.Value(); value != nil {
			entry.value = value.Get()
			entry.hasValue = true
		}
		e.entries = append(e.entries, entry)
	}
	return e
}

// registerStructs enters every struct into the symbol table. Later
// definitions of a name are errors; the first definition is kept.
func (c *compiler) registerStructs() {
	for _, s := range c.schema.structs {
		if _, conflict := c.schema.byName[s.name]; conflict {
			c.err(errDuplicateDefinition(s.name, s.NameSpan()))
			continue
		}
		c.schema.byName[s.name] = s
		if _, isBuiltin := LookupBuiltin(s.name); isBuiltin {
			c.warn(warnStructShadowsBuiltin(s.name, s.NameSpan()))
		}
	}
}

func (c *compiler) checkEnums() {
	enumNames := make(map[string]struct{})
	for _, e := range c.schema.enums {
		c.checkEnumEntries(e)
		if e.name == "" {
			continue
		}
		_, dupEnum := enumNames[e.name]
		_, dupStruct := c.schema.byName[e.name]
		if dupEnum || dupStruct {
			c.warn(warnEnumNameConflict(e.name, e.node.Name().Span()))
		}
		enumNames[e.name] = struct{}{}
	}
	for _, s := range c.schema.structs {
		for _, e := range s.enums {
			c.checkEnumEntries(e)
		}
	}
}

func (c *compiler) checkEnumEntries(e *Enum) {
	seen := make(map[string]struct{}, len(e.entries))
	for ii, entry := range e.entries {
		if _, dup := seen[entry.name]; dup {
			span := e.node.Entries()[ii].Name().Span()
			c.warn(warnDuplicateEnumEntry(entry.name, span))
		}
		seen[entry.name] = struct{}{}
	}
}

// resolveMembers binds every member's type name to a builtin or to a
// registered struct. Forward references are allowed.
func (c *compiler) resolveMembers() {
	for _, s := range c.schema.structs {
		seen := make(map[string]struct{}, len(s.members))
		for _, m := range s.members {
			if _, dup := seen[m.name]; dup {
				c.warn(warnDuplicateMember(s.name, m.name, m.node.Name().Span()))
			}
			seen[m.name] = struct{}{}
			c.resolveMember(s, m)
		}
	}
}

func (c *compiler) resolveMember(s *Struct, m *Member) {
	typeSpan := m.node.TypeName().Span()
	if builtin, ok := LookupBuiltin(m.typeName); ok {
		m.type_ = builtinRef(builtin)
		return
	}
	target, ok := c.schema.byName[m.typeName]
	if !ok {
		c.err(errUnknownType(m.typeName, typeSpan))
		return
	}
	m.type_ = structRef(target.id)
	if target.id > s.id && !m.IsDynamic() {
		c.warn(warnForwardEmbed(m.name, target.name, typeSpan))
	}
}

// assignMessageIDs numbers message structs densely from zero in document
// order. Other structs never receive an ID.
func (c *compiler) assignMessageIDs() {
	var next uint32
	for _, s := range c.schema.structs {
		if !s.IsMessage() {
			continue
		}
		s.messageID = next
		s.hasMessageID = true
		next += 1
	}
}
