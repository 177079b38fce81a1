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

// Package schemajson converts a compiled schema to and from JSON. It is
// the schema format passed to codegen plugins.
package schemajson

import (
	"bytes"
	"encoding/json"
	"strings"

	"go.libucomm.org/ucommc/compiler"
)

type Schema struct {
	SourcePath   string   `json:"source_path,omitempty"`
	CustomBlocks []string `json:"custom_blocks"`
	Enums        []Enum   `json:"enums"`
	Structs      []Struct `json:"structs"`
}

type Enum struct {
	Name    string      `json:"name,omitempty"`
	Entries []EnumEntry `json:"entries"`
}

type EnumEntry struct {
	Name  string  `json:"name"`
	Value *string `json:"value,omitempty"`
}

type Struct struct {
	Name            string   `json:"name"`
	Kind            string   `json:"kind"`
	Plain           bool     `json:"plain"`
	PackedSize      string   `json:"packed_size"`
	PackedSizeValue *uint64  `json:"packed_size_value,omitempty"`
	MessageID       *uint32  `json:"message_id,omitempty"`
	Enums           []Enum   `json:"enums,omitempty"`
	Members         []Member `json:"members"`
}

type Member struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Builtin   bool   `json:"builtin,omitempty"`
	Array     bool   `json:"array,omitempty"`
	ArraySize string `json:"array_size,omitempty"`
	Dynamic   bool   `json:"dynamic,omitempty"`
	Plain     bool   `json:"plain"`
	Size      string `json:"size,omitempty"`
	Last      bool   `json:"last,omitempty"`
}

// FromSchema copies a compiled schema into its JSON form. Member types
// are resolved names: a struct that shadows a builtin is never named.
func FromSchema(schema *compiler.Schema) *Schema {
	out := &Schema{
		SourcePath:   schema.SourcePath(),
		CustomBlocks: []string{},
		Enums:        []Enum{},
		Structs:      []Struct{},
	}
	for _, block := range schema.CustomBlocks() {
		out.CustomBlocks = append(out.CustomBlocks, strings.TrimSpace(block.Content()))
	}
	for _, enum := range schema.Enums() {
		out.Enums = append(out.Enums, fromEnum(enum))
	}
	for _, s := range schema.Structs() {
		out.Structs = append(out.Structs, fromStruct(schema, s))
	}
	return out
}

func fromEnum(enum *compiler.Enum) Enum {
	out := Enum{
		Name:    enum.Name(),
		Entries: []EnumEntry{},
	}
	for _, entry := range enum.Entries() {
		e := EnumEntry{Name: entry.Name()}
		if value, ok := entry.Value(); ok {
			e.Value = &value
		}
		out.Entries = append(out.Entries, e)
	}
	return out
}

func fromStruct(schema *compiler.Schema, s *compiler.Struct) Struct {
	packedSize := s.PackedSize()
	out := Struct{
		Name:       s.Name(),
		Kind:       s.Kind().String(),
		Plain:      s.IsPlain(),
		PackedSize: packedSize.String(),
		Members:    []Member{},
	}
	if value, ok := packedSize.Value(); ok {
		out.PackedSizeValue = &value
	}
	if id, ok := s.MessageID(); ok {
		out.MessageID = &id
	}
	for _, enum := range s.Enums() {
		out.Enums = append(out.Enums, fromEnum(enum))
	}
	for _, m := range s.Members() {
		member := Member{
			Name:      m.Name(),
			Array:     m.IsArray(),
			ArraySize: m.ArraySize(),
			Dynamic:   m.IsDynamic(),
			Plain:     m.IsPlain(),
			Last:      m.IsLast(),
		}
		if builtin, ok := m.Type().Builtin(); ok {
			member.Type = builtin.String()
			member.Builtin = true
		} else {
			id, _ := m.Type().Struct()
			member.Type = schema.Struct(id).Name()
		}
		if m.IsPlain() {
			member.Size = m.Size().String()
		}
		out.Members = append(out.Members, member)
	}
	return out
}

func Encode(schema *compiler.Schema) ([]byte, error) {
	return json.Marshal(FromSchema(schema))
}

// Equal reports whether two schemas have the same JSON encoding. A schema
// compares equal to its own Encode/Decode round trip.
func (s *Schema) Equal(other *Schema) bool {
	if s == nil || other == nil {
		return s == other
	}
	a, errA := json.Marshal(s)
	b, errB := json.Marshal(other)
	return errA == nil && errB == nil && bytes.Equal(a, b)
}

// Decode parses a JSON schema. Unknown fields are rejected.
func Decode(buf []byte) (*Schema, error) {
	decoder := json.NewDecoder(bytes.NewReader(buf))
	decoder.DisallowUnknownFields()
	var schema Schema
	if err := decoder.Decode(&schema); err != nil {
		return nil, err
	}
	return &schema, nil
}
