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
	"errors"
	"math/bits"
	"strconv"
	"strings"

	"go.libucomm.org/ucommc/internal/tsort"
)

// SizeExpr is a symbolic byte count: the sum of the sizes of a struct's
// plain members. Array counts are kept as written, so an expression may
// refer to names that are only known to the C++ compiler.
type SizeExpr struct {
	terms []SizeTerm
}

// String renders the expression as C++, for example "(1) + ((4) * 2)".
// An empty expression renders as "0".
func (e SizeExpr) String() string {
	if len(e.terms) == 0 {
		return "0"
	}
	parts := make([]string, 0, len(e.terms))
	for _, term := range e.terms {
		parts = append(parts, "("+term.String()+")")
	}
	return strings.Join(parts, " + ")
}

// Value folds the expression to a number. It fails if any array count is
// not an integer literal.
func (e SizeExpr) Value() (uint64, bool) {
	var total uint64
	for _, term := range e.terms {
		v, ok := term.Value()
		if !ok {
			return 0, false
		}
		sum, carry := bits.Add64(total, v, 0)
		if carry != 0 {
			return 0, false
		}
		total = sum
	}
	return total, true
}

func (e SizeExpr) IsZero() bool {
	return len(e.terms) == 0
}

func (e SizeExpr) Terms() []SizeTerm {
	return e.terms
}

// SizeTerm is the size of one member: an optional array count times the
// size of either a builtin scalar or a nested struct's packed region.
type SizeTerm struct {
	count    string
	elemSize uint32
	elem     *SizeExpr
}

func (t SizeTerm) String() string {
	var elem string
	if t.elem != nil {
		elem = "(" + t.elem.String() + ")"
	} else {
		elem = strconv.FormatUint(uint64(t.elemSize), 10)
	}
	if t.count == "" {
		return elem
	}
	return "(" + t.count + ") * " + elem
}

func (t SizeTerm) Value() (uint64, bool) {
	var elem uint64
	if t.elem != nil {
		v, ok := t.elem.Value()
		if !ok {
			return 0, false
		}
		elem = v
	} else {
		elem = uint64(t.elemSize)
	}
	if t.count == "" {
		return elem, true
	}
	count, ok := parseCount(t.count)
	if !ok {
		return 0, false
	}
	hi, lo := bits.Mul64(count, elem)
	if hi != 0 {
		return 0, false
	}
	return lo, true
}

// parseCount accepts C integer literals: decimal, 0x hex, 0 octal, and
// 0b binary, with optional unsigned/long suffixes.
func parseCount(count string) (uint64, bool) {
	count = strings.TrimRight(count, "uUlL")
	if count == "" {
		return 0, false
	}
	if len(count) > 1 && count[0] == '0' && count[1] >= '0' && count[1] <= '9' {
		v, err := strconv.ParseUint(count[1:], 8, 64)
		return v, err == nil
	}
	v, err := strconv.ParseUint(count, 0, 64)
	if err != nil || strings.Contains(count, "_") {
		return 0, false
	}
	return v, true
}

func structNodeID(id StructID) string {
	return strconv.FormatUint(uint64(id), 10)
}

// classifyLayouts computes plain-ness and packed sizes. A struct depends on
// every struct it embeds by value, so dependencies are sorted first and
// each struct is classified after everything it embeds.
func (c *compiler) classifyLayouts() {
	nodes := make([]tsort.Node, 0, len(c.schema.structs))
	for _, s := range c.schema.structs {
		var deps []string
		for _, m := range s.members {
			if m.IsDynamic() {
				continue
			}
			if id, ok := m.type_.Struct(); ok {
				deps = append(deps, structNodeID(id))
			}
		}
		nodes = append(nodes, tsort.Node{
			ID:           structNodeID(s.id),
			Dependencies: deps,
		})
	}

	layers, err := tsort.Sort(nodes)
	if err != nil {
		var circular tsort.ErrCircular
		if !errors.As(err, &circular) {
			panic(err)
		}
		for _, s := range c.schema.structs {
			if circular.InCycle(structNodeID(s.id)) {
				c.err(errRecursiveStruct(s.name, s.NameSpan()))
			}
		}
		return
	}

	for _, layer := range layers {
		for _, nodeID := range layer {
			id, _ := strconv.ParseUint(nodeID, 10, 32)
			c.classifyStruct(c.schema.structs[id])
		}
	}
}

func (c *compiler) classifyStruct(s *Struct) {
	isPlain := true
	var terms []SizeTerm
	for _, m := range s.members {
		switch {
		case m.IsDynamic():
			m.isPlain = false
		default:
			if builtin, ok := m.type_.Builtin(); ok {
				m.isPlain = true
				m.size = SizeTerm{
					count:    m.arraySize,
					elemSize: builtin.Size(),
				}
			} else {
				inner := c.schema.structs[m.type_.structID]
				m.isPlain = inner.isPlain
				m.size = SizeTerm{
					count: m.arraySize,
					elem:  &inner.packedSize,
				}
			}
		}
		if m.isPlain {
			terms = append(terms, m.size)
		} else {
			isPlain = false
		}
	}
	s.isPlain = isPlain
	s.packedSize = SizeExpr{terms: terms}

	for ii := len(s.members) - 1; ii >= 0; ii-- {
		if !s.members[ii].isPlain {
			s.members[ii].isLast = true
			break
		}
	}
}
