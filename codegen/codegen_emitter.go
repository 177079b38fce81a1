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

package codegen

import (
	"fmt"
	"io"
	"strings"
)

// item is one node of the output tree. Blocks own their braces, so any
// rendered tree has balanced braces.
type item interface {
	render(r *renderer)
}

type line string

func linef(format string, a ...any) line {
	return line(fmt.Sprintf(format, a...))
}

func (l line) render(r *renderer) {
	r.line(string(l))
}

type blank struct{}

func (blank) render(r *renderer) {
	r.blank()
}

// verbatim text is written without indentation. Leading blank lines and
// trailing whitespace are dropped. Text that starts on the same line as
// its opening brace loses that line's leading whitespace.
type verbatim string

func (v verbatim) render(r *renderer) {
	lines := strings.Split(strings.TrimRight(string(v), " \t\r\n"), "\n")
	if len(lines) > 0 && strings.TrimSpace(lines[0]) != "" {
		lines[0] = strings.TrimLeft(lines[0], " \t")
	}
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for _, l := range lines {
		r.raw(strings.TrimRight(l, "\r"))
	}
}

// block renders as:
//
//	open
//	{
//		body...
//	close
//
// A flat block does not indent its body.
type block struct {
	open  string
	body  []item
	close string
	flat  bool
}

func (b *block) add(items ...item) {
	b.body = append(b.body, items...)
}

func (b *block) render(r *renderer) {
	r.line(b.open)
	r.line("{")
	if !b.flat {
		r.indent += 1
	}
	for _, child := range b.body {
		child.render(r)
	}
	if !b.flat {
		r.indent -= 1
	}
	r.line(b.close)
}

type renderer struct {
	w         io.Writer
	indent    int
	err       error
	lastBlank bool
}

func render(w io.Writer, items []item) error {
	r := &renderer{w: w}
	for _, it := range items {
		it.render(r)
	}
	return r.err
}

func (r *renderer) write(s string) {
	if r.err != nil {
		return
	}
	if _, err := io.WriteString(r.w, s); err != nil {
		r.err = err
	}
}

func (r *renderer) line(s string) {
	if indent := strings.Repeat("\t", r.indent); indent != "" {
		r.write(indent)
	}
	r.write(s)
	r.write("\n")
	r.lastBlank = false
}

func (r *renderer) raw(s string) {
	r.write(s)
	r.write("\n")
	r.lastBlank = s == ""
}

// Consecutive blank lines are collapsed.
func (r *renderer) blank() {
	if r.lastBlank {
		return
	}
	r.write("\n")
	r.lastBlank = true
}
