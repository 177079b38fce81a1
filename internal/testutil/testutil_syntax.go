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

package testutil

import (
	"fmt"
	"strconv"
	"strings"

	"go.libucomm.org/ucommc/syntax"
)

// DumpTree renders a syntax tree one node per line, children indented by
// four spaces. Leaf nodes show their value; spans are omitted.
func DumpTree(node syntax.Node) string {
	var buf strings.Builder
	dumpTree(&buf, node, 0)
	return buf.String()
}

func nodeName(node syntax.Node) string {
	ty := fmt.Sprintf("%T", node)
	var nameBuf strings.Builder
	for ii, c := range strings.TrimPrefix(ty, "*syntax.") {
		if c >= 'A' && c <= 'Z' {
			if ii > 0 {
				nameBuf.WriteRune('-')
			}
			nameBuf.WriteRune(c + ('a' - 'A'))
		} else {
			nameBuf.WriteRune(c)
		}
	}
	return nameBuf.String()
}

func dumpTree(buf *strings.Builder, node syntax.Node, indent int) {
	buf.WriteString(strings.Repeat("    ", indent))
	buf.WriteString(nodeName(node))

	switch node := node.(type) {
	case *syntax.Sigil:
		buf.WriteString(" ")
		buf.WriteString(strconv.Quote(string(rune(node.Get()))))
	case *syntax.Keyword:
		buf.WriteString(" ")
		buf.WriteString(node.Get())
	case *syntax.Ident:
		buf.WriteString(" ")
		buf.WriteString(node.Get())
	case *syntax.RawText:
		buf.WriteString(" ")
		buf.WriteString(strconv.Quote(node.Raw()))
	case *syntax.Struct:
		buf.WriteString(" ")
		buf.WriteString(node.Kind().String())
	}
	buf.WriteString("\n")

	for child := range node.ChildNodes() {
		dumpTree(buf, child, indent+1)
	}
}
