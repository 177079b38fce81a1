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
	"bytes"
	"unicode/utf8"
)

// StripComments removes every `//` line comment. Line breaks are kept, so
// line numbers and the columns of all remaining text are unchanged.
//
// Comment markers are not recognized specially inside custom blocks; a
// `//` there is removed like any other.
func StripComments(src []uint8) []uint8 {
	if bytes.Index(src, []uint8("//")) < 0 {
		return src
	}
	out := make([]uint8, 0, len(src))
	for len(src) > 0 {
		line := src
		rest := []uint8(nil)
		if idx := bytes.IndexByte(src, '\n'); idx >= 0 {
			line = src[:idx]
			rest = src[idx:]
		}
		if idx := bytes.Index(line, []uint8("//")); idx >= 0 {
			comment := line[idx:]
			line = line[:idx]
			if n := len(comment); n > 0 && comment[n-1] == '\r' {
				line = append(line[:len(line):len(line)], '\r')
			}
		}
		out = append(out, line...)
		if rest == nil {
			break
		}
		out = append(out, '\n')
		src = rest[1:]
	}
	return out
}

// Location is a 1-based line and column. Columns count characters,
// not bytes.
type Location struct {
	Line   uint32
	Column uint32
}

// LocationOf converts a byte offset into src into a Location. Offsets past
// the end of src are clamped.
func LocationOf(src []uint8, offset uint32) Location {
	if int(offset) > len(src) {
		offset = uint32(len(src))
	}
	prefix := src[:offset]
	line := uint32(bytes.Count(prefix, []uint8("\n"))) + 1
	if idx := bytes.LastIndexByte(prefix, '\n'); idx >= 0 {
		prefix = prefix[idx+1:]
	}
	return Location{
		Line:   line,
		Column: uint32(utf8.RuneCount(prefix)) + 1,
	}
}
