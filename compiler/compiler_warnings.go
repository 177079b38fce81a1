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

type Warning struct {
	code    uint32
	message string
	span    syntax.Span
}

func (w *Warning) String() string {
	return fmt.Sprintf("W%d: %s", w.code, w.message)
}

func (w *Warning) Code() uint32 {
	return w.code
}

func (w *Warning) Message() string {
	return w.message
}

func (w *Warning) Span() syntax.Span {
	return w.span
}

func warnEnumNameConflict(name string, span syntax.Span) *Warning {
	return &Warning{
		code:    4000,
		message: fmt.Sprintf("Enum name '%s' conflicts with another declaration", name),
		span:    span,
	}
}

func warnStructShadowsBuiltin(name string, span syntax.Span) *Warning {
	return &Warning{
		code:    4001,
		message: fmt.Sprintf("Struct '%s' shadows builtin (members of this type use the builtin)", name),
		span:    span,
	}
}

func warnDuplicateMember(structName, name string, span syntax.Span) *Warning {
	return &Warning{
		code:    4002,
		message: fmt.Sprintf("Duplicate member '%s' in '%s'", name, structName),
		span:    span,
	}
}

func warnForwardEmbed(memberName, typeName string, span syntax.Span) *Warning {
	return &Warning{
		code: 4003,
		message: fmt.Sprintf(
			"Member '%s' embeds '%s' before its declaration",
			memberName, typeName,
		),
		span: span,
	}
}

func warnEmptyStruct(name string, span syntax.Span) *Warning {
	return &Warning{
		code:    4004,
		message: fmt.Sprintf("Struct '%s' has no members", name),
		span:    span,
	}
}

func warnDuplicateEnumEntry(name string, span syntax.Span) *Warning {
	return &Warning{
		code:    4005,
		message: fmt.Sprintf("Duplicate enum entry '%s'", name),
		span:    span,
	}
}
