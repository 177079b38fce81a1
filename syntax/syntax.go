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

type ParseOption interface {
	apply(*ParseOptions)
}

type parseOption func(*ParseOptions)

func (f parseOption) apply(opts *ParseOptions) { f(opts) }

// WithCommentStripping controls whether `//` line comments are removed
// before parsing. It is enabled by default.
func WithCommentStripping(strip bool) ParseOption {
	return parseOption(func(opts *ParseOptions) {
		opts.stripComments = strip
	})
}

func Parse(src []uint8, opts ...ParseOption) (*Document, error) {
	return NewParseOptions(opts...).ParseDocument(src)
}

type ParseOptions struct {
	stripComments bool
}

func NewParseOptions(opts ...ParseOption) *ParseOptions {
	parseOptions := &ParseOptions{
		stripComments: true,
	}
	for _, opt := range opts {
		opt.apply(parseOptions)
	}
	return parseOptions
}

func (opts *ParseOptions) prepare(src []uint8) []uint8 {
	if opts.stripComments {
		return StripComments(src)
	}
	return src
}

func (opts *ParseOptions) ParseDocument(src []uint8) (*Document, error) {
	ctx, err := newParseCtx[Document](opts, opts.prepare(src))
	if err != nil {
		return nil, err
	}
	return parseDocument(ctx)
}

func (opts *ParseOptions) ParseStruct(src []uint8) (*Struct, error) {
	ctx, err := newParseCtx[Struct](opts, opts.prepare(src))
	if err != nil {
		return nil, err
	}
	return parseStruct(ctx)
}

func (opts *ParseOptions) ParseEnum(src []uint8) (*Enum, error) {
	ctx, err := newParseCtx[Enum](opts, opts.prepare(src))
	if err != nil {
		return nil, err
	}
	return parseEnum(ctx)
}

func (opts *ParseOptions) ParseCustomBlock(src []uint8) (*CustomBlock, error) {
	ctx, err := newParseCtx[CustomBlock](opts, opts.prepare(src))
	if err != nil {
		return nil, err
	}
	return parseCustomBlock(ctx)
}

type parseCtx[T any] struct {
	src        []uint8
	opts       *ParseOptions
	tokens     *Tokens
	childNodes []Node
	haveToken  bool
	token      Token
	err        error
	consumed   uint32
	offset     uint32
}

func newParseCtx[T any](opts *ParseOptions, src []uint8) (*parseCtx[T], error) {
	tokens, err := NewTokens(src)
	if err != nil {
		return nil, err
	}
	return &parseCtx[T]{
		src:    src,
		opts:   opts,
		tokens: tokens,
	}, nil
}

func (ctx *parseCtx[T]) ensureToken() error {
	if ctx.err != nil {
		return ctx.err
	}
	if ctx.haveToken {
		return nil
	}
	if err := ctx.tokens.Next(&ctx.token); err != nil {
		ctx.err = err
		return ctx.err
	}
	ctx.haveToken = true
	return nil
}

func (ctx *parseCtx[T]) peek() TokenKind {
	if err := ctx.ensureToken(); err != nil {
		return T_EOF
	}
	return ctx.token.Kind
}

func (ctx *parseCtx[T]) readToken() []uint8 {
	return ctx.src[:ctx.token.Len]
}

func (ctx *parseCtx[T]) consumeToken(child Node) {
	ctx.src = ctx.src[ctx.token.Len:]
	ctx.consumed += uint32(ctx.token.Len)
	ctx.offset += uint32(ctx.token.Len)
	ctx.haveToken = false
	if child != nil {
		ctx.childNodes = append(ctx.childNodes, child)
	}
}

func (ctx *parseCtx[T]) tokenSpan() Span {
	return Span{
		start: ctx.offset,
		len:   uint32(ctx.token.Len),
	}
}

func (ctx *parseCtx[T]) loop(yield func(struct{}) bool) {
	if ctx.err != nil {
		return
	}
	for {
		consumed := ctx.consumed
		if !yield(struct{}{}) {
			return
		}
		if ctx.err != nil {
			return
		}
		if consumed == ctx.consumed {
			return
		}
	}
}

func (ctx *parseCtx[T]) spaces() {
	for _ = range ctx.loop {
		if err := ctx.ensureToken(); err != nil {
			return
		}
		switch ctx.token.Kind {
		case T_SPACE, T_NEWLINE:
			ctx.consumeToken(nil)
		default:
			return
		}
	}
}

func (ctx *parseCtx[T]) sigil(kind TokenKind) {
	if err := ctx.ensureToken(); err != nil {
		return
	}
	if ctx.token.Kind != kind {
		ctx.err = errExpectedSigil(
			kind,
			ctx.token.Kind,
			string(ctx.readToken()),
			ctx.tokenSpan(),
		)
		return
	}
	ctx.consumeToken(&Sigil{
		raw:   ctx.src[0],
		start: ctx.offset,
	})
}

func (ctx *parseCtx[T]) trySigil(kind TokenKind) bool {
	if err := ctx.ensureToken(); err != nil {
		return false
	}
	if ctx.token.Kind != kind {
		return false
	}
	ctx.consumeToken(&Sigil{
		raw:   ctx.src[0],
		start: ctx.offset,
	})
	return true
}

func (ctx *parseCtx[T]) tryKeyword(keyword string) bool {
	if err := ctx.ensureToken(); err != nil {
		return false
	}
	if ctx.token.Kind != T_IDENT {
		return false
	}
	if string(ctx.readToken()) != keyword {
		return false
	}
	ctx.consumeToken(&Keyword{
		raw:   keyword,
		start: ctx.offset,
	})
	return true
}

func (ctx *parseCtx[T]) ident() *Ident {
	if err := ctx.ensureToken(); err != nil {
		return nil
	}
	token := string(ctx.readToken())
	if ctx.token.Kind != T_IDENT {
		ctx.err = errExpectedIdent(ctx.token.Kind, token, ctx.tokenSpan())
		return nil
	}
	ident := &Ident{
		raw:   token,
		start: ctx.offset,
	}
	ctx.consumeToken(ident)
	return ident
}

// raw consumes untokenized source up to (not including) the first byte
// for which stop returns true, or to the end of input.
func (ctx *parseCtx[T]) raw(stop func(c uint8) bool) *RawText {
	if ctx.err != nil {
		return nil
	}
	n := 0
	for n < len(ctx.src) && !stop(ctx.src[n]) {
		n++
	}
	text := &RawText{
		raw:   string(ctx.src[:n]),
		start: ctx.offset,
	}
	ctx.src = ctx.src[n:]
	ctx.consumed += uint32(n)
	ctx.offset += uint32(n)
	ctx.haveToken = false
	ctx.tokens.Seek(ctx.offset)
	if n > 0 {
		ctx.childNodes = append(ctx.childNodes, text)
	}
	return text
}

func (ctx *parseCtx[T]) finish(
	build func(span Span, childNodes []Node) *T,
) (*T, error) {
	if ctx.err != nil {
		return nil, ctx.err
	}
	span := Span{
		start: ctx.offset - ctx.consumed,
		len:   ctx.consumed,
	}
	return build(span, ctx.childNodes), nil
}

func parseChild[P any, C any, PtrC interface {
	*C
	Node
}](
	ctx *parseCtx[P],
	parseChildFn func(*parseCtx[C]) (PtrC, error),
) (*C, bool) {
	if ctx.err != nil {
		return nil, false
	}
	childCtx := &parseCtx[C]{
		src:       ctx.src,
		opts:      ctx.opts,
		tokens:    ctx.tokens,
		haveToken: ctx.haveToken,
		token:     ctx.token,
		offset:    ctx.offset,
	}
	child, err := parseChildFn(childCtx)
	if err != nil {
		ctx.err = err
		return nil, false
	}

	ctx.haveToken = childCtx.haveToken
	ctx.token = childCtx.token

	if childCtx.consumed == 0 {
		return nil, false
	}
	ctx.src = ctx.src[childCtx.consumed:]
	ctx.consumed += childCtx.consumed
	ctx.offset = childCtx.offset
	ctx.childNodes = append(ctx.childNodes, child)
	return child, true
}

func parseDocument(ctx *parseCtx[Document]) (*Document, error) {
	var decls []Decl
	for _ = range ctx.loop {
		ctx.spaces()
		if ctx.peek() == T_EOF {
			break
		}

		var decl Decl
		var ok bool
		{
			var node *Struct
			if node, ok = parseChild(ctx, parseStruct); ok {
				decl = node
			}
		}
		if !ok && ctx.err == nil {
			var node *Enum
			if node, ok = parseChild(ctx, parseEnum); ok {
				decl = node
			}
		}
		if !ok && ctx.err == nil {
			var node *CustomBlock
			if node, ok = parseChild(ctx, parseCustomBlock); ok {
				decl = node
			}
		}
		if ctx.err != nil {
			return nil, ctx.err
		}
		if !ok {
			token := string(ctx.readToken())
			span := ctx.tokenSpan()
			if ctx.token.Kind == T_IDENT {
				return nil, errUnknownDeclaration(token, span)
			}
			return nil, errExpectedDeclaration(ctx.token.Kind, token, span)
		}
		decls = append(decls, decl)
	}

	return ctx.finish(func(span Span, childNodes []Node) *Document {
		return &Document{
			span:       span,
			childNodes: childNodes,
			decls:      decls,
		}
	})
}

func parseEnum(ctx *parseCtx[Enum]) (*Enum, error) {
	if !ctx.tryKeyword("enum") {
		return nil, nil
	}
	ctx.spaces()

	var name *Ident
	if ctx.peek() == T_IDENT {
		name = ctx.ident()
		ctx.spaces()
	}

	var entries []*EnumEntry
	ctx.sigil(T_OPEN_CURL)
	for _ = range ctx.loop {
		ctx.spaces()
		if ctx.trySigil(T_CLOSE_CURL) {
			break
		}
		if entry, ok := parseChild(ctx, parseEnumEntry); ok {
			entries = append(entries, entry)
		}
		ctx.spaces()
		if !ctx.trySigil(T_COMMA) {
			ctx.sigil(T_CLOSE_CURL)
			break
		}
	}
	ctx.spaces()
	ctx.sigil(T_SEMICOLON)

	return ctx.finish(func(span Span, childNodes []Node) *Enum {
		return &Enum{
			span:       span,
			childNodes: childNodes,
			name:       name,
			entries:    entries,
		}
	})
}

func parseEnumEntry(ctx *parseCtx[EnumEntry]) (*EnumEntry, error) {
	name := ctx.ident()
	ctx.spaces()

	var value *RawText
	if ctx.peek() == T_EQ {
		eqSpan := ctx.tokenSpan()
		ctx.sigil(T_EQ)
		value = ctx.raw(func(c uint8) bool {
			return c == ',' || c == '}'
		})
		if value != nil && value.Get() == "" {
			return nil, errEnumValueEmpty(name.Get(), eqSpan)
		}
	}

	return ctx.finish(func(span Span, childNodes []Node) *EnumEntry {
		return &EnumEntry{
			span:       span,
			childNodes: childNodes,
			name:       name,
			value:      value,
		}
	})
}

func parseStruct(ctx *parseCtx[Struct]) (*Struct, error) {
	var kind StructKind
	if ctx.tryKeyword("struct") {
		kind = StructKind_STRUCT
	} else if ctx.tryKeyword("msg") {
		kind = StructKind_MESSAGE
	} else {
		return nil, nil
	}
	ctx.spaces()
	name := ctx.ident()
	ctx.spaces()

	var enums []*Enum
	var members []*Member
	ctx.sigil(T_OPEN_CURL)
	for _ = range ctx.loop {
		ctx.spaces()
		if ctx.trySigil(T_CLOSE_CURL) {
			break
		}
		if enum, ok := parseChild(ctx, parseEnum); ok {
			if len(members) > 0 {
				ctx.err = errEnumAfterMember(name.Get(), enum.Span())
				break
			}
			enums = append(enums, enum)
			continue
		}
		if member, ok := parseChild(ctx, parseMember); ok {
			members = append(members, member)
		}
	}
	ctx.spaces()
	ctx.sigil(T_SEMICOLON)

	return ctx.finish(func(span Span, childNodes []Node) *Struct {
		return &Struct{
			span:       span,
			childNodes: childNodes,
			kind:       kind,
			name:       name,
			enums:      enums,
			members:    members,
		}
	})
}

func parseMember(ctx *parseCtx[Member]) (*Member, error) {
	typeName := ctx.ident()
	ctx.spaces()
	name := ctx.ident()
	ctx.spaces()

	isArray := false
	var arraySize *RawText
	if ctx.trySigil(T_OPEN_SQUARE) {
		isArray = true
		size := ctx.raw(func(c uint8) bool {
			return c == ']' || c == ';' || c == '{' || c == '}'
		})
		if size != nil && size.Get() != "" {
			arraySize = size
		}
		ctx.sigil(T_CLOSE_SQUARE)
		ctx.spaces()
	}
	ctx.sigil(T_SEMICOLON)

	return ctx.finish(func(span Span, childNodes []Node) *Member {
		return &Member{
			span:       span,
			childNodes: childNodes,
			typeName:   typeName,
			name:       name,
			isArray:    isArray,
			arraySize:  arraySize,
		}
	})
}

func parseCustomBlock(ctx *parseCtx[CustomBlock]) (*CustomBlock, error) {
	if !ctx.tryKeyword("custom") {
		return nil, nil
	}
	ctx.spaces()

	openStart := ctx.offset
	ctx.sigil(T_OPEN_CURL)
	depth := 0
	content := ctx.raw(func(c uint8) bool {
		switch c {
		case '{':
			depth += 1
		case '}':
			if depth == 0 {
				return true
			}
			depth -= 1
		}
		return false
	})
	if ctx.err == nil && len(ctx.src) == 0 {
		return nil, errCustomBlockUnterminated(openStart, ctx.offset-openStart)
	}
	ctx.sigil(T_CLOSE_CURL)

	return ctx.finish(func(span Span, childNodes []Node) *CustomBlock {
		return &CustomBlock{
			span:       span,
			childNodes: childNodes,
			content:    content,
		}
	})
}
