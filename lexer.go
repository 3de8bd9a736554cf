package dndice

import (
	"errors"

	"github.com/alecthomas/participle/v2/lexer"
)

// tokenKind 是词法单元的种类
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokInt
	tokDice
	tokModifier
	tokCmp
	tokOp
	tokLParen
	tokRParen
)

// token 是解析器使用的词法单元
type token struct {
	kind tokenKind
	text string
	// pos 在输入中的字节偏移
	pos int
}

// 规则按顺序尝试，XO、KL 必须排在 X、K 之前
var diceLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Modifier", Pattern: `XO|X|KL|K|R|CS`},
	{Name: "Dice", Pattern: `D`},
	{Name: "Cmp", Pattern: `[<=>]`},
	{Name: "Op", Pattern: `[-+*/]`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var (
	symbolKinds map[lexer.TokenType]tokenKind
	whitespace  lexer.TokenType
)

func init() {
	syms := diceLexer.Symbols()
	symbolKinds = map[lexer.TokenType]tokenKind{
		syms["Int"]:      tokInt,
		syms["Modifier"]: tokModifier,
		syms["Dice"]:     tokDice,
		syms["Cmp"]:      tokCmp,
		syms["Op"]:       tokOp,
		syms["LParen"]:   tokLParen,
		syms["RParen"]:   tokRParen,
	}
	whitespace = syms["Whitespace"]
}

// tokenize 把已转为大写的表达式切分为词法单元，最后一个总是 tokEOF
func tokenize(s string) ([]token, error) {
	lex, err := diceLexer.LexString("", s)
	if err != nil {
		return nil, lexError(s, err)
	}
	raw, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, lexError(s, err)
	}

	toks := make([]token, 0, len(raw))
	for _, t := range raw {
		if t.EOF() {
			toks = append(toks, token{kind: tokEOF, pos: t.Pos.Offset})
			break
		}
		if t.Type == whitespace {
			continue
		}
		kind, ok := symbolKinds[t.Type]
		if !ok {
			return nil, newParseError(ErrMalformedExpression, t.Value, "unexpected token")
		}
		toks = append(toks, token{kind: kind, text: t.Value, pos: t.Pos.Offset})
	}
	if len(toks) == 0 || toks[len(toks)-1].kind != tokEOF {
		toks = append(toks, token{kind: tokEOF, pos: len(s)})
	}
	return toks, nil
}

func lexError(s string, err error) error {
	fragment := ""
	var perr *lexer.Error
	if errors.As(err, &perr) {
		off := perr.Pos.Offset
		if off >= 0 && off < len(s) {
			fragment = s[off:]
		}
	}
	return &ParseError{
		Kind:     ErrMalformedExpression,
		Msg:      "unrecognized input",
		Fragment: fragment,
	}
}
