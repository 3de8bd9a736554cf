package dndice

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Parse 使用 DefaultLimits 解析表达式
//
// 输入应当先经过 Preprocess。返回的错误总是 *ParseError。
func Parse(text string) (Expression, error) {
	return ParseWithLimits(text, DefaultLimits)
}

// ParseWithLimits 使用指定的上限解析表达式
func ParseWithLimits(text string, limits Limits) (Expression, error) {
	expr, err := parse(text, limits)
	if err != nil {
		getLogger().Debug("parse roll expression failed", zap.String("text", text), zap.Error(err))
		return nil, err
	}
	return expr, nil
}

// IsValid 判断表达式能否被成功解析
func IsValid(text string) bool {
	_, err := parse(text, DefaultLimits)
	return err == nil
}

// MustParse 解析表达式，失败时 panic，适合用于包级变量
func MustParse(text string) Expression {
	expr, err := Parse(text)
	if err != nil {
		panic("dndice: MustParse(" + strconv.Quote(text) + "): " + err.Error())
	}
	return expr
}

func parse(text string, limits Limits) (Expression, error) {
	src := strings.ToUpper(text)
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, toks: toks, limits: limits}
	if p.peek().kind == tokEOF {
		return nil, newParseError(ErrEmptyExpression, "", "expression is empty")
	}

	expr, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	switch t := p.peek(); t.kind {
	case tokEOF:
		return expr, nil
	case tokRParen:
		return nil, newParseError(ErrUnbalancedParentheses, p.rest(), "unexpected ')'")
	default:
		return nil, newParseError(ErrMalformedExpression, p.rest(), "unexpected %q", t.text)
	}
}

// parser 是递归下降解析器
//
//	Expr    := ['+'|'-'] Product (('+'|'-') Product)*
//	Product := Factor (('*'|'/') Factor)*
//	Factor  := Int | [Int] 'D' [Int] Modifier* | '(' Expr ')'
type parser struct {
	src    string
	toks   []token
	i      int
	limits Limits
}

func (p *parser) peek() token {
	return p.toks[p.i]
}

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

// rest 返回当前位置之后的原始文本，用于错误提示
func (p *parser) rest() string {
	pos := p.peek().pos
	if pos < 0 || pos > len(p.src) {
		return ""
	}
	return p.src[pos:]
}

// operandFollows 判断运算符之后是否还有操作数
func (p *parser) operandFollows() error {
	switch p.peek().kind {
	case tokEOF, tokRParen:
		return newParseError(ErrDanglingConnector, p.rest(), "connector is not followed by an operand")
	}
	return nil
}

func (p *parser) parseExpr(depth int) (Expression, error) {
	if depth > p.limits.ParseRecursionMax {
		return nil, newParseError(ErrRecursionLimitExceeded, p.rest(), "parentheses nested deeper than %d", p.limits.ParseRecursionMax)
	}

	negate := false
	if t := p.peek(); t.kind == tokOp && (t.text == "+" || t.text == "-") {
		p.next()
		negate = t.text == "-"
		if err := p.operandFollows(); err != nil {
			return nil, err
		}
	}

	first, err := p.parseProduct(depth, negate)
	if err != nil {
		return nil, err
	}
	terms := []Term{{Conn: Add, Expr: first}}

	for {
		t := p.peek()
		if t.kind != tokOp || (t.text != "+" && t.text != "-") {
			break
		}
		p.next()
		if err := p.operandFollows(); err != nil {
			return nil, err
		}
		operand, err := p.parseProduct(depth, false)
		if err != nil {
			return nil, err
		}
		conn, _ := connectorFromSymbol(t.text)
		terms = append(terms, Term{Conn: conn, Expr: operand})
	}

	if len(terms) == 1 {
		return first, nil
	}
	return &Composite{Terms: terms}, nil
}

func (p *parser) parseProduct(depth int, negate bool) (Expression, error) {
	first, err := p.parseFactor(depth, negate)
	if err != nil {
		return nil, err
	}
	terms := []Term{{Conn: Add, Expr: first}}

	for {
		t := p.peek()
		if t.kind != tokOp || (t.text != "*" && t.text != "/") {
			break
		}
		p.next()
		if err := p.operandFollows(); err != nil {
			return nil, err
		}
		operand, err := p.parseFactor(depth, false)
		if err != nil {
			return nil, err
		}
		conn, _ := connectorFromSymbol(t.text)
		terms = append(terms, Term{Conn: conn, Expr: operand})
	}

	if len(terms) == 1 {
		return first, nil
	}
	return &Composite{Terms: terms}, nil
}

func (p *parser) parseFactor(depth int, negate bool) (Expression, error) {
	t := p.peek()
	switch t.kind {
	case tokInt:
		p.next()
		if p.peek().kind == tokDice {
			return p.parseDice(t, negate)
		}
		return p.constant(t, negate)
	case tokDice:
		return p.parseDice(token{}, negate)
	case tokLParen:
		return p.parseGroup(depth, negate)
	case tokRParen:
		return nil, newParseError(ErrUnbalancedParentheses, p.rest(), "unexpected ')'")
	case tokEOF:
		return nil, newParseError(ErrDanglingConnector, "", "missing operand")
	default:
		return nil, newParseError(ErrMalformedExpression, p.rest(), "unexpected %q", t.text)
	}
}

func (p *parser) parseGroup(depth int, negate bool) (Expression, error) {
	open := p.next()
	switch p.peek().kind {
	case tokRParen:
		return nil, newParseError(ErrEmptyExpression, p.src[open.pos:], "empty parentheses")
	case tokEOF:
		return nil, newParseError(ErrUnbalancedParentheses, p.src[open.pos:], "missing ')'")
	}
	inner, err := p.parseExpr(depth + 1)
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokRParen {
		if p.peek().kind == tokEOF {
			return nil, newParseError(ErrUnbalancedParentheses, p.src[open.pos:], "missing ')'")
		}
		return nil, newParseError(ErrMalformedExpression, p.rest(), "unexpected %q", p.peek().text)
	}
	p.next()
	if p.peek().kind == tokModifier {
		return nil, newParseError(ErrMalformedExpression, p.rest(), "modifiers only apply to dice terms")
	}

	if negate {
		return &Composite{Terms: []Term{{Conn: Sub, Expr: inner}}}, nil
	}
	return inner, nil
}

func (p *parser) constant(t token, negate bool) (Expression, error) {
	v, err := strconv.ParseInt(t.text, 10, 64)
	if err != nil {
		return nil, newParseError(ErrValueOutOfRange, t.text, "integer is too large")
	}
	if negate {
		v = -v
	}
	if v < p.limits.ConstMin || v > p.limits.ConstMax {
		return nil, newParseError(ErrValueOutOfRange, t.text, "constant must be within [%d, %d]", p.limits.ConstMin, p.limits.ConstMax)
	}
	if p.peek().kind == tokModifier {
		return nil, newParseError(ErrMalformedExpression, p.rest(), "modifiers only apply to dice terms")
	}
	return Constant(v), nil
}

// parseDice 解析骰子项及其后的修饰符，count 为空时默认掷一个骰子
func (p *parser) parseDice(count token, negate bool) (Expression, error) {
	p.next()
	d := DiceTerm{Count: 1, Faces: 20, Negative: negate}

	if count.kind == tokInt {
		n, err := p.boundedInt(count, 1, p.limits.DiceNumMax, "dice count")
		if err != nil {
			return nil, err
		}
		d.Count = n
	}
	switch t := p.peek(); t.kind {
	case tokInt:
		p.next()
		n, err := p.boundedInt(t, 1, p.limits.DiceTypeMax, "dice faces")
		if err != nil {
			return nil, err
		}
		d.Faces = n
	case tokLParen, tokDice:
		return nil, newParseError(ErrMalformedExpression, p.rest(), "dice faces must be a plain integer")
	}

	mods, err := p.parseModifiers(d)
	if err != nil {
		return nil, err
	}
	if len(mods) == 0 {
		return d, nil
	}
	return &Composite{Terms: []Term{{Conn: Add, Expr: d}}, Modifiers: mods}, nil
}

// parseModifiers 依次解析骰子项后的修饰符
//
// minDice 记录骰池中至少保留的骰子个数，保留类修饰符的 N 不能超过它。
func (p *parser) parseModifiers(d DiceTerm) ([]Modifier, error) {
	var mods []Modifier
	minDice := d.Count
	for p.peek().kind == tokModifier {
		kw := p.next()
		if len(mods) > 0 && mods[len(mods)-1].Kind == CountSuccess {
			return nil, newParseError(ErrMalformedExpression, p.src[kw.pos:], "no modifier may follow %s", CountSuccess.Keyword())
		}
		kind, _ := modifierKindFromKeyword(kw.text)
		m := Modifier{Kind: kind}

		if kind.conditional() {
			if t := p.peek(); t.kind == tokCmp {
				p.next()
				m.Cmp = comparatorFromSymbol(t.text)
			}
			t := p.peek()
			if t.kind != tokInt {
				return nil, newParseError(ErrInvalidModifierArgument, p.src[kw.pos:], "%s requires a bound", kw.text)
			}
			p.next()
			bound, err := strconv.ParseInt(t.text, 10, 64)
			if err != nil || bound > int64(p.limits.DiceTypeMax)+1 {
				return nil, newParseError(ErrInvalidModifierArgument, p.src[kw.pos:], "%s bound must not exceed %d", kw.text, p.limits.DiceTypeMax+1)
			}
			m.Bound = bound
			if kind == Explode || kind == ExplodeOnce {
				m.Limit = p.limits.ExplodeLimit
			}
		} else {
			m.N = 1
			if t := p.peek(); t.kind == tokInt {
				p.next()
				n, err := strconv.Atoi(t.text)
				if err != nil || n < 1 || n > minDice {
					return nil, newParseError(ErrInvalidModifierArgument, p.src[kw.pos:], "%s must keep between 1 and %d dice", kw.text, minDice)
				}
				m.N = n
			}
			minDice = m.N
		}
		mods = append(mods, m)
	}

	switch t := p.peek(); t.kind {
	case tokCmp, tokDice, tokInt:
		return nil, newParseError(ErrMalformedExpression, p.rest(), "unexpected %q after dice term", t.text)
	}
	return mods, nil
}

func (p *parser) boundedInt(t token, lo, hi int, what string) (int, error) {
	n, err := strconv.Atoi(t.text)
	if err != nil || n < lo || n > hi {
		return 0, newParseError(ErrValueOutOfRange, t.text, "%s must be within [%d, %d]", what, lo, hi)
	}
	return n, nil
}
