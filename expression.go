package dndice

import "strconv"

// Expression 是解析得到的掷骰表达式树
//
// 表达式树在解析后不再改变，可以在多个 goroutine 中并发求值。
// 实现只有 Constant、DiceTerm 和 *Composite 三种。
type Expression interface {
	// Evaluate 使用新的随机数生成器求值，每次调用都会重新掷骰
	Evaluate() Result
	// EvaluateWith 使用调用方提供的随机数来源求值
	EvaluateWith(src Source) Result
	// String 返回化简后的表达式文本，不掷骰
	String() string

	// text 返回未化简的表达式文本以及作为操作数时是否需要括号
	// 以负号开头的文本同样需要括号
	text() (string, bool)
}

// Constant 是整数常量
type Constant int64

// Evaluate 返回常量本身
func (c Constant) Evaluate() Result {
	return constantResult(int64(c))
}

// EvaluateWith 返回常量本身，不使用 src
func (c Constant) EvaluateWith(Source) Result {
	return constantResult(int64(c))
}

func (c Constant) String() string {
	return strconv.FormatInt(int64(c), 10)
}

func (c Constant) text() (string, bool) {
	return c.String(), c < 0
}

// DiceTerm 是 XdY 骰子项
type DiceTerm struct {
	Count    int
	Faces    int
	Negative bool
}

// Evaluate 掷骰并返回每个骰子的点数
func (d DiceTerm) Evaluate() Result {
	return d.EvaluateWith(newSource())
}

// EvaluateWith 使用 src 掷骰
func (d DiceTerm) EvaluateWith(src Source) Result {
	return d.roll(src).result()
}

func (d DiceTerm) roll(src Source) *dicePool {
	var sign int64 = 1
	if d.Negative {
		sign = -1
	}
	return rollPool(src, d.Count, d.Faces, sign, d.String())
}

func (d DiceTerm) String() string {
	s := "D" + strconv.Itoa(d.Faces)
	if d.Count != 1 {
		s = strconv.Itoa(d.Count) + s
	}
	if d.Negative {
		s = "-" + s
	}
	return s
}

func (d DiceTerm) text() (string, bool) {
	return d.String(), d.Negative
}

// Term 是组合表达式中的一项，Conn 表示它与前面各项的连接方式
//
// 第一项的 Conn 只可能是 Add 或 Sub(取负)，乘除法组合的第一项使用 Add。
type Term struct {
	Conn Connector
	Expr Expression
}

// Composite 是由连接符组合的多项表达式，或带修饰符的单个骰子项
//
// Modifiers 只在 Terms 恰好是一个 DiceTerm 时生效，否则被忽略。
// 没有任何项的 Composite 求值为 0。
type Composite struct {
	Terms     []Term
	Modifiers []Modifier
}

// Evaluate 使用新的随机数生成器求值
func (c *Composite) Evaluate() Result {
	return c.EvaluateWith(newSource())
}

// EvaluateWith 依次求出每一项并按连接符从左到右合并
func (c *Composite) EvaluateWith(src Source) Result {
	if len(c.Terms) == 0 {
		return constantResult(0)
	}
	if len(c.Modifiers) > 0 {
		return c.evaluateModified(src)
	}

	var acc Result
	for i, t := range c.Terms {
		r := t.Expr.EvaluateWith(src)
		if i == 0 {
			if t.Conn == Sub {
				acc = Sub.Combine(Result{}, r)
			} else {
				acc = r.asOperand()
			}
			continue
		}
		acc = t.Conn.Combine(acc, r)
	}
	acc.compound = true
	return acc
}

// evaluateModified 对唯一的骰子项掷骰并依次应用修饰符
//
// 修饰符只作用于单个骰子项，其他形状的组合忽略修饰符按普通组合求值。
func (c *Composite) evaluateModified(src Source) Result {
	dt, ok := c.dice()
	if !ok {
		return (&Composite{Terms: c.Terms}).EvaluateWith(src)
	}
	pool := dt.roll(src)
	for _, m := range c.Modifiers {
		m.apply(pool, src)
	}
	return pool.result()
}

// dice 返回可以挂修饰符的唯一骰子项
func (c *Composite) dice() (DiceTerm, bool) {
	if len(c.Terms) != 1 {
		return DiceTerm{}, false
	}
	dt, ok := c.Terms[0].Expr.(DiceTerm)
	return dt, ok
}

func (c *Composite) String() string {
	s, _ := c.text()
	return Canonicalize(s, Exact)
}

func (c *Composite) text() (string, bool) {
	if len(c.Terms) == 0 {
		return "0", false
	}
	if _, ok := c.dice(); ok && len(c.Modifiers) > 0 {
		s, neg := c.Terms[0].Expr.text()
		for _, m := range c.Modifiers {
			s += m.Suffix()
		}
		return s, neg
	}

	var s string
	for i, t := range c.Terms {
		ts, compound := t.Expr.text()
		if compound {
			ts = "(" + ts + ")"
		}
		if i == 0 && t.Conn != Sub {
			s = ts
			continue
		}
		s += t.Conn.Symbol() + ts
	}
	return s, true
}
