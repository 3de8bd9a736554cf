package dndice

import (
	"sort"
	"strconv"
	"strings"
)

// Comparator 是修饰符条件中的比较方式
type Comparator int

const (
	// CmpEq 等于
	CmpEq Comparator = iota
	// CmpLt 小于
	CmpLt
	// CmpGt 大于
	CmpGt
)

func (c Comparator) match(v, bound int64) bool {
	switch c {
	case CmpLt:
		return v < bound
	case CmpGt:
		return v > bound
	default:
		return v == bound
	}
}

// Symbol 返回比较符文本，等于省略不写
func (c Comparator) Symbol() string {
	switch c {
	case CmpLt:
		return "<"
	case CmpGt:
		return ">"
	default:
		return ""
	}
}

func comparatorFromSymbol(s string) Comparator {
	switch s {
	case "<":
		return CmpLt
	case ">":
		return CmpGt
	default:
		return CmpEq
	}
}

// ModifierKind 是修饰符的种类
type ModifierKind int

const (
	// Reroll 满足条件的骰子重投一次
	Reroll ModifierKind = iota
	// Explode 满足条件的骰子追加一个骰子，新骰子仍满足条件时继续追加
	Explode
	// ExplodeOnce 满足条件的骰子只追加一个骰子
	ExplodeOnce
	// KeepHigh 保留最高的 N 个骰子
	KeepHigh
	// KeepLow 保留最低的 N 个骰子
	KeepLow
	// CountSuccess 统计满足条件的骰子个数
	CountSuccess
)

// Keyword 返回修饰符在表达式中的关键字
func (k ModifierKind) Keyword() string {
	switch k {
	case Reroll:
		return "R"
	case Explode:
		return "X"
	case ExplodeOnce:
		return "XO"
	case KeepHigh:
		return "K"
	case KeepLow:
		return "KL"
	case CountSuccess:
		return "CS"
	default:
		return "?"
	}
}

func (k ModifierKind) conditional() bool {
	return k == Reroll || k == Explode || k == ExplodeOnce || k == CountSuccess
}

// 修饰符关键字，按匹配优先级排列，长的关键字在前
var modifierKeywords = []struct {
	word string
	kind ModifierKind
}{
	{"R", Reroll},
	{"XO", ExplodeOnce},
	{"X", Explode},
	{"KL", KeepLow},
	{"K", KeepHigh},
	{"CS", CountSuccess},
}

func modifierKindFromKeyword(s string) (ModifierKind, bool) {
	for _, mk := range modifierKeywords {
		if mk.word == s {
			return mk.kind, true
		}
	}
	return 0, false
}

// Modifier 是作用在骰子项上的后处理规则
type Modifier struct {
	Kind ModifierKind
	// Cmp 和 Bound 用于重投、爆炸和计数成功
	Cmp   Comparator
	Bound int64
	// N 用于保留最高/最低
	N int
	// Limit 每个原始骰子最多追加的爆炸骰个数
	Limit int
}

// Suffix 返回修饰符在表达式中的写法，例如 K1、R<3、CS>10
func (m Modifier) Suffix() string {
	if m.Kind.conditional() {
		return m.Kind.Keyword() + m.Cmp.Symbol() + strconv.FormatInt(m.Bound, 10)
	}
	return m.Kind.Keyword() + strconv.Itoa(m.N)
}

// poolDie 是骰池中的一个骰子
type poolDie struct {
	// history 该骰子的所有点数，重投时追加
	history []int64
	// added 由爆炸追加的骰子
	added bool
	// dropped 被保留规则丢弃
	dropped bool
	// success 计数成功时满足条件
	success bool
}

func (d poolDie) value() int64 {
	return d.history[len(d.history)-1]
}

func (d poolDie) text() string {
	var s string
	if len(d.history) == 1 {
		s = strconv.FormatInt(d.history[0], 10)
	} else {
		parts := make([]string, len(d.history))
		for i, v := range d.history {
			parts[i] = strconv.FormatInt(v, 10)
		}
		s = "[" + strings.Join(parts, "->") + "]"
	}
	if d.added {
		s = "{" + s + "}"
	}
	if d.success {
		s += "✓"
	}
	if d.dropped {
		s = "~" + s + "~"
	}
	return s
}

// dicePool 是一个骰子项在修饰符作用期间的中间状态
type dicePool struct {
	faces int
	sign  int64
	dice  []poolDie
	expr  string
	// indeterminate 为 true 时 d20 个数不再可追踪
	indeterminate bool
	// counted 计数成功之后骰池被压缩为成功个数
	counted bool
}

func rollPool(src Source, count, faces int, sign int64, expr string) *dicePool {
	p := &dicePool{
		faces: faces,
		sign:  sign,
		dice:  make([]poolDie, count),
		expr:  expr,
	}
	for i := range p.dice {
		p.dice[i] = poolDie{history: []int64{rollDie(src, faces)}}
	}
	return p
}

// apply 把修饰符作用到骰池上
func (m Modifier) apply(p *dicePool, src Source) {
	p.expr += m.Suffix()
	switch m.Kind {
	case Reroll:
		for i := range p.dice {
			d := &p.dice[i]
			if d.dropped || !m.Cmp.match(d.value(), m.Bound) {
				continue
			}
			d.history = append(d.history, rollDie(src, p.faces))
		}
		p.indeterminate = true
	case Explode, ExplodeOnce:
		limit := m.Limit
		if m.Kind == ExplodeOnce {
			limit = 1
		}
		out := make([]poolDie, 0, len(p.dice))
		for _, d := range p.dice {
			out = append(out, d)
			if d.dropped || !m.Cmp.match(d.value(), m.Bound) {
				continue
			}
			for k := 0; k < limit; k++ {
				v := rollDie(src, p.faces)
				out = append(out, poolDie{history: []int64{v}, added: true})
				if !m.Cmp.match(v, m.Bound) {
					break
				}
			}
		}
		p.dice = out
		p.indeterminate = true
	case KeepHigh, KeepLow:
		p.keep(m.N, m.Kind == KeepHigh)
	case CountSuccess:
		for i := range p.dice {
			d := &p.dice[i]
			if !d.dropped && m.Cmp.match(d.value(), m.Bound) {
				d.success = true
			}
		}
		p.counted = true
		p.indeterminate = true
	}
}

// keep 保留最高或最低的 n 个未丢弃骰子，其余标记为丢弃
func (p *dicePool) keep(n int, high bool) {
	idx := make([]int, 0, len(p.dice))
	for i, d := range p.dice {
		if !d.dropped {
			idx = append(idx, i)
		}
	}
	if n >= len(idx) {
		return
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return p.dice[idx[a]].value() < p.dice[idx[b]].value()
	})
	var drop []int
	if high {
		drop = idx[:len(idx)-n]
	} else {
		drop = idx[n:]
	}
	for _, i := range drop {
		p.dice[i].dropped = true
	}
}

// result 把骰池转换为 Result
func (p *dicePool) result() Result {
	texts := make([]string, len(p.dice))
	kept := make([]int64, 0, len(p.dice))
	for i, d := range p.dice {
		texts[i] = d.text()
		if !d.dropped {
			kept = append(kept, d.value())
		}
	}

	r := Result{expr: p.expr}
	if p.counted {
		var n int64
		for _, d := range p.dice {
			if d.success {
				n++
			}
		}
		r.values = []int64{n * p.sign}
		r.trace = "[" + strings.Join(texts, ",") + "]"
	} else {
		r.faces = p.faces
		r.values = make([]int64, len(kept))
		for i, v := range kept {
			r.values[i] = v * p.sign
		}
		if len(texts) == 1 {
			r.trace = texts[0]
		} else {
			r.trace = "(" + strings.Join(texts, "+") + ")"
		}
	}
	if p.sign < 0 {
		r.trace = "-" + r.trace
		r.compound = true
	}

	if p.faces == 20 {
		switch {
		case p.indeterminate:
			r.d20Count = D20Indeterminate
		default:
			r.d20Count = len(kept)
			if len(kept) == 1 {
				r.d20Face = int(kept[0])
			}
		}
	}
	return r
}
