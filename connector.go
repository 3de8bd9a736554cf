package dndice

import (
	"math"
	"math/bits"
)

// Connector 是合并两个结果的二元运算符
type Connector int

const (
	// Add 加法，保留两侧的每一项
	Add Connector = iota
	// Sub 减法，右侧每一项取反后保留
	Sub
	// Mul 乘法，两侧先各自求和
	Mul
	// Div 整数除法，向零取整
	Div
)

// Symbol 返回运算符的文本
func (c Connector) Symbol() string {
	switch c {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	default:
		return "?"
	}
}

func (c Connector) String() string {
	return c.Symbol()
}

func connectorFromSymbol(s string) (Connector, bool) {
	switch s {
	case "+":
		return Add, true
	case "-":
		return Sub, true
	case "*":
		return Mul, true
	case "/":
		return Div, true
	}
	return 0, false
}

// Combine 合并左右两个结果
//
// 左侧没有任何值时视为一元运算，只有 Add 和 Sub 有意义。
// 除数为 0 时结果为 0，求值本身不会失败。
func (c Connector) Combine(lhs, rhs Result) Result {
	if len(lhs.values) == 0 {
		return c.unary(rhs)
	}

	out := Result{
		trace:    lhs.operandTrace() + c.Symbol() + rhs.operandTrace(),
		expr:     lhs.operandExpr() + c.Symbol() + rhs.operandExpr(),
		d20Count: lhs.d20Count + rhs.d20Count,
		d20Face:  lhs.d20Face,
	}
	if out.d20Face == 0 {
		out.d20Face = rhs.d20Face
	}

	switch c {
	case Add:
		out.values = make([]int64, 0, len(lhs.values)+len(rhs.values))
		out.values = append(out.values, lhs.values...)
		out.values = append(out.values, rhs.values...)
	case Sub:
		out.values = make([]int64, 0, len(lhs.values)+len(rhs.values))
		out.values = append(out.values, lhs.values...)
		for _, v := range rhs.values {
			out.values = append(out.values, negSaturating(v))
		}
	case Mul:
		out.values = []int64{mulSaturating(lhs.Total(), rhs.Total())}
	case Div:
		d := rhs.Total()
		switch d {
		case 0:
			out.values = []int64{0}
		case -1:
			out.values = []int64{negSaturating(lhs.Total())}
		default:
			out.values = []int64{lhs.Total() / d}
		}
	}
	return out
}

func (c Connector) unary(rhs Result) Result {
	out := rhs
	out.faces = 0
	out.trace = c.Symbol() + rhs.operandTrace()
	out.expr = c.Symbol() + rhs.operandExpr()
	out.compound = true
	out.values = append([]int64(nil), rhs.values...)
	if c == Sub {
		for i := range out.values {
			out.values[i] = negSaturating(out.values[i])
		}
	}
	return out
}

// mulSaturating 在溢出时饱和到 int64 的上下限
func mulSaturating(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	neg := (a < 0) != (b < 0)
	hi, lo := bits.Mul64(absUint(a), absUint(b))
	if hi != 0 || lo > math.MaxInt64 {
		if neg {
			return math.MinInt64
		}
		return math.MaxInt64
	}
	if neg {
		return -int64(lo)
	}
	return int64(lo)
}

// addSaturating 在溢出时饱和到 int64 的上下限
func addSaturating(a, b int64) int64 {
	s := a + b
	switch {
	case a > 0 && b > 0 && s < 0:
		return math.MaxInt64
	case a < 0 && b < 0 && s >= 0:
		return math.MinInt64
	}
	return s
}

func negSaturating(v int64) int64 {
	if v == math.MinInt64 {
		return math.MaxInt64
	}
	return -v
}

func absUint(v int64) uint64 {
	if v < 0 {
		return uint64(-v)
	}
	return uint64(v)
}
