package dndice

import (
	"strconv"
	"strings"
)

// D20Indeterminate 是 d20 个数无法再确定时使用的标记值
// 重投、爆炸、计数成功之后的 d20 骰池都会被标记为该值，调用方据此不再判断大成功/大失败
const D20Indeterminate = 2

// Result 保存一次求值的结果
//
// Result 是值类型，连接符和修饰符总是返回新的 Result 而不修改输入。
type Result struct {
	// values 每个骰子或常数的带符号贡献
	values []int64
	// trace 未经括号化简的计算过程
	trace string
	// expr 未经括号化简的表达式文本
	expr string
	// faces 未经组合的骰子项的面数，0 表示不是单一骰子项
	faces int
	// d20Count 可追踪的 d20 个数
	d20Count int
	// d20Face 唯一 d20 的点数
	d20Face int
	// compound 为 true 时作为操作数需要加括号
	compound bool
}

// Values 返回各项贡献值的副本
func (r Result) Values() []int64 {
	return append([]int64(nil), r.values...)
}

// Total 返回最终结果，溢出时饱和到 int64 的上下限
func (r Result) Total() int64 {
	var s int64
	for _, v := range r.values {
		s = addSaturating(s, v)
	}
	return s
}

// Trace 返回可读的计算过程，去掉不影响阅读的括号
func (r Result) Trace() string {
	return strings.TrimPrefix(Canonicalize(r.trace, Readable), "+")
}

// CanonicalExpr 返回可以再次解析的表达式，去掉所有多余的括号
func (r Result) CanonicalExpr() string {
	return strings.TrimPrefix(Canonicalize(r.expr, Exact), "+")
}

// RawTrace 返回未化简的计算过程
func (r Result) RawTrace() string {
	return r.trace
}

// RawExpr 返回未化简的表达式文本
func (r Result) RawExpr() string {
	return r.expr
}

// FullResult 返回 "表达式=过程=结果"，与下一段相同的段会被省略
func (r Result) FullResult() string {
	parts := []string{r.CanonicalExpr(), r.Trace(), strconv.FormatInt(r.Total(), 10)}
	out := make([]string, 0, len(parts))
	for i, p := range parts {
		if i+1 < len(parts) && p == parts[i+1] {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, "=")
}

// DieFaces 返回单一骰子项的面数
func (r Result) DieFaces() (int, bool) {
	return r.faces, r.faces > 0
}

// D20Count 返回结果中可追踪的 d20 个数
func (r Result) D20Count() int {
	return r.d20Count
}

// D20Face 返回唯一 d20 的点数，仅在 D20Count 为 1 时有效
func (r Result) D20Face() (int, bool) {
	if r.d20Count != 1 || r.d20Face == 0 {
		return 0, false
	}
	return r.d20Face, true
}

// IsCritSuccess 判断是否为大成功(唯一 d20 掷出 20)
func (r Result) IsCritSuccess() bool {
	face, ok := r.D20Face()
	return ok && face == 20
}

// IsCritFailure 判断是否为大失败(唯一 d20 掷出 1)
func (r Result) IsCritFailure() bool {
	face, ok := r.D20Face()
	return ok && face == 1
}

func (r Result) operandTrace() string {
	if r.compound {
		return "(" + r.trace + ")"
	}
	return r.trace
}

func (r Result) operandExpr() string {
	if r.compound {
		return "(" + r.expr + ")"
	}
	return r.expr
}

// asOperand 把复合结果的文本加上括号，使其可以作为连接符的左操作数
func (r Result) asOperand() Result {
	r.trace = r.operandTrace()
	r.expr = r.operandExpr()
	r.compound = false
	return r
}

func constantResult(v int64) Result {
	s := strconv.FormatInt(v, 10)
	return Result{
		values:   []int64{v},
		trace:    s,
		expr:     s,
		compound: v < 0,
	}
}
