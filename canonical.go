package dndice

import "strings"

// CanonicalMode 决定括号化简的激进程度
type CanonicalMode int

const (
	// Exact 去掉所有不影响计算结果的括号，用于可再次解析的表达式
	Exact CanonicalMode = iota
	// Readable 额外保留只含加号的扁平括号(骰子明细)，用于展示计算过程
	Readable
)

// 运算符优先级，没有运算符的原子视为最高优先级
const (
	precNone = 0
	precAdd  = 1
	precMul  = 2
	precAtom = 3
)

func connectorPrec(c byte) int {
	switch c {
	case '+', '-':
		return precAdd
	case '*', '/':
		return precMul
	}
	return precAtom
}

// precRequiredAfter 返回括号组紧跟在运算符 c 之后时组内需要的最低优先级
func precRequiredAfter(c byte) int {
	switch c {
	case '+':
		return precAdd
	case '-', '*':
		return precMul
	case '/':
		return precAtom
	}
	return precNone
}

// precRequiredBefore 返回括号组紧挨在运算符 c 之前时组内需要的最低优先级
func precRequiredBefore(c byte) int {
	switch c {
	case '+', '-':
		return precAdd
	case '*', '/':
		return precMul
	}
	return precNone
}

func isConnectorByte(c byte) bool {
	return c == '+' || c == '-' || c == '*' || c == '/'
}

type itemKind int

const (
	itemAtom itemKind = iota
	itemConn
	itemGroup
)

type canonItem struct {
	kind itemKind
	text string
}

// Canonicalize 去掉表达式或计算过程中多余的括号，不改变数学含义
//
// 文本中不能含有空格，方括号和花括号内的内容视为不可分割的原子。
// 括号由内向外处理，内层的决定先于外层做出。
func Canonicalize(s string, mode CanonicalMode) string {
	out, _ := canonicalize(s, mode)
	return out
}

// canonicalize 返回化简后的文本以及顶层运算符的最低优先级
func canonicalize(s string, mode CanonicalMode) (string, int) {
	items, ok := splitItems(s)
	if !ok {
		return s, precAtom
	}

	minPrec := precAtom
	var sb strings.Builder
	for i, it := range items {
		switch it.kind {
		case itemAtom:
			sb.WriteString(it.text)
		case itemConn:
			sb.WriteString(it.text)
			if i == 0 {
				// 开头的正负号只作用于紧随其后的操作数
				minPrec = min(minPrec, precMul)
			} else {
				minPrec = min(minPrec, connectorPrec(it.text[0]))
			}
		case itemGroup:
			raw := it.text[1 : len(it.text)-1]
			inner, innerPrec := canonicalize(raw, mode)
			if removableGroup(items, i, raw, inner, innerPrec, mode) {
				sb.WriteString(inner)
				minPrec = min(minPrec, innerPrec)
			} else {
				sb.WriteString("(" + inner + ")")
			}
		}
	}
	return sb.String(), minPrec
}

func removableGroup(items []canonItem, i int, raw, inner string, innerPrec int, mode CanonicalMode) bool {
	if inner == "" {
		return false
	}
	if innerPrec == precAtom {
		return true
	}
	if mode == Readable && isFlatSum(raw) {
		return false
	}

	reqLeft, reqRight := precNone, precNone
	if i > 0 {
		prev := items[i-1]
		if prev.kind != itemConn {
			return false
		}
		if isConnectorByte(inner[0]) {
			return false
		}
		// 截断除法下 a*(b/c) 与 a*b/c 不等价
		if prev.text == "*" && hasTopLevelConnector(inner, '/') {
			return false
		}
		reqLeft = precRequiredAfter(prev.text[0])
	}
	if i+1 < len(items) {
		next := items[i+1]
		if next.kind != itemConn {
			return false
		}
		reqRight = precRequiredBefore(next.text[0])
	}
	return innerPrec >= reqLeft && innerPrec >= reqRight
}

func hasTopLevelConnector(s string, c byte) bool {
	items, ok := splitItems(s)
	if !ok {
		return false
	}
	for i, it := range items {
		if i > 0 && it.kind == itemConn && it.text[0] == c {
			return true
		}
	}
	return false
}

// isFlatSum 判断括号内容是否为不含嵌套括号、只用加号连接的明细
func isFlatSum(s string) bool {
	items, ok := splitItems(s)
	if !ok {
		return false
	}
	for i, it := range items {
		switch it.kind {
		case itemGroup:
			return false
		case itemConn:
			if it.text != "+" || i == 0 {
				return false
			}
		}
	}
	return true
}

// splitItems 把文本拆分为原子、运算符和括号组
func splitItems(s string) ([]canonItem, bool) {
	var items []canonItem
	atomStart := -1
	flushAtom := func(end int) {
		if atomStart >= 0 {
			items = append(items, canonItem{kind: itemAtom, text: s[atomStart:end]})
			atomStart = -1
		}
	}

	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '(':
			flushAtom(i)
			end := matchClose(s, i)
			if end < 0 {
				return nil, false
			}
			items = append(items, canonItem{kind: itemGroup, text: s[i : end+1]})
			i = end + 1
		case c == ')':
			return nil, false
		case c == '[' || c == '{':
			if atomStart < 0 {
				atomStart = i
			}
			end := matchClose(s, i)
			if end < 0 {
				return nil, false
			}
			i = end + 1
		case isConnectorByte(c):
			flushAtom(i)
			items = append(items, canonItem{kind: itemConn, text: s[i : i+1]})
			i++
		default:
			if atomStart < 0 {
				atomStart = i
			}
			i++
		}
	}
	flushAtom(len(s))
	return items, true
}

// matchClose 返回与 s[open] 配对的右括号位置，括号种类可以混合嵌套
func matchClose(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
