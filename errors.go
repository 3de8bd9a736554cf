package dndice

import (
	"fmt"
	"strings"
)

// ErrorKind 表示解析阶段可能发生的错误类型
type ErrorKind string

const (
	// ErrEmptyExpression 表示表达式或括号内为空
	ErrEmptyExpression ErrorKind = "EMPTY_EXPRESSION 表达式为空"
	// ErrUnbalancedParentheses 表示括号不匹配
	ErrUnbalancedParentheses ErrorKind = "UNBALANCED_PARENTHESES 括号不匹配"
	// ErrDanglingConnector 表示运算符后缺少操作数
	ErrDanglingConnector ErrorKind = "DANGLING_CONNECTOR 运算符后缺少操作数"
	// ErrMalformedExpression 表示表达式结构无法识别
	ErrMalformedExpression ErrorKind = "MALFORMED_EXPRESSION 表达式格式错误"
	// ErrValueOutOfRange 表示骰子数量、面数或常数超出限制
	ErrValueOutOfRange ErrorKind = "VALUE_OUT_OF_RANGE 数值超出范围"
	// ErrInvalidModifierArgument 表示修饰符参数无效
	ErrInvalidModifierArgument ErrorKind = "INVALID_MODIFIER_ARGUMENT 修饰符参数无效"
	// ErrRecursionLimitExceeded 表示括号嵌套层数过深
	ErrRecursionLimitExceeded ErrorKind = "RECURSION_LIMIT_EXCEEDED 嵌套层数过深"
)

// Code 返回错误类型中的机器可读部分
func (k ErrorKind) Code() string {
	code, _, _ := strings.Cut(string(k), " ")
	return code
}

// Error 使 ErrorKind 可以直接作为 errors.Is 的比较目标
func (k ErrorKind) Error() string {
	return string(k)
}

// ParseError 是 Parse 返回的错误，带有错误类型、说明以及出错的片段
type ParseError struct {
	Kind     ErrorKind
	Msg      string
	Fragment string
}

func (e *ParseError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.Code())
	if e.Msg != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Msg)
	}
	if e.Fragment != "" {
		fmt.Fprintf(&sb, " (near %q)", e.Fragment)
	}
	return sb.String()
}

// Is 按错误类型匹配，既可以与 ErrorKind 比较也可以与另一个 *ParseError 比较
func (e *ParseError) Is(target error) bool {
	switch t := target.(type) {
	case ErrorKind:
		return e.Kind == t
	case *ParseError:
		return e.Kind == t.Kind
	}
	return false
}

func newParseError(kind ErrorKind, fragment string, format string, args ...any) *ParseError {
	return &ParseError{
		Kind:     kind,
		Msg:      fmt.Sprintf(format, args...),
		Fragment: fragment,
	}
}
