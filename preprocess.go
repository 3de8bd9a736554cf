package dndice

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// symbolReplacer 处理全角折叠覆盖不到的符号
var symbolReplacer = strings.NewReplacer(
	"➕", "+",
	"➖", "-",
	"✖", "*",
	"×", "*",
	"÷", "/",
)

// advantageRe 匹配优势/劣势宏，前一个字符不能是数字
var advantageRe = regexp.MustCompile(`(^|[^0-9])D([0-9]*)(优势|劣势)`)

// damageMacros 是结尾的抗性/易伤宏
var damageMacros = []struct {
	word string
	op   string
}{
	{"抗性", "/2"},
	{"易伤", "*2"},
}

// Preprocess 规范化用户输入的表达式
//
//   - 全角字符转为半角，去掉空白，转为大写
//   - D20优势 → 2D20K1，D20劣势 → 2D20KL1，省略面数时默认 20
//   - 结尾的 X抗性 → (X)/2，X易伤 → (X)*2
//
// 无法识别的宏保持原样，交由 Parse 报错。Preprocess 是幂等的。
func Preprocess(text string) string {
	s := width.Narrow.String(text)
	s = symbolReplacer.Replace(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	s = strings.ToUpper(s)
	s = advantageRe.ReplaceAllStringFunc(s, rewriteAdvantage)
	return rewriteDamage(s)
}

func rewriteAdvantage(m string) string {
	sub := advantageRe.FindStringSubmatch(m)
	prefix, faces, word := sub[1], sub[2], sub[3]
	if faces == "" {
		faces = "20"
	}
	keep := "K1"
	if word == "劣势" {
		keep = "KL1"
	}
	return prefix + "2D" + faces + keep
}

func rewriteDamage(s string) string {
	for _, m := range damageMacros {
		if inner, ok := strings.CutSuffix(s, m.word); ok {
			return "(" + rewriteDamage(inner) + ")" + m.op
		}
	}
	return s
}
