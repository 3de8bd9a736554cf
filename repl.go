package dndice

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// REPLOptions 是 RunREPL 的设置，零值字段使用默认设置
type REPLOptions struct {
	Limits   Limits
	Estimate EstimateConfig
	// JSON 为 true 时以 JSON 输出结果，可在会话中用 .json 切换
	JSON bool
	// Prompt 为空时使用 "> "
	Prompt string
}

// RollRecord 是一次掷骰的 JSON 输出
type RollRecord struct {
	Input     string  `json:"input"`
	Expr      string  `json:"expr,omitempty"`
	Trace     string  `json:"trace,omitempty"`
	Total     int64   `json:"total"`
	Values    []int64 `json:"values,omitempty"`
	D20Count  int     `json:"d20_count"`
	Crit      string  `json:"crit,omitempty"`
	Error     string  `json:"error,omitempty"`
	ErrorCode string  `json:"error_code,omitempty"`
}

// EstimateRecord 是一次估计的 JSON 输出
type EstimateRecord struct {
	Input       string           `json:"input"`
	Expr        string           `json:"expr,omitempty"`
	Samples     int              `json:"samples"`
	Requested   int              `json:"requested"`
	Mean        string           `json:"mean"`
	Percentiles map[string]int64 `json:"percentiles,omitempty"`
	Status      string           `json:"status"`
	Error       string           `json:"error,omitempty"`
}

// NewRollRecord 解析并求值 input，错误写入记录而不返回
func NewRollRecord(input string, limits Limits) RollRecord {
	rec := RollRecord{Input: input}
	expr, err := ParseWithLimits(Preprocess(input), limits)
	if err != nil {
		fillError(&rec.Error, &rec.ErrorCode, err)
		return rec
	}
	r := expr.Evaluate()
	rec.Expr = r.CanonicalExpr()
	rec.Trace = r.Trace()
	rec.Total = r.Total()
	rec.Values = r.Values()
	rec.D20Count = r.D20Count()
	switch {
	case r.IsCritSuccess():
		rec.Crit = "success"
	case r.IsCritFailure():
		rec.Crit = "failure"
	}
	return rec
}

func fillError(msg, code *string, err error) {
	*msg = err.Error()
	var pe *ParseError
	if errors.As(err, &pe) {
		*code = pe.Kind.Code()
	}
}

// NewEstimateRecord 把 Distribution 转换为 JSON 输出
func NewEstimateRecord(input string, expr Expression, d Distribution) EstimateRecord {
	rec := EstimateRecord{
		Input:     input,
		Expr:      expr.String(),
		Samples:   d.Samples,
		Requested: d.Requested,
		Mean:      d.Mean.StringFixed(4),
		Status:    d.Status.String(),
	}
	if len(d.Percentiles) > 0 {
		rec.Percentiles = make(map[string]int64, len(d.Percentiles))
		for _, p := range d.Percentiles {
			rec.Percentiles[fmt.Sprintf("p%d", p.Rank)] = p.Value
		}
	}
	return rec
}

// RunREPL 启动交互式掷骰环境，从 in 读取表达式，把结果写到 out
//
// 使用说明:
//   - 输入表达式(如 "2d20k1+5")进行掷骰
//   - 输入 ".est 表达式" 估计结果的分布
//   - 输入 ".json" 切换 JSON 输出
//   - 输入 "quit" 或 "exit" 退出，退出时打印本次会话的输入历史
//
// ctx 被取消时在下一次读取输入前退出，也会中断正在进行的估计。
func RunREPL(ctx context.Context, in io.Reader, out io.Writer, opts REPLOptions) error {
	prompt := opts.Prompt
	if prompt == "" {
		prompt = "> "
	}
	if opts.Limits == (Limits{}) {
		opts.Limits = DefaultLimits
	}
	if opts.Estimate == (EstimateConfig{}) {
		opts.Estimate = DefaultEstimateConfig
	}
	jsonMode := opts.JSON

	fmt.Fprintln(out, "dndice REPL - 输入掷骰表达式，'.est 表达式' 估计期望，'quit' 退出")

	var history []string
	sc := bufio.NewScanner(in)
	for ctx.Err() == nil {
		fmt.Fprint(out, prompt)
		if !sc.Scan() {
			break
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		if len(history) == 0 || history[len(history)-1] != line {
			history = append(history, line)
		}

		switch {
		case line == ".json":
			jsonMode = !jsonMode
			fmt.Fprintf(out, "JSON 输出: %v\n", jsonMode)
		case strings.HasPrefix(line, ".est"):
			estimateLine(ctx, out, strings.TrimSpace(strings.TrimPrefix(line, ".est")), opts, jsonMode)
		default:
			rollLine(out, line, opts.Limits, jsonMode)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	if len(history) > 0 {
		fmt.Fprintln(out, "\n本次会话的输入历史:")
		for i, cmd := range history {
			fmt.Fprintf(out, "%3d: %s\n", i+1, cmd)
		}
	}
	return nil
}

func rollLine(out io.Writer, line string, limits Limits, jsonMode bool) {
	if jsonMode {
		writeJSON(out, NewRollRecord(line, limits))
		return
	}
	expr, err := ParseWithLimits(Preprocess(line), limits)
	if err != nil {
		fmt.Fprintln(out, "Error:", err)
		return
	}
	r := expr.Evaluate()
	fmt.Fprintln(out, r.FullResult())
	switch {
	case r.IsCritSuccess():
		fmt.Fprintln(out, "大成功!")
	case r.IsCritFailure():
		fmt.Fprintln(out, "大失败!")
	}
}

func estimateLine(ctx context.Context, out io.Writer, text string, opts REPLOptions, jsonMode bool) {
	expr, err := ParseWithLimits(Preprocess(text), opts.Limits)
	if err != nil {
		if jsonMode {
			writeJSON(out, EstimateRecord{Input: text, Error: err.Error()})
		} else {
			fmt.Fprintln(out, "Error:", err)
		}
		return
	}
	d, err := Estimate(ctx, expr, WithEstimateConfig(opts.Estimate))
	if err != nil {
		fmt.Fprintln(out, "Error:", err)
		return
	}
	if jsonMode {
		writeJSON(out, NewEstimateRecord(text, expr, d))
		return
	}
	fmt.Fprintf(out, "%s: %s\n", expr, d)
}

func writeJSON(out io.Writer, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintln(out, "Error:", err)
		return
	}
	fmt.Fprintln(out, string(b))
}
