package dndice

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func runREPLScript(t *testing.T, input string, opts REPLOptions) string {
	t.Helper()
	var out bytes.Buffer
	if err := RunREPL(context.Background(), strings.NewReader(input), &out, opts); err != nil {
		t.Fatalf("RunREPL: %v", err)
	}
	return out.String()
}

func TestREPLRoll(t *testing.T) {
	out := runREPLScript(t, "1+2*3\n\n(1+2\nquit\n5\n", REPLOptions{})
	for _, want := range []string{"1+2*3=7", "Error: UNBALANCED_PARENTHESES", "本次会话的输入历史", "  1: 1+2*3", "  2: (1+2"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "  3: ") {
		t.Fatalf("input after quit must not be read:\n%s", out)
	}
}

func TestREPLHistoryDedup(t *testing.T) {
	out := runREPLScript(t, "3\n3\n4\n", REPLOptions{})
	if !strings.Contains(out, "  2: 4") || strings.Contains(out, "  3: ") {
		t.Fatalf("consecutive duplicates should be merged:\n%s", out)
	}
}

func TestREPLJSON(t *testing.T) {
	opts := REPLOptions{Estimate: EstimateConfig{Samples: 100, Batches: 4}}
	out := runREPLScript(t, ".json\n1+2\n(1+2\n.est 5\nexit\n", opts)
	for _, want := range []string{
		"JSON 输出: true",
		`"input":"1+2"`,
		`"total":3`,
		`"error_code":"UNBALANCED_PARENTHESES"`,
		`"mean":"5.0000"`,
		`"status":"complete"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestREPLEstimate(t *testing.T) {
	opts := REPLOptions{Estimate: EstimateConfig{Samples: 50, Batches: 5}}
	out := runREPLScript(t, ".est 2d6+1\n.est 1+\n", opts)
	if !strings.Contains(out, "2D6+1: 期望: ") {
		t.Fatalf("missing estimate line:\n%s", out)
	}
	if !strings.Contains(out, "Error: DANGLING_CONNECTOR") {
		t.Fatalf("missing estimate parse error:\n%s", out)
	}
}

func TestREPLCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	if err := RunREPL(ctx, strings.NewReader("1+1\n"), &out, REPLOptions{}); err != nil {
		t.Fatalf("RunREPL: %v", err)
	}
	if strings.Contains(out.String(), "=2") {
		t.Fatalf("cancelled REPL should not evaluate input:\n%s", out.String())
	}
}

func TestNewRollRecord(t *testing.T) {
	rec := NewRollRecord("d20优势+3", DefaultLimits)
	if rec.Error != "" {
		t.Fatalf("unexpected error %s", rec.Error)
	}
	if rec.Expr != "2D20K1+3" || rec.D20Count != 1 || len(rec.Values) != 2 {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.Total < 4 || rec.Total > 23 {
		t.Fatalf("total %d out of range", rec.Total)
	}

	rec = NewRollRecord("1D0", DefaultLimits)
	if rec.ErrorCode != "VALUE_OUT_OF_RANGE" {
		t.Fatalf("unexpected error code %q", rec.ErrorCode)
	}
}
