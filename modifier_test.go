package dndice

import (
	"slices"
	"testing"
)

func TestModifiers(t *testing.T) {
	cases := []struct {
		expr   string
		rolls  []int
		total  int64
		trace  string
		values []int64
	}{
		{"2D20K1", []int{5, 14}, 14, "(~5~+14)", []int64{14}},
		{"2D20KL1", []int{5, 14}, 5, "(5+~14~)", []int64{5}},
		{"4D6K3", []int{3, 1, 4, 1}, 8, "(3+~1~+4+1)", []int64{3, 4, 1}},
		{"3D6K2K1", []int{2, 6, 5}, 6, "(~2~+6+~5~)", []int64{6}},
		{"D6R1", []int{1, 5}, 5, "[1->5]", []int64{5}},
		{"2D6R<3", []int{2, 5, 1}, 6, "([2->1]+5)", []int64{1, 5}},
		{"D6X6", []int{6, 6, 2}, 14, "(6+{6}+{2})", []int64{6, 6, 2}},
		{"2D6X>4", []int{5, 3, 2}, 10, "(5+{2}+3)", []int64{5, 2, 3}},
		{"2D6XO6", []int{6, 3, 6}, 15, "(6+{6}+3)", []int64{6, 6, 3}},
		{"3D6CS>4", []int{5, 2, 6}, 2, "[5✓,2,6✓]", []int64{2}},
		{"4D6K3CS>3", []int{3, 1, 4, 5}, 2, "[3,~1~,4✓,5✓]", []int64{2}},
		{"-2D6", []int{3, 4}, -7, "-(3+4)", []int64{-3, -4}},
		{"-2D6K1", []int{3, 4}, -4, "-(~3~+4)", []int64{-4}},
	}
	for _, c := range cases {
		src := script(t, c.rolls...)
		r := MustParse(c.expr).EvaluateWith(src)
		if !src.done() {
			t.Fatalf("%s: consumed %d of %d scripted rolls", c.expr, src.i, len(c.rolls))
		}
		if r.Total() != c.total {
			t.Fatalf("%s: total %d, want %d", c.expr, r.Total(), c.total)
		}
		if r.Trace() != c.trace {
			t.Fatalf("%s: trace %q, want %q", c.expr, r.Trace(), c.trace)
		}
		if !slices.Equal(r.Values(), c.values) {
			t.Fatalf("%s: values %v, want %v", c.expr, r.Values(), c.values)
		}
	}
}

func TestExplodeLimit(t *testing.T) {
	limits := DefaultLimits
	limits.ExplodeLimit = 2
	expr, err := ParseWithLimits("D6X6", limits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	src := script(t, 6, 6, 6)
	r := expr.EvaluateWith(src)
	if !src.done() {
		t.Fatalf("explosion should stop after %d extra dice", limits.ExplodeLimit)
	}
	if r.Total() != 18 || len(r.Values()) != 3 {
		t.Fatalf("unexpected capped explosion %v", r.Values())
	}
}

func TestExplodeOnOneFacedDieTerminates(t *testing.T) {
	r := MustParse("5D1X1").Evaluate()
	// 每个原始骰子最多追加 ExplodeLimit 个
	want := int64(5 * (1 + DefaultLimits.ExplodeLimit))
	if r.Total() != want {
		t.Fatalf("total %d, want %d", r.Total(), want)
	}
}

func TestModifierExpressionText(t *testing.T) {
	src := script(t, 5, 14)
	r := MustParse("2d20k1+5").EvaluateWith(src)
	if got := r.CanonicalExpr(); got != "2D20K1+5" {
		t.Fatalf("canonical expr %q", got)
	}
	if got := r.FullResult(); got != "2D20K1+5=(~5~+14)+5=19" {
		t.Fatalf("full result %q", got)
	}
}

func TestModifierSuffix(t *testing.T) {
	cases := []struct {
		m    Modifier
		want string
	}{
		{Modifier{Kind: KeepHigh, N: 1}, "K1"},
		{Modifier{Kind: KeepLow, N: 2}, "KL2"},
		{Modifier{Kind: Reroll, Cmp: CmpLt, Bound: 3}, "R<3"},
		{Modifier{Kind: Explode, Cmp: CmpGt, Bound: 5}, "X>5"},
		{Modifier{Kind: ExplodeOnce, Bound: 6}, "XO6"},
		{Modifier{Kind: CountSuccess, Cmp: CmpGt, Bound: 10}, "CS>10"},
	}
	for _, c := range cases {
		if got := c.m.Suffix(); got != c.want {
			t.Fatalf("Suffix() = %q, want %q", got, c.want)
		}
	}
}

func TestCountSuccessClearsFaces(t *testing.T) {
	r := MustParse("3D6CS>4").EvaluateWith(script(t, 5, 2, 6))
	if _, ok := r.DieFaces(); ok {
		t.Fatalf("count success result should not report die faces")
	}
	r = MustParse("3D6K2").EvaluateWith(script(t, 5, 2, 6))
	if faces, ok := r.DieFaces(); !ok || faces != 6 {
		t.Fatalf("keep result should report d6, got %d %v", faces, ok)
	}
}
