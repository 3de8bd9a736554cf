package dndice

import "testing"

func TestPreprocess(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1d20+3", "1D20+3"},
		{" 1 d 20 + 3 ", "1D20+3"},
		{"１ｄ２０＋３", "1D20+3"},
		{"（１＋２）＊３", "(1+2)*3"},
		{"3×2÷1", "3*2/1"},
		{"3➕2➖1✖4", "3+2-1*4"},
		{"d20优势", "2D20K1"},
		{"D20劣势", "2D20KL1"},
		{"d优势", "2D20K1"},
		{"d劣势+5", "2D20KL1+5"},
		{"d12优势+d20劣势", "2D12K1+2D20KL1"},
		{"(d20优势)", "(2D20K1)"},
		{"1d20优势", "1D20优势"},
		{"d20+3抗性", "(D20+3)/2"},
		{"2d6易伤", "(2D6)*2"},
		{"d6易伤抗性", "((D6)*2)/2"},
		{"", ""},
	}
	for _, c := range cases {
		if got := Preprocess(c.in); got != c.want {
			t.Fatalf("Preprocess(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestPreprocessIdempotent(t *testing.T) {
	inputs := []string{
		"1d20+3",
		"ｄ２０优势",
		"d20劣势+2",
		"1d20优势",
		"d6易伤抗性",
		"4d6k3",
		"2d6x>5 + 3",
		"未知宏",
	}
	for _, in := range inputs {
		once := Preprocess(in)
		if twice := Preprocess(once); twice != once {
			t.Fatalf("Preprocess not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestPreprocessThenParse(t *testing.T) {
	for _, in := range []string{"d20优势+5", "ｄ２０＋３", "2d6+3抗性", "d8 易伤"} {
		if _, err := Parse(Preprocess(in)); err != nil {
			t.Fatalf("Parse(Preprocess(%q)) failed: %v", in, err)
		}
	}
}
