package dndice

import "testing"

func TestCanonicalizeExact(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1+(2+3)", "1+2+3"},
		{"(1+2)+3", "1+2+3"},
		{"(1+2)*2", "(1+2)*2"},
		{"2*(1+2)", "2*(1+2)"},
		{"8-(2-1)", "8-(2-1)"},
		{"8-(2*3)", "8-2*3"},
		{"8+(2-1)", "8+2-1"},
		{"8/(2*2)", "8/(2*2)"},
		{"(8/2)*2", "8/2*2"},
		{"2*(3*4)", "2*3*4"},
		{"2*(7/2)", "2*(7/2)"},
		{"2*(-3)", "2*(-3)"},
		{"(-3)+2", "-3+2"},
		{"(-3)*2", "-3*2"},
		{"(-(1+2))*3", "-(1+2)*3"},
		{"((1+2))", "1+2"},
		{"(5)", "5"},
		{"((5))*2", "5*2"},
		{"[1->5]+(2+3)", "[1->5]+2+3"},
		{"(6+{6}+{2})*2", "(6+{6}+{2})*2"},
		{"({1+2})", "{1+2}"},
		{"()", "()"},
		{"(1+2", "(1+2"},
		{"", ""},
	}
	for _, c := range cases {
		if got := Canonicalize(c.in, Exact); got != c.want {
			t.Fatalf("Canonicalize(%q, Exact) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCanonicalizeReadable(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1+(2+3)", "1+(2+3)"},
		{"(3+4)", "(3+4)"},
		{"((1+2))", "(1+2)"},
		{"(~5~+14)+5", "(~5~+14)+5"},
		{"2+(3*4)", "2+3*4"},
		{"2+(3-4)", "2+3-4"},
		{"(5)+(6)", "5+6"},
		{"-(3+4)", "-(3+4)"},
		{"(-(3+4))+1", "-(3+4)+1"},
	}
	for _, c := range cases {
		if got := Canonicalize(c.in, Readable); got != c.want {
			t.Fatalf("Canonicalize(%q, Readable) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	for _, s := range []string{"1+(2+3)", "(1+2)*(3-4)/(5)", "-(1+(2*3))", "((2D6+3))*2"} {
		for _, mode := range []CanonicalMode{Exact, Readable} {
			once := Canonicalize(s, mode)
			if twice := Canonicalize(once, mode); twice != once {
				t.Fatalf("Canonicalize(%q, %d) not idempotent: %q then %q", s, mode, once, twice)
			}
		}
	}
}

func TestCanonicalKeepsTruncatingDivision(t *testing.T) {
	for _, text := range []string{"2*(7/2)", "19*(1/19)*8", "3*(7/2*2)", "5*(9/4)+1"} {
		expr := MustParse(text)
		r := expr.Evaluate()
		for _, canon := range []string{expr.String(), r.CanonicalExpr(), r.Trace()} {
			again, err := Parse(canon)
			if err != nil {
				t.Fatalf("%q canonicalized to unparsable %q: %v", text, canon, err)
			}
			if got := again.Evaluate().Total(); got != r.Total() {
				t.Fatalf("%q canonicalized to %q: %d, want %d", text, canon, got, r.Total())
			}
		}
	}
	if got := MustParse("2*(7/2)").Evaluate().FullResult(); got != "2*(7/2)=6" {
		t.Fatalf("FullResult() = %q", got)
	}
}
