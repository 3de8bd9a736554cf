package dndice

import (
	"math/rand/v2"
	"testing"
)

// scriptedSource 按顺序返回预先给定的点数
type scriptedSource struct {
	t     *testing.T
	faces []int
	i     int
}

func script(t *testing.T, faces ...int) *scriptedSource {
	t.Helper()
	return &scriptedSource{t: t, faces: faces}
}

func (s *scriptedSource) IntN(n int) int {
	if s.i >= len(s.faces) {
		s.t.Fatalf("scripted source exhausted after %d rolls", s.i)
	}
	v := s.faces[s.i]
	s.i++
	if v < 1 || v > n {
		s.t.Fatalf("scripted face %d out of range for d%d", v, n)
	}
	return v - 1
}

func (s *scriptedSource) done() bool {
	return s.i == len(s.faces)
}

func TestRollDieRange(t *testing.T) {
	src := rand.New(rand.NewPCG(42, 7))
	for _, faces := range []int{1, 2, 6, 20, 100} {
		for i := 0; i < 500; i++ {
			v := rollDie(src, faces)
			if v < 1 || v > int64(faces) {
				t.Fatalf("d%d rolled %d", faces, v)
			}
		}
	}
}

func TestNewSourceIndependent(t *testing.T) {
	a, b := newSource(), newSource()
	same := true
	for i := 0; i < 16; i++ {
		if a.IntN(1<<30) != b.IntN(1<<30) {
			same = false
		}
	}
	if same {
		t.Fatalf("two fresh sources produced identical sequences")
	}
}
