package dndice

import "math/rand/v2"

// Source 是掷骰使用的随机数来源
//
// IntN 返回 [0, n) 内的整数，n 保证大于 0。
// 同一个 Source 不会被并发使用，*rand.Rand 即可满足。
type Source interface {
	IntN(n int) int
}

// newSource 为一次求值创建独立的随机数生成器，种子取自运行时的并发安全全局源
func newSource() Source {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// rollDie 掷一个 faces 面骰
func rollDie(src Source, faces int) int64 {
	return int64(src.IntN(faces) + 1)
}
