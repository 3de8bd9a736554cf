package dndice

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Limits 保存解析与求值时使用的各项上限
type Limits struct {
	// DiceNumMax 单个骰子项最多投掷的骰子个数
	DiceNumMax int `env:"DNDICE_DICE_NUM_MAX" envDefault:"100"`
	// DiceTypeMax 骰子的最大面数
	DiceTypeMax int `env:"DNDICE_DICE_TYPE_MAX" envDefault:"1000"`
	// ConstMin 常数下限
	ConstMin int64 `env:"DNDICE_CONST_MIN" envDefault:"-40000"`
	// ConstMax 常数上限
	ConstMax int64 `env:"DNDICE_CONST_MAX" envDefault:"40000"`
	// ExplodeLimit 每个原始骰子最多追加的爆炸骰个数
	ExplodeLimit int `env:"DNDICE_EXPLODE_LIMIT" envDefault:"10"`
	// ParseRecursionMax 括号最大嵌套层数
	ParseRecursionMax int `env:"DNDICE_PARSE_RECURSION_MAX" envDefault:"32"`
}

// DefaultLimits 是 Parse 使用的默认上限
var DefaultLimits = Limits{
	DiceNumMax:        100,
	DiceTypeMax:       1000,
	ConstMin:          -40000,
	ConstMax:          40000,
	ExplodeLimit:      10,
	ParseRecursionMax: 32,
}

// Validate 检查上限之间是否自洽
func (l Limits) Validate() error {
	if l.DiceNumMax < 1 {
		return fmt.Errorf("dice num max must be positive, got %d", l.DiceNumMax)
	}
	if l.DiceTypeMax < 1 {
		return fmt.Errorf("dice type max must be positive, got %d", l.DiceTypeMax)
	}
	if l.ConstMin > l.ConstMax {
		return fmt.Errorf("const min %d is greater than const max %d", l.ConstMin, l.ConstMax)
	}
	if l.ExplodeLimit < 0 {
		return fmt.Errorf("explode limit must not be negative, got %d", l.ExplodeLimit)
	}
	if l.ParseRecursionMax < 1 {
		return fmt.Errorf("parse recursion max must be positive, got %d", l.ParseRecursionMax)
	}
	return nil
}

// LoadLimitsFromEnv 从环境变量读取上限，未设置的项使用默认值
func LoadLimitsFromEnv() (Limits, error) {
	var l Limits
	if err := env.Parse(&l); err != nil {
		return Limits{}, fmt.Errorf("parse env: %w", err)
	}
	if err := l.Validate(); err != nil {
		return Limits{}, fmt.Errorf("validate limits: %w", err)
	}
	return l, nil
}

// EstimateConfig 控制期望估计的采样规模
type EstimateConfig struct {
	// Samples 采样次数
	Samples int `env:"DNDICE_ESTIMATE_SAMPLES" envDefault:"200000"`
	// Batches 采样被切分成的批次数，批次之间让出调度
	Batches int `env:"DNDICE_ESTIMATE_BATCHES" envDefault:"32"`
	// Timeout 单次估计允许的最长时间，0 表示不限制
	Timeout time.Duration `env:"DNDICE_ESTIMATE_TIMEOUT" envDefault:"10s"`
}

// DefaultEstimateConfig 是 Estimate 的默认配置
var DefaultEstimateConfig = EstimateConfig{
	Samples: 200000,
	Batches: 32,
	Timeout: 10 * time.Second,
}

// LoadEstimateConfigFromEnv 从环境变量读取估计配置
func LoadEstimateConfigFromEnv() (EstimateConfig, error) {
	var c EstimateConfig
	if err := env.Parse(&c); err != nil {
		return EstimateConfig{}, fmt.Errorf("parse env: %w", err)
	}
	if c.Samples < 1 || c.Batches < 1 {
		return EstimateConfig{}, fmt.Errorf("samples and batches must be positive, got %d/%d", c.Samples, c.Batches)
	}
	return c, nil
}
