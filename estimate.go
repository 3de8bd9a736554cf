package dndice

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PercentileRanks 是 Distribution 报告的百分位
var PercentileRanks = []int{1, 5, 25, 45, 55, 75, 95, 99, 100}

// EstimateStatus 表示估计是否完整结束
type EstimateStatus int

const (
	// StatusComplete 全部采样完成
	StatusComplete EstimateStatus = iota
	// StatusCancelled 调用方取消，结果只包含已完成的批次
	StatusCancelled
	// StatusTimedOut 超过截止时间，结果只包含已完成的批次
	StatusTimedOut
)

func (s EstimateStatus) String() string {
	switch s {
	case StatusComplete:
		return "complete"
	case StatusCancelled:
		return "cancelled"
	case StatusTimedOut:
		return "timed out"
	default:
		return "unknown"
	}
}

// Percentile 是一个百分位点
type Percentile struct {
	Rank  int
	Value int64
}

// Distribution 是期望估计的结果
type Distribution struct {
	// Requested 请求的采样次数
	Requested int
	// Samples 实际完成的采样次数
	Samples int
	// Mean 样本均值
	Mean decimal.Decimal
	// Percentiles 按 PercentileRanks 顺序排列，没有样本时为空
	Percentiles []Percentile
	Status      EstimateStatus
}

// Percentile 返回指定百分位的值
func (d Distribution) Percentile(rank int) (int64, bool) {
	for _, p := range d.Percentiles {
		if p.Rank == rank {
			return p.Value, true
		}
	}
	return 0, false
}

func (d Distribution) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "期望: %s", d.Mean.StringFixed(2))
	for _, p := range d.Percentiles {
		sb.WriteString(" ")
		sb.WriteString(strconv.Itoa(p.Rank))
		sb.WriteString("%:")
		sb.WriteString(strconv.FormatInt(p.Value, 10))
	}
	if d.Status != StatusComplete {
		fmt.Fprintf(&sb, " (%s, %d/%d)", d.Status, d.Samples, d.Requested)
	}
	return sb.String()
}

type estimateOptions struct {
	samples int
	batches int
	timeout time.Duration
	seed    *[2]uint64
}

// EstimateOption 调整 Estimate 的行为
type EstimateOption func(*estimateOptions)

// WithSamples 设置采样次数
func WithSamples(n int) EstimateOption {
	return func(o *estimateOptions) { o.samples = n }
}

// WithBatches 设置批次数，批次之间检查取消并让出调度
func WithBatches(n int) EstimateOption {
	return func(o *estimateOptions) { o.batches = n }
}

// WithTimeout 设置估计的最长时间，0 表示只受 ctx 控制
func WithTimeout(d time.Duration) EstimateOption {
	return func(o *estimateOptions) { o.timeout = d }
}

// WithSeed 固定随机数种子，使估计结果可复现
func WithSeed(seed1, seed2 uint64) EstimateOption {
	return func(o *estimateOptions) { o.seed = &[2]uint64{seed1, seed2} }
}

// WithEstimateConfig 使用 EstimateConfig 中的全部设置
func WithEstimateConfig(cfg EstimateConfig) EstimateOption {
	return func(o *estimateOptions) {
		o.samples = cfg.Samples
		o.batches = cfg.Batches
		o.timeout = cfg.Timeout
	}
}

// Estimate 通过反复求值估计表达式结果的分布
//
// 默认使用 DefaultEstimateConfig 的采样次数、批次数和超时。
// 采样被切分为若干批次，每批结束后检查 ctx 并调用 runtime.Gosched 让出调度。
// ctx 被取消或超时时不返回错误，而是返回已完成批次的统计并在 Status 中注明。
// 只有参数无效时才返回错误。
func Estimate(ctx context.Context, expr Expression, opts ...EstimateOption) (Distribution, error) {
	o := newEstimateOptions(opts)
	if expr == nil {
		return Distribution{}, errors.New("estimate: expression is nil")
	}
	if o.samples < 1 {
		return Distribution{}, fmt.Errorf("estimate: samples must be positive, got %d", o.samples)
	}
	if o.batches < 1 {
		return Distribution{}, fmt.Errorf("estimate: batches must be positive, got %d", o.batches)
	}
	o.batches = min(o.batches, o.samples)

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	var src *rand.Rand
	if o.seed != nil {
		src = rand.New(rand.NewPCG(o.seed[0], o.seed[1]))
	} else {
		src = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	lg := getLogger().With(zap.Stringer("expr", expr))
	start := time.Now()
	totals := make([]int64, 0, o.samples)
	status := StatusComplete
	per, extra := o.samples/o.batches, o.samples%o.batches

	for b := 0; b < o.batches; b++ {
		if err := ctx.Err(); err != nil {
			status = statusFromContext(err)
			break
		}
		n := per
		if b < extra {
			n++
		}
		for i := 0; i < n; i++ {
			totals = append(totals, expr.EvaluateWith(src).Total())
		}
		lg.Debug("estimate batch done", zap.Int("batch", b+1), zap.Int("batches", o.batches), zap.Int("samples", len(totals)))
		runtime.Gosched()
	}

	dist := summarize(totals)
	dist.Requested = o.samples
	dist.Status = status
	lg.Info("estimate finished",
		zap.Stringer("status", status),
		zap.Int("samples", dist.Samples),
		zap.String("mean", dist.Mean.StringFixed(4)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return dist, nil
}

func newEstimateOptions(opts []EstimateOption) estimateOptions {
	o := estimateOptions{
		samples: DefaultEstimateConfig.Samples,
		batches: DefaultEstimateConfig.Batches,
		timeout: DefaultEstimateConfig.Timeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func statusFromContext(err error) EstimateStatus {
	if errors.Is(err, context.DeadlineExceeded) {
		return StatusTimedOut
	}
	return StatusCancelled
}

// summarize 计算均值和百分位，totals 会被排序
func summarize(totals []int64) Distribution {
	d := Distribution{Samples: len(totals)}
	if len(totals) == 0 {
		return d
	}

	slices.Sort(totals)
	sum := decimal.Zero
	for _, v := range totals {
		sum = sum.Add(decimal.NewFromInt(v))
	}
	d.Mean = sum.Div(decimal.NewFromInt(int64(len(totals))))

	n := len(totals)
	d.Percentiles = make([]Percentile, len(PercentileRanks))
	for i, rank := range PercentileRanks {
		idx := (rank*n+99)/100 - 1
		idx = max(0, min(idx, n-1))
		d.Percentiles[i] = Percentile{Rank: rank, Value: totals[idx]}
	}
	return d
}
