// Package main 是掷骰表达式的命令行入口
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sheyiyuan/dndice"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	var expr string
	var estimate string
	var jsonOutput bool
	var verbose bool

	flag.StringVar(&expr, "e", "", "roll a single expression and exit")
	flag.StringVar(&estimate, "est", "", "estimate the distribution of an expression and exit")
	flag.BoolVar(&jsonOutput, "json", false, "output JSON records")
	flag.BoolVar(&verbose, "v", false, "enable debug logging")
	flag.Parse()

	logger, err := newLogger(verbose)
	if err != nil {
		exitf("Error: build logger: %v", err)
	}
	defer logger.Sync()
	dndice.SetLogger(logger)

	limits, err := dndice.LoadLimitsFromEnv()
	if err != nil {
		exitf("Error: load limits: %v", err)
	}
	estCfg, err := dndice.LoadEstimateConfigFromEnv()
	if err != nil {
		exitf("Error: load estimate config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch {
	case expr != "":
		if err := roll(expr, limits, jsonOutput); err != nil {
			exitf("Error: %v", err)
		}
	case estimate != "":
		if err := runEstimate(ctx, estimate, limits, estCfg, jsonOutput); err != nil {
			exitf("Error: %v", err)
		}
	default:
		opts := dndice.REPLOptions{Limits: limits, Estimate: estCfg, JSON: jsonOutput}
		if err := dndice.RunREPL(ctx, os.Stdin, os.Stdout, opts); err != nil {
			exitf("Error: %v", err)
		}
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.DisableStacktrace = true
	return cfg.Build()
}

func roll(text string, limits dndice.Limits, jsonOutput bool) error {
	if jsonOutput {
		rec := dndice.NewRollRecord(text, limits)
		if err := printJSON(rec); err != nil {
			return err
		}
		if rec.Error != "" {
			return errors.New(rec.Error)
		}
		return nil
	}
	expr, err := dndice.ParseWithLimits(dndice.Preprocess(text), limits)
	if err != nil {
		return err
	}
	fmt.Println(expr.Evaluate().FullResult())
	return nil
}

func runEstimate(ctx context.Context, text string, limits dndice.Limits, cfg dndice.EstimateConfig, jsonOutput bool) error {
	expr, err := dndice.ParseWithLimits(dndice.Preprocess(text), limits)
	if err != nil {
		return err
	}
	d, err := dndice.Estimate(ctx, expr, dndice.WithEstimateConfig(cfg))
	if err != nil {
		return fmt.Errorf("estimate: %w", err)
	}
	if jsonOutput {
		return printJSON(dndice.NewEstimateRecord(text, expr, d))
	}
	fmt.Printf("%s: %s\n", expr, d)
	return nil
}

func printJSON(v any) error {
	b, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	fmt.Println(string(b))
	return nil
}

// exitf 把错误信息写到标准错误并以状态码 1 退出
func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
