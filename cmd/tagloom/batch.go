package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tagloom/internal/engine"
)

var promptsFile string

var batchCmd = &cobra.Command{
	Use:   "batch [prompt]...",
	Short: "Run independent prompts concurrently",
	Long: `Fans out one conversation per prompt and aggregates the results in
prompt order. Prompts come from the arguments, or one per line from
--file. Follow-up questions cannot be answered in batch mode, so
conversations that ask one fail when their context ends.`,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&promptsFile, "file", "f", "", "read prompts from file, one per line")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	prompts := args
	if promptsFile != "" {
		fromFile, err := readPrompts(promptsFile)
		if err != nil {
			return err
		}
		prompts = append(prompts, fromFile...)
	}

	deps, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer deps.close()

	sink := &engine.CallbackSink{
		OnSubAgentStarted: func(ev engine.SubAgentEvent) {
			logger.Info("prompt started", zap.String("id", ev.ID))
		},
		OnSubAgentCompleted: func(ev engine.SubAgentEvent) {
			logger.Info("prompt completed",
				zap.String("id", ev.ID),
				zap.Duration("took", ev.EndedAt.Sub(ev.StartedAt)))
		},
		OnSubAgentFailed: func(ev engine.SubAgentEvent) {
			logger.Warn("prompt failed",
				zap.String("id", ev.ID),
				zap.String("error", ev.Error))
		},
	}

	fan := engine.NewFanOut(engine.FanOutConfig{
		Engine:      deps.engineConfig(),
		MaxParallel: cfg.Engine.MaxParallel,
	}, deps.provider, deps.registry, sink, deps.store, logger)

	started := time.Now()
	res, err := fan.Execute(ctx, prompts)
	if err != nil {
		return err
	}

	fmt.Println(res.Output)
	if !res.Success {
		return fmt.Errorf("all %d prompts failed (%.1fs)", len(prompts), time.Since(started).Seconds())
	}
	return nil
}

func readPrompts(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open prompts file: %w", err)
	}
	defer f.Close()

	var prompts []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			prompts = append(prompts, line)
		}
	}
	return prompts, scanner.Err()
}
