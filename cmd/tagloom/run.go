package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tagloom/internal/engine"
	"tagloom/internal/protocol"
)

var runCmd = &cobra.Command{
	Use:   "run [task]",
	Short: "Run a single task to completion",
	Long: `Runs one conversation for the given task. Follow-up questions from
the model are answered interactively on stdin; the final answer is
rendered to stdout.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTask,
}

func runTask(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	task := strings.Join(args, " ")

	deps, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer deps.close()

	var finalAnswer string
	stdin := bufio.NewReader(os.Stdin)
	sink := &engine.CallbackSink{
		OnThinking: func(text string) {
			logger.Debug("model thinking", zap.String("text", text))
		},
		OnToolCallFromAssistant: func(call engine.ToolInvocation) {
			fmt.Printf("→ %s\n", call.Name)
		},
		OnAnswerFromAssistant: func(text string) {
			finalAnswer = text
		},
	}

	eng := engine.New(deps.engineConfig(), deps.provider, deps.registry, sink, deps.store, logger)

	// Questions are answered on stdin. The gate submission happens from
	// this goroutine while Run blocks in its own.
	questions := make(chan protocol.FollowupQuestion, 1)
	sink.OnQuestionFromAssistant = func(q protocol.FollowupQuestion) {
		questions <- q
	}

	done := make(chan error, 1)
	go func() { done <- eng.Run(ctx, task) }()

	for {
		select {
		case q := <-questions:
			fmt.Printf("\n? %s\n", q.Question)
			for i, opt := range q.Options {
				fmt.Printf("  %d. %s\n", i+1, opt)
			}
			fmt.Print("> ")
			line, readErr := stdin.ReadString('\n')
			if readErr != nil {
				stop()
				continue
			}
			if err := eng.AnswerFromUser(strings.TrimSpace(line)); err != nil {
				logger.Warn("could not submit answer", zap.Error(err))
			}
		case err := <-done:
			if err != nil {
				return err
			}
			if eng.State() == engine.StateExhausted {
				fmt.Println("Stopped: iteration budget exhausted without a final answer.")
				return nil
			}
			return renderAnswer(finalAnswer)
		}
	}
}

// renderAnswer pretty-prints the answer as markdown, falling back to
// plain text when rendering fails.
func renderAnswer(answer string) error {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err == nil {
		if out, renderErr := renderer.Render(answer); renderErr == nil {
			fmt.Print(out)
			return nil
		}
	}
	fmt.Println(answer)
	return nil
}
