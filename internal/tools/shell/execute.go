// Package shell provides the builtin command-execution tool.
package shell

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"

	"tagloom/internal/tools"
)

const (
	defaultTimeoutSeconds = 60
	maxOutputBytes        = 50000
)

// ExecuteCommandTool returns a tool for executing shell commands.
func ExecuteCommandTool() *tools.Tool {
	return &tools.Tool{
		Name:        "execute_command",
		Description: "Execute a shell command and return its output",
		Execute:     executeCommand,
		Schema: tools.Schema{
			Required: []string{"command"},
			Properties: map[string]tools.Property{
				"command": {
					Type:        "string",
					Description: "The command to execute",
				},
				"working_dir": {
					Type:        "string",
					Description: "Working directory for the command",
				},
				"timeout_seconds": {
					Type:        "integer",
					Description: "Timeout in seconds (default: 60)",
					Default:     defaultTimeoutSeconds,
				},
			},
		},
	}
}

func executeCommand(ctx context.Context, args map[string]any) (string, error) {
	command, _ := args["command"].(string)
	if command == "" {
		return "", fmt.Errorf("command is required")
	}

	workingDir, _ := args["working_dir"].(string)

	timeout := defaultTimeoutSeconds
	switch v := args["timeout_seconds"].(type) {
	case int:
		if v > 0 {
			timeout = v
		}
	case float64:
		if v > 0 {
			timeout = int(v)
		}
	}

	execCtx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(execCtx, "cmd", "/C", command)
	} else {
		cmd = exec.CommandContext(execCtx, "sh", "-c", command)
	}
	cmd.Dir = workingDir
	cmd.Env = os.Environ()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	output := stdout.String()
	if stderr.Len() > 0 {
		if output != "" {
			output += "\n--- stderr ---\n"
		}
		output += stderr.String()
	}
	if len(output) > maxOutputBytes {
		output = output[:maxOutputBytes] + "\n...[truncated]"
	}

	if err != nil {
		if execCtx.Err() == context.DeadlineExceeded {
			return output, fmt.Errorf("command timed out after %d seconds", timeout)
		}
		return output, fmt.Errorf("command failed: %w", err)
	}

	return output, nil
}
