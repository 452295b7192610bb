package tools

import (
	"context"
	"errors"
	"testing"
)

func newTool(name string) *Tool {
	return &Tool{
		Name:        name,
		Description: "a test tool",
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			return "ok", nil
		},
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry(nil)
	if reg == nil {
		t.Fatal("NewRegistry returned nil")
	}
	if reg.Count() != 0 {
		t.Errorf("new registry should be empty, got %d tools", reg.Count())
	}
}

func TestRegisterAndGet(t *testing.T) {
	reg := NewRegistry(nil)

	if err := reg.Register(newTool("test_tool")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got := reg.Get("test_tool")
	if got == nil {
		t.Fatal("Get returned nil for registered tool")
	}
	if got.Name != "test_tool" {
		t.Errorf("got name %q, want %q", got.Name, "test_tool")
	}
	if !reg.Has("test_tool") {
		t.Error("Has returned false for registered tool")
	}
	if reg.Has("other") {
		t.Error("Has returned true for unregistered tool")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	reg := NewRegistry(nil)

	if err := reg.Register(newTool("dupe")); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	err := reg.Register(newTool("dupe"))
	if !errors.Is(err, ErrToolAlreadyRegistered) {
		t.Fatalf("expected ErrToolAlreadyRegistered, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	reg := NewRegistry(nil)

	tests := []struct {
		name    string
		tool    *Tool
		wantErr error
	}{
		{
			name:    "empty name",
			tool:    &Tool{Execute: func(ctx context.Context, args map[string]any) (string, error) { return "", nil }},
			wantErr: ErrToolNameEmpty,
		},
		{
			name:    "nil execute",
			tool:    &Tool{Name: "no_exec"},
			wantErr: ErrToolExecuteNil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reg.Register(tt.tool)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNames(t *testing.T) {
	reg := NewRegistry(nil)
	for _, n := range []string{"charlie", "alpha", "bravo"} {
		if err := reg.Register(newTool(n)); err != nil {
			t.Fatalf("Register(%s) failed: %v", n, err)
		}
	}
	names := reg.Names()
	want := []string{"alpha", "bravo", "charlie"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestExecute(t *testing.T) {
	reg := NewRegistry(nil)
	reg.MustRegister(&Tool{
		Name: "echo",
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			msg, _ := args["message"].(string)
			return msg, nil
		},
		Schema: Schema{Required: []string{"message"}},
	})

	result, err := reg.Execute(context.Background(), "echo", map[string]any{"message": "hi"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.Output != "hi" || !result.Success() {
		t.Errorf("result = %+v", result)
	}
}

func TestExecute_NotFound(t *testing.T) {
	reg := NewRegistry(nil)
	_, err := reg.Execute(context.Background(), "ghost", nil)
	if !errors.Is(err, ErrToolNotFound) {
		t.Fatalf("expected ErrToolNotFound, got %v", err)
	}
}

func TestExecute_MissingRequiredArg(t *testing.T) {
	reg := NewRegistry(nil)
	reg.MustRegister(&Tool{
		Name: "needs_path",
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			return "", nil
		},
		Schema: Schema{Required: []string{"path"}},
	})

	result, err := reg.Execute(context.Background(), "needs_path", map[string]any{})
	if !errors.Is(err, ErrMissingRequiredArg) {
		t.Fatalf("expected ErrMissingRequiredArg, got %v", err)
	}
	if result == nil || result.Success() {
		t.Errorf("result should carry the failure, got %+v", result)
	}
}

func TestExecute_ToolFailureSurfacedUnmodified(t *testing.T) {
	reg := NewRegistry(nil)
	toolErr := errors.New("disk full")
	reg.MustRegister(&Tool{
		Name: "fails",
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			return "partial", toolErr
		},
	})

	result, err := reg.Execute(context.Background(), "fails", nil)
	if !errors.Is(err, toolErr) {
		t.Fatalf("expected the tool's own error, got %v", err)
	}
	if result.Err != toolErr || result.Output != "partial" {
		t.Errorf("result = %+v", result)
	}
}
