package core

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.txt")
	if err := os.WriteFile(path, []byte("one\ntwo\nthree\nfour"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := executeReadFile(context.Background(), map[string]any{"path": path})
	if err != nil {
		t.Fatalf("read_file failed: %v", err)
	}
	if got != "one\ntwo\nthree\nfour" {
		t.Errorf("got %q", got)
	}
}

func TestReadFile_LineRange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.txt")
	if err := os.WriteFile(path, []byte("one\ntwo\nthree\nfour"), 0o644); err != nil {
		t.Fatal(err)
	}

	// Protocol-decoded numbers arrive as float64.
	got, err := executeReadFile(context.Background(), map[string]any{
		"path":       path,
		"start_line": float64(2),
		"end_line":   float64(3),
	})
	if err != nil {
		t.Fatalf("read_file failed: %v", err)
	}
	if got != "two\nthree" {
		t.Errorf("got %q, want %q", got, "two\nthree")
	}
}

func TestReadFile_MissingPath(t *testing.T) {
	if _, err := executeReadFile(context.Background(), map[string]any{}); err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestWriteFile_CreatesParentDirs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deep", "out.txt")

	msg, err := executeWriteFile(context.Background(), map[string]any{
		"path":    path,
		"content": "hello",
	})
	if err != nil {
		t.Fatalf("write_file failed: %v", err)
	}
	if !strings.Contains(msg, "5 bytes") {
		t.Errorf("unexpected message: %q", msg)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("file content = %q", data)
	}
}

func TestListFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "b.txt"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "a"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := executeListFiles(context.Background(), map[string]any{"path": dir})
	if err != nil {
		t.Fatalf("list_files failed: %v", err)
	}
	if got != "a/\nb.txt" {
		t.Errorf("got %q", got)
	}
}

func TestRegisterAll(t *testing.T) {
	reg := newTestRegistry(t)
	for _, name := range []string{"read_file", "write_file", "list_files"} {
		if !reg.Has(name) {
			t.Errorf("tool %s not registered", name)
		}
	}
}
