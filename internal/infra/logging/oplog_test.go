package logging

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediac/internal/domain/model"
)

func TestNewOperationLoggerDisabled(t *testing.T) {
	l, err := NewOperationLogger(context.Background(), true)
	if err != nil {
		t.Fatalf("NewOperationLogger: %v", err)
	}
	if l.Path() != "" {
		t.Errorf("disabled logger has path %q", l.Path())
	}
	if err := l.Log(context.Background(), model.OperationLogEntry{}); err != nil {
		t.Errorf("noop Log: %v", err)
	}
}

func TestOperationLoggerWritesJSONLines(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	l, err := NewOperationLogger(context.Background(), false)
	if err != nil {
		t.Fatalf("NewOperationLogger: %v", err)
	}
	if !strings.Contains(l.Path(), filepath.Join("mediac", "operations-")) {
		t.Errorf("log path %s", l.Path())
	}

	entries := []model.OperationLogEntry{
		{Command: "remove", Action: "add", Source: "/a.jpg", Result: "evaluated"},
		{Command: "remove", Action: "execute", Source: "/a.jpg", Result: "success"},
	}
	for _, e := range entries {
		if err := l.Log(context.Background(), e); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	f, err := os.Open(l.Path())
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()

	var got []model.OperationLogEntry
	s := bufio.NewScanner(f)
	for s.Scan() {
		var e model.OperationLogEntry
		if err := json.Unmarshal(s.Bytes(), &e); err != nil {
			t.Fatalf("line not JSON: %v", err)
		}
		got = append(got, e)
	}
	if len(got) != 2 {
		t.Fatalf("got %d lines, want 2", len(got))
	}
	if got[0].Action != "add" || got[1].Action != "execute" {
		t.Errorf("entries out of order: %+v", got)
	}
	if got[0].Timestamp.IsZero() {
		t.Error("timestamp not defaulted")
	}
}
