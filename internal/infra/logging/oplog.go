package logging

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"mediac/internal/domain/model"
)

// Logger is the append-only audit log: one JSON line per significant event.
// The core never deletes the log file.
type Logger interface {
	Log(ctx context.Context, entry model.OperationLogEntry) error
	Path() string
}

type noopLogger struct{}

func (noopLogger) Log(context.Context, model.OperationLogEntry) error { return nil }
func (noopLogger) Path() string                                       { return "" }

func NewNoopLogger() Logger { return noopLogger{} }

type operationLogger struct {
	mu   sync.Mutex
	file *os.File
	path string
}

// NewOperationLogger opens (or creates) the audit log under
// XDG_CONFIG_HOME/mediac. The filename carries the process start timestamp so
// concurrent invocations never interleave.
func NewOperationLogger(ctx context.Context, disabled bool) (Logger, error) {
	if disabled {
		return noopLogger{}, nil
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configHome = filepath.Join(home, ".config")
	}

	dir := filepath.Join(configHome, "mediac")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	name := "operations-" + time.Now().Format("20060102-150405") + ".log"
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}

	_ = ctx
	return &operationLogger{file: f, path: path}, nil
}

func (l *operationLogger) Path() string { return l.path }

func (l *operationLogger) Log(_ context.Context, entry model.OperationLogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	_, err = l.file.Write(append(b, '\n'))
	return err
}
