package common

import (
	"github.com/spf13/afero"

	"mediac/internal/infra/logging"
)

type contextKey string

const ContextKeyApp contextKey = "appctx"

// GlobalOptions are the flags shared by every command. DoIt false means dry
// run: nothing on disk changes.
type GlobalOptions struct {
	DoIt    bool
	Yes     bool
	Debug   bool
	JSON    bool
	NoOpLog bool
	Jobs    int
}

// ConfirmFunc presents the pre-mutation preview and returns the operator's
// yes/no answer. Injected so services stay testable without a TTY.
type ConfirmFunc func(summary string) (bool, error)

// AppContext carries per-invocation state down to the services.
type AppContext struct {
	Options   GlobalOptions
	Protected []string
	Logger    logging.Logger
	Fs        afero.Fs
	Confirm   ConfirmFunc
}
