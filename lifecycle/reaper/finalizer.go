package reaper

import (
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/krew-solutions/ascetic-lifecycle-go/internal/logx"
)

// finalizer holds one cleanup closure. Whichever path reaches it first, the
// collector or Dispose, runs the closure; the other finds the slot empty.
type finalizer struct {
	id      uuid.UUID
	cleanup atomic.Pointer[func()]
	logger  *slog.Logger
}

func newFinalizer(cleanup func(), logger *slog.Logger) *finalizer {
	f := &finalizer{id: uuid.Must(uuid.NewV7()), logger: logger}
	f.cleanup.Store(&cleanup)
	return f
}

// execute runs the cleanup at most once. A panic is logged and swallowed:
// on the collector path there is no caller to hand it to.
func (f *finalizer) execute(path string) {
	fn := f.cleanup.Swap(nil)
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("cleanup panicked",
				slog.String("registration", f.id.String()),
				slog.String("path", path),
				logx.Panic(r),
			)
		}
	}()
	(*fn)()
}

func (f *finalizer) executed() bool {
	return f.cleanup.Load() == nil
}
