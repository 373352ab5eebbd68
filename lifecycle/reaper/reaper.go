package reaper

import (
	"log/slog"
	"reflect"
	"runtime"
	"sync"
	"weak"

	"github.com/fogfish/opts"
	"github.com/pkg/errors"

	"github.com/krew-solutions/ascetic-lifecycle-go/internal/logx"
	"github.com/krew-solutions/ascetic-lifecycle-go/lifecycle/disposable"
)

var (
	ErrNilOwner   = errors.New("reaper: owner is nil")
	ErrNilCleanup = errors.New("reaper: cleanup is nil")
)

const (
	pathCollected = "collected"
	pathDisposed  = "disposed"
)

type registration struct {
	fin     *finalizer
	passive runtime.Cleanup
}

// Reaper ties cleanup actions to the lifetime of owner objects it does not
// keep alive. A cleanup runs exactly once: when its owner is collected, or
// when the Reaper is disposed, whichever comes first.
//
// The collector path runs on a runtime goroutine, so cleanup closures must
// not depend on the goroutine that registered them. They also must not
// reference their owner, or the owner is never collected.
type Reaper struct {
	mu      sync.Mutex
	entries map[any]*registration
	logger  *slog.Logger
}

type Option = opts.Option[Reaper]

// WithLogger sets the logger used for cleanup panics.
func WithLogger(logger *slog.Logger) Option {
	return opts.Type[Reaper](func(r *Reaper) error {
		r.logger = logger
		return nil
	})
}

func New(options ...Option) *Reaper {
	r := &Reaper{entries: make(map[any]*registration)}
	if err := opts.Apply(r, options); err != nil {
		panic(err)
	}
	r.logger = logx.Named(r.logger, "reaper")
	return r
}

// Register associates cleanup with owner. If owner is already registered
// the call is a no-op and the first cleanup stays; combine cleanups into one
// closure beforehand when an owner needs several.
//
// The owner should be a heap object holding pointers or larger than 16
// bytes: tiny pointer-free allocations may be batched and never collected
// individually.
func Register[T any](r *Reaper, owner *T, cleanup func()) error {
	if owner == nil {
		return errors.WithStack(ErrNilOwner)
	}
	if cleanup == nil {
		return errors.WithStack(ErrNilCleanup)
	}

	key := weak.Make(owner)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[key]; exists {
		r.logger.Debug("owner already registered", logx.Type("owner", reflect.TypeFor[T]()))
		return nil
	}

	fin := newFinalizer(cleanup, r.logger)
	reg := &registration{fin: fin}
	reg.passive = runtime.AddCleanup(owner, reapCollected, collected{reaper: r, key: key, fin: fin})
	r.entries[key] = reg
	return nil
}

// RegisterDisposable disposes ds, in order, once owner is collected or r is
// disposed. Nil members are skipped.
func RegisterDisposable[T any](r *Reaper, owner *T, ds ...disposable.Disposable) error {
	members := make([]disposable.Disposable, 0, len(ds))
	for _, d := range ds {
		if d != nil {
			members = append(members, d)
		}
	}
	if len(members) == 0 {
		return errors.WithStack(ErrNilCleanup)
	}
	return Register(r, owner, disposable.NewCompositeDisposable(members...).Dispose)
}

// Unregister forgets owner without running its cleanup. It reports whether
// owner was registered.
func Unregister[T any](r *Reaper, owner *T) bool {
	if owner == nil {
		return false
	}
	key := weak.Make(owner)

	r.mu.Lock()
	reg, ok := r.entries[key]
	if ok {
		delete(r.entries, key)
	}
	r.mu.Unlock()

	if ok {
		reg.passive.Stop()
	}
	return ok
}

// Registered reports whether owner has a pending cleanup.
func Registered[T any](r *Reaper, owner *T) bool {
	if owner == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[weak.Make(owner)]
	return ok
}

// Len returns the number of pending registrations.
func (r *Reaper) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Dispose runs every pending cleanup now. The table is emptied before any
// cleanup runs, so cleanups never observe a half-cleared reaper. Calling
// Dispose again is a no-op until new owners are registered.
func (r *Reaper) Dispose() {
	r.mu.Lock()
	snapshot := make([]*registration, 0, len(r.entries))
	for _, reg := range r.entries {
		snapshot = append(snapshot, reg)
	}
	clear(r.entries)
	r.mu.Unlock()

	for _, reg := range snapshot {
		reg.passive.Stop()
		reg.fin.execute(pathDisposed)
	}
}

// forget drops the entry for key if it still belongs to fin.
func (r *Reaper) forget(key any, fin *finalizer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if reg, ok := r.entries[key]; ok && reg.fin == fin {
		delete(r.entries, key)
	}
}

// collected is the argument of the runtime cleanup. It must not reference
// the owner; the weak key does not count.
type collected struct {
	reaper *Reaper
	key    any
	fin    *finalizer
}

func reapCollected(c collected) {
	c.reaper.forget(c.key, c.fin)
	c.fin.execute(pathCollected)
}
