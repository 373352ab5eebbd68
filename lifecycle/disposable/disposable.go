package disposable

import "sync/atomic"

// DisposableImp runs its release function at most once. The slot is cleared
// before the function runs, so a re-entrant or concurrent Dispose is a no-op.
type DisposableImp struct {
	fn atomic.Pointer[func()]
}

// NewDisposable wraps fn into a one-shot Disposable. A nil fn yields a
// disposable that does nothing.
func NewDisposable(fn func()) *DisposableImp {
	d := &DisposableImp{}
	if fn != nil {
		d.fn.Store(&fn)
	}
	return d
}

func (d *DisposableImp) Dispose() {
	fn := d.fn.Swap(nil)
	if fn == nil {
		return
	}
	(*fn)()
}

// IsDisposed reports whether the release function has been consumed.
func (d *DisposableImp) IsDisposed() bool {
	return d.fn.Load() == nil
}

// noop is not zero-sized: distinct zero-sized allocations may share an address.
type noop struct{ _ byte }

func (*noop) Dispose() {}

// Noop returns a Disposable that does nothing. Each call returns a distinct
// value so that noops never collide in identity-keyed sets.
func Noop() Disposable {
	return &noop{}
}

// Func adapts a plain function. Unlike NewDisposable it has no one-shot guard;
// idempotence is up to fn.
type Func func()

func (f Func) Dispose() {
	if f != nil {
		f()
	}
}
