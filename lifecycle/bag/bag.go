package bag

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/fogfish/opts"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/krew-solutions/ascetic-lifecycle-go/internal/logx"
	"github.com/krew-solutions/ascetic-lifecycle-go/lifecycle/disposable"
)

// Bag collects disposables from unrelated sources and releases them together
// at one teardown point. Members are deduplicated by identity and released
// in the order they were added. A Bag is reusable after Dispose.
//
// A Bag is not safe for concurrent use.
type Bag struct {
	items  *orderedmap.OrderedMap[disposable.Disposable, struct{}]
	logger *slog.Logger
}

type Option = opts.Option[Bag]

// WithLogger sets the logger used for rejected members and release failures.
func WithLogger(logger *slog.Logger) Option {
	return opts.Type[Bag](func(b *Bag) error {
		b.logger = logger
		return nil
	})
}

func New(options ...Option) *Bag {
	b := &Bag{items: orderedmap.New[disposable.Disposable, struct{}]()}
	if err := opts.Apply(b, options); err != nil {
		panic(err)
	}
	b.logger = logx.Named(b.logger, "bag")
	return b
}

// Add takes ownership of d. Adding a member twice is a no-op; nil and
// non-comparable values are rejected with a warning.
func (b *Bag) Add(d disposable.Disposable) {
	if !b.acceptable(d) {
		return
	}
	if !keyed(func() { b.items.Set(d, struct{}{}) }) {
		b.rejectUnhashable(d)
	}
}

// AddFunc wraps fn into a one-shot disposable, adds it and returns it so the
// caller can Remove it later.
func (b *Bag) AddFunc(fn func()) disposable.Disposable {
	if fn == nil {
		b.logger.Warn("nil func added to bag")
		return disposable.Noop()
	}
	d := disposable.NewDisposable(fn)
	b.items.Set(d, struct{}{})
	return d
}

// Remove hands d back to the caller without disposing it.
func (b *Bag) Remove(d disposable.Disposable) {
	if !hashable(d) {
		return
	}
	keyed(func() { b.items.Delete(d) })
}

func (b *Bag) Contains(d disposable.Disposable) bool {
	if !hashable(d) {
		return false
	}
	var ok bool
	keyed(func() { _, ok = b.items.Get(d) })
	return ok
}

func (b *Bag) Len() int {
	return b.items.Len()
}

// Dispose releases every member. A failing member is logged and does not
// keep the others from being released.
func (b *Bag) Dispose() {
	_ = b.release()
}

// Close is Dispose that also reports every failure, aggregated.
func (b *Bag) Close() error {
	return b.release()
}

func (b *Bag) release() error {
	if b.items.Len() == 0 {
		b.logger.Warn("dispose called on empty bag")
		return nil
	}

	// Drain first: members may Add or Remove while being released.
	snapshot := make([]disposable.Disposable, 0, b.items.Len())
	for pair := b.items.Oldest(); pair != nil; pair = pair.Next() {
		snapshot = append(snapshot, pair.Key)
	}
	b.items = orderedmap.New[disposable.Disposable, struct{}]()

	var result *multierror.Error
	for _, d := range snapshot {
		if err := b.releaseOne(d); err != nil {
			b.logger.Error("failed to release bag member",
				slog.String("member", fmt.Sprintf("%T", d)),
				logx.Error(err),
			)
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (b *Bag) releaseOne(d disposable.Disposable) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("dispose panicked: %v", r)
		}
	}()
	if c, ok := d.(errDisposable); ok {
		return c.disposeErr()
	}
	d.Dispose()
	return nil
}

func (b *Bag) acceptable(d disposable.Disposable) bool {
	if isNil(d) {
		b.logger.Warn("nil disposable added to bag")
		return false
	}
	if !hashable(d) {
		b.rejectUnhashable(d)
		return false
	}
	return true
}

func (b *Bag) rejectUnhashable(d disposable.Disposable) {
	b.logger.Warn("non-comparable disposable rejected by bag", slog.String("member", fmt.Sprintf("%T", d)))
}

// errDisposable is implemented by members whose release can fail with an
// error rather than a panic.
type errDisposable interface {
	disposable.Disposable
	disposeErr() error
}

func isNil(d disposable.Disposable) bool {
	if d == nil {
		return true
	}
	v := reflect.ValueOf(d)
	switch v.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func hashable(d disposable.Disposable) bool {
	return d != nil && reflect.TypeOf(d).Comparable()
}

// keyed runs a lookup or update of the member map and reports false when
// hashing the key panicked. A comparable struct type still panics when an
// interface field holds a func, map or slice.
func keyed(op func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	op()
	return true
}
