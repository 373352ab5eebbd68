package reaper

import (
	"log/slog"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krew-solutions/ascetic-lifecycle-go/internal/testutils"
	"github.com/krew-solutions/ascetic-lifecycle-go/lifecycle/disposable"
)

// owner is big enough and holds a pointer, so it never lands in the tiny
// allocator and is collected on its own.
type owner struct {
	name    string
	payload [64]byte
}

func newTestReaper(t *testing.T) (*Reaper, *testutils.LogRecorder) {
	t.Helper()
	rec := testutils.NewLogRecorder()
	return New(WithLogger(rec.Logger())), rec
}

// registerDetached registers a fresh owner and lets it go out of scope.
func registerDetached(t *testing.T, r *Reaper, cleanup func()) {
	t.Helper()
	o := &owner{name: "detached"}
	require.NoError(t, Register(r, o, cleanup))
}

func collectUntil(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		runtime.GC()
		return cond()
	}, 5*time.Second, 10*time.Millisecond)
}

func TestRegister_CleanupRunsOnceAfterOwnerCollected(t *testing.T) {
	r, _ := newTestReaper(t)
	var runs atomic.Int32

	registerDetached(t, r, func() { runs.Add(1) })

	collectUntil(t, func() bool { return runs.Load() == 1 })
	assert.Equal(t, 0, r.Len())

	runtime.GC()
	r.Dispose()
	assert.Equal(t, int32(1), runs.Load())
}

func TestRegister_FirstRegistrationWins(t *testing.T) {
	r, _ := newTestReaper(t)
	o := &owner{name: "view"}
	var calls []string

	require.NoError(t, Register(r, o, func() { calls = append(calls, "c1") }))
	require.NoError(t, Register(r, o, func() { calls = append(calls, "c2") }))
	assert.Equal(t, 1, r.Len())

	r.Dispose()
	runtime.KeepAlive(o)

	assert.Equal(t, []string{"c1"}, calls)
}

func TestRegister_NilOwnerOrCleanup(t *testing.T) {
	r, _ := newTestReaper(t)

	err := Register[owner](r, nil, func() {})
	assert.True(t, errors.Is(err, ErrNilOwner))

	err = Register(r, &owner{}, nil)
	assert.True(t, errors.Is(err, ErrNilCleanup))

	err = RegisterDisposable(r, &owner{}, nil)
	assert.True(t, errors.Is(err, ErrNilCleanup))

	assert.Equal(t, 0, r.Len())
}

func TestUnregister_PreventsCleanup(t *testing.T) {
	r, _ := newTestReaper(t)
	var runs atomic.Int32
	o := &owner{name: "view"}

	require.NoError(t, Register(r, o, func() { runs.Add(1) }))
	assert.True(t, Registered(r, o))
	assert.True(t, Unregister(r, o))
	assert.False(t, Registered(r, o))
	assert.False(t, Unregister(r, o))
	assert.False(t, Unregister[owner](r, nil))

	r.Dispose()
	o = nil
	for range 3 {
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
	}

	assert.Equal(t, int32(0), runs.Load())
}

func TestDispose_RunsAllOnceAndEmpties(t *testing.T) {
	r, rec := newTestReaper(t)
	owners := []*owner{{name: "a"}, {name: "b"}, {name: "c"}}
	var runs atomic.Int32

	for i, o := range owners {
		if i == 1 {
			require.NoError(t, Register(r, o, func() { panic("cleanup failed") }))
			continue
		}
		require.NoError(t, Register(r, o, func() { runs.Add(1) }))
	}

	assert.NotPanics(t, r.Dispose)
	assert.Equal(t, int32(2), runs.Load())
	assert.Equal(t, 0, r.Len())

	errs := rec.AtLevel(slog.LevelError)
	require.Len(t, errs, 1)
	assert.Equal(t, "cleanup failed", errs[0].Attrs["panic"])
	assert.Equal(t, pathDisposed, errs[0].Attrs["path"])

	r.Dispose()
	assert.Equal(t, int32(2), runs.Load())
	runtime.KeepAlive(owners)
}

func TestDispose_CollectionAfterDisposeDoesNotRerun(t *testing.T) {
	r, _ := newTestReaper(t)
	var runs atomic.Int32

	registerDetached(t, r, func() { runs.Add(1) })
	r.Dispose()
	assert.Equal(t, int32(1), runs.Load())

	for range 3 {
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, int32(1), runs.Load())
}

func TestDispose_CleanupSeesEmptyReaper(t *testing.T) {
	r, _ := newTestReaper(t)
	o := &owner{name: "view"}
	observedLen := -1

	require.NoError(t, Register(r, o, func() { observedLen = r.Len() }))
	r.Dispose()
	runtime.KeepAlive(o)

	assert.Equal(t, 0, observedLen)
}

func TestDispose_ReusableAfterward(t *testing.T) {
	r, _ := newTestReaper(t)
	o := &owner{name: "view"}
	runs := 0

	require.NoError(t, Register(r, o, func() { runs++ }))
	r.Dispose()
	require.NoError(t, Register(r, o, func() { runs++ }))
	r.Dispose()
	runtime.KeepAlive(o)

	assert.Equal(t, 2, runs)
}

func TestPassiveCleanupPanicIsLogged(t *testing.T) {
	r, rec := newTestReaper(t)

	registerDetached(t, r, func() { panic("collector boom") })

	collectUntil(t, func() bool { return len(rec.AtLevel(slog.LevelError)) == 1 })
	entry := rec.AtLevel(slog.LevelError)[0]
	assert.Equal(t, "collector boom", entry.Attrs["panic"])
	assert.Equal(t, pathCollected, entry.Attrs["path"])
}

func TestRegisterDisposable_DisposesOnCollection(t *testing.T) {
	r, _ := newTestReaper(t)
	var runs atomic.Int32
	d := disposable.NewDisposable(func() { runs.Add(1) })

	func() {
		o := &owner{name: "holder"}
		require.NoError(t, RegisterDisposable(r, o, d))
	}()

	collectUntil(t, func() bool { return d.IsDisposed() })
	assert.Equal(t, int32(1), runs.Load())
}

func TestFinalizer_ExecuteOnce(t *testing.T) {
	runs := 0
	f := newFinalizer(func() { runs++ }, slog.Default())

	f.execute(pathDisposed)
	f.execute(pathCollected)

	assert.Equal(t, 1, runs)
	assert.True(t, f.executed())
}

func TestRegisterDisposable_DisposesAllMembersOnce(t *testing.T) {
	r, _ := newTestReaper(t)
	o := &owner{name: "table"}
	var order []string
	first := disposable.NewDisposable(func() { order = append(order, "first") })
	second := disposable.NewDisposable(func() { order = append(order, "second") })

	require.NoError(t, RegisterDisposable(r, o, first, nil, second))
	r.Dispose()
	r.Dispose()
	runtime.KeepAlive(o)

	assert.Equal(t, []string{"first", "second"}, order)
}
