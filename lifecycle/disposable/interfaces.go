package disposable

// Disposable releases whatever it was handed out for.
// Dispose must be safe to call more than once.
type Disposable interface {
	Dispose()
}
