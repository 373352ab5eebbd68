package disposable

// CompositeDisposable disposes its members in order, once.
type CompositeDisposable struct {
	once      *DisposableImp
	delegates []Disposable
}

func NewCompositeDisposable(delegates ...Disposable) *CompositeDisposable {
	c := &CompositeDisposable{delegates: delegates}
	c.once = NewDisposable(func() {
		members := c.delegates
		c.delegates = nil
		for _, d := range members {
			if d != nil {
				d.Dispose()
			}
		}
	})
	return c
}

func (c *CompositeDisposable) Dispose() {
	c.once.Dispose()
}
