// Package funcid derives identity keys for function values.
package funcid

import (
	"reflect"
	"unsafe"
)

// Of returns the address of the closure behind fn, or 0 for a nil or
// non-function value. Two copies of the same function value share an
// address. Closures that capture variables get their own address even when
// built from one literal; a literal capturing nothing is one static value.
func Of[F any](fn F) uintptr {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return 0
	}
	return *(*uintptr)(unsafe.Pointer(&fn))
}

// Key resolves the identity used to register fn: the explicit key when one
// is given, otherwise the closure address.
func Key[F any](fn F, explicit []any) any {
	if len(explicit) > 0 && explicit[0] != nil {
		return explicit[0]
	}
	return Of(fn)
}

// IsNil reports whether fn is a nil function.
func IsNil[F any](fn F) bool {
	return Of(fn) == 0
}
