package observable

import (
	"fmt"

	"github.com/krew-solutions/ascetic-lifecycle-go/lifecycle/signals"
)

// Value holds a value and tells listeners when it changes.
type Value[T comparable] struct {
	value T

	// OnValueChanged receives the old and the new value.
	OnValueChanged *signals.Signal2[T, T]
}

func NewValue[T comparable](initial T) *Value[T] {
	return &Value[T]{value: initial, OnValueChanged: signals.NewSignal2[T, T]()}
}

func (v *Value[T]) Get() T {
	return v.value
}

// Set stores value and notifies listeners, unless value equals the current one.
func (v *Value[T]) Set(value T) {
	if v.value == value {
		return
	}
	old := v.value
	v.value = value
	v.OnValueChanged.Invoke(old, value)
}

// SetSilently stores value without notifying anyone.
func (v *Value[T]) SetSilently(value T) {
	v.value = value
}

func (v *Value[T]) String() string {
	return fmt.Sprint(v.value)
}
