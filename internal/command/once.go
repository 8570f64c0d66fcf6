package command

import "fmt"

// Once holds a value computed at most once per run of the command it was
// registered with. The builder re-arms it every time the built command
// initializes, so closures inside the composition observe a fresh value on
// each run but a stable one within a run.
type Once[T any] struct {
	compute func() T
	val     T
	done    bool
}

// Get returns the per-run value, computing it on first use within a run.
func (o *Once[T]) Get() T {
	if !o.done {
		o.val = o.compute()
		o.done = true
	}
	return o.val
}

func (o *Once[T]) reset() {
	var zero T
	o.val = zero
	o.done = false
}

// OnceDuringRun registers a per-run cached value with b. Must be called
// while the builder is still mutable.
func OnceDuringRun[T any](b *Builder, compute func() T) *Once[T] {
	b.checkMutable("OnceDuringRun")
	if compute == nil {
		panic(fmt.Sprintf("command builder '%s': OnceDuringRun given a nil compute func", b.name))
	}
	o := &Once[T]{compute: compute}
	b.resets = append(b.resets, o.reset)
	return o
}
