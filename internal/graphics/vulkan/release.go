package vulkan

// Releaser collects cleanup functions and runs them in reverse order. A
// constructor registers each object right after creating it and calls
// Release on any failure path; on success the Releaser moves into the
// owning value, whose Destroy calls Release. Every created object is
// therefore released exactly once.
type Releaser struct {
	fns []func()
}

// Defer registers fn to run on Release.
func (r *Releaser) Defer(fn func()) {
	r.fns = append(r.fns, fn)
}

// Release runs the registered functions last-in first-out and forgets them.
// Calling it again is a no-op.
func (r *Releaser) Release() {
	for i := len(r.fns) - 1; i >= 0; i-- {
		r.fns[i]()
	}
	r.fns = nil
}

// Len returns the number of pending releases.
func (r *Releaser) Len() int {
	return len(r.fns)
}
