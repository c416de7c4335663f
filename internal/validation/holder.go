package validation

import "sync/atomic"

// Holder shares the active Policy between goroutines so a config reload can
// swap it without restarting the server.
type Holder struct {
	current atomic.Pointer[Policy]
}

// NewHolder returns a Holder serving policy.
func NewHolder(policy *Policy) *Holder {
	h := &Holder{}
	h.current.Store(policy)
	return h
}

// Policy returns the active policy.
func (h *Holder) Policy() *Policy {
	return h.current.Load()
}

// Swap installs policy and returns the previous one.
func (h *Holder) Swap(policy *Policy) *Policy {
	return h.current.Swap(policy)
}
