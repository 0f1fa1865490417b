package platemap

import "sync"

// QueryHook is called after every query with the request and its result.
// Hooks run synchronously on the querying goroutine.
type QueryHook func(req Request, res Result)

// hooks manages query callbacks.
type hooks struct {
	mu      sync.RWMutex
	onQuery []QueryHook
}

func newHooks() *hooks {
	return &hooks{}
}

// OnQuery registers a callback fired after each query.
func (h *hooks) OnQuery(fn QueryHook) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onQuery = append(h.onQuery, fn)
}

func (h *hooks) triggerQuery(req Request, res Result) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onQuery {
		hook(req, res)
	}
}
