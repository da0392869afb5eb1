package library

// registry is an insertion-ordered, name-keyed set of definitions.
type registry[D any] struct {
	entries map[string]D
	order   []string
}

func newRegistry[D any]() *registry[D] {
	return &registry[D]{entries: map[string]D{}}
}

// getOrInsert returns the definition registered under key, creating it with
// factory on first use. The second result reports whether it was created.
func getOrInsert[D any](r *registry[D], key string, factory func() D) (D, bool) {
	if d, ok := r.entries[key]; ok {
		return d, false
	}
	d := factory()
	r.entries[key] = d
	r.order = append(r.order, key)
	return d, true
}

func (r *registry[D]) get(key string) (D, bool) {
	d, ok := r.entries[key]
	return d, ok
}

func (r *registry[D]) size() int {
	return len(r.order)
}

// values returns the definitions in registration order.
func (r *registry[D]) values() []D {
	out := make([]D, len(r.order))
	for i, k := range r.order {
		out[i] = r.entries[k]
	}
	return out
}

// truncate drops every definition registered after the first n.
func (r *registry[D]) truncate(n int) {
	for _, k := range r.order[n:] {
		delete(r.entries, k)
	}
	r.order = r.order[:n]
}
