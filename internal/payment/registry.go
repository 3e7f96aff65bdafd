package payment

// Registry holds the configuration-enabled providers. Build it once at
// startup and inject it; provider clients are never package-level state.
type Registry struct {
	order     []Kind
	providers map[Kind]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[Kind]Provider, len(providers))}
	for _, p := range providers {
		if _, dup := r.providers[p.Kind()]; dup {
			continue
		}
		r.order = append(r.order, p.Kind())
		r.providers[p.Kind()] = p
	}
	return r
}

func (r *Registry) Get(kind Kind) (Provider, bool) {
	p, ok := r.providers[kind]
	return p, ok
}

// Methods lists enabled providers in registration order for the selection
// page. Empty means the operator disabled everything; callers must refuse to
// proceed rather than silently offering no options.
func (r *Registry) Methods() []Method {
	out := make([]Method, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.providers[k].Method())
	}
	return out
}

func (r *Registry) Empty() bool { return len(r.providers) == 0 }
