package container

import "sync"

// ── Slots ─────────────────────────────────────────────────────────────────────

// slot holds the providers of one identity. While an activation is in
// flight the list is checked out: present is false and owner records the
// resolution token that took it. held marks a list checked out by an open
// Services, which is only returned when the caller closes it.
type slot struct {
	providers []Provider
	present   bool
	owner     uint64
	held      bool
}

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry maps identities to their registered providers.
//
// Checkout empties a slot for the duration of an activation and reclaim puts
// the list back. A second checkout of the same slot before reclaim is how
// cycles are detected: the engine fails fast instead of recursing.
//
// In thread-safe mode a checkout that collides with a *different* call tree
// waits for the slot to be reclaimed, unless waiting would close a loop of
// call trees blocked on each other, in which case the cycle is reported.
// A slot held by an open Services never has a reclaim in sight, so colliding
// with it fails at once. The mutex is taken in both modes; threadSafe only
// selects between waiting and failing.
type ProviderRegistry struct {
	mu         sync.Mutex
	released   *sync.Cond
	threadSafe bool

	slots map[ServiceIdentity]*slot
	order []ServiceIdentity

	// token → identity it is blocked on, for every token of a waiting lineage
	waiting map[uint64]ServiceIdentity
}

func newProviderRegistry() *ProviderRegistry {
	r := &ProviderRegistry{
		slots:   make(map[ServiceIdentity]*slot),
		waiting: make(map[uint64]ServiceIdentity),
	}
	r.released = sync.NewCond(&r.mu)
	return r
}

// Register appends p to the providers of id, creating the slot if needed.
// Several providers per identity are legal (multi-binding) and are tried in
// registration order.
func (r *ProviderRegistry) Register(id ServiceIdentity, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok {
		s = &slot{present: true}
		r.slots[id] = s
		r.order = append(r.order, id)
	}
	s.providers = append(s.providers, p)
	s.present = true
}

// Merge appends every provider list of other to this registry, keeping the
// order of both. Only used while configuring.
func (r *ProviderRegistry) Merge(other *ProviderRegistry) {
	for _, id := range other.order {
		for _, p := range other.slots[id].providers {
			r.Register(id, p)
		}
	}
}

// remove drops an identity entirely and returns its providers.
func (r *ProviderRegistry) remove(id ServiceIdentity) []Provider {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok {
		return nil
	}
	delete(r.slots, id)
	for i, other := range r.order {
		if other == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return s.providers
}

// Has reports whether id was ever registered.
func (r *ProviderRegistry) Has(id ServiceIdentity) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.slots[id]
	return ok
}

// Len returns the number of registered identities.
func (r *ProviderRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.slots)
}

// Identities returns every registered identity in first-registration order.
func (r *ProviderRegistry) Identities() []ServiceIdentity {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ServiceIdentity, len(r.order))
	copy(out, r.order)
	return out
}

// ── Checkout / reclaim ────────────────────────────────────────────────────────

// checkout takes the provider list of id on behalf of rc's call tree. With
// hold the list is taken for an open Services.
func (r *ProviderRegistry) checkout(id ServiceIdentity, rc RequestContext, hold bool) ([]Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		s, ok := r.slots[id]
		if !ok {
			return nil, missingProvider(id)
		}
		if s.present {
			providers := s.providers
			s.providers = nil
			s.present = false
			s.owner = rc.token()
			s.held = hold
			return providers, nil
		}
		if !r.threadSafe || s.held || rc.descendsFrom(s.owner) || r.blockedBy(rc, s.owner) {
			return nil, cycleDetected(id)
		}

		r.markWaiting(rc, id)
		r.released.Wait()
		r.clearWaiting(rc, id)
	}
}

// reclaim returns providers to the slot of id.
func (r *ProviderRegistry) reclaim(id ServiceIdentity, providers []Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[id]
	if !ok {
		return internalError("activated provider for " + id.Name() + " is no longer registered")
	}
	if s.present {
		return internalError("another provider for " + id.Name() + " was added during its activation")
	}
	s.providers = providers
	s.present = true
	s.owner = 0
	s.held = false
	r.released.Broadcast()
	return nil
}

// blockedBy follows the wait-for chain starting at holder. It reports true
// when the chain leads back to rc's own call tree. Must hold mu.
func (r *ProviderRegistry) blockedBy(rc RequestContext, holder uint64) bool {
	t := holder
	for range len(r.slots) + 1 {
		if rc.descendsFrom(t) {
			return true
		}
		id, ok := r.waiting[t]
		if !ok {
			return false
		}
		s, ok := r.slots[id]
		if !ok || s.present {
			return false
		}
		t = s.owner
	}
	return false
}

func (r *ProviderRegistry) markWaiting(rc RequestContext, id ServiceIdentity) {
	for _, t := range rc.lineage {
		r.waiting[t] = id
	}
}

func (r *ProviderRegistry) clearWaiting(rc RequestContext, id ServiceIdentity) {
	for _, t := range rc.lineage {
		if r.waiting[t] == id {
			delete(r.waiting, t)
		}
	}
}
