package container

import (
	"maps"
	"sync/atomic"
)

// RequestContext describes an in-flight resolution: the chain of services
// currently being activated and the scoped parameters visible to them.
//
// A RequestContext is a value. Every With* method returns a modified copy and
// leaves the receiver untouched, so a child can shadow a parameter without the
// parent ever observing it.
type RequestContext struct {
	path    []ServiceIdentity
	params  map[string]any
	lineage []uint64
}

var tokens atomic.Uint64

func nextToken() uint64 { return tokens.Add(1) }

// NewRequestContext returns an empty root context.
func NewRequestContext() RequestContext {
	return RequestContext{}
}

// Path returns the services being activated, outermost first. Services can use
// it to configure themselves based on what they are injected into.
func (rc RequestContext) Path() []ServiceIdentity {
	out := make([]ServiceIdentity, len(rc.path))
	copy(out, rc.path)
	return out
}

// Parent returns the innermost service being activated.
func (rc RequestContext) Parent() (ServiceIdentity, bool) {
	if len(rc.path) == 0 {
		return ServiceIdentity{}, false
	}
	return rc.path[len(rc.path)-1], true
}

// WithRequest returns a child context with id appended to the path.
func (rc RequestContext) WithRequest(id ServiceIdentity) RequestContext {
	path := make([]ServiceIdentity, len(rc.path), len(rc.path)+1)
	copy(path, rc.path)
	rc.path = append(path, id)
	return rc
}

// Parameter returns the value stored under key.
func (rc RequestContext) Parameter(key string) (any, bool) {
	v, ok := rc.params[key]
	return v, ok
}

// WithParameter returns a copy of rc with key set to value.
func (rc RequestContext) WithParameter(key string, value any) RequestContext {
	params := make(map[string]any, len(rc.params)+1)
	maps.Copy(params, rc.params)
	params[key] = value
	rc.params = params
	return rc
}

// WithoutParameter returns a copy of rc with key removed.
func (rc RequestContext) WithoutParameter(key string) RequestContext {
	if _, ok := rc.params[key]; !ok {
		return rc
	}
	params := maps.Clone(rc.params)
	delete(params, key)
	rc.params = params
	return rc
}

// Parameters returns a copy of every parameter visible to rc.
func (rc RequestContext) Parameters() map[string]any {
	if rc.params == nil {
		return map[string]any{}
	}
	return maps.Clone(rc.params)
}

// fork returns rc stamped with a fresh resolution token that remembers the
// tokens of every enclosing resolution. Slots checked out under an ancestor
// token belong to the same logical call tree.
func (rc RequestContext) fork() RequestContext {
	lineage := make([]uint64, len(rc.lineage), len(rc.lineage)+1)
	copy(lineage, rc.lineage)
	rc.lineage = append(lineage, nextToken())
	return rc
}

// token is the resolution token of rc, 0 when rc was never forked.
func (rc RequestContext) token() uint64 {
	if len(rc.lineage) == 0 {
		return 0
	}
	return rc.lineage[len(rc.lineage)-1]
}

// descendsFrom reports whether t is rc's token or one of its ancestors.
func (rc RequestContext) descendsFrom(t uint64) bool {
	if t == 0 {
		return false
	}
	for _, own := range rc.lineage {
		if own == t {
			return true
		}
	}
	return false
}
