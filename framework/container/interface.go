package container

import (
	"reflect"
	"slices"
)

// Declarer accepts interface declarations. Builder and Module implement it.
type Declarer interface {
	DeclareInterface(iface ServiceIdentity, impls ...ServiceIdentity)
}

// Implements declares the closed set of concrete types that may satisfy
// requests for interface I. Order matters: a produced value is matched
// against the list front to back.
//
//	container.Implements[Greeter](b,
//	    container.IdentityOf[*English](),
//	    container.IdentityOf[*French](),
//	)
func Implements[I any](d Declarer, impls ...ServiceIdentity) {
	d.DeclareInterface(IdentityOf[I](), impls...)
}

// interfaceTable maps an interface identity to its declared implementers.
type interfaceTable map[ServiceIdentity][]ServiceIdentity

func (t interfaceTable) declare(iface ServiceIdentity, impls ...ServiceIdentity) {
	for _, impl := range impls {
		if !slices.Contains(t[iface], impl) {
			t[iface] = append(t[iface], impl)
		}
	}
}

func (t interfaceTable) merge(other interfaceTable) {
	for iface, impls := range other {
		t.declare(iface, impls...)
	}
}

func (t interfaceTable) clone() interfaceTable {
	out := make(interfaceTable, len(t))
	for iface, impls := range t {
		out[iface] = slices.Clone(impls)
	}
	return out
}

// conform checks a produced value against the identity it was requested for.
//
// For declared interfaces the dynamic type must be one of the declared
// implementers and must actually implement the interface. Everything else
// only needs to be assignable to the requested type.
func (t interfaceTable) conform(id ServiceIdentity, v any) (any, error) {
	if v == nil {
		return nil, invalidProvider(id)
	}
	dynamic := reflect.TypeOf(v)

	if impls, ok := t[id]; ok {
		for _, impl := range impls {
			if impl.typ != dynamic {
				continue
			}
			if !dynamic.AssignableTo(id.typ) {
				return nil, invalidImplementation(id, impl)
			}
			return v, nil
		}
		return nil, missingProvider(id)
	}

	if !dynamic.AssignableTo(id.typ) {
		return nil, invalidProvider(id)
	}
	return v, nil
}

// as converts a conformed value to T. A plain type assertion is not enough
// when T is an unnamed type and v holds a named type with the same underlying
// type.
func as[T any](v any) T {
	if typed, ok := v.(T); ok {
		return typed
	}
	var out T
	reflect.ValueOf(&out).Elem().Set(reflect.ValueOf(v))
	return out
}
