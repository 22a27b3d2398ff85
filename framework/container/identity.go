package container

import "reflect"

// ServiceIdentity identifies a requested type. Two identities are equal when
// they describe the same Go type; the display name is derived from the type
// and only used for diagnostics.
//
//	id := container.IdentityOf[*UserRepository]()
//	id.Name() // "*github.com/acme/app/repo.UserRepository"
type ServiceIdentity struct {
	typ reflect.Type
}

// IdentityOf returns the identity of the static type T. Interface types are
// supported: IdentityOf[io.Reader]() identifies the interface itself.
func IdentityOf[T any]() ServiceIdentity {
	return ServiceIdentity{typ: reflect.TypeFor[T]()}
}

// IdentityFor returns the identity of t.
func IdentityFor(t reflect.Type) ServiceIdentity {
	return ServiceIdentity{typ: t}
}

// Type returns the underlying reflect.Type (nil for the zero identity).
func (id ServiceIdentity) Type() reflect.Type { return id.typ }

// IsZero reports whether id was never assigned a type.
func (id ServiceIdentity) IsZero() bool { return id.typ == nil }

// Name returns the package-qualified type name, e.g. "*net/http.Client".
func (id ServiceIdentity) Name() string {
	if id.typ == nil {
		return "<nil>"
	}
	return qualifiedName(id.typ)
}

func (id ServiceIdentity) String() string { return id.Name() }

// qualifiedName prefixes named types with their full import path so two
// packages exporting a "Config" never collide in parameter keys.
func qualifiedName(t reflect.Type) string {
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	switch t.Kind() {
	case reflect.Pointer:
		return "*" + qualifiedName(t.Elem())
	case reflect.Slice:
		return "[]" + qualifiedName(t.Elem())
	case reflect.Map:
		return "map[" + qualifiedName(t.Key()) + "]" + qualifiedName(t.Elem())
	}
	return t.String()
}
