package container

import (
	"fmt"
	"reflect"
)

var errorType = reflect.TypeFor[error]()

// Func turns an ordinary constructor function into a Constructor[T].
//
// Every parameter of fn is a request: a service type, one of the request
// wrappers (Optional, Owned, All, AllOwned, *Services, Arg, Factory), an
// *Injector or a RequestContext. Parameters are resolved left to right
// against the same context. fn returns T, or (T, error) in which case the
// constructor is wrapped with Fallible.
//
//	func NewUserService(repo *UserRepo, mail container.Optional[Mailer]) *UserService
//
//	b.Provide(container.NewSingleton(container.Func[*UserService](NewUserService)))
//
// A fn that does not have this form produces a constructor that always fails
// with InvalidProvider.
func Func[T any](fn any) Constructor[T] {
	fv := reflect.ValueOf(fn)
	if err := checkFunc(fv, reflect.TypeFor[T]()); err != nil {
		id := IdentityOf[T]()
		return func(*Injector, RequestContext) (T, error) {
			var zero T
			return zero, &InjectError{Kind: KindInvalidProvider, Service: id, Cause: err}
		}
	}

	ft := fv.Type()
	c := func(inj *Injector, rc RequestContext) (T, error) {
		var out T
		args := make([]reflect.Value, ft.NumIn())
		for i := range args {
			arg := reflect.New(ft.In(i)).Elem()
			if err := resolveInto(inj, rc, arg); err != nil {
				return out, err
			}
			args[i] = arg
		}

		results := fv.Call(args)
		if len(results) == 2 && !results[1].IsNil() {
			return out, results[1].Interface().(error)
		}
		reflect.ValueOf(&out).Elem().Set(results[0])
		return out, nil
	}

	if ft.NumOut() == 2 {
		return Fallible(c)
	}
	return c
}

func checkFunc(fv reflect.Value, result reflect.Type) error {
	if !fv.IsValid() || fv.Kind() != reflect.Func || fv.IsNil() {
		return fmt.Errorf("constructor for %s is not a function", IdentityFor(result))
	}
	ft := fv.Type()
	if ft.IsVariadic() {
		return fmt.Errorf("constructor %s is variadic", ft)
	}
	switch ft.NumOut() {
	case 1:
	case 2:
		if ft.Out(1) != errorType {
			return fmt.Errorf("second result of constructor %s is not error", ft)
		}
	default:
		return fmt.Errorf("constructor %s must return one value and an optional error", ft)
	}
	if !ft.Out(0).AssignableTo(result) {
		return fmt.Errorf("constructor %s does not produce %s", ft, IdentityFor(result))
	}
	return nil
}

// Transient returns a provider that calls fn for every request of T.
//
//	b.Provide(container.Transient[*Handler](NewHandler))
func Transient[T any](fn any) *TransientProvider[T] {
	return NewTransient(Func[T](fn))
}

// Singleton returns a provider that calls fn once and caches the T.
//
//	b.Provide(container.Singleton[*sql.DB](OpenDatabase))
func Singleton[T any](fn any) *SingletonProvider[T] {
	return NewSingleton(Func[T](fn))
}
