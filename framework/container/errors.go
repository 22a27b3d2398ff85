package container

import (
	"errors"
	"strconv"
	"strings"
)

// ErrorKind classifies an InjectError.
type ErrorKind int

const (
	// KindMissingProvider: no registration exists for the requested identity.
	KindMissingProvider ErrorKind = iota + 1
	// KindMissingDependency: a nested dependency of Service has no provider.
	KindMissingDependency
	// KindCycleDetected: re-entrant activation of the same identity.
	KindCycleDetected
	// KindInvalidImplementation: a value is not a valid implementer of an interface.
	KindInvalidImplementation
	// KindInvalidProvider: a provider produced a value of the wrong type.
	KindInvalidProvider
	// KindMultipleProviders: a single-value request matched several providers.
	KindMultipleProviders
	// KindOwnedNotSupported: the provider only hands out shared instances.
	KindOwnedNotSupported
	// KindConditionsNotMet: internal skip signal of conditional providers.
	KindConditionsNotMet
	// KindActivationFailed: a fallible constructor failed; see Cause.
	KindActivationFailed
	// KindInternalError: a violated engine invariant.
	KindInternalError
)

var kindNames = map[ErrorKind]string{
	KindMissingProvider:       "missing provider",
	KindMissingDependency:     "missing dependency",
	KindCycleDetected:         "cycle detected",
	KindInvalidImplementation: "invalid implementation",
	KindInvalidProvider:       "invalid provider",
	KindMultipleProviders:     "multiple providers",
	KindOwnedNotSupported:     "owned not supported",
	KindConditionsNotMet:      "conditions not met",
	KindActivationFailed:      "activation failed",
	KindInternalError:         "internal error",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown(" + strconv.Itoa(int(k)) + ")"
}

// Sentinels for errors.Is. Matching is by kind only:
//
//	if errors.Is(err, container.ErrCycleDetected) { ... }
var (
	ErrMissingProvider       = &InjectError{Kind: KindMissingProvider}
	ErrMissingDependency     = &InjectError{Kind: KindMissingDependency}
	ErrCycleDetected         = &InjectError{Kind: KindCycleDetected}
	ErrInvalidImplementation = &InjectError{Kind: KindInvalidImplementation}
	ErrInvalidProvider       = &InjectError{Kind: KindInvalidProvider}
	ErrMultipleProviders     = &InjectError{Kind: KindMultipleProviders}
	ErrOwnedNotSupported     = &InjectError{Kind: KindOwnedNotSupported}
	ErrConditionsNotMet      = &InjectError{Kind: KindConditionsNotMet}
	ErrActivationFailed      = &InjectError{Kind: KindActivationFailed}
	ErrInternal              = &InjectError{Kind: KindInternalError}
)

// Causes attached to ActivationFailed when an Arg[T] cannot be satisfied.
var (
	ErrNoParentRequest      = errors.New("no parent request was found")
	ErrMissingParameter     = errors.New("no value assigned for this argument")
	ErrParameterTypeInvalid = errors.New("argument value is the wrong type")
)

// InjectError is returned by every failing resolution. Only the fields that
// make sense for Kind are populated.
type InjectError struct {
	Kind ErrorKind

	// Service is the identity the error is about.
	Service ServiceIdentity

	// Dependency is the missing identity (MissingDependency).
	Dependency ServiceIdentity

	// Implementation is the offending concrete type (InvalidImplementation).
	Implementation ServiceIdentity

	// Chain lists the cycle, innermost detection point first (CycleDetected).
	Chain []ServiceIdentity

	// Count is the number of registered providers (MultipleProviders).
	Count int

	// Cause is the wrapped failure (ActivationFailed, InvalidProvider).
	Cause error

	// Message describes an InternalError.
	Message string
}

// Error implements the error interface.
func (e *InjectError) Error() string {
	var b strings.Builder
	b.WriteString("container: ")
	switch e.Kind {
	case KindMissingProvider:
		b.WriteString(e.Service.Name() + " has no provider")
	case KindMissingDependency:
		b.WriteString(e.Dependency.Name() + " has no provider (required by " + e.Service.Name() + ")")
	case KindCycleDetected:
		b.WriteString("a cycle was detected during activation of " + e.Service.Name() + " [" + formatChain(e.Chain) + "]")
	case KindInvalidImplementation:
		b.WriteString(e.Implementation.Name() + " is not a valid implementation of " + e.Service.Name())
	case KindInvalidProvider:
		b.WriteString("the registered provider for " + e.Service.Name() + " returned the wrong type")
		if e.Cause != nil {
			b.WriteString(": " + e.Cause.Error())
		}
	case KindMultipleProviders:
		b.WriteString(e.Service.Name() + " has " + strconv.Itoa(e.Count) + " providers registered (request All or Services instead)")
	case KindOwnedNotSupported:
		b.WriteString("the registered provider can't provide an owned " + e.Service.Name())
	case KindConditionsNotMet:
		b.WriteString("the conditions for providing " + e.Service.Name() + " have not been met")
	case KindActivationFailed:
		b.WriteString("activation of " + e.Service.Name() + " failed")
		if e.Cause != nil {
			b.WriteString(": " + e.Cause.Error())
		}
	case KindInternalError:
		b.WriteString("internal error: " + e.Message)
	default:
		b.WriteString(e.Kind.String())
	}
	return b.String()
}

// Unwrap exposes Cause.
func (e *InjectError) Unwrap() error { return e.Cause }

// Is matches any *InjectError of the same kind.
func (e *InjectError) Is(target error) bool {
	t, ok := target.(*InjectError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf returns the kind of err, or 0 when err is not an *InjectError.
func KindOf(err error) ErrorKind {
	var ie *InjectError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return 0
}

func formatChain(chain []ServiceIdentity) string {
	names := make([]string, len(chain))
	for i, id := range chain {
		names[i] = id.Name()
	}
	return strings.Join(names, " -> ")
}

// ── constructors ──────────────────────────────────────────────────────────────

func missingProvider(id ServiceIdentity) *InjectError {
	return &InjectError{Kind: KindMissingProvider, Service: id}
}

func missingDependency(service, dependency ServiceIdentity) *InjectError {
	return &InjectError{Kind: KindMissingDependency, Service: service, Dependency: dependency}
}

func cycleDetected(id ServiceIdentity) *InjectError {
	return &InjectError{Kind: KindCycleDetected, Service: id, Chain: []ServiceIdentity{id}}
}

func invalidProvider(id ServiceIdentity) *InjectError {
	return &InjectError{Kind: KindInvalidProvider, Service: id}
}

func invalidImplementation(service, impl ServiceIdentity) *InjectError {
	return &InjectError{Kind: KindInvalidImplementation, Service: service, Implementation: impl}
}

func multipleProviders(id ServiceIdentity, count int) *InjectError {
	return &InjectError{Kind: KindMultipleProviders, Service: id, Count: count}
}

func ownedNotSupported(id ServiceIdentity) *InjectError {
	return &InjectError{Kind: KindOwnedNotSupported, Service: id}
}

func conditionsNotMet(id ServiceIdentity) *InjectError {
	return &InjectError{Kind: KindConditionsNotMet, Service: id}
}

func activationFailed(id ServiceIdentity, cause error) *InjectError {
	return &InjectError{Kind: KindActivationFailed, Service: id, Cause: cause}
}

func internalError(msg string) *InjectError {
	return &InjectError{Kind: KindInternalError, Message: msg}
}

// extendCycle appends the enclosing frame's identity to a cycle error so the
// final chain reads in call order. Other errors are returned unchanged.
func extendCycle(err error, id ServiceIdentity) error {
	var ie *InjectError
	if errors.As(err, &ie) && ie.Kind == KindCycleDetected {
		chain := make([]ServiceIdentity, len(ie.Chain), len(ie.Chain)+1)
		copy(chain, ie.Chain)
		return &InjectError{Kind: KindCycleDetected, Service: id, Chain: append(chain, id)}
	}
	return err
}

func isKind(err error, k ErrorKind) bool {
	return KindOf(err) == k
}
