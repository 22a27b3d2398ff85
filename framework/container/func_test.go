package container_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-injector/framework/container"
)

func TestFunc_InvalidConstructors(t *testing.T) {
	tests := []struct {
		name string
		fn   any
	}{
		{"nil", nil},
		{"not a function", 42},
		{"no results", func() {}},
		{"wrong result type", func() *Repo { return nil }},
		{"second result not error", func() (*Settings, int) { return nil, 0 }},
		{"variadic", func(...int) *Settings { return nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := container.NewBuilder()
			b.Provide(container.Transient[*Settings](tt.fn))
			inj := b.Build()

			_, err := container.Get[*Settings](inj)

			var ie *container.InjectError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, container.KindInvalidProvider, ie.Kind)
			assert.Equal(t, container.IdentityOf[*Settings](), ie.Service)
		})
	}
}

func TestFunc_ErrorResultIsFallible(t *testing.T) {
	boom := errors.New("boom")
	b := container.NewBuilder()
	b.Provide(container.Transient[*Settings](func() (*Settings, error) { return nil, boom }))
	inj := b.Build()

	_, err := container.Get[*Settings](inj)

	assert.ErrorIs(t, err, container.ErrActivationFailed)
	assert.ErrorIs(t, err, boom)
}

func TestFunc_ConcreteResultForInterface(t *testing.T) {
	b := container.NewBuilder()
	b.Provide(container.Transient[Greeter](func() *French { return &French{} }))
	inj := b.Build()

	g, err := container.Get[Greeter](inj)

	require.NoError(t, err)
	assert.Equal(t, "bonjour", g.Greet())
}

func TestFunc_NilInterfaceResultIsInvalid(t *testing.T) {
	b := container.NewBuilder()
	b.Provide(container.Transient[Greeter](func() Greeter { return nil }))
	inj := b.Build()

	_, err := container.Get[Greeter](inj)

	assert.ErrorIs(t, err, container.ErrInvalidProvider)
}

func TestFunc_MixedRequestShapes(t *testing.T) {
	type Report struct {
		repo     *Repo
		missing  container.Optional[*Settings]
		greeters []Greeter
	}
	b := container.NewBuilder()
	greeters(b)
	b.Provide(
		container.NewConstant(&Repo{DSN: "db"}),
		container.Transient[*Report](func(r *Repo, s container.Optional[*Settings], gs container.All[Greeter]) *Report {
			return &Report{repo: r, missing: s, greeters: gs}
		}),
	)
	inj := b.Build()

	report, err := container.Get[*Report](inj)

	require.NoError(t, err)
	assert.Equal(t, "db", report.repo.DSN)
	assert.False(t, report.missing.Present)
	assert.Len(t, report.greeters, 2)
}
