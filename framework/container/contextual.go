package container

// ContextualBuilder implements the fluent form of scoped arguments: when a
// target service needs an Arg of some type, give it this value.
//
//	b.When(container.IdentityOf[*PhotoController]()).
//	    Needs(container.IdentityOf[string]()).
//	    Give("/tmp/photos")
//
// is equivalent to container.WithArg[*PhotoController](b, "/tmp/photos"),
// except that the value is not type-checked until it is requested.
type ContextualBuilder struct {
	setter ParameterSetter
	target ServiceIdentity
	needs  ServiceIdentity
}

// When starts a contextual argument for target.
func (b *Builder) When(target ServiceIdentity) *ContextualBuilder {
	return &ContextualBuilder{setter: b, target: target}
}

// When starts a contextual argument for target.
func (m *Module) When(target ServiceIdentity) *ContextualBuilder {
	return &ContextualBuilder{setter: m, target: target}
}

// Needs names the argument type.
func (c *ContextualBuilder) Needs(arg ServiceIdentity) *ContextualBuilder {
	c.needs = arg
	return c
}

// Give stores value for the pair. A value of the wrong type makes the
// request fail with ErrParameterTypeInvalid.
func (c *ContextualBuilder) Give(value any) {
	if c.needs.IsZero() {
		panic("container: Give called before Needs for " + c.target.Name())
	}
	c.setter.InsertParameter(argKey(c.target, c.needs), value)
}
