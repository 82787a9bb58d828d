package engine

import "fmt"

// ExternalCall conditionally delegates to an independently-loaded rule
// module. When the module name is in the active set the call runs the
// module's root group and yields its steps; otherwise it yields nothing
// and contributes no change.
type ExternalCall struct {
	name   string
	module *Engine
}

// NewExternalCall builds a call to the named module. The module engine
// is shared by reference with the registry that loaded it.
func NewExternalCall(name string, module *Engine) *ExternalCall {
	return &ExternalCall{name: name, module: module}
}

// ModuleName returns the referenced module's name.
func (c *ExternalCall) ModuleName() string { return c.name }

func (c *ExternalCall) operation() {}

func (c *ExternalCall) String() string {
	return fmt.Sprintf(">%s", c.name)
}

func (c *ExternalCall) apply(s string, env *environ, yield func(Step) bool) (Step, bool) {
	if !env.active[c.name] {
		// Inactive modules are identity and leave no trace.
		return identityStep(s, c), true
	}
	return c.module.root.apply(s, env, yield)
}
