package lam

import "sort"

// Env is one scope in a chain of scopes. The global scope holds any number
// of bindings; the scope created for each application binds exactly one
// parameter and remembers which closure is running in it, which is what a
// recursion call re-enters.
type Env struct {
	parent *Env

	vars map[string]Value

	name  string
	value Value
	self  *Closure
}

// NewEnv creates an empty global scope.
func NewEnv() *Env {
	return &Env{vars: map[string]Value{}}
}

// call creates the scope for one application of c to arg. The receiver is
// never written to.
func (e *Env) call(c *Closure, arg Value) *Env {
	return &Env{
		parent: e,
		name:   c.Param,
		value:  arg,
		self:   c,
	}
}

// Get resolves name, walking from this scope outwards.
func (e *Env) Get(name string) (Value, bool) {
	for scope := e; scope != nil; scope = scope.parent {
		if scope.vars != nil {
			if v, ok := scope.vars[name]; ok {
				return v, true
			}
		} else if scope.name == name {
			return scope.value, true
		}
	}
	return nil, false
}

// Set binds name in this scope. Only the global scope is ever assigned to.
func (e *Env) Set(name string, value Value) {
	if e.vars == nil {
		panic("lam: assignment to a parameter scope")
	}
	e.vars[name] = value
}

// Running returns the closure whose body is being evaluated in this scope,
// or nil outside of any application.
func (e *Env) Running() *Closure {
	for scope := e; scope != nil; scope = scope.parent {
		if scope.self != nil {
			return scope.self
		}
	}
	return nil
}

// Names lists the names bound directly in this scope, sorted.
func (e *Env) Names() []string {
	if e.vars == nil {
		return []string{e.name}
	}
	names := make([]string, 0, len(e.vars))
	for name := range e.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
