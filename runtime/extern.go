package runtime

import (
	"fmt"
	"regexp"
	"strings"
)

// ---------------------------------------------------------------------------
// Extern dispatcher: selector-addressed host capabilities
// ---------------------------------------------------------------------------

// Capability is one host-provided operation invokable from hosted programs.
// Arguments arrive as already-evaluated values; implementations validate
// their own arity and argument capabilities.
type Capability interface {
	Name() string
	Call(args []Value) (Value, error)
}

// CapabilityFunc adapts a plain function to the Capability interface.
type CapabilityFunc struct {
	CapName string
	Fn      func(args []Value) (Value, error)
}

func (c CapabilityFunc) Name() string { return c.CapName }

func (c CapabilityFunc) Call(args []Value) (Value, error) { return c.Fn(args) }

// Selector grammar, wire-format ASCII:
//
//	backend[|backend...]:capability
//	capability
//
// Selectors are plain data strings, never language syntax.
var selectorRE = regexp.MustCompile(`^(?:([a-zA-Z0-9_]+(?:\|[a-zA-Z0-9_]+)*):)?([a-zA-Z0-9_]+)$`)

// SelectorClause is one (backend, capability) resolution attempt. A nil
// Backend means "any registered provider".
type SelectorClause struct {
	Backend    string // "" for unnamed
	Capability string
}

// ParseSelector splits a selector string into its ordered resolution
// clauses.
func ParseSelector(selector string) ([]SelectorClause, error) {
	m := selectorRE.FindStringSubmatch(selector)
	if m == nil {
		return nil, &ResolveError{Selector: selector, Msg: "malformed selector"}
	}
	capability := m[2]
	if m[1] == "" {
		return []SelectorClause{{Capability: capability}}, nil
	}
	backends := strings.Split(m[1], "|")
	clauses := make([]SelectorClause, len(backends))
	for i, b := range backends {
		clauses[i] = SelectorClause{Backend: b, Capability: capability}
	}
	return clauses, nil
}

// Dispatcher resolves selectors to capability implementations.
//
// Resolution is honest about failure: when a selector names backends, they
// are tried strictly left to right and the invocation fails if none of them
// provides the capability. A different backend is never substituted. Only a
// bare selector may be served by any registered provider, in backend
// registration order.
type Dispatcher struct {
	backends map[string]map[string]Capability
	order    []string
}

// NewDispatcher creates a dispatcher with no backends.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{backends: make(map[string]map[string]Capability)}
}

// Register adds a capability under the named backend. Re-registering the
// same (backend, capability) pair is a configuration error.
func (d *Dispatcher) Register(backend string, cap Capability) error {
	if backend == "" {
		return fmt.Errorf("extern: backend name must not be empty")
	}
	caps, ok := d.backends[backend]
	if !ok {
		caps = make(map[string]Capability)
		d.backends[backend] = caps
		d.order = append(d.order, backend)
	}
	if _, dup := caps[cap.Name()]; dup {
		return fmt.Errorf("extern: %s:%s registered twice", backend, cap.Name())
	}
	caps[cap.Name()] = cap
	return nil
}

// Resolve finds the implementation for a selector without invoking it.
func (d *Dispatcher) Resolve(selector string) (Capability, error) {
	clauses, err := ParseSelector(selector)
	if err != nil {
		return nil, err
	}
	for _, cl := range clauses {
		if cl.Backend == "" {
			for _, b := range d.order {
				if cap, ok := d.backends[b][cl.Capability]; ok {
					return cap, nil
				}
			}
			continue
		}
		caps, ok := d.backends[cl.Backend]
		if !ok {
			continue
		}
		if cap, ok := caps[cl.Capability]; ok {
			return cap, nil
		}
	}
	return nil, d.failure(selector, clauses)
}

// Invoke resolves a selector and calls it with the given arguments.
func (d *Dispatcher) Invoke(selector string, args []Value) (Value, error) {
	cap, err := d.Resolve(selector)
	if err != nil {
		return nil, err
	}
	return cap.Call(args)
}

func (d *Dispatcher) failure(selector string, clauses []SelectorClause) error {
	var missing []string
	for _, cl := range clauses {
		if cl.Backend == "" {
			continue
		}
		if _, ok := d.backends[cl.Backend]; !ok {
			missing = append(missing, cl.Backend)
		}
	}
	if len(missing) > 0 {
		return &ResolveError{
			Selector: selector,
			Msg:      "backend " + strings.Join(missing, ", ") + " not registered",
		}
	}
	return &ResolveError{Selector: selector, Msg: "no registered provider"}
}
