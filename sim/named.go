package sim

import "log"

// Named is an object that carries a stable name. Names are used by the
// monitoring server and the tracers to refer to objects.
type Named interface {
	Name() string
}

// NameMustBeValid panics if the name cannot be used to identify an object.
func NameMustBeValid(name string) {
	if name == "" {
		log.Panic("name must not be empty")
	}
}
