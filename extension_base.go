package crucible

// BaseExtension provides common functionality for implementing extensions.
// Extensions can embed BaseExtension to get an identity for logs and errors
// plus a no-op factory-customization hook, and override what they need.
//
// Example usage:
//
//	type MyExtension struct {
//	    *crucible.BaseExtension
//	}
//
//	func NewMyExtension() crucible.RegistryExtension {
//	    return &MyExtension{
//	        BaseExtension: crucible.NewBaseExtension("my-ext", "Registers my services"),
//	    }
//	}
//
//	func (e *MyExtension) MutateRegistry(reg crucible.MutableRegistry) error {
//	    return reg.Register(&crucible.Definition{ /* ... */ })
//	}
type BaseExtension struct {
	name        string
	description string
}

// NewBaseExtension creates a new base extension with the given identity.
func NewBaseExtension(name, description string) *BaseExtension {
	return &BaseExtension{
		name:        name,
		description: description,
	}
}

// Name returns the extension name.
func (e *BaseExtension) Name() string {
	return e.name
}

// Description returns the extension description.
func (e *BaseExtension) Description() string {
	return e.description
}

// CustomizeFactory is a default implementation that does nothing.
// Extensions should override this to adjust assembled container state.
func (e *BaseExtension) CustomizeFactory(reg Registry) error {
	return nil
}
