package snapshot

// ElementType classifies a discovered code unit.
type ElementType string

const (
	TypeFunction  ElementType = "function"
	TypeMethod    ElementType = "method"
	TypeClass     ElementType = "class"
	TypeComponent ElementType = "component"
	TypeHook      ElementType = "hook"
	TypeInterface ElementType = "interface"
	TypeType      ElementType = "type"
	TypeVariable  ElementType = "variable"
)

// ElementTypes lists every valid element type, in document order of the
// external analyzer's schema.
var ElementTypes = []ElementType{
	TypeFunction,
	TypeMethod,
	TypeClass,
	TypeComponent,
	TypeHook,
	TypeInterface,
	TypeType,
	TypeVariable,
}

func (t ElementType) Valid() bool {
	for _, known := range ElementTypes {
		if t == known {
			return true
		}
	}
	return false
}

// CodeElement is one node of the relationship graph. ID is the stable unique
// identifier assigned by the external analyzer (file:line:name).
type CodeElement struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Type       ElementType `json:"type"`
	File       string      `json:"file"`
	Line       int         `json:"line"`
	Exported   bool        `json:"exported,omitempty"`
	Parameters []string    `json:"parameters,omitempty"`
}
