package query

// Type names one of the six relationship queries. All six collapse onto the
// single generic edge set: the "-me" variants walk the reverse index, the
// rest walk forward edges.
type Type string

const (
	TypeCalls       Type = "calls"
	TypeCallsMe     Type = "calls-me"
	TypeImports     Type = "imports"
	TypeImportsMe   Type = "imports-me"
	TypeDependsOn   Type = "depends-on"
	TypeDependsOnMe Type = "depends-on-me"
)

func (t Type) Valid() bool {
	switch t {
	case TypeCalls, TypeCallsMe, TypeImports, TypeImportsMe, TypeDependsOn, TypeDependsOnMe:
		return true
	}
	return false
}

// Reverse reports whether the query walks the reverse index.
func (t Type) Reverse() bool {
	switch t {
	case TypeCallsMe, TypeImportsMe, TypeDependsOnMe:
		return true
	}
	return false
}

// RelationshipRecord is one discovered relationship. From and To are element
// ids; File and Line locate the To element; Depth is the BFS level at which
// the relationship was found (1 = direct).
type RelationshipRecord struct {
	From  string `json:"from"`
	To    string `json:"to"`
	File  string `json:"file"`
	Line  int    `json:"line,omitempty"`
	Depth int    `json:"depth"`
}
