// Package filter defines the filter items shared by every tabular source.
package filter

// Operator определяет виды сравнения.
type Operator string

const (
	Equal          Operator = "="
	NotEqual       Operator = "!="
	Less           Operator = "<"
	LessOrEqual    Operator = "<="
	Greater        Operator = ">"
	GreaterOrEqual Operator = ">="
	Like           Operator = "like" // case-insensitive substring containment
)

// Item представляет одну строку отбора.
//
// Value is always the raw string supplied by the caller; each source owns
// the coercion of that string to its column type.
type Item struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    string   `json:"value"`
}

// Known reports whether op is one of the supported comparison operators.
func (op Operator) Known() bool {
	switch op {
	case Equal, NotEqual, Less, LessOrEqual, Greater, GreaterOrEqual, Like:
		return true
	}
	return false
}
