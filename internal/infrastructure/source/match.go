package source

import (
	"strings"

	"tabula/internal/domain/filter"
)

// isDescending implements the sort-order contract: only a case-insensitive
// "desc" sorts descending, anything else (including empty) means ascending.
func isDescending(sortOrder string) bool {
	return strings.EqualFold(sortOrder, "desc")
}

// matchString evaluates one filter operator over the string forms of a cell
// and the user-supplied literal. "like" is case-insensitive containment.
func matchString(cell string, op filter.Operator, value string) bool {
	switch op {
	case filter.Equal:
		return cell == value
	case filter.NotEqual:
		return cell != value
	case filter.Less:
		return cell < value
	case filter.LessOrEqual:
		return cell <= value
	case filter.Greater:
		return cell > value
	case filter.GreaterOrEqual:
		return cell >= value
	case filter.Like:
		return strings.Contains(strings.ToLower(cell), strings.ToLower(value))
	}
	return false
}

// matchFloat evaluates one comparison operator numerically. "like" never
// reaches here; it always compares string forms.
func matchFloat(cell float64, op filter.Operator, value float64) bool {
	switch op {
	case filter.Equal:
		return cell == value
	case filter.NotEqual:
		return cell != value
	case filter.Less:
		return cell < value
	case filter.LessOrEqual:
		return cell <= value
	case filter.Greater:
		return cell > value
	case filter.GreaterOrEqual:
		return cell >= value
	}
	return false
}
