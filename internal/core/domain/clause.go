package domain

type ClauseCategory string

const (
	CategoryPayment   ClauseCategory = "payment"
	CategoryFinancial ClauseCategory = "financial"
	CategoryCritical  ClauseCategory = "critical"
	CategorySecurity  ClauseCategory = "security"
	CategoryGeneral   ClauseCategory = "general"
)

type ClauseImportance string

const (
	ImportanceLow      ClauseImportance = "low"
	ImportanceMedium   ClauseImportance = "medium"
	ImportanceHigh     ClauseImportance = "high"
	ImportanceCritical ClauseImportance = "critical"
)

type ClauseColor string

const (
	ColorBlue  ClauseColor = "blue"
	ColorAmber ClauseColor = "amber"
	ColorRed   ClauseColor = "red"
	ColorGreen ClauseColor = "green"
	ColorGray  ClauseColor = "gray"
)

// categoryColors is the single canonical category to color table; display code
// must never pick colors on its own.
var categoryColors = map[ClauseCategory]ClauseColor{
	CategoryPayment:   ColorBlue,
	CategoryFinancial: ColorAmber,
	CategoryCritical:  ColorRed,
	CategorySecurity:  ColorGreen,
	CategoryGeneral:   ColorGray,
}

func (c ClauseCategory) Valid() bool {
	_, ok := categoryColors[c]
	return ok
}

// Color returns the display color for the category. Unknown categories get
// the general gray rather than an empty tag.
func (c ClauseCategory) Color() ClauseColor {
	if color, ok := categoryColors[c]; ok {
		return color
	}
	return ColorGray
}

func (i ClauseImportance) Valid() bool {
	switch i {
	case ImportanceLow, ImportanceMedium, ImportanceHigh, ImportanceCritical:
		return true
	default:
		return false
	}
}

// SimplifiedClause is one plain-language explanation of a portion of the
// source document. IDs are sequential from 1 in emission order and are
// run-scoped: a reprocess produces a fresh list starting again at 1.
type SimplifiedClause struct {
	ID         int              `json:"id"`
	Title      string           `json:"title"`
	Simplified string           `json:"simplified"`
	Category   ClauseCategory   `json:"category"`
	Importance ClauseImportance `json:"importance"`
	Color      ClauseColor      `json:"color"`
}

// NormalizeClauses resequences ids from 1, clamps invalid enum values to the
// general defaults and reassigns colors from the canonical table. Applied to
// every clause list regardless of which path produced it.
func NormalizeClauses(clauses []SimplifiedClause) []SimplifiedClause {
	out := make([]SimplifiedClause, 0, len(clauses))
	for i, clause := range clauses {
		if !clause.Category.Valid() {
			clause.Category = CategoryGeneral
		}
		if !clause.Importance.Valid() {
			clause.Importance = ImportanceMedium
		}
		clause.ID = i + 1
		clause.Color = clause.Category.Color()
		out = append(out, clause)
	}
	return out
}
