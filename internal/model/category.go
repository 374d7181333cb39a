package model

type CategoryType string

const (
	CategoryTypeExpense CategoryType = "expense"
	CategoryTypeIncome  CategoryType = "income"
)

// DefaultCategoryName is the fallback bucket for writes whose category
// cannot be resolved. It must exist in the seeded set.
const DefaultCategoryName = "Other"

// Category is global, not user-owned. The set is seeded once and treated
// as immutable in practice.
type Category struct {
	ID    int64        `json:"id"`
	Name  string       `json:"name"`
	Type  CategoryType `json:"type"`
	Color string       `json:"color"`
	Icon  string       `json:"icon"`
}

func (Category) TableName() string { return "categories" }
