package model

import "time"

// CategoryType indicates whether a category tracks income or expenses.
type CategoryType string

const (
	// CategoryTypeIncome represents categories for income transactions.
	CategoryTypeIncome CategoryType = "income"
	// CategoryTypeExpense represents categories for expense transactions.
	CategoryTypeExpense CategoryType = "expense"
)

// Category represents a budget category that splits can be assigned to.
type Category struct {
	CreatedAt time.Time
	Name      string
	Type      CategoryType
	BudgetID  *int // Optional parent budget container
	ID        int
	IsActive  bool
}
