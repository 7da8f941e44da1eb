package model

// Category is a user-owned transaction category.
type Category struct {
	ID     int64
	UserID int64
	Name   string
	Icon   string
	Color  string
}

// CategorySuggestion is the categorizer's answer for one description.
type CategorySuggestion struct {
	ID   int64
	Name string
}
