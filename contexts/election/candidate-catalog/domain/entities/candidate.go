package entities

import "time"

// Category partitions candidates into the two elected bodies.
type Category string

const (
	CategoryDirector Category = "director"
	CategoryManager  Category = "manager"
)

func ParseCategory(raw string) (Category, bool) {
	switch Category(raw) {
	case CategoryDirector, CategoryManager:
		return Category(raw), true
	default:
		return "", false
	}
}

// Candidate is one person standing for election. Round2Qualified is cleared
// and re-set only through the full-replace qualification operation.
type Candidate struct {
	CandidateID     string
	Name            string
	Title           string
	Description     string
	ResumeURL       string
	Category        Category
	Round2Qualified bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
