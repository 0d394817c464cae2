package view

import (
	"strings"

	"github.com/Lllllllleong/achievementflow/internal/models"
)

// Matches reports whether term occurs, ignoring case, in the title, the
// student name, or the description of a. An empty term matches everything.
func Matches(a models.Achievement, term string) bool {
	term = strings.ToLower(term)
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(a.Title), term) ||
		strings.Contains(strings.ToLower(a.StudentName), term) ||
		strings.Contains(strings.ToLower(a.Description), term)
}

// Filter returns the records matching term, preserving their order.
func Filter(list []models.Achievement, term string) []models.Achievement {
	out := make([]models.Achievement, 0, len(list))
	for _, a := range list {
		if Matches(a, term) {
			out = append(out, a)
		}
	}
	return out
}
