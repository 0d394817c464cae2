package models

import "time"

// DateLayout is the ISO calendar date format stored in the "date" field.
// Lexicographic order of values in this layout equals chronological order,
// which is what lets the document store sort on it directly.
const DateLayout = "2006-01-02"

// Achievement is one recorded achievement as read back from Firestore.
// Records are written once and never updated or deleted.
type Achievement struct {
	ID          string    `firestore:"-" json:"id" yaml:"id"`
	Title       string    `firestore:"title" json:"title" yaml:"title"`
	StudentName string    `firestore:"studentName" json:"studentName" yaml:"studentName"`
	Description string    `firestore:"description" json:"description" yaml:"description"`
	Date        string    `firestore:"date" json:"date" yaml:"date"`
	FileURL     string    `firestore:"fileURL" json:"fileURL" yaml:"fileURL"`
	FileName    string    `firestore:"fileName" json:"fileName" yaml:"fileName"`
	CreatedAt   time.Time `firestore:"createdAt" json:"createdAt" yaml:"createdAt"`
}

// AchievementInput is the payload handed to the repository once the asset
// upload has resolved. FileURL must already point at the stored blob.
type AchievementInput struct {
	Title       string
	StudentName string
	Description string
	Date        string
	FileURL     string
	FileName    string
}

// Fields returns the document body written to the store. createdAt is
// supplied by the caller so the repository owns the clock.
func (in AchievementInput) Fields(createdAt time.Time) map[string]any {
	return map[string]any{
		"title":       in.Title,
		"studentName": in.StudentName,
		"description": in.Description,
		"date":        in.Date,
		"fileURL":     in.FileURL,
		"fileName":    in.FileName,
		"createdAt":   createdAt,
	}
}
