// Package records persists achievement metadata and lists it back in date
// order.
package records

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/Lllllllleong/achievementflow/internal/models"
)

// DefaultCollection is the Firestore collection holding achievements.
const DefaultCollection = "achievements"

const sortField = "date"

// Repository appends and lists achievement records. Records are never
// updated or deleted.
type Repository struct {
	store      DocumentStore
	collection string
	now        func() time.Time
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock overrides the source of createdAt.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// NewRepository returns a Repository over store. An empty collection means
// DefaultCollection.
func NewRepository(store DocumentStore, collection string, opts ...Option) *Repository {
	if collection == "" {
		collection = DefaultCollection
	}
	r := &Repository{store: store, collection: collection, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Validate checks the required fields of a record input.
func Validate(in models.AchievementInput) error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"title", in.Title},
		{"studentName", in.StudentName},
		{"date", in.Date},
		{"fileURL", in.FileURL},
		{"fileName", in.FileName},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return &models.ValidationError{Fields: missing}
	}
	return ValidateDate(in.Date)
}

// ValidateDate checks that date is an ISO calendar date, which keeps the
// lexicographic sort on the field chronological.
func ValidateDate(date string) error {
	if _, err := time.Parse(models.DateLayout, strings.TrimSpace(date)); err != nil {
		return &models.ValidationError{
			Fields: []string{"date"},
			Reason: fmt.Sprintf("date %q is not a YYYY-MM-DD calendar date", date),
		}
	}
	return nil
}

// Append validates in and writes it as a new document, returning the
// store-assigned ID. Validation failures never reach the store.
func (r *Repository) Append(ctx context.Context, in models.AchievementInput) (string, error) {
	if err := Validate(in); err != nil {
		return "", err
	}
	in = normalize(in)

	id, err := r.store.Add(ctx, r.collection, in.Fields(r.now().UTC()))
	if err != nil {
		slog.Error("Failed to write achievement record; uploaded asset is now unreferenced",
			"collection", r.collection, "fileURL", in.FileURL, "error", err)
		return "", &models.WriteError{FileURL: in.FileURL, Err: err}
	}
	slog.Info("Achievement record written.", "collection", r.collection, "recordId", id)
	return id, nil
}

// ListAll returns every record, newest date first.
func (r *Repository) ListAll(ctx context.Context) ([]models.Achievement, error) {
	docs, err := r.store.OrderedBy(ctx, r.collection, sortField, Desc)
	if err != nil {
		slog.Error("Failed to list achievement records", "collection", r.collection, "error", err)
		return nil, &models.ReadError{Err: err}
	}

	out := make([]models.Achievement, 0, len(docs))
	for _, d := range docs {
		out = append(out, decode(d))
	}
	// Stable, so equal dates keep the order the store returned them in.
	slices.SortStableFunc(out, func(a, b models.Achievement) int {
		return strings.Compare(b.Date, a.Date)
	})
	return out, nil
}

func normalize(in models.AchievementInput) models.AchievementInput {
	in.Title = strings.TrimSpace(in.Title)
	in.StudentName = strings.TrimSpace(in.StudentName)
	in.Description = strings.TrimSpace(in.Description)
	in.Date = strings.TrimSpace(in.Date)
	return in
}

func decode(d Document) models.Achievement {
	a := models.Achievement{
		ID:          d.ID,
		Title:       stringField(d.Fields, "title"),
		StudentName: stringField(d.Fields, "studentName"),
		Description: stringField(d.Fields, "description"),
		Date:        stringField(d.Fields, "date"),
		FileURL:     stringField(d.Fields, "fileURL"),
		FileName:    stringField(d.Fields, "fileName"),
	}
	if t, ok := d.Fields["createdAt"].(time.Time); ok {
		a.CreatedAt = t
	}
	return a
}

func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}
