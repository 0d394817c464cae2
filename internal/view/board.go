// Package view holds the browsing state of the achievements screen: the
// last fetched list, the live search term, and the submission form.
package view

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/Lllllllleong/achievementflow/internal/models"
	"github.com/Lllllllleong/achievementflow/internal/services"
)

// State is the screen's lifecycle state.
type State int

const (
	Idle State = iota
	Loading
	Submitting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Submitting:
		return "submitting"
	default:
		return "unknown"
	}
}

// ErrSubmitInFlight is returned when Submit is called outside Idle, the
// equivalent of pressing a disabled submit button.
var ErrSubmitInFlight = errors.New("a submission is already in progress")

// ErrNotIdle is returned when Mount is called outside Idle.
var ErrNotIdle = errors.New("board is busy")

// Pipeline is what the board drives. *services.RecorderFunction satisfies it.
type Pipeline interface {
	List(ctx context.Context) ([]models.Achievement, error)
	Submit(ctx context.Context, s services.Submission) (*services.SubmitResult, error)
}

// Form is the pending submission.
type Form struct {
	Title       string
	StudentName string
	Description string
	Date        string
	FileName    string
	File        io.Reader
}

// Reset clears every field.
func (f *Form) Reset() { *f = Form{} }

func (f Form) submission() services.Submission {
	return services.Submission{
		Title:       f.Title,
		StudentName: f.StudentName,
		Description: f.Description,
		Date:        f.Date,
		FileName:    f.FileName,
		File:        f.File,
	}
}

// Snapshot is an immutable copy of what the screen shows.
type Snapshot struct {
	State         State
	Filter        string
	Total         int
	Visible       []models.Achievement
	Table         models.Table
	SubmitLabel   string
	SubmitEnabled bool
	Err           error
}

// Board is the explicit state machine behind the achievements screen. The
// record list only changes when a full fetch completes.
type Board struct {
	pipeline Pipeline

	mu        sync.Mutex
	state     State
	records   []models.Achievement
	filter    string
	form      Form
	lastErr   error
	listeners []func(Snapshot)
}

// NewBoard returns an Idle board with no records.
func NewBoard(p Pipeline) *Board {
	return &Board{pipeline: p}
}

// OnChange registers a redraw callback, invoked after every state, list,
// filter, or form change.
func (b *Board) OnChange(fn func(Snapshot)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, fn)
}

// Mount performs the initial fetch: Idle → Loading → Idle. A failed fetch
// leaves the list empty and is returned for reporting.
func (b *Board) Mount(ctx context.Context) error {
	b.mu.Lock()
	if b.state != Idle {
		b.mu.Unlock()
		return ErrNotIdle
	}
	b.state = Loading
	b.mu.Unlock()
	b.notify()

	list, err := b.pipeline.List(ctx)

	b.mu.Lock()
	if err != nil {
		slog.Error("Initial achievements fetch failed", "error", err)
		b.records = nil
	} else {
		b.records = list
	}
	b.lastErr = err
	b.state = Idle
	b.mu.Unlock()
	b.notify()
	return err
}

// SetFilter replaces the search term.
func (b *Board) SetFilter(term string) {
	b.mu.Lock()
	b.filter = term
	b.mu.Unlock()
	b.notify()
}

// SetForm replaces the pending submission.
func (b *Board) SetForm(f Form) {
	b.mu.Lock()
	b.form = f
	b.mu.Unlock()
	b.notify()
}

// Form returns the pending submission.
func (b *Board) Form() Form {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.form
}

// Submit runs the pending form through the pipeline: Idle → Submitting →
// Idle. On success the form is cleared and the list replaced with the
// re-fetched one; on failure the form is kept for correction.
func (b *Board) Submit(ctx context.Context) (*services.SubmitResult, error) {
	b.mu.Lock()
	if b.state != Idle {
		b.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	b.state = Submitting
	sub := b.form.submission()
	b.mu.Unlock()
	b.notify()

	res, err := b.pipeline.Submit(ctx, sub)

	b.mu.Lock()
	switch {
	case err != nil:
		b.lastErr = err
	case res.RefreshErr != nil:
		// Written but not re-read: keep the stale list rather than guess.
		b.form.Reset()
		b.lastErr = res.RefreshErr
	default:
		b.form.Reset()
		b.records = res.Records
		b.lastErr = nil
	}
	b.state = Idle
	b.mu.Unlock()
	b.notify()
	return res, err
}

// Snapshot returns the current view, with the filter applied.
func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

// Visible returns the filtered records.
func (b *Board) Visible() []models.Achievement {
	return b.Snapshot().Visible
}

// SubmitLabel is the submit control's caption for the current state.
func (b *Board) SubmitLabel() string {
	return b.Snapshot().SubmitLabel
}

func (b *Board) snapshotLocked() Snapshot {
	visible := Filter(b.records, b.filter)
	label := "Upload Achievement"
	if b.state == Submitting {
		label = "Uploading..."
	}
	return Snapshot{
		State:         b.state,
		Filter:        b.filter,
		Total:         len(b.records),
		Visible:       visible,
		Table:         BuildTable(visible),
		SubmitLabel:   label,
		SubmitEnabled: b.state != Submitting,
		Err:           b.lastErr,
	}
}

func (b *Board) notify() {
	b.mu.Lock()
	snap := b.snapshotLocked()
	listeners := slices.Clone(b.listeners)
	b.mu.Unlock()
	for _, fn := range listeners {
		fn(snap)
	}
}
