package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/at-ishikawa/subdeck/internal/fsrs"
	"github.com/at-ishikawa/subdeck/internal/learning"
	"github.com/at-ishikawa/subdeck/internal/vocabulary"
)

// ReviewCLI runs an FSRS review session in the terminal.
type ReviewCLI struct {
	*InteractiveCLI
	manager    *learning.LearningSessionManager
	repository learning.CardRepository
	words      map[string]vocabulary.Word
	session    learning.Session
	now        func() time.Time
	finished   bool
	gradeColor map[fsrs.Rating]*color.Color
}

type ReviewOption func(*ReviewCLI)

func WithReviewIO(stdin io.Reader, stdout io.Writer) ReviewOption {
	return func(r *ReviewCLI) { r.InteractiveCLI = newInteractiveCLI(stdin, stdout) }
}

func WithReviewClock(now func() time.Time) ReviewOption {
	return func(r *ReviewCLI) { r.now = now }
}

// NewReviewCLI starts a session over the stored cards of words, creating
// cards for words that have never been studied.
func NewReviewCLI(
	ctx context.Context,
	manager *learning.LearningSessionManager,
	repository learning.CardRepository,
	words []vocabulary.Word,
	maxNewCards, maxReviewCards int,
	opts ...ReviewOption,
) (*ReviewCLI, error) {
	r := &ReviewCLI{
		InteractiveCLI: newInteractiveCLI(strings.NewReader(""), io.Discard),
		manager:        manager,
		repository:     repository,
		words:          make(map[string]vocabulary.Word, len(words)),
		now:            time.Now,
		gradeColor: map[fsrs.Rating]*color.Color{
			fsrs.Again: color.New(color.FgRed),
			fsrs.Hard:  color.New(color.FgYellow),
			fsrs.Good:  color.New(color.FgGreen),
			fsrs.Easy:  color.New(color.FgBlue),
		},
	}
	for _, opt := range opts {
		opt(r)
	}

	stored, err := repository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository.FindAll() > %w", err)
	}
	byID := make(map[string]fsrs.FlashCard, len(stored))
	for _, card := range stored {
		byID[card.ID] = card
	}

	cards := make([]fsrs.FlashCard, 0, len(words))
	for _, w := range words {
		id := w.CardID()
		if id == "" {
			continue
		}
		if _, ok := r.words[id]; ok {
			continue
		}
		r.words[id] = w
		card, ok := byID[id]
		if !ok {
			card = manager.Service().CreateNewCard(id)
		}
		cards = append(cards, card)
	}

	r.session = manager.StartSession(cards, maxNewCards, maxReviewCards)
	return r, nil
}

// Current returns the session in its present state.
func (r *ReviewCLI) Current() learning.Session {
	return r.session
}

func (r *ReviewCLI) Session(ctx context.Context) error {
	card, ok := r.session.CurrentCard()
	if !ok {
		return r.finish(ctx)
	}
	w := r.words[card.ID]
	out := r.stdoutWriter

	_, _ = r.faint.Fprintf(out, "[%d/%d] ", r.session.Cursor+1, len(r.session.Queue))
	_, _ = r.bold.Fprint(out, w.Word)
	if w.Pronunciation != "" {
		_, _ = fmt.Fprintf(out, " %s", w.Pronunciation)
	}
	_, _ = fmt.Fprint(out, "\nPress Enter to show the answer ")
	if _, err := r.readLine(); err != nil {
		return r.endOnEOF(ctx, err)
	}
	_, _ = fmt.Fprintf(out, "Answer: %s\n", r.italic.Sprint(w.Translation))

	grades, err := r.manager.GetGradeOptions(r.session)
	if err != nil {
		return fmt.Errorf("manager.GetGradeOptions() > %w", err)
	}
	for _, g := range grades {
		_, _ = fmt.Fprintf(out, "  %d) %s (%s)\n", int(g.Choice), r.gradeColor[g.Choice].Sprint(g.Title), g.Txt)
	}

	var grade fsrs.Grade
	for {
		_, _ = fmt.Fprint(out, "How well did you remember? ")
		input, err := r.readLine()
		if err != nil {
			return r.endOnEOF(ctx, err)
		}
		rating, err := fsrs.ParseRating(strings.TrimSpace(input))
		if err == nil {
			grade = grades[rating-1]
			break
		}
		_, _ = fmt.Fprintln(out, "Choose 1, 2, 3 or 4.")
	}

	next, updated, err := r.manager.ProcessCardReview(r.session, grade)
	if err != nil {
		return fmt.Errorf("manager.ProcessCardReview() > %w", err)
	}
	if err := r.repository.Save(ctx, updated); err != nil {
		return fmt.Errorf("repository.Save(%s) > %w", updated.ID, err)
	}
	r.session = next

	if grade.Choice.IsCorrect() {
		_, _ = fmt.Fprint(out, "✅ ")
	} else {
		_, _ = fmt.Fprint(out, "❌ ")
	}
	_, _ = fmt.Fprintf(out, "Next review of %s in %s\n\n", r.bold.Sprint(w.Word), grade.Txt)
	return nil
}

func (r *ReviewCLI) endOnEOF(ctx context.Context, err error) error {
	if errors.Is(err, io.EOF) {
		return r.finish(ctx)
	}
	return err
}

// finish stores the session summary once and ends the run.
func (r *ReviewCLI) finish(ctx context.Context) error {
	if r.finished {
		return errEnd
	}
	r.finished = true

	summary := r.session.Summary(r.now())
	out := r.stdoutWriter
	if summary.TotalCards == 0 {
		_, _ = fmt.Fprintln(out, "No cards are due. Come back later!")
		return errEnd
	}
	if summary.CompletedCount > 0 {
		if err := r.repository.SaveSession(ctx, summary); err != nil {
			return fmt.Errorf("repository.SaveSession() > %w", err)
		}
	}
	_, _ = fmt.Fprintf(out, "Reviewed %d of %d cards, accuracy %.0f%%, in %s\n",
		summary.CompletedCount, summary.TotalCards, summary.Accuracy*100, summary.Duration().Round(time.Second))
	return errEnd
}
