package workouts

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/2beens/expfit/internal/plan"
	"github.com/2beens/expfit/internal/store"
	"github.com/2beens/expfit/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
)

const (
	// ExpPerExercise is awarded for every logged exercise, regardless of weight or reps.
	ExpPerExercise = 10
	DateLayout     = "2006-01-02 15:04:05"
)

var (
	ErrInvalidDay   = errors.New("invalid day")
	ErrInvalidEntry = errors.New("invalid workout entry")
)

type Service struct {
	store *store.Store
}

func NewService(s *store.Store) *Service {
	return &Service{
		store: s,
	}
}

// LogExercise appends the entry to the user's day and awards EXP, both in one
// store update. It returns the stored entry and the user's new EXP total.
func (s *Service) LogExercise(
	ctx context.Context,
	username string,
	day int,
	exercise string,
	weight float64,
	reps int,
	now time.Time,
) (_ store.WorkoutEntry, exp int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workouts.logExercise")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if !plan.ValidDay(day) {
		return store.WorkoutEntry{}, 0, fmt.Errorf("%w: %d", ErrInvalidDay, day)
	}
	if exercise == "" {
		return store.WorkoutEntry{}, 0, fmt.Errorf("%w: exercise empty", ErrInvalidEntry)
	}
	if weight < 0 || reps < 0 {
		return store.WorkoutEntry{}, 0, fmt.Errorf("%w: weight and reps cannot be negative", ErrInvalidEntry)
	}
	if math.IsNaN(weight) || math.IsInf(weight, 0) {
		return store.WorkoutEntry{}, 0, fmt.Errorf("%w: weight %v", ErrInvalidEntry, weight)
	}

	entry := store.WorkoutEntry{
		Exercise: exercise,
		Weight:   weight,
		Reps:     reps,
		Date:     now.Format(DateLayout),
	}

	if err := s.store.Update(ctx, func(doc *store.Document) error {
		if !doc.HasUser(username) {
			return store.ErrUnknownUser
		}
		dayKey := strconv.Itoa(day)
		doc.WorkoutLogs[username][dayKey] = append(doc.WorkoutLogs[username][dayKey], entry)
		doc.Exp[username] += ExpPerExercise
		exp = doc.Exp[username]
		return nil
	}); err != nil {
		return store.WorkoutEntry{}, 0, err
	}

	log.Debugf("[%s] logged [%s] on day %d, exp: %d", username, exercise, day, exp)

	return entry, exp, nil
}

// PreviousLogs returns the user's entries for exercise logged under days
// strictly before beforeDay, oldest first. Entries are ordered by their
// logged time, which has one second resolution; entries logged within the
// same second keep day order, then the order they were logged in.
func (s *Service) PreviousLogs(ctx context.Context, username, exercise string, beforeDay int) (_ []store.WorkoutEntry, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "workouts.previousLogs")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var (
		entries []store.WorkoutEntry
		found   bool
	)
	s.store.View(func(doc *store.Document) {
		var dayLogs map[string][]store.WorkoutEntry
		dayLogs, found = doc.WorkoutLogs[username]
		if !found {
			return
		}

		days := make([]int, 0, len(dayLogs))
		for dayKey := range dayLogs {
			day, err := strconv.Atoi(dayKey)
			if err != nil {
				log.Warnf("[%s] workout log under non-numeric day [%s], skipping", username, dayKey)
				continue
			}
			if day < beforeDay {
				days = append(days, day)
			}
		}
		sort.Ints(days)

		for _, day := range days {
			for _, e := range dayLogs[strconv.Itoa(day)] {
				if e.Exercise == exercise {
					entries = append(entries, e)
				}
			}
		}
	})
	if !found {
		return nil, store.ErrUnknownUser
	}

	// days logged out of order still come back chronologically, ties keep day order
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date < entries[j].Date
	})

	return entries, nil
}

// LastBefore returns the most recent PreviousLogs entry, false if there is none.
func (s *Service) LastBefore(ctx context.Context, username, exercise string, beforeDay int) (store.WorkoutEntry, bool, error) {
	entries, err := s.PreviousLogs(ctx, username, exercise, beforeDay)
	if err != nil {
		return store.WorkoutEntry{}, false, err
	}
	if len(entries) == 0 {
		return store.WorkoutEntry{}, false, nil
	}
	return entries[len(entries)-1], true, nil
}

// DayLogs returns the entries logged for day, in the order they were logged.
func (s *Service) DayLogs(ctx context.Context, username string, day int) (_ []store.WorkoutEntry, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "workouts.dayLogs")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if !plan.ValidDay(day) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDay, day)
	}

	var (
		entries []store.WorkoutEntry
		found   bool
	)
	s.store.View(func(doc *store.Document) {
		var dayLogs map[string][]store.WorkoutEntry
		dayLogs, found = doc.WorkoutLogs[username]
		if found {
			entries = append([]store.WorkoutEntry{}, dayLogs[strconv.Itoa(day)]...)
		}
	})
	if !found {
		return nil, store.ErrUnknownUser
	}

	return entries, nil
}

// Exp returns the user's accumulated EXP.
func (s *Service) Exp(ctx context.Context, username string) (int, error) {
	_, span := tracing.GlobalTracer.Start(ctx, "workouts.exp")
	defer span.End()

	var (
		exp   int
		found bool
	)
	s.store.View(func(doc *store.Document) {
		exp, found = doc.Exp[username]
	})
	if !found {
		return 0, store.ErrUnknownUser
	}
	return exp, nil
}
