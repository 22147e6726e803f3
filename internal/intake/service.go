package intake

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/2beens/expfit/internal/store"
	"github.com/2beens/expfit/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
)

const (
	OuncesPerLiter = 33.814
	DateLayout     = "2006-01-02"
)

var ErrInvalidAmount = errors.New("invalid amount")

// DailyTotals is what a user took in on one calendar day.
type DailyTotals struct {
	Date        string  `json:"date"`
	WaterOunces float64 `json:"waterOunces"`
	Calories    int     `json:"calories"`
}

type Service struct {
	store *store.Store
}

func NewService(s *store.Store) *Service {
	return &Service{
		store: s,
	}
}

// LogWater adds liters, converted to ounces, to today's total and returns the new total in ounces.
func (s *Service) LogWater(ctx context.Context, username string, liters float64, now time.Time) (totalOunces float64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "intake.logWater")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if liters < 0 || math.IsNaN(liters) || math.IsInf(liters, 0) {
		return 0, fmt.Errorf("%w: water intake %v", ErrInvalidAmount, liters)
	}

	today := now.Format(DateLayout)
	if err := s.store.Update(ctx, func(doc *store.Document) error {
		if !doc.HasUser(username) {
			return store.ErrUnknownUser
		}
		total := doc.WaterLogs[username][today] + liters*OuncesPerLiter
		if math.IsInf(total, 0) {
			return fmt.Errorf("%w: water total out of range", ErrInvalidAmount)
		}
		doc.WaterLogs[username][today] = total
		totalOunces = total
		return nil
	}); err != nil {
		return 0, err
	}

	log.Debugf("[%s] water intake on %s: %.2f oz", username, today, totalOunces)

	return totalOunces, nil
}

// LogCalories adds calories to today's total and returns the new total.
func (s *Service) LogCalories(ctx context.Context, username string, calories int, now time.Time) (total int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "intake.logCalories")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if calories < 0 {
		return 0, fmt.Errorf("%w: negative calorie intake", ErrInvalidAmount)
	}

	today := now.Format(DateLayout)
	if err := s.store.Update(ctx, func(doc *store.Document) error {
		if !doc.HasUser(username) {
			return store.ErrUnknownUser
		}
		current := doc.CalorieLogs[username][today]
		if calories > math.MaxInt-current {
			return fmt.Errorf("%w: calorie total out of range", ErrInvalidAmount)
		}
		doc.CalorieLogs[username][today] = current + calories
		total = current + calories
		return nil
	}); err != nil {
		return 0, err
	}

	log.Debugf("[%s] calorie intake on %s: %d", username, today, total)

	return total, nil
}

func (s *Service) Today(ctx context.Context, username string, now time.Time) (DailyTotals, error) {
	return s.totalsFor(ctx, username, now)
}

// Yesterday returns the totals for the calendar day before now.
func (s *Service) Yesterday(ctx context.Context, username string, now time.Time) (DailyTotals, error) {
	return s.totalsFor(ctx, username, now.AddDate(0, 0, -1))
}

func (s *Service) totalsFor(ctx context.Context, username string, day time.Time) (_ DailyTotals, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "intake.totals")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	totals := DailyTotals{
		Date: day.Format(DateLayout),
	}

	var found bool
	s.store.View(func(doc *store.Document) {
		if found = doc.HasUser(username); !found {
			return
		}
		totals.WaterOunces = doc.WaterLogs[username][totals.Date]
		totals.Calories = doc.CalorieLogs[username][totals.Date]
	})
	if !found {
		return DailyTotals{}, store.ErrUnknownUser
	}

	return totals, nil
}
