package dashboard

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/visheshsingal/hitech/models"
)

// ActiveWindow is how far back a listing counts as recently active.
const ActiveWindow = 30 * 24 * time.Hour

type PropertyCounter interface {
	CountCreated(ctx context.Context, from, to *time.Time, status string) (int64, error)
	MostCommonCity(ctx context.Context) (string, error)
	MostCommonBHK(ctx context.Context) (*int, error)
	AveragePrice(ctx context.Context) (float64, error)
}

type EnquiryCounter interface {
	CountCreated(ctx context.Context, from, to *time.Time) (int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

// Summarizer derives the admin dashboard figures from current property and
// enquiry state.
type Summarizer struct {
	properties PropertyCounter
	enquiries  EnquiryCounter
	loc        *time.Location
	now        func() time.Time
}

func NewSummarizer(properties PropertyCounter, enquiries EnquiryCounter, loc *time.Location) *Summarizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Summarizer{properties: properties, enquiries: enquiries, loc: loc, now: time.Now}
}

// MonthWindows returns the start of the current and previous calendar months
// in loc.
func MonthWindows(now time.Time, loc *time.Location) (thisMonth, lastMonth time.Time) {
	now = now.In(loc)
	thisMonth = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	lastMonth = thisMonth.AddDate(0, -1, 0)
	return thisMonth, lastMonth
}

// Growth is the month-over-month change in percent, rounded to one decimal.
// With no activity last month it is 100 if anything happened this month.
func Growth(thisMonth, lastMonth int64) float64 {
	if lastMonth == 0 {
		if thisMonth > 0 {
			return 100
		}
		return 0
	}
	g := float64(thisMonth-lastMonth) / float64(lastMonth) * 100
	return math.Round(g*10) / 10
}

func (s *Summarizer) Stats(ctx context.Context) (*models.DashboardStats, error) {
	now := s.now()
	startThis, startLast := MonthWindows(now, s.loc)
	activeSince := now.Add(-ActiveWindow)

	var (
		stats              models.DashboardStats
		avgPrice           float64
		propThis, propLast int64
		enqThis, enqLast   int64
	)
	p, e, in := &stats.Properties, &stats.Enquiries, &stats.Insights

	g, ctx := errgroup.WithContext(ctx)
	count := func(dst *int64, fn func() (int64, error)) {
		g.Go(func() (err error) {
			*dst, err = fn()
			return err
		})
	}

	count(&p.Total, func() (int64, error) { return s.properties.CountCreated(ctx, nil, nil, "") })
	count(&propThis, func() (int64, error) { return s.properties.CountCreated(ctx, &startThis, nil, "") })
	count(&propLast, func() (int64, error) { return s.properties.CountCreated(ctx, &startLast, &startThis, "") })
	count(&p.Active, func() (int64, error) {
		return s.properties.CountCreated(ctx, &activeSince, nil, models.StatusActive)
	})

	count(&e.Total, func() (int64, error) { return s.enquiries.CountCreated(ctx, nil, nil) })
	count(&enqThis, func() (int64, error) { return s.enquiries.CountCreated(ctx, &startThis, nil) })
	count(&enqLast, func() (int64, error) { return s.enquiries.CountCreated(ctx, &startLast, &startThis) })
	count(&e.Pending, func() (int64, error) { return s.enquiries.CountByStatus(ctx, models.EnquiryPending) })
	count(&e.Handled, func() (int64, error) { return s.enquiries.CountByStatus(ctx, models.EnquiryHandled) })

	g.Go(func() (err error) {
		in.PopularCity, err = s.properties.MostCommonCity(ctx)
		return err
	})
	g.Go(func() (err error) {
		in.PopularBHK, err = s.properties.MostCommonBHK(ctx)
		return err
	})
	g.Go(func() (err error) {
		avgPrice, err = s.properties.AveragePrice(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	p.ThisMonth, p.LastMonth, p.Growth = propThis, propLast, Growth(propThis, propLast)
	e.ThisMonth, e.LastMonth, e.Growth = enqThis, enqLast, Growth(enqThis, enqLast)
	in.AvgPrice = math.Round(avgPrice)
	if in.PopularCity == "" {
		in.PopularCity = "N/A"
	}
	return &stats, nil
}
