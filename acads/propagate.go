package acads

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/SamuelLeutner/notion-acads/logger"
	"github.com/SamuelLeutner/notion-acads/models"
)

const quoteTimeLayout = "Mon, 02 Jan 2006 at 15:04"

// QuoteText is the full text written into the CGPA quote block.
func QuoteText(cgpa float64, at time.Time) string {
	return fmt.Sprintf("Overall CGPA: %.2f/4.00\nLast updated: %s", cgpa, at.Format(quoteTimeLayout))
}

type SemesterFailure struct {
	Label    string `json:"label"`
	RecordID string `json:"recordId"`
	Error    string `json:"error"`
}

// Propagator writes aggregates back to the store. It caches the id of the
// quote block it discovers under ParentPageID.
type Propagator struct {
	Store        Store
	Schema       Schema
	ParentPageID string

	// OnQuoteResolved, when set, is called with a freshly discovered quote id.
	OnQuoteResolved func(id string)

	mu      sync.Mutex
	quoteID string
}

func NewPropagator(store Store, schema Schema, parentPageID, quoteID string) *Propagator {
	return &Propagator{Store: store, Schema: schema, ParentPageID: parentPageID, quoteID: quoteID}
}

// ResolveQuoteRecordID returns the cached quote block id, discovering it from
// the parent page's children on first use.
func (p *Propagator) ResolveQuoteRecordID(ctx context.Context) (string, error) {
	p.mu.Lock()
	cached := p.quoteID
	p.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	if p.ParentPageID == "" {
		return "", errors.Wrap(ErrQuoteNotFound, "no parent page configured")
	}

	blocks, err := p.Store.ListChildRecords(ctx, p.ParentPageID)
	if err != nil {
		return "", errors.Wrapf(err, "listing children of %s", p.ParentPageID)
	}

	for _, b := range blocks {
		if b.Type != models.BlockQuote || b.Archived {
			continue
		}
		p.mu.Lock()
		p.quoteID = b.ID
		p.mu.Unlock()
		logger.Info().Str("blockId", b.ID).Msg("Discovered CGPA quote block")
		if p.OnQuoteResolved != nil {
			p.OnQuoteResolved(b.ID)
		}
		return b.ID, nil
	}
	return "", ErrQuoteNotFound
}

// InvalidateQuoteRecordID drops the cached id so the next write rediscovers it.
func (p *Propagator) InvalidateQuoteRecordID() {
	p.mu.Lock()
	p.quoteID = ""
	p.mu.Unlock()
}

// WriteQuote replaces the quote block text with the CGPA line.
func (p *Propagator) WriteQuote(ctx context.Context, cgpa float64, at time.Time) (string, error) {
	id, err := p.ResolveQuoteRecordID(ctx)
	if err != nil {
		return "", err
	}

	text := QuoteText(cgpa, at)
	if _, err := p.Store.UpdateBlockContent(ctx, id, models.QuoteContent(text).Update()); err != nil {
		if IsNotFound(err) {
			p.InvalidateQuoteRecordID()
		}
		return "", errors.Wrapf(err, "updating quote block %s", id)
	}
	return text, nil
}

// UpdateSemesters writes credits, course count and SGPA onto every known
// semester record. Labels missing from aggregates are written as zeros. Each
// update is independent; failures are returned, not retried.
func (p *Propagator) UpdateSemesters(ctx context.Context, known map[string]string, aggregates map[string]SemesterAggregate) []SemesterFailure {
	labels := make([]string, 0, len(known))
	for label := range known {
		labels = append(labels, label)
	}
	SortLabels(labels)

	var failures []SemesterFailure
	for _, label := range labels {
		recordID := known[label]
		agg := aggregates[label]

		fields := models.Properties{
			p.Schema.SemesterCredits: models.NumberValue(agg.Credits),
			p.Schema.SemesterCourses: models.NumberValue(float64(agg.Courses)),
			p.Schema.SemesterSGPA:    models.NumberValue(agg.SGPA),
		}
		if _, err := p.Store.UpdateRecordFields(ctx, recordID, fields); err != nil {
			l := logger.Op("update_semester", recordID)
			l.Error().Err(err).Str("semester", label).Msg("Failed to update semester aggregates")
			failures = append(failures, SemesterFailure{Label: label, RecordID: recordID, Error: err.Error()})
			continue
		}
		logger.Debug().Str("semester", label).Float64("sgpa", agg.SGPA).Msg("Semester aggregates updated")
	}
	return failures
}
