// Package importer bulk-loads companies and contacts through the duplicate
// resolver, one record at a time.
package importer

import (
	"context"
	"errors"
	"io"
	"slices"

	"github.com/google/uuid"
	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/directory-cli/internal/company"
	"github.com/sells-group/directory-cli/internal/fetcher"
)

// Resolver resolves candidates into persisted records.
type Resolver interface {
	ResolveCompany(ctx context.Context, c company.CompanyCandidate) (*company.CompanyResolution, error)
	ResolveContact(ctx context.Context, c company.ContactCandidate) (*company.ContactResolution, error)
}

// Stats summarizes an import run. Skipped counts duplicates that had nothing
// new to merge.
type Stats struct {
	BatchID string `json:"batch_id"`
	Total   int    `json:"total"`
	Created int    `json:"created"`
	Merged  int    `json:"merged"`
	Skipped int    `json:"skipped"`
	Failed  int    `json:"failed"`
}

func (s *Stats) count(o company.Outcome) {
	switch o {
	case company.OutcomeCreated:
		s.Created++
	case company.OutcomeMerged:
		s.Merged++
	default:
		s.Skipped++
	}
}

// Importer runs imports.
type Importer struct {
	resolver Resolver
}

// New creates an Importer.
func New(r Resolver) *Importer {
	return &Importer{resolver: r}
}

// ImportCompanies resolves each company in order. A failed record is logged
// and counted; only context cancellation stops the run.
func (im *Importer) ImportCompanies(ctx context.Context, rows []company.CompanyCandidate) (Stats, error) {
	return run(ctx, "companies", sliceSource(rows), im.resolveCompany)
}

// ImportContacts resolves each contact in order. A failed record is logged
// and counted; only context cancellation stops the run.
func (im *Importer) ImportContacts(ctx context.Context, rows []company.ContactCandidate) (Stats, error) {
	return run(ctx, "contacts", sliceSource(rows), im.resolveContact)
}

// ImportCompanyTable decodes and imports companies from a table with at
// least a "name" column. Rows that fail to decode count as failed.
func (im *Importer) ImportCompanyTable(ctx context.Context, t *fetcher.Table) (Stats, error) {
	src, err := tableSource[company.CompanyCandidate](t, "name")
	if err != nil {
		return Stats{}, err
	}
	return run(ctx, "companies", src, im.resolveCompany)
}

// ImportContactTable decodes and imports contacts from a table with at least
// a "company_id" column.
func (im *Importer) ImportContactTable(ctx context.Context, t *fetcher.Table) (Stats, error) {
	src, err := tableSource[company.ContactCandidate](t, "company_id")
	if err != nil {
		return Stats{}, err
	}
	return run(ctx, "contacts", src, im.resolveContact)
}

func (im *Importer) resolveCompany(ctx context.Context, c company.CompanyCandidate) (company.Outcome, error) {
	res, err := im.resolver.ResolveCompany(ctx, c)
	if err != nil {
		return "", err
	}
	return res.Outcome, nil
}

func (im *Importer) resolveContact(ctx context.Context, c company.ContactCandidate) (company.Outcome, error) {
	res, err := im.resolver.ResolveContact(ctx, c)
	if err != nil {
		return "", err
	}
	if x := res.CrossCompanyMatch; x != nil {
		zap.L().Info("import: contact email also used at another company",
			zap.Int64("contact_id", res.Contact.ID),
			zap.Int64("other_company_id", x.Contact.CompanyID),
		)
	}
	return res.Outcome, nil
}

// source yields records until io.EOF. A non-EOF error fails one record.
type source[T any] func() (T, error)

func sliceSource[T any](rows []T) source[T] {
	i := 0
	return func() (T, error) {
		var zero T
		if i >= len(rows) {
			return zero, io.EOF
		}
		i++
		return rows[i-1], nil
	}
}

func tableSource[T any](t *fetcher.Table, required string) (source[T], error) {
	if !slices.Contains(t.Header, required) {
		return nil, eris.Errorf("importer: missing required column %q", required)
	}
	dec, err := csvutil.NewDecoder(t.Reader())
	if err != nil {
		return nil, eris.Wrap(err, "importer: read header")
	}
	return func() (T, error) {
		var v T
		err := dec.Decode(&v)
		return v, err
	}, nil
}

func run[T any](ctx context.Context, kind string, next source[T], resolve func(context.Context, T) (company.Outcome, error)) (Stats, error) {
	stats := Stats{BatchID: uuid.NewString()}
	log := zap.L().With(zap.String("batch_id", stats.BatchID), zap.String("kind", kind))
	log.Info("import: started")

	for row := 1; ; row++ {
		if err := ctx.Err(); err != nil {
			log.Warn("import: cancelled", zap.Int("processed", stats.Total))
			return stats, eris.Wrap(err, "importer: cancelled")
		}

		rec, err := next()
		if errors.Is(err, io.EOF) {
			break
		}
		stats.Total++
		if err != nil {
			stats.Failed++
			log.Warn("import: bad row", zap.Int("row", row), zap.Error(err))
			continue
		}

		outcome, err := resolve(ctx, rec)
		if err != nil {
			stats.Failed++
			log.Warn("import: record failed", zap.Int("row", row), zap.Error(err))
			continue
		}
		stats.count(outcome)
	}

	log.Info("import: complete",
		zap.Int("total", stats.Total),
		zap.Int("created", stats.Created),
		zap.Int("merged", stats.Merged),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
	)
	return stats, nil
}
