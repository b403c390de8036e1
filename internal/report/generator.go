package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Zachdehooge/riskmap-dashboard/internal/blob"
	"github.com/Zachdehooge/riskmap-dashboard/internal/metrics"
	"github.com/Zachdehooge/riskmap-dashboard/internal/model"
)

// ErrUnavailable is returned when a collaborator is not configured.
var ErrUnavailable = errors.New("report generation unavailable")

// Companies is the company lookup reports are built from.
type Companies interface {
	Averages
	Company(ctx context.Context, name string) (model.CreditProfile, error)
}

// Records persists report metadata.
type Records interface {
	SaveReport(ctx context.Context, r model.Report) error
	Report(ctx context.Context, id string) (model.Report, error)
}

// Generator builds, renders and stores reports.
type Generator struct {
	Companies Companies
	Records   Records
	Blob      blob.Store
	Metrics   *metrics.Metrics
	Now       func() time.Time
}

// Result describes a stored report.
type Result struct {
	ID          string     `json:"report_id"`
	DownloadURL string     `json:"download_url"`
	Format      string     `json:"format"`
	Schedule    string     `json:"schedule"`
	NextRun     *time.Time `json:"next_run,omitempty"`
	Report      Report     `json:"-"`
}

// DownloadURL is the path a stored report is served from.
func DownloadURL(id string) string {
	return "/reports/" + id
}

// BlobKey is the object key of a report artifact.
func BlobKey(id, format string) string {
	return fmt.Sprintf("reports/%s.%s", id, format)
}

// NextRun returns the next generation time for a recurring schedule. It
// reports false for one-off reports.
func NextRun(schedule string, from time.Time) (time.Time, bool) {
	switch schedule {
	case ScheduleDaily:
		return from.Add(24 * time.Hour), true
	case ScheduleWeekly:
		return from.Add(7 * 24 * time.Hour), true
	case ScheduleMonthly:
		return from.Add(30 * 24 * time.Hour), true
	}
	return time.Time{}, false
}

func (g *Generator) now() time.Time {
	if g.Now == nil {
		return time.Now()
	}
	return g.Now()
}

// Generate validates req, builds the report for the named company and
// stores the rendered artifact. Unknown companies surface store.ErrNotFound.
func (g *Generator) Generate(ctx context.Context, req Request) (Result, error) {
	var res Result
	if g.Companies == nil || g.Blob == nil {
		return res, ErrUnavailable
	}
	req, err := Normalize(req)
	if err != nil {
		return res, err
	}
	p, err := g.Companies.Company(ctx, req.CompanyName)
	if err != nil {
		return res, fmt.Errorf("company %s: %w", req.CompanyName, err)
	}
	now := g.now()
	r, err := Build(ctx, p, req, g.Companies, now)
	if err != nil {
		return res, err
	}
	r.ID = uuid.NewString()
	body, err := Render(r, req.Format)
	if err != nil {
		return res, err
	}
	key := BlobKey(r.ID, req.Format)
	if _, err := g.Blob.Put(ctx, key, bytes.NewReader(body), ContentType(req.Format)); err != nil {
		return res, fmt.Errorf("store report: %w", err)
	}
	if g.Records != nil {
		if err := g.Records.SaveReport(ctx, model.Report{
			ID:          r.ID,
			CompanyName: r.CompanyName,
			Sections:    req.Sections,
			Format:      req.Format,
			Schedule:    req.Schedule,
			BlobKey:     key,
			CreatedAt:   now.UTC(),
		}); err != nil {
			if derr := g.Blob.Delete(ctx, key); derr != nil {
				log.Printf("[report] remove orphaned %s: %v", key, derr)
			}
			return res, fmt.Errorf("record report: %w", err)
		}
	}
	g.Metrics.ReportGenerated(req.Format)
	if req.DeliverEmail {
		log.Printf("[report] emailing %s report %s to %s", r.CompanyName, r.ID, req.Email)
	}
	res = Result{ID: r.ID, DownloadURL: DownloadURL(r.ID), Format: req.Format, Schedule: req.Schedule, Report: r}
	if next, ok := NextRun(req.Schedule, now); ok {
		next = next.UTC()
		res.NextRun = &next
	}
	log.Printf("[report] generated %s (%s, %d sections)", r.ID, req.Format, len(r.Sections))
	return res, nil
}

// Open returns the stored artifact of report id. The caller closes the
// reader.
func (g *Generator) Open(ctx context.Context, id string) (model.Report, blob.Info, io.ReadCloser, error) {
	if g.Records == nil || g.Blob == nil {
		return model.Report{}, blob.Info{}, nil, ErrUnavailable
	}
	rec, err := g.Records.Report(ctx, id)
	if err != nil {
		return rec, blob.Info{}, nil, err
	}
	info, rc, err := g.Blob.Get(ctx, rec.BlobKey)
	if err != nil {
		return rec, info, nil, fmt.Errorf("load report %s: %w", id, err)
	}
	return rec, info, rc, nil
}
