package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/TobiSchelling/SmogStory/internal/aqi"
	"github.com/TobiSchelling/SmogStory/internal/config"
	"github.com/TobiSchelling/SmogStory/internal/database"
	"github.com/TobiSchelling/SmogStory/internal/publish"
	"github.com/TobiSchelling/SmogStory/internal/render"
)

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Result holds the results of a full pipeline run.
type Result struct {
	AQI       int
	StoryPath string
	MediaID   string
	Steps     []StepResult
}

// Err returns the first step error, if any.
func (r *Result) Err() error {
	for _, s := range r.Steps {
		if s.Err != nil {
			return fmt.Errorf("%s: %w", s.Name, s.Err)
		}
	}
	return nil
}

// Fetcher returns the current AQI reading.
type Fetcher interface {
	Fetch(ctx context.Context) (int, error)
}

// Pipeline chains fetch, render and (optionally) publish.
type Pipeline struct {
	cfg       *config.Config
	db        *database.DB
	fetcher   Fetcher
	renderer  *render.Renderer
	publisher *publish.Publisher
	redactor  *publish.Redactor
}

// New creates a new pipeline. db may be nil, in which case nothing is
// recorded in the ledger.
func New(cfg *config.Config, db *database.DB, fetcher Fetcher, renderer *render.Renderer, publisher *publish.Publisher, redactor *publish.Redactor) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		db:        db,
		fetcher:   fetcher,
		renderer:  renderer,
		publisher: publisher,
		redactor:  redactor,
	}
}

// Run executes the pipeline, stopping at the first failing step.
func (p *Pipeline) Run(ctx context.Context, withPublish bool) *Result {
	r := &Result{}
	total := 2
	if withPublish {
		total = 3
	}

	log.Printf("Step 1/%d: Fetching %s AQI...", total, p.cfg.Source.City)
	value, err := p.fetcher.Fetch(ctx)
	if err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Fetch", Err: err})
		return r
	}
	r.AQI = value
	tier := aqi.Classify(value)
	r.Steps = append(r.Steps, StepResult{
		Name:    "Fetch",
		Summary: fmt.Sprintf("AQI %d (%s)", value, tier.Label),
	})

	log.Printf("Step 2/%d: Rendering story image...", total)
	path, err := p.renderer.Render(value)
	if err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Render", Err: err})
		return r
	}
	r.StoryPath = path
	RecordRender(p.db, path, tier)
	r.Steps = append(r.Steps, StepResult{Name: "Render", Summary: "Image saved to " + path})

	if !withPublish {
		return r
	}

	log.Printf("Step 3/%d: Publishing story...", total)
	pub, err := p.publisher.Publish(ctx, filepath.Base(path))
	RecordPublication(p.db, pub, err, p.redactor)
	if err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Publish", Err: err})
		return r
	}
	r.MediaID = pub.MediaID
	r.Steps = append(r.Steps, StepResult{Name: "Publish", Summary: "Story posted with media ID " + pub.MediaID})
	return r
}

// DryRun shows what would be done without fetching or posting.
func (p *Pipeline) DryRun(withPublish bool) *Result {
	r := &Result{}
	r.Steps = append(r.Steps, StepResult{
		Name:    "Fetch",
		Summary: fmt.Sprintf("[dry-run] Would GET %s", p.cfg.Source.URL),
	})

	out := p.renderer.OutputPath(time.Now())
	summary := fmt.Sprintf("[dry-run] Would write %s", out)
	if _, err := os.Stat(out); err == nil {
		summary += " (overwriting existing file)"
	}
	r.Steps = append(r.Steps, StepResult{Name: "Render", Summary: summary})

	if withPublish {
		r.Steps = append(r.Steps, StepResult{
			Name:    "Publish",
			Summary: fmt.Sprintf("[dry-run] Would post %s via %s hosting", filepath.Base(out), p.cfg.Hosting.Provider),
		})
	}
	return r
}

// RecordRender stores a render in the ledger. Ledger failures are logged
// and never fail the run.
func RecordRender(db *database.DB, path string, tier aqi.Tier) {
	if db == nil {
		return
	}
	if err := db.RecordRender(filepath.Base(path), tier.Name); err != nil {
		log.Printf("Error recording render: %v", err)
	}
}

// RecordPublication stores a publish attempt in the ledger with the error
// message redacted.
func RecordPublication(db *database.DB, pub *publish.Result, err error, redactor *publish.Redactor) {
	if db == nil || pub == nil {
		return
	}
	row := database.Publication{
		Filename:    pub.Filename,
		ImageURL:    &pub.ImageURL,
		ContainerID: &pub.ContainerID,
		MediaID:     &pub.MediaID,
		State:       string(pub.State),
	}
	if err != nil {
		msg := redactor.Redact(err.Error())
		row.Error = &msg
	}
	if _, dbErr := db.RecordPublication(row); dbErr != nil {
		log.Printf("Error recording publication: %v", dbErr)
	}
}
