package publish

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/TobiSchelling/SmogStory/internal/config"
	"github.com/TobiSchelling/SmogStory/internal/hosting"
)

// State is the position of one publish run in the container workflow.
type State string

const (
	StateStart            State = "START"
	StateContainerCreated State = "CONTAINER_CREATED"
	StatePublished        State = "PUBLISHED"
	StateFailed           State = "FAILED"
)

// Result describes a publish run. It is returned on failure too, holding
// whatever was reached before the error.
type Result struct {
	Filename    string
	ImageURL    string
	ContainerID string
	MediaID     string
	State       State
}

// Publisher posts rendered story files through the Graph API.
type Publisher struct {
	cfg      *config.Config
	host     hosting.Host
	graph    *GraphClient
	redactor *Redactor
	sleep    func(ctx context.Context, d time.Duration) error
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithHost sets the image host instead of building one from config.
func WithHost(h hosting.Host) Option {
	return func(p *Publisher) { p.host = h }
}

// WithRedactor shares a redactor with the caller so it can mask secrets
// in errors it prints.
func WithRedactor(r *Redactor) Option {
	return func(p *Publisher) { p.redactor = r }
}

// WithSleep replaces the wait between container creation and publishing.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(p *Publisher) { p.sleep = fn }
}

// New creates a publisher.
func New(cfg *config.Config, opts ...Option) *Publisher {
	p := &Publisher{cfg: cfg, sleep: sleepContext}
	for _, opt := range opts {
		opt(p)
	}
	if p.redactor == nil {
		p.redactor = &Redactor{}
	}
	p.graph = NewGraphClient(cfg.Publish.GraphURL, cfg.Publish.APIVersion, p.redactor)
	return p
}

// Publish validates filename, resolves its public URL and runs the
// create-container then publish workflow. No network call is made until
// the file and credentials check out.
func (p *Publisher) Publish(ctx context.Context, filename string) (*Result, error) {
	r := &Result{Filename: filename, State: StateStart}

	fail := func(err error) (*Result, error) {
		r.State = StateFailed
		return r, err
	}

	log.Printf("Validating file: %s", filename)
	localPath, err := ValidateStoryFile(p.cfg.Publish.ImagesDir, filename)
	if err != nil {
		return fail(err)
	}

	creds, err := LoadCredentials(p.cfg.Credentials.TokenEnv, p.cfg.Credentials.UserIDEnv)
	if err != nil {
		return fail(err)
	}
	p.redactor.Add(creds.Token)

	if p.host == nil {
		p.host, err = hosting.New(ctx, p.cfg)
		if err != nil {
			return fail(fmt.Errorf("%w: %w", ErrConfig, err))
		}
	}

	r.ImageURL, err = p.host.PublicURL(ctx, localPath)
	if err != nil {
		return fail(err)
	}
	log.Printf("Image URL: %s", r.ImageURL)

	log.Println("Creating story container...")
	r.ContainerID, err = p.graph.CreateStoryContainer(ctx, creds, r.ImageURL)
	if err != nil {
		return fail(err)
	}
	r.State = StateContainerCreated
	log.Printf("Container created: %s", r.ContainerID)

	log.Printf("Waiting %s for the container to be processed...", p.cfg.Publish.Delay)
	if err := p.sleep(ctx, p.cfg.Publish.Delay); err != nil {
		return fail(err)
	}

	log.Println("Publishing story...")
	r.MediaID, err = p.graph.PublishContainer(ctx, creds, r.ContainerID)
	if err != nil {
		return fail(err)
	}
	r.State = StatePublished
	log.Printf("Story published: %s", r.MediaID)

	return r, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func trimmedEnv(key string) string {
	if key == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(key))
}
