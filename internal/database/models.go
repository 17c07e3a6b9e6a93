package database

// Render is a story image written by the renderer. The AQI value itself
// is not stored, only the tier it was drawn for.
type Render struct {
	ID         int64
	Filename   string
	Tier       string
	RenderedAt string
}

// Publication is one attempt to publish a story file.
type Publication struct {
	ID          int64
	Filename    string
	ImageURL    *string
	ContainerID *string
	MediaID     *string
	State       string
	Error       *string // redacted before it is stored
	CreatedAt   string
}

// Stats contains aggregate ledger statistics.
type Stats struct {
	Renders        int
	Publications   int
	Published      int
	Failed         int
	LastRenderedAt *string
	LastPublished  *string
}
