package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// APIError is a non-200 answer from the Graph API. Body is already redacted.
type APIError struct {
	Step   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s failed: %d - %s", e.Step, e.Status, e.Body)
}

// GraphClient talks to the media endpoints of the Graph API.
type GraphClient struct {
	client   *resty.Client
	redactor *Redactor
}

// NewGraphClient creates a client rooted at baseURL/version.
func NewGraphClient(baseURL, version string, redactor *Redactor) *GraphClient {
	root := strings.TrimRight(baseURL, "/")
	if version != "" {
		root += "/" + strings.Trim(version, "/")
	}
	return &GraphClient{
		client:   resty.New().SetBaseURL(root).SetTimeout(60 * time.Second),
		redactor: redactor,
	}
}

// CreateStoryContainer creates a STORIES media container for imageURL and
// returns its id.
func (g *GraphClient) CreateStoryContainer(ctx context.Context, creds Credentials, imageURL string) (string, error) {
	return g.post(ctx, "create container", "/"+creds.UserID+"/media", map[string]string{
		"image_url":    imageURL,
		"media_type":   "STORIES",
		"access_token": creds.Token,
	})
}

// PublishContainer publishes a container and returns the media id.
func (g *GraphClient) PublishContainer(ctx context.Context, creds Credentials, containerID string) (string, error) {
	return g.post(ctx, "publish", "/"+creds.UserID+"/media_publish", map[string]string{
		"creation_id":  containerID,
		"access_token": creds.Token,
	})
}

func (g *GraphClient) post(ctx context.Context, step, path string, form map[string]string) (string, error) {
	res, err := g.client.R().
		SetContext(ctx).
		SetFormData(form).
		Post(path)
	if err != nil {
		return "", fmt.Errorf("%s request: %s", step, g.redactor.Redact(err.Error()))
	}

	if res.StatusCode() != 200 {
		return "", &APIError{
			Step:   step,
			Status: res.StatusCode(),
			Body:   g.redactor.Redact(res.String()),
		}
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(res.Body(), &result); err != nil {
		return "", fmt.Errorf("%s: decoding response: %w", step, err)
	}
	if result.ID == "" {
		return "", fmt.Errorf("%s: response has no id", step)
	}
	return result.ID, nil
}
