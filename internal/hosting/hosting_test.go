package hosting

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/TobiSchelling/SmogStory/internal/config"
)

type mockPutter struct {
	mock.Mock
}

func (m *mockPutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.PutObjectOutput)
	return out, args.Error(1)
}

func githubConfig() config.GitHubHosting {
	return config.GitHubHosting{
		RepositoryEnv: "GITHUB_REPOSITORY",
		Branch:        "main",
		BranchEnv:     "GITHUB_REF_NAME",
	}
}

func TestGitHubRawURL(t *testing.T) {
	t.Setenv("GITHUB_REPOSITORY", "melis/smogsquad")
	t.Setenv("GITHUB_REF_NAME", "")

	host, err := NewGitHubRaw(githubConfig(), "stories")
	require.NoError(t, err)

	url, err := host.PublicURL(context.Background(), filepath.Join("stories", "2025-06-01_14.png"))
	require.NoError(t, err)
	assert.Equal(t, "https://raw.githubusercontent.com/melis/smogsquad/main/stories/2025-06-01_14.png", url)
}

func TestGitHubRawBranchFromEnv(t *testing.T) {
	t.Setenv("GITHUB_REPOSITORY", "")
	t.Setenv("GITHUB_REF_NAME", "publish")

	cfg := githubConfig()
	cfg.Repository = "owner/repo"
	host, err := NewGitHubRaw(cfg, "stories")
	require.NoError(t, err)
	assert.Equal(t, "owner/repo", host.Repository)
	assert.Equal(t, "publish", host.Branch)
}

func TestGitHubRawRequiresRepository(t *testing.T) {
	t.Setenv("GITHUB_REPOSITORY", "")

	_, err := NewGitHubRaw(githubConfig(), "stories")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoRepository))
	assert.Contains(t, err.Error(), "GITHUB_REPOSITORY")
}

func TestS3UploadsAndReturnsURL(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "2025-06-01_14.png")
	require.NoError(t, os.WriteFile(local, []byte("png"), 0o644))

	putter := &mockPutter{}
	putter.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return *in.Bucket == "smog" && *in.Key == "stories/2025-06-01_14.png" && *in.ContentType == "image/png"
	})).Return(&s3.PutObjectOutput{}, nil)

	host := NewS3WithClient(putter, config.S3Hosting{Bucket: "smog", Prefix: "/stories/"}, "eu-central-1")
	url, err := host.PublicURL(context.Background(), local)
	require.NoError(t, err)
	assert.Equal(t, "https://smog.s3.eu-central-1.amazonaws.com/stories/2025-06-01_14.png", url)
	putter.AssertExpectations(t)
}

func TestS3PublicBaseURL(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "a.png")
	require.NoError(t, os.WriteFile(local, []byte("png"), 0o644))

	putter := &mockPutter{}
	putter.On("PutObject", mock.Anything, mock.Anything).Return(&s3.PutObjectOutput{}, nil)

	host := NewS3WithClient(putter, config.S3Hosting{Bucket: "smog", PublicBaseURL: "https://cdn.example.com/"}, "")
	url, err := host.PublicURL(context.Background(), local)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.png", url)
}

func TestS3UploadError(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "a.png")
	require.NoError(t, os.WriteFile(local, []byte("png"), 0o644))

	putter := &mockPutter{}
	putter.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	host := NewS3WithClient(putter, config.S3Hosting{Bucket: "smog"}, "us-east-1")
	_, err := host.PublicURL(context.Background(), local)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestNewUnknownProvider(t *testing.T) {
	cfg := &config.Config{}
	cfg.Hosting.Provider = "ftp"
	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}
