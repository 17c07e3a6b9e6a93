package publish

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrConfig marks missing or unusable configuration such as credentials.
	ErrConfig = errors.New("configuration error")
	// ErrValidation marks a story file that cannot be published.
	ErrValidation = errors.New("validation error")
)

// Credentials are the Graph API secrets for one publish run.
type Credentials struct {
	Token  string
	UserID string
}

// LoadCredentials reads the token and account id from the named
// environment variables. Values are trimmed.
func LoadCredentials(tokenEnv, userIDEnv string) (Credentials, error) {
	token := trimmedEnv(tokenEnv)
	if token == "" {
		return Credentials{}, fmt.Errorf("%w: %s environment variable not set", ErrConfig, tokenEnv)
	}
	userID := trimmedEnv(userIDEnv)
	if userID == "" {
		return Credentials{}, fmt.Errorf("%w: %s environment variable not set", ErrConfig, userIDEnv)
	}
	return Credentials{Token: token, UserID: userID}, nil
}

// ValidateStoryFile checks that filename names a regular file directly
// inside imagesDir and returns its path.
func ValidateStoryFile(imagesDir, filename string) (string, error) {
	if filename == "" || filename == "." || filename == ".." || filepath.Base(filename) != filename {
		return "", fmt.Errorf("%w: invalid file name %q", ErrValidation, filename)
	}

	path := filepath.Join(imagesDir, filename)
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: file not found: %s", ErrValidation, path)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: not a file: %s", ErrValidation, path)
	}
	return path, nil
}
