package graph

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// TokenSource supplies the bearer token attached to every workspace API
// request. Session/token storage mechanics live outside this package; the
// client only consumes this interface.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenSource returns a fixed token.
type StaticTokenSource string

// Token implements TokenSource.
func (s StaticTokenSource) Token(ctx context.Context) (string, error) {
	if s == "" {
		return "", fmt.Errorf("no access token configured")
	}
	return string(s), nil
}

// TokenSourceFunc adapts a function to the TokenSource interface.
type TokenSourceFunc func(ctx context.Context) (string, error)

// Token implements TokenSource.
func (f TokenSourceFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// FileTokenSource rereads a token file at most once per refresh interval, so
// an external login helper can rotate the token without restarting aria.
type FileTokenSource struct {
	Path            string
	RefreshInterval time.Duration

	mu       sync.Mutex
	token    string
	loadedAt time.Time
}

// NewFileTokenSource creates a token source over a token file.
func NewFileTokenSource(path string) *FileTokenSource {
	return &FileTokenSource{Path: path, RefreshInterval: time.Minute}
}

// Token implements TokenSource.
func (f *FileTokenSource) Token(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.token != "" && time.Since(f.loadedAt) < f.RefreshInterval {
		return f.token, nil
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if f.token != "" {
			// Keep serving the last good token if the file is briefly absent.
			return f.token, nil
		}
		return "", fmt.Errorf("read token file: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("token file %s is empty", f.Path)
	}
	f.token = token
	f.loadedAt = time.Now()
	return token, nil
}
