// Package media stores uploaded images with an external image host.
package media

import (
	"context"
	"errors"
)

// Uploader stores an image (a data URI or a remote URL) and returns its
// public HTTPS URL.
type Uploader interface {
	Name() string
	Upload(ctx context.Context, image string) (string, error)
}

// ErrNotConfigured is returned by Disabled.
var ErrNotConfigured = errors.New("image storage is not configured")

// Disabled rejects every upload.
type Disabled struct{}

func (Disabled) Name() string { return "media" }

func (Disabled) Upload(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}
