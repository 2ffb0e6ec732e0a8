// Package media stores listing images and videos on an external host.
package media

import (
	"context"
	"io"

	"github.com/visheshsingal/hitech/apperr"
	"github.com/visheshsingal/hitech/models"
)

type Kind string

const (
	Image Kind = "image"
	Video Kind = "video"
)

// Host uploads a blob and returns a reference that can later be deleted.
type Host interface {
	Upload(ctx context.Context, r io.Reader, kind Kind) (models.MediaRef, error)
	Delete(ctx context.Context, publicID string, kind Kind) error
	DeleteMany(ctx context.Context, publicIDs []string, kind Kind) error
}

// Disabled is used when no media credentials are configured. Uploads fail,
// deletes are no-ops so listings without media stay manageable.
type Disabled struct{}

func (Disabled) Upload(context.Context, io.Reader, Kind) (models.MediaRef, error) {
	return models.MediaRef{}, apperr.Upstream("media host is not configured", nil)
}

func (Disabled) Delete(context.Context, string, Kind) error { return nil }

func (Disabled) DeleteMany(context.Context, []string, Kind) error { return nil }
