package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"golang.org/x/sync/errgroup"

	"github.com/visheshsingal/hitech/apperr"
	"github.com/visheshsingal/hitech/config"
	"github.com/visheshsingal/hitech/models"
)

const deleteConcurrency = 4

type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
	log    *slog.Logger
}

func NewCloudinary(cfg config.MediaConfig, log *slog.Logger) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	return &Cloudinary{cld: cld, folder: cfg.Folder, log: log}, nil
}

// New returns a Cloudinary host when credentials are present, Disabled
// otherwise.
func New(cfg config.MediaConfig, log *slog.Logger) (Host, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		log.Warn("media credentials missing, uploads disabled")
		return Disabled{}, nil
	}
	return NewCloudinary(cfg, log)
}

func (c *Cloudinary) Upload(ctx context.Context, r io.Reader, kind Kind) (models.MediaRef, error) {
	resp, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:       c.folder,
		ResourceType: string(kind),
	})
	if err != nil {
		return models.MediaRef{}, apperr.Upstream("failed to upload "+string(kind), err)
	}
	if resp.Error.Message != "" {
		return models.MediaRef{}, apperr.Upstream("failed to upload "+string(kind), fmt.Errorf("%s", resp.Error.Message))
	}

	c.log.Debug("media uploaded", "kind", kind, "public_id", resp.PublicID)
	return models.MediaRef{URL: resp.SecureURL, PublicID: resp.PublicID}, nil
}

func (c *Cloudinary) Delete(ctx context.Context, publicID string, kind Kind) error {
	if publicID == "" {
		return nil
	}
	resp, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: string(kind),
	})
	if err != nil {
		return apperr.Upstream("failed to delete "+string(kind), err)
	}
	if resp.Error.Message != "" {
		return apperr.Upstream("failed to delete "+string(kind), fmt.Errorf("%s", resp.Error.Message))
	}
	return nil
}

func (c *Cloudinary) DeleteMany(ctx context.Context, publicIDs []string, kind Kind) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(deleteConcurrency)
	for _, id := range publicIDs {
		id := id
		g.Go(func() error { return c.Delete(ctx, id, kind) })
	}
	return g.Wait()
}
