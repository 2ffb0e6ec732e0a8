package properties

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/visheshsingal/hitech/apperr"
	"github.com/visheshsingal/hitech/media"
	"github.com/visheshsingal/hitech/models"
)

const uploadConcurrency = 4

type uploadJob struct {
	upload Upload
	kind   media.Kind
	dst    *models.MediaRef
}

// uploadPlan holds the destination slots for every file of one request.
type uploadPlan struct {
	images   []models.MediaRef
	videos   []models.MediaRef
	video    *models.MediaRef
	featured *models.MediaRef
	curated  *models.MediaRef
	jobs     []uploadJob
}

func newUploadPlan(in Input) *uploadPlan {
	p := &uploadPlan{
		images: make([]models.MediaRef, len(in.Images)),
		videos: make([]models.MediaRef, len(in.Videos)),
	}
	for i := range in.Images {
		p.jobs = append(p.jobs, uploadJob{upload: in.Images[i], kind: media.Image, dst: &p.images[i]})
	}
	for i := range in.Videos {
		p.jobs = append(p.jobs, uploadJob{upload: in.Videos[i], kind: media.Video, dst: &p.videos[i]})
	}
	if in.Video != nil {
		p.video = &models.MediaRef{}
		p.jobs = append(p.jobs, uploadJob{upload: *in.Video, kind: media.Video, dst: p.video})
	}
	if in.FeaturedLocationTitle != "" && !in.RemoveFeaturedLocation && in.FeaturedLocationImage != nil {
		p.featured = &models.MediaRef{}
		p.jobs = append(p.jobs, uploadJob{upload: *in.FeaturedLocationImage, kind: media.Image, dst: p.featured})
	}
	if in.CuratedPropertyTitle != "" && !in.RemoveCuratedProperty && in.CuratedPropertyImage != nil {
		p.curated = &models.MediaRef{}
		p.jobs = append(p.jobs, uploadJob{upload: *in.CuratedPropertyImage, kind: media.Image, dst: p.curated})
	}
	return p
}

// run uploads every file concurrently. On any failure nothing is kept: the
// blobs that did upload are removed best-effort and the error is returned.
func (s *Service) run(ctx context.Context, p *uploadPlan) error {
	if len(p.jobs) == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)
	for _, j := range p.jobs {
		j := j
		g.Go(func() error {
			rc, err := j.upload.Open()
			if err != nil {
				return apperr.Validation("failed to read file %s", j.upload.Filename)
			}
			defer rc.Close()

			ref, err := s.media.Upload(gctx, rc, j.kind)
			if err != nil {
				return err
			}
			*j.dst = ref
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.discard(ctx, p)
		return err
	}
	return nil
}

func (s *Service) discard(ctx context.Context, p *uploadPlan) {
	byKind := map[media.Kind][]string{}
	for _, j := range p.jobs {
		if j.dst.PublicID != "" {
			byKind[j.kind] = append(byKind[j.kind], j.dst.PublicID)
		}
	}
	for kind, ids := range byKind {
		if err := s.media.DeleteMany(ctx, ids, kind); err != nil {
			s.log.Warn("failed to discard uploaded media", "kind", kind, "count", len(ids), "error", err)
		}
	}
}
