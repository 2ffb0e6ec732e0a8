package properties

import (
	"context"

	"github.com/visheshsingal/hitech/apperr"
	"github.com/visheshsingal/hitech/media"
	"github.com/visheshsingal/hitech/models"
	"github.com/visheshsingal/hitech/store"
	"github.com/visheshsingal/hitech/utils"
)

var tagLabels = map[string]string{
	store.TagFeaturedLocation: "Featured location",
	store.TagCuratedProperty:  "Curated property",
}

func (s *Service) Create(ctx context.Context, in Input) (*models.Property, error) {
	if err := in.requireCreateFields(); err != nil {
		return nil, err
	}
	if len(in.Images) > models.MaxImages {
		return nil, apperr.Validation("Maximum %d images allowed", models.MaxImages)
	}
	if len(in.Videos) > models.MaxVideos {
		return nil, apperr.Validation("Maximum %d videos allowed", models.MaxVideos)
	}

	now := s.now().UTC()
	p := &models.Property{
		Status:      models.StatusActive,
		Amenities:   []string{},
		Collections: []string{},
		Images:      []models.MediaRef{},
		Videos:      []models.MediaRef{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := in.apply(p); err != nil {
		return nil, err
	}
	p.Featured = false

	featuredReuse, err := s.resolveTag(ctx, store.TagFeaturedLocation, in.FeaturedLocationTitle, in.FeaturedLocationImage, nil)
	if err != nil {
		return nil, err
	}
	curatedReuse, err := s.resolveTag(ctx, store.TagCuratedProperty, in.CuratedPropertyTitle, in.CuratedPropertyImage, nil)
	if err != nil {
		return nil, err
	}

	plan := newUploadPlan(in)
	if err := s.run(ctx, plan); err != nil {
		return nil, err
	}

	p.Images = plan.images
	p.Videos = plan.videos
	p.Video = plan.video
	p.FeaturedLocation = updatedTag(nil, false, in.FeaturedLocationTitle, plan.featured, featuredReuse)
	p.CuratedProperty = updatedTag(nil, false, in.CuratedPropertyTitle, plan.curated, curatedReuse)

	if err := s.store.Insert(ctx, p); err != nil {
		s.discard(ctx, plan)
		return nil, err
	}
	s.invalidate(ctx)
	s.log.Info("property created", "property_id", p.ID.Hex(), "images", len(p.Images), "videos", len(p.Videos))
	return p, nil
}

// Update applies the provided fields, appends new images and videos, and
// replaces the legacy single video. Tags are renamed, replaced or removed.
func (s *Service) Update(ctx context.Context, id string, in Input) (*models.Property, error) {
	oid, err := utils.ParseObjectID(id, "property")
	if err != nil {
		return nil, err
	}
	p, err := s.store.Get(ctx, oid)
	if err != nil {
		return nil, err
	}

	if len(p.Images)+len(in.Images) > models.MaxImages {
		return nil, apperr.Validation("Total images cannot exceed %d", models.MaxImages)
	}
	if len(p.Videos)+len(in.Videos) > models.MaxVideos {
		return nil, apperr.Validation("Total videos cannot exceed %d", models.MaxVideos)
	}
	if err := in.apply(p); err != nil {
		return nil, err
	}

	var featuredReuse, curatedReuse *models.MediaRef
	if !in.RemoveFeaturedLocation {
		if featuredReuse, err = s.resolveTag(ctx, store.TagFeaturedLocation, in.FeaturedLocationTitle, in.FeaturedLocationImage, p.FeaturedLocation); err != nil {
			return nil, err
		}
	}
	if !in.RemoveCuratedProperty {
		if curatedReuse, err = s.resolveTag(ctx, store.TagCuratedProperty, in.CuratedPropertyTitle, in.CuratedPropertyImage, p.CuratedProperty); err != nil {
			return nil, err
		}
	}

	plan := newUploadPlan(in)
	if err := s.run(ctx, plan); err != nil {
		return nil, err
	}

	var replaced []string
	if plan.video != nil && p.Video != nil && p.Video.PublicID != "" {
		replaced = append(replaced, p.Video.PublicID)
	}

	p.Images = append(p.Images, plan.images...)
	p.Videos = append(p.Videos, plan.videos...)
	if plan.video != nil {
		p.Video = plan.video
	}
	p.FeaturedLocation = updatedTag(p.FeaturedLocation, in.RemoveFeaturedLocation, in.FeaturedLocationTitle, plan.featured, featuredReuse)
	p.CuratedProperty = updatedTag(p.CuratedProperty, in.RemoveCuratedProperty, in.CuratedPropertyTitle, plan.curated, curatedReuse)
	p.UpdatedAt = s.now().UTC()

	if err := s.store.Replace(ctx, p); err != nil {
		s.discard(ctx, plan)
		return nil, err
	}
	s.invalidate(ctx)
	s.release(ctx, replaced, media.Video)
	return p, nil
}

// release removes media no longer referenced by any stored property.
// Failures leave orphaned blobs and are only logged.
func (s *Service) release(ctx context.Context, publicIDs []string, kind media.Kind) {
	if len(publicIDs) == 0 {
		return
	}
	if err := s.media.DeleteMany(ctx, publicIDs, kind); err != nil {
		s.log.Warn("failed to delete replaced media", "kind", kind, "count", len(publicIDs), "error", err)
	}
}

// resolveTag finds the image a tag title will use when no file is uploaded
// for it: the property's current tag image, or one already attached to the
// same title elsewhere.
func (s *Service) resolveTag(ctx context.Context, field, title string, upload *Upload, current *models.TaggedImage) (*models.MediaRef, error) {
	if title == "" || upload != nil {
		return nil, nil
	}
	if current != nil && current.Image.URL != "" {
		img := current.Image
		return &img, nil
	}
	img, err := s.store.FindTagImage(ctx, field, title)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, apperr.Validation("%s requires an image for a new title", tagLabels[field])
	}
	return img, nil
}

func updatedTag(current *models.TaggedImage, remove bool, title string, uploaded, reuse *models.MediaRef) *models.TaggedImage {
	if remove {
		return nil
	}
	if title == "" {
		return current
	}
	img := reuse
	if uploaded != nil {
		img = uploaded
	}
	if img == nil {
		return current
	}
	return &models.TaggedImage{Title: title, Image: *img}
}

// Delete removes the property, then its images and videos from the media
// host. Tag images are shared by title and stay.
func (s *Service) Delete(ctx context.Context, id string) error {
	oid, err := utils.ParseObjectID(id, "property")
	if err != nil {
		return err
	}
	p, err := s.store.Get(ctx, oid)
	if err != nil {
		return err
	}

	images := publicIDs(p.Images)
	videos := publicIDs(p.Videos)
	if p.Video != nil && p.Video.PublicID != "" {
		videos = append(videos, p.Video.PublicID)
	}

	if err := s.store.Delete(ctx, oid); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.release(ctx, images, media.Image)
	s.release(ctx, videos, media.Video)
	s.log.Info("property deleted", "property_id", oid.Hex())
	return nil
}

func (s *Service) DeleteImage(ctx context.Context, id string, index int) (*models.Property, error) {
	oid, err := utils.ParseObjectID(id, "property")
	if err != nil {
		return nil, err
	}
	p, err := s.store.Get(ctx, oid)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(p.Images) {
		return nil, apperr.Validation("Invalid image index")
	}

	removed := p.Images[index].PublicID
	p.Images = append(p.Images[:index], p.Images[index+1:]...)
	p.UpdatedAt = s.now().UTC()

	if err := s.store.Replace(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	if removed != "" {
		s.release(ctx, []string{removed}, media.Image)
	}
	return p, nil
}

func (s *Service) ToggleFeatured(ctx context.Context, id string) (*models.Property, error) {
	oid, err := utils.ParseObjectID(id, "property")
	if err != nil {
		return nil, err
	}
	p, err := s.store.ToggleFeatured(ctx, oid)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return p, nil
}

func publicIDs(refs []models.MediaRef) []string {
	ids := make([]string, 0, len(refs))
	for _, r := range refs {
		if r.PublicID != "" {
			ids = append(ids, r.PublicID)
		}
	}
	return ids
}
