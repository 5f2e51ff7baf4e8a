package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/hszk-dev/catalog/internal/domain/model"
	"github.com/hszk-dev/catalog/internal/domain/repository"
)

// mediaDownloadExpiry bounds how long a presigned media URL stays usable.
const mediaDownloadExpiry = time.Hour

// ErrUnsupportedMediaStatus is returned by UpdateMediaStatus when the encoder
// callback carries a status that is not a valid transition target.
var ErrUnsupportedMediaStatus = errors.New("unsupported media status")

// ErrUnknownMediaType is returned when a caller names a media slot the
// aggregate does not have: UpdateMediaStatus accepts trailer and video,
// GetMediaDownloadURL additionally the image slots.
var ErrUnknownMediaType = errors.New("unknown media type")

// CreateVideoInput contains the input parameters for creating a video.
type CreateVideoInput struct {
	Title         string
	Description   string
	YearLaunched  int
	Duration      int
	Rating        model.Rating
	IsOpened      bool
	CategoryIDs   []model.CategoryID
	GenreIDs      []model.GenreID
	CastMemberIDs []model.CastMemberID
}

// UpdateVideoInput contains the input parameters for updating a video. All
// fields are applied; relation id lists replace the existing relations.
type UpdateVideoInput struct {
	ID            model.VideoID
	Title         string
	Description   string
	YearLaunched  int
	Duration      int
	Rating        model.Rating
	IsOpened      bool
	CategoryIDs   []model.CategoryID
	GenreIDs      []model.GenreID
	CastMemberIDs []model.CastMemberID
}

// MediaFile is one uploaded file as received by the transport layer.
type MediaFile struct {
	FileName string
	MimeType string
	Size     int64
	Reader   io.Reader
}

// UploadMediasInput carries the media files to attach to a video. Nil slots
// are left untouched.
type UploadMediasInput struct {
	VideoID       model.VideoID
	Banner        *MediaFile
	Thumbnail     *MediaFile
	ThumbnailHalf *MediaFile
	Trailer       *MediaFile
	Video         *MediaFile
}

// UpdateMediaStatusInput is the encoder callback payload: which slot of which
// video moved to which status. EncodedLocation is only read for COMPLETED.
type UpdateMediaStatusInput struct {
	VideoID         model.VideoID
	MediaType       model.AudioVideoMediaType
	Status          model.MediaStatus
	EncodedLocation string
}

// VideoService defines the interface for video business logic operations.
type VideoService interface {
	// CreateVideo builds the aggregate from the input, verifies every related
	// id exists, and persists it. Returns *model.EntityValidationError when
	// structural validation fails and *model.NotFoundError when a related id
	// is unknown.
	CreateVideo(ctx context.Context, input CreateVideoInput) (*model.Video, error)

	// UpdateVideo applies the input to an existing video, replacing its
	// relations wholesale. Same error contract as CreateVideo.
	UpdateVideo(ctx context.Context, input UpdateVideoInput) (*model.Video, error)

	// DeleteVideo soft-deletes a video.
	DeleteVideo(ctx context.Context, id model.VideoID) error

	// GetVideo retrieves a video by id from the source of truth.
	GetVideo(ctx context.Context, id model.VideoID) (*model.Video, error)

	// SearchVideos queries the search projection.
	SearchVideos(ctx context.Context, params repository.SearchParams[repository.VideoSearchFilter]) (repository.SearchResult[*model.Video], error)

	// UploadMedias validates the uploaded files against the per-slot media
	// policies, stores them and replaces the aggregate's slots. Policy
	// violations across all provided files are aggregated into one error.
	UploadMedias(ctx context.Context, input UploadMediasInput) error

	// UpdateMediaStatus applies an encoder callback to a trailer or video
	// slot. A COMPLETED transition may flip the video to published.
	UpdateMediaStatus(ctx context.Context, input UpdateMediaStatusInput) error

	// GetMediaDownloadURL resolves a media slot (banner, thumbnail,
	// thumbnail_half, trailer or video) to its stored object and returns a
	// presigned URL for serving it. Returns *model.NotFoundError when the
	// video, the slot or the stored object is missing and
	// ErrUnknownMediaType for an unrecognized slot name.
	GetMediaDownloadURL(ctx context.Context, id model.VideoID, mediaType string) (string, error)
}

type videoService struct {
	factory UnitOfWorkFactory
	search  repository.VideoRepository
	storage repository.ObjectStorage
	bus     repository.EventBus
}

// NewVideoService creates a new VideoService instance. The search repository
// serves the list path; writes go through units of work built by the factory.
func NewVideoService(
	factory UnitOfWorkFactory,
	search repository.VideoRepository,
	storage repository.ObjectStorage,
	bus repository.EventBus,
) VideoService {
	return &videoService{
		factory: factory,
		search:  search,
		storage: storage,
		bus:     bus,
	}
}

func (s *videoService) CreateVideo(ctx context.Context, input CreateVideoInput) (*model.Video, error) {
	uow, repos := s.factory()

	categories, genres, members, err := s.loadRelations(ctx, repos, input.CategoryIDs, input.GenreIDs, input.CastMemberIDs)
	if err != nil {
		return nil, err
	}

	video := model.NewVideo(model.VideoProps{
		Title:        input.Title,
		Description:  input.Description,
		YearLaunched: input.YearLaunched,
		Duration:     input.Duration,
		Rating:       input.Rating,
		IsOpened:     input.IsOpened,
		Categories:   categories,
		Genres:       genres,
		CastMembers:  members,
	})
	if n := video.Validate(); n.HasErrors() {
		return nil, model.NewEntityValidationError(n)
	}

	err = uow.Do(ctx, func(ctx context.Context) error {
		return repos.Videos.Insert(ctx, video)
	})
	if err != nil {
		return nil, fmt.Errorf("create video: %w", err)
	}

	publishCommitted(ctx, s.bus, uow, repository.EntityVideo, video.EntityID(), repository.OpCreated)
	return video, nil
}

func (s *videoService) UpdateVideo(ctx context.Context, input UpdateVideoInput) (*model.Video, error) {
	uow, repos := s.factory()

	video, err := repos.Videos.FindByID(ctx, input.ID)
	if err != nil {
		return nil, fmt.Errorf("find video: %w", err)
	}
	if video == nil {
		return nil, model.NewNotFoundError("video", input.ID.String())
	}

	categories, genres, members, err := s.loadRelations(ctx, repos, input.CategoryIDs, input.GenreIDs, input.CastMemberIDs)
	if err != nil {
		return nil, err
	}

	video.ChangeTitle(input.Title)
	video.ChangeDescription(input.Description)
	video.ChangeYearLaunched(input.YearLaunched)
	video.ChangeDuration(input.Duration)
	video.ChangeRating(input.Rating)
	if input.IsOpened {
		video.MarkAsOpened()
	} else {
		video.MarkAsNotOpened()
	}
	if err := video.SyncCategories(categories); err != nil {
		return nil, err
	}
	if err := video.SyncGenres(genres); err != nil {
		return nil, err
	}
	if err := video.SyncCastMembers(members); err != nil {
		return nil, err
	}
	if n := video.Validate(); n.HasErrors() {
		return nil, model.NewEntityValidationError(n)
	}

	err = uow.Do(ctx, func(ctx context.Context) error {
		return repos.Videos.Update(ctx, video)
	})
	if err != nil {
		return nil, fmt.Errorf("update video: %w", err)
	}

	publishCommitted(ctx, s.bus, uow, repository.EntityVideo, video.EntityID(), repository.OpUpdated)
	return video, nil
}

func (s *videoService) DeleteVideo(ctx context.Context, id model.VideoID) error {
	uow, repos := s.factory()

	err := uow.Do(ctx, func(ctx context.Context) error {
		return repos.Videos.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	publishCommitted(ctx, s.bus, uow, repository.EntityVideo, id.String(), repository.OpDeleted)
	return nil
}

func (s *videoService) GetVideo(ctx context.Context, id model.VideoID) (*model.Video, error) {
	_, repos := s.factory()

	video, err := repos.Videos.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find video: %w", err)
	}
	if video == nil {
		return nil, model.NewNotFoundError("video", id.String())
	}
	return video, nil
}

func (s *videoService) SearchVideos(ctx context.Context, params repository.SearchParams[repository.VideoSearchFilter]) (repository.SearchResult[*model.Video], error) {
	return s.search.Search(ctx, params)
}

func (s *videoService) UploadMedias(ctx context.Context, input UploadMediasInput) error {
	uow, repos := s.factory()

	video, err := repos.Videos.FindByID(ctx, input.VideoID)
	if err != nil {
		return fmt.Errorf("find video: %w", err)
	}
	if video == nil {
		return model.NewNotFoundError("video", input.VideoID.String())
	}

	// Validate every provided file before any upload so the caller gets all
	// policy violations at once and storage never sees a half-valid batch.
	var errs []error
	var banner, thumbnail, thumbnailHalf *model.ImageMedia
	var trailer, videoMedia *model.AudioVideoMedia

	if input.Banner != nil {
		m, err := model.NewBannerFromFile(input.Banner.FileName, input.Banner.MimeType, input.Banner.Size, video.ID)
		if err != nil {
			errs = append(errs, err)
		} else {
			banner = &m
		}
	}
	if input.Thumbnail != nil {
		m, err := model.NewThumbnailFromFile(input.Thumbnail.FileName, input.Thumbnail.MimeType, input.Thumbnail.Size, video.ID)
		if err != nil {
			errs = append(errs, err)
		} else {
			thumbnail = &m
		}
	}
	if input.ThumbnailHalf != nil {
		m, err := model.NewThumbnailHalfFromFile(input.ThumbnailHalf.FileName, input.ThumbnailHalf.MimeType, input.ThumbnailHalf.Size, video.ID)
		if err != nil {
			errs = append(errs, err)
		} else {
			thumbnailHalf = &m
		}
	}
	if input.Trailer != nil {
		m, err := model.NewTrailerFromFile(input.Trailer.FileName, input.Trailer.MimeType, input.Trailer.Size, video.ID)
		if err != nil {
			errs = append(errs, err)
		} else {
			trailer = &m
		}
	}
	if input.Video != nil {
		m, err := model.NewVideoMediaFromFile(input.Video.FileName, input.Video.MimeType, input.Video.Size, video.ID)
		if err != nil {
			errs = append(errs, err)
		} else {
			videoMedia = &m
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	var replaced []string
	if banner != nil {
		if err := s.storage.Upload(ctx, banner.URL(), input.Banner.Reader, input.Banner.Size, input.Banner.MimeType); err != nil {
			return fmt.Errorf("upload banner: %w", err)
		}
		if video.Banner != nil {
			replaced = append(replaced, video.Banner.URL())
		}
		video.ReplaceBanner(*banner)
	}
	if thumbnail != nil {
		if err := s.storage.Upload(ctx, thumbnail.URL(), input.Thumbnail.Reader, input.Thumbnail.Size, input.Thumbnail.MimeType); err != nil {
			return fmt.Errorf("upload thumbnail: %w", err)
		}
		if video.Thumbnail != nil {
			replaced = append(replaced, video.Thumbnail.URL())
		}
		video.ReplaceThumbnail(*thumbnail)
	}
	if thumbnailHalf != nil {
		if err := s.storage.Upload(ctx, thumbnailHalf.URL(), input.ThumbnailHalf.Reader, input.ThumbnailHalf.Size, input.ThumbnailHalf.MimeType); err != nil {
			return fmt.Errorf("upload thumbnail half: %w", err)
		}
		if video.ThumbnailHalf != nil {
			replaced = append(replaced, video.ThumbnailHalf.URL())
		}
		video.ReplaceThumbnailHalf(*thumbnailHalf)
	}
	if trailer != nil {
		if err := s.storage.Upload(ctx, trailer.RawURL(), input.Trailer.Reader, input.Trailer.Size, input.Trailer.MimeType); err != nil {
			return fmt.Errorf("upload trailer: %w", err)
		}
		replaced = append(replaced, audioVideoObjectKeys(video.Trailer)...)
		video.ReplaceTrailer(*trailer)
	}
	if videoMedia != nil {
		if err := s.storage.Upload(ctx, videoMedia.RawURL(), input.Video.Reader, input.Video.Size, input.Video.MimeType); err != nil {
			return fmt.Errorf("upload video: %w", err)
		}
		replaced = append(replaced, audioVideoObjectKeys(video.Video)...)
		video.ReplaceVideo(*videoMedia)
	}

	err = uow.Do(ctx, func(ctx context.Context) error {
		return repos.Videos.Update(ctx, video)
	})
	if err != nil {
		return fmt.Errorf("persist medias: %w", err)
	}

	publishCommitted(ctx, s.bus, uow, repository.EntityVideo, video.EntityID(), repository.OpUpdated)

	// Replaced objects are orphaned once the new slots are committed. Losing
	// one to a storage hiccup only leaks the object, so deletion failures are
	// logged, not propagated.
	for _, key := range replaced {
		if err := s.storage.Delete(ctx, key); err != nil {
			slog.Warn("failed to delete replaced media object", "key", key, "error", err)
		}
	}
	return nil
}

// audioVideoObjectKeys lists the storage keys held by a trailer or video
// slot: the raw upload plus the encoded rendition when one exists.
func audioVideoObjectKeys(slot *model.AudioVideoMedia) []string {
	if slot == nil {
		return nil
	}
	keys := []string{slot.RawURL()}
	if slot.EncodedLocation != "" {
		keys = append(keys, path.Join(slot.EncodedLocation, slot.Name))
	}
	return keys
}

func (s *videoService) UpdateMediaStatus(ctx context.Context, input UpdateMediaStatusInput) error {
	uow, repos := s.factory()

	video, err := repos.Videos.FindByID(ctx, input.VideoID)
	if err != nil {
		return fmt.Errorf("find video: %w", err)
	}
	if video == nil {
		return model.NewNotFoundError("video", input.VideoID.String())
	}

	var slot *model.AudioVideoMedia
	switch input.MediaType {
	case model.MediaTypeTrailer:
		slot = video.Trailer
	case model.MediaTypeVideo:
		slot = video.Video
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMediaType, input.MediaType)
	}
	if slot == nil {
		return model.NewNotFoundError("video media", input.VideoID.String())
	}

	var next model.AudioVideoMedia
	switch input.Status {
	case model.MediaProcessing:
		next = slot.Process()
	case model.MediaCompleted:
		next = slot.Complete(input.EncodedLocation)
	case model.MediaFailed:
		next = slot.Fail()
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedMediaStatus, input.Status)
	}

	if input.MediaType == model.MediaTypeTrailer {
		video.ReplaceTrailer(next)
	} else {
		video.ReplaceVideo(next)
	}

	err = uow.Do(ctx, func(ctx context.Context) error {
		return repos.Videos.Update(ctx, video)
	})
	if err != nil {
		return fmt.Errorf("persist media status: %w", err)
	}

	publishCommitted(ctx, s.bus, uow, repository.EntityVideo, video.EntityID(), repository.OpUpdated)
	return nil
}

func (s *videoService) GetMediaDownloadURL(ctx context.Context, id model.VideoID, mediaType string) (string, error) {
	_, repos := s.factory()

	video, err := repos.Videos.FindByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("find video: %w", err)
	}
	if video == nil {
		return "", model.NewNotFoundError("video", id.String())
	}

	key, err := mediaObjectKey(video, mediaType)
	if err != nil {
		return "", err
	}

	ok, err := s.storage.Exists(ctx, key)
	if err != nil {
		return "", fmt.Errorf("check media object: %w", err)
	}
	if !ok {
		return "", model.NewNotFoundError("media object", key)
	}

	url, err := s.storage.GeneratePresignedDownloadURL(ctx, key, mediaDownloadExpiry)
	if err != nil {
		return "", fmt.Errorf("presign media url: %w", err)
	}
	return url, nil
}

// mediaObjectKey resolves a slot name to the storage key backing it. Trailer
// and video slots serve the encoded rendition once encoding completed, the
// raw upload before that.
func mediaObjectKey(video *model.Video, mediaType string) (string, error) {
	switch mediaType {
	case "banner":
		if video.Banner == nil {
			return "", model.NewNotFoundError("video media", mediaType)
		}
		return video.Banner.URL(), nil
	case "thumbnail":
		if video.Thumbnail == nil {
			return "", model.NewNotFoundError("video media", mediaType)
		}
		return video.Thumbnail.URL(), nil
	case "thumbnail_half":
		if video.ThumbnailHalf == nil {
			return "", model.NewNotFoundError("video media", mediaType)
		}
		return video.ThumbnailHalf.URL(), nil
	case string(model.MediaTypeTrailer):
		return audioVideoServingKey(video.Trailer, mediaType)
	case string(model.MediaTypeVideo):
		return audioVideoServingKey(video.Video, mediaType)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMediaType, mediaType)
	}
}

func audioVideoServingKey(slot *model.AudioVideoMedia, mediaType string) (string, error) {
	if slot == nil {
		return "", model.NewNotFoundError("video media", mediaType)
	}
	if slot.Status == model.MediaCompleted && slot.EncodedLocation != "" {
		return path.Join(slot.EncodedLocation, slot.Name), nil
	}
	return slot.RawURL(), nil
}

// loadRelations verifies every related id exists and returns the nested
// snapshots to embed in the aggregate. Empty id lists are skipped; the
// aggregate's own validation reports missing relations.
func (s *videoService) loadRelations(
	ctx context.Context,
	repos Repositories,
	categoryIDs []model.CategoryID,
	genreIDs []model.GenreID,
	castMemberIDs []model.CastMemberID,
) ([]model.NestedCategory, []model.NestedGenre, []model.NestedCastMember, error) {
	var categories []model.NestedCategory
	if len(categoryIDs) > 0 {
		result, err := repos.Categories.ExistsByID(ctx, categoryIDs)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("check categories: %w", err)
		}
		if len(result.NonExistent) > 0 {
			return nil, nil, nil, model.NewNotFoundError("category", idStrings(result.NonExistent)...)
		}
		found, err := repos.Categories.FindByIDs(ctx, categoryIDs)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("load categories: %w", err)
		}
		for _, c := range found {
			categories = append(categories, model.NestedCategoryFromCategory(c))
		}
	}

	var genres []model.NestedGenre
	if len(genreIDs) > 0 {
		result, err := repos.Genres.ExistsByID(ctx, genreIDs)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("check genres: %w", err)
		}
		if len(result.NonExistent) > 0 {
			return nil, nil, nil, model.NewNotFoundError("genre", idStrings(result.NonExistent)...)
		}
		found, err := repos.Genres.FindByIDs(ctx, genreIDs)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("load genres: %w", err)
		}
		for _, g := range found {
			genres = append(genres, model.NestedGenreFromGenre(g))
		}
	}

	var members []model.NestedCastMember
	if len(castMemberIDs) > 0 {
		result, err := repos.CastMembers.ExistsByID(ctx, castMemberIDs)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("check cast members: %w", err)
		}
		if len(result.NonExistent) > 0 {
			return nil, nil, nil, model.NewNotFoundError("cast member", idStrings(result.NonExistent)...)
		}
		found, err := repos.CastMembers.FindByIDs(ctx, castMemberIDs)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("load cast members: %w", err)
		}
		for _, m := range found {
			members = append(members, model.NestedCastMemberFromCastMember(m))
		}
	}

	return categories, genres, members, nil
}

func idStrings[ID fmt.Stringer](ids []ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
