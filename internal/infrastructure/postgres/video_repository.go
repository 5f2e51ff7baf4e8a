package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hszk-dev/catalog/internal/domain/model"
	"github.com/hszk-dev/catalog/internal/domain/repository"
)

// VideoRepository implements repository.VideoRepository over PostgreSQL.
//
// The video's many-to-many rows are fully owned by this repository: updates
// rewrite them (delete stale, insert fresh) on the unit-of-work handle so the
// whole write is atomic. After each successful write the aggregate is
// registered with the unit of work for post-commit event dispatch.
type VideoRepository struct {
	uow *UnitOfWork
}

// NewVideoRepository creates a VideoRepository bound to a unit of work.
func NewVideoRepository(uow *UnitOfWork) *VideoRepository {
	return &VideoRepository{uow: uow}
}

func (r *VideoRepository) conn() DBTX {
	return r.uow.Conn()
}

const insertVideoQuery = `
	INSERT INTO videos (
		id, title, description, year_launched, duration, rating, is_opened, is_published,
		banner_name, banner_location,
		thumbnail_name, thumbnail_location,
		thumbnail_half_name, thumbnail_half_location,
		trailer_name, trailer_raw_location, trailer_encoded_location, trailer_status,
		video_name, video_raw_location, video_encoded_location, video_status,
		created_at, deleted_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
`

// Insert persists a new video and its relation rows.
func (r *VideoRepository) Insert(ctx context.Context, video *model.Video) error {
	args := videoScalarArgs(video)

	if _, err := r.conn().Exec(ctx, insertVideoQuery, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repository.ErrDuplicateEntity
		}
		return fmt.Errorf("failed to insert video: %w", err)
	}

	if err := r.insertRelations(ctx, video); err != nil {
		return err
	}

	r.uow.AddAggregateRoot(video)
	return nil
}

// BulkInsert persists several videos in one logical operation.
func (r *VideoRepository) BulkInsert(ctx context.Context, videos []*model.Video) error {
	for _, video := range videos {
		if err := r.Insert(ctx, video); err != nil {
			return err
		}
	}
	return nil
}

const updateVideoQuery = `
	UPDATE videos SET
		title = $2, description = $3, year_launched = $4, duration = $5, rating = $6,
		is_opened = $7, is_published = $8,
		banner_name = $9, banner_location = $10,
		thumbnail_name = $11, thumbnail_location = $12,
		thumbnail_half_name = $13, thumbnail_half_location = $14,
		trailer_name = $15, trailer_raw_location = $16, trailer_encoded_location = $17, trailer_status = $18,
		video_name = $19, video_raw_location = $20, video_encoded_location = $21, video_status = $22,
		created_at = $23, deleted_at = $24
	WHERE id = $1
`

// Update rewrites the scalar row and resynchronizes the relation rows.
// Returns *model.NotFoundError when the id does not exist.
func (r *VideoRepository) Update(ctx context.Context, video *model.Video) error {
	args := videoScalarArgs(video)

	tag, err := r.conn().Exec(ctx, updateVideoQuery, args...)
	if err != nil {
		return fmt.Errorf("failed to update video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewNotFoundError("video", video.ID.String())
	}

	for _, table := range []string{"video_categories", "video_genres", "video_cast_members"} {
		query := fmt.Sprintf("DELETE FROM %s WHERE video_id = $1", table)
		if _, err := r.conn().Exec(ctx, query, video.ID.String()); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	if err := r.insertRelations(ctx, video); err != nil {
		return err
	}

	r.uow.AddAggregateRoot(video)
	return nil
}

// Delete soft-deletes a video. Returns *model.NotFoundError when absent.
func (r *VideoRepository) Delete(ctx context.Context, id model.VideoID) error {
	const query = `UPDATE videos SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.conn().Exec(ctx, query, id.String(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewNotFoundError("video", id.String())
	}
	return nil
}

const selectVideoColumns = `
	id, title, description, year_launched, duration, rating, is_opened, is_published,
	banner_name, banner_location,
	thumbnail_name, thumbnail_location,
	thumbnail_half_name, thumbnail_half_location,
	trailer_name, trailer_raw_location, trailer_encoded_location, trailer_status,
	video_name, video_raw_location, video_encoded_location, video_status,
	created_at, deleted_at
`

// FindByID retrieves a live video with its nested relation snapshots.
// Returns nil, nil when the id is absent or soft-deleted.
func (r *VideoRepository) FindByID(ctx context.Context, id model.VideoID) (*model.Video, error) {
	query := `SELECT ` + selectVideoColumns + ` FROM videos WHERE id = $1 AND deleted_at IS NULL`

	rows, err := r.conn().Query(ctx, query, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get video by id: %w", err)
	}
	videos, err := r.collectVideos(ctx, rows)
	if err != nil {
		return nil, err
	}
	if len(videos) == 0 {
		return nil, nil
	}
	return videos[0], nil
}

// FindByIDs retrieves videos by id, including soft-deleted ones so the search
// projection can propagate deleted_at. Absent ids are skipped.
func (r *VideoRepository) FindByIDs(ctx context.Context, ids []model.VideoID) ([]*model.Video, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + selectVideoColumns + ` FROM videos WHERE id = ANY($1)`

	rows, err := r.conn().Query(ctx, query, idStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get videos by ids: %w", err)
	}
	return r.collectVideos(ctx, rows)
}

// ExistsByID partitions the given ids into existent and non-existent.
// Returns repository.ErrEmptyIDs on empty input.
func (r *VideoRepository) ExistsByID(ctx context.Context, ids []model.VideoID) (repository.ExistsResult[model.VideoID], error) {
	var result repository.ExistsResult[model.VideoID]
	if len(ids) == 0 {
		return result, repository.ErrEmptyIDs
	}

	const query = `SELECT id FROM videos WHERE id = ANY($1) AND deleted_at IS NULL`

	rows, err := r.conn().Query(ctx, query, idStrings(ids))
	if err != nil {
		return result, fmt.Errorf("failed to check video ids: %w", err)
	}
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return result, fmt.Errorf("failed to scan video id: %w", err)
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return result, fmt.Errorf("error iterating video ids: %w", err)
	}

	for _, id := range ids {
		if found[id.String()] {
			result.Existent = append(result.Existent, id)
		} else {
			result.NonExistent = append(result.NonExistent, id)
		}
	}
	return result, nil
}

// FindAll retrieves every live video.
func (r *VideoRepository) FindAll(ctx context.Context) ([]*model.Video, error) {
	query := `SELECT ` + selectVideoColumns + ` FROM videos WHERE deleted_at IS NULL ORDER BY created_at DESC`

	rows, err := r.conn().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	return r.collectVideos(ctx, rows)
}

var videoSortColumns = map[string]string{
	"title":      "title",
	"created_at": "created_at",
}

// Search pages through live videos. Terms matches title or description;
// relation id filters match when any join row is in the requested set.
func (r *VideoRepository) Search(ctx context.Context, params repository.SearchParams[repository.VideoSearchFilter]) (repository.SearchResult[*model.Video], error) {
	var result repository.SearchResult[*model.Video]

	where := []string{"deleted_at IS NULL"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	f := params.Filter
	if f.Terms != "" {
		p := arg("%" + f.Terms + "%")
		where = append(where, fmt.Sprintf("(title ILIKE %s OR description ILIKE %s)", p, p))
	}
	if len(f.CategoryIDs) > 0 {
		ids := make([]string, len(f.CategoryIDs))
		for i, id := range f.CategoryIDs {
			ids[i] = id.String()
		}
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM video_categories vc WHERE vc.video_id = videos.id AND vc.category_id = ANY(%s))", arg(ids)))
	}
	if len(f.GenreIDs) > 0 {
		ids := make([]string, len(f.GenreIDs))
		for i, id := range f.GenreIDs {
			ids[i] = id.String()
		}
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM video_genres vg WHERE vg.video_id = videos.id AND vg.genre_id = ANY(%s))", arg(ids)))
	}
	if len(f.CastMemberIDs) > 0 {
		ids := make([]string, len(f.CastMemberIDs))
		for i, id := range f.CastMemberIDs {
			ids[i] = id.String()
		}
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM video_cast_members vm WHERE vm.video_id = videos.id AND vm.cast_member_id = ANY(%s))", arg(ids)))
	}
	if f.IsPublished != nil {
		where = append(where, "is_published = "+arg(*f.IsPublished))
	}

	whereClause := strings.Join(where, " AND ")

	countQuery := "SELECT COUNT(*) FROM videos WHERE " + whereClause
	if err := r.conn().QueryRow(ctx, countQuery, args...).Scan(&result.Total); err != nil {
		return result, fmt.Errorf("failed to count videos: %w", err)
	}

	orderBy := "created_at"
	if col, ok := videoSortColumns[params.Sort]; ok {
		orderBy = col
	}
	dir := "DESC"
	if params.SortDir == repository.SortAsc {
		dir = "ASC"
	}

	query := fmt.Sprintf(
		"SELECT %s FROM videos WHERE %s ORDER BY %s %s LIMIT %s OFFSET %s",
		selectVideoColumns, whereClause, orderBy, dir, arg(params.Limit()), arg(params.Offset()),
	)

	rows, err := r.conn().Query(ctx, query, args...)
	if err != nil {
		return result, fmt.Errorf("failed to search videos: %w", err)
	}
	items, err := r.collectVideos(ctx, rows)
	if err != nil {
		return result, err
	}

	result.Items = items
	result.CurrentPage = params.Page
	if result.CurrentPage < 1 {
		result.CurrentPage = 1
	}
	result.PerPage = params.Limit()
	return result, nil
}

// insertRelations writes one join row per nested snapshot.
func (r *VideoRepository) insertRelations(ctx context.Context, video *model.Video) error {
	for id := range video.Categories {
		const query = `INSERT INTO video_categories (video_id, category_id) VALUES ($1, $2)`
		if _, err := r.conn().Exec(ctx, query, video.ID.String(), id.String()); err != nil {
			return fmt.Errorf("failed to insert video category: %w", err)
		}
	}
	for id := range video.Genres {
		const query = `INSERT INTO video_genres (video_id, genre_id) VALUES ($1, $2)`
		if _, err := r.conn().Exec(ctx, query, video.ID.String(), id.String()); err != nil {
			return fmt.Errorf("failed to insert video genre: %w", err)
		}
	}
	for id := range video.CastMembers {
		const query = `INSERT INTO video_cast_members (video_id, cast_member_id) VALUES ($1, $2)`
		if _, err := r.conn().Exec(ctx, query, video.ID.String(), id.String()); err != nil {
			return fmt.Errorf("failed to insert video cast member: %w", err)
		}
	}
	return nil
}

// collectVideos scans the scalar rows and hydrates nested relation snapshots
// in three batched queries.
func (r *VideoRepository) collectVideos(ctx context.Context, rows pgx.Rows) ([]*model.Video, error) {
	defer rows.Close()

	var videos []*model.Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, video)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating videos: %w", err)
	}
	if len(videos) == 0 {
		return nil, nil
	}

	ids := make([]string, len(videos))
	byID := make(map[string]*model.Video, len(videos))
	for i, v := range videos {
		ids[i] = v.ID.String()
		byID[v.ID.String()] = v
	}

	if err := r.hydrateCategories(ctx, ids, byID); err != nil {
		return nil, err
	}
	if err := r.hydrateGenres(ctx, ids, byID); err != nil {
		return nil, err
	}
	if err := r.hydrateCastMembers(ctx, ids, byID); err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *VideoRepository) hydrateCategories(ctx context.Context, ids []string, byID map[string]*model.Video) error {
	const query = `
		SELECT vc.video_id, c.id, c.name, c.is_active, c.deleted_at
		FROM video_categories vc
		JOIN categories c ON c.id = vc.category_id
		WHERE vc.video_id = ANY($1)
	`
	rows, err := r.conn().Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to load video categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var videoID, categoryID, name string
		var isActive bool
		var deletedAt *time.Time
		if err := rows.Scan(&videoID, &categoryID, &name, &isActive, &deletedAt); err != nil {
			return fmt.Errorf("failed to scan video category: %w", err)
		}
		id, err := model.ParseCategoryID(categoryID)
		if err != nil {
			return err
		}
		byID[videoID].Categories[id] = model.NestedCategory{
			ID:        id,
			Name:      name,
			IsActive:  isActive,
			DeletedAt: deletedAt,
		}
	}
	return rows.Err()
}

func (r *VideoRepository) hydrateGenres(ctx context.Context, ids []string, byID map[string]*model.Video) error {
	const query = `
		SELECT vg.video_id, g.id, g.name, g.is_active, g.deleted_at
		FROM video_genres vg
		JOIN genres g ON g.id = vg.genre_id
		WHERE vg.video_id = ANY($1)
	`
	rows, err := r.conn().Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to load video genres: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var videoID, genreID, name string
		var isActive bool
		var deletedAt *time.Time
		if err := rows.Scan(&videoID, &genreID, &name, &isActive, &deletedAt); err != nil {
			return fmt.Errorf("failed to scan video genre: %w", err)
		}
		id, err := model.ParseGenreID(genreID)
		if err != nil {
			return err
		}
		byID[videoID].Genres[id] = model.NestedGenre{
			ID:        id,
			Name:      name,
			IsActive:  isActive,
			DeletedAt: deletedAt,
		}
	}
	return rows.Err()
}

func (r *VideoRepository) hydrateCastMembers(ctx context.Context, ids []string, byID map[string]*model.Video) error {
	const query = `
		SELECT vm.video_id, m.id, m.name, m.type, m.is_active, m.deleted_at
		FROM video_cast_members vm
		JOIN cast_members m ON m.id = vm.cast_member_id
		WHERE vm.video_id = ANY($1)
	`
	rows, err := r.conn().Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to load video cast members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var videoID, memberID, name string
		var memberType int
		var isActive bool
		var deletedAt *time.Time
		if err := rows.Scan(&videoID, &memberID, &name, &memberType, &isActive, &deletedAt); err != nil {
			return fmt.Errorf("failed to scan video cast member: %w", err)
		}
		id, err := model.ParseCastMemberID(memberID)
		if err != nil {
			return err
		}
		parsedType, err := model.ParseCastMemberType(memberType)
		if err != nil {
			return err
		}
		byID[videoID].CastMembers[id] = model.NestedCastMember{
			ID:        id,
			Name:      name,
			Type:      parsedType,
			IsActive:  isActive,
			DeletedAt: deletedAt,
		}
	}
	return rows.Err()
}

// scanVideo reads one scalar row into a Video with empty relation maps.
func scanVideo(rows pgx.Rows) (*model.Video, error) {
	var id, title, description, rating string
	var yearLaunched, duration int
	var isOpened, isPublished bool
	var bannerName, bannerLocation *string
	var thumbName, thumbLocation *string
	var thumbHalfName, thumbHalfLocation *string
	var trailerName, trailerRaw, trailerEnc, trailerStatus *string
	var videoName, videoRaw, videoEnc, videoStatus *string
	var createdAt time.Time
	var deletedAt *time.Time

	err := rows.Scan(
		&id, &title, &description, &yearLaunched, &duration, &rating, &isOpened, &isPublished,
		&bannerName, &bannerLocation,
		&thumbName, &thumbLocation,
		&thumbHalfName, &thumbHalfLocation,
		&trailerName, &trailerRaw, &trailerEnc, &trailerStatus,
		&videoName, &videoRaw, &videoEnc, &videoStatus,
		&createdAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	videoID, err := model.ParseVideoID(id)
	if err != nil {
		return nil, err
	}

	video := &model.Video{
		ID:           videoID,
		Title:        title,
		Description:  description,
		YearLaunched: yearLaunched,
		Duration:     duration,
		Rating:       model.Rating(rating),
		IsOpened:     isOpened,
		IsPublished:  isPublished,
		Categories:   map[model.CategoryID]model.NestedCategory{},
		Genres:       map[model.GenreID]model.NestedGenre{},
		CastMembers:  map[model.CastMemberID]model.NestedCastMember{},
		CreatedAt:    createdAt,
		DeletedAt:    deletedAt,
	}
	video.Banner = imageMedia(bannerName, bannerLocation)
	video.Thumbnail = imageMedia(thumbName, thumbLocation)
	video.ThumbnailHalf = imageMedia(thumbHalfName, thumbHalfLocation)
	video.Trailer = audioVideoMedia(trailerName, trailerRaw, trailerEnc, trailerStatus)
	video.Video = audioVideoMedia(videoName, videoRaw, videoEnc, videoStatus)
	return video, nil
}

func imageMedia(name, location *string) *model.ImageMedia {
	if name == nil {
		return nil
	}
	m := model.ImageMedia{Name: *name}
	if location != nil {
		m.Location = *location
	}
	return &m
}

func audioVideoMedia(name, rawLocation, encodedLocation, status *string) *model.AudioVideoMedia {
	if name == nil {
		return nil
	}
	m := model.AudioVideoMedia{Name: *name}
	if rawLocation != nil {
		m.RawLocation = *rawLocation
	}
	if encodedLocation != nil {
		m.EncodedLocation = *encodedLocation
	}
	if status != nil {
		m.Status = model.MediaStatus(*status)
	}
	return &m
}

// videoScalarArgs builds the positional arguments shared by insert and update.
func videoScalarArgs(video *model.Video) []any {
	var bannerName, bannerLocation *string
	var thumbName, thumbLocation *string
	var thumbHalfName, thumbHalfLocation *string
	var trailerName, trailerRaw, trailerEnc, trailerStatus *string
	var videoName, videoRaw, videoEnc, videoStatus *string
	if video.Banner != nil {
		bannerName, bannerLocation = &video.Banner.Name, &video.Banner.Location
	}
	if video.Thumbnail != nil {
		thumbName, thumbLocation = &video.Thumbnail.Name, &video.Thumbnail.Location
	}
	if video.ThumbnailHalf != nil {
		thumbHalfName, thumbHalfLocation = &video.ThumbnailHalf.Name, &video.ThumbnailHalf.Location
	}
	if video.Trailer != nil {
		status := video.Trailer.Status.String()
		trailerName, trailerRaw, trailerEnc, trailerStatus =
			&video.Trailer.Name, &video.Trailer.RawLocation, &video.Trailer.EncodedLocation, &status
	}
	if video.Video != nil {
		status := video.Video.Status.String()
		videoName, videoRaw, videoEnc, videoStatus =
			&video.Video.Name, &video.Video.RawLocation, &video.Video.EncodedLocation, &status
	}

	return []any{
		video.ID.String(), video.Title, video.Description, video.YearLaunched, video.Duration,
		video.Rating.String(), video.IsOpened, video.IsPublished,
		bannerName, bannerLocation,
		thumbName, thumbLocation,
		thumbHalfName, thumbHalfLocation,
		trailerName, trailerRaw, trailerEnc, trailerStatus,
		videoName, videoRaw, videoEnc, videoStatus,
		video.CreatedAt, video.DeletedAt,
	}
}

func idStrings[T fmt.Stringer](ids []T) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// Compile-time verification that VideoRepository implements the contract.
var _ repository.VideoRepository = (*VideoRepository)(nil)
