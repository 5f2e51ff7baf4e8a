package model

import (
	"time"
	"unicode/utf8"
)

// Video is the aggregate root of the catalog. It owns its media slots and the
// nested snapshots of every related category, genre and cast member. Relation
// maps are keyed by id; insertion order is irrelevant.
type Video struct {
	ID           VideoID
	Title        string
	Description  string
	YearLaunched int
	Duration     int
	Rating       Rating
	IsOpened     bool
	IsPublished  bool

	Banner        *ImageMedia
	Thumbnail     *ImageMedia
	ThumbnailHalf *ImageMedia
	Trailer       *AudioVideoMedia
	Video         *AudioVideoMedia

	Categories  map[CategoryID]NestedCategory
	Genres      map[GenreID]NestedGenre
	CastMembers map[CastMemberID]NestedCastMember

	CreatedAt time.Time
	DeletedAt *time.Time

	notification *Notification
	events       []DomainEvent
}

// VideoProps carries the attributes needed to create a Video.
type VideoProps struct {
	Title        string
	Description  string
	YearLaunched int
	Duration     int
	Rating       Rating
	IsOpened     bool
	Categories   []NestedCategory
	Genres       []NestedGenre
	CastMembers  []NestedCastMember
}

// NewVideo creates a Video. The constructor does not validate: a mapper must
// be able to build a provisionally-invalid instance and report every problem
// at once through Validate. Publication is re-evaluated so that an instance
// reconstructed with completed media comes back published.
func NewVideo(props VideoProps) *Video {
	v := &Video{
		ID:           NewVideoID(),
		Title:        props.Title,
		Description:  props.Description,
		YearLaunched: props.YearLaunched,
		Duration:     props.Duration,
		Rating:       props.Rating,
		IsOpened:     props.IsOpened,
		Categories:   map[CategoryID]NestedCategory{},
		Genres:       map[GenreID]NestedGenre{},
		CastMembers:  map[CastMemberID]NestedCastMember{},
		CreatedAt:    time.Now().UTC(),
	}
	for _, c := range props.Categories {
		v.Categories[c.ID] = c
	}
	for _, g := range props.Genres {
		v.Genres[g.ID] = g
	}
	for _, m := range props.CastMembers {
		v.CastMembers[m.ID] = m
	}
	v.markAsPublished()
	v.recordEvent(v.createdEvent())
	return v
}

// Notification returns the accumulated structural validation failures.
func (v *Video) Notification() *Notification {
	if v.notification == nil {
		v.notification = NewNotification()
	}
	return v.notification
}

// Validate runs every structural rule, accumulating failures instead of
// stopping at the first one. The returned notification is also retained on
// the aggregate.
func (v *Video) Validate() *Notification {
	v.notification = NewNotification()
	v.validateTitle()
	if !v.Rating.IsValid() {
		v.notification.AddError("rating", "must be one of L, 10, 12, 14, 16, 18")
	}
	if len(v.Categories) == 0 {
		v.notification.AddError("categories", "must have at least one category")
	}
	if len(v.Genres) == 0 {
		v.notification.AddError("genres", "must have at least one genre")
	}
	if len(v.CastMembers) == 0 {
		v.notification.AddError("cast_members", "must have at least one cast member")
	}
	return v.notification
}

func (v *Video) validateTitle() {
	if v.Title == "" {
		v.Notification().AddError("title", "must not be empty")
	}
	if utf8.RuneCountInString(v.Title) > maxNameLength {
		v.Notification().AddError("title", "must be at most 255 characters")
	}
}

// ChangeTitle sets the title and re-validates it. The other scalar change
// operations deliberately do not re-validate; tightening that is a separate
// product decision.
func (v *Video) ChangeTitle(title string) {
	v.Title = title
	v.validateTitle()
}

func (v *Video) ChangeDescription(description string) {
	v.Description = description
}

func (v *Video) ChangeYearLaunched(year int) {
	v.YearLaunched = year
}

func (v *Video) ChangeDuration(duration int) {
	v.Duration = duration
}

func (v *Video) ChangeRating(rating Rating) {
	v.Rating = rating
}

func (v *Video) MarkAsOpened() {
	v.IsOpened = true
}

func (v *Video) MarkAsNotOpened() {
	v.IsOpened = false
}

// Image slots are replace-only, no side effects.

func (v *Video) ReplaceBanner(media ImageMedia) {
	v.Banner = &media
}

func (v *Video) ReplaceThumbnail(media ImageMedia) {
	v.Thumbnail = &media
}

func (v *Video) ReplaceThumbnailHalf(media ImageMedia) {
	v.ThumbnailHalf = &media
}

// ReplaceTrailer swaps the trailer slot, re-evaluates publication and records
// a media-replaced event for the encoding pipeline.
func (v *Video) ReplaceTrailer(media AudioVideoMedia) {
	v.Trailer = &media
	v.markAsPublished()
	v.recordEvent(VideoAudioMediaReplaced{
		EntityID:   v.ID,
		Media:      media,
		MediaType:  MediaTypeTrailer,
		occurredAt: time.Now().UTC(),
	})
}

// ReplaceVideo swaps the video file slot. Same contract as ReplaceTrailer.
func (v *Video) ReplaceVideo(media AudioVideoMedia) {
	v.Video = &media
	v.markAsPublished()
	v.recordEvent(VideoAudioMediaReplaced{
		EntityID:   v.ID,
		Media:      media,
		MediaType:  MediaTypeVideo,
		occurredAt: time.Now().UTC(),
	})
}

// AddCategory inserts a nested category snapshot, keyed by its id. Adding an
// id that is already present is a no-op.
func (v *Video) AddCategory(c NestedCategory) {
	if _, ok := v.Categories[c.ID]; ok {
		return
	}
	v.Categories[c.ID] = c
}

// RemoveCategoryID removes by id. Removing an absent id is a no-op.
func (v *Video) RemoveCategoryID(id CategoryID) {
	delete(v.Categories, id)
}

// SyncCategories replaces the whole category map. An empty input is a caller
// bug: a video must always reference at least one category, so the error is
// returned immediately and existing state is untouched.
func (v *Video) SyncCategories(cs []NestedCategory) error {
	if len(cs) == 0 {
		return ErrSyncEmptyCategories
	}
	next := make(map[CategoryID]NestedCategory, len(cs))
	for _, c := range cs {
		next[c.ID] = c
	}
	v.Categories = next
	return nil
}

func (v *Video) AddGenre(g NestedGenre) {
	if _, ok := v.Genres[g.ID]; ok {
		return
	}
	v.Genres[g.ID] = g
}

func (v *Video) RemoveGenreID(id GenreID) {
	delete(v.Genres, id)
}

// SyncGenres replaces the whole genre map. Same contract as SyncCategories.
func (v *Video) SyncGenres(gs []NestedGenre) error {
	if len(gs) == 0 {
		return ErrSyncEmptyGenres
	}
	next := make(map[GenreID]NestedGenre, len(gs))
	for _, g := range gs {
		next[g.ID] = g
	}
	v.Genres = next
	return nil
}

func (v *Video) AddCastMember(m NestedCastMember) {
	if _, ok := v.CastMembers[m.ID]; ok {
		return
	}
	v.CastMembers[m.ID] = m
}

func (v *Video) RemoveCastMemberID(id CastMemberID) {
	delete(v.CastMembers, id)
}

// SyncCastMembers replaces the whole cast member map. Same contract as
// SyncCategories.
func (v *Video) SyncCastMembers(ms []NestedCastMember) error {
	if len(ms) == 0 {
		return ErrSyncEmptyCastMembers
	}
	next := make(map[CastMemberID]NestedCastMember, len(ms))
	for _, m := range ms {
		next[m.ID] = m
	}
	v.CastMembers = next
	return nil
}

// MarkAsDeleted soft-deletes the video.
func (v *Video) MarkAsDeleted() {
	now := time.Now().UTC()
	v.DeletedAt = &now
}

// markAsPublished sets IsPublished when both the trailer and the video file
// are completed. It only sets, never clears: a published video stays
// published even if a media later fails.
func (v *Video) markAsPublished() {
	if v.Trailer != nil && v.Trailer.Status == MediaCompleted &&
		v.Video != nil && v.Video.Status == MediaCompleted {
		v.IsPublished = true
	}
}

// CategoryIDs returns the relation keys. Order is unspecified.
func (v *Video) CategoryIDs() []CategoryID {
	ids := make([]CategoryID, 0, len(v.Categories))
	for id := range v.Categories {
		ids = append(ids, id)
	}
	return ids
}

func (v *Video) GenreIDs() []GenreID {
	ids := make([]GenreID, 0, len(v.Genres))
	for id := range v.Genres {
		ids = append(ids, id)
	}
	return ids
}

func (v *Video) CastMemberIDs() []CastMemberID {
	ids := make([]CastMemberID, 0, len(v.CastMembers))
	for id := range v.CastMembers {
		ids = append(ids, id)
	}
	return ids
}

func (v *Video) EntityID() string { return v.ID.String() }

// Events returns the pending domain events accumulated during mutation.
func (v *Video) Events() []DomainEvent {
	return v.events
}

// ClearEvents drops the pending events. Called by the orchestrator after the
// unit of work commits and the events have been dispatched.
func (v *Video) ClearEvents() {
	v.events = nil
}

func (v *Video) recordEvent(e DomainEvent) {
	v.events = append(v.events, e)
}

func (v *Video) createdEvent() VideoCreated {
	return VideoCreated{
		VideoID:       v.ID,
		Title:         v.Title,
		Description:   v.Description,
		YearLaunched:  v.YearLaunched,
		Duration:      v.Duration,
		Rating:        v.Rating,
		IsOpened:      v.IsOpened,
		IsPublished:   v.IsPublished,
		Banner:        v.Banner,
		Thumbnail:     v.Thumbnail,
		ThumbnailHalf: v.ThumbnailHalf,
		Trailer:       v.Trailer,
		Video:         v.Video,
		CategoryIDs:   v.CategoryIDs(),
		GenreIDs:      v.GenreIDs(),
		CastMemberIDs: v.CastMemberIDs(),
		CreatedAt:     v.CreatedAt,
		occurredAt:    time.Now().UTC(),
	}
}
