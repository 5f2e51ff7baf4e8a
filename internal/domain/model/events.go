package model

import "time"

// DomainEvent is a fact recorded by an aggregate during mutation. Aggregates
// only accumulate events as data; dispatch happens after the surrounding unit
// of work commits, never before.
type DomainEvent interface {
	EventName() string
	OccurredAt() time.Time
}

// AggregateRoot is satisfied by every aggregate tracked by the unit of work.
type AggregateRoot interface {
	EntityID() string
	Events() []DomainEvent
	ClearEvents()
}

// AudioVideoMediaType names the slot a replaced media belongs to.
type AudioVideoMediaType string

const (
	MediaTypeTrailer AudioVideoMediaType = "trailer"
	MediaTypeVideo   AudioVideoMediaType = "video"
)

// VideoCreated carries a full snapshot of the aggregate so downstream
// listeners can build a search document without loading the source.
type VideoCreated struct {
	VideoID       VideoID
	Title         string
	Description   string
	YearLaunched  int
	Duration      int
	Rating        Rating
	IsOpened      bool
	IsPublished   bool
	Banner        *ImageMedia
	Thumbnail     *ImageMedia
	ThumbnailHalf *ImageMedia
	Trailer       *AudioVideoMedia
	Video         *AudioVideoMedia
	CategoryIDs   []CategoryID
	GenreIDs      []GenreID
	CastMemberIDs []CastMemberID
	CreatedAt     time.Time
	occurredAt    time.Time
}

func (e VideoCreated) EventName() string     { return "video.created" }
func (e VideoCreated) OccurredAt() time.Time { return e.occurredAt }

// VideoAudioMediaReplaced signals that a trailer or video slot changed, so
// encoding-pipeline listeners can react.
type VideoAudioMediaReplaced struct {
	EntityID   VideoID
	Media      AudioVideoMedia
	MediaType  AudioVideoMediaType
	occurredAt time.Time
}

func (e VideoAudioMediaReplaced) EventName() string     { return "video.audio_media_replaced" }
func (e VideoAudioMediaReplaced) OccurredAt() time.Time { return e.occurredAt }
