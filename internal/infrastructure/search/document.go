package search

import (
	"fmt"
	"strconv"
	"time"
)

// DocumentTypeVideo is the type discriminator written on every video document.
// The index can host other aggregate types later without a schema migration.
const DocumentTypeVideo = "Video"

// FlexTime marshals as RFC 3339 and unmarshals from either an RFC 3339 string
// or an epoch-milliseconds number, which is how dates come back from indices
// created with numeric date mappings.
type FlexTime struct {
	time.Time
}

func (t FlexTime) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.UTC().Format(time.RFC3339Nano))), nil
}

func (t *FlexTime) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		t.Time = time.Time{}
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("invalid date string %s: %w", s, err)
		}
		parsed, err := time.Parse(time.RFC3339Nano, unquoted)
		if err != nil {
			return fmt.Errorf("invalid date string %q: %w", unquoted, err)
		}
		t.Time = parsed
		return nil
	}
	millis, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid date value %s: %w", s, err)
	}
	t.Time = time.UnixMilli(int64(millis)).UTC()
	return nil
}

// VideoDocument is the denormalized search projection of a Video aggregate.
// Nested arrays are self-contained snapshots so queries never need joins.
type VideoDocument struct {
	Type         string `json:"type"`
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	YearLaunched int    `json:"year_launched"`
	Duration     int    `json:"duration"`
	Rating       string `json:"rating"`
	IsOpened     bool   `json:"is_opened"`
	IsPublished  bool   `json:"is_published"`

	Banner        *ImageMediaDocument      `json:"banner,omitempty"`
	Thumbnail     *ImageMediaDocument      `json:"thumbnail,omitempty"`
	ThumbnailHalf *ImageMediaDocument      `json:"thumbnail_half,omitempty"`
	Trailer       *AudioVideoMediaDocument `json:"trailer,omitempty"`
	Video         *AudioVideoMediaDocument `json:"video,omitempty"`

	Categories  []NestedCategoryDocument   `json:"categories"`
	Genres      []NestedGenreDocument      `json:"genres"`
	CastMembers []NestedCastMemberDocument `json:"cast_members"`

	CreatedAt FlexTime  `json:"created_at"`
	DeletedAt *FlexTime `json:"deleted_at,omitempty"`
}

type ImageMediaDocument struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

type AudioVideoMediaDocument struct {
	Name            string `json:"name"`
	RawLocation     string `json:"raw_location"`
	EncodedLocation string `json:"encoded_location"`
	Status          string `json:"status"`
}

// Nested snapshots carry is_deleted recomputed from deleted_at at mapping
// time so the two fields cannot drift apart.

type NestedCategoryDocument struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	IsDeleted bool      `json:"is_deleted"`
	DeletedAt *FlexTime `json:"deleted_at,omitempty"`
}

type NestedGenreDocument struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	IsDeleted bool      `json:"is_deleted"`
	DeletedAt *FlexTime `json:"deleted_at,omitempty"`
}

type NestedCastMemberDocument struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      int       `json:"type"`
	IsActive  bool      `json:"is_active"`
	IsDeleted bool      `json:"is_deleted"`
	DeletedAt *FlexTime `json:"deleted_at,omitempty"`
}
