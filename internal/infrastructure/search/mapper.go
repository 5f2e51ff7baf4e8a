package search

import (
	"sort"
	"time"

	"github.com/hszk-dev/catalog/internal/domain/model"
)

// ToDocument projects a Video aggregate into its search document. Pure and
// total: every aggregate field maps to exactly one document field. Nested
// arrays come out sorted by id so the projection is deterministic.
func ToDocument(v *model.Video) VideoDocument {
	doc := VideoDocument{
		Type:         DocumentTypeVideo,
		ID:           v.ID.String(),
		Title:        v.Title,
		Description:  v.Description,
		YearLaunched: v.YearLaunched,
		Duration:     v.Duration,
		Rating:       v.Rating.String(),
		IsOpened:     v.IsOpened,
		IsPublished:  v.IsPublished,
		Categories:   []NestedCategoryDocument{},
		Genres:       []NestedGenreDocument{},
		CastMembers:  []NestedCastMemberDocument{},
		CreatedAt:    FlexTime{v.CreatedAt},
		DeletedAt:    flexTimePtr(v.DeletedAt),
	}

	if v.Banner != nil {
		doc.Banner = &ImageMediaDocument{Name: v.Banner.Name, Location: v.Banner.Location}
	}
	if v.Thumbnail != nil {
		doc.Thumbnail = &ImageMediaDocument{Name: v.Thumbnail.Name, Location: v.Thumbnail.Location}
	}
	if v.ThumbnailHalf != nil {
		doc.ThumbnailHalf = &ImageMediaDocument{Name: v.ThumbnailHalf.Name, Location: v.ThumbnailHalf.Location}
	}
	if v.Trailer != nil {
		doc.Trailer = audioVideoMediaDocument(v.Trailer)
	}
	if v.Video != nil {
		doc.Video = audioVideoMediaDocument(v.Video)
	}

	for _, c := range v.Categories {
		doc.Categories = append(doc.Categories, NestedCategoryDocument{
			ID:        c.ID.String(),
			Name:      c.Name,
			IsActive:  c.IsActive,
			IsDeleted: c.DeletedAt != nil,
			DeletedAt: flexTimePtr(c.DeletedAt),
		})
	}
	sort.Slice(doc.Categories, func(i, j int) bool { return doc.Categories[i].ID < doc.Categories[j].ID })

	for _, g := range v.Genres {
		doc.Genres = append(doc.Genres, NestedGenreDocument{
			ID:        g.ID.String(),
			Name:      g.Name,
			IsActive:  g.IsActive,
			IsDeleted: g.DeletedAt != nil,
			DeletedAt: flexTimePtr(g.DeletedAt),
		})
	}
	sort.Slice(doc.Genres, func(i, j int) bool { return doc.Genres[i].ID < doc.Genres[j].ID })

	for _, m := range v.CastMembers {
		doc.CastMembers = append(doc.CastMembers, NestedCastMemberDocument{
			ID:        m.ID.String(),
			Name:      m.Name,
			Type:      int(m.Type),
			IsActive:  m.IsActive,
			IsDeleted: m.DeletedAt != nil,
			DeletedAt: flexTimePtr(m.DeletedAt),
		})
	}
	sort.Slice(doc.CastMembers, func(i, j int) bool { return doc.CastMembers[i].ID < doc.CastMembers[j].ID })

	return doc
}

// ToEntity reconstructs a Video aggregate from its document. Unlike
// ToDocument it is not total: every reconstruction failure and every
// structural validation failure is accumulated, and a single
// *model.LoadEntityError carrying the full field map is returned when
// anything is wrong. Diagnosing a corrupt index needs the whole picture, not
// the first failure.
func ToEntity(id string, doc VideoDocument) (*model.Video, error) {
	n := model.NewNotification()

	videoID, err := model.ParseVideoID(id)
	if err != nil {
		n.AddError("id", err.Error())
	}

	v := &model.Video{
		ID:           videoID,
		Title:        doc.Title,
		Description:  doc.Description,
		YearLaunched: doc.YearLaunched,
		Duration:     doc.Duration,
		Rating:       model.Rating(doc.Rating),
		IsOpened:     doc.IsOpened,
		IsPublished:  doc.IsPublished,
		Categories:   map[model.CategoryID]model.NestedCategory{},
		Genres:       map[model.GenreID]model.NestedGenre{},
		CastMembers:  map[model.CastMemberID]model.NestedCastMember{},
		CreatedAt:    doc.CreatedAt.Time,
		DeletedAt:    timePtr(doc.DeletedAt),
	}

	if doc.Banner != nil {
		v.Banner = &model.ImageMedia{Name: doc.Banner.Name, Location: doc.Banner.Location}
	}
	if doc.Thumbnail != nil {
		v.Thumbnail = &model.ImageMedia{Name: doc.Thumbnail.Name, Location: doc.Thumbnail.Location}
	}
	if doc.ThumbnailHalf != nil {
		v.ThumbnailHalf = &model.ImageMedia{Name: doc.ThumbnailHalf.Name, Location: doc.ThumbnailHalf.Location}
	}
	v.Trailer = audioVideoMediaEntity(n, "trailer", doc.Trailer)
	v.Video = audioVideoMediaEntity(n, "video", doc.Video)

	for _, c := range doc.Categories {
		categoryID, err := model.ParseCategoryID(c.ID)
		if err != nil {
			n.AddError("categories", err.Error())
			continue
		}
		v.Categories[categoryID] = model.NestedCategory{
			ID:        categoryID,
			Name:      c.Name,
			IsActive:  c.IsActive,
			DeletedAt: timePtr(c.DeletedAt),
		}
	}
	for _, g := range doc.Genres {
		genreID, err := model.ParseGenreID(g.ID)
		if err != nil {
			n.AddError("genres", err.Error())
			continue
		}
		v.Genres[genreID] = model.NestedGenre{
			ID:        genreID,
			Name:      g.Name,
			IsActive:  g.IsActive,
			DeletedAt: timePtr(g.DeletedAt),
		}
	}
	for _, m := range doc.CastMembers {
		memberID, err := model.ParseCastMemberID(m.ID)
		if err != nil {
			n.AddError("cast_members", err.Error())
			continue
		}
		memberType, err := model.ParseCastMemberType(m.Type)
		if err != nil {
			n.AddError("cast_members", err.Error())
			continue
		}
		v.CastMembers[memberID] = model.NestedCastMember{
			ID:        memberID,
			Name:      m.Name,
			Type:      memberType,
			IsActive:  m.IsActive,
			DeletedAt: timePtr(m.DeletedAt),
		}
	}

	n.Merge(v.Validate())
	if n.HasErrors() {
		return nil, model.NewLoadEntityError(n)
	}
	return v, nil
}

func audioVideoMediaDocument(m *model.AudioVideoMedia) *AudioVideoMediaDocument {
	return &AudioVideoMediaDocument{
		Name:            m.Name,
		RawLocation:     m.RawLocation,
		EncodedLocation: m.EncodedLocation,
		Status:          m.Status.String(),
	}
}

func audioVideoMediaEntity(n *model.Notification, field string, doc *AudioVideoMediaDocument) *model.AudioVideoMedia {
	if doc == nil {
		return nil
	}
	status := model.MediaStatus(doc.Status)
	if !status.IsValid() {
		n.AddError(field, "invalid media status: "+doc.Status)
	}
	return &model.AudioVideoMedia{
		Name:            doc.Name,
		RawLocation:     doc.RawLocation,
		EncodedLocation: doc.EncodedLocation,
		Status:          status,
	}
}

func flexTimePtr(t *time.Time) *FlexTime {
	if t == nil {
		return nil
	}
	return &FlexTime{*t}
}

func timePtr(t *FlexTime) *time.Time {
	if t == nil {
		return nil
	}
	return &t.Time
}
