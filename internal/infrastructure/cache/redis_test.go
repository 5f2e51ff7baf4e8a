package cache

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/hszk-dev/catalog/internal/domain/model"
)

func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return client, cleanup
}

func cachedVideo(t *testing.T) *model.Video {
	t.Helper()

	deleted := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	video := model.NewVideo(model.VideoProps{
		Title:        "Cached Video",
		Description:  "Round-trips through redis",
		YearLaunched: 2022,
		Duration:     101,
		Rating:       model.Rating14,
		IsOpened:     true,
		Categories: []model.NestedCategory{
			{ID: model.NewCategoryID(), Name: "Movies", IsActive: true},
			{ID: model.NewCategoryID(), Name: "Retired", IsActive: false, DeletedAt: &deleted},
		},
		Genres: []model.NestedGenre{
			{ID: model.NewGenreID(), Name: "Thriller", IsActive: true},
		},
		CastMembers: []model.NestedCastMember{
			{ID: model.NewCastMemberID(), Name: "Ada", Type: model.CastMemberActor, IsActive: true},
		},
	})
	video.ReplaceTrailer(model.AudioVideoMedia{Name: "trailer.mp4", RawLocation: "videos/x/raw/trailer.mp4", Status: model.MediaCompleted})
	video.ReplaceVideo(model.AudioVideoMedia{Name: "movie.mp4", RawLocation: "videos/x/raw/movie.mp4", EncodedLocation: "videos/x/enc/movie", Status: model.MediaCompleted})
	return video
}

func TestRedisVideoCache_Get_CacheHit(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	cache := NewRedisVideoCache(client)
	ctx := context.Background()

	video := cachedVideo(t)

	// Set the video in cache
	err := cache.Set(ctx, video, 5*time.Minute)
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Get the video from cache
	got, err := cache.Get(ctx, video.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if got == nil {
		t.Fatal("expected video, got nil")
	}

	// Verify fields, nested snapshots included
	if got.ID != video.ID {
		t.Errorf("ID = %v, want %v", got.ID, video.ID)
	}
	if got.Title != video.Title {
		t.Errorf("Title = %v, want %v", got.Title, video.Title)
	}
	if got.Rating != video.Rating {
		t.Errorf("Rating = %v, want %v", got.Rating, video.Rating)
	}
	if got.IsPublished != video.IsPublished {
		t.Errorf("IsPublished = %v, want %v", got.IsPublished, video.IsPublished)
	}
	if !got.CreatedAt.Equal(video.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, video.CreatedAt)
	}
	if !reflect.DeepEqual(got.Categories, video.Categories) {
		t.Errorf("Categories = %+v, want %+v", got.Categories, video.Categories)
	}
	if !reflect.DeepEqual(got.Genres, video.Genres) {
		t.Errorf("Genres = %+v, want %+v", got.Genres, video.Genres)
	}
	if !reflect.DeepEqual(got.CastMembers, video.CastMembers) {
		t.Errorf("CastMembers = %+v, want %+v", got.CastMembers, video.CastMembers)
	}
	if !reflect.DeepEqual(got.Trailer, video.Trailer) || !reflect.DeepEqual(got.Video, video.Video) {
		t.Errorf("media slots differ: %+v / %+v", got.Trailer, got.Video)
	}
}

func TestRedisVideoCache_Get_CacheMiss(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	cache := NewRedisVideoCache(client)
	ctx := context.Background()

	// Try to get a non-existent video
	got, err := cache.Get(ctx, model.NewVideoID())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if got != nil {
		t.Errorf("expected nil for cache miss, got %v", got)
	}
}

func TestRedisVideoCache_Delete(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	cache := NewRedisVideoCache(client)
	ctx := context.Background()

	video := cachedVideo(t)

	// Set the video in cache
	err := cache.Set(ctx, video, 5*time.Minute)
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Delete the video from cache
	err = cache.Delete(ctx, video.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// Verify it's gone
	got, err := cache.Get(ctx, video.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if got != nil {
		t.Errorf("expected nil after delete, got %v", got)
	}
}

func TestRedisVideoCache_Delete_NonExistent(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	cache := NewRedisVideoCache(client)
	ctx := context.Background()

	// Delete non-existent video should not error
	err := cache.Delete(ctx, model.NewVideoID())
	if err != nil {
		t.Fatalf("Delete failed for non-existent key: %v", err)
	}
}

func TestRedisVideoCache_Set_AllMediaStatuses(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	cache := NewRedisVideoCache(client)
	ctx := context.Background()

	statuses := []model.MediaStatus{
		model.MediaPending,
		model.MediaProcessing,
		model.MediaCompleted,
		model.MediaFailed,
	}

	for _, status := range statuses {
		t.Run(string(status), func(t *testing.T) {
			video := cachedVideo(t)
			video.ReplaceVideo(model.AudioVideoMedia{Name: "movie.mp4", RawLocation: "videos/x/raw/movie.mp4", Status: status})

			err := cache.Set(ctx, video, 5*time.Minute)
			if err != nil {
				t.Fatalf("Set failed: %v", err)
			}

			got, err := cache.Get(ctx, video.ID)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}

			if got.Video.Status != status {
				t.Errorf("Status = %v, want %v", got.Video.Status, status)
			}
		})
	}
}

func TestRedisVideoCache_buildKey(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	cache := NewRedisVideoCache(client)
	videoID, err := model.ParseVideoID("550e8400-e29b-41d4-a716-446655440000")
	if err != nil {
		t.Fatalf("ParseVideoID failed: %v", err)
	}

	key := cache.buildKey(videoID)
	expected := "video:550e8400-e29b-41d4-a716-446655440000"

	if key != expected {
		t.Errorf("buildKey() = %v, want %v", key, expected)
	}
}
