package model

import (
	"fmt"
	"path"
	"path/filepath"

	"github.com/google/uuid"
)

// MediaStatus represents the encoding state of an audio/video media.
type MediaStatus string

const (
	MediaPending    MediaStatus = "PENDING"
	MediaProcessing MediaStatus = "PROCESSING"
	MediaCompleted  MediaStatus = "COMPLETED"
	MediaFailed     MediaStatus = "FAILED"
)

func (s MediaStatus) IsValid() bool {
	switch s {
	case MediaPending, MediaProcessing, MediaCompleted, MediaFailed:
		return true
	default:
		return false
	}
}

func (s MediaStatus) String() string { return string(s) }

// InvalidMediaFileSizeError is returned by a media factory when the candidate
// file exceeds the policy limit for that media type.
type InvalidMediaFileSizeError struct {
	Media   string
	Size    int64
	MaxSize int64
}

func (e *InvalidMediaFileSizeError) Error() string {
	return fmt.Sprintf("invalid %s file: size %d exceeds maximum of %d bytes", e.Media, e.Size, e.MaxSize)
}

// InvalidMediaFileMimeTypeError is returned by a media factory when the
// candidate file's mime type is not in the allow-list for that media type.
type InvalidMediaFileMimeTypeError struct {
	Media    string
	MimeType string
	Allowed  []string
}

func (e *InvalidMediaFileMimeTypeError) Error() string {
	return fmt.Sprintf("invalid %s file: mime type %q is not allowed, must be one of %v", e.Media, e.MimeType, e.Allowed)
}

// mediaPolicy is the per-media-type upload validation table.
type mediaPolicy struct {
	name      string
	maxSize   int64
	mimeTypes []string
	dir       string
}

const (
	megabyte = int64(1024 * 1024)
	gigabyte = 1024 * megabyte
)

var (
	bannerPolicy = mediaPolicy{
		name:      "banner",
		maxSize:   2 * megabyte,
		mimeTypes: []string{"image/jpeg", "image/png", "image/gif"},
		dir:       "images",
	}
	thumbnailPolicy = mediaPolicy{
		name:      "thumbnail",
		maxSize:   2 * megabyte,
		mimeTypes: []string{"image/jpeg", "image/png"},
		dir:       "images",
	}
	thumbnailHalfPolicy = mediaPolicy{
		name:      "thumbnail half",
		maxSize:   2 * megabyte,
		mimeTypes: []string{"image/jpeg", "image/png"},
		dir:       "images",
	}
	trailerPolicy = mediaPolicy{
		name:      "trailer",
		maxSize:   500 * megabyte,
		mimeTypes: []string{"video/mp4"},
		dir:       "raw",
	}
	videoMediaPolicy = mediaPolicy{
		name:      "video",
		maxSize:   50 * gigabyte,
		mimeTypes: []string{"video/mp4"},
		dir:       "raw",
	}
)

// validate checks a candidate file against the policy and, on success,
// produces a unique storage name scoped under the video's media directory.
func (p mediaPolicy) validate(rawName, mimeType string, size int64, videoID VideoID) (string, string, error) {
	if size > p.maxSize {
		return "", "", &InvalidMediaFileSizeError{Media: p.name, Size: size, MaxSize: p.maxSize}
	}
	allowed := false
	for _, mt := range p.mimeTypes {
		if mt == mimeType {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", "", &InvalidMediaFileMimeTypeError{Media: p.name, MimeType: mimeType, Allowed: p.mimeTypes}
	}

	name := uuid.NewString() + filepath.Ext(rawName)
	location := path.Join("videos", videoID.String(), p.dir)
	return name, location, nil
}

// ImageMedia is an immutable reference to an uploaded image (banner or
// thumbnail slot). Image slots are replace-only and carry no processing state.
type ImageMedia struct {
	Name     string
	Location string
}

// URL returns the storage path of the image.
func (m ImageMedia) URL() string {
	return path.Join(m.Location, m.Name)
}

// NewBannerFromFile validates a candidate banner upload against the banner
// policy. The error, when non-nil, is either *InvalidMediaFileSizeError or
// *InvalidMediaFileMimeTypeError so callers can aggregate several media
// validations before failing the whole operation.
func NewBannerFromFile(rawName, mimeType string, size int64, videoID VideoID) (ImageMedia, error) {
	return newImageFromFile(bannerPolicy, rawName, mimeType, size, videoID)
}

// NewThumbnailFromFile validates a candidate thumbnail upload.
func NewThumbnailFromFile(rawName, mimeType string, size int64, videoID VideoID) (ImageMedia, error) {
	return newImageFromFile(thumbnailPolicy, rawName, mimeType, size, videoID)
}

// NewThumbnailHalfFromFile validates a candidate half-size thumbnail upload.
func NewThumbnailHalfFromFile(rawName, mimeType string, size int64, videoID VideoID) (ImageMedia, error) {
	return newImageFromFile(thumbnailHalfPolicy, rawName, mimeType, size, videoID)
}

func newImageFromFile(p mediaPolicy, rawName, mimeType string, size int64, videoID VideoID) (ImageMedia, error) {
	name, location, err := p.validate(rawName, mimeType, size, videoID)
	if err != nil {
		return ImageMedia{}, err
	}
	return ImageMedia{Name: name, Location: location}, nil
}

// AudioVideoMedia is an immutable reference to an uploaded trailer or video
// file. State transitions return a new value; the aggregate replaces its slot
// with the result.
type AudioVideoMedia struct {
	Name            string
	RawLocation     string
	EncodedLocation string
	Status          MediaStatus
}

// NewTrailerFromFile validates a candidate trailer upload against the trailer
// policy. See NewBannerFromFile for the error contract.
func NewTrailerFromFile(rawName, mimeType string, size int64, videoID VideoID) (AudioVideoMedia, error) {
	return newAudioVideoFromFile(trailerPolicy, rawName, mimeType, size, videoID)
}

// NewVideoMediaFromFile validates a candidate video file upload.
func NewVideoMediaFromFile(rawName, mimeType string, size int64, videoID VideoID) (AudioVideoMedia, error) {
	return newAudioVideoFromFile(videoMediaPolicy, rawName, mimeType, size, videoID)
}

func newAudioVideoFromFile(p mediaPolicy, rawName, mimeType string, size int64, videoID VideoID) (AudioVideoMedia, error) {
	name, location, err := p.validate(rawName, mimeType, size, videoID)
	if err != nil {
		return AudioVideoMedia{}, err
	}
	return AudioVideoMedia{Name: name, RawLocation: location, Status: MediaPending}, nil
}

// Process marks the media as picked up by the encoding pipeline.
func (m AudioVideoMedia) Process() AudioVideoMedia {
	m.Status = MediaProcessing
	return m
}

// Complete marks the media as encoded and attaches the encoded location.
func (m AudioVideoMedia) Complete(encodedLocation string) AudioVideoMedia {
	m.Status = MediaCompleted
	m.EncodedLocation = encodedLocation
	return m
}

// Fail marks the media as failed.
func (m AudioVideoMedia) Fail() AudioVideoMedia {
	m.Status = MediaFailed
	return m
}

// RawURL returns the storage path of the raw file.
func (m AudioVideoMedia) RawURL() string {
	return path.Join(m.RawLocation, m.Name)
}
