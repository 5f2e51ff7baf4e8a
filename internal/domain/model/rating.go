package model

import "fmt"

// Rating is the audience classification assigned to a video.
type Rating string

const (
	RatingFree Rating = "L"
	Rating10   Rating = "10"
	Rating12   Rating = "12"
	Rating14   Rating = "14"
	Rating16   Rating = "16"
	Rating18   Rating = "18"
)

func (r Rating) IsValid() bool {
	switch r {
	case RatingFree, Rating10, Rating12, Rating14, Rating16, Rating18:
		return true
	default:
		return false
	}
}

func (r Rating) String() string {
	return string(r)
}

// ParseRating converts a stored rating value back into a Rating.
func ParseRating(s string) (Rating, error) {
	r := Rating(s)
	if !r.IsValid() {
		return "", fmt.Errorf("invalid rating: %q", s)
	}
	return r, nil
}

// CastMemberType distinguishes directors from actors.
type CastMemberType int

const (
	CastMemberDirector CastMemberType = 1
	CastMemberActor    CastMemberType = 2
)

func (t CastMemberType) IsValid() bool {
	return t == CastMemberDirector || t == CastMemberActor
}

// ParseCastMemberType converts a stored type code back into a CastMemberType.
func ParseCastMemberType(v int) (CastMemberType, error) {
	t := CastMemberType(v)
	if !t.IsValid() {
		return 0, fmt.Errorf("invalid cast member type: %d", v)
	}
	return t, nil
}
