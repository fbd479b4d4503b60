package model

import "strings"

// Platform identifies a social network a seller can connect.
type Platform string

const (
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
)

// ParsePlatform normalizes a route or query value into a known platform.
func ParsePlatform(v string) (Platform, error) {
	switch p := Platform(strings.ToLower(strings.TrimSpace(v))); p {
	case PlatformFacebook, PlatformInstagram:
		return p, nil
	default:
		return "", ErrInvalidPlatform
	}
}

func (p Platform) String() string { return string(p) }
