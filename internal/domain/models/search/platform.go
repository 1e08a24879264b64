package search

import (
	"fmt"
	"strings"
)

// Platform identifies one external search backend.
type Platform string

const (
	PlatformBrave   Platform = "brave"
	PlatformGoogle  Platform = "google"
	PlatformYouTube Platform = "youtube"
	PlatformReddit  Platform = "reddit"
	PlatformGitHub  Platform = "github"
	PlatformSpotify Platform = "spotify"
)

// AllPlatforms lists every platform the system knows about, in canonical order.
var AllPlatforms = []Platform{
	PlatformBrave,
	PlatformGoogle,
	PlatformYouTube,
	PlatformReddit,
	PlatformGitHub,
	PlatformSpotify,
}

// ParsePlatform validates a raw platform identifier.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllPlatforms {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

// ParsePlatforms validates and deduplicates a list of raw identifiers,
// preserving first-occurrence order.
func ParsePlatforms(raw []string) ([]Platform, error) {
	seen := make(map[Platform]struct{}, len(raw))
	out := make([]Platform, 0, len(raw))
	for _, s := range raw {
		p, err := ParsePlatform(s)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out, nil
}

// PlatformStrings converts a platform list back to plain strings (for
// persistence and JSON responses).
func PlatformStrings(platforms []Platform) []string {
	out := make([]string, len(platforms))
	for i, p := range platforms {
		out[i] = string(p)
	}
	return out
}
