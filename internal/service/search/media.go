package search

import "strings"

// Keyword heuristics deciding whether a query's sources frame should carry
// video and image attachments. Exclusions win over inclusions.

var videoKeywords = []string{
	"how to", "tutorial", "guide", "learn", "watch", "video",
	"review", "unboxing", "gameplay", "trailer", "music", "song",
	"recipe", "cooking", "workout", "exercise", "dance",
	"diy", "craft", "makeup", "hairstyle", "interview",
}

var imageKeywords = []string{
	"what does", "look like", "picture", "photo", "image",
	"design", "style", "fashion", "architecture", "art",
	"logo", "diagram", "chart", "infographic", "meme",
	"animal", "plant", "food", "place", "landscape",
}

var noMediaKeywords = []string{
	"what year", "what time", "what date", "what day",
	"how old", "how many", "how much", "price of",
	"definition", "meaning of", "who is the president",
	"capital of", "population of", "weather", "temperature",
}

// mediaFilter says which attachment kinds a query warrants.
type mediaFilter struct {
	Videos bool
	Images bool
}

func mediaFilterFor(query string) mediaFilter {
	q := strings.ToLower(query)

	for _, kw := range noMediaKeywords {
		if strings.Contains(q, kw) {
			return mediaFilter{}
		}
	}

	var f mediaFilter
	for _, kw := range videoKeywords {
		if strings.Contains(q, kw) {
			f.Videos = true
			break
		}
	}
	for _, kw := range imageKeywords {
		if strings.Contains(q, kw) {
			f.Images = true
			break
		}
	}
	return f
}
