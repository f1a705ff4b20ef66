package download

import "strings"

// Format selectors produced by the optimal policy.
const (
	nativeSelector   = "bestaudio/best"
	losslessSelector = "bestaudio[acodec=flac]/bestaudio[acodec=alac]/bestaudio[ext=wav]/bestaudio/best"
	genericSelector  = "bestaudio[acodec=flac]/bestaudio[acodec=alac]/bestaudio[acodec=opus]/bestaudio[acodec=vorbis]/bestaudio/best"
)

// Extractors whose native audio streams are kept as served.
var nativeExtractors = map[string]struct{}{
	"youtube":     {},
	"soundcloud":  {},
	"vimeo":       {},
	"tiktok":      {},
	"twitch":      {},
	"dailymotion": {},
	"instagram":   {},
	"twitter":     {},
	"facebook":    {},
	"reddit":      {},
	"mixcloud":    {},
}

// OptimalFormat maps a yt-dlp extractor key to the preferred format
// selector. An empty key selects the generic order.
func OptimalFormat(extractorKey string) string {
	key := extractorFamily(extractorKey)
	if key == "bandcamp" {
		return losslessSelector
	}
	if _, ok := nativeExtractors[key]; ok {
		return nativeSelector
	}
	return genericSelector
}

// extractorFamily lower-cases key and strips sub-extractor suffixes, so
// "YoutubeTab" and "SoundcloudPlaylist" resolve to their site.
func extractorFamily(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return ""
	}
	if i := strings.IndexAny(key, ":_"); i > 0 {
		key = key[:i]
	}
	if key == "bandcamp" || strings.HasPrefix(key, "bandcamp") {
		return "bandcamp"
	}
	for name := range nativeExtractors {
		if strings.HasPrefix(key, name) {
			return name
		}
	}
	return key
}
