// Package hub reads artifact metadata from the hosting services:
// the Hugging Face Hub for models and datasets, GitHub for code
// repositories. It backs the file-listing, README, and repo-info
// contracts the metric providers consume.
package hub

// FileEntry is one file in an artifact listing.
type FileEntry struct {
	Path string
	Size int64
}

// Info is the normalized repository metadata shared by all hosts.
// SizeBytes is only populated for code repositories, where the
// host reports an aggregate size instead of per-file listings.
type Info struct {
	ID        string
	License   string
	Downloads int64
	Likes     int64
	Card      map[string]any
	Files     []FileEntry
	SizeBytes int64
}

// CardString returns a string-valued card field, or empty.
func (i *Info) CardString(key string) string {
	if i == nil || i.Card == nil {
		return ""
	}
	if s, ok := i.Card[key].(string); ok {
		return s
	}
	return ""
}
