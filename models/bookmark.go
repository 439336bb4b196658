package models

// Bookmark is one link parsed from a browser bookmark export.
type Bookmark struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	AddDate string `json:"add_date"`

	// Folder is the innermost enclosing folder, "" at top level.
	Folder string `json:"folder"`

	// Folders is the full folder path, outermost first.
	Folders []string `json:"folders"`

	// Category is empty until a strategy assigns a label.
	Category string `json:"category,omitempty"`
}

// Clone returns a deep copy of b.
func (b Bookmark) Clone() Bookmark {
	b.Folders = append([]string{}, b.Folders...)
	return b
}

// CloneBookmarks deep-copies a slice so callers may mutate the copy freely.
func CloneBookmarks(in []Bookmark) []Bookmark {
	if in == nil {
		return nil
	}
	out := make([]Bookmark, len(in))
	for i, b := range in {
		out[i] = b.Clone()
	}
	return out
}
