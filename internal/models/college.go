package models

// College is a directory entry that fests and events may link to.
type College struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Area    string `json:"area,omitempty"`
	Emoji   string `json:"emoji,omitempty"`
	Website string `json:"website,omitempty"`
}
