package types

// Settings
type Setting struct {
	ID    uint8  `gorm:"primaryKey"`
	Name  string `gorm:"size:32;not null"`
	Value string `gorm:"size:256;not null"`
}

// IdeaIssue is an open idea as reported by the tracker, plus the Discord
// vote count mirrored into its vote comment.
type IdeaIssue struct {
	Number int      `json:"number"`
	Title  string   `json:"title"`
	URL    string   `json:"url"`
	Votes  int      `json:"votes"`
	Labels []string `json:"labels"`
}
