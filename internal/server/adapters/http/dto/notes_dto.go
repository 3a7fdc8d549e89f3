package dto

// CreateNoteRequest carries the data for creating a note.
type CreateNoteRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	IsPrivate bool   `json:"is_private"`
}

// UpdateNoteRequest carries the patch for a note; nil fields stay unchanged.
type UpdateNoteRequest struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	IsPrivate *bool   `json:"is_private"`
}
