package dto

import (
	"time"

	"github.com/campusmeet/backend/internal/app/models"
)

// AppendChatRequest carries one user-typed chat line.
type AppendChatRequest struct {
	Text string `json:"text" binding:"required" example:"anyone up for coffee first?"`
}

// GetChatRequest filters a transcript read. Before is an entry ID cursor;
// the page ends just before it.
type GetChatRequest struct {
	Before *int64 `form:"before"`
	Limit  int    `form:"limit,default=50" binding:"min=1,max=200"`
}

// ChatEntryResponse is the wire shape of one transcript line.
type ChatEntryResponse struct {
	ID          int64     `json:"id"`
	AuthorID    *string   `json:"authorId,omitempty"`
	AuthorName  string    `json:"authorName,omitempty"`
	Body        string    `json:"body"`
	IsSystem    bool      `json:"isSystem"`
	DisplayTime string    `json:"displayTime"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ChatPageResponse is one cursor page of a transcript in causal order.
type ChatPageResponse struct {
	Entries    []ChatEntryResponse `json:"entries"`
	NextCursor *int64              `json:"nextCursor,omitempty"`
}

// ToChatEntryResponse maps a chat entry model to its wire shape.
func ToChatEntryResponse(e *models.ChatEntry) ChatEntryResponse {
	return ChatEntryResponse{
		ID:          e.ID,
		AuthorID:    e.AuthorID,
		AuthorName:  e.AuthorName,
		Body:        e.Body,
		IsSystem:    e.IsSystem,
		DisplayTime: e.DisplayTime,
		CreatedAt:   e.CreatedAt,
	}
}
