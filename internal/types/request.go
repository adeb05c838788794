package types

import (
	"github.com/go-playground/validator/v10"
)

// RecommendRequest is the request body for POST /recommend
type RecommendRequest struct {
	Messages   string `json:"messages" validate:"required"`
	MyName     string `json:"my_name" validate:"required,min=1"`
	FriendName string `json:"friend_name" validate:"required,min=1"`
	Budget     string `json:"budget,omitempty"`
	ChunkSize  int    `json:"chunk_size,omitempty" validate:"gte=0,lte=500"`
	Format     string `json:"format,omitempty" validate:"omitempty,oneof=whatsapp instagram"`
}

// RecommendResponse is the response body for POST /recommend
type RecommendResponse struct {
	RequestID   string       `json:"request_id"`
	Notes       string       `json:"notes"`
	GiftIdeas   []GiftIdea   `json:"gift_ideas"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// Validate validates the RecommendRequest using the validator.
func (r *RecommendRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
