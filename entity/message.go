package entity

import (
	"net/http"
	"time"

	"classroom/lib/validate"
)

// ChatMessage is an append-only document in the messages collection.
// Read flips false to true once, via the batch mark-as-read update.
type ChatMessage struct {
	Id        string    `json:"id" bson:"id"`
	From      string    `json:"from" bson:"from"`
	To        string    `json:"to" bson:"to"`
	Message   string    `json:"message" bson:"message"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	Read      bool      `json:"read" bson:"read"`
}

type SendMessageRequest struct {
	From    string `json:"from" validate:"required"`
	To      string `json:"to" validate:"required"`
	Message string `json:"message" validate:"required"`
}

func (r *SendMessageRequest) Bind(_ *http.Request) error {
	return validate.Struct(r)
}

type MarkAsReadRequest struct {
	MessageIds []string `json:"messageIds" validate:"required,min=1"`
}

func (r *MarkAsReadRequest) Bind(_ *http.Request) error {
	return validate.Struct(r)
}
