package core

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"classroom/entity"
	"classroom/lib/sl"
)

// Chat subjects. Each participant listens on its own inbox subject;
// typing events are ephemeral and never persisted.
const (
	SubjectMessagePrefix = "chat.msg."
	SubjectTypingPrefix  = "chat.typing."
)

// ChatEvent is the payload fanned out to the realtime transport.
type ChatEvent struct {
	Event   string              `json:"event"`
	From    string              `json:"from,omitempty"`
	Message *entity.ChatMessage `json:"message,omitempty"`
}

// SendMessage persists first, then broadcasts. Broadcast failures are
// logged only: the message is already durable and shows up in history.
func (c *Core) SendMessage(from, to, text string) (*entity.ChatMessage, error) {
	if from == "" || to == "" || text == "" {
		return nil, ErrMissingFields
	}
	message := &entity.ChatMessage{
		Id:        uuid.NewString(),
		From:      from,
		To:        to,
		Message:   text,
		Timestamp: c.now(),
		Read:      false,
	}
	if err := c.db.SaveMessage(message); err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}
	if c.bus != nil {
		event := ChatEvent{Event: "receiveMessage", From: from, Message: message}
		if err := c.bus.Publish(SubjectMessagePrefix+to, event); err != nil {
			c.log.Warn("broadcast message", slog.String("to", to), sl.Err(err))
		}
	}
	return message, nil
}

// NotifyTyping publishes an ephemeral presence event.
func (c *Core) NotifyTyping(from, to string, typing bool) error {
	if c.bus == nil {
		return nil
	}
	name := "typing"
	if !typing {
		name = "stopTyping"
	}
	return c.bus.Publish(SubjectTypingPrefix+to, ChatEvent{Event: name, From: from})
}

func (c *Core) Conversation(a, b string) ([]*entity.ChatMessage, error) {
	if a == "" || b == "" {
		return nil, ErrMissingFields
	}
	messages, err := c.db.GetConversation(a, b)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	if messages == nil {
		messages = []*entity.ChatMessage{}
	}
	return messages, nil
}

// MarkAsRead batch-flags messages; the flag never flips back.
func (c *Core) MarkAsRead(messageIds []string) error {
	if len(messageIds) == 0 {
		return ErrMissingFields
	}
	if err := c.db.MarkMessagesRead(messageIds); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}
