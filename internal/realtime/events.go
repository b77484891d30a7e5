package realtime

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/collabboard/internal/domain"
)

// EventType names an event on the live channel.
type EventType string

const (
	EventJoin             EventType = "join"
	EventLeave            EventType = "leave"
	EventStatus           EventType = "status"
	EventPresence         EventType = "presence"
	EventChatMessage      EventType = "chat_message"
	EventTaskUpdate       EventType = "task_update"
	EventTaskDeleted      EventType = "task_deleted"
	EventWhiteboardUpdate EventType = "whiteboard_update"
	EventError            EventType = "error"
)

// Envelope is the inbound frame: a kind plus its undecoded payload.
type Envelope struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Event is an outbound frame.
type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data,omitempty"`
}

// Encode renders the event as a single text frame.
func (e Event) Encode() ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("realtime.Event.Encode: %s: %w", e.Type, err)
	}
	return b, nil
}

// Inbound payloads.

type RoomPayload struct {
	BoardID uuid.UUID `json:"board_id" validate:"required"`
}

type ChatPayload struct {
	BoardID uuid.UUID `json:"board_id" validate:"required"`
	Message string    `json:"message" validate:"required,max=4000"`
}

type TaskUpdatePayload struct {
	BoardID uuid.UUID       `json:"board_id" validate:"required"`
	Task    json.RawMessage `json:"task" validate:"required"`
}

type WhiteboardPayload struct {
	BoardID    uuid.UUID       `json:"board_id" validate:"required"`
	UpdateData json.RawMessage `json:"update_data" validate:"required"`
}

// Outbound payloads.

type StatusData struct {
	Msg string `json:"msg"`
}

type ChatData struct {
	ID        uuid.UUID `json:"id"`
	BoardID   uuid.UUID `json:"board_id"`
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type TaskUpdateData struct {
	BoardID uuid.UUID `json:"board_id"`
	Task    any       `json:"task"`
}

type TaskDeletedData struct {
	TaskID  uuid.UUID `json:"task_id"`
	BoardID uuid.UUID `json:"board_id"`
}

type PresenceData struct {
	BoardID uuid.UUID         `json:"board_id"`
	Users   []domain.Identity `json:"users"`
}

type ErrorData struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Event   EventType `json:"event,omitempty"`
}

// Error codes carried by error events.
const (
	CodeUnauthenticated    = "unauthenticated"
	CodeForbidden          = "forbidden"
	CodeValidation         = "validation_error"
	CodeNotFound           = "not_found"
	CodePersistenceFailure = "persistence_failure"
	CodeRateLimited        = "rate_limited"
	CodeBadRequest         = "bad_request"
	CodeInternal           = "internal_error"
)

// ErrorEvent reports a rejected inbound event back to its sender.
func ErrorEvent(code, message string, ev EventType) Event {
	return Event{Type: EventError, Data: ErrorData{Code: code, Message: message, Event: ev}}
}

// chatEvent builds the broadcast from the persisted row, never from the
// client's payload.
func chatEvent(msg *domain.ChatMessage, author domain.Identity) Event {
	return Event{Type: EventChatMessage, Data: ChatData{
		ID:        msg.ID,
		BoardID:   msg.BoardID,
		UserID:    msg.UserID,
		Username:  author.Name,
		Message:   msg.Message,
		Timestamp: msg.Timestamp,
	}}
}

func joinedStatus(id domain.Identity) Event {
	return Event{Type: EventStatus, Data: StatusData{Msg: fmt.Sprintf("User %s has entered the room.", id.Name)}}
}

func leftStatus(id domain.Identity) Event {
	return Event{Type: EventStatus, Data: StatusData{Msg: fmt.Sprintf("User %s has left the room.", id.Name)}}
}

// TaskUpdateEvent is broadcast after a task row has been committed.
func TaskUpdateEvent(t *domain.Task) Event {
	return Event{Type: EventTaskUpdate, Data: TaskUpdateData{BoardID: t.BoardID, Task: t}}
}

// TaskDeletedEvent is broadcast after a task row has been deleted.
func TaskDeletedEvent(boardID, taskID uuid.UUID) Event {
	return Event{Type: EventTaskDeleted, Data: TaskDeletedData{TaskID: taskID, BoardID: boardID}}
}
