package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/collabboard/internal/domain"
)

// Router dispatches inbound live events to their handlers and is the only
// path by which board mutations reach a room. Every handler authorizes
// first; handlers that persist do so inside the board's sequencer section
// and publish only what the store returned.
type Router struct {
	gate     *Gate
	broker   *Broker
	registry *Registry
	bridge   PersistenceBridge
	seq      *Sequencer
	validate *validator.Validate
}

func NewRouter(gate *Gate, broker *Broker, registry *Registry, bridge PersistenceBridge) *Router {
	return &Router{
		gate:     gate,
		broker:   broker,
		registry: registry,
		bridge:   bridge,
		seq:      NewSequencer(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Connect registers a freshly authenticated connection.
func (rt *Router) Connect(conn *Conn) {
	rt.registry.Register(conn)
	log.Debug().
		Str("conn_id", conn.ID().String()).
		Str("user_id", conn.Identity().UserID.String()).
		Msg("router: connected")
}

// Disconnect closes conn and leaves every room it held. Callers must not
// hand further events from conn to Handle afterwards.
func (rt *Router) Disconnect(ctx context.Context, conn *Conn) {
	conn.Close()
	rooms := rt.registry.Remove(conn.ID())
	for _, boardID := range rooms {
		rt.broker.Leave(ctx, conn, boardID)
	}
	log.Debug().
		Str("conn_id", conn.ID().String()).
		Int("rooms", len(rooms)).
		Msg("router: disconnected")
}

// Handle processes one inbound frame from conn. A rejected event is reported
// back to conn as an error event and also returned.
func (rt *Router) Handle(ctx context.Context, conn *Conn, raw []byte) error {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		err = fmt.Errorf("realtime.Router.Handle: decode envelope: %w: %w", domain.ErrValidation, err)
		rt.reject(conn, "", err)
		return err
	}

	var err error
	switch env.Type {
	case EventJoin:
		err = rt.handleJoin(ctx, conn, env.Data)
	case EventLeave:
		err = rt.handleLeave(ctx, conn, env.Data)
	case EventChatMessage:
		err = rt.handleChat(ctx, conn, env.Data)
	case EventTaskUpdate:
		err = rt.handleTaskUpdate(ctx, conn, env.Data)
	case EventWhiteboardUpdate:
		err = rt.handleWhiteboard(ctx, conn, env.Data)
	case EventPresence:
		err = rt.handlePresence(ctx, conn, env.Data)
	default:
		err = fmt.Errorf("realtime.Router.Handle: unknown event %q: %w", env.Type, domain.ErrValidation)
	}

	if err != nil {
		log.Debug().Err(err).
			Str("conn_id", conn.ID().String()).
			Str("event", string(env.Type)).
			Msg("router: event rejected")
		rt.reject(conn, env.Type, err)
		return err
	}
	return nil
}

func (rt *Router) handleJoin(ctx context.Context, conn *Conn, data json.RawMessage) error {
	var p RoomPayload
	if err := rt.decode(data, &p); err != nil {
		return fmt.Errorf("realtime.Router.join: %w", err)
	}
	if _, err := rt.gate.Authorize(ctx, conn.Identity(), p.BoardID); err != nil {
		return fmt.Errorf("realtime.Router.join: %w", err)
	}

	if rt.broker.Join(ctx, conn, p.BoardID) && !rt.registry.Track(conn.ID(), p.BoardID) {
		// The connection was removed while joining; undo so no room keeps it.
		rt.broker.Leave(ctx, conn, p.BoardID)
	}
	return nil
}

func (rt *Router) handleLeave(ctx context.Context, conn *Conn, data json.RawMessage) error {
	var p RoomPayload
	if err := rt.decode(data, &p); err != nil {
		return fmt.Errorf("realtime.Router.leave: %w", err)
	}

	rt.broker.Leave(ctx, conn, p.BoardID)
	rt.registry.Untrack(conn.ID(), p.BoardID)
	return nil
}

func (rt *Router) handleChat(ctx context.Context, conn *Conn, data json.RawMessage) error {
	var p ChatPayload
	if err := rt.decode(data, &p); err != nil {
		return fmt.Errorf("realtime.Router.chat: %w", err)
	}
	author := conn.Identity()
	if _, err := rt.gate.Authorize(ctx, author, p.BoardID); err != nil {
		return fmt.Errorf("realtime.Router.chat: %w", err)
	}

	// The write and its broadcast outlive the sender's connection.
	ctx = context.WithoutCancel(ctx)

	unlock := rt.seq.Lock(p.BoardID)
	defer unlock()

	msg, err := rt.bridge.AppendChatMessage(ctx, p.BoardID, author, p.Message)
	if err != nil {
		return fmt.Errorf("realtime.Router.chat: %w", persistenceErr(err))
	}

	if _, err := rt.broker.Publish(p.BoardID, chatEvent(msg, author), uuid.Nil); err != nil {
		log.Error().Err(err).Str("board_id", p.BoardID.String()).Msg("router: publish chat message")
	}
	return nil
}

func (rt *Router) handleTaskUpdate(ctx context.Context, conn *Conn, data json.RawMessage) error {
	var p TaskUpdatePayload
	if err := rt.decode(data, &p); err != nil {
		return fmt.Errorf("realtime.Router.task_update: %w", err)
	}
	if !isObject(p.Task) {
		return fmt.Errorf("realtime.Router.task_update: task must be an object: %w", domain.ErrValidation)
	}
	if _, err := rt.gate.Authorize(ctx, conn.Identity(), p.BoardID); err != nil {
		return fmt.Errorf("realtime.Router.task_update: %w", err)
	}

	unlock := rt.seq.Lock(p.BoardID)
	defer unlock()

	ev := Event{Type: EventTaskUpdate, Data: TaskUpdateData{BoardID: p.BoardID, Task: p.Task}}
	if _, err := rt.broker.Publish(p.BoardID, ev, uuid.Nil); err != nil {
		return fmt.Errorf("realtime.Router.task_update: %w", err)
	}
	return nil
}

func (rt *Router) handleWhiteboard(ctx context.Context, conn *Conn, data json.RawMessage) error {
	var p WhiteboardPayload
	if err := rt.decode(data, &p); err != nil {
		return fmt.Errorf("realtime.Router.whiteboard_update: %w", err)
	}
	if isNull(p.UpdateData) {
		return fmt.Errorf("realtime.Router.whiteboard_update: update_data is null: %w", domain.ErrValidation)
	}
	if _, err := rt.gate.Authorize(ctx, conn.Identity(), p.BoardID); err != nil {
		return fmt.Errorf("realtime.Router.whiteboard_update: %w", err)
	}

	ev := Event{Type: EventWhiteboardUpdate, Data: p.UpdateData}
	if _, err := rt.broker.Publish(p.BoardID, ev, conn.ID()); err != nil {
		return fmt.Errorf("realtime.Router.whiteboard_update: %w", err)
	}
	return nil
}

func (rt *Router) handlePresence(ctx context.Context, conn *Conn, data json.RawMessage) error {
	var p RoomPayload
	if err := rt.decode(data, &p); err != nil {
		return fmt.Errorf("realtime.Router.presence: %w", err)
	}
	users, err := rt.Presence(ctx, conn.Identity(), p.BoardID)
	if err != nil {
		return fmt.Errorf("realtime.Router.presence: %w", err)
	}

	frame, err := Event{Type: EventPresence, Data: PresenceData{BoardID: p.BoardID, Users: users}}.Encode()
	if err != nil {
		return fmt.Errorf("realtime.Router.presence: %w", err)
	}
	conn.Send(frame)
	return nil
}

// Authorize exposes the gate to the REST layer.
func (rt *Router) Authorize(ctx context.Context, id domain.Identity, boardID uuid.UUID) (*domain.Membership, error) {
	m, err := rt.gate.Authorize(ctx, id, boardID)
	if err != nil {
		return nil, fmt.Errorf("realtime.Router.Authorize: %w", err)
	}
	return m, nil
}

// CommitTask runs commit (a durable task create or update) inside the
// board's section and broadcasts the committed row. Nothing is broadcast
// when authorization or commit fails.
func (rt *Router) CommitTask(ctx context.Context, id domain.Identity, boardID uuid.UUID, commit func(context.Context) (*domain.Task, error)) (*domain.Task, error) {
	if _, err := rt.gate.Authorize(ctx, id, boardID); err != nil {
		return nil, fmt.Errorf("realtime.Router.CommitTask: %w", err)
	}

	unlock := rt.seq.Lock(boardID)
	defer unlock()

	t, err := commit(ctx)
	if err != nil {
		return nil, fmt.Errorf("realtime.Router.CommitTask: %w", err)
	}

	if _, err := rt.broker.Publish(boardID, TaskUpdateEvent(t), uuid.Nil); err != nil {
		log.Error().Err(err).Str("board_id", boardID.String()).Msg("router: publish task update")
	}
	return t, nil
}

// CommitTaskDelete is CommitTask for deletions.
func (rt *Router) CommitTaskDelete(ctx context.Context, id domain.Identity, boardID, taskID uuid.UUID, commit func(context.Context) error) error {
	if _, err := rt.gate.Authorize(ctx, id, boardID); err != nil {
		return fmt.Errorf("realtime.Router.CommitTaskDelete: %w", err)
	}

	unlock := rt.seq.Lock(boardID)
	defer unlock()

	if err := commit(ctx); err != nil {
		return fmt.Errorf("realtime.Router.CommitTaskDelete: %w", err)
	}

	if _, err := rt.broker.Publish(boardID, TaskDeletedEvent(boardID, taskID), uuid.Nil); err != nil {
		log.Error().Err(err).Str("board_id", boardID.String()).Msg("router: publish task deletion")
	}
	return nil
}

// SaveWhiteboard replaces the board's whiteboard snapshot. Live diffs are
// not reconciled with it and nothing is broadcast.
func (rt *Router) SaveWhiteboard(ctx context.Context, id domain.Identity, boardID uuid.UUID, blob string) error {
	if _, err := rt.gate.Authorize(ctx, id, boardID); err != nil {
		return fmt.Errorf("realtime.Router.SaveWhiteboard: %w", err)
	}

	unlock := rt.seq.Lock(boardID)
	defer unlock()

	if err := rt.bridge.WriteWhiteboardSnapshot(ctx, boardID, blob); err != nil {
		return fmt.Errorf("realtime.Router.SaveWhiteboard: %w", persistenceErr(err))
	}
	return nil
}

// Presence lists who is online in the board's room.
func (rt *Router) Presence(ctx context.Context, id domain.Identity, boardID uuid.UUID) ([]domain.Identity, error) {
	if _, err := rt.gate.Authorize(ctx, id, boardID); err != nil {
		return nil, fmt.Errorf("realtime.Router.Presence: %w", err)
	}
	users, err := rt.broker.Presence(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("realtime.Router.Presence: %w: %w", domain.ErrPersistence, err)
	}
	return users, nil
}

// normalizer is implemented by payloads that clean up fields before validation.
type normalizer interface {
	normalize()
}

func (p *ChatPayload) normalize() {
	p.Message = strings.TrimSpace(p.Message)
}

func (rt *Router) decode(data json.RawMessage, dst any) error {
	if len(data) == 0 || isNull(data) {
		return fmt.Errorf("missing payload: %w", domain.ErrValidation)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode payload: %w: %w", domain.ErrValidation, err)
	}
	if n, ok := dst.(normalizer); ok {
		n.normalize()
	}
	if err := rt.validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	return nil
}

func (rt *Router) reject(conn *Conn, evType EventType, err error) {
	code, msg := errorCode(err)
	frame, encErr := ErrorEvent(code, msg, evType).Encode()
	if encErr != nil {
		log.Error().Err(encErr).Msg("router: encode error event")
		return
	}
	conn.Send(frame)
}

// errorCode maps an error to its wire code and a message safe to show.
func errorCode(err error) (string, string) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return CodeUnauthenticated, "authentication required"
	case errors.Is(err, domain.ErrForbidden):
		return CodeForbidden, "not a member of this board"
	case errors.Is(err, domain.ErrValidation):
		return CodeValidation, "invalid or missing fields"
	case errors.Is(err, domain.ErrNotFound):
		return CodeNotFound, "board not found"
	case errors.Is(err, domain.ErrPersistence):
		return CodePersistenceFailure, "could not save, try again"
	default:
		return CodeInternal, "internal error"
	}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
