package realtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/gosuda/collabboard/internal/domain"
)

// Broker keeps the subscriber set of every active room. A room exists only
// while at least one connection is subscribed to it.
//
// Lock order is always Broker.mu then room.mu then room.mirror. Delivery
// happens under room.mu, so join, leave and publish on one room observe a
// single order. room.mirror is taken before room.mu is released and held
// across the presence store call, so the mirror sees that same order while
// room.mu itself is never held during store I/O.
type Broker struct {
	mu       sync.RWMutex
	rooms    map[uuid.UUID]*room
	presence PresenceStore // nil when presence mirroring is disabled
}

type room struct {
	mu          sync.Mutex
	mirror      sync.Mutex
	subscribers map[uuid.UUID]*Conn
}

// NewBroker creates an empty broker. presence may be nil.
func NewBroker(presence PresenceStore) *Broker {
	return &Broker{
		rooms:    make(map[uuid.UUID]*room),
		presence: presence,
	}
}

// Join subscribes conn to the board's room and announces it to the room.
// Joining a room the connection is already in is a no-op and returns false.
// Authorization is the caller's job.
func (b *Broker) Join(ctx context.Context, conn *Conn, boardID uuid.UUID) bool {
	status, err := joinedStatus(conn.Identity()).Encode()
	if err != nil {
		log.Error().Err(err).Msg("broker: encode join status")
		return false
	}

	b.mu.Lock()
	r, ok := b.rooms[boardID]
	if !ok {
		r = &room{subscribers: make(map[uuid.UUID]*Conn)}
		b.rooms[boardID] = r
	}
	r.mu.Lock()
	b.mu.Unlock()

	if _, dup := r.subscribers[conn.ID()]; dup {
		r.mu.Unlock()
		return false
	}
	r.subscribers[conn.ID()] = conn
	r.deliver(status, uuid.Nil)
	r.mirror.Lock()
	r.mu.Unlock()

	if b.presence != nil {
		if perr := b.presence.Add(ctx, boardID, conn.ID(), conn.Identity()); perr != nil {
			log.Warn().Err(perr).Str("board_id", boardID.String()).Msg("broker: presence add")
		}
	}
	r.mirror.Unlock()

	log.Debug().
		Str("board_id", boardID.String()).
		Str("conn_id", conn.ID().String()).
		Str("user_id", conn.Identity().UserID.String()).
		Msg("broker: joined room")
	return true
}

// Leave unsubscribes conn and announces the departure to whoever remains.
// Leaving a room the connection is not in is a no-op and returns false.
func (b *Broker) Leave(ctx context.Context, conn *Conn, boardID uuid.UUID) bool {
	status, err := leftStatus(conn.Identity()).Encode()
	if err != nil {
		log.Error().Err(err).Msg("broker: encode leave status")
		return false
	}

	b.mu.Lock()
	r, ok := b.rooms[boardID]
	if !ok {
		b.mu.Unlock()
		return false
	}
	r.mu.Lock()
	if _, member := r.subscribers[conn.ID()]; !member {
		r.mu.Unlock()
		b.mu.Unlock()
		return false
	}
	delete(r.subscribers, conn.ID())
	if len(r.subscribers) == 0 {
		delete(b.rooms, boardID)
	}
	b.mu.Unlock()
	r.deliver(status, uuid.Nil)
	r.mirror.Lock()
	r.mu.Unlock()

	if b.presence != nil {
		if perr := b.presence.Remove(ctx, boardID, conn.ID()); perr != nil {
			log.Warn().Err(perr).Str("board_id", boardID.String()).Msg("broker: presence remove")
		}
	}
	r.mirror.Unlock()

	log.Debug().
		Str("board_id", boardID.String()).
		Str("conn_id", conn.ID().String()).
		Msg("broker: left room")
	return true
}

// Publish delivers ev to every subscriber of the room except exclude
// (uuid.Nil excludes nobody). It returns how many subscribers accepted the
// frame. Subscribers that are closed or backed up are skipped.
func (b *Broker) Publish(boardID uuid.UUID, ev Event, exclude uuid.UUID) (int, error) {
	frame, err := ev.Encode()
	if err != nil {
		return 0, fmt.Errorf("realtime.Broker.Publish: %w", err)
	}

	b.mu.RLock()
	r, ok := b.rooms[boardID]
	if !ok {
		b.mu.RUnlock()
		return 0, nil
	}
	r.mu.Lock()
	b.mu.RUnlock()
	defer r.mu.Unlock()

	return r.deliver(frame, exclude), nil
}

// deliver must be called with r.mu held.
func (r *room) deliver(frame []byte, exclude uuid.UUID) int {
	delivered := 0
	for id, c := range r.subscribers {
		if id == exclude {
			continue
		}
		if c.Send(frame) {
			delivered++
			continue
		}
		if !c.Closed() {
			log.Warn().Str("conn_id", id.String()).Msg("broker: outbound queue full, frame dropped")
		}
	}
	return delivered
}

// IsSubscribed reports whether connID is currently in the board's room.
func (b *Broker) IsSubscribed(boardID, connID uuid.UUID) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	r, ok := b.rooms[boardID]
	if !ok {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, member := r.subscribers[connID]
	return member
}

// Occupants returns the distinct identities subscribed to the board's room.
func (b *Broker) Occupants(boardID uuid.UUID) []domain.Identity {
	b.mu.RLock()
	defer b.mu.RUnlock()

	r, ok := b.rooms[boardID]
	if !ok {
		return []domain.Identity{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := lo.MapToSlice(r.subscribers, func(_ uuid.UUID, c *Conn) domain.Identity {
		return c.Identity()
	})
	return lo.UniqBy(ids, func(id domain.Identity) uuid.UUID { return id.UserID })
}

// RoomCount returns the number of active rooms.
func (b *Broker) RoomCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.rooms)
}

// MirrorPresence rewrites every live room into the presence store each
// interval until ctx is done, keeping mirrored rooms from expiring while
// their connections stay open. It returns at once when mirroring is disabled.
func (b *Broker) MirrorPresence(ctx context.Context, interval time.Duration) {
	if b.presence == nil || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			b.RefreshPresence(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// RefreshPresence writes the current occupants of every room to the presence
// store and renews its expiry. Failures are logged per room.
func (b *Broker) RefreshPresence(ctx context.Context) {
	if b.presence == nil {
		return
	}

	b.mu.RLock()
	boards := lo.Keys(b.rooms)
	b.mu.RUnlock()

	for _, boardID := range boards {
		b.mu.RLock()
		r, ok := b.rooms[boardID]
		if !ok {
			b.mu.RUnlock()
			continue
		}
		r.mu.Lock()
		b.mu.RUnlock()
		occupants := lo.MapValues(r.subscribers, func(c *Conn, _ uuid.UUID) domain.Identity {
			return c.Identity()
		})
		r.mirror.Lock()
		r.mu.Unlock()

		if err := b.presence.Refresh(ctx, boardID, occupants); err != nil {
			log.Warn().Err(err).Str("board_id", boardID.String()).Msg("broker: presence refresh")
		}
		r.mirror.Unlock()
	}
}

// Presence lists who is online in a room, preferring the mirrored store.
func (b *Broker) Presence(ctx context.Context, boardID uuid.UUID) ([]domain.Identity, error) {
	if b.presence == nil {
		return b.Occupants(boardID), nil
	}
	ids, err := b.presence.List(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("realtime.Broker.Presence: %w", err)
	}
	return lo.UniqBy(ids, func(id domain.Identity) uuid.UUID { return id.UserID }), nil
}
