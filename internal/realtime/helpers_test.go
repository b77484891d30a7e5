package realtime_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/collabboard/internal/domain"
	"github.com/gosuda/collabboard/internal/realtime"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type membershipKey struct {
	board uuid.UUID
	user  uuid.UUID
}

// fakeOracle serves memberships from a map. err, when set, is returned for
// every lookup.
type fakeOracle struct {
	mu    sync.Mutex
	rows  map[membershipKey]*domain.Membership
	err   error
	calls int
}

func newFakeOracle() *fakeOracle {
	return &fakeOracle{rows: make(map[membershipKey]*domain.Membership)}
}

func (f *fakeOracle) add(boardID, userID uuid.UUID, status domain.MemberStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[membershipKey{boardID, userID}] = &domain.Membership{
		ID:      uuid.New(),
		BoardID: boardID,
		UserID:  userID,
		Role:    domain.MemberRoleMember,
		Status:  status,
	}
}

func (f *fakeOracle) Get(_ context.Context, boardID, userID uuid.UUID) (*domain.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	m, ok := f.rows[membershipKey{boardID, userID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return m, nil
}

type fakeBridge struct {
	mu           sync.Mutex
	appendFunc   func(ctx context.Context, boardID uuid.UUID, author domain.Identity, text string) (*domain.ChatMessage, error)
	snapshotFunc func(ctx context.Context, boardID uuid.UUID, blob string) error
	appendCalls  int
	snapshots    int
}

func (f *fakeBridge) AppendChatMessage(ctx context.Context, boardID uuid.UUID, author domain.Identity, text string) (*domain.ChatMessage, error) {
	f.mu.Lock()
	f.appendCalls++
	f.mu.Unlock()
	if f.appendFunc != nil {
		return f.appendFunc(ctx, boardID, author, text)
	}
	return &domain.ChatMessage{
		ID:        uuid.New(),
		BoardID:   boardID,
		UserID:    author.UserID,
		Message:   text,
		Timestamp: time.Now().UTC(),
	}, nil
}

func (f *fakeBridge) WriteWhiteboardSnapshot(ctx context.Context, boardID uuid.UUID, blob string) error {
	f.mu.Lock()
	f.snapshots++
	f.mu.Unlock()
	if f.snapshotFunc != nil {
		return f.snapshotFunc(ctx, boardID, blob)
	}
	return nil
}

type fakePresence struct {
	mu        sync.Mutex
	entries   map[uuid.UUID]map[uuid.UUID]domain.Identity
	listErr   error
	refreshes int
}

func newFakePresence() *fakePresence {
	return &fakePresence{entries: make(map[uuid.UUID]map[uuid.UUID]domain.Identity)}
}

func (f *fakePresence) Add(_ context.Context, boardID, connID uuid.UUID, id domain.Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.entries[boardID] == nil {
		f.entries[boardID] = make(map[uuid.UUID]domain.Identity)
	}
	f.entries[boardID][connID] = id
	return nil
}

func (f *fakePresence) Remove(_ context.Context, boardID, connID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries[boardID], connID)
	return nil
}

func (f *fakePresence) List(_ context.Context, boardID uuid.UUID) ([]domain.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.Identity, 0, len(f.entries[boardID]))
	for _, id := range f.entries[boardID] {
		out = append(out, id)
	}
	return out, nil
}

func (f *fakePresence) Refresh(_ context.Context, boardID uuid.UUID, occupants map[uuid.UUID]domain.Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	if f.entries[boardID] == nil {
		f.entries[boardID] = make(map[uuid.UUID]domain.Identity)
	}
	for connID, id := range occupants {
		f.entries[boardID][connID] = id
	}
	return nil
}

// expire drops every mirrored entry, as a lapsed TTL would.
func (f *fakePresence) expire() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = make(map[uuid.UUID]map[uuid.UUID]domain.Identity)
}

func (f *fakePresence) refreshCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshes
}

var errStore = errors.New("db: connection lost")

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func identity(name string) domain.Identity {
	return domain.Identity{UserID: uuid.New(), Name: name}
}

func newConn(name string) *realtime.Conn {
	return realtime.NewConn(identity(name), 0)
}

// frame builds an inbound frame.
func frame(t *testing.T, typ realtime.EventType, data any) []byte {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	b, err := json.Marshal(realtime.Envelope{Type: typ, Data: raw})
	require.NoError(t, err)
	return b
}

// next returns the next queued outbound frame. Delivery is synchronous, so a
// frame that is not already queued never arrives.
func next(t *testing.T, c *realtime.Conn) realtime.Envelope {
	t.Helper()
	select {
	case b := <-c.Outbound():
		var env realtime.Envelope
		require.NoError(t, json.Unmarshal(b, &env))
		return env
	default:
		t.Fatalf("no frame queued for %s", c.Identity().Name)
		return realtime.Envelope{}
	}
}

func requireNoFrame(t *testing.T, c *realtime.Conn) {
	t.Helper()
	select {
	case b := <-c.Outbound():
		t.Fatalf("unexpected frame for %s: %s", c.Identity().Name, b)
	default:
	}
}

func drain(c *realtime.Conn) int {
	n := 0
	for {
		select {
		case <-c.Outbound():
			n++
		default:
			return n
		}
	}
}

func decodeData[T any](t *testing.T, env realtime.Envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}
