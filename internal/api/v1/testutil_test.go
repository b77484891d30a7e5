package v1_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/gosuda/collabboard/internal/domain"
	"github.com/gosuda/collabboard/internal/server/middleware"
)

// ---------------------------------------------------------------------------
// Context helpers: inject the caller identity for DoCtx
// ---------------------------------------------------------------------------

func userCtx(id domain.Identity) context.Context {
	return middleware.WithIdentity(context.Background(), id)
}

func newIdentity(name string) domain.Identity {
	return domain.Identity{UserID: uuid.New(), Name: name}
}

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	users       domain.UserRepository
	boards      domain.BoardRepository
	memberships domain.MembershipRepository
	tasks       domain.TaskRepository
	chats       domain.ChatRepository
}

func (m *mockDataStore) Users() domain.UserRepository             { return m.users }
func (m *mockDataStore) Boards() domain.BoardRepository           { return m.boards }
func (m *mockDataStore) Memberships() domain.MembershipRepository { return m.memberships }
func (m *mockDataStore) Tasks() domain.TaskRepository             { return m.tasks }
func (m *mockDataStore) Chats() domain.ChatRepository             { return m.chats }

// ---------------------------------------------------------------------------
// Mock UserRepository
// ---------------------------------------------------------------------------

type mockUserRepo struct {
	createFunc     func(ctx context.Context, u *domain.User) error
	getByIDFunc    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	getByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
	searchFunc     func(ctx context.Context, query string, limit int) ([]*domain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	return m.createFunc(ctx, u)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.getByEmailFunc(ctx, email)
}

func (m *mockUserRepo) Search(ctx context.Context, query string, limit int) ([]*domain.User, error) {
	return m.searchFunc(ctx, query, limit)
}

// ---------------------------------------------------------------------------
// Mock BoardRepository
// ---------------------------------------------------------------------------

type mockBoardRepo struct {
	createFunc           func(ctx context.Context, b *domain.Board, memberIDs []uuid.UUID) error
	getByIDFunc          func(ctx context.Context, id uuid.UUID) (*domain.Board, error)
	listForUserFunc      func(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error)
	updateWhiteboardFunc func(ctx context.Context, id uuid.UUID, data string) error
}

func (m *mockBoardRepo) Create(ctx context.Context, b *domain.Board, memberIDs []uuid.UUID) error {
	return m.createFunc(ctx, b, memberIDs)
}

func (m *mockBoardRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockBoardRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error) {
	return m.listForUserFunc(ctx, userID)
}

func (m *mockBoardRepo) UpdateWhiteboard(ctx context.Context, id uuid.UUID, data string) error {
	return m.updateWhiteboardFunc(ctx, id, data)
}

// ---------------------------------------------------------------------------
// Mock MembershipRepository
// ---------------------------------------------------------------------------

type mockMembershipRepo struct {
	getFunc          func(ctx context.Context, boardID, userID uuid.UUID) (*domain.Membership, error)
	listByBoardFunc  func(ctx context.Context, boardID uuid.UUID) ([]*domain.Membership, error)
	upsertInviteFunc func(ctx context.Context, m *domain.Membership) error
	redeemFunc       func(ctx context.Context, token string) (*domain.Membership, error)
}

func (m *mockMembershipRepo) Get(ctx context.Context, boardID, userID uuid.UUID) (*domain.Membership, error) {
	return m.getFunc(ctx, boardID, userID)
}

func (m *mockMembershipRepo) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.Membership, error) {
	return m.listByBoardFunc(ctx, boardID)
}

func (m *mockMembershipRepo) UpsertInvite(ctx context.Context, mem *domain.Membership) error {
	return m.upsertInviteFunc(ctx, mem)
}

func (m *mockMembershipRepo) Redeem(ctx context.Context, token string) (*domain.Membership, error) {
	return m.redeemFunc(ctx, token)
}

// ---------------------------------------------------------------------------
// Mock TaskRepository
// ---------------------------------------------------------------------------

type mockTaskRepo struct {
	createFunc      func(ctx context.Context, t *domain.Task) error
	getByIDFunc     func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	listByBoardFunc func(ctx context.Context, boardID uuid.UUID) ([]*domain.Task, error)
	updateFunc      func(ctx context.Context, t *domain.Task) error
	deleteFunc      func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	return m.createFunc(ctx, t)
}

func (m *mockTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockTaskRepo) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.Task, error) {
	return m.listByBoardFunc(ctx, boardID)
}

func (m *mockTaskRepo) Update(ctx context.Context, t *domain.Task) error {
	return m.updateFunc(ctx, t)
}

func (m *mockTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

// ---------------------------------------------------------------------------
// Mock ChatRepository
// ---------------------------------------------------------------------------

type mockChatRepo struct {
	appendFunc      func(ctx context.Context, boardID, userID uuid.UUID, text string) (*domain.ChatMessage, error)
	listByBoardFunc func(ctx context.Context, boardID uuid.UUID, limit int) ([]*domain.ChatMessage, error)
}

func (m *mockChatRepo) Append(ctx context.Context, boardID, userID uuid.UUID, text string) (*domain.ChatMessage, error) {
	return m.appendFunc(ctx, boardID, userID, text)
}

func (m *mockChatRepo) ListByBoard(ctx context.Context, boardID uuid.UUID, limit int) ([]*domain.ChatMessage, error) {
	return m.listByBoardFunc(ctx, boardID, limit)
}

// ---------------------------------------------------------------------------
// Mock AuthService
// ---------------------------------------------------------------------------

type mockAuthService struct {
	registerFunc     func(ctx context.Context, username, email, password string) (*domain.User, error)
	loginFunc        func(ctx context.Context, email, password string) (*domain.User, string, string, error)
	issueTokensFunc  func(user *domain.User) (string, string, error)
	refreshTokenFunc func(ctx context.Context, refreshToken string) (string, error)
}

func (m *mockAuthService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	return m.registerFunc(ctx, username, email, password)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*domain.User, string, string, error) {
	return m.loginFunc(ctx, email, password)
}

func (m *mockAuthService) IssueTokens(user *domain.User) (string, string, error) {
	return m.issueTokensFunc(user)
}

func (m *mockAuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	return m.refreshTokenFunc(ctx, refreshToken)
}

// ---------------------------------------------------------------------------
// Mock Live
// ---------------------------------------------------------------------------

// mockLive authorizes against a fixed member set and runs commits inline,
// recording what would have been broadcast.
type mockLive struct {
	members        map[uuid.UUID]bool
	presence       []domain.Identity
	saveFunc       func(ctx context.Context, boardID uuid.UUID, blob string) error
	committed      []*domain.Task
	deleted        []uuid.UUID
	authorizeCalls int
}

func newMockLive(members ...domain.Identity) *mockLive {
	l := &mockLive{members: make(map[uuid.UUID]bool)}
	for _, m := range members {
		l.members[m.UserID] = true
	}
	return l
}

func (m *mockLive) Authorize(_ context.Context, id domain.Identity, boardID uuid.UUID) (*domain.Membership, error) {
	m.authorizeCalls++
	if !m.members[id.UserID] {
		return nil, domain.ErrForbidden
	}
	return &domain.Membership{BoardID: boardID, UserID: id.UserID, Status: domain.MemberStatusMember}, nil
}

func (m *mockLive) CommitTask(ctx context.Context, id domain.Identity, boardID uuid.UUID, commit func(context.Context) (*domain.Task, error)) (*domain.Task, error) {
	if _, err := m.Authorize(ctx, id, boardID); err != nil {
		return nil, err
	}
	t, err := commit(ctx)
	if err != nil {
		return nil, err
	}
	m.committed = append(m.committed, t)
	return t, nil
}

func (m *mockLive) CommitTaskDelete(ctx context.Context, id domain.Identity, boardID, taskID uuid.UUID, commit func(context.Context) error) error {
	if _, err := m.Authorize(ctx, id, boardID); err != nil {
		return err
	}
	if err := commit(ctx); err != nil {
		return err
	}
	m.deleted = append(m.deleted, taskID)
	return nil
}

func (m *mockLive) SaveWhiteboard(ctx context.Context, id domain.Identity, boardID uuid.UUID, blob string) error {
	if _, err := m.Authorize(ctx, id, boardID); err != nil {
		return err
	}
	return m.saveFunc(ctx, boardID, blob)
}

func (m *mockLive) Presence(ctx context.Context, id domain.Identity, boardID uuid.UUID) ([]domain.Identity, error) {
	if _, err := m.Authorize(ctx, id, boardID); err != nil {
		return nil, err
	}
	return m.presence, nil
}
