package realtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gosuda/collabboard/internal/domain"
)

// PersistenceBridge performs the durable writes that must complete before a
// broadcast may go out. Returned rows are canonical: ids and timestamps come
// from the store, never from the caller.
type PersistenceBridge interface {
	AppendChatMessage(ctx context.Context, boardID uuid.UUID, author domain.Identity, text string) (*domain.ChatMessage, error)
	WriteWhiteboardSnapshot(ctx context.Context, boardID uuid.UUID, blob string) error
}

// StoreBridge adapts the repositories to PersistenceBridge.
type StoreBridge struct {
	chats  domain.ChatRepository
	boards domain.BoardRepository
}

func NewStoreBridge(chats domain.ChatRepository, boards domain.BoardRepository) *StoreBridge {
	return &StoreBridge{chats: chats, boards: boards}
}

func (s *StoreBridge) AppendChatMessage(ctx context.Context, boardID uuid.UUID, author domain.Identity, text string) (*domain.ChatMessage, error) {
	msg, err := s.chats.Append(ctx, boardID, author.UserID, text)
	if err != nil {
		return nil, fmt.Errorf("realtime.StoreBridge.AppendChatMessage: %w", persistenceErr(err))
	}
	return msg, nil
}

func (s *StoreBridge) WriteWhiteboardSnapshot(ctx context.Context, boardID uuid.UUID, blob string) error {
	if err := s.boards.UpdateWhiteboard(ctx, boardID, blob); err != nil {
		return fmt.Errorf("realtime.StoreBridge.WriteWhiteboardSnapshot: %w", persistenceErr(err))
	}
	return nil
}

// persistenceErr keeps ErrNotFound visible and tags everything else as a
// persistence failure.
func persistenceErr(err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrPersistence) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
}
