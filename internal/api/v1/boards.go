package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/gosuda/collabboard/internal/domain"
)

type CreateBoardInput struct {
	Body struct {
		Name    string      `json:"name" minLength:"1" maxLength:"100" doc:"Board name"`
		Members []uuid.UUID `json:"members,omitempty" maxItems:"100" doc:"User IDs to add as members"`
	}
}

type CreateBoardOutput struct {
	Body *domain.Board
}

type ListBoardsOutput struct {
	Body []*domain.Board
}

type BoardPathInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
}

// BoardSnapshot is everything a client needs to render a board before it
// joins the live room.
type BoardSnapshot struct {
	Board          *domain.Board         `json:"board"`
	WhiteboardData *string               `json:"whiteboard_data"`
	Tasks          []*domain.Task        `json:"tasks"`
	ChatHistory    []*domain.ChatMessage `json:"chat_history"`
}

type GetBoardOutput struct {
	Body *BoardSnapshot
}

type BoardMember struct {
	UserID   uuid.UUID           `json:"user_id"`
	Username string              `json:"username"`
	Role     domain.MemberRole   `json:"role"`
	Status   domain.MemberStatus `json:"status"`
}

type ListMembersOutput struct {
	Body []BoardMember
}

type PresenceOutput struct {
	Body struct {
		BoardID uuid.UUID         `json:"board_id"`
		Users   []domain.Identity `json:"users"`
	}
}

// RegisterBoardRoutes mounts board endpoints. chatHistory caps the number of
// chat messages returned in a snapshot.
func RegisterBoardRoutes(api huma.API, store DataStore, live Live, chatHistory int) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-board",
		Method:        http.MethodPost,
		Path:          "/boards",
		Summary:       "Create a board",
		Tags:          []string{"Boards"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateBoardInput) (*CreateBoardOutput, error) {
		id, err := caller(ctx)
		if err != nil {
			return nil, err
		}

		b, err := domain.NewBoard(id.UserID, input.Body.Name)
		if err != nil {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}

		if err := store.Boards().Create(ctx, b, input.Body.Members); err != nil {
			return nil, huma.Error500InternalServerError("failed to create board", err)
		}

		return &CreateBoardOutput{Body: b}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-boards",
		Method:      http.MethodGet,
		Path:        "/boards",
		Summary:     "List boards the caller belongs to",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, _ *struct{}) (*ListBoardsOutput, error) {
		id, err := caller(ctx)
		if err != nil {
			return nil, err
		}

		boards, err := store.Boards().ListForUser(ctx, id.UserID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list boards", err)
		}

		return &ListBoardsOutput{Body: boards}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-board",
		Method:      http.MethodGet,
		Path:        "/boards/{boardID}",
		Summary:     "Get a board snapshot with tasks and recent chat",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *BoardPathInput) (*GetBoardOutput, error) {
		id, err := caller(ctx)
		if err != nil {
			return nil, err
		}
		if _, err := live.Authorize(ctx, id, input.BoardID); err != nil {
			return nil, statusError(err, "board")
		}

		b, err := store.Boards().GetByID(ctx, input.BoardID)
		if err != nil {
			return nil, statusError(err, "board")
		}

		tasks, err := store.Tasks().ListByBoard(ctx, input.BoardID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list tasks", err)
		}

		history, err := store.Chats().ListByBoard(ctx, input.BoardID, chatHistory)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to load chat history", err)
		}

		return &GetBoardOutput{Body: &BoardSnapshot{
			Board:          b,
			WhiteboardData: b.WhiteboardData,
			Tasks:          tasks,
			ChatHistory:    history,
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-board-members",
		Method:      http.MethodGet,
		Path:        "/boards/{boardID}/members",
		Summary:     "List board members and pending invites",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *BoardPathInput) (*ListMembersOutput, error) {
		id, err := caller(ctx)
		if err != nil {
			return nil, err
		}
		if _, err := live.Authorize(ctx, id, input.BoardID); err != nil {
			return nil, statusError(err, "board")
		}

		members, err := store.Memberships().ListByBoard(ctx, input.BoardID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list members", err)
		}

		return &ListMembersOutput{Body: lo.Map(members, func(m *domain.Membership, _ int) BoardMember {
			return BoardMember{UserID: m.UserID, Username: m.Username, Role: m.Role, Status: m.Status}
		})}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-board-presence",
		Method:      http.MethodGet,
		Path:        "/boards/{boardID}/presence",
		Summary:     "List users currently online in the board's room",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *BoardPathInput) (*PresenceOutput, error) {
		id, err := caller(ctx)
		if err != nil {
			return nil, err
		}

		users, err := live.Presence(ctx, id, input.BoardID)
		if err != nil {
			return nil, statusError(err, "presence")
		}

		out := &PresenceOutput{}
		out.Body.BoardID = input.BoardID
		out.Body.Users = users
		return out, nil
	})
}
