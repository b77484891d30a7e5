package v1

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/gosuda/collabboard/internal/domain"
)

type SearchUsersInput struct {
	Query string `query:"q" maxLength:"255" doc:"Substring of username or email"`
	Limit int    `query:"limit" minimum:"1" maximum:"50" default:"20" doc:"Maximum results"`
}

type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

type SearchUsersOutput struct {
	Body []UserSummary
}

func RegisterUserRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "search-users",
		Method:      http.MethodGet,
		Path:        "/users/search",
		Summary:     "Search users by username or email",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *SearchUsersInput) (*SearchUsersOutput, error) {
		if _, err := caller(ctx); err != nil {
			return nil, err
		}

		q := strings.TrimSpace(input.Query)
		if q == "" {
			return &SearchUsersOutput{Body: []UserSummary{}}, nil
		}

		users, err := store.Users().Search(ctx, q, input.Limit)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to search users", err)
		}

		return &SearchUsersOutput{Body: lo.Map(users, func(u *domain.User, _ int) UserSummary {
			return UserSummary{ID: u.ID, Username: u.Username, Email: u.Email}
		})}, nil
	})
}
