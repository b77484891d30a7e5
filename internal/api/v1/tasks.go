package v1

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/collabboard/internal/domain"
)

type CreateTaskInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	Body    struct {
		Title       string     `json:"title" minLength:"1" maxLength:"500" doc:"Task title"`
		Description *string    `json:"description,omitempty" doc:"Task description"`
		AssigneeID  *uuid.UUID `json:"assignee_id,omitempty" doc:"Assigned user ID"`
	}
}

type CreateTaskOutput struct {
	Body *domain.Task
}

type UpdateTaskInput struct {
	ID   uuid.UUID `path:"id" doc:"Task ID"`
	Body struct {
		Title       *string             `json:"title,omitempty" maxLength:"500" doc:"Task title"`
		Description Optional[string]    `json:"description,omitempty" doc:"Task description; null clears it"`
		AssigneeID  Optional[uuid.UUID] `json:"assignee_id,omitempty" doc:"Assigned user ID; null unassigns"`
		Status      *string             `json:"status,omitempty" maxLength:"50" doc:"Kanban column"`
	}
}

type UpdateTaskOutput struct {
	Body *domain.Task
}

type DeleteTaskInput struct {
	ID uuid.UUID `path:"id" doc:"Task ID"`
}

// RegisterTaskRoutes mounts task endpoints. Every committed change is
// broadcast to the board's room through live.
func RegisterTaskRoutes(api huma.API, store DataStore, live Live) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-task",
		Method:        http.MethodPost,
		Path:          "/boards/{boardID}/tasks",
		Summary:       "Create a task on a board",
		Tags:          []string{"Tasks"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateTaskInput) (*CreateTaskOutput, error) {
		id, err := caller(ctx)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(input.Body.Title) == "" {
			return nil, huma.Error422UnprocessableEntity("title is required")
		}

		t, err := live.CommitTask(ctx, id, input.BoardID, func(ctx context.Context) (*domain.Task, error) {
			t := &domain.Task{
				ID:          uuid.New(),
				BoardID:     input.BoardID,
				Title:       input.Body.Title,
				Description: input.Body.Description,
				AssigneeID:  input.Body.AssigneeID,
				Status:      domain.TaskStatusToDo,
				CreatedAt:   time.Now(),
			}
			if err := store.Tasks().Create(ctx, t); err != nil {
				return nil, err
			}
			return t, nil
		})
		if err != nil {
			return nil, statusError(err, "task")
		}

		return &CreateTaskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-task",
		Method:      http.MethodPut,
		Path:        "/tasks/{id}",
		Summary:     "Update a task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *UpdateTaskInput) (*UpdateTaskOutput, error) {
		id, err := caller(ctx)
		if err != nil {
			return nil, err
		}
		if input.Body.Title != nil && strings.TrimSpace(*input.Body.Title) == "" {
			return nil, huma.Error422UnprocessableEntity("title must not be empty")
		}
		if input.Body.Status != nil && strings.TrimSpace(*input.Body.Status) == "" {
			return nil, huma.Error422UnprocessableEntity("status must not be empty")
		}

		existing, err := store.Tasks().GetByID(ctx, input.ID)
		if err != nil {
			return nil, statusError(err, "task")
		}

		t, err := live.CommitTask(ctx, id, existing.BoardID, func(ctx context.Context) (*domain.Task, error) {
			// Re-read inside the board's section so concurrent patches
			// apply on top of each other.
			t, err := store.Tasks().GetByID(ctx, input.ID)
			if err != nil {
				return nil, err
			}
			if input.Body.Title != nil {
				t.Title = *input.Body.Title
			}
			if input.Body.Description.Sent {
				t.Description = input.Body.Description.Ptr()
			}
			if input.Body.AssigneeID.Sent {
				t.AssigneeID = input.Body.AssigneeID.Ptr()
			}
			if input.Body.Status != nil {
				t.Status = domain.TaskStatus(*input.Body.Status)
			}
			if err := store.Tasks().Update(ctx, t); err != nil {
				return nil, err
			}
			return t, nil
		})
		if err != nil {
			return nil, statusError(err, "task")
		}

		return &UpdateTaskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-task",
		Method:        http.MethodDelete,
		Path:          "/tasks/{id}",
		Summary:       "Delete a task",
		Tags:          []string{"Tasks"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *DeleteTaskInput) (*struct{}, error) {
		id, err := caller(ctx)
		if err != nil {
			return nil, err
		}

		existing, err := store.Tasks().GetByID(ctx, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to get task", err)
		}

		err = live.CommitTaskDelete(ctx, id, existing.BoardID, existing.ID, func(ctx context.Context) error {
			return store.Tasks().Delete(ctx, existing.ID)
		})
		if err != nil {
			return nil, statusError(err, "task")
		}

		return nil, nil
	})
}
