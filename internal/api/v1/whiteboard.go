package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
)

type SaveWhiteboardInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	Body    struct {
		WhiteboardState string `json:"whiteboard_state" doc:"Serialized canvas state, stored as-is"`
	}
}

// RegisterWhiteboardRoutes mounts the whiteboard snapshot save. Saves are
// last-write-wins and are not broadcast; peers see live diffs instead.
func RegisterWhiteboardRoutes(api huma.API, live Live) {
	huma.Register(api, huma.Operation{
		OperationID:   "save-whiteboard",
		Method:        http.MethodPut,
		Path:          "/boards/{boardID}/whiteboard",
		Summary:       "Replace the board's whiteboard snapshot",
		Tags:          []string{"Boards"},
		DefaultStatus: http.StatusNoContent,
		MaxBodyBytes:  8 << 20,
	}, func(ctx context.Context, input *SaveWhiteboardInput) (*struct{}, error) {
		id, err := caller(ctx)
		if err != nil {
			return nil, err
		}

		if err := live.SaveWhiteboard(ctx, id, input.BoardID, input.Body.WhiteboardState); err != nil {
			return nil, statusError(err, "board")
		}
		return nil, nil
	})
}
