package server

import (
	"net/url"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	v1 "github.com/gosuda/collabboard/internal/api/v1"
	"github.com/gosuda/collabboard/internal/api/ws"
	"github.com/gosuda/collabboard/internal/config"
	"github.com/gosuda/collabboard/internal/realtime"
)

func registerPublicRoutes(api huma.API, store v1.DataStore, authSvc v1.AuthService) {
	v1.RegisterAuthRoutes(api, authSvc)
	v1.RegisterInviteRedeemRoutes(api, store)
}

func registerAPIRoutes(api huma.API, store v1.DataStore, live *realtime.Router, notifier v1.InviteNotifier, cfg *config.Config) {
	v1.RegisterUserRoutes(api, store)
	v1.RegisterBoardRoutes(api, store, live, cfg.Realtime.ChatHistory)
	v1.RegisterInviteRoutes(api, store, live, notifier, v1.InviteOptions{
		TTL:           cfg.Invite.TTL,
		PublicBaseURL: cfg.Invite.PublicBaseURL,
	})
	v1.RegisterTaskRoutes(api, store, live)
	v1.RegisterWhiteboardRoutes(api, live)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/ws", hub.Serve)
}

// originPatterns turns CORS origins into the host patterns websocket.Accept
// checks the Origin header against.
func originPatterns(origins []string) []string {
	return lo.FilterMap(origins, func(o string, _ int) (string, bool) {
		if o == "*" {
			return "*", true
		}
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			return "", false
		}
		return u.Host, true
	})
}
