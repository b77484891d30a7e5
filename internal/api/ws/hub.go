package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coder/websocket"
	"golang.org/x/time/rate"

	"github.com/gosuda/collabboard/internal/realtime"
	"github.com/gosuda/collabboard/internal/server/middleware"
)

// Options tunes per-connection limits.
type Options struct {
	QueueSize      int
	EventRate      float64
	EventBurst     int
	MaxFrameSize   int64
	WriteTimeout   time.Duration
	OriginPatterns []string
}

// Hub bridges websocket connections to the realtime router. Each connection
// gets one reader (this handler's goroutine) and one writer goroutine that
// drains the connection's outbound queue in order.
type Hub struct {
	router *realtime.Router
	opts   Options
}

// NewHub creates a new WebSocket hub.
func NewHub(router *realtime.Router, opts Options) *Hub {
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	return &Hub{router: router, opts: opts}
}

// Serve upgrades an authenticated request to a live connection. The identity
// is taken once from the request context and is fixed for the connection's
// lifetime.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, `{"title":"Unauthorized","status":401,"detail":"missing or invalid credentials"}`, http.StatusUnauthorized)
		return
	}

	// The server's read and write timeouts are meant for plain requests and
	// would otherwise cut long-lived connections.
	rc := http.NewResponseController(w)
	_ = rc.SetReadDeadline(time.Time{})
	_ = rc.SetWriteDeadline(time.Time{})

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.opts.OriginPatterns})
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer ws.CloseNow()

	if h.opts.MaxFrameSize > 0 {
		ws.SetReadLimit(h.opts.MaxFrameSize)
	}

	conn := realtime.NewConn(identity, h.opts.QueueSize)
	h.router.Connect(conn)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		defer cancel()
		h.writeLoop(ctx, ws, conn)
	}()

	h.readLoop(ctx, ws, conn)

	// Leave every room before the socket goes away; the request context may
	// already be canceled here.
	h.router.Disconnect(context.WithoutCancel(ctx), conn)
	cancel()
	<-writerDone

	_ = ws.Close(websocket.StatusNormalClosure, "connection closed")
}

func (h *Hub) readLoop(ctx context.Context, ws *websocket.Conn, conn *realtime.Conn) {
	limit := rate.Limit(h.opts.EventRate)
	if h.opts.EventRate <= 0 {
		limit = rate.Inf
	}
	limiter := rate.NewLimiter(limit, h.opts.EventBurst)

	for {
		typ, data, err := ws.Read(ctx)
		if err != nil {
			if status := websocket.CloseStatus(err); status == -1 && !errors.Is(err, context.Canceled) {
				log.Debug().Err(err).Str("conn_id", conn.ID().String()).Msg("websocket read")
			}
			return
		}

		if typ != websocket.MessageText {
			sendError(conn, realtime.CodeBadRequest, "text frames only", "")
			continue
		}
		if !limiter.Allow() {
			sendError(conn, realtime.CodeRateLimited, "slow down", "")
			continue
		}

		// Rejections are reported to the client by the router.
		_ = h.router.Handle(ctx, conn, data)
	}
}

func (h *Hub) writeLoop(ctx context.Context, ws *websocket.Conn, conn *realtime.Conn) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-conn.Done():
			return
		case frame := <-conn.Outbound():
			writeCtx, cancel := context.WithTimeout(ctx, h.opts.WriteTimeout)
			err := ws.Write(writeCtx, websocket.MessageText, frame)
			cancel()
			if err != nil {
				log.Debug().Err(err).Str("conn_id", conn.ID().String()).Msg("websocket write")
				return
			}
		}
	}
}

func sendError(conn *realtime.Conn, code, msg string, ev realtime.EventType) {
	frame, err := realtime.ErrorEvent(code, msg, ev).Encode()
	if err != nil {
		log.Error().Err(err).Msg("websocket: encode error event")
		return
	}
	conn.Send(frame)
}
