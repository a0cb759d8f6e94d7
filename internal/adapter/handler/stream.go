package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/monitor-agent/errors"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 50 * time.Second
)

// EventSubscriber streams broadcast event payloads
type EventSubscriber interface {
	Subscribe(ctx context.Context) (<-chan []byte, func() error, error)
}

// Stream forwards broadcast events to websocket clients
type Stream struct {
	subscriber EventSubscriber
	upgrader   websocket.Upgrader
	logger     *zap.Logger
}

// NewStreamHandler creates a websocket handler. Requests from origins outside
// allowedOrigins are rejected; an empty list allows all.
func NewStreamHandler(subscriber EventSubscriber, allowedOrigins []string, logger *zap.Logger) *Stream {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}

	return &Stream{
		subscriber: subscriber,
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(allowed) == 0 {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

// Serve handles GET /ws
// @Summary      Live transcript feed
// @Description  Websocket that receives {"type":"new_transcript"|"segment_failed","data":{...}} events
// @Tags         Transcripts
// @Success      101  "Switching protocols"
// @Router       /ws [get]
func (h *Stream) Serve(c echo.Context) error {
	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	events, unsubscribe, err := h.subscriber.Subscribe(ctx)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrBroadcastFailed(err))
	}
	defer unsubscribe()

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader already replied
		if h.logger != nil {
			h.logger.Warn("Websocket upgrade failed", zap.Error(err))
		}
		return nil
	}
	defer conn.Close()

	if h.logger != nil {
		h.logger.Info("Websocket client connected", zap.String("remote", c.RealIP()))
	}

	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	// the reader only watches for the client going away
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case msg, ok := <-events:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed closed"),
					time.Now().Add(wsWriteWait))
				return nil
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return nil
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}
