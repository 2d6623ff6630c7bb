package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/lms-backend/internal/response"
	ws "github.com/stemsi/lms-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams graded results of a quiz to instructors as they arrive.
type WSHandler struct {
	quizzes  QuizManager
	feed     ResultFeed
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(quizzes QuizManager, feed ResultFeed, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		quizzes:  quizzes,
		feed:     feed,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// QuizResultStream godoc
// WS /ws/v1/instructor/quizzes/:id/results?token=...
// Sends a statistics snapshot, then one "result" event per graded submission.
func (h *WSHandler) QuizResultStream(c *gin.Context) {
	quizID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Subscribe before reading the snapshot so a result graded in between is
	// streamed rather than lost.
	events, closeFeed, err := h.feed.Subscribe(ctx, quizID)
	if err != nil {
		h.log.Error().Err(err).Str("quiz_id", quizID.String()).Msg("Result feed subscribe failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	defer closeFeed()

	// Resolving stats before the upgrade also rejects unknown quizzes.
	stats, err := h.quizzes.GetQuizStats(ctx, quizID)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("quiz_id", quizID.String()).Logger()
	wsLog.Info().Msg("Instructor attached to result feed")

	if err := ws.WriteTyped(conn, ws.SnapshotResponse{Event: ws.EventSnapshot, Stats: stats}); err != nil {
		return
	}

	// The reader goroutine owns reads; every write happens on this goroutine.
	pings := make(chan struct{}, 1)
	go func() {
		defer cancel()
		ws.KeepAlive(conn)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				}
				return
			}
			if msg.Action == ws.ActionPing {
				select {
				case pings <- struct{}{}:
				default:
				}
			}
		}
	}()

	ticker := time.NewTicker(ws.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			wsLog.Info().Msg("Instructor detached from result feed")
			return
		case raw, ok := <-events:
			if !ok {
				return
			}
			if err := ws.WriteTyped(conn, ws.ResultResponse{Event: ws.EventResult, Result: raw}); err != nil {
				return
			}
		case <-pings:
			if err := ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong}); err != nil {
				return
			}
		case <-ticker.C:
			if err := ws.WritePing(conn); err != nil {
				return
			}
		}
	}
}
