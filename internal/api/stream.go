package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/sharpeye/internal/engine"
	"github.com/yourusername/sharpeye/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10
)

// Stream message types
const (
	MessagePredict    = "predict"
	MessageBoard      = "board"
	MessagePrediction = "prediction"
	MessageBoardData  = "board_result"
	MessageError      = "error"
)

// StreamRequest is one client frame on the prediction stream
type StreamRequest struct {
	ID      string                    `json:"id"`
	Type    string                    `json:"type"`
	Predict *models.PredictionRequest `json:"predict,omitempty"`
	Board   *models.BoardRequest      `json:"board,omitempty"`
}

// StreamResponse answers exactly one StreamRequest
type StreamResponse struct {
	ID    string         `json:"id"`
	Type  string         `json:"type"`
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// handleStream serves predictions over a websocket. Frames are handled in
// arrival order and each gets one response carrying the same id.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error
		s.logger.WithError(err).Debug("Websocket upgrade failed")
		return
	}

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	sess := &streamSession{server: s, conn: conn}
	sess.log = s.logger.WithFields(logrus.Fields{
		"component":  "stream",
		"request_id": w.Header().Get(requestIDHeader),
	})
	sess.log.Info("Stream opened")

	go sess.pingLoop(ctx)
	sess.readLoop(ctx)

	_ = conn.Close()
	sess.log.Info("Stream closed")
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(s.cfg.AllowedOrigins) == 0 {
		return true
	}
	for _, allowed := range s.cfg.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

type streamSession struct {
	server *Server
	conn   *websocket.Conn
	log    *logrus.Entry

	writeMu sync.Mutex
}

func (ss *streamSession) readLoop(ctx context.Context) {
	ss.conn.SetReadLimit(maxMessageSize)
	_ = ss.conn.SetReadDeadline(time.Now().Add(pongWait))
	ss.conn.SetPongHandler(func(string) error {
		return ss.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := ss.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				ss.log.WithError(err).Warn("Stream read failed")
			}
			return
		}

		var resp StreamResponse
		var req StreamRequest
		if err := json.Unmarshal(data, &req); err != nil {
			resp = StreamResponse{Type: MessageError, Error: errorBody(models.NewValidationError("message", decodeReason(err)), "")}
		} else {
			resp = ss.handle(ctx, req)
		}

		if err := ss.write(resp); err != nil {
			ss.log.WithError(err).Warn("Stream write failed")
			return
		}
	}
}

func (ss *streamSession) handle(ctx context.Context, req StreamRequest) StreamResponse {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	ctx = engine.WithRequestID(ctx, req.ID)

	var (
		data any
		kind string
		err  error
	)
	switch {
	case req.Type == MessagePredict && req.Predict != nil:
		kind = MessagePrediction
		data, err = ss.server.engine.Predict(ctx, *req.Predict)
	case req.Type == MessageBoard && req.Board != nil:
		kind = MessageBoardData
		data, err = ss.server.engine.Board(ctx, *req.Board)
	default:
		err = models.NewValidationError("type", "must be predict with a predict body or board with a board body")
	}

	if err != nil {
		return StreamResponse{ID: req.ID, Type: MessageError, Error: errorBody(err, req.ID)}
	}
	return StreamResponse{ID: req.ID, Type: kind, Data: data}
}

func (ss *streamSession) write(resp StreamResponse) error {
	ss.writeMu.Lock()
	defer ss.writeMu.Unlock()

	_ = ss.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return ss.conn.WriteJSON(resp)
}

func (ss *streamSession) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ss.writeMu.Lock()
			err := ss.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			ss.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
