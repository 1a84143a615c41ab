package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/wonny/asx-screener/internal/api/session"
	"github.com/wonny/asx-screener/internal/screener"
	"github.com/wonny/asx-screener/pkg/logger"
	"github.com/wonny/asx-screener/pkg/redis"
)

const (
	// Ping/Pong settings
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second

	maxMessageSize = 64 * 1024
)

// SessionHandler serves interactive screening sessions over HTTP and
// websocket
// ⭐ SSOT: 세션 API 핸들러는 이 구조체에서만
type SessionHandler struct {
	source   SnapshotSource
	store    *session.Store
	limiter  *redis.RateLimiter
	presets  []screener.Preset
	pageSize int
	upgrader websocket.Upgrader
	logger   *logger.Logger

	// hijacked sockets are invisible to http.Server.Shutdown
	connMu  sync.Mutex
	conns   map[*websocket.Conn]string
	closing bool
}

// NewSessionHandler creates a new session handler. limiter may be nil.
func NewSessionHandler(
	source SnapshotSource,
	store *session.Store,
	limiter *redis.RateLimiter,
	presets []screener.Preset,
	pageSize int,
	log *logger.Logger,
) *SessionHandler {
	return &SessionHandler{
		source:   source,
		store:    store,
		limiter:  limiter,
		presets:  presets,
		pageSize: pageSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		logger: log,
		conns:  make(map[*websocket.Conn]string),
	}
}

// CreateRequest is the optional body of POST /api/sessions
type CreateRequest struct {
	PageSize int    `json:"page_size"`
	Preset   string `json:"preset"`
}

// SessionResponse carries a session id with its current view
type SessionResponse struct {
	ID   string        `json:"id"`
	View screener.View `json:"view"`
}

// Create starts a session over the latest snapshot
// POST /api/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	snap, err := h.source.Latest(r.Context())
	if err != nil {
		status, msg := snapshotError(err)
		h.logger.WithError(err).Warn("Session create without snapshot")
		respondError(w, status, msg)
		return
	}

	pageSize := req.PageSize
	if pageSize == 0 {
		pageSize = h.pageSize
	}

	sess, view, err := h.store.Create(snap, screener.Options{PageSize: pageSize, Presets: h.presets})
	if err != nil {
		h.logger.WithError(err).Error("Failed to create session")
		respondError(w, http.StatusInternalServerError, "Invalid snapshot")
		return
	}

	if req.Preset != "" {
		view, err = sess.Do(func(c *screener.Controller) (screener.View, error) {
			return c.Apply(screener.Action{Type: screener.ActionApplyPreset, Preset: req.Preset})
		})
		if err != nil {
			h.store.Delete(sess.ID)
			respondError(w, actionStatus(err), err.Error())
			return
		}
	}

	h.logger.WithFields(map[string]interface{}{
		"session": sess.ID,
		"records": view.Total,
	}).Info("Session created")

	respondJSON(w, http.StatusCreated, SessionResponse{ID: sess.ID, View: view})
}

// Action applies one action to a session
// POST /api/sessions/{id}/actions
func (h *SessionHandler) Action(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	if d := h.allow(r, sess.ID); !d.Allowed {
		if d.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(d.RetryAfter.Seconds()))))
		}
		respondError(w, http.StatusTooManyRequests, "Too many actions")
		return
	}

	var action screener.Action
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid action: "+err.Error())
		return
	}

	view, err := sess.Do(func(c *screener.Controller) (screener.View, error) {
		return c.Apply(action)
	})
	if err != nil {
		respondError(w, actionStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, SessionResponse{ID: sess.ID, View: view})
}

// Delete ends a session
// DELETE /api/sessions/{id}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !h.store.Delete(id) {
		respondError(w, http.StatusNotFound, session.ErrNotFound.Error())
		return
	}

	h.logger.WithField("session", id).Info("Session deleted")
	w.WriteHeader(http.StatusNoContent)
}

// wsMessage is the server → client websocket frame
type wsMessage struct {
	View  *screener.View `json:"view,omitempty"`
	Error string         `json:"error,omitempty"`
}

// WebSocket streams a session: each action in yields one view (or error) out.
// The current view is sent on connect.
// GET /api/sessions/{id}/ws
func (h *SessionHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	h.connMu.Lock()
	closing := h.closing
	h.connMu.Unlock()
	if closing {
		respondError(w, http.StatusServiceUnavailable, "Server shutting down")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	if !h.track(conn, sess.ID) {
		_ = conn.WriteControl(websocket.CloseMessage, shutdownFrame(), time.Now().Add(writeWait))
		conn.Close()
		return
	}
	defer h.untrack(conn)

	log := h.logger.WithField("session", sess.ID)
	log.Debug("WebSocket connected")

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go h.pingLoop(conn, done)

	view, _ := sess.Do(func(c *screener.Controller) (screener.View, error) { return c.View(), nil })
	if err := h.write(conn, wsMessage{View: &view}); err != nil {
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Debug("WebSocket read ended")
			}
			return
		}

		var action screener.Action
		if err := json.Unmarshal(data, &action); err != nil {
			if h.write(conn, wsMessage{Error: "Invalid action: " + err.Error()}) != nil {
				return
			}
			continue
		}

		// keep the session alive while the socket is in use
		if _, err := h.store.Get(sess.ID); err != nil {
			_ = h.write(conn, wsMessage{Error: err.Error()})
			return
		}

		var msg wsMessage
		if !h.allow(r, sess.ID).Allowed {
			msg.Error = "Too many actions"
		} else if view, err := sess.Do(func(c *screener.Controller) (screener.View, error) {
			return c.Apply(action)
		}); err != nil {
			msg.Error = err.Error()
		} else {
			msg.View = &view
		}

		if err := h.write(conn, msg); err != nil {
			log.WithError(err).Debug("WebSocket write failed")
			return
		}
	}
}

func (h *SessionHandler) write(conn *websocket.Conn, msg wsMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

// track registers a live socket; false once shutdown has begun
func (h *SessionHandler) track(conn *websocket.Conn, id string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.closing {
		return false
	}
	h.conns[conn] = id
	return true
}

func (h *SessionHandler) untrack(conn *websocket.Conn) {
	h.connMu.Lock()
	delete(h.conns, conn)
	h.connMu.Unlock()
	conn.Close()
}

func shutdownFrame() []byte {
	return websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
}

// CloseConnections sends a going-away close frame to every live session
// socket and refuses new ones. Registered as a server shutdown hook.
func (h *SessionHandler) CloseConnections() {
	h.connMu.Lock()
	h.closing = true
	conns := make(map[*websocket.Conn]string, len(h.conns))
	for c, id := range h.conns {
		conns[c] = id
	}
	h.connMu.Unlock()

	for conn, id := range conns {
		if err := conn.WriteControl(websocket.CloseMessage, shutdownFrame(), time.Now().Add(writeWait)); err != nil {
			h.logger.WithError(err).WithField("session", id).Debug("Close frame not delivered")
		}
		conn.Close()
	}
	if len(conns) > 0 {
		h.logger.WithField("connections", len(conns)).Info("Session websockets closed")
	}
}

// OpenConnections returns the number of live session sockets
func (h *SessionHandler) OpenConnections() int {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return len(h.conns)
}

// pingLoop keeps the connection alive until done is closed
func (h *SessionHandler) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// session resolves {id}, answering 404 for unknown or expired sessions
func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := h.store.Get(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	return sess, true
}

// allow applies the per-session rate limit. Limiter errors fail open.
func (h *SessionHandler) allow(r *http.Request, id string) redis.Decision {
	if h.limiter == nil {
		return redis.Decision{Allowed: true}
	}

	d, err := h.limiter.Allow(r.Context(), redis.SessionRateLimit.For(id))
	if err != nil {
		h.logger.WithError(err).Warn("Rate limiter unavailable")
		return redis.Decision{Allowed: true}
	}
	return d
}

// CleanupExpired drops idle sessions; used by the scheduler
func (h *SessionHandler) CleanupExpired() int {
	return h.store.Cleanup()
}
