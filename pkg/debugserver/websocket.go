package debugserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/coder/websocket"

	"github.com/bft-labs/realmbridge/pkg/log"
)

// Envelope is one command sent over the websocket channel.
type Envelope struct {
	Cmd      string `json:"cmd"`
	PostData string `json:"postData"`
}

// session is one accepted websocket connection.
type session struct {
	conn *websocket.Conn
	done chan struct{}
}

func isWebSocketUpgrade(r *http.Request) bool {
	return r.Method == http.MethodGet && strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

func (s *Server) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	opts := &websocket.AcceptOptions{}
	if u, err := url.Parse(s.AllowedOrigin()); err == nil && u.Host != "" {
		opts.OriginPatterns = []string{u.Host}
	}

	conn, err := websocket.Accept(w, r, opts)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", log.Err(err))
		return
	}
	defer conn.CloseNow()

	sess := s.trackSession(conn)
	defer s.untrackSession(sess)

	ctx := r.Context()
	// Stop may have run between Accept and trackSession.
	if ctx.Err() != nil {
		return
	}
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure && !errors.Is(err, context.Canceled) {
				s.logger.Debug("websocket read ended", log.Err(err))
			}
			return
		}
		if typ != websocket.MessageText {
			continue
		}

		reply := s.handleEnvelope(ctx, data)
		if err := conn.Write(ctx, websocket.MessageText, []byte(reply)); err != nil {
			s.logger.Debug("websocket write failed", log.Err(err))
			return
		}
	}
}

func (s *Server) trackSession(conn *websocket.Conn) *session {
	sess := &session{conn: conn, done: make(chan struct{})}

	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	if s.sessions == nil {
		s.sessions = make(map[*session]struct{})
	}
	s.sessions[sess] = struct{}{}
	return sess
}

func (s *Server) untrackSession(sess *session) {
	s.sessionsMu.Lock()
	delete(s.sessions, sess)
	s.sessionsMu.Unlock()
	close(sess.done)
}

// closeSessions closes every open session and waits for its handler to
// return, so no command reaches the processor afterwards.
func (s *Server) closeSessions() {
	s.sessionsMu.Lock()
	active := make([]*session, 0, len(s.sessions))
	for sess := range s.sessions {
		active = append(active, sess)
	}
	s.sessionsMu.Unlock()

	for _, sess := range active {
		_ = sess.conn.CloseNow()
	}
	for _, sess := range active {
		<-sess.done
	}
}

// handleEnvelope mirrors the HTTP rules: no payload or a failed command
// produces an empty reply.
func (s *Server) handleEnvelope(ctx context.Context, data []byte) string {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		s.logger.Warn("malformed websocket command", log.Err(err))
		return ""
	}
	if env.PostData == "" {
		return ""
	}

	result, err := s.processor.ProcessDebugCommand(ctx, env.Cmd, env.PostData)
	if err != nil {
		s.logger.Error("debug command failed", log.String("cmd", env.Cmd), log.Err(err))
		return ""
	}
	return result
}
