// Package stub is a local fake of the hosted chat backend, used by
// the demo CLI and the end-to-end tests. It speaks the same four
// JSON-over-POST endpoints and answers every user message with a
// typing signal followed by a scripted agent reply.
package stub

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/msuatafdeneme-art/webchat-client/internal/chat"
)

type session struct {
	clientName string
	queue      []chat.Record
}

// Server holds the in-memory session table.
type Server struct {
	cwid          string
	securityToken string
	agentName     string

	mu       sync.Mutex
	sessions map[string]*session
}

func New(cwid, securityToken string) *Server {
	return &Server{
		cwid:          cwid,
		securityToken: securityToken,
		agentName:     "Mehmet Demir",
		sessions:      make(map[string]*session),
	}
}

// Routes builds the HTTP surface.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Post("/new", s.handleNew)
	r.Post("/get_message", s.handleGetMessage)
	r.Post("/put_message", s.handlePutMessage)
	r.Post("/end", s.handleEnd)

	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	return r
}

func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		CWID          string `json:"cwid"`
		SecurityToken string `json:"security_token"`
		ClientName    string `json:"client_name"`
		ClientEmail   string `json:"client_email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if payload.CWID != s.cwid || payload.SecurityToken != s.securityToken {
		http.Error(w, "invalid widget credentials", http.StatusForbidden)
		return
	}

	token := uuid.NewString()

	s.mu.Lock()
	sess := &session{clientName: payload.ClientName}
	sess.queue = append(sess.queue, s.typingRecord(), s.textRecord("Merhaba "+payload.ClientName+", size nasıl yardımcı olabilirim?"))
	s.sessions[token] = sess
	s.mu.Unlock()

	log.Info().Str("component", "stub").Str("client", payload.ClientName).Msg("session opened")
	writeJSON(w, map[string]any{"token": token})
}

func (s *Server) handleGetMessage(w http.ResponseWriter, r *http.Request) {
	token, ok := s.decodeToken(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	sess, exists := s.sessions[token]
	var out []chat.Record
	if exists {
		out = sess.queue
		sess.queue = nil
	}
	s.mu.Unlock()

	if !exists {
		http.Error(w, "unknown token", http.StatusForbidden)
		return
	}
	if out == nil {
		out = []chat.Record{}
	}
	writeJSON(w, out)
}

func (s *Server) handlePutMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Token       string `json:"token"`
		MessageBody string `json:"message_body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if payload.MessageBody == "" {
		http.Error(w, "missing message_body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	sess, exists := s.sessions[payload.Token]
	if exists {
		sess.queue = append(sess.queue, s.typingRecord(), s.textRecord("Aldım: "+payload.MessageBody))
	}
	s.mu.Unlock()

	if !exists {
		http.Error(w, "unknown token", http.StatusForbidden)
		return
	}
	writeJSON(w, map[string]any{"status": "ok"})
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	token, ok := s.decodeToken(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	_, exists := s.sessions[token]
	delete(s.sessions, token)
	s.mu.Unlock()

	if !exists {
		http.Error(w, "unknown token", http.StatusForbidden)
		return
	}
	log.Info().Str("component", "stub").Msg("session closed")
	writeJSON(w, map[string]any{"status": "ended"})
}

func (s *Server) decodeToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return "", false
	}
	if payload.Token == "" {
		http.Error(w, "missing token", http.StatusBadRequest)
		return "", false
	}
	return payload.Token, true
}

func (s *Server) typingRecord() chat.Record {
	return chat.Record{Sender: "agent", Type: "typing", Name: s.agentName}
}

func (s *Server) textRecord(text string) chat.Record {
	return chat.Record{
		Sender: "agent",
		Type:   "text",
		Text:   &text,
		Name:   s.agentName,
		MsgID:  uuid.NewString(),
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Str("component", "stub").Msg("write response failed")
	}
}
