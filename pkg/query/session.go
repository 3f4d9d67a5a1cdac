package query

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	// sessionHistoryCap bounds the rolling history per session.
	sessionHistoryCap = 20
	// enhancementTurns is how many recent turns feed query enhancement.
	enhancementTurns = 3
)

// SessionTurn is one answered question inside a conversation session.
type SessionTurn struct {
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	AnsweredAt time.Time `json:"answered_at"`
}

// SessionStore keeps per-session rolling conversation history so follow-up
// queries can be enhanced with recent context.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string][]SessionTurn
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string][]SessionTurn)}
}

// Append records one answered turn. Oldest turns are dropped beyond the
// history cap. A blank session id is a stateless query and is ignored.
func (s *SessionStore) Append(sessionID, question, answer string) {
	if sessionID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := append(s.sessions[sessionID], SessionTurn{
		Question:   question,
		Answer:     answer,
		AnsweredAt: time.Now(),
	})
	if len(turns) > sessionHistoryCap {
		turns = turns[len(turns)-sessionHistoryCap:]
	}
	s.sessions[sessionID] = turns
}

// History returns a copy of a session's turns.
func (s *SessionStore) History(sessionID string) []SessionTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SessionTurn(nil), s.sessions[sessionID]...)
}

// Clear drops one session's history.
func (s *SessionStore) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// EnhanceQuery prefixes a follow-up query with the recent questions of its
// session so retrieval sees the conversation topic. Queries without a
// session, or in a fresh session, pass through unchanged.
func (s *SessionStore) EnhanceQuery(sessionID, queryText string) string {
	if sessionID == "" {
		return queryText
	}
	s.mu.Lock()
	turns := s.sessions[sessionID]
	if len(turns) > enhancementTurns {
		turns = turns[len(turns)-enhancementTurns:]
	}
	recent := make([]string, 0, len(turns))
	for _, turn := range turns {
		recent = append(recent, turn.Question)
	}
	s.mu.Unlock()

	if len(recent) == 0 {
		return queryText
	}
	return fmt.Sprintf("结合此前问题（%s），回答：%s", strings.Join(recent, "；"), queryText)
}
