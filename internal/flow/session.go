package flow

import (
	"sync"
	"time"
)

// Step tags the next input a purchase session is waiting for. Steps advance
// strictly in order; there are no cycles besides an explicit cancel.
type Step string

const (
	StepTopic      Step = "awaiting_topic"
	StepAuthor     Step = "awaiting_author"
	StepSlideCount Step = "awaiting_slide_count"
	StepTemplate   Step = "awaiting_template"
	StepConfirm    Step = "awaiting_confirmation"
)

// Session is the ephemeral per-user state of a purchase flow. It is held in
// process memory only and discarded on cancellation, completion, or failure.
type Session struct {
	UserID     int64
	Step       Step
	Topic      string
	Author     string
	SlideCount int
	TemplateID int

	// Cost is locked when the slide count is accepted and never recomputed;
	// the balance is re-checked once more at debit time.
	Cost int64

	UpdatedAt time.Time
}

// Sessions is the in-memory session table. Entries untouched for longer
// than the TTL are dropped on the next access.
type Sessions struct {
	ttl time.Duration
	now func() time.Time

	mu   sync.Mutex
	byID map[int64]*Session
}

func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{
		ttl:  ttl,
		now:  time.Now,
		byID: make(map[int64]*Session),
	}
}

// Get returns the live session for userID, or nil.
func (s *Sessions) Get(userID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()
	return s.byID[userID]
}

// Put stores sess, stamping its last activity.
func (s *Sessions) Put(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess.UpdatedAt = s.now()
	s.byID[sess.UserID] = sess
	s.pruneLocked()
}

func (s *Sessions) Delete(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.byID, userID)
}

func (s *Sessions) pruneLocked() {
	if s.ttl <= 0 {
		return
	}
	cutoff := s.now().Add(-s.ttl)
	for id, sess := range s.byID {
		if sess.UpdatedAt.Before(cutoff) {
			delete(s.byID, id)
		}
	}
}
