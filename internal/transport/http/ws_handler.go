package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"assignment-service/internal/app"
	"assignment-service/internal/auth"
	"assignment-service/internal/domain"
	"github.com/gorilla/websocket"
)

// WSHandler runs a timed attempt over a websocket: it streams the countdown
// and records the student's last draft once the time limit is reached.
type WSHandler struct {
	service  *app.Service
	auth     *auth.Authenticator
	upgrader websocket.Upgrader
	tick     time.Duration
}

func NewWSHandler(service *app.Service, authenticator *auth.Authenticator) *WSHandler {
	return &WSHandler{
		service: service,
		auth:    authenticator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		tick: time.Second,
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type contentPayload struct {
	Content string `json:"content"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type attemptPayload struct {
	domain.Attempt
	Remaining int64 `json:"remaining"`
}

type tickPayload struct {
	Remaining int64     `json:"remaining"`
	EndsAt    time.Time `json:"endsAt"`
}

type savedPayload struct {
	Length int `json:"length"`
}

type submittedPayload struct {
	Submission domain.Submission `json:"submission"`
	Auto       bool              `json:"auto"`
}

func newAttemptPayload(attempt domain.Attempt, now time.Time) attemptPayload {
	return attemptPayload{Attempt: attempt, Remaining: remainingSeconds(attempt, now)}
}

func remainingSeconds(attempt domain.Attempt, now time.Time) int64 {
	return int64(attempt.Remaining(now) / time.Second)
}

func errorMessage(err error) outboundMessage[any] {
	apiErr := toAPIError(err)
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Code: apiErr.code, Message: apiErr.message}}
}

// attemptSession guards the connection's draft and makes sure exactly one
// of the manual and the automatic submit runs.
type attemptSession struct {
	mu       sync.Mutex
	draft    string
	finished bool
}

func (s *attemptSession) setDraft(content string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return false
	}
	s.draft = content
	return true
}

// finish runs submit with the current draft unless the attempt already
// ended. AlreadySubmitted also ends it.
func (s *attemptSession) finish(submit func(draft string) (domain.Submission, error)) (domain.Submission, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return domain.Submission{}, false, nil
	}
	sub, err := submit(s.draft)
	if err == nil || errors.Is(err, domain.ErrAlreadySubmitted) || errors.Is(err, domain.ErrPastDeadline) {
		s.finished = true
	}
	return sub, true, err
}

// ServeWS authenticates the student from the token query parameter, starts
// (or resumes) the attempt and keeps the countdown running until submit.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	assignmentID := r.URL.Query().Get("assignmentId")
	token := r.URL.Query().Get("token")
	if assignmentID == "" || token == "" {
		writeJsonErrorResponse(w, errInvalidRequest("missing assignmentId or token", nil))
		return
	}
	id, err := h.auth.Verify(token)
	if err != nil {
		writeJsonErrorResponse(w, errUnauthenticated("invalid token"))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	attempt, err := h.service.StartAttempt(ctx, id, assignmentID)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err))
		return
	}

	sess := &attemptSession{}
	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	tickerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "attempt", Payload: newAttemptPayload(attempt, h.service.Now())}

	go func() {
		defer close(tickerDone)
		h.runCountdown(ctx, id, attempt, sess, send, closeSignals, func() {
			// unblock the reader once the attempt is over
			_ = conn.SetReadDeadline(time.Now())
		})
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if h.handleInbound(ctx, id, assignmentID, inbound, sess, send) {
			break
		}
	}

	close(closeSignals)
	<-tickerDone
	close(send)
	<-writerDone
}

// handleInbound processes one client message and reports whether the
// attempt has ended.
func (h *WSHandler) handleInbound(ctx context.Context, id domain.Identity, assignmentID string, inbound inboundMessage, sess *attemptSession, send chan<- outboundMessage[any]) bool {
	var payload contentPayload
	if len(inbound.Payload) > 0 {
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			send <- errorMessage(errInvalidRequest("invalid payload", nil))
			return false
		}
	}

	switch inbound.Type {
	case "draft":
		if !sess.setDraft(payload.Content) {
			return true
		}
		send <- outboundMessage[any]{Type: "saved", Payload: savedPayload{Length: len(payload.Content)}}
		return false
	case "submit":
		if payload.Content != "" {
			sess.setDraft(payload.Content)
		}
		sub, ran, err := sess.finish(func(draft string) (domain.Submission, error) {
			return h.service.Submit(ctx, id, assignmentID, draft)
		})
		if !ran {
			return true
		}
		if err != nil {
			send <- errorMessage(err)
			return errors.Is(err, domain.ErrAlreadySubmitted) || errors.Is(err, domain.ErrPastDeadline)
		}
		send <- outboundMessage[any]{Type: "submitted", Payload: submittedPayload{Submission: sub}}
		return true
	default:
		send <- errorMessage(errInvalidRequest("unsupported message type", nil))
		return false
	}
}

// runCountdown emits a tick per interval, recomputing the remaining time
// from the attempt's fixed end, and auto-submits the draft on expiry.
func (h *WSHandler) runCountdown(ctx context.Context, id domain.Identity, attempt domain.Attempt, sess *attemptSession, send chan<- outboundMessage[any], closeSignals <-chan struct{}, done func()) {
	ticker := time.NewTicker(h.tick)
	defer ticker.Stop()

	emit := func(msg outboundMessage[any]) bool {
		select {
		case send <- msg:
			return true
		case <-closeSignals:
			return false
		}
	}

	for {
		select {
		case <-ticker.C:
		case <-closeSignals:
			return
		}

		now := h.service.Now()
		if !attempt.Expired(now) {
			if !emit(outboundMessage[any]{Type: "tick", Payload: tickPayload{Remaining: remainingSeconds(attempt, now), EndsAt: attempt.EndsAt}}) {
				return
			}
			continue
		}

		sub, ran, err := sess.finish(func(draft string) (domain.Submission, error) {
			return h.service.AutoSubmit(ctx, id, attempt.AssignmentID, draft)
		})
		if ran {
			if err != nil {
				log.Printf("auto-submit failed for assignment %s student %s: %v", attempt.AssignmentID, attempt.StudentID, err)
				emit(errorMessage(err))
			} else {
				emit(outboundMessage[any]{Type: "submitted", Payload: submittedPayload{Submission: sub, Auto: true}})
			}
		}
		done()
		return
	}
}
