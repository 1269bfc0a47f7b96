package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"voice-intake-be/internal/constant"
	"voice-intake-be/internal/dialogue"
	"voice-intake-be/internal/entity"
	"voice-intake-be/internal/pkg/logger"
	"voice-intake-be/internal/repository/contract"
	"voice-intake-be/internal/repository/memory"
	"voice-intake-be/pkg/normalize"

	"github.com/google/uuid"
)

// Booker runs the booking pipeline for a completed slot set. The
// returned id is the created job id.
type Booker interface {
	Book(ctx context.Context, tenant *entity.Tenant, session *entity.CallSession) (uuid.UUID, error)
}

// LeadRecorder captures a fallback lead for a call that ended without a
// booking. Implementations must be idempotent per call id.
type LeadRecorder interface {
	CreateLeadOnce(ctx context.Context, tenant *entity.Tenant, session *entity.CallSession, summary string) (bool, error)
}

// EventPublisher fans call lifecycle events onto the internal bus.
// Publishing is best-effort and must never block a turn.
type EventPublisher interface {
	PublishCallEvent(ctx context.Context, eventType string, payload map[string]interface{})
}

const (
	EventCallStarted    = "call.started"
	EventCallEnded      = "call.ended"
	EventBookingCreated = "booking.created"
	EventBookingFailed  = "booking.failed"
)

// ErrCallEnded is returned by AttachOrStart when the vendor replays
// setup for a call id that already reached a terminal state.
var ErrCallEnded = errors.New("call already ended")

// Engine owns per-call state transitions and the slot-merge policy. One
// gateway handler drives one engine call at a time per call id; the
// engine itself holds no per-call state, everything lives on the
// session record.
type Engine struct {
	policy         dialogue.Policy
	store          contract.CallSessionRepository
	cache          *memory.LiveCallCache
	booker         Booker
	leads          LeadRecorder
	events         EventPublisher
	logger         logger.ILogger
	bookingTimeout time.Duration
}

func NewEngine(
	policy dialogue.Policy,
	store contract.CallSessionRepository,
	cache *memory.LiveCallCache,
	booker Booker,
	leads LeadRecorder,
	events EventPublisher,
	log logger.ILogger,
) *Engine {
	return &Engine{
		policy:         policy,
		store:          store,
		cache:          cache,
		booker:         booker,
		leads:          leads,
		events:         events,
		logger:         log,
		bookingTimeout: 10 * time.Second,
	}
}

// StartSession creates the durable session record for a new call and
// returns the scripted greeting. The tenant id is set here and never
// mutated afterwards.
func (e *Engine) StartSession(ctx context.Context, tenant *entity.Tenant, callID, callerPhone string) (*entity.CallSession, string, error) {
	session := &entity.CallSession{
		CallID:      callID,
		TenantID:    tenant.Id,
		CallerPhone: normalize.NormalizePhone(callerPhone),
		State:       entity.StateCollectingName,
		StartedAt:   time.Now().UTC(),
	}

	greeting := fmt.Sprintf(constant.ScriptedGreetingV1, tenant.Name)
	session.AppendTurn(entity.TranscriptRoleAgent, greeting)

	if err := e.persist(ctx, session); err != nil {
		return nil, "", fmt.Errorf("persist new session: %w", err)
	}

	e.publish(ctx, EventCallStarted, map[string]interface{}{
		"call_id":   session.CallID,
		"tenant_id": session.TenantID,
		"caller":    session.CallerPhone,
	})

	return session, greeting, nil
}

// Resume fetches an existing session, preferring the live cache over
// the store. Returns (nil, nil) for an unknown call id.
func (e *Engine) Resume(ctx context.Context, callID string) (*entity.CallSession, error) {
	if s, ok := e.cache.Get(callID); ok {
		return s, nil
	}
	return e.store.Get(ctx, callID)
}

// AttachOrStart reattaches to a live session when one already exists
// for the call id and only starts a fresh one when none does. Vendors
// redial the stream after a network blip and replay setup; attaching
// keeps the transcript, slots and any booking made before the drop
// instead of overwriting the record. A replay for an ended call
// returns ErrCallEnded.
func (e *Engine) AttachOrStart(ctx context.Context, tenant *entity.Tenant, callID, callerPhone string) (*entity.CallSession, string, bool, error) {
	existing, err := e.Resume(ctx, callID)
	if err != nil {
		e.logger.Warn("ConversationEngine", "Session lookup failed on setup, starting fresh", map[string]interface{}{
			"call_id": callID,
			"error":   err.Error(),
		})
	}
	if existing != nil {
		if existing.State.Terminal() {
			return nil, "", false, ErrCallEnded
		}
		e.cache.Save(existing)
		return existing, constant.ScriptedReconnect, true, nil
	}

	session, greeting, err := e.StartSession(ctx, tenant, callID, callerPhone)
	return session, greeting, false, err
}

// HandleUtterance runs one dialogue turn: ask the policy, merge slots,
// validate and adopt the next state, fire the booking pipeline when
// signalled, and persist before the reply goes back over the wire. The
// returned string is always speakable; errors are advisory (the session
// survived but persistence may be behind).
func (e *Engine) HandleUtterance(ctx context.Context, tenant *entity.Tenant, session *entity.CallSession, utterance string) (string, error) {
	decision, err := e.policy.NextTurn(ctx, tenant, session, utterance)
	if err != nil {
		// Model unreachable or timed out: scripted fallback, no state
		// change, the caller just hears a re-ask.
		e.logger.Warn("ConversationEngine", "Policy call failed, using scripted fallback", map[string]interface{}{
			"call_id": session.CallID,
			"error":   err.Error(),
		})
		return e.finishTurn(ctx, session, utterance, constant.ScriptedPolicyFallback)
	}

	session.Slots.Merge(decision.SlotUpdates)
	e.adoptState(session, decision.NextState)

	reply := decision.Utterance
	if reply == "" {
		reply = constant.ScriptedPolicyFallback
	}

	if decision.Action == dialogue.ActionBookJob {
		reply = e.triggerBooking(ctx, tenant, session, reply)
	}

	return e.finishTurn(ctx, session, utterance, reply)
}

// adoptState accepts the policy's next state only when it is a valid
// member of the enumeration and does not move backwards. ended is
// reachable from anywhere.
func (e *Engine) adoptState(session *entity.CallSession, next entity.CallState) {
	if !next.Valid() {
		e.logger.Warn("ConversationEngine", "Policy returned unknown state, keeping current", map[string]interface{}{
			"call_id":  session.CallID,
			"returned": string(next),
			"current":  string(session.State),
		})
		return
	}
	if next == entity.StateEnded || next.Index() >= session.State.Index() {
		session.State = next
	}
}

// triggerBooking fires the pipeline at most once per session. A failed
// pipeline leaves the session in confirming_booking so the caller can
// simply confirm again.
func (e *Engine) triggerBooking(ctx context.Context, tenant *entity.Tenant, session *entity.CallSession, reply string) string {
	if session.BookingID != nil {
		return reply
	}

	if !session.Slots.BookingReady() {
		// The policy asked to book without a complete, confirmed slot
		// set. Hold the line at confirmation instead of trusting it.
		e.logger.Warn("ConversationEngine", "Booking requested with incomplete slots, holding", map[string]interface{}{
			"call_id": session.CallID,
		})
		if session.State == entity.StateBookingComplete {
			session.State = entity.StateConfirmingBooking
		}
		return reply
	}

	bctx, cancel := context.WithTimeout(ctx, e.bookingTimeout)
	defer cancel()

	jobID, err := e.booker.Book(bctx, tenant, session)
	if err != nil {
		e.logger.Error("ConversationEngine", "Booking pipeline failed", map[string]interface{}{
			"call_id": session.CallID,
			"error":   err.Error(),
		})
		session.State = entity.StateConfirmingBooking
		e.publish(ctx, EventBookingFailed, map[string]interface{}{
			"call_id":   session.CallID,
			"tenant_id": session.TenantID,
			"error":     err.Error(),
		})
		return constant.ScriptedBookingFailure
	}

	session.BookingID = &jobID
	session.State = entity.StateBookingComplete

	e.publish(ctx, EventBookingCreated, map[string]interface{}{
		"call_id":    session.CallID,
		"tenant_id":  session.TenantID,
		"booking_id": jobID.String(),
	})
	return reply
}

// finishTurn appends the turn pair to the transcript and persists the
// session before the reply is sent back over the wire, so a crash loses
// at most the in-flight turn.
func (e *Engine) finishTurn(ctx context.Context, session *entity.CallSession, utterance, reply string) (string, error) {
	session.AppendTurn(entity.TranscriptRoleCaller, utterance)
	session.AppendTurn(entity.TranscriptRoleAgent, reply)

	if err := e.persist(ctx, session); err != nil {
		e.logger.Error("ConversationEngine", "Failed to persist session", map[string]interface{}{
			"call_id": session.CallID,
			"error":   err.Error(),
		})
		return reply, err
	}
	return reply, nil
}

// HandleDTMF handles a keypad press. Zero is the scripted hand-off to a
// human; every other digit is logged only.
func (e *Engine) HandleDTMF(ctx context.Context, session *entity.CallSession, digit string) (string, bool) {
	if digit != "0" {
		e.logger.Info("ConversationEngine", "Ignoring DTMF digit", map[string]interface{}{
			"call_id": session.CallID,
			"digit":   digit,
		})
		return "", false
	}

	session.AppendTurn(entity.TranscriptRoleAgent, constant.ScriptedHandoff)
	if err := e.persist(ctx, session); err != nil {
		e.logger.Error("ConversationEngine", "Failed to persist handoff turn", map[string]interface{}{
			"call_id": session.CallID,
			"error":   err.Error(),
		})
	}
	return constant.ScriptedHandoff, true
}

// EndSession finalizes the call: summary, ended_at, terminal state, and
// a fallback lead when no booking happened but the caller left a name
// or an issue. Safe to call more than once; only the first call does
// work.
func (e *Engine) EndSession(ctx context.Context, tenant *entity.Tenant, session *entity.CallSession, reason string) error {
	if session.State.Terminal() {
		return nil
	}

	summary := BuildSummary(session)
	now := time.Now().UTC()
	session.Summary = summary
	session.EndedAt = &now
	session.State = entity.StateEnded

	leadCreated := false
	if session.BookingID == nil && hasLeadWorthyInfo(session) {
		created, err := e.leads.CreateLeadOnce(ctx, tenant, session, summary)
		if err != nil {
			e.logger.Error("ConversationEngine", "Failed to create fallback lead", map[string]interface{}{
				"call_id": session.CallID,
				"error":   err.Error(),
			})
		}
		leadCreated = created
	}

	if err := e.persist(ctx, session); err != nil {
		return fmt.Errorf("persist ended session: %w", err)
	}
	e.cache.Delete(session.CallID)

	e.publish(ctx, EventCallEnded, map[string]interface{}{
		"call_id":      session.CallID,
		"tenant_id":    session.TenantID,
		"reason":       reason,
		"booked":       session.BookingID != nil,
		"lead_created": leadCreated,
		"summary":      summary,
	})
	return nil
}

func hasLeadWorthyInfo(session *entity.CallSession) bool {
	return (session.Slots.Name != nil && *session.Slots.Name != "") ||
		(session.Slots.Issue != nil && *session.Slots.Issue != "")
}

func (e *Engine) persist(ctx context.Context, session *entity.CallSession) error {
	if err := e.store.Upsert(ctx, session); err != nil {
		return err
	}
	e.cache.Save(session)
	return nil
}

func (e *Engine) publish(ctx context.Context, eventType string, payload map[string]interface{}) {
	if e.events == nil {
		return
	}
	e.events.PublishCallEvent(ctx, eventType, payload)
}
