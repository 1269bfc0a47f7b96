package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"voice-intake-be/internal/constant"
	"voice-intake-be/internal/conversation"
	"voice-intake-be/internal/entity"
	"voice-intake-be/internal/pkg/logger"
	"voice-intake-be/internal/repository/contract"
	"voice-intake-be/internal/repository/memory"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const writeWait = 10 * time.Second

// frameWriter is the outbound half of the vendor stream. *websocket.Conn
// satisfies it; tests drive the event loop with a recording fake.
type frameWriter interface {
	SetWriteDeadline(t time.Time) error
	WriteJSON(v interface{}) error
}

// callState is everything one connection owns for its call. It lives on
// the read loop's stack, so no locking.
type callState struct {
	tenant  *entity.Tenant
	session *entity.CallSession
	claimed string
}

// Handler terminates the vendor's streaming session protocol. One
// websocket connection is one call; all events for it run on the
// connection's read loop, which is what enforces in-order processing
// per call id.
type Handler struct {
	engine      *conversation.Engine
	tenants     contract.TenantRepository
	tenantCache *memory.TenantCache
	registry    *CallRegistry
	logger      logger.ILogger
	active      sync.WaitGroup
}

func NewHandler(
	engine *conversation.Engine,
	tenants contract.TenantRepository,
	tenantCache *memory.TenantCache,
	registry *CallRegistry,
	log logger.ILogger,
) *Handler {
	return &Handler{
		engine:      engine,
		tenants:     tenants,
		tenantCache: tenantCache,
		registry:    registry,
		logger:      log,
	}
}

// Register mounts the stream endpoint. Non-websocket requests get 426.
func (h *Handler) Register(app *fiber.App) {
	app.Use("/voice/v1/stream", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/voice/v1/stream", websocket.New(h.serve))
}

// serve is the per-call read loop. It owns the session exclusively from
// claim to release.
func (h *Handler) serve(c *websocket.Conn) {
	h.active.Add(1)
	defer h.active.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := &callState{}

	defer func() {
		// Socket gone for any reason: the session still gets its
		// terminal state and summary.
		if st.session != nil && st.tenant != nil {
			if err := h.engine.EndSession(ctx, st.tenant, st.session, "socket closed"); err != nil {
				h.logger.Error("VoiceGateway", "Failed to finalize session on close", map[string]interface{}{
					"call_id": st.session.CallID,
					"error":   err.Error(),
				})
			}
		}
		if st.claimed != "" {
			h.registry.Release(ctx, st.claimed)
		}
	}()

	for {
		_, raw, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("VoiceGateway", "Read failed", map[string]interface{}{"error": err.Error()})
			}
			return
		}

		var msg InboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.logger.Warn("VoiceGateway", "Dropping malformed frame", map[string]interface{}{"error": err.Error()})
			continue
		}

		if h.dispatch(ctx, c, msg, st) {
			return
		}
	}
}

// dispatch handles one inbound frame. Returns true when the stream is
// finished and the loop should exit.
func (h *Handler) dispatch(ctx context.Context, c frameWriter, msg InboundMessage, st *callState) bool {
	switch msg.Type {
	case EventTypeSetup:
		if st.session != nil {
			// One connection, one call. A second setup on a live
			// connection must not detach the session we already own.
			h.logger.Warn("VoiceGateway", "Duplicate setup frame ignored", map[string]interface{}{
				"call_id":     st.session.CallID,
				"replayed_id": msg.SessionID,
			})
			return false
		}
		tenant, session := h.handleSetup(ctx, c, msg)
		if session == nil {
			return true
		}
		st.tenant, st.session, st.claimed = tenant, session, session.CallID

	case EventTypePrompt:
		if st.session == nil {
			h.logger.Warn("VoiceGateway", "Prompt before setup, dropping", nil)
			return false
		}
		if !msg.Last || strings.TrimSpace(msg.VoicePrompt) == "" {
			return false
		}
		reply, err := h.engine.HandleUtterance(ctx, st.tenant, st.session, msg.VoicePrompt)
		if err != nil {
			h.logger.Error("VoiceGateway", "Turn persisted with error", map[string]interface{}{
				"call_id": st.session.CallID,
				"error":   err.Error(),
			})
		}
		h.writeJSON(c, NewTextMessage(reply))

	case EventTypeInterrupt:
		h.logger.Info("VoiceGateway", "Caller interrupted", map[string]interface{}{
			"call_id":     callID(st.session),
			"spoken":      msg.UtteranceUntilInterrupt,
			"duration_ms": msg.DurationUntilInterruptMs,
		})

	case EventTypeDTMF:
		if st.session == nil {
			return false
		}
		reply, handoff := h.engine.HandleDTMF(ctx, st.session, msg.Digit)
		if !handoff {
			return false
		}
		h.writeJSON(c, NewTextMessage(reply))
		if err := h.engine.EndSession(ctx, st.tenant, st.session, "dtmf handoff"); err != nil {
			h.logger.Error("VoiceGateway", "Failed to finalize handoff", map[string]interface{}{
				"call_id": st.session.CallID,
				"error":   err.Error(),
			})
		}
		h.writeJSON(c, NewEndMessage("handoff"))
		st.session = nil
		return true

	case EventTypeError:
		h.logger.Warn("VoiceGateway", "Vendor reported error", map[string]interface{}{
			"call_id":     callID(st.session),
			"description": msg.Description,
		})

	case EventTypeEnd:
		if st.session != nil {
			if err := h.engine.EndSession(ctx, st.tenant, st.session, "vendor end"); err != nil {
				h.logger.Error("VoiceGateway", "Failed to finalize session", map[string]interface{}{
					"call_id": st.session.CallID,
					"error":   err.Error(),
				})
			}
			st.session = nil
		}
		return true

	default:
		h.logger.Info("VoiceGateway", "Ignoring unknown event type", map[string]interface{}{"type": msg.Type})
	}
	return false
}

// handleSetup resolves the tenant, claims the call id and attaches to
// the call's session, creating one when this is the first contact for
// the call id. Vendors replay setup after a reconnect; attaching keeps
// the in-progress record intact. On any failure the caller hears a
// scripted apology and the stream is ended.
func (h *Handler) handleSetup(ctx context.Context, c frameWriter, msg InboundMessage) (*entity.Tenant, *entity.CallSession) {
	tenantID := msg.CustomParameters[ParamTenantID]
	callerPhone := msg.CustomParameters[ParamCallerPhone]

	tenant, err := h.resolveTenant(ctx, tenantID)
	if err != nil || tenant == nil {
		h.logger.Error("VoiceGateway", "Cannot resolve tenant for call", map[string]interface{}{
			"call_id":   msg.SessionID,
			"tenant_id": tenantID,
		})
		h.writeJSON(c, NewTextMessage(constant.ScriptedSetupFailure))
		h.writeJSON(c, NewEndMessage("tenant not found"))
		return nil, nil
	}

	if !h.registry.Claim(ctx, msg.SessionID) {
		h.logger.Warn("VoiceGateway", "Duplicate handler for call refused", map[string]interface{}{
			"call_id": msg.SessionID,
		})
		h.writeJSON(c, NewEndMessage("duplicate session"))
		return nil, nil
	}

	session, greeting, resumed, err := h.engine.AttachOrStart(ctx, tenant, msg.SessionID, callerPhone)
	if err != nil {
		h.registry.Release(ctx, msg.SessionID)
		if errors.Is(err, conversation.ErrCallEnded) {
			h.logger.Warn("VoiceGateway", "Setup replayed for an ended call", map[string]interface{}{
				"call_id": msg.SessionID,
			})
			h.writeJSON(c, NewEndMessage("call already ended"))
			return nil, nil
		}
		h.logger.Error("VoiceGateway", "Failed to start session", map[string]interface{}{
			"call_id": msg.SessionID,
			"error":   err.Error(),
		})
		h.writeJSON(c, NewTextMessage(constant.ScriptedSetupFailure))
		h.writeJSON(c, NewEndMessage("setup failed"))
		return nil, nil
	}
	if resumed {
		h.logger.Info("VoiceGateway", "Reattached to in-progress call", map[string]interface{}{
			"call_id": session.CallID,
			"state":   string(session.State),
		})
	}

	h.writeJSON(c, NewTextMessage(greeting))
	return tenant, session
}

func (h *Handler) resolveTenant(ctx context.Context, tenantID string) (*entity.Tenant, error) {
	if tenantID == "" {
		return nil, nil
	}
	if t, ok := h.tenantCache.Get(tenantID); ok {
		return t, nil
	}
	t, err := h.tenants.FindById(ctx, tenantID)
	if err != nil || t == nil {
		return t, err
	}
	h.tenantCache.Save(t)
	return t, nil
}

func (h *Handler) writeJSON(c frameWriter, v interface{}) {
	c.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.WriteJSON(v); err != nil {
		h.logger.Warn("VoiceGateway", "Write failed", map[string]interface{}{"error": err.Error()})
	}
}

// Drain blocks until every in-flight call handler has finished or the
// context expires. Handlers persist their sessions on exit, so waiting
// here is what makes shutdown lossless.
func (h *Handler) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.active.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func callID(session *entity.CallSession) string {
	if session == nil {
		return ""
	}
	return session.CallID
}
