package gateway

import (
	"context"
	"strings"
	"testing"
	"time"

	"voice-intake-be/internal/constant"
	"voice-intake-be/internal/conversation"
	"voice-intake-be/internal/dialogue"
	"voice-intake-be/internal/entity"
	"voice-intake-be/internal/pkg/logger"
	"voice-intake-be/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedConn struct {
	frames []interface{}
}

func (r *recordedConn) SetWriteDeadline(time.Time) error { return nil }

func (r *recordedConn) WriteJSON(v interface{}) error {
	r.frames = append(r.frames, v)
	return nil
}

type stubPolicy struct{}

func (stubPolicy) NextTurn(context.Context, *entity.Tenant, *entity.CallSession, string) (*dialogue.Decision, error) {
	return &dialogue.Decision{Utterance: "ok", NextState: entity.StateCollectingName}, nil
}

type memStore struct {
	sessions map[string]*entity.CallSession
}

func newMemStore() *memStore {
	return &memStore{sessions: map[string]*entity.CallSession{}}
}

func (m *memStore) Upsert(_ context.Context, session *entity.CallSession) error {
	m.sessions[session.CallID] = session
	return nil
}

func (m *memStore) Get(_ context.Context, callID string) (*entity.CallSession, error) {
	return m.sessions[callID], nil
}

func (m *memStore) ListRecent(_ context.Context, _ string, _, _ int) ([]*entity.CallSession, int64, error) {
	return nil, 0, nil
}

type stubTenants struct {
	tenant *entity.Tenant
}

func (s stubTenants) FindById(_ context.Context, id string) (*entity.Tenant, error) {
	if s.tenant != nil && s.tenant.Id == id {
		return s.tenant, nil
	}
	return nil, nil
}

type stubBooker struct {
	calls int
}

func (b *stubBooker) Book(context.Context, *entity.Tenant, *entity.CallSession) (uuid.UUID, error) {
	b.calls++
	return uuid.New(), nil
}

type stubLeads struct{}

func (stubLeads) CreateLeadOnce(context.Context, *entity.Tenant, *entity.CallSession, string) (bool, error) {
	return false, nil
}

func newTestHandler(store *memStore, booker *stubBooker) *Handler {
	tenant := &entity.Tenant{Id: "tenant-1", Name: "Apex Plumbing", Timezone: "America/New_York"}
	engine := conversation.NewEngine(
		stubPolicy{},
		store,
		memory.NewLiveCallCache(),
		booker,
		stubLeads{},
		nil,
		logger.NewNopLogger(),
	)
	return NewHandler(engine, stubTenants{tenant: tenant}, memory.NewTenantCache(), NewCallRegistry(nil), logger.NewNopLogger())
}

func setupFrame(callID string) InboundMessage {
	return InboundMessage{
		Type:      EventTypeSetup,
		SessionID: callID,
		CustomParameters: map[string]string{
			ParamTenantID:    "tenant-1",
			ParamCallerPhone: "2158050594",
		},
	}
}

func TestDispatchSetupReplayKeepsBookedSession(t *testing.T) {
	store := newMemStore()
	jobID := uuid.New()
	booked := &entity.CallSession{
		CallID:      "call-1",
		TenantID:    "tenant-1",
		CallerPhone: "+12158050594",
		State:       entity.StateBookingComplete,
		BookingID:   &jobID,
		StartedAt:   time.Now().UTC(),
	}
	booked.AppendTurn(entity.TranscriptRoleAgent, "greeting")
	booked.AppendTurn(entity.TranscriptRoleCaller, "yes")
	store.sessions["call-1"] = booked

	h := newTestHandler(store, &stubBooker{})
	conn := &recordedConn{}
	st := &callState{}

	// the vendor dropped the socket and redials with the same call id
	stop := h.dispatch(context.Background(), conn, setupFrame("call-1"), st)
	require.False(t, stop)
	require.NotNil(t, st.session)

	require.NotNil(t, st.session.BookingID)
	assert.Equal(t, jobID, *st.session.BookingID)
	assert.Equal(t, entity.StateBookingComplete, st.session.State)
	assert.Len(t, st.session.Transcript, 2)

	require.NotEmpty(t, conn.frames)
	text, ok := conn.frames[len(conn.frames)-1].(TextMessage)
	require.True(t, ok)
	assert.Equal(t, constant.ScriptedReconnect, text.Token)

	// the durable record was not reset either
	require.NotNil(t, store.sessions["call-1"].BookingID)
}

func TestDispatchSecondSetupOnSameConnectionIgnored(t *testing.T) {
	store := newMemStore()
	h := newTestHandler(store, &stubBooker{})
	conn := &recordedConn{}
	st := &callState{}

	stop := h.dispatch(context.Background(), conn, setupFrame("call-1"), st)
	require.False(t, stop)
	require.NotNil(t, st.session)
	framesAfterFirst := len(conn.frames)

	stop = h.dispatch(context.Background(), conn, setupFrame("call-2"), st)
	assert.False(t, stop)
	assert.Equal(t, "call-1", st.session.CallID)
	assert.Equal(t, "call-1", st.claimed)
	assert.Len(t, conn.frames, framesAfterFirst)
	assert.Nil(t, store.sessions["call-2"])
}

func TestDispatchSetupForEndedCallRefused(t *testing.T) {
	store := newMemStore()
	endedAt := time.Now().UTC()
	store.sessions["call-1"] = &entity.CallSession{
		CallID:   "call-1",
		TenantID: "tenant-1",
		State:    entity.StateEnded,
		EndedAt:  &endedAt,
	}

	h := newTestHandler(store, &stubBooker{})
	conn := &recordedConn{}
	st := &callState{}

	stop := h.dispatch(context.Background(), conn, setupFrame("call-1"), st)
	assert.True(t, stop)
	assert.Nil(t, st.session)

	require.NotEmpty(t, conn.frames)
	end, ok := conn.frames[len(conn.frames)-1].(EndMessage)
	require.True(t, ok)
	assert.True(t, strings.Contains(end.HandoffData, "call already ended"))

	// the claim was rolled back so a fresh call id can still be taken
	assert.Equal(t, 0, h.registry.ActiveCount())
}

func TestDispatchPromptBeforeSetupDropped(t *testing.T) {
	h := newTestHandler(newMemStore(), &stubBooker{})
	conn := &recordedConn{}
	st := &callState{}

	stop := h.dispatch(context.Background(), conn, InboundMessage{
		Type:        EventTypePrompt,
		VoicePrompt: "hello?",
		Last:        true,
	}, st)
	assert.False(t, stop)
	assert.Empty(t, conn.frames)
}
