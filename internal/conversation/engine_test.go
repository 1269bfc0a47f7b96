package conversation

import (
	"context"
	"errors"
	"testing"

	"voice-intake-be/internal/constant"
	"voice-intake-be/internal/dialogue"
	"voice-intake-be/internal/entity"
	"voice-intake-be/internal/pkg/logger"
	"voice-intake-be/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePolicy struct {
	decisions []*dialogue.Decision
	err       error
	calls     int
}

func (f *fakePolicy) NextTurn(_ context.Context, _ *entity.Tenant, _ *entity.CallSession, _ string) (*dialogue.Decision, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	d := f.decisions[0]
	if len(f.decisions) > 1 {
		f.decisions = f.decisions[1:]
	}
	return d, nil
}

type fakeStore struct {
	sessions map[string]*entity.CallSession
	upserts  int
	failNext bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: map[string]*entity.CallSession{}}
}

func (f *fakeStore) Upsert(_ context.Context, session *entity.CallSession) error {
	if f.failNext {
		f.failNext = false
		return errors.New("db down")
	}
	f.upserts++
	f.sessions[session.CallID] = session
	return nil
}

func (f *fakeStore) Get(_ context.Context, callID string) (*entity.CallSession, error) {
	return f.sessions[callID], nil
}

func (f *fakeStore) ListRecent(_ context.Context, _ string, _, _ int) ([]*entity.CallSession, int64, error) {
	return nil, 0, nil
}

type fakeBooker struct {
	calls int
	err   error
	jobID uuid.UUID
}

func (f *fakeBooker) Book(_ context.Context, _ *entity.Tenant, _ *entity.CallSession) (uuid.UUID, error) {
	f.calls++
	if f.err != nil {
		return uuid.Nil, f.err
	}
	return f.jobID, nil
}

type fakeLeads struct {
	calls   int
	created map[string]bool
}

func newFakeLeads() *fakeLeads {
	return &fakeLeads{created: map[string]bool{}}
}

func (f *fakeLeads) CreateLeadOnce(_ context.Context, _ *entity.Tenant, session *entity.CallSession, _ string) (bool, error) {
	f.calls++
	if f.created[session.CallID] {
		return false, nil
	}
	f.created[session.CallID] = true
	return true, nil
}

type fakeEvents struct {
	published []string
}

func (f *fakeEvents) PublishCallEvent(_ context.Context, eventType string, _ map[string]interface{}) {
	f.published = append(f.published, eventType)
}

func testTenant() *entity.Tenant {
	return &entity.Tenant{Id: "tenant-1", Name: "Apex Plumbing", Timezone: "America/New_York"}
}

func newTestEngine(policy dialogue.Policy, store *fakeStore, booker *fakeBooker, leads *fakeLeads, events EventPublisher) *Engine {
	return NewEngine(policy, store, memory.NewLiveCallCache(), booker, leads, events, logger.NewNopLogger())
}

func readySlots() entity.Slots {
	name := "Maria Lopez"
	phone := "+12158050594"
	address := "12 Oak St, Media PA"
	issue := "water heater leaking"
	urgency := "EMERGENCY"
	yes := true
	return entity.Slots{
		Name:             &name,
		Phone:            &phone,
		PhoneConfirmed:   &yes,
		Address:          &address,
		AddressConfirmed: &yes,
		Issue:            &issue,
		Urgency:          &urgency,
	}
}

func TestStartSessionGreetsAndPersists(t *testing.T) {
	store := newFakeStore()
	events := &fakeEvents{}
	eng := newTestEngine(&fakePolicy{}, store, &fakeBooker{}, newFakeLeads(), events)

	session, greeting, err := eng.StartSession(context.Background(), testTenant(), "call-1", "2158050594")
	require.NoError(t, err)

	assert.Contains(t, greeting, "Apex Plumbing")
	assert.Equal(t, entity.StateCollectingName, session.State)
	assert.Equal(t, "+12158050594", session.CallerPhone)
	require.Len(t, session.Transcript, 1)
	assert.Equal(t, entity.TranscriptRoleAgent, session.Transcript[0].Role)
	assert.NotNil(t, store.sessions["call-1"])
	assert.Equal(t, []string{EventCallStarted}, events.published)
}

func TestHandleUtterancePersistsBeforeReply(t *testing.T) {
	store := newFakeStore()
	policy := &fakePolicy{decisions: []*dialogue.Decision{{
		Utterance: "Got it. What's the best number?",
		NextState: entity.StateConfirmingPhone,
	}}}
	eng := newTestEngine(policy, store, &fakeBooker{}, newFakeLeads(), nil)

	session, _, err := eng.StartSession(context.Background(), testTenant(), "call-1", "2158050594")
	require.NoError(t, err)
	before := store.upserts

	reply, err := eng.HandleUtterance(context.Background(), testTenant(), session, "It's Maria")
	require.NoError(t, err)
	assert.Equal(t, "Got it. What's the best number?", reply)
	assert.Equal(t, before+1, store.upserts)
	assert.Equal(t, entity.StateConfirmingPhone, session.State)

	// caller turn then agent turn appended, in order
	n := len(session.Transcript)
	require.GreaterOrEqual(t, n, 2)
	assert.Equal(t, entity.TranscriptRoleCaller, session.Transcript[n-2].Role)
	assert.Equal(t, "It's Maria", session.Transcript[n-2].Text)
	assert.Equal(t, entity.TranscriptRoleAgent, session.Transcript[n-1].Role)
}

func TestHandleUtterancePolicyErrorFallsBack(t *testing.T) {
	store := newFakeStore()
	policy := &fakePolicy{err: errors.New("timeout")}
	eng := newTestEngine(policy, store, &fakeBooker{}, newFakeLeads(), nil)

	session, _, err := eng.StartSession(context.Background(), testTenant(), "call-1", "2158050594")
	require.NoError(t, err)
	session.State = entity.StateCollectingIssue

	reply, err := eng.HandleUtterance(context.Background(), testTenant(), session, "my AC is broken")
	require.NoError(t, err)
	assert.Equal(t, constant.ScriptedPolicyFallback, reply)
	assert.Equal(t, entity.StateCollectingIssue, session.State)
	assert.Nil(t, session.Slots.Issue)
}

func TestHandleUtteranceStateNeverRegresses(t *testing.T) {
	store := newFakeStore()
	policy := &fakePolicy{decisions: []*dialogue.Decision{{
		Utterance: "What's your name?",
		NextState: entity.StateCollectingName,
	}}}
	eng := newTestEngine(policy, store, &fakeBooker{}, newFakeLeads(), nil)

	session, _, err := eng.StartSession(context.Background(), testTenant(), "call-1", "2158050594")
	require.NoError(t, err)
	session.State = entity.StateCollectingUrgency

	_, err = eng.HandleUtterance(context.Background(), testTenant(), session, "hm")
	require.NoError(t, err)
	assert.Equal(t, entity.StateCollectingUrgency, session.State)
}

func TestHandleUtteranceUnknownStateKept(t *testing.T) {
	store := newFakeStore()
	policy := &fakePolicy{decisions: []*dialogue.Decision{{
		Utterance: "ok",
		NextState: entity.CallState("collecting_shoe_size"),
	}}}
	eng := newTestEngine(policy, store, &fakeBooker{}, newFakeLeads(), nil)

	session, _, err := eng.StartSession(context.Background(), testTenant(), "call-1", "2158050594")
	require.NoError(t, err)

	_, err = eng.HandleUtterance(context.Background(), testTenant(), session, "hi")
	require.NoError(t, err)
	assert.Equal(t, entity.StateCollectingName, session.State)
}

func TestBookingFiresExactlyOnce(t *testing.T) {
	store := newFakeStore()
	jobID := uuid.New()
	booker := &fakeBooker{jobID: jobID}
	policy := &fakePolicy{decisions: []*dialogue.Decision{{
		Utterance: "You're all set!",
		NextState: entity.StateBookingComplete,
		Action:    dialogue.ActionBookJob,
	}}}
	eng := newTestEngine(policy, store, booker, newFakeLeads(), nil)

	session, _, err := eng.StartSession(context.Background(), testTenant(), "call-1", "2158050594")
	require.NoError(t, err)
	session.State = entity.StateConfirmingBooking
	session.Slots = readySlots()

	_, err = eng.HandleUtterance(context.Background(), testTenant(), session, "yes book it")
	require.NoError(t, err)
	require.NotNil(t, session.BookingID)
	assert.Equal(t, jobID, *session.BookingID)
	assert.Equal(t, entity.StateBookingComplete, session.State)
	assert.Equal(t, 1, booker.calls)

	// the policy repeating the action must not book again
	_, err = eng.HandleUtterance(context.Background(), testTenant(), session, "yes please")
	require.NoError(t, err)
	assert.Equal(t, 1, booker.calls)
	assert.Equal(t, jobID, *session.BookingID)
}

func TestBookingFailureStaysConfirming(t *testing.T) {
	store := newFakeStore()
	booker := &fakeBooker{err: errors.New("db down")}
	policy := &fakePolicy{decisions: []*dialogue.Decision{{
		Utterance: "You're all set!",
		NextState: entity.StateBookingComplete,
		Action:    dialogue.ActionBookJob,
	}}}
	eng := newTestEngine(policy, store, booker, newFakeLeads(), nil)

	session, _, err := eng.StartSession(context.Background(), testTenant(), "call-1", "2158050594")
	require.NoError(t, err)
	session.State = entity.StateConfirmingBooking
	session.Slots = readySlots()

	reply, err := eng.HandleUtterance(context.Background(), testTenant(), session, "yes")
	require.NoError(t, err)
	assert.Equal(t, constant.ScriptedBookingFailure, reply)
	assert.Equal(t, entity.StateConfirmingBooking, session.State)
	assert.Nil(t, session.BookingID)
}

func TestBookingSkippedWhenSlotsIncomplete(t *testing.T) {
	store := newFakeStore()
	booker := &fakeBooker{jobID: uuid.New()}
	policy := &fakePolicy{decisions: []*dialogue.Decision{{
		Utterance: "Booked!",
		NextState: entity.StateBookingComplete,
		Action:    dialogue.ActionBookJob,
	}}}
	eng := newTestEngine(policy, store, booker, newFakeLeads(), nil)

	session, _, err := eng.StartSession(context.Background(), testTenant(), "call-1", "2158050594")
	require.NoError(t, err)
	session.State = entity.StateConfirmingBooking

	_, err = eng.HandleUtterance(context.Background(), testTenant(), session, "book it")
	require.NoError(t, err)
	assert.Equal(t, 0, booker.calls)
	assert.Nil(t, session.BookingID)
	assert.Equal(t, entity.StateConfirmingBooking, session.State)
}

func TestHandleDTMFZeroHandsOff(t *testing.T) {
	store := newFakeStore()
	eng := newTestEngine(&fakePolicy{}, store, &fakeBooker{}, newFakeLeads(), nil)

	session, _, err := eng.StartSession(context.Background(), testTenant(), "call-1", "2158050594")
	require.NoError(t, err)

	reply, handoff := eng.HandleDTMF(context.Background(), session, "0")
	assert.True(t, handoff)
	assert.Equal(t, constant.ScriptedHandoff, reply)

	reply, handoff = eng.HandleDTMF(context.Background(), session, "5")
	assert.False(t, handoff)
	assert.Empty(t, reply)
}

func TestEndSessionCreatesLeadOnce(t *testing.T) {
	store := newFakeStore()
	leads := newFakeLeads()
	events := &fakeEvents{}
	eng := newTestEngine(&fakePolicy{}, store, &fakeBooker{}, leads, events)

	session, _, err := eng.StartSession(context.Background(), testTenant(), "call-1", "2158050594")
	require.NoError(t, err)
	name := "Maria Lopez"
	session.Slots.Name = &name

	require.NoError(t, eng.EndSession(context.Background(), testTenant(), session, "caller hung up"))
	assert.Equal(t, 1, leads.calls)
	assert.Equal(t, entity.StateEnded, session.State)
	require.NotNil(t, session.EndedAt)
	assert.NotEmpty(t, session.Summary)
	assert.Contains(t, events.published, EventCallEnded)

	// second end is a no-op
	require.NoError(t, eng.EndSession(context.Background(), testTenant(), session, "socket closed"))
	assert.Equal(t, 1, leads.calls)
}

func TestEndSessionNoLeadWhenBooked(t *testing.T) {
	store := newFakeStore()
	leads := newFakeLeads()
	eng := newTestEngine(&fakePolicy{}, store, &fakeBooker{}, leads, nil)

	session, _, err := eng.StartSession(context.Background(), testTenant(), "call-1", "2158050594")
	require.NoError(t, err)
	session.Slots = readySlots()
	id := uuid.New()
	session.BookingID = &id

	require.NoError(t, eng.EndSession(context.Background(), testTenant(), session, "completed"))
	assert.Equal(t, 0, leads.calls)
}

func TestEndSessionNoLeadWithoutInfo(t *testing.T) {
	store := newFakeStore()
	leads := newFakeLeads()
	eng := newTestEngine(&fakePolicy{}, store, &fakeBooker{}, leads, nil)

	session, _, err := eng.StartSession(context.Background(), testTenant(), "call-1", "2158050594")
	require.NoError(t, err)

	require.NoError(t, eng.EndSession(context.Background(), testTenant(), session, "silent hangup"))
	assert.Equal(t, 0, leads.calls)
}

func TestEngineRunsWithoutEventPublisher(t *testing.T) {
	store := newFakeStore()
	jobID := uuid.New()
	booker := &fakeBooker{jobID: jobID}
	policy := &fakePolicy{decisions: []*dialogue.Decision{{
		Utterance: "You're all set!",
		NextState: entity.StateBookingComplete,
		Action:    dialogue.ActionBookJob,
	}}}
	eng := newTestEngine(policy, store, booker, newFakeLeads(), nil)

	session, greeting, err := eng.StartSession(context.Background(), testTenant(), "call-1", "2158050594")
	require.NoError(t, err)
	assert.NotEmpty(t, greeting)

	session.State = entity.StateConfirmingBooking
	session.Slots = readySlots()
	_, err = eng.HandleUtterance(context.Background(), testTenant(), session, "yes book it")
	require.NoError(t, err)
	require.NotNil(t, session.BookingID)

	require.NoError(t, eng.EndSession(context.Background(), testTenant(), session, "completed"))
}

func TestAttachOrStartKeepsBookedSession(t *testing.T) {
	store := newFakeStore()
	jobID := uuid.New()
	booker := &fakeBooker{jobID: jobID}
	policy := &fakePolicy{decisions: []*dialogue.Decision{{
		Utterance: "You're all set!",
		NextState: entity.StateBookingComplete,
		Action:    dialogue.ActionBookJob,
	}}}
	eng := newTestEngine(policy, store, booker, newFakeLeads(), nil)

	session, _, err := eng.StartSession(context.Background(), testTenant(), "call-1", "2158050594")
	require.NoError(t, err)
	session.State = entity.StateConfirmingBooking
	session.Slots = readySlots()
	_, err = eng.HandleUtterance(context.Background(), testTenant(), session, "yes book it")
	require.NoError(t, err)
	turns := len(session.Transcript)

	// the vendor redials and replays setup for the same call id
	resumed, greeting, wasLive, err := eng.AttachOrStart(context.Background(), testTenant(), "call-1", "2158050594")
	require.NoError(t, err)
	assert.True(t, wasLive)
	assert.Equal(t, constant.ScriptedReconnect, greeting)

	require.NotNil(t, resumed.BookingID)
	assert.Equal(t, jobID, *resumed.BookingID)
	assert.Equal(t, entity.StateBookingComplete, resumed.State)
	assert.Len(t, resumed.Transcript, turns)
	assert.Equal(t, 1, booker.calls)

	// the durable record survived untouched too
	stored := store.sessions["call-1"]
	require.NotNil(t, stored.BookingID)
	assert.Equal(t, jobID, *stored.BookingID)
}

func TestAttachOrStartFreshCall(t *testing.T) {
	store := newFakeStore()
	eng := newTestEngine(&fakePolicy{}, store, &fakeBooker{}, newFakeLeads(), nil)

	session, greeting, wasLive, err := eng.AttachOrStart(context.Background(), testTenant(), "call-9", "2158050594")
	require.NoError(t, err)
	assert.False(t, wasLive)
	assert.Contains(t, greeting, "Apex Plumbing")
	assert.Equal(t, entity.StateCollectingName, session.State)
}

func TestAttachOrStartRefusesEndedCall(t *testing.T) {
	store := newFakeStore()
	eng := newTestEngine(&fakePolicy{}, store, &fakeBooker{}, newFakeLeads(), nil)

	session, _, err := eng.StartSession(context.Background(), testTenant(), "call-1", "2158050594")
	require.NoError(t, err)
	require.NoError(t, eng.EndSession(context.Background(), testTenant(), session, "caller hung up"))

	_, _, _, err = eng.AttachOrStart(context.Background(), testTenant(), "call-1", "2158050594")
	require.ErrorIs(t, err, ErrCallEnded)
}

func TestBookingFailurePublishesEvent(t *testing.T) {
	store := newFakeStore()
	events := &fakeEvents{}
	booker := &fakeBooker{err: errors.New("db down")}
	policy := &fakePolicy{decisions: []*dialogue.Decision{{
		Utterance: "You're all set!",
		NextState: entity.StateBookingComplete,
		Action:    dialogue.ActionBookJob,
	}}}
	eng := newTestEngine(policy, store, booker, newFakeLeads(), events)

	session, _, err := eng.StartSession(context.Background(), testTenant(), "call-1", "2158050594")
	require.NoError(t, err)
	session.State = entity.StateConfirmingBooking
	session.Slots = readySlots()

	_, err = eng.HandleUtterance(context.Background(), testTenant(), session, "yes")
	require.NoError(t, err)
	assert.Contains(t, events.published, EventBookingFailed)
	assert.NotContains(t, events.published, EventBookingCreated)
}

func TestBuildSummaryIncludesOutcome(t *testing.T) {
	session := &entity.CallSession{CallID: "call-1", CallerPhone: "+12158050594"}
	session.Slots = readySlots()

	s := BuildSummary(session)
	assert.Contains(t, s, "Maria Lopez")
	assert.Contains(t, s, "water heater leaking")
	assert.Contains(t, s, "no booking")

	id := uuid.New()
	session.BookingID = &id
	s = BuildSummary(session)
	assert.Contains(t, s, id.String())
}
