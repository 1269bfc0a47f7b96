package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"voice-intake-be/internal/constant"
	"voice-intake-be/internal/entity"
	"voice-intake-be/internal/pkg/logger"
	"voice-intake-be/internal/repository/contract"
	"voice-intake-be/internal/sms"

	"github.com/google/uuid"
)

// DiagnosticBaseFee is the flat diagnostic-visit fee in dollars before
// the urgency multiplier.
const DiagnosticBaseFee = 89.0

var urgencyMultiplier = map[entity.Urgency]float64{
	entity.UrgencyEmergency: 1.5,
	entity.UrgencyUrgent:    1.25,
	entity.UrgencyRoutine:   1.0,
}

// BookingService turns a completed slot set into customer, property,
// job and quote records plus a confirmation SMS. Steps run in order and
// the first failure aborts the rest; find-or-create on the earlier
// steps makes a retried confirmation turn safe.
type BookingService struct {
	records *RecordsService
	jobs    contract.JobRepository
	sms     sms.Sender
	logger  logger.ILogger
	now     func() time.Time
}

func NewBookingService(records *RecordsService, jobs contract.JobRepository, sender sms.Sender, log logger.ILogger) *BookingService {
	return &BookingService{
		records: records,
		jobs:    jobs,
		sms:     sender,
		logger:  log,
		now:     time.Now,
	}
}

func (s *BookingService) Book(ctx context.Context, tenant *entity.Tenant, session *entity.CallSession) (uuid.UUID, error) {
	if !session.Slots.BookingReady() {
		return uuid.Nil, fmt.Errorf("slots incomplete for call %s", session.CallID)
	}

	phone := session.ConfirmedPhone()
	urgency := entity.Urgency(*session.Slots.Urgency)

	customer, err := s.records.FindOrCreateCustomer(ctx, tenant.Id, phone, *session.Slots.Name)
	if err != nil {
		return uuid.Nil, err
	}

	property, err := s.records.FindOrCreateProperty(ctx, tenant.Id, customer.Id, *session.Slots.Address)
	if err != nil {
		return uuid.Nil, err
	}

	amount := DiagnosticBaseFee * urgencyMultiplier[urgency]
	windowStart, windowEnd := ResolveWindow(
		strVal(session.Slots.PreferredDay),
		strVal(session.Slots.PreferredTime),
		tenant.Timezone,
		s.now(),
	)

	job := &entity.Job{
		Id:          uuid.New(),
		TenantId:    tenant.Id,
		CustomerId:  customer.Id,
		PropertyId:  property.Id,
		JobType:     entity.JobTypeDiagnostic,
		Urgency:     urgency,
		Description: *session.Slots.Issue,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		Status:      entity.JobStatusScheduled,
		CreatedAt:   time.Now().UTC(),
	}
	quote := &entity.Quote{
		Id:       uuid.New(),
		TenantId: tenant.Id,
		JobId:    job.Id,
		Amount:   amount,
		Details:  fmt.Sprintf("%s visit, %s", entity.JobTypeDiagnostic, strings.ToLower(string(urgency))),
	}

	if err := s.jobs.CreateJobAndQuote(ctx, job, quote); err != nil {
		return uuid.Nil, fmt.Errorf("create job and quote: %w", err)
	}

	body := fmt.Sprintf(constant.SMSBookingConfirmationV1,
		tenant.Name, entity.JobTypeDiagnostic, FormatWindow(windowStart, windowEnd), amount)
	if err := s.sms.Send(ctx, tenant.SMSFrom, phone, body); err != nil {
		return uuid.Nil, fmt.Errorf("send confirmation sms: %w", err)
	}

	s.logger.Info("BookingService", "Job booked", map[string]interface{}{
		"call_id":   session.CallID,
		"tenant_id": tenant.Id,
		"job_id":    job.Id.String(),
		"amount":    amount,
	})
	return job.Id, nil
}

// ResolveWindow maps the caller's scheduling preference to a concrete
// appointment window in the tenant's timezone. Morning is 9-12,
// afternoon 1-5. Anything it cannot place falls back to the next
// business day morning.
func ResolveWindow(preferredDay, preferredTime, tz string, now time.Time) (time.Time, time.Time) {
	loc, err := time.LoadLocation(tz)
	if err != nil || tz == "" {
		loc = time.UTC
	}
	local := now.In(loc)

	var day time.Time
	switch strings.ToLower(strings.TrimSpace(preferredDay)) {
	case "today":
		day = local
	case "tomorrow":
		day = local.AddDate(0, 0, 1)
	default:
		day = nextBusinessDay(local)
		preferredTime = "morning"
	}

	var startHour, endHour int
	switch strings.ToLower(strings.TrimSpace(preferredTime)) {
	case "afternoon":
		startHour, endHour = 13, 17
	default:
		startHour, endHour = 9, 12
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), startHour, 0, 0, 0, loc)
	end := time.Date(day.Year(), day.Month(), day.Day(), endHour, 0, 0, 0, loc)
	return start, end
}

func nextBusinessDay(local time.Time) time.Time {
	day := local.AddDate(0, 0, 1)
	for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
		day = day.AddDate(0, 0, 1)
	}
	return day
}

// FormatWindow renders a window for the confirmation SMS, e.g.
// "Tue Sep 1, 9:00 AM-12:00 PM".
func FormatWindow(start, end time.Time) string {
	return fmt.Sprintf("%s, %s-%s",
		start.Format("Mon Jan 2"),
		start.Format("3:04 PM"),
		end.Format("3:04 PM"))
}
