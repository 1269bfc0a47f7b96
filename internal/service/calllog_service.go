package service

import (
	"context"
	"fmt"

	"voice-intake-be/internal/dto"
	"voice-intake-be/internal/entity"
	"voice-intake-be/internal/repository/contract"
)

type ICallLogService interface {
	ListCalls(ctx context.Context, tenantID string, limit, offset int) (*dto.PagedResponse, error)
	GetCall(ctx context.Context, tenantID, callID string) (*dto.CallLogResponse, error)
	ListLeads(ctx context.Context, tenantID string, limit, offset int) (*dto.PagedResponse, error)
}

// callLogService is the office-facing read side of the call store. It
// never mutates sessions; calls are business records and stay forever.
type callLogService struct {
	sessions contract.CallSessionRepository
	leads    contract.LeadRepository
}

func NewCallLogService(sessions contract.CallSessionRepository, leads contract.LeadRepository) ICallLogService {
	return &callLogService{sessions: sessions, leads: leads}
}

const defaultPageSize = 20

func (s *callLogService) ListCalls(ctx context.Context, tenantID string, limit, offset int) (*dto.PagedResponse, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	sessions, total, err := s.sessions.ListRecent(ctx, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list calls: %w", err)
	}

	items := make([]dto.CallLogResponse, 0, len(sessions))
	for _, session := range sessions {
		items = append(items, toCallLogResponse(session, false))
	}
	return &dto.PagedResponse{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *callLogService) GetCall(ctx context.Context, tenantID, callID string) (*dto.CallLogResponse, error) {
	session, err := s.sessions.Get(ctx, callID)
	if err != nil {
		return nil, fmt.Errorf("get call: %w", err)
	}
	if session == nil || session.TenantID != tenantID {
		return nil, nil
	}
	resp := toCallLogResponse(session, true)
	return &resp, nil
}

func (s *callLogService) ListLeads(ctx context.Context, tenantID string, limit, offset int) (*dto.PagedResponse, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	leads, total, err := s.leads.ListRecent(ctx, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}

	items := make([]dto.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		items = append(items, dto.LeadResponse{
			Id:        lead.Id.String(),
			CallId:    lead.CallId,
			Name:      lead.Name,
			Phone:     lead.Phone,
			Issue:     lead.Issue,
			Summary:   lead.Summary,
			Source:    lead.Source,
			CreatedAt: lead.CreatedAt,
		})
	}
	return &dto.PagedResponse{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

func toCallLogResponse(session *entity.CallSession, withTranscript bool) dto.CallLogResponse {
	resp := dto.CallLogResponse{
		CallId:      session.CallID,
		CallerPhone: session.CallerPhone,
		State:       string(session.State),
		Summary:     session.Summary,
		StartedAt:   session.StartedAt,
		EndedAt:     session.EndedAt,
	}
	if session.BookingID != nil {
		id := session.BookingID.String()
		resp.BookingId = &id
	}
	if withTranscript {
		resp.Transcript = make([]dto.TranscriptTurnResponse, 0, len(session.Transcript))
		for _, turn := range session.Transcript {
			resp.Transcript = append(resp.Transcript, dto.TranscriptTurnResponse{Role: turn.Role, Text: turn.Text})
		}
	}
	return resp
}
