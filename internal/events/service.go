package events

import (
	"context"
	"math"

	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/validation"

	"github.com/google/uuid"
)

type Service interface {
	CreateEvent(ctx context.Context, req CreateEventRequest) (*EventResponse, error)
	GetEventByID(ctx context.Context, id uuid.UUID) (*EventResponse, error)
	GetAllEvents(ctx context.Context, query EventListQuery) (*PaginatedEvents, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateSeatCounters(ctx context.Context, id uuid.UUID, total, available int) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateEvent(ctx context.Context, req CreateEventRequest) (*EventResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	status := EventStatus(req.Status)
	if status == "" {
		status = EventStatusDraft
	}

	event := &Event{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Venue:       req.Venue,
		StartsAt:    req.StartsAt.UTC(),
		Status:      status,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}

	resp := event.ToResponse()
	return &resp, nil
}

func (s *service) GetEventByID(ctx context.Context, id uuid.UUID) (*EventResponse, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := event.ToResponse()
	return &resp, nil
}

func (s *service) GetAllEvents(ctx context.Context, query EventListQuery) (*PaginatedEvents, error) {
	if query.Page == 0 {
		query.Page = 1
	}
	if query.Limit == 0 {
		query.Limit = 10
	}

	events, total, err := s.repo.GetAll(ctx, query)
	if err != nil {
		return nil, err
	}

	responses := make([]EventResponse, 0, len(events))
	for i := range events {
		responses = append(responses, events[i].ToResponse())
	}

	return &PaginatedEvents{
		Events:     responses,
		TotalCount: total,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(query.Limit))),
	}, nil
}

func (s *service) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.repo.Exists(ctx, id)
}

func (s *service) UpdateSeatCounters(ctx context.Context, id uuid.UUID, total, available int) error {
	return s.repo.UpdateSeatCounters(ctx, id, total, available)
}
