package todo

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iotmonitor/api/internal/contracts"
)

var (
	ErrIDRequired          = errors.New("id is required")
	ErrTitleRequired       = errors.New("title is required")
	ErrDescriptionRequired = errors.New("description is required")
	ErrIsActiveRequired    = errors.New("isActive is required")
	ErrTodoNotFound        = errors.New("todo not found")
)

type Todo struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Patch carries the fields of a partial update. A nil field was absent from
// the request and must leave the stored value untouched.
type Patch struct {
	Title       *string
	Description *string
	IsActive    *bool
}

type Repository interface {
	List(ctx context.Context) ([]Todo, error)
	GetByID(ctx context.Context, id string) (Todo, error)
	Insert(ctx context.Context, t Todo) error
	Update(ctx context.Context, id string, patch Patch, updatedAt time.Time) (Todo, error)
	Delete(ctx context.Context, id string) error
}

// CreateRequest uses pointer fields so that an omitted field and an explicit
// zero value ("" or false) are distinguishable after decoding.
type CreateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

type UpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

type PublishFunc func(subject string, payload []byte) error

type Service struct {
	Repo    Repository
	Publish PublishFunc
	Now     func() time.Time
	NewID   func() string
}

func NewService(repo Repository) *Service {
	return &Service{
		Repo:  repo,
		Now:   func() time.Time { return time.Now().UTC() },
		NewID: uuid.NewString,
	}
}

func (s *Service) List(ctx context.Context) ([]Todo, error) {
	return s.Repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (Todo, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Todo{}, ErrIDRequired
	}
	return s.Repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Todo, error) {
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		return Todo{}, ErrTitleRequired
	}
	if req.Description == nil || strings.TrimSpace(*req.Description) == "" {
		return Todo{}, ErrDescriptionRequired
	}
	if req.IsActive == nil {
		return Todo{}, ErrIsActiveRequired
	}

	now := s.Now()
	t := Todo{
		ID:          s.NewID(),
		Title:       strings.TrimSpace(*req.Title),
		Description: strings.TrimSpace(*req.Description),
		IsActive:    *req.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.Insert(ctx, t); err != nil {
		return Todo{}, err
	}
	s.publish(contracts.ActionCreated, t)
	return t, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (Todo, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Todo{}, ErrIDRequired
	}
	patch := Patch{
		Title:       req.Title,
		Description: req.Description,
		IsActive:    req.IsActive,
	}
	updated, err := s.Repo.Update(ctx, id, patch, s.Now())
	if err != nil {
		return Todo{}, err
	}
	s.publish(contracts.ActionUpdated, updated)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrIDRequired
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(contracts.ActionDeleted, Todo{ID: id})
	return nil
}

// publish emits a change-feed event, best effort. The feed is off when no
// publisher is configured, and a failed publish never fails the request.
func (s *Service) publish(action string, t Todo) {
	if s.Publish == nil {
		return
	}
	evt := contracts.TodoEvent{
		EventID:    s.NewID(),
		TodoID:     t.ID,
		Action:     action,
		Title:      t.Title,
		IsActive:   t.IsActive,
		OccurredAt: s.Now(),
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return
	}
	if err := s.Publish(contracts.Subject(action), payload); err != nil {
		log.Printf("change feed publish %s for todo %s failed: %v", action, t.ID, err)
	}
}
