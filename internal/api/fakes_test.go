package api

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/omarsldn/taskhub/internal/domain"
	"github.com/omarsldn/taskhub/internal/service/auth"
	"github.com/omarsldn/taskhub/internal/store"
)

// fakeUserStore is an in-memory store.UserStore for handler tests.
type fakeUserStore struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*domain.User
	avatars map[uuid.UUID][]byte

	failWith error // when set, every call fails with this error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:   make(map[uuid.UUID]*domain.User),
		avatars: make(map[uuid.UUID][]byte),
	}
}

func (s *fakeUserStore) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	for _, u := range s.users {
		if u.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *fakeUserStore) Update(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	if _, ok := s.users[user.ID]; !ok {
		return store.ErrUserNotFound
	}
	for id, u := range s.users {
		if id != user.ID && u.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *fakeUserStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	if _, ok := s.users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(s.users, id)
	delete(s.avatars, id)
	return nil
}

func (s *fakeUserStore) UpdateAvatar(_ context.Context, id uuid.UUID, avatar []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	if _, ok := s.users[id]; !ok {
		return store.ErrUserNotFound
	}
	if avatar == nil {
		delete(s.avatars, id)
		return nil
	}
	s.avatars[id] = append([]byte(nil), avatar...)
	return nil
}

func (s *fakeUserStore) GetAvatar(_ context.Context, id uuid.UUID) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	if _, ok := s.users[id]; !ok {
		return nil, store.ErrUserNotFound
	}
	data, ok := s.avatars[id]
	if !ok {
		return nil, store.ErrAvatarNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *fakeUserStore) WithTx(_ *sql.Tx) store.UserStore { return s }

// fakeTaskStore is an in-memory store.TaskStore for handler tests.
type fakeTaskStore struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task

	failWith error
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

func (s *fakeTaskStore) Create(_ context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	copied := *task
	s.tasks[task.ID] = &copied
	return nil
}

func (s *fakeTaskStore) GetByID(_ context.Context, id, ownerID uuid.UUID) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	t, ok := s.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, store.ErrTaskNotFound
	}
	copied := *t
	return &copied, nil
}

func (s *fakeTaskStore) List(
	_ context.Context,
	ownerID uuid.UUID,
	opts store.TaskListOptions,
) ([]*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}

	var result []*domain.Task
	for _, t := range s.tasks {
		if t.OwnerID != ownerID {
			continue
		}
		if opts.Completed != nil && t.Completed != *opts.Completed {
			continue
		}
		copied := *t
		result = append(result, &copied)
	}

	sort.Slice(result, func(i, j int) bool {
		var less bool
		switch opts.SortField {
		case store.TaskSortDescription:
			less = result[i].Description < result[j].Description
		case store.TaskSortCompleted:
			less = !result[i].Completed && result[j].Completed
		case store.TaskSortUpdatedAt:
			less = result[i].UpdatedAt.Before(result[j].UpdatedAt)
		default:
			less = result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		if opts.SortDesc {
			return !less
		}
		return less
	})

	if opts.Skip > 0 {
		if opts.Skip >= len(result) {
			return nil, nil
		}
		result = result[opts.Skip:]
	}
	if opts.Limit > 0 && opts.Limit < len(result) {
		result = result[:opts.Limit]
	}
	return result, nil
}

func (s *fakeTaskStore) Update(_ context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	existing, ok := s.tasks[task.ID]
	if !ok || existing.OwnerID != task.OwnerID {
		return store.ErrTaskNotFound
	}
	copied := *task
	s.tasks[task.ID] = &copied
	return nil
}

func (s *fakeTaskStore) Delete(_ context.Context, id, ownerID uuid.UUID) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	t, ok := s.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, store.ErrTaskNotFound
	}
	delete(s.tasks, id)
	copied := *t
	return &copied, nil
}

func (s *fakeTaskStore) DeleteByOwner(_ context.Context, ownerID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return 0, s.failWith
	}
	var count int64
	for id, t := range s.tasks {
		if t.OwnerID == ownerID {
			delete(s.tasks, id)
			count++
		}
	}
	return count, nil
}

func (s *fakeTaskStore) WithTx(_ *sql.Tx) store.TaskStore { return s }

// fakeTokenStore is an in-memory store.TokenStore for handler tests.
type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[uuid.UUID][]string
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[uuid.UUID][]string)}
}

func (s *fakeTokenStore) Add(_ context.Context, userID uuid.UUID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[userID] = append(s.tokens[userID], token)
	return nil
}

func (s *fakeTokenStore) Exists(_ context.Context, userID uuid.UUID, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tokens[userID] {
		if t == token {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeTokenStore) Remove(_ context.Context, userID uuid.UUID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.tokens[userID]
	for i, t := range list {
		if t == token {
			s.tokens[userID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return store.ErrTokenNotFound
}

func (s *fakeTokenStore) RemoveAll(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, userID)
	return nil
}

func (s *fakeTokenStore) WithTx(_ *sql.Tx) store.TokenStore { return s }

func (s *fakeTokenStore) count(userID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens[userID])
}

// fakeOutboxStore records enqueued entries; dispatcher-side methods are
// exercised in the outbox package's own tests.
type fakeOutboxStore struct {
	mu      sync.Mutex
	entries []*domain.OutboxEmail
}

func newFakeOutboxStore() *fakeOutboxStore {
	return &fakeOutboxStore{}
}

func (s *fakeOutboxStore) Enqueue(_ context.Context, email *domain.OutboxEmail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *email
	s.entries = append(s.entries, &copied)
	return nil
}

func (s *fakeOutboxStore) ListPending(_ context.Context, limit int) ([]*domain.OutboxEmail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var pending []*domain.OutboxEmail
	for _, e := range s.entries {
		if e.Status == domain.EmailStatusPending {
			copied := *e
			pending = append(pending, &copied)
			if limit > 0 && len(pending) == limit {
				break
			}
		}
	}
	return pending, nil
}

func (s *fakeOutboxStore) MarkSent(_ context.Context, id uuid.UUID, sentAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.ID == id {
			e.Status = domain.EmailStatusSent
			e.SentAt = &sentAt
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *fakeOutboxStore) RecordAttempt(
	_ context.Context,
	id uuid.UUID,
	deliveryErr string,
) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.ID == id {
			e.Attempts++
			e.LastError = deliveryErr
			return e.Attempts, nil
		}
	}
	return 0, store.ErrNotFound
}

func (s *fakeOutboxStore) MarkFailed(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.ID == id {
			e.Status = domain.EmailStatusFailed
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *fakeOutboxStore) WithTx(_ *sql.Tx) store.OutboxStore { return s }

func (s *fakeOutboxStore) kinds() []domain.OutboxEmailKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.OutboxEmailKind, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.Kind)
	}
	return out
}

// fakeTokenService issues deterministic token strings and validates any
// token it previously issued.
type fakeTokenService struct {
	mu     sync.Mutex
	seq    int
	issued map[string]uuid.UUID
}

func newFakeTokenService() *fakeTokenService {
	return &fakeTokenService{issued: make(map[string]uuid.UUID)}
}

func (s *fakeTokenService) Generate(_ context.Context, userID uuid.UUID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	token := "token-" + userID.String() + "-" + uuid.NewString()
	s.issued[token] = userID
	return token, nil
}

func (s *fakeTokenService) Validate(_ context.Context, tokenString string) (*auth.Claims, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.issued[tokenString]
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	now := time.Now().UTC()
	return &auth.Claims{
		UserID:    userID,
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
		ID:        uuid.NewString(),
	}, nil
}
