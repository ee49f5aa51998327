package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/researchhive/hive-api/internal/domain"
)

// MemoryStore keeps users and reviews in process memory. It enforces the same
// uniqueness rules as the Postgres schema and is used when no DSN is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]*domain.User
	byEmail  map[string]string
	byMobile map[string]string
	reviews  map[string]*domain.Review
	now      func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]*domain.User),
		byEmail:  make(map[string]string),
		byMobile: make(map[string]string),
		reviews:  make(map[string]*domain.Review),
		now:      time.Now,
	}
}

// Users returns the store as a UserRepository.
func (s *MemoryStore) Users() UserRepository {
	return memoryUsers{s}
}

// Reviews returns the store as a ReviewRepository.
func (s *MemoryStore) Reviews() ReviewRepository {
	return memoryReviews{s}
}

type memoryUsers struct{ s *MemoryStore }

func (m memoryUsers) Create(_ context.Context, user *domain.User) error {
	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[user.Email]; exists {
		return &DuplicateError{Field: "email"}
	}
	if _, exists := s.byMobile[user.MobileNumber]; exists {
		return &DuplicateError{Field: "mobile_number"}
	}

	now := s.now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	stored.OngoingProjects = nonNil(user.OngoingProjects)
	stored.Institutions = nonNil(user.Institutions)
	stored.Interests = nonNil(user.Interests)
	stored.SocialLinks = nonNil(user.SocialLinks)
	s.users[user.ID] = &stored
	s.byEmail[user.Email] = user.ID
	s.byMobile[user.MobileNumber] = user.ID
	return nil
}

func (m memoryUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	return m.copyOf(id)
}

func (m memoryUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	return m.copyOf(m.s.byEmail[email])
}

func (m memoryUsers) GetByMobile(_ context.Context, mobile string) (*domain.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	return m.copyOf(m.s.byMobile[mobile])
}

func (m memoryUsers) UpdateProfile(_ context.Context, id string, update domain.ProfileUpdate) (*domain.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	user, ok := m.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	update.Apply(user)
	user.UpdatedAt = m.s.now().UTC()
	return m.copyOf(id)
}

func (m memoryUsers) Delete(_ context.Context, id string) error {
	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	delete(s.byEmail, user.Email)
	delete(s.byMobile, user.MobileNumber)
	for rid, review := range s.reviews {
		if review.UserID == id {
			delete(s.reviews, rid)
		}
	}
	return nil
}

// copyOf must be called with the lock held.
func (m memoryUsers) copyOf(id string) (*domain.User, error) {
	user, ok := m.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *user.Public()
	cp.PasswordHash = user.PasswordHash
	return &cp, nil
}

type memoryReviews struct{ s *MemoryStore }

func (m memoryReviews) Create(_ context.Context, review *domain.Review) error {
	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[review.UserID]; !ok {
		return ErrNotFound
	}
	now := s.now().UTC()
	review.ID = uuid.NewString()
	review.CreatedAt = now
	review.UpdatedAt = now
	stored := *review
	s.reviews[review.ID] = &stored
	return nil
}

func (m memoryReviews) GetByID(_ context.Context, id string) (*domain.Review, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	review, ok := m.s.reviews[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *review
	return &cp, nil
}

func (m memoryReviews) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if _, ok := m.s.reviews[id]; !ok {
		return ErrNotFound
	}
	delete(m.s.reviews, id)
	return nil
}

func (m memoryReviews) ListByPaper(_ context.Context, paperID string) ([]domain.ReviewWithAuthor, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	out := make([]domain.ReviewWithAuthor, 0)
	for _, review := range m.s.reviews {
		if review.PaperID != paperID {
			continue
		}
		item := domain.ReviewWithAuthor{Review: *review}
		if author, ok := m.s.users[review.UserID]; ok {
			item.AuthorName = author.Name
			item.AuthorProfilePic = author.ProfilePic
			item.AuthorRole = author.Role
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
