package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/Nzyazin/finledger/internal/core/models"
	"github.com/Nzyazin/finledger/internal/core/repository"
	"github.com/google/uuid"
)

// OperationStore is the in-memory reference implementation of the ledger
// store. Entries live in a slice so insertion order is preserved.
type OperationStore struct {
	mu      sync.Mutex
	entries []models.Operation
	byID    map[uuid.UUID]int
}

func NewOperationStore() *OperationStore {
	return &OperationStore{
		entries: make([]models.Operation, 0),
		byID:    make(map[uuid.UUID]int),
	}
}

func (s *OperationStore) Insert(ctx context.Context, op *models.Operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[op.ID]; exists {
		return repository.ErrDuplicate
	}
	s.byID[op.ID] = len(s.entries)
	s.entries = append(s.entries, *op)
	return nil
}

func (s *OperationStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	op := s.entries[idx]
	return &op, nil
}

func (s *OperationStore) FindByParticipant(ctx context.Context, userID uuid.UUID) ([]models.Operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []models.Operation
	for _, op := range s.entries {
		if op.OwnerID == userID || (op.CounterpartyID != nil && *op.CounterpartyID == userID) {
			result = append(result, op)
		}
	}
	return result, nil
}

// UserRepository is the in-memory user directory.
type UserRepository struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]models.User
	byEmail map[string]uuid.UUID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[uuid.UUID]models.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (r *UserRepository) Insert(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, exists := r.byEmail[email]; exists {
		return repository.ErrDuplicate
	}
	r.byEmail[email] = user.ID
	r.byID[user.ID] = *user
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	user := r.byID[id]
	return &user, nil
}

var (
	_ repository.OperationStore = (*OperationStore)(nil)
	_ repository.UserRepository = (*UserRepository)(nil)
)
