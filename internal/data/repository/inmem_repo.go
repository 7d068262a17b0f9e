package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"user-admin/internal/data/entity"
)

// memoryStore backs the in-memory repositories. It mirrors the SQL schema:
// users reference roles by id and role names are resolved on read.
type memoryStore struct {
	mu         sync.RWMutex
	users      map[int64]entity.User
	userRoles  map[int64][]int64
	roles      map[int64]entity.Role
	sessions   map[string]entity.Session
	markers    map[string]time.Time
	nextUserID int64
	nextRoleID int64
}

// NewInMemoryRepository returns repositories sharing one process-local store.
// Used for local runs without postgres and by tests.
func NewInMemoryRepository() *Repository {
	store := &memoryStore{
		users:      make(map[int64]entity.User),
		userRoles:  make(map[int64][]int64),
		roles:      make(map[int64]entity.Role),
		sessions:   make(map[string]entity.Session),
		markers:    make(map[string]time.Time),
		nextUserID: 1,
		nextRoleID: 1,
	}

	return &Repository{
		User:    &inMemoryUserRepository{store: store},
		Role:    &inMemoryRoleRepository{store: store},
		Session: &inMemorySessionRepository{store: store},
		Seed:    &inMemorySeedRepository{store: store},
	}
}

// ==================== USERS ====================

type inMemoryUserRepository struct {
	store *memoryStore
}

func (r *inMemoryUserRepository) Create(ctx context.Context, user *entity.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.firstNameTaken(user.FirstName, 0) {
		return ErrDuplicateLoginID
	}

	now := time.Now()
	user.ID = s.nextUserID
	user.CreatedAt, user.UpdatedAt = now, now
	s.nextUserID++

	s.users[user.ID] = withoutRoles(user)
	s.userRoles[user.ID] = s.knownRoleIDs(user.Roles)
	return nil
}

func (r *inMemoryUserRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.users[id]; !ok {
		return nil, nil
	}
	return s.userWithRoles(id), nil
}

func (r *inMemoryUserRepository) FindByFirstName(ctx context.Context, firstName string) (*entity.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, u := range s.users {
		if u.FirstName == firstName {
			return s.userWithRoles(id), nil
		}
	}
	return nil, nil
}

func (r *inMemoryUserRepository) FindAll(ctx context.Context) ([]*entity.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	users := make([]*entity.User, 0, len(ids))
	for _, id := range ids {
		users = append(users, s.userWithRoles(id))
	}
	return users, nil
}

func (r *inMemoryUserRepository) CountAll(ctx context.Context) (int64, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.users)), nil
}

func (r *inMemoryUserRepository) Update(ctx context.Context, user *entity.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return fmt.Errorf("user %d not found", user.ID)
	}
	if s.firstNameTaken(user.FirstName, user.ID) {
		return ErrDuplicateLoginID
	}

	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = time.Now()
	s.users[user.ID] = withoutRoles(user)
	s.userRoles[user.ID] = s.knownRoleIDs(user.Roles)
	return nil
}

func (r *inMemoryUserRepository) DeleteByID(ctx context.Context, id int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.users, id)
	delete(s.userRoles, id)
	for token, session := range s.sessions {
		if session.UserID == id {
			delete(s.sessions, token)
		}
	}
	return nil
}

// ==================== ROLES ====================

type inMemoryRoleRepository struct {
	store *memoryStore
}

func (r *inMemoryRoleRepository) FindAll(ctx context.Context) ([]*entity.Role, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sortedRoles(func(entity.Role) bool { return true }), nil
}

func (r *inMemoryRoleRepository) FindByID(ctx context.Context, id int64) (*entity.Role, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	role, ok := s.roles[id]
	if !ok {
		return nil, nil
	}
	return &role, nil
}

func (r *inMemoryRoleRepository) FindByNames(ctx context.Context, names []string) ([]*entity.Role, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[name] = struct{}{}
	}

	return s.sortedRoles(func(role entity.Role) bool {
		_, ok := wanted[role.Name]
		return ok
	}), nil
}

func (r *inMemoryRoleRepository) Create(ctx context.Context, role *entity.Role) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.roles {
		if existing.Name == role.Name {
			if role.ID == 0 {
				role.ID = existing.ID
			}
			return nil
		}
	}

	if role.ID == 0 {
		role.ID = s.nextRoleID
	}
	if _, taken := s.roles[role.ID]; taken {
		return nil
	}
	if role.ID >= s.nextRoleID {
		s.nextRoleID = role.ID + 1
	}

	s.roles[role.ID] = *role
	return nil
}

// ==================== SESSIONS ====================

type inMemorySessionRepository struct {
	store *memoryStore
}

func (r *inMemorySessionRepository) Create(ctx context.Context, session *entity.Session) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.Token.String()] = *session
	return nil
}

func (r *inMemorySessionRepository) FindValidSession(ctx context.Context, token string) (*entity.Session, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[token]
	if !ok || !session.Valid(time.Now()) {
		return nil, nil
	}
	return &session, nil
}

func (r *inMemorySessionRepository) Revoke(ctx context.Context, token string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok || session.RevokedAt != nil {
		return ErrSessionNotFound
	}

	now := time.Now()
	session.RevokedAt = &now
	s.sessions[token] = session
	return nil
}

func (r *inMemorySessionRepository) RevokeAllUserSessions(ctx context.Context, userID int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for token, session := range s.sessions {
		if session.UserID == userID && session.RevokedAt == nil {
			session.RevokedAt = &now
			s.sessions[token] = session
		}
	}
	return nil
}

func (r *inMemorySessionRepository) CleanExpiredSessions(ctx context.Context) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-7 * 24 * time.Hour)
	for token, session := range s.sessions {
		if session.ExpiresAt.Before(cutoff) {
			delete(s.sessions, token)
		}
	}
	return nil
}

// ==================== SEED MARKERS ====================

type inMemorySeedRepository struct {
	store *memoryStore
}

func (r *inMemorySeedRepository) IsApplied(ctx context.Context, name string) (bool, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.markers[name]
	return ok, nil
}

func (r *inMemorySeedRepository) MarkApplied(ctx context.Context, name string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.markers[name]; !ok {
		s.markers[name] = time.Now()
	}
	return nil
}

// ==================== HELPERS (caller holds the lock) ====================

func (s *memoryStore) firstNameTaken(firstName string, exceptID int64) bool {
	for id, u := range s.users {
		if id != exceptID && u.FirstName == firstName {
			return true
		}
	}
	return false
}

// knownRoleIDs drops references to roles that do not exist, like the FK would reject them.
func (s *memoryStore) knownRoleIDs(roles []*entity.Role) []int64 {
	ids := make([]int64, 0, len(roles))
	seen := make(map[int64]struct{}, len(roles))
	for _, role := range roles {
		if _, ok := s.roles[role.ID]; !ok {
			continue
		}
		if _, dup := seen[role.ID]; dup {
			continue
		}
		seen[role.ID] = struct{}{}
		ids = append(ids, role.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *memoryStore) userWithRoles(id int64) *entity.User {
	user := s.users[id]
	user.Roles = []*entity.Role{}
	for _, roleID := range s.userRoles[id] {
		if role, ok := s.roles[roleID]; ok {
			role := role
			user.Roles = append(user.Roles, &role)
		}
	}
	return &user
}

func (s *memoryStore) sortedRoles(keep func(entity.Role) bool) []*entity.Role {
	roles := []*entity.Role{}
	for _, role := range s.roles {
		if keep(role) {
			role := role
			roles = append(roles, &role)
		}
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].ID < roles[j].ID })
	return roles
}

func withoutRoles(user *entity.User) entity.User {
	stored := *user
	stored.Roles = nil
	return stored
}
