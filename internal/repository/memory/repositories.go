package memory

import (
	"context"
	"sort"

	"github.com/soulbond-app/soulbond-backend/internal/domain"
	"github.com/soulbond-app/soulbond-backend/internal/repository"
)

// --- users ---

type userRepository struct{ s *Store }

func NewUserRepository(s *Store) repository.UserRepository { return &userRepository{s: s} }

func (r *userRepository) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return domain.ErrUserAlreadyExists
		}
	}
	r.s.userSeq++
	user.ID = r.s.userSeq
	user.CreatedAt = now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id int) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *userRepository) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	user.UpdatedAt = now()
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *userRepository) UpdateLastSeen(_ context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	t := now()
	u.LastSeenAt = &t
	return nil
}

// --- profiles ---

type profileRepository struct{ s *Store }

func NewProfileRepository(s *Store) repository.ProfileRepository { return &profileRepository{s: s} }

func (r *profileRepository) Create(_ context.Context, profile *domain.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.profiles {
		if p.UserID == profile.UserID {
			return domain.ErrProfileAlreadyExists
		}
	}
	r.s.profileSeq++
	profile.ID = r.s.profileSeq
	profile.CreatedAt = now()
	profile.UpdatedAt = profile.CreatedAt
	r.s.profiles[profile.ID] = cloneProfile(profile)
	return nil
}

func (r *profileRepository) GetByID(_ context.Context, id int) (*domain.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return cloneProfile(p), nil
}

func (r *profileRepository) GetByUserID(_ context.Context, userID int) (*domain.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.profiles {
		if p.UserID == userID {
			return cloneProfile(p), nil
		}
	}
	return nil, domain.ErrProfileNotFound
}

func (r *profileRepository) Update(_ context.Context, profile *domain.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profiles[profile.ID]; !ok {
		return domain.ErrProfileNotFound
	}
	profile.UpdatedAt = now()
	r.s.profiles[profile.ID] = cloneProfile(profile)
	return nil
}

func (r *profileRepository) ListEligible(_ context.Context, excludeUserID, limit, offset int) ([]*domain.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*domain.Profile
	for _, p := range r.s.profiles {
		if p.UserID == excludeUserID || !p.IsOnboardingComplete {
			continue
		}
		u, ok := r.s.users[p.UserID]
		if !ok || !u.IsActive {
			continue
		}
		out = append(out, cloneProfile(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- sessions ---

type sessionRepository struct{ s *Store }

func NewSessionRepository(s *Store) repository.SessionRepository { return &sessionRepository{s: s} }

func (r *sessionRepository) Create(_ context.Context, session *domain.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sessionSeq++
	session.ID = r.s.sessionSeq
	session.CreatedAt = now()
	cp := *session
	r.s.sessions[session.Token] = &cp
	return nil
}

func (r *sessionRepository) GetByToken(_ context.Context, token string) (*domain.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sess, ok := r.s.sessions[token]
	if !ok || sess.ExpiresAt.Before(now()) {
		return nil, domain.ErrSessionNotFound
	}
	cp := *sess
	return &cp, nil
}

func (r *sessionRepository) DeleteByToken(_ context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sessions[token]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(r.s.sessions, token)
	return nil
}

func (r *sessionRepository) DeleteExpired(_ context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for token, sess := range r.s.sessions {
		if sess.ExpiresAt.Before(now()) {
			delete(r.s.sessions, token)
			n++
		}
	}
	return n, nil
}

// --- connections ---

type connectionRepository struct{ s *Store }

func NewConnectionRepository(s *Store) repository.ConnectionRepository {
	return &connectionRepository{s: s}
}

func (r *connectionRepository) Create(_ context.Context, conn *domain.SoulConnection) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u1, u2 := conn.User1ID, conn.User2ID
	if u1 > u2 {
		u1, u2 = u2, u1
	}
	conn.User1ID, conn.User2ID = u1, u2
	for _, c := range r.s.connections {
		if c.User1ID == u1 && c.User2ID == u2 && c.Status != domain.StatusEnded {
			return domain.ErrDuplicateConnection
		}
	}
	r.s.connSeq++
	conn.ID = r.s.connSeq
	conn.CreatedAt = now()
	conn.UpdatedAt = conn.CreatedAt
	r.s.connections[conn.ID] = cloneConnection(conn)
	return nil
}

func (r *connectionRepository) GetByID(_ context.Context, id int) (*domain.SoulConnection, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.connections[id]
	if !ok {
		return nil, domain.ErrConnectionNotFound
	}
	return cloneConnection(c), nil
}

func (r *connectionRepository) GetActiveByUsers(_ context.Context, user1ID, user2ID int) (*domain.SoulConnection, error) {
	if user1ID > user2ID {
		user1ID, user2ID = user2ID, user1ID
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.connections {
		if c.User1ID == user1ID && c.User2ID == user2ID && c.Status != domain.StatusEnded {
			return cloneConnection(c), nil
		}
	}
	return nil, domain.ErrConnectionNotFound
}

func (r *connectionRepository) ListForUser(_ context.Context, userID, limit, offset int) ([]*domain.SoulConnection, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*domain.SoulConnection
	for _, c := range r.s.connections {
		if c.HasUser(userID) {
			out = append(out, cloneConnection(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *connectionRepository) ListActiveForUser(_ context.Context, userID int) ([]*domain.SoulConnection, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*domain.SoulConnection
	for _, c := range r.s.connections {
		if c.HasUser(userID) && c.Status != domain.StatusEnded {
			out = append(out, cloneConnection(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *connectionRepository) Mutate(ctx context.Context, id int, fn func(ctx context.Context, conn *domain.SoulConnection) error) (*domain.SoulConnection, error) {
	lock := r.s.connLock(id)
	lock.Lock()
	defer lock.Unlock()

	r.s.mu.RLock()
	stored, ok := r.s.connections[id]
	r.s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrConnectionNotFound
	}

	work := cloneConnection(stored)
	if err := fn(ctx, work); err != nil {
		return nil, err
	}

	work.UpdatedAt = now()
	r.s.mu.Lock()
	r.s.connections[id] = cloneConnection(work)
	r.s.mu.Unlock()
	return work, nil
}

// --- revelations ---

type revelationRepository struct{ s *Store }

func NewRevelationRepository(s *Store) repository.RevelationRepository {
	return &revelationRepository{s: s}
}

func (r *revelationRepository) Create(_ context.Context, rev *domain.DailyRevelation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.revSeq++
	rev.ID = r.s.revSeq
	rev.CreatedAt = now()
	cp := *rev
	r.s.revelations[rev.ID] = &cp
	return nil
}

func (r *revelationRepository) GetByID(_ context.Context, id int) (*domain.DailyRevelation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rev, ok := r.s.revelations[id]
	if !ok {
		return nil, domain.ErrRevelationNotFound
	}
	cp := *rev
	return &cp, nil
}

func (r *revelationRepository) ListByConnection(_ context.Context, connectionID int) ([]*domain.DailyRevelation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*domain.DailyRevelation
	for _, rev := range r.s.revelations {
		if rev.ConnectionID == connectionID {
			cp := *rev
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayNumber != out[j].DayNumber {
			return out[i].DayNumber < out[j].DayNumber
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *revelationRepository) GetBySenderAndDay(_ context.Context, connectionID, senderID, dayNumber int) (*domain.DailyRevelation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, rev := range r.s.revelations {
		if rev.ConnectionID == connectionID && rev.SenderID == senderID &&
			rev.DayNumber == dayNumber && !rev.RevelationType.IsPhoto() {
			cp := *rev
			return &cp, nil
		}
	}
	return nil, domain.ErrRevelationNotFound
}

func (r *revelationRepository) CountByConnection(_ context.Context, connectionID int) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, rev := range r.s.revelations {
		if rev.ConnectionID == connectionID {
			n++
		}
	}
	return n, nil
}

func (r *revelationRepository) MarkRead(_ context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rev, ok := r.s.revelations[id]
	if !ok {
		return domain.ErrRevelationNotFound
	}
	rev.IsRead = true
	return nil
}

// --- messages ---

type messageRepository struct{ s *Store }

func NewMessageRepository(s *Store) repository.MessageRepository { return &messageRepository{s: s} }

func (r *messageRepository) Create(_ context.Context, msg *domain.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.msgSeq++
	msg.ID = r.s.msgSeq
	msg.CreatedAt = now()
	cp := *msg
	r.s.messages[msg.ID] = &cp
	return nil
}

func (r *messageRepository) ListByConnection(_ context.Context, connectionID, limit, offset int) ([]*domain.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*domain.Message
	for _, m := range r.s.messages {
		if m.ConnectionID == connectionID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *messageRepository) CountByConnection(_ context.Context, connectionID int) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, m := range r.s.messages {
		if m.ConnectionID == connectionID {
			n++
		}
	}
	return n, nil
}

// --- accuracy records ---

type accuracyRepository struct{ s *Store }

func NewAccuracyRepository(s *Store) repository.AccuracyRepository {
	return &accuracyRepository{s: s}
}

func (r *accuracyRepository) Create(_ context.Context, rec *domain.CompatibilityAccuracyRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.accSeq++
	rec.ID = r.s.accSeq
	rec.CreatedAt = now()
	rec.UpdatedAt = rec.CreatedAt
	cp := *rec
	r.s.accuracy[rec.ID] = &cp
	return nil
}

func (r *accuracyRepository) GetByConnectionID(_ context.Context, connectionID int) (*domain.CompatibilityAccuracyRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, rec := range r.s.accuracy {
		if rec.ConnectionID == connectionID {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, domain.ErrAccuracyRecordNotFound
}

func (r *accuracyRepository) Update(_ context.Context, rec *domain.CompatibilityAccuracyRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.accuracy[rec.ID]; !ok {
		return domain.ErrAccuracyRecordNotFound
	}
	rec.UpdatedAt = now()
	cp := *rec
	r.s.accuracy[rec.ID] = &cp
	return nil
}

func (r *accuracyRepository) ListEvaluated(_ context.Context, algorithmVersion string, limit, offset int) ([]*domain.CompatibilityAccuracyRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*domain.CompatibilityAccuracyRecord
	for _, rec := range r.s.accuracy {
		if !rec.Evaluated() {
			continue
		}
		if algorithmVersion != "" && rec.AlgorithmVersion != algorithmVersion {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
