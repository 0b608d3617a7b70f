package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"research-approval/backend/internal/model"
	"research-approval/backend/internal/repository"
	pkgerrors "research-approval/backend/pkg/errors"
)

// ── 内存存储 ──
//
// 所有 mock repository 共享同一个 memStore；mockTransactor 用互斥锁串行化事务，
// 效果等同行锁，出错时整体回滚到事务开始时的快照。

type memStore struct {
	mu sync.Mutex

	users         map[string]*model.User
	groups        map[string]*model.Group
	submissions   map[string]*model.Submission
	assignments   map[string]*model.ReviewerAssignment
	reviews       []*model.Review
	threads       map[string]*model.DiscussionThread
	participants  []*model.DiscussionParticipant
	messages      []*model.DiscussionMessage
	notifications []*model.Notification

	seq int
	// updateConflicts 大于 0 时，接下来的 Submission.Update 返回乐观锁冲突
	updateConflicts int
}

func newMemStore() *memStore {
	return &memStore{
		users:       make(map[string]*model.User),
		groups:      make(map[string]*model.Group),
		submissions: make(map[string]*model.Submission),
		assignments: make(map[string]*model.ReviewerAssignment),
		threads:     make(map[string]*model.DiscussionThread),
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func cloneMap[T any](m map[string]*T) map[string]*T {
	out := make(map[string]*T, len(m))
	for k, v := range m {
		c := *v
		out[k] = &c
	}
	return out
}

func cloneSlice[T any](list []*T) []*T {
	out := make([]*T, 0, len(list))
	for _, v := range list {
		c := *v
		out = append(out, &c)
	}
	return out
}

func (s *memStore) snapshot() *memStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &memStore{
		users:         cloneMap(s.users),
		groups:        cloneMap(s.groups),
		submissions:   cloneMap(s.submissions),
		assignments:   cloneMap(s.assignments),
		reviews:       cloneSlice(s.reviews),
		threads:       cloneMap(s.threads),
		participants:  cloneSlice(s.participants),
		messages:      cloneSlice(s.messages),
		notifications: cloneSlice(s.notifications),
	}
}

func (s *memStore) restore(snap *memStore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.groups = snap.groups
	s.submissions = snap.submissions
	s.assignments = snap.assignments
	s.reviews = snap.reviews
	s.threads = snap.threads
	s.participants = snap.participants
	s.messages = snap.messages
	s.notifications = snap.notifications
}

// ── Mock Transactor ──

type mockTransactor struct {
	txMu  sync.Mutex
	store *memStore
	repo  *repository.Repository
	calls int
}

func (m *mockTransactor) Transaction(_ context.Context, fn func(tx *repository.Repository) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	m.calls++

	snap := m.store.snapshot()
	if err := fn(m.repo); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

// newMockRepository 组装基于内存存储的 Repository
func newMockRepository(store *memStore) (*repository.Repository, *mockTransactor) {
	repo := &repository.Repository{
		User:         &mockUserRepo{s: store},
		Group:        &mockGroupRepo{s: store},
		Submission:   &mockSubmissionRepo{s: store},
		Assignment:   &mockAssignmentRepo{s: store},
		Review:       &mockReviewRepo{s: store},
		Discussion:   &mockDiscussionRepo{s: store},
		Notification: &mockNotificationRepo{s: store},
	}
	tx := &mockTransactor{store: store, repo: repo}
	repo.Tx = tx
	return repo, tx
}

// ── Mock UserRepository ──

type mockUserRepo struct{ s *memStore }

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if u, ok := m.s.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListByIDs(_ context.Context, ids []string) ([]model.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var result []model.User
	for _, id := range ids {
		if u, ok := m.s.users[id]; ok {
			result = append(result, *u)
		}
	}
	return result, nil
}

// ── Mock GroupRepository ──

type mockGroupRepo struct{ s *memStore }

func (m *mockGroupRepo) Create(_ context.Context, group *model.Group) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, g := range m.s.groups {
		if g.LeadID == group.LeadID {
			return gorm.ErrDuplicatedKey
		}
	}
	if group.GroupID == "" {
		group.GroupID = m.s.nextID("grp")
	}
	group.CreatedAt = time.Now()
	group.UpdatedAt = group.CreatedAt
	c := *group
	m.s.groups[group.GroupID] = &c
	return nil
}

func (m *mockGroupRepo) withUsers(g *model.Group) *model.Group {
	c := *g
	if u, ok := m.s.users[c.LeadID]; ok {
		lead := *u
		c.Lead = &lead
	}
	if c.AdviserID != nil {
		if u, ok := m.s.users[*c.AdviserID]; ok {
			adviser := *u
			c.Adviser = &adviser
		}
	}
	return &c
}

func (m *mockGroupRepo) GetByID(_ context.Context, id string) (*model.Group, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if g, ok := m.s.groups[id]; ok {
		return m.withUsers(g), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGroupRepo) GetByLead(_ context.Context, leadID string) (*model.Group, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, g := range m.s.groups {
		if g.LeadID == leadID {
			return m.withUsers(g), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGroupRepo) List(_ context.Context, college string) ([]model.Group, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var result []model.Group
	for _, g := range m.s.groups {
		if college != "" && g.College != college {
			continue
		}
		result = append(result, *m.withUsers(g))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].GroupID < result[j].GroupID })
	return result, nil
}

// ── Mock SubmissionRepository ──

type mockSubmissionRepo struct{ s *memStore }

func chapterOf(sub *model.Submission) int {
	if sub.ChapterNumber == nil {
		return 0
	}
	return *sub.ChapterNumber
}

func (m *mockSubmissionRepo) Create(_ context.Context, sub *model.Submission) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, other := range m.s.submissions {
		if other.GroupID != sub.GroupID || other.Kind != sub.Kind || chapterOf(other) != chapterOf(sub) {
			continue
		}
		// 与数据库的两个唯一索引保持一致
		if other.Status == "pending" && sub.Status == "pending" {
			return gorm.ErrDuplicatedKey
		}
		if sub.Kind == "chapter" {
			return gorm.ErrDuplicatedKey
		}
	}
	if sub.SubmissionID == "" {
		sub.SubmissionID = m.s.nextID("sub")
	}
	if sub.Version == 0 {
		sub.Version = 1
	}
	sub.CreatedAt = time.Now()
	sub.UpdatedAt = sub.CreatedAt
	c := *sub
	m.s.submissions[sub.SubmissionID] = &c
	return nil
}

func (m *mockSubmissionRepo) GetByID(_ context.Context, id string) (*model.Submission, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if sub, ok := m.s.submissions[id]; ok {
		c := *sub
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubmissionRepo) GetForUpdate(ctx context.Context, id string) (*model.Submission, error) {
	return m.GetByID(ctx, id)
}

func (m *mockSubmissionRepo) Update(_ context.Context, sub *model.Submission) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.updateConflicts > 0 {
		m.s.updateConflicts--
		return pkgerrors.ErrOptimisticLock
	}
	stored, ok := m.s.submissions[sub.SubmissionID]
	if !ok || stored.Version != sub.Version {
		return pkgerrors.ErrOptimisticLock
	}
	sub.Version++
	sub.UpdatedAt = time.Now()
	c := *sub
	m.s.submissions[sub.SubmissionID] = &c
	return nil
}

func (m *mockSubmissionRepo) filter(pred func(*model.Submission) bool) []model.Submission {
	var result []model.Submission
	for _, sub := range m.s.submissions {
		if pred(sub) {
			result = append(result, *sub)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result
}

func (m *mockSubmissionRepo) ListByGroup(_ context.Context, groupID string) ([]model.Submission, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.filter(func(s *model.Submission) bool { return s.GroupID == groupID }), nil
}

func (m *mockSubmissionRepo) FindPendingTitle(_ context.Context, groupID string) (*model.Submission, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	list := m.filter(func(s *model.Submission) bool {
		return s.GroupID == groupID && s.Kind == "title" && s.Status == "pending"
	})
	if len(list) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &list[0], nil
}

func (m *mockSubmissionRepo) LatestApprovedTitle(_ context.Context, groupID string) (*model.Submission, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	list := m.filter(func(s *model.Submission) bool {
		return s.GroupID == groupID && s.Kind == "title" && s.Status == "approved"
	})
	if len(list) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	latest := list[0]
	for _, sub := range list[1:] {
		if sub.ApprovedAt != nil && (latest.ApprovedAt == nil || !sub.ApprovedAt.Before(*latest.ApprovedAt)) {
			latest = sub
		}
	}
	return &latest, nil
}

func (m *mockSubmissionRepo) GetChapter(_ context.Context, groupID string, chapter int) (*model.Submission, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	list := m.filter(func(s *model.Submission) bool {
		return s.GroupID == groupID && s.Kind == "chapter" && chapterOf(s) == chapter
	})
	if len(list) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &list[0], nil
}

func (m *mockSubmissionRepo) ListChapters(_ context.Context, groupID string) ([]model.Submission, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	list := m.filter(func(s *model.Submission) bool { return s.GroupID == groupID && s.Kind == "chapter" })
	sort.Slice(list, func(i, j int) bool { return chapterOf(&list[i]) < chapterOf(&list[j]) })
	return list, nil
}

// ── Mock AssignmentRepository ──

type mockAssignmentRepo struct{ s *memStore }

func (m *mockAssignmentRepo) Create(_ context.Context, a *model.ReviewerAssignment) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, other := range m.s.assignments {
		if other.SubmissionID == a.SubmissionID && other.ReviewerID == a.ReviewerID {
			return gorm.ErrDuplicatedKey
		}
	}
	if a.AssignmentID == "" {
		a.AssignmentID = m.s.nextID("asg")
	}
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	c := *a
	m.s.assignments[a.AssignmentID] = &c
	return nil
}

func (m *mockAssignmentRepo) GetByID(_ context.Context, id string) (*model.ReviewerAssignment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if a, ok := m.s.assignments[id]; ok {
		c := *a
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssignmentRepo) GetBySubmissionAndReviewer(_ context.Context, submissionID, reviewerID string) (*model.ReviewerAssignment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, a := range m.s.assignments {
		if a.SubmissionID == submissionID && a.ReviewerID == reviewerID {
			c := *a
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssignmentRepo) ListBySubmission(_ context.Context, submissionID string) ([]model.ReviewerAssignment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var result []model.ReviewerAssignment
	for _, a := range m.s.assignments {
		if a.SubmissionID != submissionID {
			continue
		}
		c := *a
		if u, ok := m.s.users[a.ReviewerID]; ok {
			reviewer := *u
			c.Reviewer = &reviewer
		}
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AssignmentID < result[j].AssignmentID })
	return result, nil
}

func (m *mockAssignmentRepo) CountActive(_ context.Context, submissionID string) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	n := 0
	for _, a := range m.s.assignments {
		if a.SubmissionID == submissionID && a.IsActive {
			n++
		}
	}
	return n, nil
}

func (m *mockAssignmentRepo) SetActive(_ context.Context, a *model.ReviewerAssignment) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	stored, ok := m.s.assignments[a.AssignmentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.IsActive = a.IsActive
	stored.DeactivatedAt = a.DeactivatedAt
	stored.UpdatedBy = a.UpdatedBy
	return nil
}

// ── Mock ReviewRepository ──

type mockReviewRepo struct{ s *memStore }

func (m *mockReviewRepo) Upsert(_ context.Context, review *model.Review) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, r := range m.s.reviews {
		if r.SubmissionID == review.SubmissionID && r.ReviewerID == review.ReviewerID && r.Cycle == review.Cycle {
			r.Decision = review.Decision
			r.Comments = review.Comments
			r.ReviewedAt = review.ReviewedAt
			r.UpdatedBy = review.UpdatedBy
			review.ReviewID = r.ReviewID
			return nil
		}
	}
	if review.ReviewID == "" {
		review.ReviewID = m.s.nextID("rev")
	}
	c := *review
	m.s.reviews = append(m.s.reviews, &c)
	return nil
}

func (m *mockReviewRepo) ListBySubmission(_ context.Context, submissionID string) ([]model.Review, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var result []model.Review
	for _, r := range m.s.reviews {
		if r.SubmissionID == submissionID {
			result = append(result, *r)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Cycle < result[j].Cycle })
	return result, nil
}

func (m *mockReviewRepo) ListByCycle(_ context.Context, submissionID string, cycle int) ([]model.Review, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var result []model.Review
	for _, r := range m.s.reviews {
		if r.SubmissionID == submissionID && r.Cycle == cycle {
			result = append(result, *r)
		}
	}
	return result, nil
}

// ── Mock DiscussionRepository ──

type mockDiscussionRepo struct{ s *memStore }

func (m *mockDiscussionRepo) participantsOf(threadID string) []model.DiscussionParticipant {
	var result []model.DiscussionParticipant
	for _, p := range m.s.participants {
		if p.ThreadID == threadID {
			result = append(result, *p)
		}
	}
	return result
}

func (m *mockDiscussionRepo) GetThreadByGroup(_ context.Context, groupID string) (*model.DiscussionThread, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, t := range m.s.threads {
		if t.GroupID == groupID {
			c := *t
			c.Participants = m.participantsOf(t.ThreadID)
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDiscussionRepo) GetThread(_ context.Context, threadID string) (*model.DiscussionThread, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if t, ok := m.s.threads[threadID]; ok {
		c := *t
		c.Participants = m.participantsOf(threadID)
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDiscussionRepo) CreateThreadIfAbsent(_ context.Context, thread *model.DiscussionThread) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, t := range m.s.threads {
		if t.GroupID == thread.GroupID {
			return false, nil
		}
	}
	if thread.ThreadID == "" {
		thread.ThreadID = m.s.nextID("thr")
	}
	thread.CreatedAt = time.Now()
	c := *thread
	c.Participants = nil
	m.s.threads[thread.ThreadID] = &c
	return true, nil
}

func (m *mockDiscussionRepo) AddParticipants(_ context.Context, participants []model.DiscussionParticipant) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, p := range participants {
		dup := false
		for _, existing := range m.s.participants {
			if existing.ThreadID == p.ThreadID && existing.UserID == p.UserID {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		c := p
		c.ParticipantID = m.s.nextID("par")
		c.JoinedAt = time.Now()
		m.s.participants = append(m.s.participants, &c)
	}
	return nil
}

func (m *mockDiscussionRepo) IsParticipant(_ context.Context, threadID, userID string) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, p := range m.s.participants {
		if p.ThreadID == threadID && p.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockDiscussionRepo) ListParticipants(_ context.Context, threadID string) ([]model.DiscussionParticipant, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.participantsOf(threadID), nil
}

func (m *mockDiscussionRepo) CreateMessage(_ context.Context, msg *model.DiscussionMessage) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if msg.MessageID == "" {
		msg.MessageID = m.s.nextID("msg")
	}
	msg.CreatedAt = time.Now()
	c := *msg
	m.s.messages = append(m.s.messages, &c)
	return nil
}

func (m *mockDiscussionRepo) ListMessages(_ context.Context, threadID string, offset, limit int) ([]model.DiscussionMessage, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var all []model.DiscussionMessage
	for _, msg := range m.s.messages {
		if msg.ThreadID == threadID {
			all = append(all, *msg)
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct{ s *memStore }

func (m *mockNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if n.NotificationID == "" {
		n.NotificationID = m.s.nextID("ntf")
	}
	n.CreatedAt = time.Now()
	c := *n
	m.s.notifications = append(m.s.notifications, &c)
	return nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var all []model.Notification
	for _, n := range m.s.notifications {
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		all = append(all, *n)
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, notificationID, userID string) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, n := range m.s.notifications {
		if n.NotificationID == notificationID && n.UserID == userID {
			n.IsRead = true
			return true, nil
		}
	}
	return false, nil
}

// ── 通知记录器 ──

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []Message
	err  error
}

func (r *recordingNotifier) Notify(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return r.err
}

func (r *recordingNotifier) byType(typ string) []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []Message
	for _, m := range r.msgs {
		if m.Type == typ {
			result = append(result, m)
		}
	}
	return result
}

func (r *recordingNotifier) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = nil
}
