package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/hvac-service-desk/internal/domain"
	"github.com/spec-kit/hvac-service-desk/internal/repository"
)

// In-memory repository doubles that mirror the store semantics the services
// rely on: pgx.ErrNoRows for misses, 23505 for uniqueness violations, and a
// history entry written alongside every status change.

type mockRequestRepo struct {
	mu            sync.Mutex
	nextID        int64
	nextHistoryID int64
	requests      map[int64]*domain.Request
	history       map[int64][]domain.StatusHistoryEntry
}

func newMockRequestRepo() *mockRequestRepo {
	return &mockRequestRepo{
		requests: make(map[int64]*domain.Request),
		history:  make(map[int64][]domain.StatusHistoryEntry),
	}
}

func (m *mockRequestRepo) Create(_ context.Context, request *domain.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.requests {
		if existing.Number == request.Number {
			return &pgconn.PgError{Code: "23505", ConstraintName: "requests_request_number_key"}
		}
	}

	m.nextID++
	request.ID = m.nextID
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now()
	}
	stored := *request
	m.requests[request.ID] = &stored
	m.appendHistoryLocked(request.ID, nil, request.Status, nil)
	return nil
}

func (m *mockRequestRepo) CountByNumberPrefix(_ context.Context, prefix string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, request := range m.requests {
		if strings.HasPrefix(request.Number, prefix) {
			count++
		}
	}
	return count, nil
}

func (m *mockRequestRepo) GetByID(_ context.Context, id int64) (*domain.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	request, ok := m.requests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *request
	return &copied, nil
}

func (m *mockRequestRepo) List(_ context.Context, filter repository.RequestFilter) ([]domain.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []domain.Request
	for _, request := range m.requests {
		if filter.Status != nil && request.Status != *filter.Status {
			continue
		}
		if filter.AssignedTo != nil && (request.AssignedTo == nil || *request.AssignedTo != *filter.AssignedTo) {
			continue
		}
		if filter.Search != nil {
			needle := strings.ToLower(strings.TrimSpace(*filter.Search))
			haystack := strings.ToLower(request.Number + " " + request.CustomerName + " " + request.CustomerPhone)
			if needle != "" && !strings.Contains(haystack, needle) {
				continue
			}
		}
		if filter.DateFrom != nil && request.CreatedAt.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && request.CreatedAt.After(filter.DateTo.Add(24*time.Hour)) {
			continue
		}
		result = append(result, *request)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *mockRequestRepo) UpdateFields(_ context.Context, id int64, update repository.RequestUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	request, ok := m.requests[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if update.EquipmentType != nil {
		request.EquipmentType = *update.EquipmentType
	}
	if update.DeviceModel != nil {
		request.DeviceModel = *update.DeviceModel
	}
	if update.FaultType != nil {
		request.FaultType = *update.FaultType
	}
	if update.ProblemDescription != nil {
		request.ProblemDescription = *update.ProblemDescription
	}
	if update.CustomerName != nil {
		request.CustomerName = *update.CustomerName
	}
	if update.CustomerPhone != nil {
		request.CustomerPhone = *update.CustomerPhone
	}
	if update.EstimatedCost != nil {
		request.EstimatedCost = *update.EstimatedCost
	}
	if update.ActualCost != nil {
		request.ActualCost = update.ActualCost
	}
	if update.Deadline != nil {
		request.Deadline = update.Deadline
	}
	return nil
}

func (m *mockRequestRepo) SetStatus(_ context.Context, id int64, newStatus domain.RequestStatus, completedAt *time.Time, changedBy *int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	request, ok := m.requests[id]
	if !ok {
		return pgx.ErrNoRows
	}
	oldStatus := request.Status
	request.Status = newStatus
	request.CompletedAt = completedAt
	m.appendHistoryLocked(id, &oldStatus, newStatus, changedBy)
	return nil
}

func (m *mockRequestRepo) Assign(_ context.Context, id, technicianID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	request, ok := m.requests[id]
	if !ok {
		return pgx.ErrNoRows
	}
	request.AssignedTo = &technicianID
	return nil
}

func (m *mockRequestRepo) SetAssistant(_ context.Context, id, technicianID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	request, ok := m.requests[id]
	if !ok {
		return pgx.ErrNoRows
	}
	request.AssistantID = &technicianID
	return nil
}

func (m *mockRequestRepo) ExtendDeadline(_ context.Context, id int64, newDeadline time.Time, reason, approval string, approvedAt time.Time, extendedBy int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	request, ok := m.requests[id]
	if !ok {
		return pgx.ErrNoRows
	}
	request.ExtendedDeadline = &newDeadline
	request.ExtensionReason = &reason
	request.ClientApproval = &approval
	request.ClientApprovalAt = &approvedAt
	request.ExtendedBy = &extendedBy
	return nil
}

// ListByRequest makes the mock double as the StatusHistoryRepository:
// entries come back newest first, matching the store.
func (m *mockRequestRepo) ListByRequest(_ context.Context, requestID int64) ([]domain.StatusHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := append([]domain.StatusHistoryEntry{}, m.history[requestID]...)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ID > entries[j].ID
	})
	return entries, nil
}

func (m *mockRequestRepo) appendHistoryLocked(requestID int64, oldStatus *domain.RequestStatus, newStatus domain.RequestStatus, changedBy *int64) {
	m.nextHistoryID++
	m.history[requestID] = append(m.history[requestID], domain.StatusHistoryEntry{
		ID:        m.nextHistoryID,
		RequestID: requestID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		ChangedBy: changedBy,
		ChangedAt: time.Now(),
	})
}

type mockUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]*domain.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Username == user.Username {
			return &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}
		}
	}
	m.nextID++
	user.ID = m.nextID
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) Update(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockUserRepo) List(_ context.Context, role *domain.Role) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []domain.User
	for _, user := range m.users {
		if !user.Active {
			continue
		}
		if role != nil && user.Role != *role {
			continue
		}
		result = append(result, *user)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].FullName < result[j].FullName
	})
	return result, nil
}

type mockHelpRepo struct {
	mu       sync.Mutex
	nextID   int64
	helps    map[int64]*domain.HelpRequest
	requests *mockRequestRepo
	users    *mockUserRepo
}

func newMockHelpRepo(requests *mockRequestRepo, users *mockUserRepo) *mockHelpRepo {
	return &mockHelpRepo{
		helps:    make(map[int64]*domain.HelpRequest),
		requests: requests,
		users:    users,
	}
}

func (m *mockHelpRepo) Create(_ context.Context, help *domain.HelpRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	help.ID = m.nextID
	if help.CreatedAt.IsZero() {
		help.CreatedAt = time.Now()
	}
	stored := *help
	m.helps[help.ID] = &stored
	return nil
}

func (m *mockHelpRepo) GetByID(_ context.Context, id int64) (*domain.HelpRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	help, ok := m.helps[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *help
	return &copied, nil
}

func (m *mockHelpRepo) ListOpen(ctx context.Context) ([]domain.OpenHelpRequest, error) {
	m.mu.Lock()
	helps := make([]*domain.HelpRequest, 0, len(m.helps))
	for _, help := range m.helps {
		if help.Status == domain.HelpRequestOpen {
			copied := *help
			helps = append(helps, &copied)
		}
	}
	m.mu.Unlock()

	sort.Slice(helps, func(i, j int) bool { return helps[i].ID > helps[j].ID })

	var result []domain.OpenHelpRequest
	for _, help := range helps {
		entry := domain.OpenHelpRequest{
			HelpID:      help.ID,
			RequestID:   help.RequestID,
			Message:     help.Message,
			CreatedAt:   help.CreatedAt,
			RequestedBy: help.RequestedBy,
		}
		if request, err := m.requests.GetByID(ctx, help.RequestID); err == nil {
			entry.RequestNumber = request.Number
			entry.RequestStatus = request.Status
			entry.Deadline = request.Deadline
			entry.ExtendedDeadline = request.ExtendedDeadline
			entry.AssignedTo = request.AssignedTo
			entry.AssistantID = request.AssistantID
		}
		if user, err := m.users.GetByID(ctx, help.RequestedBy); err == nil {
			entry.RequestedByName = user.FullName
		}
		result = append(result, entry)
	}
	return result, nil
}

func (m *mockHelpRepo) Resolve(_ context.Context, id, resolvedBy int64, note string, resolvedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	help, ok := m.helps[id]
	if !ok || help.Status != domain.HelpRequestOpen {
		return pgx.ErrNoRows
	}
	help.Status = domain.HelpRequestResolved
	help.ResolvedBy = &resolvedBy
	help.ResolvedAt = &resolvedAt
	if note != "" {
		help.ResolutionNote = &note
	}
	return nil
}

type mockCommentRepo struct {
	mu       sync.Mutex
	nextID   int64
	comments map[int64][]domain.Comment
}

func newMockCommentRepo() *mockCommentRepo {
	return &mockCommentRepo{comments: make(map[int64][]domain.Comment)}
}

func (m *mockCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	comment.ID = m.nextID
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	m.comments[comment.RequestID] = append(m.comments[comment.RequestID], *comment)
	return nil
}

func (m *mockCommentRepo) ListByRequest(_ context.Context, requestID int64) ([]domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := append([]domain.Comment{}, m.comments[requestID]...)
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

type mockEquipmentRepo struct {
	types []domain.EquipmentType
}

func newMockEquipmentRepo() *mockEquipmentRepo {
	return &mockEquipmentRepo{types: []domain.EquipmentType{
		{ID: 1, Name: "Air conditioner", Description: "Split and window units"},
		{ID: 2, Name: "Refrigerator", Description: "Household and commercial"},
	}}
}

func (m *mockEquipmentRepo) List(_ context.Context) ([]domain.EquipmentType, error) {
	return append([]domain.EquipmentType{}, m.types...), nil
}
