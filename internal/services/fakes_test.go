package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"eventhub/internal/domain"
)

// fakeTransactor serializes WithinTx calls with a mutex, standing in for the
// per-event row lock the Postgres transactor provides. It records whether
// the last unit of work failed, i.e. would have rolled back.
type fakeTransactor struct {
	mu         sync.Mutex
	rolledBack bool
}

func (t *fakeTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := fn(ctx); err != nil {
		t.rolledBack = true
		return err
	}
	return nil
}

type fakeEventRepo struct {
	mu       sync.Mutex
	nextID   int
	events   map[int]*domain.Event
	images   map[int][]string
	attended map[int][]*domain.Event
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		events:   map[int]*domain.Event{},
		images:   map[int][]string{},
		attended: map[int][]*domain.Event{},
	}
}

func (r *fakeEventRepo) Create(ctx context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	event.ID = r.nextID
	copied := *event
	r.events[event.ID] = &copied
	return nil
}

func (r *fakeEventRepo) GetByID(ctx context.Context, id int) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok || e.IsDeleted {
		return nil, domain.ErrNotFound
	}
	copied := *e
	return &copied, nil
}

func (r *fakeEventRepo) GetByIDForUpdate(ctx context.Context, id int) (*domain.Event, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeEventRepo) Update(ctx context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[event.ID]
	if !ok || e.IsDeleted {
		return domain.ErrNotFound
	}
	copied := *event
	r.events[event.ID] = &copied
	return nil
}

func (r *fakeEventRepo) SoftDelete(ctx context.Context, id int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok || e.IsDeleted {
		return false, nil
	}
	e.IsDeleted = true
	return true, nil
}

func (r *fakeEventRepo) live() []*domain.Event {
	events := make([]*domain.Event, 0, len(r.events))
	for _, e := range r.events {
		if !e.IsDeleted {
			events = append(events, e)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].StartTime.Equal(events[j].StartTime) {
			return events[i].StartTime.After(events[j].StartTime)
		}
		return events[i].ID > events[j].ID
	})
	return events
}

func (r *fakeEventRepo) page(events []*domain.Event, params domain.PaginationParams) *domain.EventPage {
	page := &domain.EventPage{Events: []*domain.EventWithImages{}, Total: len(events)}
	start := params.Offset()
	for i := start; i < len(events) && i < start+params.PageSize; i++ {
		e := *events[i]
		urls := r.images[e.ID]
		if urls == nil {
			urls = []string{}
		}
		page.Events = append(page.Events, &domain.EventWithImages{Event: e, ImageURLs: urls})
	}
	return page
}

func (r *fakeEventRepo) ListPage(ctx context.Context, params domain.PaginationParams) (*domain.EventPage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.page(r.live(), params), nil
}

func (r *fakeEventRepo) ListPageByStatus(ctx context.Context, params domain.PaginationParams, filter domain.EventStatusFilter, now time.Time) (*domain.EventPage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matching := make([]*domain.Event, 0)
	for _, e := range r.live() {
		switch filter {
		case domain.EventStatusUpcoming:
			if e.StartTime.After(now) {
				matching = append(matching, e)
			}
		case domain.EventStatusOngoing:
			if !e.StartTime.After(now) && !e.EndTime.Before(now) {
				matching = append(matching, e)
			}
		case domain.EventStatusPast:
			if e.EndTime.Before(now) {
				matching = append(matching, e)
			}
		}
	}
	return r.page(matching, params), nil
}

func (r *fakeEventRepo) ListAttendedByUser(ctx context.Context, userID int) ([]*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := r.attended[userID]
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

type regKey struct {
	userID  int
	eventID int
}

type fakeRegistrationRepo struct {
	mu   sync.Mutex
	regs map[regKey]*domain.Registration
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{regs: map[regKey]*domain.Registration{}}
}

func (r *fakeRegistrationRepo) Upsert(ctx context.Context, reg *domain.Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := regKey{userID: reg.UserID, eventID: reg.EventID}
	if existing, ok := r.regs[key]; ok {
		existing.Status = reg.Status
		existing.UpdatedAt = reg.UpdatedAt
		return nil
	}
	copied := *reg
	r.regs[key] = &copied
	return nil
}

func (r *fakeRegistrationRepo) GetByEventAndUser(ctx context.Context, eventID, userID int) (*domain.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.regs[regKey{userID: userID, eventID: eventID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *reg
	return &copied, nil
}

func (r *fakeRegistrationRepo) CountActiveByEvent(ctx context.Context, eventID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for key, reg := range r.regs {
		if key.eventID == eventID && reg.Status.Active() {
			count++
		}
	}
	return count, nil
}

func (r *fakeRegistrationRepo) UpdateStatus(ctx context.Context, eventID, userID int, status domain.RegistrationStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.regs[regKey{userID: userID, eventID: eventID}]
	if !ok {
		return domain.ErrNotFound
	}
	reg.Status = status
	reg.UpdatedAt = time.Now()
	return nil
}

func (r *fakeRegistrationRepo) MarkRegisteredAsPredicted(ctx context.Context, eventID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	changed := 0
	for key, reg := range r.regs {
		if key.eventID == eventID && reg.Status == domain.StatusRegistered {
			reg.Status = domain.StatusAttendedPredicted
			changed++
		}
	}
	return changed, nil
}

func (r *fakeRegistrationRepo) ListByEvent(ctx context.Context, eventID int) ([]*domain.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	regs := make([]*domain.Registration, 0)
	for key, reg := range r.regs {
		if key.eventID == eventID {
			copied := *reg
			regs = append(regs, &copied)
		}
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].UserID < regs[j].UserID })
	return regs, nil
}

type attendanceKey struct {
	eventID int
	userID  int
}

type fakeImageService struct {
	mu         sync.Mutex
	urls       map[int][]string
	attendance map[attendanceKey][]*domain.AttendanceImage
	nextAttID  int
	storeErr   error
	deletes    []int
}

func newFakeImageService() *fakeImageService {
	return &fakeImageService{
		urls:       map[int][]string{},
		attendance: map[attendanceKey][]*domain.AttendanceImage{},
	}
}

func (s *fakeImageService) Store(ctx context.Context, eventID int, uploads []domain.ImageUpload) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.storeErr != nil {
		return nil, s.storeErr
	}
	urls := make([]string, 0, len(uploads))
	for _, up := range uploads {
		urls = append(urls, "https://storage.test/"+up.Filename)
	}
	s.urls[eventID] = append(s.urls[eventID], urls...)
	return urls, nil
}

func (s *fakeImageService) DeleteAll(ctx context.Context, eventID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, eventID)
	delete(s.urls, eventID)
	return nil
}

func (s *fakeImageService) ListURLs(ctx context.Context, eventID int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	urls := s.urls[eventID]
	if urls == nil {
		urls = []string{}
	}
	return urls, nil
}

func (s *fakeImageService) StoreAttendance(ctx context.Context, eventID, userID int, up domain.ImageUpload) (*domain.AttendanceImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.storeErr != nil {
		return nil, s.storeErr
	}
	s.nextAttID++
	img := &domain.AttendanceImage{
		ID:        s.nextAttID,
		UserID:    userID,
		EventID:   eventID,
		ImageURL:  "https://storage.test/attendance/" + up.Filename,
		CreatedAt: time.Now(),
	}
	key := attendanceKey{eventID: eventID, userID: userID}
	s.attendance[key] = append(s.attendance[key], img)
	return img, nil
}

func (s *fakeImageService) ListAttendance(ctx context.Context, eventID, userID int) ([]*domain.AttendanceImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	images := s.attendance[attendanceKey{eventID: eventID, userID: userID}]
	if images == nil {
		images = []*domain.AttendanceImage{}
	}
	return images, nil
}

type fakeNotificationService struct {
	mu           sync.Mutex
	broadcasts   map[int]string
	retracted    []int
	broadcastErr error
}

func newFakeNotificationService() *fakeNotificationService {
	return &fakeNotificationService{broadcasts: map[int]string{}}
}

func (s *fakeNotificationService) Broadcast(ctx context.Context, eventID int, imageURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.broadcastErr != nil {
		return s.broadcastErr
	}
	s.broadcasts[eventID] = imageURL
	return nil
}

func (s *fakeNotificationService) Retract(ctx context.Context, eventID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retracted = append(s.retracted, eventID)
	return nil
}

func (s *fakeNotificationService) ListForUser(ctx context.Context, userID int) ([]*domain.Notification, error) {
	return []*domain.Notification{}, nil
}

func (s *fakeNotificationService) MarkRead(ctx context.Context, userID, notificationID int) error {
	return nil
}
