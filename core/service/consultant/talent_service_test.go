package consultant

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talent_server/core/domain"
	"talent_server/core/port/in"
	"talent_server/core/port/out"
	"talent_server/pkg/apperr"
)

// =============================================================================
// Fakes
// =============================================================================

type memoryRepo struct {
	mu      sync.Mutex
	records map[string]*domain.Consultant
	nextID  int
	failOn  string
	filter  *domain.SearchFilter
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: make(map[string]*domain.Consultant)}
}

func (r *memoryRepo) fail(op string) error {
	if r.failOn == op {
		return errors.New("connection refused")
	}
	return nil
}

func (r *memoryRepo) Create(_ context.Context, c *domain.Consultant) (*domain.Consultant, error) {
	if err := r.fail("create"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	stored := *c
	stored.ID = "c" + string(rune('0'+r.nextID))
	r.records[stored.ID] = &stored
	cp := stored
	return &cp, nil
}

func (r *memoryRepo) Update(_ context.Context, id string, patch *domain.Patch) (*domain.Consultant, error) {
	if err := r.fail("update"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.records[id]
	if !ok {
		return nil, out.ErrNotFound
	}
	patch.ApplyTo(c)
	cp := *c
	return &cp, nil
}

func (r *memoryRepo) Delete(_ context.Context, id string) error {
	if err := r.fail("delete"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return out.ErrNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.Consultant, error) {
	if err := r.fail("get"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.records[id]
	if !ok {
		return nil, out.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memoryRepo) List(_ context.Context) ([]*domain.Consultant, error) {
	if err := r.fail("list"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*domain.Consultant, 0, len(r.records))
	for _, c := range r.records {
		cp := *c
		result = append(result, &cp)
	}
	return result, nil
}

func (r *memoryRepo) Search(ctx context.Context, filter *domain.SearchFilter) ([]*domain.Consultant, error) {
	r.filter = filter
	return r.List(ctx)
}

type recordingDispatcher struct {
	effects []domain.Effect
}

func (d *recordingDispatcher) Dispatch(_ context.Context, effects []domain.Effect) {
	d.effects = append(d.effects, effects...)
}

type fakeStorage struct {
	err   error
	names []string
}

func (s *fakeStorage) Upload(_ context.Context, name string, _ []byte, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.names = append(s.names, name)
	return "https://cdn.example.com/cvs/" + name, nil
}

func newTestService(repo *memoryRepo, storage out.FileStoragePort) (*Service, *recordingDispatcher) {
	d := &recordingDispatcher{}
	s := NewService(repo, storage, d).WithClock(func() time.Time { return fixedNow })
	return s, d
}

// =============================================================================
// Tests
// =============================================================================

func TestService_CreateNotifiesAssignee(t *testing.T) {
	repo := newMemoryRepo()
	svc, d := newTestService(repo, nil)
	actor := &domain.Actor{ID: "u1", Name: "Alice"}

	created, err := svc.Create(context.Background(), actor, domain.RawInput{
		"name":         "Jean",
		"commercialId": "u2",
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, "c1", created.ID)
	assert.Equal(t, "u1", *created.CreatedBy)
	require.Len(t, d.effects, 2)
	assert.Equal(t, "u2", d.effects[0].Notification.RecipientID)
	assert.Equal(t, "c1", d.effects[0].Notification.EntityID)
	assert.Equal(t, domain.EventConsultantCreated, d.effects[1].Event)
}

func TestService_CreateFailureDispatchesNothing(t *testing.T) {
	repo := newMemoryRepo()
	repo.failOn = "create"
	svc, d := newTestService(repo, nil)

	_, err := svc.Create(context.Background(), nil, domain.RawInput{"name": "Jean"}, nil)

	assert.True(t, apperr.IsKind(err, apperr.KindUpstreamWriteFailure))
	assert.Empty(t, d.effects)
}

func TestService_UpdateReassignment(t *testing.T) {
	repo := newMemoryRepo()
	svc, d := newTestService(repo, nil)
	ctx := context.Background()
	alice := &domain.Actor{ID: "u1", Name: "Alice"}

	created, err := svc.Create(ctx, alice, domain.RawInput{"name": "Jean", "commercialId": "u1"}, nil)
	require.NoError(t, err)
	d.effects = nil

	updated, err := svc.Update(ctx, alice, created.ID, domain.RawInput{"commercialId": "u2"}, nil)

	require.NoError(t, err)
	assert.Equal(t, "u2", *updated.CommercialID)
	assert.Equal(t, "Jean", *updated.Name)
	require.Len(t, d.effects, 2)
	assert.Equal(t, "Alice vous a assigné Jean.", d.effects[0].Notification.Message)
	assert.Equal(t, domain.EventConsultantUpdated, d.effects[1].Event)
}

func TestService_UpdateKeepsAvailabilityStatus(t *testing.T) {
	repo := newMemoryRepo()
	svc, d := newTestService(repo, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, nil, domain.RawInput{
		"name":         "Jean",
		"commercialId": "u2",
		"availability": `{"status":"unavailable"}`,
	}, nil)
	require.NoError(t, err)
	d.effects = nil

	updated, err := svc.Update(ctx, nil, created.ID, domain.RawInput{"availability": `{"date":"2026-01-01"}`}, nil)

	require.NoError(t, err)
	assert.Equal(t, domain.AvailabilityUnavailable, updated.Availability.Status)
	assert.Equal(t, "2026-01-01", *updated.Availability.Date)
	require.Len(t, d.effects, 1)
	assert.Equal(t, domain.EffectBroadcast, d.effects[0].Kind)
}

func TestService_UpdateMissing(t *testing.T) {
	svc, d := newTestService(newMemoryRepo(), nil)

	_, err := svc.Update(context.Background(), nil, "nope", domain.RawInput{"name": "X"}, nil)

	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	assert.Equal(t, 404, apperr.GetHTTPStatus(err))
	assert.Empty(t, d.effects)
}

func TestService_DeleteReturnsRecord(t *testing.T) {
	repo := newMemoryRepo()
	svc, d := newTestService(repo, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, nil, domain.RawInput{"name": "Jean"}, nil)
	require.NoError(t, err)
	d.effects = nil

	deleted, err := svc.Delete(ctx, created.ID)

	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)
	assert.Equal(t, "Jean", *deleted.Name)
	require.Len(t, d.effects, 1)
	assert.Equal(t, domain.EventConsultantDeleted, d.effects[0].Event)
	assert.Equal(t, created.ID, d.effects[0].Payload.ID)

	_, err = svc.Get(ctx, created.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestService_DeleteMissing(t *testing.T) {
	svc, d := newTestService(newMemoryRepo(), nil)

	_, err := svc.Delete(context.Background(), "nope")

	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	assert.Empty(t, d.effects)
}

func TestService_ReadFailures(t *testing.T) {
	repo := newMemoryRepo()
	repo.failOn = "list"
	svc, _ := newTestService(repo, nil)

	_, err := svc.List(context.Background())
	assert.True(t, apperr.IsKind(err, apperr.KindUpstreamReadFailure))

	repo.failOn = "get"
	_, err = svc.Get(context.Background(), "c1")
	assert.True(t, apperr.IsKind(err, apperr.KindUpstreamReadFailure))
}

func TestService_SearchStampsActorAndClock(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo, nil)

	_, err := svc.Search(context.Background(), &domain.Actor{ID: "u7"}, &domain.SearchFilter{Search: "java"})

	require.NoError(t, err)
	require.NotNil(t, repo.filter)
	assert.Equal(t, "u7", repo.filter.ActorID)
	assert.Equal(t, fixedNow, repo.filter.Now)
	assert.Equal(t, "java", repo.filter.Search)
}

func TestService_CVUpload(t *testing.T) {
	repo := newMemoryRepo()
	storage := &fakeStorage{}
	svc, _ := newTestService(repo, storage)
	ctx := context.Background()
	cv := &in.CVFile{Filename: "resume.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")}

	created, err := svc.Create(ctx, nil, domain.RawInput{"name": "Jean"}, cv)
	require.NoError(t, err)
	require.NotNil(t, created.CVFileURL)
	millis := "1710493200000"
	assert.Equal(t, "consultant-cv-"+millis+"-"+millis+".pdf", storage.names[0])

	updated, err := svc.Update(ctx, nil, created.ID, domain.RawInput{}, cv)
	require.NoError(t, err)
	assert.Equal(t, "consultant-cv-"+created.ID+"-"+millis+".pdf", storage.names[1])
	assert.Equal(t, "https://cdn.example.com/cvs/"+storage.names[1], *updated.CVFileURL)
}

func TestService_CVUploadFailureIsNonFatal(t *testing.T) {
	repo := newMemoryRepo()
	storage := &fakeStorage{err: errors.New("bucket unavailable")}
	svc, d := newTestService(repo, storage)
	cv := &in.CVFile{Filename: "resume.pdf", Data: []byte("%PDF-1.4")}

	created, err := svc.Create(context.Background(), nil, domain.RawInput{
		"name":      "Jean",
		"cvFileUrl": "https://old.example.com/cv.pdf",
	}, cv)

	require.NoError(t, err)
	assert.Equal(t, "https://old.example.com/cv.pdf", *created.CVFileURL)
	assert.NotEmpty(t, d.effects)

	updated, err := svc.Update(context.Background(), nil, created.ID, domain.RawInput{}, cv)
	require.NoError(t, err)
	assert.Equal(t, "https://old.example.com/cv.pdf", *updated.CVFileURL)
}

func TestCVExtensionFallsBackToContent(t *testing.T) {
	cv := &in.CVFile{Filename: "resume", Data: []byte("%PDF-1.4\n")}
	assert.Equal(t, "pdf", cvExtension(cv))
	assert.Equal(t, "application/pdf", cvContentType(cv))

	cv = &in.CVFile{Filename: "notes", Data: []byte{0x00, 0x01, 0x02}}
	assert.Equal(t, "bin", cvExtension(cv))
}
