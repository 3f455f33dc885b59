package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/uniplanner-api/internal/curriculum"
	"github.com/noah-isme/uniplanner-api/internal/models"
	appErrors "github.com/noah-isme/uniplanner-api/pkg/errors"
)

const testFreeElective = curriculum.DefaultFreeElectiveCode

func testCourses() []models.Course {
	return []models.Course{
		{Code: "A1", Name: "Cálculo Diferencial", Credits: 3, Semester: 1},
		{Code: "A2", Name: "Programación I", Credits: 3, Semester: 1},
		{Code: "B1", Name: "Cálculo Integral", Credits: 3, Semester: 2, Prerequisites: pq.StringArray{"A1"}},
		{Code: "B2", Name: "Programación II", Credits: 3, Semester: 2, Prerequisites: pq.StringArray{"A2"}},
		{Code: "C1", Name: "Bases de Datos", Credits: 4, Semester: 3, Prerequisites: pq.StringArray{"B2"}, RequiredCredits: 9},
		{Code: testFreeElective, Name: "Electiva Libre", Credits: 3, Semester: 4},
	}
}

type courseRepoStub struct {
	courses []models.Course
	err     error
	calls   int
}

func (r *courseRepoStub) ListAll(ctx context.Context) ([]models.Course, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.courses, nil
}

func newTestCatalog() (*CatalogService, *courseRepoStub) {
	repo := &courseRepoStub{courses: testCourses()}
	return NewCatalogService(repo, curriculum.DefaultPolicy(), nil, nil, time.Hour, zap.NewNop()), repo
}

// memoryCacheRepo stores JSON-encoded values like the Redis repository.
type memoryCacheRepo struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: map[string][]byte{}}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = map[string][]byte{}
	return nil
}

type recordCodesStub struct {
	approved   []string
	inProgress []string
	err        error
}

func (r recordCodesStub) ListCodes(ctx context.Context, userID string) ([]string, []string, error) {
	return r.approved, r.inProgress, r.err
}

func requireAppErrorCode(t *testing.T, err error, code string) *appErrors.Error {
	t.Helper()
	appErr := appErrors.FromError(err)
	if appErr == nil || appErr.Code != code {
		t.Fatalf("expected error code %s, got %v", code, err)
	}
	return appErr
}
