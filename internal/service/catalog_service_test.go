package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/uniplanner-api/internal/curriculum"
	"github.com/noah-isme/uniplanner-api/internal/models"
	appErrors "github.com/noah-isme/uniplanner-api/pkg/errors"
)

func TestCatalogServiceListFilters(t *testing.T) {
	svc, _ := newTestCatalog()
	ctx := context.Background()

	all, err := svc.List(ctx, models.CourseFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 6)

	second, err := svc.List(ctx, models.CourseFilter{Semester: 2})
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, "B1", second[0].Code)

	found, err := svc.List(ctx, models.CourseFilter{Search: "calculo"})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Cálculo Diferencial", found[0].Name)

	combined, err := svc.List(ctx, models.CourseFilter{Search: "CÁLCULO", Semester: 2})
	require.NoError(t, err)
	require.Len(t, combined, 1)
	assert.Equal(t, "B1", combined[0].Code)
}

func TestCatalogServiceGetResolvesSlots(t *testing.T) {
	svc, _ := newTestCatalog()
	ctx := context.Background()

	course, err := svc.Get(ctx, "B1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A1"}, []string(course.Prerequisites))

	slot, err := svc.Get(ctx, testFreeElective+"#3")
	require.NoError(t, err)
	assert.Equal(t, testFreeElective+"#3", slot.Code)
	assert.Equal(t, "Electiva Libre", slot.Name)

	_, err = svc.Get(ctx, "B1#2")
	assert.ErrorIs(t, err, appErrors.ErrCourseNotFound)

	_, err = svc.Get(ctx, "ZZ9")
	assert.ErrorIs(t, err, appErrors.ErrCourseNotFound)
}

func TestCatalogServiceSnapshotTTL(t *testing.T) {
	svc, repo := newTestCatalog()
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	_, err := svc.Index(ctx)
	require.NoError(t, err)
	_, err = svc.Index(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls)

	now = now.Add(2 * time.Hour)
	idx, err := svc.Index(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
	assert.Equal(t, 6, idx.Len())

	require.NoError(t, svc.Invalidate(ctx))
	_, err = svc.Index(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, repo.calls)
}

func TestCatalogServiceUsesCache(t *testing.T) {
	cacheRepo := newMemoryCacheRepo()
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	repo := &courseRepoStub{courses: testCourses()}
	ctx := context.Background()

	first := NewCatalogService(repo, curriculum.DefaultPolicy(), cache, nil, time.Hour, zap.NewNop())
	_, err := first.Index(ctx)
	require.NoError(t, err)
	assert.Contains(t, cacheRepo.entries, catalogCacheKey)

	second := NewCatalogService(repo, curriculum.DefaultPolicy(), cache, nil, time.Hour, zap.NewNop())
	course, err := second.Get(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, 9, course.RequiredCredits)
	assert.Equal(t, 1, repo.calls)

	require.NoError(t, second.Invalidate(ctx))
	assert.NotContains(t, cacheRepo.entries, catalogCacheKey)
}

func TestCatalogServiceCacheFailureFallsBackAndWarns(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	cache := NewCacheService(&failingCacheRepo{memoryCacheRepo{entries: map[string][]byte{}}}, nil, time.Minute, zap.NewNop(), true)
	repo := &courseRepoStub{courses: testCourses()}
	svc := NewCatalogService(repo, curriculum.DefaultPolicy(), cache, nil, time.Hour, zap.New(core))

	_, err := svc.Index(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, 1, logs.FilterMessage("catalog cache read failed, loading from database").Len())
}

func TestCatalogServiceRepositoryError(t *testing.T) {
	repo := &courseRepoStub{err: errors.New("connection refused")}
	svc := NewCatalogService(repo, curriculum.Policy{}, nil, nil, 0, nil)

	_, err := svc.Index(context.Background())
	requireAppErrorCode(t, err, appErrors.ErrInternal.Code)
}
