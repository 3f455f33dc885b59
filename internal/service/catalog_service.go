package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/uniplanner-api/internal/curriculum"
	"github.com/noah-isme/uniplanner-api/internal/models"
	appErrors "github.com/noah-isme/uniplanner-api/pkg/errors"
)

const catalogCacheKey = "catalog:courses"

type courseStore interface {
	ListAll(ctx context.Context) ([]models.Course, error)
}

type catalogSnapshot struct {
	index    *curriculum.Index
	courses  []models.Course
	byCode   map[string]models.Course
	loadedAt time.Time
}

// CatalogService serves the pensum and the curriculum index built from it.
// The catalog is loaded once per TTL, from Redis when available.
type CatalogService struct {
	repo    courseStore
	policy  curriculum.Policy
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	ttl     time.Duration
	now     func() time.Time

	mu       sync.RWMutex
	snapshot *catalogSnapshot
}

func NewCatalogService(repo courseStore, policy curriculum.Policy, cache *CacheService, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CatalogService{repo: repo, policy: policy.WithDefaults(), cache: cache, metrics: metrics, logger: logger, ttl: ttl, now: time.Now}
}

// Index returns the curriculum index for the current catalog.
func (s *CatalogService) Index(ctx context.Context) (*curriculum.Index, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return snap.index, nil
}

// List filters the catalog by semester and an accent-insensitive search
// over code and name.
func (s *CatalogService) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	candidates := snap.courses
	if term := strings.TrimSpace(filter.Search); term != "" {
		matches := snap.index.Search(term)
		candidates = make([]models.Course, 0, len(matches))
		for _, c := range matches {
			candidates = append(candidates, snap.byCode[c.Code])
		}
	}

	result := make([]models.Course, 0, len(candidates))
	for _, c := range candidates {
		if filter.Semester > 0 && c.Semester != filter.Semester {
			continue
		}
		result = append(result, c)
	}
	return result, nil
}

// Get resolves a course code. Free-elective slot codes return the marker
// course carrying the slot code.
func (s *CatalogService) Get(ctx context.Context, code string) (*models.Course, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	resolved, err := snap.index.ByCode(code)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrCourseNotFound, "course "+code+" not found")
	}
	course := snap.byCode[curriculum.BaseCode(resolved.Code)]
	course.Code = resolved.Code
	return &course, nil
}

// Invalidate drops the in-process snapshot and the cached catalog.
func (s *CatalogService) Invalidate(ctx context.Context) error {
	s.mu.Lock()
	s.snapshot = nil
	s.mu.Unlock()
	return s.cache.Delete(ctx, catalogCacheKey)
}

func (s *CatalogService) load(ctx context.Context) (*catalogSnapshot, error) {
	s.mu.RLock()
	snap := s.snapshot
	s.mu.RUnlock()
	if snap != nil && s.now().Sub(snap.loadedAt) < s.ttl {
		return snap, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot != nil && s.now().Sub(s.snapshot.loadedAt) < s.ttl {
		return s.snapshot, nil
	}

	courses, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]models.Course, len(courses))
	for _, c := range courses {
		byCode[c.Code] = c
	}
	s.snapshot = &catalogSnapshot{
		index:    curriculum.Build(models.CoursesToCurriculum(courses), s.policy.FreeElectiveCode),
		courses:  courses,
		byCode:   byCode,
		loadedAt: s.now(),
	}
	return s.snapshot, nil
}

func (s *CatalogService) fetch(ctx context.Context) ([]models.Course, error) {
	var cached []models.Course
	hit, err := s.cache.Get(ctx, catalogCacheKey, &cached)
	if err != nil {
		s.logger.Warn("catalog cache read failed, loading from database", zap.Error(err))
	}
	if hit && len(cached) > 0 {
		return cached, nil
	}

	start := time.Now()
	courses, err := s.repo.ListAll(ctx)
	s.metrics.ObserveDBQuery("catalog_list", time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrServiceUnavailable, "course catalog is empty")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course catalog")
	}
	if err := curriculum.ValidateCatalog(models.CoursesToCurriculum(courses)); err != nil {
		s.logger.Warn("catalog contains invalid courses", zap.Error(err))
	}
	if len(courses) > 0 {
		if err := s.cache.Set(ctx, catalogCacheKey, courses, s.ttl); err != nil {
			s.logger.Warn("catalog cache write failed", zap.Error(err))
		}
	}
	return courses, nil
}
