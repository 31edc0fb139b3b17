// Package rating derives per-course rating summaries from a teacher's review pool.
package rating

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/s/coursehub/internal/domain"
	"github.com/s/coursehub/internal/ident"
	"github.com/s/coursehub/internal/ports"
)

// Summary is the average rating of a course and the number of reviews behind it.
type Summary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// CourseRating averages the reviews in pool that belong to course. A review
// matches when its course id names either the course id or its document id.
// No matching reviews yields the zero summary.
func CourseRating(course domain.Course, pool []domain.Review) Summary {
	sum, count := 0, 0
	for _, r := range pool {
		if !ident.MatchesRecord(r.CourseID, course.ID, course.DocumentID) {
			continue
		}
		sum += r.Rating
		count++
	}
	if count == 0 {
		return Summary{}
	}
	return Summary{Average: round1(float64(sum) / float64(count)), Count: count}
}

// ForInstructor rates course against its resolved instructor's pool. Courses
// without an instructor have no rating.
func ForInstructor(course domain.Course, instructor *domain.Instructor, pools Pools) Summary {
	if instructor == nil || instructor.TeacherID == "" {
		return Summary{}
	}
	return CourseRating(course, pools.For(instructor.TeacherID))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Pools holds review lists keyed by teacher identity.
type Pools map[string][]domain.Review

// For returns the pool of teacherID.
func (p Pools) For(teacherID string) []domain.Review {
	return p[ident.Key(teacherID)]
}

// Aggregator fetches review pools, one request per distinct teacher.
type Aggregator struct {
	reviews ports.ReviewStore
	timeout time.Duration
	logger  *slog.Logger
}

// NewAggregator wires the review source. A zero timeout leaves fetches bounded
// only by the caller's context.
func NewAggregator(reviews ports.ReviewStore, timeout time.Duration, logger *slog.Logger) *Aggregator {
	return &Aggregator{reviews: reviews, timeout: timeout, logger: logger}
}

// Fetch loads the pools of teacherIDs concurrently. A failed or timed-out
// fetch leaves that teacher with an empty pool.
func (a *Aggregator) Fetch(ctx context.Context, teacherIDs []string) Pools {
	pools := make(Pools)
	if a.reviews == nil {
		return pools
	}

	seen := make(map[string]bool)
	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	for _, id := range teacherIDs {
		key := ident.Key(id)
		if id == "" || seen[key] {
			continue
		}
		seen[key] = true

		teacherID := id
		g.Go(func() error {
			fetchCtx, cancel := a.bound(ctx)
			defer cancel()

			list, err := a.reviews.FetchReviewsForTeacher(fetchCtx, teacherID)
			if err != nil {
				if a.logger != nil {
					a.logger.Warn("fetch reviews", "teacher", teacherID, "error", err)
				}
				list = nil
			}

			mu.Lock()
			pools[key] = list
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return pools
}

func (a *Aggregator) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}
