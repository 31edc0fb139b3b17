// Package engine is the facade the presentation tier talks to. It pulls the
// course sources together, applies moderation and attribution, computes
// ratings on every read and routes every mutation through the stores.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/s/coursehub/internal/apperror"
	"github.com/s/coursehub/internal/attribution"
	"github.com/s/coursehub/internal/domain"
	"github.com/s/coursehub/internal/moderation"
	"github.com/s/coursehub/internal/ports"
	"github.com/s/coursehub/internal/rating"
	"github.com/s/coursehub/internal/synccache"
)

// DefaultFetchTimeout bounds a single read from a collaborator.
const DefaultFetchTimeout = 5 * time.Second

// Deps wires the collaborators into the service. Any read-side collaborator
// may be nil; it is then treated as an empty source.
type Deps struct {
	Seed        ports.SeedCatalog
	Courses     ports.CourseStore
	Lookup      ports.InstructorLookup
	Assignments ports.AssignmentStore
	Reviews     ports.ReviewStore
	Enrollments ports.EnrollmentStore
	Decisions   ports.DecisionLog
	Messages    ports.MessageStore

	Logger       *slog.Logger
	FetchTimeout time.Duration
	CacheTTL     time.Duration
	Clock        func() time.Time
}

// Service implements the course operations.
type Service struct {
	seed        ports.SeedCatalog
	courses     ports.CourseStore
	assignments ports.AssignmentStore
	reviews     ports.ReviewStore
	enrollments ports.EnrollmentStore
	decisions   ports.DecisionLog
	messages    ports.MessageStore

	resolver   *attribution.Resolver
	aggregator *rating.Aggregator
	machine    *moderation.Machine

	messageCache  *synccache.Cache[domain.Message]
	progressCache *synccache.Cache[domain.Enrollment]

	validate *validator.Validate
	timeout  time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// New constructs the service.
func New(deps Deps) *Service {
	timeout := deps.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}

	return &Service{
		seed:          deps.Seed,
		courses:       deps.Courses,
		assignments:   deps.Assignments,
		reviews:       deps.Reviews,
		enrollments:   deps.Enrollments,
		decisions:     deps.Decisions,
		messages:      deps.Messages,
		resolver:      attribution.NewResolver(deps.Lookup, deps.Logger),
		aggregator:    rating.NewAggregator(deps.Reviews, timeout, deps.Logger),
		machine:       moderation.NewMachine(deps.Courses, deps.Decisions, deps.Logger).WithClock(now),
		messageCache:  synccache.New[domain.Message](deps.CacheTTL).WithClock(now),
		progressCache: synccache.New[domain.Enrollment](deps.CacheTTL).WithClock(now),
		validate:      newValidator(),
		timeout:       timeout,
		now:           now,
		logger:        deps.Logger,
	}
}

// bound limits one collaborator read.
func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// invalidate expires both sync caches. Every mutation of messages or progress
// calls it before touching the store and again once the store has answered.
func (s *Service) invalidate() {
	s.messageCache.Invalidate()
	s.progressCache.Invalidate()
}

func (s *Service) requireStore(op string) error {
	if s.courses == nil {
		return fmt.Errorf("%s: course store is not configured", op)
	}
	return nil
}

func requireRole(op string, actor domain.Actor, roles ...domain.Role) error {
	for _, r := range roles {
		if actor.Role == r {
			if actor.ID == "" && r != domain.RolePublic {
				break
			}
			return nil
		}
	}
	return apperror.Forbidden(op, "this action is not available for role %q", actor.Role)
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// check runs struct validation and converts failures into ValidationFailed
// with per-field details.
func (s *Service) check(op string, v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperror.Wrap(apperror.ErrValidationFailed, op, err)
	}

	typ := reflect.TypeOf(v)
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	details := make(map[string]string, len(fieldErrs))
	names := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := strings.TrimPrefix(fe.Namespace(), typ.Name()+".")
		details[field] = fe.Tag()
		names = append(names, field)
	}
	return &apperror.Error{
		Kind:    apperror.ErrValidationFailed,
		Op:      op,
		Reason:  "invalid fields: " + strings.Join(names, ", "),
		Details: details,
	}
}

func (s *Service) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func (s *Service) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *Service) info(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}
