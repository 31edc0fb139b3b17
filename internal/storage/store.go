// Package storage is the gorm-backed persistence behind every engine port.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"

	"github.com/s/coursehub/internal/apperror"
	"github.com/s/coursehub/internal/ident"
	"github.com/s/coursehub/internal/ports"
)

// Store implements the engine's persistence ports on one gorm connection.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

var (
	_ ports.CourseStore      = (*Store)(nil)
	_ ports.InstructorLookup = (*Store)(nil)
	_ ports.AssignmentStore  = (*Store)(nil)
	_ ports.ReviewStore      = (*Store)(nil)
	_ ports.EnrollmentStore  = (*Store)(nil)
	_ ports.DecisionLog      = (*Store)(nil)
	_ ports.MessageStore     = (*Store)(nil)
)

func New(db *gorm.DB, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// DB exposes the underlying connection for session and user lookups.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// where applies a squirrel predicate to a gorm query.
func where(tx *gorm.DB, pred sq.Sqlizer) (*gorm.DB, error) {
	query, args, err := pred.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build filter: %w", err)
	}
	return tx.Where(query, args...), nil
}

// courseFilter matches a stored course by either id form.
func courseFilter(id string) (sq.Sqlizer, bool) {
	n := ident.Classify(id)
	switch n.Kind {
	case ident.KindDocument:
		return sq.Eq{"document_id": n.Value}, true
	case ident.KindLegacy:
		v, err := strconv.ParseInt(n.Value, 10, 64)
		if err != nil {
			return nil, false
		}
		return sq.Eq{"legacy_id": v}, true
	default:
		return nil, false
	}
}

// mapError converts driver errors into apperror kinds.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperror.Wrap(apperror.ErrNotFound, op, err)
	case isDuplicate(err):
		return apperror.Wrap(apperror.ErrConflict, op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "duplicate") || strings.Contains(low, "unique")
}

func (s *Store) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
