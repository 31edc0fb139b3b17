package storage

import (
	"context"
	"errors"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/datatypes"

	"github.com/s/coursehub/internal/apperror"
	"github.com/s/coursehub/internal/domain"
	"github.com/s/coursehub/internal/ident"
	"github.com/s/coursehub/internal/models"
)

func (s *Store) FetchAllCourses(ctx context.Context, includePending bool) ([]domain.Course, error) {
	const op = "fetch courses"
	filter := sq.And{}
	if !includePending {
		filter = append(filter, sq.Eq{"status": string(domain.StatusApproved)})
	}
	return s.findCourses(ctx, op, filter)
}

func (s *Store) FetchCoursesByTeacher(ctx context.Context, teacherID string) ([]domain.Course, error) {
	const op = "fetch teacher courses"
	if teacherID == "" {
		return []domain.Course{}, nil
	}
	return s.findCourses(ctx, op, sq.Eq{
		"author_id":       ident.Classify(teacherID).Value,
		"created_by_role": string(domain.RoleTeacher),
	})
}

func (s *Store) findCourses(ctx context.Context, op string, filter sq.Sqlizer) ([]domain.Course, error) {
	tx, err := where(s.conn(ctx), filter)
	if err != nil {
		return nil, mapError(op, err)
	}
	var rows []models.Course
	if err := tx.Order("created_at asc").Find(&rows).Error; err != nil {
		return nil, mapError(op, err)
	}
	out := make([]domain.Course, 0, len(rows))
	for _, row := range rows {
		out = append(out, courseFromRow(row))
	}
	s.debug("courses fetched", "op", op, "count", len(out))
	return out, nil
}

func (s *Store) FetchCourse(ctx context.Context, id string) (domain.Course, error) {
	row, err := s.courseRow(ctx, "fetch course", id)
	if err != nil {
		return domain.Course{}, err
	}
	return courseFromRow(row), nil
}

func (s *Store) courseRow(ctx context.Context, op, id string) (models.Course, error) {
	filter, ok := courseFilter(id)
	if !ok {
		return models.Course{}, apperror.NotFound(op, "course %s not found", id)
	}
	tx, err := where(s.conn(ctx), filter)
	if err != nil {
		return models.Course{}, mapError(op, err)
	}
	var row models.Course
	// Правка админа поверх сида и сам курс могут делить legacy_id, берем последнюю
	if err := tx.Order("updated_at desc").First(&row).Error; err != nil {
		return models.Course{}, mapError(op, err)
	}
	return row, nil
}

// PersistCourse creates the course when it has no document id yet, otherwise
// replaces the stored row.
func (s *Store) PersistCourse(ctx context.Context, course domain.Course) (domain.Course, error) {
	const op = "persist course"
	if course.DocumentID == "" {
		row := courseToRow(course, models.Course{DocumentID: ident.NewDocumentID()})
		if err := s.conn(ctx).Create(&row).Error; err != nil {
			return domain.Course{}, mapError(op, err)
		}
		return courseFromRow(row), nil
	}

	var existing models.Course
	if err := s.conn(ctx).Where("document_id = ?", ident.Classify(course.DocumentID).Value).First(&existing).Error; err != nil {
		return domain.Course{}, mapError(op, err)
	}
	row := courseToRow(course, existing)
	if err := s.conn(ctx).Save(&row).Error; err != nil {
		return domain.Course{}, mapError(op, err)
	}
	return courseFromRow(row), nil
}

func (s *Store) DeleteCourse(ctx context.Context, id string) error {
	const op = "delete course"
	row, err := s.courseRow(ctx, op, id)
	if err != nil {
		return err
	}
	if err := s.conn(ctx).Delete(&row).Error; err != nil {
		return mapError(op, err)
	}
	return nil
}

func (s *Store) ApproveCourse(ctx context.Context, id, actorID, actorName string) error {
	return s.moderate(ctx, id, domain.StatusApproved, actorID, actorName, "")
}

func (s *Store) RejectCourse(ctx context.Context, id, actorID, actorName, reason string) error {
	return s.moderate(ctx, id, domain.StatusRejected, actorID, actorName, reason)
}

// moderate updates a pending course only. Anything else reports not found.
func (s *Store) moderate(ctx context.Context, id string, status domain.Status, actorID, actorName, reason string) error {
	const op = "moderate course"
	filter, ok := courseFilter(id)
	if !ok {
		return apperror.NotFound(op, "course %s not found", id)
	}
	tx, err := where(s.conn(ctx).Model(&models.Course{}), sq.And{filter, sq.Eq{"status": string(domain.StatusPending)}})
	if err != nil {
		return mapError(op, err)
	}
	now := time.Now().UTC()
	res := tx.Updates(map[string]interface{}{
		"status":            string(status),
		"rejection_reason":  reason,
		"moderated_by":      actorID,
		"moderated_by_name": actorName,
		"moderated_at":      &now,
	})
	if res.Error != nil {
		return mapError(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound(op, "no pending course %s", id)
	}
	return nil
}

// FetchInstructorForCourse reports the instructor of record kept by the
// store: an assignment first, then the teacher set on the course itself.
func (s *Store) FetchInstructorForCourse(ctx context.Context, courseID string) (domain.Instructor, error) {
	const op = "fetch instructor"
	ids := []string{ident.Classify(courseID).Value}
	row, err := s.courseRow(ctx, op, courseID)
	switch {
	case err == nil:
		ids = courseIDForms(row)
	case !errors.Is(err, apperror.ErrNotFound):
		return domain.Instructor{}, err
	}

	tx, err := where(s.conn(ctx), sq.Eq{"course_id": ids})
	if err != nil {
		return domain.Instructor{}, mapError(op, err)
	}
	var assignment models.InstructorAssignment
	err = tx.First(&assignment).Error
	if err == nil {
		return domain.Instructor{TeacherID: assignment.TeacherID, TeacherName: assignment.TeacherName}, nil
	}
	if mapped := mapError(op, err); !errors.Is(mapped, apperror.ErrNotFound) {
		return domain.Instructor{}, mapped
	}

	if row.TeacherID != "" {
		return domain.Instructor{TeacherID: row.TeacherID, TeacherName: row.TeacherName}, nil
	}
	return domain.Instructor{}, apperror.NotFound(op, "course %s has no instructor of record", courseID)
}

func courseIDForms(row models.Course) []string {
	ids := []string{row.DocumentID}
	if row.LegacyID != nil {
		ids = append(ids, strconv.FormatInt(*row.LegacyID, 10))
	}
	return ids
}

func courseFromRow(row models.Course) domain.Course {
	c := domain.Course{
		ID:              row.DocumentID,
		DocumentID:      row.DocumentID,
		Title:           row.Title,
		Description:     row.Description,
		ImageURL:        row.ImageURL,
		Language:        row.Language,
		Category:        row.Category,
		Level:           row.Level,
		Price:           row.Price,
		OriginalPrice:   row.OriginalPrice,
		Sections:        row.Sections.Data(),
		Status:          domain.Status(row.Status),
		RejectionReason: row.RejectionReason,
		CreatedBy:       row.CreatedBy,
		CreatedByRole:   domain.Role(row.CreatedByRole),
		TeacherID:       row.TeacherID,
		TeacherName:     row.TeacherName,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
	if row.LegacyID != nil {
		c.ID = strconv.FormatInt(*row.LegacyID, 10)
	}
	return c
}

// courseToRow writes c over base, keeping base's keys and timestamps.
func courseToRow(c domain.Course, base models.Course) models.Course {
	row := base
	if n := ident.Classify(c.ID); n.Kind == ident.KindLegacy {
		v, err := strconv.ParseInt(n.Value, 10, 64)
		if err == nil {
			row.LegacyID = &v
		}
	}
	row.Title = c.Title
	row.Description = c.Description
	row.ImageURL = c.ImageURL
	row.Language = c.Language
	row.Category = c.Category
	row.Level = c.Level
	row.Price = c.Price
	row.OriginalPrice = c.OriginalPrice
	row.Sections = datatypes.NewJSONType(c.Sections)
	row.Status = string(c.Status)
	row.RejectionReason = c.RejectionReason
	row.CreatedBy = c.CreatedBy
	row.CreatedByRole = string(c.CreatedByRole)
	row.AuthorID = ident.Classify(ident.OwnerID(c.CreatedBy)).Value
	row.TeacherID = c.TeacherID
	row.TeacherName = c.TeacherName
	return row
}
