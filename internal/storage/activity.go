package storage

import (
	"context"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/s/coursehub/internal/apperror"
	"github.com/s/coursehub/internal/domain"
	"github.com/s/coursehub/internal/ident"
	"github.com/s/coursehub/internal/models"
)

// ---------------------------------------------------------------------------
// Назначения преподавателей
// ---------------------------------------------------------------------------

func (s *Store) FetchAssignments(ctx context.Context) ([]domain.InstructorAssignment, error) {
	var rows []models.InstructorAssignment
	if err := s.conn(ctx).Order("created_at asc").Find(&rows).Error; err != nil {
		return nil, mapError("fetch assignments", err)
	}
	out := make([]domain.InstructorAssignment, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.InstructorAssignment{
			CourseID:    row.CourseID,
			TeacherID:   row.TeacherID,
			TeacherName: row.TeacherName,
			CreatedAt:   row.CreatedAt,
		})
	}
	return out, nil
}

// SaveAssignment relies on the unique course_id index; a second assignment
// for the same course is a conflict.
func (s *Store) SaveAssignment(ctx context.Context, a domain.InstructorAssignment) error {
	row := models.InstructorAssignment{
		CourseID:    ident.Classify(a.CourseID).Value,
		TeacherID:   a.TeacherID,
		TeacherName: a.TeacherName,
		CreatedAt:   a.CreatedAt,
	}
	if err := s.conn(ctx).Create(&row).Error; err != nil {
		return mapError("save assignment", err)
	}
	return nil
}

func (s *Store) DeleteAssignmentsForCourse(ctx context.Context, courseID string) error {
	const op = "delete assignments"
	tx, err := where(s.conn(ctx), sq.Eq{"course_id": ident.Classify(courseID).Value})
	if err != nil {
		return mapError(op, err)
	}
	if err := tx.Delete(&models.InstructorAssignment{}).Error; err != nil {
		return mapError(op, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Отзывы
// ---------------------------------------------------------------------------

func (s *Store) FetchReviewsForTeacher(ctx context.Context, teacherID string) ([]domain.Review, error) {
	return s.findReviews(ctx, "fetch teacher reviews", sq.Eq{"teacher_id": ident.Classify(teacherID).Value})
}

func (s *Store) FetchReviewsByStudent(ctx context.Context, studentID string) ([]domain.Review, error) {
	return s.findReviews(ctx, "fetch student reviews", sq.Eq{"student_id": ident.Classify(studentID).Value})
}

func (s *Store) findReviews(ctx context.Context, op string, filter sq.Sqlizer) ([]domain.Review, error) {
	tx, err := where(s.conn(ctx), filter)
	if err != nil {
		return nil, mapError(op, err)
	}
	var rows []models.Review
	if err := tx.Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, mapError(op, err)
	}
	out := make([]domain.Review, 0, len(rows))
	for _, row := range rows {
		out = append(out, reviewFromRow(row))
	}
	return out, nil
}

func (s *Store) CreateReview(ctx context.Context, r domain.Review) (domain.Review, error) {
	row := models.Review{
		CreatedAt: r.CreatedAt,
		TeacherID: ident.Classify(r.TeacherID).Value,
		CourseID:  ident.Classify(r.CourseID).Value,
		StudentID: ident.Classify(r.StudentID).Value,
		Rating:    r.Rating,
		Content:   r.ReviewText,
	}
	if err := s.conn(ctx).Create(&row).Error; err != nil {
		return domain.Review{}, mapError("create review", err)
	}
	return reviewFromRow(row), nil
}

func reviewFromRow(row models.Review) domain.Review {
	return domain.Review{
		ID:         strconv.FormatUint(uint64(row.ID), 10),
		TeacherID:  row.TeacherID,
		CourseID:   row.CourseID,
		StudentID:  row.StudentID,
		Rating:     row.Rating,
		ReviewText: row.Content,
		CreatedAt:  row.CreatedAt,
	}
}

// ---------------------------------------------------------------------------
// Заявки и прогресс
// ---------------------------------------------------------------------------

func (s *Store) FetchEnrollments(ctx context.Context, studentID string) ([]domain.Enrollment, error) {
	var rows []models.Enrollment
	err := s.conn(ctx).
		Where("student_id = ?", ident.Classify(studentID).Value).
		Order("created_at asc").
		Find(&rows).Error
	if err != nil {
		return nil, mapError("fetch enrollments", err)
	}
	out := make([]domain.Enrollment, 0, len(rows))
	for _, row := range rows {
		out = append(out, enrollmentFromRow(row))
	}
	return out, nil
}

func (s *Store) CreateEnrollment(ctx context.Context, e domain.Enrollment) (domain.Enrollment, error) {
	row := models.Enrollment{
		StudentID:         ident.Classify(e.StudentID).Value,
		CourseID:          ident.Classify(e.CourseID).Value,
		Status:            string(e.Status),
		CompletedSections: toInt64Array(e.CompletedSections),
		Progress:          e.Progress,
	}
	if err := s.conn(ctx).Create(&row).Error; err != nil {
		return domain.Enrollment{}, mapError("create enrollment", err)
	}
	return enrollmentFromRow(row), nil
}

func (s *Store) UpdateProgress(ctx context.Context, courseID, studentID string, u domain.ProgressUpdate) (domain.Enrollment, error) {
	return s.updateEnrollment(ctx, "update progress", courseID, studentID, map[string]interface{}{
		"completed_sections": toInt64Array(u.CompletedSections),
		"progress":           u.Progress,
		"status":             string(u.Status),
	})
}

func (s *Store) SetEnrollmentStatus(ctx context.Context, courseID, studentID string, status domain.EnrollmentStatus) (domain.Enrollment, error) {
	return s.updateEnrollment(ctx, "set enrollment status", courseID, studentID, map[string]interface{}{
		"status": string(status),
	})
}

func (s *Store) updateEnrollment(ctx context.Context, op, courseID, studentID string, updates map[string]interface{}) (domain.Enrollment, error) {
	filter := sq.Eq{
		"course_id":  ident.Classify(courseID).Value,
		"student_id": ident.Classify(studentID).Value,
	}
	tx, err := where(s.conn(ctx).Model(&models.Enrollment{}), filter)
	if err != nil {
		return domain.Enrollment{}, mapError(op, err)
	}
	res := tx.Updates(updates)
	if res.Error != nil {
		return domain.Enrollment{}, mapError(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.Enrollment{}, apperror.NotFound(op, "enrollment in course %s not found", courseID)
	}

	reload, err := where(s.conn(ctx), filter)
	if err != nil {
		return domain.Enrollment{}, mapError(op, err)
	}
	var row models.Enrollment
	if err := reload.First(&row).Error; err != nil {
		return domain.Enrollment{}, mapError(op, err)
	}
	return enrollmentFromRow(row), nil
}

func enrollmentFromRow(row models.Enrollment) domain.Enrollment {
	sections := make([]int, 0, len(row.CompletedSections))
	for _, v := range row.CompletedSections {
		sections = append(sections, int(v))
	}
	return domain.Enrollment{
		CourseID:          row.CourseID,
		StudentID:         row.StudentID,
		Status:            domain.EnrollmentStatus(row.Status),
		CompletedSections: sections,
		Progress:          row.Progress,
		UpdatedAt:         row.UpdatedAt,
	}
}

func toInt64Array(in []int) pq.Int64Array {
	out := make(pq.Int64Array, 0, len(in))
	for _, v := range in {
		out = append(out, int64(v))
	}
	return out
}

// ---------------------------------------------------------------------------
// История модерации
// ---------------------------------------------------------------------------

func (s *Store) RecordDecision(ctx context.Context, d domain.ModerationDecision) error {
	row := models.ModerationLog{
		CourseID:      ident.Classify(d.CourseID).Value,
		DecidedBy:     d.DecidedBy,
		DecidedByName: d.DecidedByName,
		Decision:      string(d.Decision),
		Reason:        d.Reason,
		CreatedAt:     d.DecidedAt,
	}
	if err := s.conn(ctx).Create(&row).Error; err != nil {
		return mapError("record decision", err)
	}
	return nil
}

func (s *Store) FetchDecisions(ctx context.Context, courseID string) ([]domain.ModerationDecision, error) {
	var rows []models.ModerationLog
	err := s.conn(ctx).
		Where("course_id = ?", ident.Classify(courseID).Value).
		Order("created_at asc").
		Find(&rows).Error
	if err != nil {
		return nil, mapError("fetch decisions", err)
	}
	out := make([]domain.ModerationDecision, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.ModerationDecision{
			CourseID:      row.CourseID,
			DecidedBy:     row.DecidedBy,
			DecidedByName: row.DecidedByName,
			Decision:      domain.Decision(row.Decision),
			Reason:        row.Reason,
			DecidedAt:     row.CreatedAt,
		})
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Сообщения
// ---------------------------------------------------------------------------

func (s *Store) FetchMessages(ctx context.Context, actorID string) ([]domain.Message, error) {
	const op = "fetch messages"
	id := ident.Classify(actorID).Value
	tx, err := where(s.conn(ctx), sq.Or{sq.Eq{"from_id": id}, sq.Eq{"to_id": id}})
	if err != nil {
		return nil, mapError(op, err)
	}
	var rows []models.Message
	if err := tx.Order("created_at asc").Find(&rows).Error; err != nil {
		return nil, mapError(op, err)
	}
	out := make([]domain.Message, 0, len(rows))
	for _, row := range rows {
		out = append(out, messageFromRow(row))
	}
	return out, nil
}

func (s *Store) SendMessage(ctx context.Context, msg domain.Message) (domain.Message, error) {
	created := msg.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	row := models.Message{
		CreatedAt: created,
		CourseID:  ident.Classify(msg.CourseID).Value,
		FromID:    ident.Classify(msg.FromID).Value,
		FromRole:  string(msg.FromRole),
		ToID:      ident.Classify(msg.ToID).Value,
		Body:      msg.Body,
	}
	if err := s.conn(ctx).Create(&row).Error; err != nil {
		return domain.Message{}, mapError("send message", err)
	}
	return messageFromRow(row), nil
}

// MarkRead only touches messages addressed to actorID.
func (s *Store) MarkRead(ctx context.Context, messageID, actorID string) error {
	const op = "mark read"
	id, err := strconv.ParseUint(messageID, 10, 64)
	if err != nil {
		return apperror.NotFound(op, "message %s not found", messageID)
	}
	res := s.conn(ctx).Model(&models.Message{}).
		Where("id = ? AND to_id = ?", id, ident.Classify(actorID).Value).
		Update("read", true)
	if res.Error != nil {
		return mapError(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound(op, "message %s not found", messageID)
	}
	return nil
}

func messageFromRow(row models.Message) domain.Message {
	return domain.Message{
		ID:        strconv.FormatUint(uint64(row.ID), 10),
		CourseID:  row.CourseID,
		FromID:    row.FromID,
		FromRole:  domain.Role(row.FromRole),
		ToID:      row.ToID,
		Body:      row.Body,
		Read:      row.Read,
		CreatedAt: row.CreatedAt,
	}
}
