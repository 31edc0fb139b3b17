package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s/coursehub/internal/apperror"
	"github.com/s/coursehub/internal/catalog"
	"github.com/s/coursehub/internal/domain"
	"github.com/s/coursehub/internal/moderation"
)

var (
	adminActor   = domain.Actor{ID: "1", Name: "Root", Role: domain.RoleAdmin}
	teacherAda   = domain.Actor{ID: "7", Name: "Ada", Role: domain.RoleTeacher}
	teacherBob   = domain.Actor{ID: "8", Name: "Bob", Role: domain.RoleTeacher}
	teacherCarl  = domain.Actor{ID: "9", Name: "Carl", Role: domain.RoleTeacher}
	studentSam   = domain.Actor{ID: "21", Name: "Sam", Role: domain.RoleStudent}
	studentOther = domain.Actor{ID: "22", Name: "Kim", Role: domain.RoleStudent}
)

func newTestService(store *memStore, seed ...domain.Course) *Service {
	return New(Deps{
		Seed:         catalog.NewSeed(seed),
		Courses:      store,
		Assignments:  store,
		Reviews:      store,
		Enrollments:  store,
		Decisions:    store,
		Messages:     store,
		FetchTimeout: time.Second,
	})
}

func submission(title string, sections int) domain.CourseSubmission {
	sub := domain.CourseSubmission{Title: title, Category: "programming", Level: "beginner"}
	for i := 0; i < sections; i++ {
		sub.Sections = append(sub.Sections, domain.Section{
			Title: fmt.Sprintf("Part %d", i+1),
			Items: []domain.Item{{Title: "Lesson", DurationMinutes: 10}},
		})
	}
	return sub
}

func ids(courses []domain.Course) []string {
	out := make([]string, len(courses))
	for i, c := range courses {
		out[i] = c.ID
	}
	return out
}

func TestTeacherSubmissionIsModeratedBeforeGoingPublic(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store)

	created, err := svc.CreateCourse(ctx, teacherAda, submission("Concurrency in Go", 3))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, created.Status)
	assert.Equal(t, "teacher:7", created.CreatedBy)
	require.NotEmpty(t, created.DocumentID)

	public, err := svc.ListVisibleCourses(ctx, domain.Public)
	require.NoError(t, err)
	assert.NotContains(t, ids(public), created.ID)

	own, err := svc.ListVisibleCourses(ctx, teacherAda)
	require.NoError(t, err)
	assert.Contains(t, ids(own), created.ID)

	_, err = svc.GetCourseDetail(ctx, created.ID, domain.Public)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
	_, err = svc.GetCourseDetail(ctx, created.ID, teacherBob)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	detail, err := svc.GetCourseDetail(ctx, created.ID, teacherAda)
	require.NoError(t, err)
	assert.Equal(t, moderation.AwaitingModeration, detail.Presentation)

	queue, err := svc.ModerationQueue(ctx, adminActor)
	require.NoError(t, err)
	assert.Equal(t, []string{created.ID}, ids(queue))

	_, err = svc.ModerationQueue(ctx, teacherAda)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	decision, err := svc.Moderate(ctx, adminActor, created.ID, domain.DecisionApproved, "")
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionApproved, decision.Decision)

	public, err = svc.ListVisibleCourses(ctx, domain.Public)
	require.NoError(t, err)
	assert.Contains(t, ids(public), created.ID)

	detail, err = svc.GetCourseDetail(ctx, created.ID, domain.Public)
	require.NoError(t, err)
	assert.Equal(t, moderation.Public, detail.Presentation)
	require.NotNil(t, detail.Instructor)
	assert.Equal(t, "7", detail.Instructor.TeacherID)
	assert.Equal(t, "Ada", detail.Course.TeacherName)

	// Approved courses cannot be moderated again.
	_, err = svc.Moderate(ctx, adminActor, created.ID, domain.DecisionRejected, "late")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	history, err := svc.ModerationHistory(ctx, teacherAda, created.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Root", history[0].DecidedByName)

	_, err = svc.ModerationHistory(ctx, teacherBob, created.ID)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))
}

func TestRejectedCourseShowsReasonToOwner(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store)

	created, err := svc.CreateCourse(ctx, teacherAda, submission("Draft", 1))
	require.NoError(t, err)

	_, err = svc.Moderate(ctx, adminActor, created.ID, domain.DecisionRejected, "add more sections")
	require.NoError(t, err)

	detail, err := svc.GetCourseDetail(ctx, created.ID, teacherAda)
	require.NoError(t, err)
	assert.Equal(t, moderation.RejectedWithReason, detail.Presentation)
	assert.Equal(t, "add more sections", detail.Course.RejectionReason)

	detail, err = svc.GetCourseDetail(ctx, created.ID, adminActor)
	require.NoError(t, err)
	assert.Equal(t, moderation.RejectedWithReason, detail.Presentation)
}

func TestModerationFailureLeavesCourseUntouched(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store)

	created, err := svc.CreateCourse(ctx, teacherAda, submission("Go", 2))
	require.NoError(t, err)

	store.failApprove = apperror.Upstream("approve course", "document store timed out", nil)
	_, err = svc.Moderate(ctx, adminActor, created.ID, domain.DecisionApproved, "")
	require.Error(t, err)
	assert.Equal(t, "document store timed out", apperror.Message(err))

	stored, err := store.FetchCourse(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
	assert.Empty(t, store.decisions)

	_, err = svc.Moderate(ctx, adminActor, "not-an-id", domain.DecisionApproved, "")
	assert.True(t, errors.Is(err, apperror.ErrValidationFailed))
}

func TestAdminCourseIsUnassignedUntilTeacherSelfAssigns(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store)

	created, err := svc.CreateCourse(ctx, adminActor, submission("Kubernetes", 4))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, created.Status)

	detail, err := svc.GetCourseDetail(ctx, created.ID, domain.Public)
	require.NoError(t, err)
	assert.Nil(t, detail.Instructor)
	assert.Empty(t, detail.Course.TeacherID)
	assert.Equal(t, 0, detail.Rating.Count)

	_, err = svc.AssignInstructor(ctx, adminActor, created.ID)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	assignment, err := svc.AssignInstructor(ctx, teacherBob, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "8", assignment.TeacherID)

	detail, err = svc.GetCourseDetail(ctx, created.ID, domain.Public)
	require.NoError(t, err)
	require.NotNil(t, detail.Instructor)
	assert.Equal(t, "8", detail.Instructor.TeacherID)
	assert.Equal(t, "Bob", detail.Course.TeacherName)

	_, err = svc.AssignInstructor(ctx, teacherCarl, created.ID)
	assert.True(t, errors.Is(err, apperror.ErrConflict))
}

func TestAssignInstructorRules(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store)

	pending, err := svc.CreateCourse(ctx, teacherAda, submission("Pending", 1))
	require.NoError(t, err)

	_, err = svc.AssignInstructor(ctx, teacherBob, pending.ID)
	assert.True(t, errors.Is(err, apperror.ErrValidationFailed))

	_, err = svc.Moderate(ctx, adminActor, pending.ID, domain.DecisionApproved, "")
	require.NoError(t, err)

	_, err = svc.AssignInstructor(ctx, teacherAda, pending.ID)
	assert.True(t, errors.Is(err, apperror.ErrConflict))

	_, err = svc.AssignInstructor(ctx, teacherBob, "404")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestStudentCompletesCourseAndReviewsOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store)

	sub := submission("Databases", 5)
	sub.TeacherID, sub.TeacherName = "7", "Ada"
	course, err := svc.CreateCourse(ctx, adminActor, sub)
	require.NoError(t, err)

	store.enrollments = append(store.enrollments, domain.Enrollment{
		CourseID:  course.DocumentID,
		StudentID: studentSam.ID,
		Status:    domain.EnrollmentActive,
	})

	enrollment, err := svc.ToggleSection(ctx, studentSam, course.ID, 0, true, 5)
	require.NoError(t, err)
	assert.Equal(t, 20, enrollment.Progress)

	_, err = svc.CreateReview(ctx, studentSam, course.ID, domain.ReviewSubmission{Rating: 5})
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	for i := 1; i < 5; i++ {
		enrollment, err = svc.ToggleSection(ctx, studentSam, course.ID, i, true, 5)
		require.NoError(t, err)
	}
	assert.Equal(t, 100, enrollment.Progress)
	assert.Equal(t, domain.EnrollmentCompleted, enrollment.Status)

	review, err := svc.CreateReview(ctx, studentSam, course.ID, domain.ReviewSubmission{Rating: 4, ReviewText: "solid"})
	require.NoError(t, err)
	assert.Equal(t, "7", review.TeacherID)
	assert.Equal(t, course.DocumentID, review.CourseID)

	_, err = svc.CreateReview(ctx, studentSam, course.ID, domain.ReviewSubmission{Rating: 5})
	assert.True(t, errors.Is(err, apperror.ErrConflict))

	_, err = svc.CreateReview(ctx, studentOther, course.ID, domain.ReviewSubmission{Rating: 5})
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	_, err = svc.CreateReview(ctx, studentSam, course.ID, domain.ReviewSubmission{Rating: 9})
	assert.True(t, errors.Is(err, apperror.ErrValidationFailed))

	summary, err := svc.GetCourseRating(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, summary.Average)
	assert.Equal(t, 1, summary.Count)
}

func TestReviewNeedsInstructor(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store)

	course, err := svc.CreateCourse(ctx, adminActor, submission("Unassigned", 1))
	require.NoError(t, err)
	store.enrollments = append(store.enrollments, domain.Enrollment{
		CourseID: course.ID, StudentID: studentSam.ID, Status: domain.EnrollmentCompleted, Progress: 100,
		CompletedSections: []int{0},
	})

	_, err = svc.CreateReview(ctx, studentSam, course.ID, domain.ReviewSubmission{Rating: 5})
	assert.True(t, errors.Is(err, apperror.ErrValidationFailed))
}

func TestProgressDerivation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	seed := domain.Course{ID: "1", Title: "Seed", Sections: make([]domain.Section, 5)}
	svc := newTestService(store, seed)

	store.enrollments = append(store.enrollments, domain.Enrollment{
		CourseID: "1", StudentID: studentSam.ID, Status: domain.EnrollmentActive,
	})

	var (
		got domain.Enrollment
		err error
	)
	for _, i := range []int{0, 2, 4} {
		got, err = svc.ToggleSection(ctx, studentSam, "1", i, true, 0)
		require.NoError(t, err)
	}
	assert.Equal(t, 60, got.Progress)
	assert.Equal(t, []int{0, 2, 4}, got.CompletedSections)

	got, err = svc.ToggleSection(ctx, studentSam, "1", 2, false, 5)
	require.NoError(t, err)
	assert.Equal(t, 40, got.Progress)
	assert.Equal(t, []int{0, 4}, got.CompletedSections)

	_, err = svc.ToggleSection(ctx, studentSam, "1", 5, true, 5)
	assert.True(t, errors.Is(err, apperror.ErrValidationFailed))

	_, err = svc.ToggleSection(ctx, studentOther, "1", 1, true, 5)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	_, err = svc.ToggleSection(ctx, teacherAda, "1", 1, true, 5)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))
}

func TestApplyToggle(t *testing.T) {
	t.Parallel()

	u := ApplyToggle([]int{0, 2, 2, 9, -1}, 4, true, 5)
	assert.Equal(t, []int{0, 2, 4}, u.CompletedSections)
	assert.Equal(t, 60, u.Progress)
	assert.Equal(t, domain.EnrollmentActive, u.Status)

	u = ApplyToggle([]int{0, 1, 2}, 1, true, 3)
	assert.Equal(t, 100, u.Progress)
	assert.Equal(t, domain.EnrollmentCompleted, u.Status)

	assert.Equal(t, 33, Progress(1, 3))
	assert.Equal(t, 67, Progress(2, 3))
	assert.Equal(t, 0, Progress(0, 0))
}

func TestRatingIsScopedToCourse(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	seed := []domain.Course{
		{ID: "1", Title: "X", TeacherID: "7"},
		{ID: "2", Title: "Y", TeacherID: "7"},
		{ID: "3", Title: "Z", TeacherID: "7"},
		{ID: "4", Title: "No teacher"},
	}
	svc := newTestService(store, seed...)

	store.reviews = []domain.Review{
		{TeacherID: "7", CourseID: "1", StudentID: "21", Rating: 5},
		{TeacherID: "7", CourseID: "1", StudentID: "22", Rating: 4},
		{TeacherID: "7", CourseID: "2", StudentID: "21", Rating: 1},
	}

	x, err := svc.GetCourseRating(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 4.5, x.Average)
	assert.Equal(t, 2, x.Count)

	z, err := svc.GetCourseRating(ctx, "3")
	require.NoError(t, err)
	assert.Zero(t, z.Count)
	assert.Zero(t, z.Average)

	none, err := svc.GetCourseRating(ctx, "4")
	require.NoError(t, err)
	assert.Zero(t, none.Count)

	store.reviewFetches = map[string]int{}
	list, err := svc.ListVisibleCourses(ctx, domain.Public)
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, 1, store.reviewFetches["7"])
	assert.Equal(t, 1.0, list[1].Rating)

	_, err = svc.GetCourseRating(ctx, "99")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestCatalogDegradesWhenStoreFails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store, domain.Course{ID: "1", Title: "Seed"})

	_, err := svc.CreateCourse(ctx, adminActor, submission("Stored", 1))
	require.NoError(t, err)

	store.failCourseReads = errors.New("connection refused")

	list, err := svc.ListVisibleCourses(ctx, domain.Public)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids(list))
}

func TestAdminOverrideOfSeedCourse(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store, domain.Course{ID: "1", Title: "A", Description: "D"})

	_, err := svc.UpdateCourse(ctx, teacherAda, "1", domain.CourseEdit{Title: "Mine"})
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	_, err = svc.UpdateCourse(ctx, adminActor, "1", domain.CourseEdit{Title: "B"})
	require.NoError(t, err)

	list, err := svc.ListVisibleCourses(ctx, domain.Public)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "1", list[0].ID)
	assert.Equal(t, "B", list[0].Title)
	assert.Equal(t, "D", list[0].Description)

	detail, err := svc.GetCourseDetail(ctx, list[0].DocumentID, domain.Public)
	require.NoError(t, err)
	assert.Equal(t, "B", detail.Course.Title)
}

func TestOwnerEditKeepsStatusUnlessResubmitted(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store)

	created, err := svc.CreateCourse(ctx, teacherAda, submission("Go", 2))
	require.NoError(t, err)
	_, err = svc.Moderate(ctx, adminActor, created.ID, domain.DecisionApproved, "")
	require.NoError(t, err)

	edited, err := svc.UpdateCourse(ctx, teacherAda, created.ID, domain.CourseEdit{Title: "Go, revised"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, edited.Status)
	assert.Equal(t, "Go, revised", edited.Title)
	assert.Len(t, edited.Sections, 2)

	resubmitted, err := svc.UpdateCourse(ctx, teacherAda, created.ID, domain.CourseEdit{Description: "new", Resubmit: true})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, resubmitted.Status)

	_, err = svc.UpdateCourse(ctx, teacherBob, created.ID, domain.CourseEdit{Title: "Hijack"})
	assert.True(t, errors.Is(err, apperror.ErrNotFound) || errors.Is(err, apperror.ErrForbidden))

	adminEdit, err := svc.UpdateCourse(ctx, adminActor, created.ID, domain.CourseEdit{Level: "advanced", Resubmit: true})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, adminEdit.Status)
	assert.Equal(t, "advanced", adminEdit.Level)
}

func TestDeleteCourseRemovesAssignments(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store)

	created, err := svc.CreateCourse(ctx, adminActor, submission("Temp", 1))
	require.NoError(t, err)
	_, err = svc.AssignInstructor(ctx, teacherBob, created.ID)
	require.NoError(t, err)
	require.Len(t, store.assignments, 1)

	err = svc.DeleteCourse(ctx, teacherBob, created.ID)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	require.NoError(t, svc.DeleteCourse(ctx, adminActor, created.ID))
	assert.Empty(t, store.assignments)
	assert.Empty(t, store.courses)

	err = svc.DeleteCourse(ctx, adminActor, created.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestCreateCourseValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestService(newMemStore())

	_, err := svc.CreateCourse(ctx, teacherAda, domain.CourseSubmission{Title: "Go", Category: "x"})
	require.True(t, errors.Is(err, apperror.ErrValidationFailed))
	fields := apperror.FieldErrors(err)
	assert.Contains(t, fields, "sections")
	assert.Contains(t, fields, "title")

	_, err = svc.CreateCourse(ctx, studentSam, submission("Go basics", 1))
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	_, err = svc.CreateCourse(ctx, domain.Public, submission("Go basics", 1))
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	_, err = svc.GetCourseDetail(ctx, "intro-to-go", domain.Public)
	assert.True(t, errors.Is(err, apperror.ErrValidationFailed))
}

func TestMessagesUseRolePartitionedCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store)

	_, err := svc.SendMessage(ctx, studentSam, domain.MessageSubmission{ToID: "7", Body: "hello"})
	require.NoError(t, err)

	got, err := svc.ListMessages(ctx, studentSam)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, store.messageFetches)

	_, err = svc.ListMessages(ctx, studentSam)
	require.NoError(t, err)
	assert.Equal(t, 1, store.messageFetches)

	// The teacher partition never reuses the student's entries.
	teacherView, err := svc.ListMessages(ctx, teacherAda)
	require.NoError(t, err)
	require.Len(t, teacherView, 1)
	assert.Equal(t, 2, store.messageFetches)

	require.NoError(t, svc.MarkMessageRead(ctx, teacherAda, teacherView[0].ID))

	teacherView, err = svc.ListMessages(ctx, teacherAda)
	require.NoError(t, err)
	assert.Equal(t, 3, store.messageFetches)
	assert.True(t, teacherView[0].Read)

	// A failed refetch serves the last known messages.
	_, err = svc.SendMessage(ctx, teacherAda, domain.MessageSubmission{ToID: "21", Body: "hi"})
	require.NoError(t, err)
	store.failMessages = errors.New("chat backend down")

	stale, err := svc.ListMessages(ctx, teacherAda)
	require.NoError(t, err)
	assert.Len(t, stale, 1)

	_, err = svc.ListMessages(ctx, teacherBob)
	assert.True(t, errors.Is(err, apperror.ErrUpstreamUnavailable))

	_, err = svc.SendMessage(ctx, studentSam, domain.MessageSubmission{ToID: "21", Body: "me"})
	assert.True(t, errors.Is(err, apperror.ErrValidationFailed))

	_, err = svc.ListMessages(ctx, adminActor)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))
}

func TestListEnrollmentsIsCachedUntilProgressChanges(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store, domain.Course{ID: "1", Title: "Seed", Sections: make([]domain.Section, 2)})
	store.enrollments = append(store.enrollments, domain.Enrollment{CourseID: "1", StudentID: studentSam.ID, Status: domain.EnrollmentActive})

	list, err := svc.ListEnrollments(ctx, studentSam)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Zero(t, list[0].Progress)

	_, err = svc.ToggleSection(ctx, studentSam, "1", 0, true, 0)
	require.NoError(t, err)

	list, err = svc.ListEnrollments(ctx, studentSam)
	require.NoError(t, err)
	assert.Equal(t, 50, list[0].Progress)
}

func TestEnrollPaidCourseWaitsForActivation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	price := 49.0
	svc := newTestService(store,
		domain.Course{ID: "1", Title: "Free intro", Sections: []domain.Section{{Title: "a"}}},
		domain.Course{ID: "2", Title: "Paid deep dive", Price: &price, Sections: []domain.Section{{Title: "a"}, {Title: "b"}}},
	)

	free, err := svc.Enroll(ctx, studentSam, "1")
	require.NoError(t, err)
	assert.Equal(t, domain.EnrollmentActive, free.Status)

	paid, err := svc.Enroll(ctx, studentSam, "2")
	require.NoError(t, err)
	assert.Equal(t, domain.EnrollmentPending, paid.Status)

	_, err = svc.Enroll(ctx, studentSam, "2")
	assert.ErrorIs(t, err, apperror.ErrConflict)

	_, err = svc.ToggleSection(ctx, studentSam, "2", 0, true, 0)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = svc.ActivateEnrollment(ctx, teacherAda, "2", studentSam.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	activated, err := svc.ActivateEnrollment(ctx, adminActor, "2", studentSam.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EnrollmentActive, activated.Status)

	updated, err := svc.ToggleSection(ctx, studentSam, "2", 0, true, 0)
	require.NoError(t, err)
	assert.Equal(t, 50, updated.Progress)

	_, err = svc.Enroll(ctx, studentSam, "99")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestActivateEnrollmentOnlyMovesPending(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store, domain.Course{ID: "1", Title: "Intro", Sections: []domain.Section{{Title: "a"}}})

	_, err := svc.Enroll(ctx, studentSam, "1")
	require.NoError(t, err)
	done, err := svc.ToggleSection(ctx, studentSam, "1", 0, true, 0)
	require.NoError(t, err)
	require.Equal(t, domain.EnrollmentCompleted, done.Status)

	_, err = svc.ActivateEnrollment(ctx, adminActor, "1", studentSam.ID)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	list, err := store.FetchEnrollments(ctx, studentSam.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.EnrollmentCompleted, list[0].Status)
	assert.Equal(t, 100, list[0].Progress)

	_, err = svc.ActivateEnrollment(ctx, adminActor, "1", studentOther.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeletingSeedOverrideKeepsSeedInstructor(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store, domain.Course{ID: "1", Title: "A", Sections: []domain.Section{{Title: "a"}}})

	_, err := svc.AssignInstructor(ctx, teacherAda, "1")
	require.NoError(t, err)

	override, err := svc.UpdateCourse(ctx, adminActor, "1", domain.CourseEdit{Title: "B"})
	require.NoError(t, err)
	require.NotEmpty(t, override.DocumentID)

	require.NoError(t, svc.DeleteCourse(ctx, adminActor, "1"))
	assert.Empty(t, store.courses)
	require.Len(t, store.assignments, 1)
	assert.Equal(t, "1", store.assignments[0].CourseID)

	detail, err := svc.GetCourseDetail(ctx, "1", domain.Public)
	require.NoError(t, err)
	assert.Equal(t, "A", detail.Course.Title)
	require.NotNil(t, detail.Instructor)
	assert.Equal(t, "7", detail.Instructor.TeacherID)
}
