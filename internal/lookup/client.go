// Package lookup queries the trusted instructor-of-record service over HTTP.
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/s/coursehub/internal/apperror"
	"github.com/s/coursehub/internal/domain"
	"github.com/s/coursehub/internal/ports"
)

const defaultTimeout = 3 * time.Second

// Client implements ports.InstructorLookup against
// GET {base}/courses/{id}/instructor.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

var _ ports.InstructorLookup = (*Client)(nil)

type instructorResponse struct {
	TeacherID   string `json:"teacher_id"`
	TeacherName string `json:"teacher_name"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: client, logger: logger}
}

func (c *Client) FetchInstructorForCourse(ctx context.Context, courseID string) (domain.Instructor, error) {
	const op = "fetch instructor"
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", courseID).
		Get("/courses/{id}/instructor")
	if err != nil {
		return domain.Instructor{}, apperror.Upstream(op, "", err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return domain.Instructor{}, apperror.NotFound(op, "course %s has no instructor of record", courseID)
	case resp.StatusCode() != http.StatusOK:
		var body errorResponse
		_ = json.Unmarshal(resp.Body(), &body)
		if c.logger != nil {
			c.logger.Warn("instructor service error", "course", courseID, "status", resp.StatusCode())
		}
		return domain.Instructor{}, apperror.Upstream(op, body.Error, fmt.Errorf("status %d", resp.StatusCode()))
	}

	var out instructorResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return domain.Instructor{}, apperror.Upstream(op, "", fmt.Errorf("decode response: %w", err))
	}
	if out.TeacherID == "" {
		return domain.Instructor{}, apperror.NotFound(op, "course %s has no instructor of record", courseID)
	}
	return domain.Instructor{TeacherID: out.TeacherID, TeacherName: out.TeacherName}, nil
}
