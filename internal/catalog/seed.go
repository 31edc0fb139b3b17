package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/s/coursehub/internal/apperror"
	"github.com/s/coursehub/internal/domain"
	"github.com/s/coursehub/internal/ports"
)

//go:embed seed.yaml
var defaultSeed []byte

type seedFile struct {
	Courses []seedRecord `yaml:"courses"`
}

type seedRecord struct {
	ID            int64            `yaml:"id"`
	Title         string           `yaml:"title"`
	Description   string           `yaml:"description"`
	ImageURL      string           `yaml:"imageUrl"`
	Language      string           `yaml:"language"`
	Category      string           `yaml:"category"`
	Level         string           `yaml:"level"`
	Price         *float64         `yaml:"price"`
	OriginalPrice *float64         `yaml:"originalPrice"`
	TeacherID     string           `yaml:"teacherId"`
	TeacherName   string           `yaml:"teacherName"`
	Sections      []domain.Section `yaml:"sections"`
}

// Seed is the static catalog. It serves the same records on every call.
type Seed struct {
	courses []domain.Course
}

var _ ports.SeedCatalog = (*Seed)(nil)

// LoadSeed reads the catalog from path, or the built-in catalog when path is empty.
func LoadSeed(path string) (*Seed, error) {
	data := defaultSeed
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read seed catalog: %w", err)
		}
		data = raw
	}

	courses, err := ParseSeed(data)
	if err != nil {
		return nil, err
	}
	return &Seed{courses: courses}, nil
}

// NewSeed wraps already-built seed courses.
func NewSeed(courses []domain.Course) *Seed {
	return &Seed{courses: courses}
}

// ParseSeed decodes a YAML seed catalog. Every id must be a positive integer.
func ParseSeed(data []byte) ([]domain.Course, error) {
	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, apperror.Wrap(apperror.ErrValidationFailed, "parse seed catalog", err)
	}

	courses := make([]domain.Course, 0, len(file.Courses))
	for i, rec := range file.Courses {
		if rec.ID <= 0 {
			return nil, apperror.Invalid("parse seed catalog", "course #%d has no positive id", i+1)
		}
		if rec.Title == "" {
			return nil, apperror.Invalid("parse seed catalog", "course %d has no title", rec.ID)
		}
		courses = append(courses, domain.Course{
			ID:            strconv.FormatInt(rec.ID, 10),
			Title:         rec.Title,
			Description:   rec.Description,
			ImageURL:      rec.ImageURL,
			Language:      rec.Language,
			Category:      rec.Category,
			Level:         rec.Level,
			Price:         rec.Price,
			OriginalPrice: rec.OriginalPrice,
			TeacherID:     rec.TeacherID,
			TeacherName:   rec.TeacherName,
			Sections:      rec.Sections,
		})
	}
	return courses, nil
}

// SeedCourses returns a copy of the catalog.
func (s *Seed) SeedCourses(_ context.Context) ([]domain.Course, error) {
	out := make([]domain.Course, len(s.courses))
	for i, c := range s.courses {
		out[i] = clone(c)
	}
	return out, nil
}
