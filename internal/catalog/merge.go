// Package catalog builds the unified course view from the seed catalog and the
// teacher and admin submission streams.
package catalog

import (
	"github.com/s/coursehub/internal/domain"
	"github.com/s/coursehub/internal/ident"
)

// Merge combines the three sources into one list holding each identity once.
//
// Seed records come first, keyed by legacy id, and the first occurrence of a
// seed id wins. Teacher records are then applied in order, followed by admin
// records. A submitted record that shares an identity with an accumulated
// record overrides it field by field, otherwise it is appended. The inputs are
// never modified.
func Merge(seed, teacher, admin []domain.Course) []domain.Course {
	m := newMerger(len(seed) + len(teacher) + len(admin))

	for _, c := range seed {
		if ident.Classify(c.ID).Kind != ident.KindLegacy {
			continue
		}
		if _, ok := m.find(c); ok {
			continue
		}
		m.add(clone(c))
	}

	for _, stream := range [][]domain.Course{teacher, admin} {
		for _, c := range stream {
			if c.ID == "" && c.DocumentID == "" {
				continue
			}
			if i, ok := m.find(c); ok {
				m.replace(i, Override(m.out[i], c))
				continue
			}
			m.add(clone(c))
		}
	}

	return m.out
}

// SplitByRole partitions a store listing into the teacher and admin streams.
// Records without a teacher role or prefix go to the admin stream.
func SplitByRole(records []domain.Course) (teacher, admin []domain.Course) {
	for _, c := range records {
		if TeacherAuthored(c) {
			teacher = append(teacher, c)
		} else {
			admin = append(admin, c)
		}
	}
	return teacher, admin
}

// TeacherAuthored reports whether a teacher created c, either by the recorded
// role or by a teacher-prefixed creator string.
func TeacherAuthored(c domain.Course) bool {
	if c.CreatedByRole == domain.RoleTeacher {
		return true
	}
	role, _ := ident.SplitRolePrefix(c.CreatedBy)
	return role == string(domain.RoleTeacher)
}

// Find returns the course in list identified by id.
func Find(list []domain.Course, id string) (domain.Course, bool) {
	for _, c := range list {
		if ident.MatchesRecord(id, c.ID, c.DocumentID) {
			return c, true
		}
	}
	return domain.Course{}, false
}

// Override applies the specified fields of sub on top of base. Empty strings,
// nil prices and empty section lists count as unspecified. The merged record
// keeps base's id and picks up sub's document id so either form finds it.
func Override(base, sub domain.Course) domain.Course {
	out := clone(base)

	if sub.DocumentID != "" {
		out.DocumentID = sub.DocumentID
	} else if ident.IsDocumentID(sub.ID) && !ident.Equal(sub.ID, base.ID) {
		out.DocumentID = sub.ID
	}

	setString(&out.Title, sub.Title)
	setString(&out.Description, sub.Description)
	setString(&out.ImageURL, sub.ImageURL)
	setString(&out.Language, sub.Language)
	setString(&out.Category, sub.Category)
	setString(&out.Level, sub.Level)
	setString(&out.RejectionReason, sub.RejectionReason)
	setString(&out.CreatedBy, sub.CreatedBy)
	setString(&out.TeacherID, sub.TeacherID)
	setString(&out.TeacherName, sub.TeacherName)

	if sub.Price != nil {
		out.Price = copyFloat(sub.Price)
	}
	if sub.OriginalPrice != nil {
		out.OriginalPrice = copyFloat(sub.OriginalPrice)
	}
	if len(sub.Sections) > 0 {
		out.Sections = cloneSections(sub.Sections)
	}
	if sub.Status != "" {
		out.Status = sub.Status
		if sub.Status != domain.StatusRejected {
			out.RejectionReason = sub.RejectionReason
		}
	}
	if sub.CreatedByRole != "" {
		out.CreatedByRole = sub.CreatedByRole
	}
	if !sub.CreatedAt.IsZero() {
		out.CreatedAt = sub.CreatedAt
	}
	if !sub.UpdatedAt.IsZero() {
		out.UpdatedAt = sub.UpdatedAt
	}

	return out
}

type merger struct {
	out   []domain.Course
	index map[string]int
}

func newMerger(capacity int) *merger {
	return &merger{
		out:   make([]domain.Course, 0, capacity),
		index: make(map[string]int, capacity),
	}
}

func (m *merger) find(c domain.Course) (int, bool) {
	for _, id := range []string{c.ID, c.DocumentID} {
		if id == "" {
			continue
		}
		if i, ok := m.index[ident.Key(id)]; ok {
			return i, true
		}
	}
	return 0, false
}

func (m *merger) add(c domain.Course) {
	m.out = append(m.out, c)
	m.register(len(m.out)-1, c)
}

func (m *merger) replace(i int, c domain.Course) {
	m.out[i] = c
	m.register(i, c)
}

func (m *merger) register(i int, c domain.Course) {
	for _, id := range []string{c.ID, c.DocumentID} {
		if id == "" {
			continue
		}
		if _, taken := m.index[ident.Key(id)]; !taken {
			m.index[ident.Key(id)] = i
		}
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	f := *v
	return &f
}

func clone(c domain.Course) domain.Course {
	c.Price = copyFloat(c.Price)
	c.OriginalPrice = copyFloat(c.OriginalPrice)
	c.Sections = cloneSections(c.Sections)
	return c
}

func cloneSections(in []domain.Section) []domain.Section {
	if in == nil {
		return nil
	}
	out := make([]domain.Section, len(in))
	for i, s := range in {
		out[i] = domain.Section{Title: s.Title}
		if s.Items != nil {
			out[i].Items = append([]domain.Item(nil), s.Items...)
		}
	}
	return out
}
