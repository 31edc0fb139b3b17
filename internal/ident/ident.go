// Package ident classifies and compares course and teacher identifiers.
//
// Two schemes coexist: small base-10 integers from the static seed catalog and
// 24-character hex ids assigned by the document store. Every identifier
// comparison in the service goes through this package so the two schemes are
// never conflated.
package ident

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/s/coursehub/internal/apperror"
)

// Kind is the scheme an identifier belongs to.
type Kind int

const (
	KindOpaque Kind = iota
	KindLegacy
	KindDocument
)

func (k Kind) String() string {
	switch k {
	case KindLegacy:
		return "legacy"
	case KindDocument:
		return "document"
	default:
		return "opaque"
	}
}

// documentIDLength is the length of a store-assigned hex id.
const documentIDLength = 24

// Normalized is an identifier reduced to its canonical form.
type Normalized struct {
	Kind  Kind
	Value string
}

// Classify normalizes id. Exactly 24 hex characters is a document id, checked
// first so an all-digit document id never reads as an integer. An unsigned
// run of base-10 digits naming a positive integer is a legacy id. Anything
// else is opaque and keeps its exact text, surrounding spaces included.
func Classify(id string) Normalized {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return Normalized{}
	}
	if isDocumentID(trimmed) {
		return Normalized{Kind: KindDocument, Value: strings.ToLower(trimmed)}
	}
	if n, ok := legacyNumber(trimmed); ok {
		return Normalized{Kind: KindLegacy, Value: strconv.FormatInt(n, 10)}
	}
	return Normalized{Kind: KindOpaque, Value: id}
}

// legacyNumber parses s as a catalog number. Signs and zero are rejected.
func legacyNumber(s string) (int64, bool) {
	if s[0] < '0' || s[0] > '9' {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// IsZero reports an empty identifier.
func (n Normalized) IsZero() bool {
	return n.Value == ""
}

func (n Normalized) String() string {
	return n.Value
}

// Equal reports whether a and b name the same thing: same kind and value.
// Empty ids are never equal to anything.
func Equal(a, b string) bool {
	na, nb := Classify(a), Classify(b)
	if na.IsZero() || nb.IsZero() {
		return false
	}
	return na == nb
}

// MatchesRecord reports whether query identifies a record with the given id and
// store documentID. The documentID comparison is the only cross-reference path:
// a legacy record and a document query match only when the record itself
// carries that document id.
func MatchesRecord(query, id, documentID string) bool {
	if Equal(query, id) {
		return true
	}
	return documentID != "" && Equal(query, documentID)
}

// SameIdentity reports whether two records describe the same logical course.
func SameIdentity(aID, aDocumentID, bID, bDocumentID string) bool {
	return MatchesRecord(aID, bID, bDocumentID) ||
		(aDocumentID != "" && MatchesRecord(aDocumentID, bID, bDocumentID))
}

// Key returns a map key for id that keeps kinds apart.
func Key(id string) string {
	n := Classify(id)
	return n.Kind.String() + ":" + n.Value
}

// RequireCourseID rejects ids that are neither legacy integers nor document ids.
func RequireCourseID(id string) (Normalized, error) {
	n := Classify(id)
	if n.Kind == KindOpaque {
		return Normalized{}, apperror.Invalid("course id", "%q is neither a catalog number nor a document id", id)
	}
	return n, nil
}

// IsDocumentID reports whether id is a store-assigned document id.
func IsDocumentID(id string) bool {
	return isDocumentID(strings.TrimSpace(id))
}

// NewDocumentID returns a fresh 24-hex identifier in the store's format.
func NewDocumentID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:documentIDLength/2])
}

func isDocumentID(s string) bool {
	if len(s) != documentIDLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
