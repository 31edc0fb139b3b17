package ident

import "strings"

var prefixSeparators = []string{":", "_"}

// SplitRolePrefix splits a role-prefixed creator string such as "teacher:42"
// or "teacher_65f1c0a4e1b2c3d4e5f60718". Unprefixed values come back with an
// empty role.
func SplitRolePrefix(createdBy string) (role, id string) {
	value := strings.TrimSpace(createdBy)
	for _, candidate := range []string{"teacher", "admin", "moderator", "student"} {
		for _, sep := range prefixSeparators {
			prefix := candidate + sep
			if len(value) > len(prefix) && strings.EqualFold(value[:len(prefix)], prefix) {
				return candidate, value[len(prefix):]
			}
		}
	}
	return "", value
}

// OwnerID strips any role prefix from a creator string.
func OwnerID(createdBy string) string {
	_, id := SplitRolePrefix(createdBy)
	return id
}

// SameOwner reports whether actorID authored a record whose creator is createdBy.
func SameOwner(createdBy, actorID string) bool {
	if createdBy == "" || actorID == "" {
		return false
	}
	return Equal(OwnerID(createdBy), actorID)
}
