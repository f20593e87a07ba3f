package model

import (
	"strings"

	"github.com/google/uuid"
)

type Role string

const (
	RoleEditor Role = "EDITOR"
	RoleViewer Role = "VIEWER"
)

func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleEditor:
		return RoleEditor, true
	case RoleViewer:
		return RoleViewer, true
	}
	return "", false
}

type Principal struct {
	UserID uuid.UUID
	Name   string
	Role   Role
}

func (p Principal) IsEditor() bool {
	return p.Role == RoleEditor
}

func (p Principal) IsViewer() bool {
	return p.Role == RoleViewer
}
