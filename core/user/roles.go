package user

import (
	"fmt"

	"github.com/pkg/errors"
)

// Role is the closed set of user kinds. Every role-dependent behavior goes through Dispatch.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleTutor   Role = "tutor"
)

var (
	AllRoles   = []Role{RoleAdmin, RoleTeacher, RoleTutor}
	StaffRoles = []Role{RoleAdmin, RoleTeacher}

	ErrUnknownRole = errors.New("unknown role")

	Roles = []RoleInfo{
		{Name: "Administrator", Value: RoleAdmin},
		{Name: "Teacher", Value: RoleTeacher},
		{Name: "Tutor", Value: RoleTutor},
	}
)

type RoleInfo struct {
	Name  string `json:"name"`
	Value Role   `json:"value"`
}

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleTutor:
		return true
	}
	return false
}

func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleTeacher
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", errors.Wrap(ErrUnknownRole, s)
	}
	return r, nil
}

// RoleHandlers holds one handler per role. All of them must be set.
type RoleHandlers struct {
	Admin   func() error
	Teacher func() error
	Tutor   func() error
}

// Dispatch calls the handler matching role.
func Dispatch(role Role, h RoleHandlers) error {
	var fn func() error
	switch role {
	case RoleAdmin:
		fn = h.Admin
	case RoleTeacher:
		fn = h.Teacher
	case RoleTutor:
		fn = h.Tutor
	default:
		return errors.Wrap(ErrUnknownRole, string(role))
	}
	if fn == nil {
		return fmt.Errorf("no handler for role %q", role)
	}
	return fn()
}
