package domain

import (
	"fmt"
	"strings"
)

type Role uint8

const (
	RoleAgent Role = iota
	RoleEmployer
	RoleValidator
)

var Roles = []Role{RoleAgent, RoleEmployer, RoleValidator}

var roleNames = map[Role]string{
	RoleAgent:     "agent",
	RoleEmployer:  "employer",
	RoleValidator: "validator",
}

func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("role(%d)", uint8(r))
}

func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for r, name := range roleNames {
		if name == s || fmt.Sprintf("%d", r) == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown role %q", s)
}
