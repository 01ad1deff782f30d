package role

import (
	"errors"

	"github.com/valcriss/sovrane/internal/accesscontrol"
)

type AssignmentDTO struct {
	Key     string  `json:"key"`
	ScopeID *string `json:"scope_id,omitempty"`
}

type RoleDTO struct {
	Label       string          `json:"label"`
	Assignments []AssignmentDTO `json:"assignments"`
}

func (dto RoleDTO) Validate() error {
	if dto.Label == "" {
		return errors.New("label is required")
	}
	for _, a := range dto.Assignments {
		if a.Key == "" {
			return errors.New("assignment key is required")
		}
	}
	return nil
}

func (dto RoleDTO) toAssignments() []accesscontrol.Assignment {
	assignments := make([]accesscontrol.Assignment, len(dto.Assignments))
	for i, a := range dto.Assignments {
		assignments[i] = accesscontrol.Assignment{
			Key:     accesscontrol.Key(a.Key),
			ScopeID: a.ScopeID,
		}
	}
	return assignments
}
