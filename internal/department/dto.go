package department

import "errors"

type CreateDepartmentDTO struct {
	Label              string  `json:"label"`
	SiteID             string  `json:"site_id"`
	ParentDepartmentID *string `json:"parent_department_id,omitempty"`
	ManagerUserID      *string `json:"manager_user_id,omitempty"`
}

func (dto CreateDepartmentDTO) Validate() error {
	if dto.Label == "" {
		return errors.New("label is required")
	}
	if dto.SiteID == "" {
		return errors.New("site_id is required")
	}
	return nil
}

type UpdateDepartmentDTO struct {
	Label         string  `json:"label"`
	SiteID        string  `json:"site_id"`
	ManagerUserID *string `json:"manager_user_id,omitempty"`
}

func (dto UpdateDepartmentDTO) Validate() error {
	if dto.Label == "" {
		return errors.New("label is required")
	}
	if dto.SiteID == "" {
		return errors.New("site_id is required")
	}
	return nil
}
