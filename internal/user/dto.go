package user

import "errors"

type CreateUserDTO struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	Password     string `json:"password"`
	SiteID       string `json:"site_id"`
	DepartmentID string `json:"department_id"`
}

func (dto CreateUserDTO) Validate() error {
	if dto.Email == "" {
		return errors.New("email is required")
	}
	if dto.Name == "" {
		return errors.New("name is required")
	}
	if dto.Password == "" {
		return errors.New("password is required")
	}
	if dto.SiteID == "" {
		return errors.New("site_id is required")
	}
	if dto.DepartmentID == "" {
		return errors.New("department_id is required")
	}
	return nil
}

type UpdateUserDTO struct {
	Name   string `json:"name"`
	SiteID string `json:"site_id"`
}

func (dto UpdateUserDTO) Validate() error {
	if dto.Name == "" {
		return errors.New("name is required")
	}
	if dto.SiteID == "" {
		return errors.New("site_id is required")
	}
	return nil
}

type ChangeStatusDTO struct {
	Status string `json:"status"`
}

func (dto ChangeStatusDTO) Validate() error {
	if !ValidStatus(dto.Status) {
		return errors.New("status must be one of active, suspended, archived")
	}
	return nil
}
