package usergroup

import "errors"

type GroupDTO struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

func (dto GroupDTO) Validate() error {
	if dto.Name == "" {
		return errors.New("name is required")
	}
	return nil
}
