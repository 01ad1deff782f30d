package permission

import "errors"

type CreatePermissionDTO struct {
	Key         string `json:"key"`
	Description string `json:"description"`
}

func (dto CreatePermissionDTO) Validate() error {
	if dto.Key == "" {
		return errors.New("key is required")
	}
	return nil
}

type UpdatePermissionDTO struct {
	Description string `json:"description"`
}
