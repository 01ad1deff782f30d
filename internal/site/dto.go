package site

import "errors"

type SiteDTO struct {
	Label string `json:"label"`
}

func (dto SiteDTO) Validate() error {
	if dto.Label == "" {
		return errors.New("label is required")
	}
	return nil
}
