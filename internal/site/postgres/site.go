package postgres

import (
	"gorm.io/gorm"

	"github.com/valcriss/sovrane/internal/site"
)

type SiteRepository struct {
	db *gorm.DB
}

func NewSiteRepository(db *gorm.DB) site.Repository {
	return &SiteRepository{db: db}
}

func (r *SiteRepository) GetByID(id string) (*site.Site, error) {
	var s site.Site
	err := r.db.Where("id = ?", id).First(&s).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *SiteRepository) GetByLabel(label string) (*site.Site, error) {
	var s site.Site
	err := r.db.Where("label = ?", label).First(&s).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *SiteRepository) GetAll() ([]*site.Site, error) {
	var sites []*site.Site
	err := r.db.Order("label ASC").Find(&sites).Error
	return sites, err
}

func (r *SiteRepository) Create(s *site.Site) error {
	return r.db.Create(s).Error
}

func (r *SiteRepository) Update(s *site.Site) error {
	return r.db.Save(s).Error
}

func (r *SiteRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&site.Site{}).Error
}
