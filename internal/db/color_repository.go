package db

import (
	"context"

	"github.com/terraincognita07/medport/internal/models"
	"gorm.io/gorm"
)

type ColorRepository struct {
	database *gorm.DB
}

func NewColorRepository(database *gorm.DB) *ColorRepository {
	return &ColorRepository{database: database}
}

func (repo *ColorRepository) List(ctx context.Context) ([]models.Color, error) {
	colors := make([]models.Color, 0)
	if err := repo.database.WithContext(ctx).Order("id ASC").Find(&colors).Error; err != nil {
		return nil, err
	}
	return colors, nil
}

func (repo *ColorRepository) FindByID(ctx context.Context, colorID uint) (models.Color, error) {
	color := models.Color{}
	if err := repo.database.WithContext(ctx).First(&color, colorID).Error; err != nil {
		return models.Color{}, err
	}
	return color, nil
}

func (repo *ColorRepository) Create(ctx context.Context, color *models.Color) error {
	return repo.database.WithContext(ctx).Create(color).Error
}

func (repo *ColorRepository) Save(ctx context.Context, color *models.Color) error {
	return repo.database.WithContext(ctx).Save(color).Error
}

// Delete removes the color and clears it from the medication it tagged.
func (repo *ColorRepository) Delete(ctx context.Context, colorID uint) error {
	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Medication{}).
			Where("color_id = ?", colorID).
			Update("color_id", nil).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Color{}, colorID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
