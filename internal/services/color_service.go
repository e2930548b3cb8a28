package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/terraincognita07/medport/internal/models"
)

const (
	maxColorNameLength = 255
	minColorChannel    = 0
	maxColorChannel    = 255
)

type ColorRepository interface {
	List(ctx context.Context) ([]models.Color, error)
	FindByID(ctx context.Context, colorID uint) (models.Color, error)
	Create(ctx context.Context, color *models.Color) error
	Save(ctx context.Context, color *models.Color) error
	Delete(ctx context.Context, colorID uint) error
}

type ColorService struct {
	colors ColorRepository
}

func NewColorService(colors ColorRepository) *ColorService {
	return &ColorService{colors: colors}
}

func (service *ColorService) List(ctx context.Context) ([]models.Color, error) {
	colors, err := service.colors.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list colors: %w", err)
	}
	return colors, nil
}

func (service *ColorService) Get(ctx context.Context, colorID uint) (models.Color, error) {
	color, err := service.colors.FindByID(ctx, colorID)
	if err != nil {
		return models.Color{}, notFoundOr(err, "color", colorID)
	}
	return color, nil
}

func (service *ColorService) Create(ctx context.Context, input ColorInput) (models.Color, error) {
	color := models.Color{}
	if err := applyColorInput(&color, input, ModeCreate); err != nil {
		return models.Color{}, err
	}
	if err := service.colors.Create(ctx, &color); err != nil {
		return models.Color{}, fmt.Errorf("create color: %w", err)
	}
	return color, nil
}

func (service *ColorService) Update(ctx context.Context, colorID uint, input ColorInput, mode WriteMode) (models.Color, error) {
	color, err := service.Get(ctx, colorID)
	if err != nil {
		return models.Color{}, err
	}
	if err := applyColorInput(&color, input, mode); err != nil {
		return models.Color{}, err
	}
	if err := service.colors.Save(ctx, &color); err != nil {
		return models.Color{}, fmt.Errorf("save color %d: %w", colorID, err)
	}
	return color, nil
}

func (service *ColorService) Delete(ctx context.Context, colorID uint) error {
	return notFoundOr(service.colors.Delete(ctx, colorID), "color", colorID)
}

func applyColorInput(color *models.Color, input ColorInput, mode WriteMode) error {
	channels := []struct {
		field  string
		value  *int
		target *int
	}{
		{field: "red", value: input.Red, target: &color.Red},
		{field: "green", value: input.Green, target: &color.Green},
		{field: "blue", value: input.Blue, target: &color.Blue},
	}
	for _, channel := range channels {
		if channel.value == nil {
			if mode.requiresAll() {
				return invalidField(channel.field, "is required")
			}
			continue
		}
		if *channel.value < minColorChannel || *channel.value > maxColorChannel {
			return invalidField(channel.field, "must be between %d and %d", minColorChannel, maxColorChannel)
		}
		*channel.target = *channel.value
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if len(name) > maxColorNameLength {
			return invalidField("name", "must be at most %d characters", maxColorNameLength)
		}
		color.Name = name
	}
	if color.Name == "" {
		color.Name = models.DefaultColorName
	}
	return nil
}
