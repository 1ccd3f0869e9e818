package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rewear/rewear/internal/model"
	"github.com/rewear/rewear/internal/repository"
	"github.com/rewear/rewear/internal/validation"
)

// CreateItemParams описывает параметры новой вещи.
type CreateItemParams struct {
	Title       string
	Description string
	Category    string
	Size        string
	Condition   string
	Brand       string
	Color       string
	Tags        []string
	PointValue  int64
}

// CreateItem публикует новую вещь от имени userID. В зависимости от
// конфигурации вещь создаётся в статусе PENDING или сразу APPROVED.
func (s *Service) CreateItem(ctx context.Context, userID uuid.UUID, p CreateItemParams) (*model.Item, error) {
	if err := validation.ValidateItemFields(p.Title, p.Category, p.Size, p.Condition); err != nil {
		return nil, err
	}

	if p.PointValue == 0 {
		p.PointValue = validation.DefaultPointValue
	}
	if p.PointValue < 0 {
		return nil, fmt.Errorf("%w: point value must be positive", validation.ErrInvalidInput)
	}

	status := model.ItemStatusPending
	available := false
	if s.autoApproveItems {
		status = model.ItemStatusApproved
		available = true
	}

	item := &model.Item{
		UserID:      userID,
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Size:        p.Size,
		Condition:   p.Condition,
		Brand:       p.Brand,
		Color:       p.Color,
		Tags:        p.Tags,
		PointValue:  p.PointValue,
		Status:      status,
		Available:   available,
	}

	id, err := s.repo.CreateItem(ctx, item)
	if err != nil {
		return nil, err
	}

	return s.repo.GetItemByID(ctx, id)
}

// GetItem возвращает вещь по идентификатору.
func (s *Service) GetItem(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	return s.repo.GetItemByID(ctx, id)
}

// GetItemsByUser возвращает вещи пользователя.
func (s *Service) GetItemsByUser(ctx context.Context, userID uuid.UUID) ([]model.Item, error) {
	return s.repo.ListItemsByUser(ctx, userID)
}

// BrowseItems возвращает каталог одобренных вещей с учётом фильтров.
func (s *Service) BrowseItems(ctx context.Context, f repository.BrowseFilter) ([]model.Item, error) {
	return s.repo.BrowseItems(ctx, f)
}

// RemoveItem снимает вещь с публикации. Разрешено владельцу и модераторам.
func (s *Service) RemoveItem(ctx context.Context, itemID, actorID uuid.UUID, actorRole model.UserRole) error {
	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return err
	}

	if item.UserID != actorID && !actorRole.IsStaff() {
		return ErrForbidden
	}

	return s.repo.RemoveItem(ctx, itemID)
}
