package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rewear/rewear/internal/model"
	"github.com/rewear/rewear/internal/validation"
)

const pendingItemsLimit = 10

// ModerateItem выставляет решение модератора по вещи: approve или reject.
func (s *Service) ModerateItem(ctx context.Context, itemID uuid.UUID, approve bool) error {
	status := model.ItemStatusRejected
	if approve {
		status = model.ItemStatusApproved
	}
	return s.repo.SetItemModeration(ctx, itemID, status, approve)
}

// GetPendingItems возвращает очередь вещей на модерацию.
func (s *Service) GetPendingItems(ctx context.Context) ([]model.Item, error) {
	return s.repo.ListPendingItems(ctx, pendingItemsLimit)
}

// ListUsers возвращает всех пользователей для панели администратора.
func (s *Service) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.repo.ListUsers(ctx)
}

// AdminUserAction применяет административное действие к пользователю:
// suspend, activate, promote, demote.
func (s *Service) AdminUserAction(ctx context.Context, userID uuid.UUID, action string) error {
	switch action {
	case "suspend":
		return s.repo.SetUserActive(ctx, userID, false)
	case "activate":
		return s.repo.SetUserActive(ctx, userID, true)
	case "promote":
		return s.repo.SetUserRole(ctx, userID, model.RoleModerator)
	case "demote":
		return s.repo.SetUserRole(ctx, userID, model.RoleUser)
	default:
		return fmt.Errorf("%w: unknown admin action %q", validation.ErrInvalidInput, action)
	}
}

// GetAdminStats возвращает агрегированные счётчики платформы.
func (s *Service) GetAdminStats(ctx context.Context) (*model.AdminStats, error) {
	return s.repo.GetAdminStats(ctx)
}

// GetAllSwaps возвращает все заявки на обмен для панели администратора.
func (s *Service) GetAllSwaps(ctx context.Context) ([]model.SwapRequest, error) {
	return s.repo.ListAllSwaps(ctx)
}
