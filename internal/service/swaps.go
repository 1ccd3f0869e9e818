package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rewear/rewear/internal/model"
	"github.com/rewear/rewear/internal/repository"
	"github.com/rewear/rewear/internal/validation"
)

// CreateSwapParams описывает параметры новой заявки на обмен.
type CreateSwapParams struct {
	ReceiverItemID uuid.UUID
	SenderItemID   *uuid.UUID
	Type           model.SwapType
	Message        string
}

// CreateSwapRequest создаёт новую заявку на обмен от имени senderID.
// Проверка баланса для POINTS здесь справочная: окончательная проверка
// выполняется под блокировкой при расчёте.
func (s *Service) CreateSwapRequest(ctx context.Context, senderID uuid.UUID, p CreateSwapParams) (*model.SwapRequest, error) {
	if p.Type != model.SwapTypeDirect && p.Type != model.SwapTypePoints {
		return nil, fmt.Errorf("%w: unknown swap type %q", validation.ErrInvalidInput, p.Type)
	}

	receiverItem, err := s.repo.GetItemByID(ctx, p.ReceiverItemID)
	if err != nil {
		return nil, err
	}

	if receiverItem.UserID == senderID {
		return nil, ErrSelfSwap
	}
	if receiverItem.Status != model.ItemStatusApproved || !receiverItem.Available {
		return nil, repository.ErrItemUnavailable
	}

	req := &model.SwapRequest{
		SenderID:       senderID,
		ReceiverID:     receiverItem.UserID,
		ReceiverItemID: p.ReceiverItemID,
		Type:           p.Type,
		Message:        p.Message,
	}

	switch p.Type {
	case model.SwapTypeDirect:
		if p.SenderItemID == nil {
			return nil, fmt.Errorf("%w: sender item is required for direct swaps", validation.ErrInvalidInput)
		}

		senderItem, err := s.repo.GetItemByID(ctx, *p.SenderItemID)
		if err != nil {
			return nil, err
		}
		if senderItem.UserID != senderID {
			return nil, ErrForbidden
		}
		if senderItem.Status != model.ItemStatusApproved || !senderItem.Available {
			return nil, repository.ErrItemUnavailable
		}

		req.SenderItemID = p.SenderItemID

	case model.SwapTypePoints:
		// Для выкупа за баллы физической вещи со стороны отправителя нет.
		req.SenderItemID = nil

		sender, err := s.repo.GetUserByID(ctx, senderID)
		if err != nil {
			return nil, err
		}
		if sender.Points < receiverItem.PointValue {
			return nil, repository.ErrInsufficientPoints
		}
	}

	id, err := s.repo.CreateSwapRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	return s.repo.GetSwapRequest(ctx, id)
}

// ApplySwapAction выполняет действие над заявкой на обмен от имени actorID.
//
// Матрица переходов:
//
//	accept   PENDING  -> ACCEPTED   только получатель
//	reject   PENDING  -> REJECTED   только получатель
//	cancel   PENDING  -> CANCELLED  только отправитель
//	complete ACCEPTED -> COMPLETED  любой из участников, с расчётом
func (s *Service) ApplySwapAction(ctx context.Context, swapID, actorID uuid.UUID, action model.SwapAction) (*model.SwapRequest, error) {
	swap, err := s.repo.GetSwapRequest(ctx, swapID)
	if err != nil {
		return nil, err
	}

	switch action {
	case model.SwapActionAccept, model.SwapActionReject:
		if swap.ReceiverID != actorID {
			return nil, ErrForbidden
		}
	case model.SwapActionCancel:
		if swap.SenderID != actorID {
			return nil, ErrForbidden
		}
	case model.SwapActionComplete:
		if swap.SenderID != actorID && swap.ReceiverID != actorID {
			return nil, ErrForbidden
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	// Предварительная проверка статуса; решающая выполняется в хранилище
	// атомарно, так что гонка двух переходов разрешается там.
	switch action {
	case model.SwapActionAccept:
		if swap.Status != model.SwapStatusPending {
			return nil, repository.ErrInvalidTransition
		}
		err = s.repo.TransitionSwap(ctx, swapID, model.SwapStatusPending, model.SwapStatusAccepted)
	case model.SwapActionReject:
		if swap.Status != model.SwapStatusPending {
			return nil, repository.ErrInvalidTransition
		}
		err = s.repo.TransitionSwap(ctx, swapID, model.SwapStatusPending, model.SwapStatusRejected)
	case model.SwapActionCancel:
		if swap.Status != model.SwapStatusPending {
			return nil, repository.ErrInvalidTransition
		}
		err = s.repo.TransitionSwap(ctx, swapID, model.SwapStatusPending, model.SwapStatusCancelled)
	case model.SwapActionComplete:
		if swap.Status != model.SwapStatusAccepted {
			return nil, repository.ErrInvalidTransition
		}
		err = s.repo.CompleteSwap(ctx, swapID)
	}
	if err != nil {
		return nil, err
	}

	return s.repo.GetSwapRequest(ctx, swapID)
}

// GetSwapsByUser возвращает входящие и исходящие заявки пользователя.
func (s *Service) GetSwapsByUser(ctx context.Context, userID uuid.UUID) ([]model.SwapRequest, error) {
	return s.repo.ListSwapsByUser(ctx, userID)
}
