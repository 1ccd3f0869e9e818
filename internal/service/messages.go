package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rewear/rewear/internal/model"
	"github.com/rewear/rewear/internal/repository"
	"github.com/rewear/rewear/internal/validation"
)

// SendMessageParams описывает параметры нового сообщения.
type SendMessageParams struct {
	ReceiverID    uuid.UUID
	Content       string
	SwapRequestID *uuid.UUID
}

// SendMessage отправляет сообщение от имени senderID. Сообщение можно
// привязать к заявке на обмен, если отправитель в ней участвует.
func (s *Service) SendMessage(ctx context.Context, senderID uuid.UUID, p SendMessageParams) (uuid.UUID, error) {
	if p.Content == "" {
		return uuid.Nil, fmt.Errorf("%w: message content is required", validation.ErrInvalidInput)
	}
	if p.ReceiverID == senderID {
		return uuid.Nil, ErrSelfMessage
	}

	if _, err := s.repo.GetUserByID(ctx, p.ReceiverID); err != nil {
		return uuid.Nil, err
	}

	if p.SwapRequestID != nil {
		swap, err := s.repo.GetSwapRequest(ctx, *p.SwapRequestID)
		if err != nil {
			return uuid.Nil, err
		}
		if swap.SenderID != senderID && swap.ReceiverID != senderID {
			return uuid.Nil, ErrForbidden
		}
	}

	return s.repo.CreateMessage(ctx, &model.Message{
		SenderID:      senderID,
		ReceiverID:    p.ReceiverID,
		SwapRequestID: p.SwapRequestID,
		Content:       p.Content,
	})
}

// GetMessages возвращает сообщения пользователя с учётом фильтров.
func (s *Service) GetMessages(ctx context.Context, userID uuid.UUID, f repository.MessageFilter) ([]model.Message, error) {
	return s.repo.ListMessages(ctx, userID, f)
}

// MarkConversationRead помечает прочитанной переписку с указанным собеседником.
func (s *Service) MarkConversationRead(ctx context.Context, userID, fromUserID uuid.UUID) error {
	return s.repo.MarkConversationRead(ctx, userID, fromUserID)
}
