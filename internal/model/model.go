// Package model содержит доменные сущности платформы обмена одеждой ReWear.
package model

import (
	"time"

	"github.com/google/uuid"
)

// UserRole описывает роль пользователя на платформе.
type UserRole string

const (
	RoleUser      UserRole = "USER"
	RoleModerator UserRole = "MODERATOR"
	RoleAdmin     UserRole = "ADMIN"
)

// IsStaff сообщает, имеет ли роль доступ к функциям модерации.
func (r UserRole) IsStaff() bool {
	return r == RoleAdmin || r == RoleModerator
}

// User представляет зарегистрированного участника обменов.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash []byte
	Name         string
	Bio          string
	Points       int64
	Role         UserRole
	Verified     bool
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ItemStatus описывает статус модерации вещи.
type ItemStatus string

const (
	ItemStatusPending  ItemStatus = "PENDING"
	ItemStatusApproved ItemStatus = "APPROVED"
	ItemStatusRejected ItemStatus = "REJECTED"
	ItemStatusSold     ItemStatus = "SOLD"
	ItemStatusRemoved  ItemStatus = "REMOVED"
)

// Item представляет выставленную на обмен вещь.
type Item struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Title       string
	Description string
	Category    string
	Size        string
	Condition   string
	Brand       string
	Color       string
	Tags        []string
	PointValue  int64
	Status      ItemStatus
	Available   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SwapType описывает вид обмена: вещь на вещь или выкуп за баллы.
type SwapType string

const (
	SwapTypeDirect SwapType = "DIRECT"
	SwapTypePoints SwapType = "POINTS"
)

// SwapStatus описывает статус заявки на обмен.
type SwapStatus string

const (
	SwapStatusPending   SwapStatus = "PENDING"
	SwapStatusAccepted  SwapStatus = "ACCEPTED"
	SwapStatusRejected  SwapStatus = "REJECTED"
	SwapStatusCompleted SwapStatus = "COMPLETED"
	SwapStatusCancelled SwapStatus = "CANCELLED"
)

// Terminal сообщает, является ли статус конечным.
func (s SwapStatus) Terminal() bool {
	return s == SwapStatusRejected || s == SwapStatusCompleted || s == SwapStatusCancelled
}

// SwapAction описывает действие над заявкой на обмен.
type SwapAction string

const (
	SwapActionAccept   SwapAction = "accept"
	SwapActionReject   SwapAction = "reject"
	SwapActionComplete SwapAction = "complete"
	SwapActionCancel   SwapAction = "cancel"
)

// SwapRequest представляет заявку на обмен между двумя пользователями.
// SenderItemID равен nil для обменов типа POINTS.
type SwapRequest struct {
	ID             uuid.UUID
	SenderID       uuid.UUID
	ReceiverID     uuid.UUID
	SenderItemID   *uuid.UUID
	ReceiverItemID uuid.UUID
	Type           SwapType
	Status         SwapStatus
	Message        string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PointTransactionType описывает причину изменения баланса баллов.
type PointTransactionType string

const (
	PointTxEarnedListing   PointTransactionType = "EARNED_LISTING"
	PointTxEarnedSwap      PointTransactionType = "EARNED_SWAP"
	PointTxSpentRedemption PointTransactionType = "SPENT_REDEMPTION"
	PointTxBonus           PointTransactionType = "BONUS"
	PointTxPenalty         PointTransactionType = "PENALTY"
)

// PointTransaction представляет неизменяемую запись об изменении баланса.
type PointTransaction struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	ItemID      *uuid.UUID
	Amount      int64
	Type        PointTransactionType
	Description string
	CreatedAt   time.Time
}

// Message представляет сообщение между пользователями,
// опционально привязанное к заявке на обмен.
type Message struct {
	ID            uuid.UUID
	SenderID      uuid.UUID
	ReceiverID    uuid.UUID
	SwapRequestID *uuid.UUID
	Content       string
	Read          bool
	CreatedAt     time.Time
}

// AdminStats содержит агрегированные счётчики для панели администратора.
type AdminStats struct {
	TotalUsers     int64 `json:"total_users"`
	TotalItems     int64 `json:"total_items"`
	PendingItems   int64 `json:"pending_items"`
	ActiveSwaps    int64 `json:"active_swaps"`
	CompletedSwaps int64 `json:"completed_swaps"`
	RejectedItems  int64 `json:"rejected_items"`
}
