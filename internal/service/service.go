// Package service реализует бизнес-логику платформы обмена ReWear.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rewear/rewear/internal/model"
	"github.com/rewear/rewear/internal/repository"
	"github.com/rewear/rewear/internal/validation"
)

const bcryptCost = 12

// ErrForbidden возвращается, если пользователю не разрешено выполняемое действие.
var (
	ErrForbidden = errors.New("action is not permitted for this user")
	// ErrSelfSwap возвращается при попытке обмена с самим собой.
	ErrSelfSwap = errors.New("cannot swap with yourself")
	// ErrSelfMessage возвращается при попытке отправить сообщение самому себе.
	ErrSelfMessage = errors.New("cannot message yourself")
	// ErrInvalidCredentials возвращается при неверной паре email/пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserSuspended возвращается при входе в отключённую учётную запись.
	ErrUserSuspended = errors.New("user account is suspended")
	// ErrUnknownAction возвращается для нераспознанного действия над заявкой.
	ErrUnknownAction = errors.New("unknown swap action")
)

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error

	CreateUser(ctx context.Context, email string, passwordHash []byte, name string, welcomePoints int64) (uuid.UUID, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	SetUserActive(ctx context.Context, id uuid.UUID, active bool) error
	SetUserRole(ctx context.Context, id uuid.UUID, role model.UserRole) error
	ListPointTransactions(ctx context.Context, userID uuid.UUID) ([]model.PointTransaction, error)

	CreateItem(ctx context.Context, item *model.Item) (uuid.UUID, error)
	GetItemByID(ctx context.Context, id uuid.UUID) (*model.Item, error)
	ListItemsByUser(ctx context.Context, userID uuid.UUID) ([]model.Item, error)
	BrowseItems(ctx context.Context, f repository.BrowseFilter) ([]model.Item, error)
	ListPendingItems(ctx context.Context, limit int) ([]model.Item, error)
	SetItemModeration(ctx context.Context, id uuid.UUID, status model.ItemStatus, available bool) error
	RemoveItem(ctx context.Context, id uuid.UUID) error

	CreateSwapRequest(ctx context.Context, s *model.SwapRequest) (uuid.UUID, error)
	GetSwapRequest(ctx context.Context, id uuid.UUID) (*model.SwapRequest, error)
	ListSwapsByUser(ctx context.Context, userID uuid.UUID) ([]model.SwapRequest, error)
	ListAllSwaps(ctx context.Context) ([]model.SwapRequest, error)
	TransitionSwap(ctx context.Context, id uuid.UUID, from, to model.SwapStatus) error
	CompleteSwap(ctx context.Context, id uuid.UUID) error

	CreateMessage(ctx context.Context, m *model.Message) (uuid.UUID, error)
	ListMessages(ctx context.Context, userID uuid.UUID, f repository.MessageFilter) ([]model.Message, error)
	MarkConversationRead(ctx context.Context, userID, fromUserID uuid.UUID) error

	GetAdminStats(ctx context.Context) (*model.AdminStats, error)
}

// Service содержит бизнес-логику платформы ReWear.
type Service struct {
	repo             Repository
	autoApproveItems bool
	welcomePoints    int64
}

// NewService создаёт новый сервис с указанным репозиторием.
func NewService(repo Repository, autoApproveItems bool, welcomePoints int64) *Service {
	return &Service{
		repo:             repo,
		autoApproveItems: autoApproveItems,
		welcomePoints:    welcomePoints,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// RegisterUser регистрирует нового пользователя и начисляет приветственные баллы.
func (s *Service) RegisterUser(ctx context.Context, name, email, password string) (*model.User, error) {
	if !validation.IsValidEmail(email) {
		return nil, fmt.Errorf("%w: invalid email", validation.ErrInvalidInput)
	}
	if !validation.IsValidPassword(password) {
		return nil, fmt.Errorf("%w: password too short", validation.ErrInvalidInput)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	id, err := s.repo.CreateUser(ctx, email, hashed, name, s.welcomePoints)
	if err != nil {
		return nil, err
	}

	return s.repo.GetUserByID(ctx, id)
}

// AuthenticateUser проверяет email и пароль пользователя.
func (s *Service) AuthenticateUser(ctx context.Context, email, password string) (*model.User, error) {
	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !u.Active {
		return nil, ErrUserSuspended
	}

	return u, nil
}

// GetUser возвращает пользователя по идентификатору.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// GetPointHistory возвращает текущий баланс и историю изменений баллов.
func (s *Service) GetPointHistory(ctx context.Context, userID uuid.UUID) (int64, []model.PointTransaction, error) {
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return 0, nil, err
	}

	history, err := s.repo.ListPointTransactions(ctx, userID)
	if err != nil {
		return 0, nil, err
	}

	return u.Points, history, nil
}
