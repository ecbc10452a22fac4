package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"foodgram/internal/domain"
	"foodgram/internal/modules/common"
	"foodgram/internal/pkg/validator"
	"foodgram/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]domain.User, int64, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
}

type SubscriptionRepository interface {
	Add(ctx context.Context, userID, authorID int64) error
	Remove(ctx context.Context, userID, authorID int64) error
	Exists(ctx context.Context, userID, authorID int64) (bool, error)
	SubscribedTo(ctx context.Context, userID int64, authorIDs []int64) (map[int64]bool, error)
	ListAuthors(ctx context.Context, userID int64, limit, offset int) ([]domain.User, int64, error)
}

// RecipeReader: рецепты автора для ленты подписок.
type RecipeReader interface {
	ListByAuthor(ctx context.Context, authorID int64, limit int) ([]domain.Recipe, error)
	CountByAuthor(ctx context.Context, authorID int64) (int64, error)
}

type Service struct {
	users   UserRepository
	subs    SubscriptionRepository
	recipes RecipeReader
}

func NewService(users UserRepository, subs SubscriptionRepository, recipes RecipeReader) *Service {
	return &Service{users: users, subs: subs, recipes: recipes}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByEmailOrUsername(ctx, req.Email, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &domain.User{
		Email:        req.Email,
		Username:     req.Username,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) List(ctx context.Context, p domain.Principal, limit, offset int) ([]common.UserResponse, int64, error) {
	list, total, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]int64, 0, len(list))
	for _, u := range list {
		ids = append(ids, u.ID)
	}
	subscribed, err := s.subs.SubscribedTo(ctx, p.UserID, ids)
	if err != nil {
		return nil, 0, err
	}

	out := make([]common.UserResponse, 0, len(list))
	for i := range list {
		out = append(out, common.NewUserResponse(&list[i], subscribed[list[i].ID]))
	}
	return out, total, nil
}

func (s *Service) Get(ctx context.Context, p domain.Principal, id int64) (*common.UserResponse, error) {
	u, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	subscribed, err := s.isSubscribed(ctx, p, u.ID)
	if err != nil {
		return nil, err
	}
	resp := common.NewUserResponse(u, subscribed)
	return &resp, nil
}

// Me: профиль текущего пользователя; подписки на себя не бывает.
func (s *Service) Me(ctx context.Context, p domain.Principal) (*common.UserResponse, error) {
	if !p.Authenticated() {
		return nil, ErrUnauthenticated
	}
	u, err := s.getUser(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	resp := common.NewUserResponse(u, false)
	return &resp, nil
}

func (s *Service) SetPassword(ctx context.Context, p domain.Principal, req SetPasswordRequest) error {
	if !p.Authenticated() {
		return ErrUnauthenticated
	}
	if err := validator.Check(req); err != nil {
		return err
	}

	u, err := s.getUser(ctx, p.UserID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.CurrentPassword)) != nil {
		return ErrInvalidPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, u.ID, string(hash))
}

// Subscribe подписывает участника на автора. recipesLimit < 0: все рецепты автора.
func (s *Service) Subscribe(ctx context.Context, p domain.Principal, authorID int64, recipesLimit int) (*SubscriptionResponse, error) {
	if !p.Authenticated() {
		return nil, ErrUnauthenticated
	}
	author, err := s.getUser(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if author.ID == p.UserID {
		return nil, ErrSelfSubscription
	}

	exists, err := s.subs.Exists(ctx, p.UserID, author.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadySubscribed
	}
	if err := s.subs.Add(ctx, p.UserID, author.ID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadySubscribed
		}
		return nil, err
	}

	return s.subscription(ctx, author, recipesLimit)
}

func (s *Service) Unsubscribe(ctx context.Context, p domain.Principal, authorID int64) error {
	if !p.Authenticated() {
		return ErrUnauthenticated
	}
	if _, err := s.getUser(ctx, authorID); err != nil {
		return err
	}
	if err := s.subs.Remove(ctx, p.UserID, authorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSubscriptionMissing
		}
		return err
	}
	return nil
}

// Subscriptions: авторы, на которых подписан участник, с их рецептами.
func (s *Service) Subscriptions(ctx context.Context, p domain.Principal, limit, offset, recipesLimit int) ([]SubscriptionResponse, int64, error) {
	if !p.Authenticated() {
		return nil, 0, ErrUnauthenticated
	}
	authors, total, err := s.subs.ListAuthors(ctx, p.UserID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	out := make([]SubscriptionResponse, 0, len(authors))
	for i := range authors {
		sub, err := s.subscription(ctx, &authors[i], recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *sub)
	}
	return out, total, nil
}

func (s *Service) subscription(ctx context.Context, author *domain.User, recipesLimit int) (*SubscriptionResponse, error) {
	recipes, err := s.recipes.ListByAuthor(ctx, author.ID, recipesLimit)
	if err != nil {
		return nil, err
	}
	count, err := s.recipes.CountByAuthor(ctx, author.ID)
	if err != nil {
		return nil, err
	}
	return &SubscriptionResponse{
		UserResponse: common.NewUserResponse(author, true),
		Recipes:      common.NewShortRecipeList(recipes),
		RecipesCount: count,
	}, nil
}

func (s *Service) getUser(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) isSubscribed(ctx context.Context, p domain.Principal, authorID int64) (bool, error) {
	if !p.Authenticated() || p.UserID == authorID {
		return false, nil
	}
	return s.subs.Exists(ctx, p.UserID, authorID)
}
