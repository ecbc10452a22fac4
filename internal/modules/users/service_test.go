package users

import (
	"context"
	"testing"

	"foodgram/internal/domain"
	"foodgram/internal/pkg/validator"
	"foodgram/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	args := m.Called(ctx, email, username)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context, limit, offset int) ([]domain.User, int64, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]domain.User), args.Get(1).(int64), args.Error(2)
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

type mockSubscriptionRepo struct {
	mock.Mock
}

func (m *mockSubscriptionRepo) Add(ctx context.Context, userID, authorID int64) error {
	return m.Called(ctx, userID, authorID).Error(0)
}

func (m *mockSubscriptionRepo) Remove(ctx context.Context, userID, authorID int64) error {
	return m.Called(ctx, userID, authorID).Error(0)
}

func (m *mockSubscriptionRepo) Exists(ctx context.Context, userID, authorID int64) (bool, error) {
	args := m.Called(ctx, userID, authorID)
	return args.Bool(0), args.Error(1)
}

func (m *mockSubscriptionRepo) SubscribedTo(ctx context.Context, userID int64, authorIDs []int64) (map[int64]bool, error) {
	args := m.Called(ctx, userID, authorIDs)
	return args.Get(0).(map[int64]bool), args.Error(1)
}

func (m *mockSubscriptionRepo) ListAuthors(ctx context.Context, userID int64, limit, offset int) ([]domain.User, int64, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.User), args.Get(1).(int64), args.Error(2)
}

type mockRecipeReader struct {
	mock.Mock
}

func (m *mockRecipeReader) ListByAuthor(ctx context.Context, authorID int64, limit int) ([]domain.Recipe, error) {
	args := m.Called(ctx, authorID, limit)
	return args.Get(0).([]domain.Recipe), args.Error(1)
}

func (m *mockRecipeReader) CountByAuthor(ctx context.Context, authorID int64) (int64, error) {
	args := m.Called(ctx, authorID)
	return args.Get(0).(int64), args.Error(1)
}

func newTestService() (*Service, *mockUserRepo, *mockSubscriptionRepo, *mockRecipeReader) {
	users := new(mockUserRepo)
	subs := new(mockSubscriptionRepo)
	recipes := new(mockRecipeReader)
	return NewService(users, subs, recipes), users, subs, recipes
}

var (
	reader = domain.Principal{UserID: 1, Role: domain.RoleUser}
	chef   = &domain.User{ID: 2, Email: "chef@example.com", Username: "chef"}
)

func TestService_Register_Success(t *testing.T) {
	svc, users, _, _ := newTestService()

	users.On("ExistsByEmailOrUsername", mock.Anything, "new@example.com", "newbie").Return(false, nil)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "new@example.com" &&
			u.Role == domain.RoleUser &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret-pass")) == nil
	})).Return(nil)

	u, err := svc.Register(context.Background(), RegisterRequest{
		Email:     " New@Example.com ",
		Username:  "newbie",
		FirstName: "New",
		LastName:  "Bie",
		Password:  "s3cret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "newbie", u.Username)
	users.AssertExpectations(t)
}

func TestService_Register_Rejects(t *testing.T) {
	valid := RegisterRequest{Email: "a@example.com", Username: "a", FirstName: "A", LastName: "B", Password: "long-enough"}

	t.Run("validation", func(t *testing.T) {
		svc, _, _, _ := newTestService()
		bad := valid
		bad.Username = "has space"
		bad.Password = "short"

		_, err := svc.Register(context.Background(), bad)
		var verr *validator.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "username")
		assert.Contains(t, verr.Fields, "password")
	})

	t.Run("exists", func(t *testing.T) {
		svc, users, _, _ := newTestService()
		users.On("ExistsByEmailOrUsername", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)

		_, err := svc.Register(context.Background(), valid)
		assert.ErrorIs(t, err, ErrAlreadyExists)
	})

	t.Run("store duplicate", func(t *testing.T) {
		svc, users, _, _ := newTestService()
		users.On("ExistsByEmailOrUsername", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
		users.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicate)

		_, err := svc.Register(context.Background(), valid)
		assert.ErrorIs(t, err, ErrAlreadyExists)
	})
}

func TestService_Subscribe_Self(t *testing.T) {
	svc, users, subs, _ := newTestService()
	me := &domain.User{ID: reader.UserID, Username: "reader"}
	users.On("GetByID", mock.Anything, reader.UserID).Return(me, nil)

	// отказ не зависит от состояния подписки: хранилище даже не спрашиваем
	for i := 0; i < 2; i++ {
		_, err := svc.Subscribe(context.Background(), reader, reader.UserID, -1)
		assert.ErrorIs(t, err, ErrSelfSubscription)
	}
	subs.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything, mock.Anything)
	subs.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Subscribe_Success(t *testing.T) {
	svc, users, subs, recipes := newTestService()
	users.On("GetByID", mock.Anything, chef.ID).Return(chef, nil)
	subs.On("Exists", mock.Anything, reader.UserID, chef.ID).Return(false, nil)
	subs.On("Add", mock.Anything, reader.UserID, chef.ID).Return(nil)
	recipes.On("ListByAuthor", mock.Anything, chef.ID, 2).Return([]domain.Recipe{
		{ID: 10, Name: "Soup", CookingTime: 30, Image: "/media/a.png"},
		{ID: 9, Name: "Pie", CookingTime: 60, Image: "/media/b.png"},
	}, nil)
	recipes.On("CountByAuthor", mock.Anything, chef.ID).Return(int64(5), nil)

	sub, err := svc.Subscribe(context.Background(), reader, chef.ID, 2)
	require.NoError(t, err)
	assert.True(t, sub.IsSubscribed)
	assert.Equal(t, "chef", sub.Username)
	assert.Len(t, sub.Recipes, 2)
	assert.Equal(t, int64(5), sub.RecipesCount)
}

func TestService_Subscribe_Duplicate(t *testing.T) {
	t.Run("pre-check", func(t *testing.T) {
		svc, users, subs, _ := newTestService()
		users.On("GetByID", mock.Anything, chef.ID).Return(chef, nil)
		subs.On("Exists", mock.Anything, reader.UserID, chef.ID).Return(true, nil)

		_, err := svc.Subscribe(context.Background(), reader, chef.ID, -1)
		assert.ErrorIs(t, err, ErrAlreadySubscribed)
	})

	t.Run("store race", func(t *testing.T) {
		svc, users, subs, _ := newTestService()
		users.On("GetByID", mock.Anything, chef.ID).Return(chef, nil)
		subs.On("Exists", mock.Anything, reader.UserID, chef.ID).Return(false, nil)
		subs.On("Add", mock.Anything, reader.UserID, chef.ID).Return(repository.ErrDuplicate)

		_, err := svc.Subscribe(context.Background(), reader, chef.ID, -1)
		assert.ErrorIs(t, err, ErrAlreadySubscribed)
	})
}

func TestService_Subscribe_UnknownAuthor(t *testing.T) {
	svc, users, _, _ := newTestService()
	users.On("GetByID", mock.Anything, int64(404)).Return(nil, repository.ErrNotFound)

	_, err := svc.Subscribe(context.Background(), reader, 404, -1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_Unsubscribe_Absent(t *testing.T) {
	svc, users, subs, _ := newTestService()
	users.On("GetByID", mock.Anything, chef.ID).Return(chef, nil)
	subs.On("Remove", mock.Anything, reader.UserID, chef.ID).Return(repository.ErrNotFound)

	err := svc.Unsubscribe(context.Background(), reader, chef.ID)
	assert.ErrorIs(t, err, ErrSubscriptionMissing)
}

func TestService_SetPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("old-password"), bcrypt.MinCost)
	require.NoError(t, err)
	me := &domain.User{ID: reader.UserID, PasswordHash: string(hash)}

	svc, users, _, _ := newTestService()
	users.On("GetByID", mock.Anything, reader.UserID).Return(me, nil)
	users.On("UpdatePassword", mock.Anything, reader.UserID, mock.AnythingOfType("string")).Return(nil).Once()

	err = svc.SetPassword(context.Background(), reader, SetPasswordRequest{CurrentPassword: "wrong-one", NewPassword: "brand-new-pass"})
	assert.ErrorIs(t, err, ErrInvalidPassword)

	err = svc.SetPassword(context.Background(), reader, SetPasswordRequest{CurrentPassword: "old-password", NewPassword: "brand-new-pass"})
	require.NoError(t, err)
	users.AssertExpectations(t)
}

func TestService_List_MarksSubscriptions(t *testing.T) {
	svc, users, subs, _ := newTestService()
	list := []domain.User{{ID: 2, Username: "chef"}, {ID: 3, Username: "baker"}}
	users.On("List", mock.Anything, 6, 0).Return(list, int64(2), nil)
	subs.On("SubscribedTo", mock.Anything, reader.UserID, []int64{2, 3}).Return(map[int64]bool{3: true}, nil)

	out, total, err := svc.List(context.Background(), reader, 6, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.False(t, out[0].IsSubscribed)
	assert.True(t, out[1].IsSubscribed)
}
