package auth_test

import (
	"context"
	"testing"

	"taskboard/internal/auth"
	"taskboard/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockIdentityStore struct {
	mock.Mock
}

func (m *MockIdentityStore) FindByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	args := m.Called(ctx, externalID)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockIdentityStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockIdentityStore) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockIdentityStore) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func TestLink_ExistingExternalID(t *testing.T) {
	store := new(MockIdentityStore)
	sub := "google-123"
	existing := &model.User{ID: uuid.New(), Email: "a@example.com", ExternalID: &sub}
	store.On("FindByExternalID", mock.Anything, "google-123").Return(existing, nil)

	user, err := auth.NewIdentityLinker(store).Link(context.Background(), "google-123", "a@example.com", true)

	require.NoError(t, err)
	assert.Same(t, existing, user)
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
}

func TestLink_AttachesToExistingEmail(t *testing.T) {
	store := new(MockIdentityStore)
	existing := &model.User{ID: uuid.New(), Email: "a@example.com", PasswordHash: "hash"}
	store.On("FindByExternalID", mock.Anything, "google-123").Return(nil, nil)
	store.On("FindByEmail", mock.Anything, "a@example.com").Return(existing, nil)
	store.On("Update", mock.Anything, existing).Return(nil)

	user, err := auth.NewIdentityLinker(store).Link(context.Background(), "google-123", "  A@Example.com ", true)

	require.NoError(t, err)
	require.NotNil(t, user.ExternalID)
	assert.Equal(t, "google-123", *user.ExternalID)
	assert.Equal(t, "hash", user.PasswordHash)
	store.AssertExpectations(t)
}

func TestLink_CreatesOAuthOnlyUser(t *testing.T) {
	store := new(MockIdentityStore)
	store.On("FindByExternalID", mock.Anything, "google-123").Return(nil, nil)
	store.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, nil)
	store.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "new@example.com" && u.PasswordHash == "" &&
			u.ExternalID != nil && *u.ExternalID == "google-123"
	})).Return(nil)

	user, err := auth.NewIdentityLinker(store).Link(context.Background(), "google-123", "new@example.com", true)

	require.NoError(t, err)
	assert.False(t, user.HasPassword())
	store.AssertExpectations(t)
}

func TestLink_MissingEmail(t *testing.T) {
	store := new(MockIdentityStore)

	_, err := auth.NewIdentityLinker(store).Link(context.Background(), "google-123", "", true)

	assert.ErrorIs(t, err, auth.ErrMissingEmail)
	store.AssertNotCalled(t, "FindByExternalID", mock.Anything, mock.Anything)
}

func TestLink_MissingExternalID(t *testing.T) {
	store := new(MockIdentityStore)

	_, err := auth.NewIdentityLinker(store).Link(context.Background(), " ", "a@example.com", true)

	assert.ErrorIs(t, err, auth.ErrMissingExternalID)
}

func TestLink_StoreFailure(t *testing.T) {
	store := new(MockIdentityStore)
	store.On("FindByExternalID", mock.Anything, "google-123").Return(nil, assert.AnError)

	_, err := auth.NewIdentityLinker(store).Link(context.Background(), "google-123", "a@example.com", true)

	assert.ErrorIs(t, err, assert.AnError)
}

func TestLink_UnverifiedEmailIsNotLinked(t *testing.T) {
	store := new(MockIdentityStore)
	store.On("FindByExternalID", mock.Anything, "attacker-sub").Return(nil, nil)

	user, err := auth.NewIdentityLinker(store).Link(context.Background(), "attacker-sub", "victim@example.com", false)

	assert.ErrorIs(t, err, auth.ErrUnverifiedEmail)
	assert.Nil(t, user)
	store.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLink_UnverifiedEmailKnownExternalID(t *testing.T) {
	store := new(MockIdentityStore)
	sub := "google-123"
	existing := &model.User{ID: uuid.New(), Email: "a@example.com", ExternalID: &sub}
	store.On("FindByExternalID", mock.Anything, "google-123").Return(existing, nil)

	user, err := auth.NewIdentityLinker(store).Link(context.Background(), "google-123", "a@example.com", false)

	require.NoError(t, err)
	assert.Same(t, existing, user)
}
