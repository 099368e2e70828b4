package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/finly-app/expense-service/internal/domain/entity"
)

type staticTokenIssuer struct{}

func (staticTokenIssuer) Issue(user *entity.User) (string, error) {
	return "token-for-" + user.ID, nil
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	users := &mockUserRepo{users: map[string]*entity.User{
		"user-1": {
			ID:           "user-1",
			CompanyID:    testCompanyID,
			Email:        "alice@example.com",
			PasswordHash: string(hash),
			Role:         entity.RoleEmployee,
		},
	}}
	svc := NewAuthService(users, staticTokenIssuer{}, zap.NewNop())

	t.Run("valid credentials", func(t *testing.T) {
		token, user, err := svc.Login(context.Background(), "alice@example.com", "s3cret")
		require.NoError(t, err)
		assert.Equal(t, "token-for-user-1", token)
		assert.Equal(t, "user-1", user.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(context.Background(), "alice@example.com", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := svc.Login(context.Background(), "bob@example.com", "s3cret")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
