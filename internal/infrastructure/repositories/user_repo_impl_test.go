package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"screen2doc.backend/internal/domain/entities"
	domainerrors "screen2doc.backend/internal/domain/errors"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	createUserTable(t, db)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &entities.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hashed",
	}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotEqual(t, uuid.Nil, user.ID)

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.False(t, got.IsVerified)

	byEmail, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byUsername, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byUsername.ID)
}

func TestUserRepository_GetNotFound(t *testing.T) {
	db := newTestDB(t)
	createUserTable(t, db)
	repo := NewUserRepository(db)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	createUserTable(t, db)
	repo := NewUserRepository(db)
	ctx := context.Background()

	first := &entities.User{Username: "alice", Email: "alice@example.com", PasswordHash: "h"}
	require.NoError(t, repo.Create(ctx, first))

	dup := &entities.User{Username: "other", Email: "alice@example.com", PasswordHash: "h"}
	assert.Error(t, repo.Create(ctx, dup))
}

func TestUserRepository_MarkVerified(t *testing.T) {
	db := newTestDB(t)
	createUserTable(t, db)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &entities.User{Username: "alice", Email: "alice@example.com", PasswordHash: "h"}
	require.NoError(t, repo.Create(ctx, user))

	require.NoError(t, repo.MarkVerified(ctx, user.ID))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.IsVerified)

	// Marking again still succeeds
	require.NoError(t, repo.MarkVerified(ctx, user.ID))
}

func TestUserRepository_MarkVerifiedUnknownUser(t *testing.T) {
	db := newTestDB(t)
	createUserTable(t, db)
	repo := NewUserRepository(db)

	err := repo.MarkVerified(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}
