package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/blog_go_server/internal/model"
	"github.com/qs3c/blog_go_server/internal/testutil"
)

func TestUserRepository_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	email := "new@example.com"
	githubID := "42"

	user := &model.User{Email: &email, FullName: "New User", GithubID: &githubID}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, model.RoleUser, user.Role)
}

func TestUserRepository_Lookups(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	ctx := context.Background()
	githubID := "1001"
	user := testutil.TestUser(t, db, testutil.WithEmail("lookup@example.com"), func(u *model.User) {
		u.GithubID = &githubID
	})

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byID.ID)

	byEmail, err := repo.GetByEmail(ctx, "lookup@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byGithub, err := repo.GetByGithubID(ctx, "1001")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byGithub.ID)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	testutil.TestUser(t, db, testutil.WithEmail("dup@example.com"))

	email := "dup@example.com"
	err := repo.Create(context.Background(), &model.User{Email: &email})
	assert.Error(t, err)
}

func TestUserRepository_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	user := testutil.TestUser(t, db)

	user.FullName = "Renamed"
	user.Role = model.RoleAdmin
	require.NoError(t, repo.Update(context.Background(), user))

	found, err := repo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", found.FullName)
	assert.True(t, found.IsAdmin())
}
