package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"litreview/internal/cache"
	"litreview/internal/models"
	"litreview/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	tests := []struct {
		name          string
		userID        uint
		mockBehavior  func()
		expectedUser  *models.User
		expectedCode  string
		expectedError bool
	}{
		{
			name:   "Success",
			userID: 1,
			mockBehavior: func() {
				rows := sqlmock.NewRows([]string{"id", "username", "email"}).
					AddRow(1, "testuser", "test@example.com")
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 ORDER BY "users"."id" LIMIT $2`)).
					WithArgs(1, 1).
					WillReturnRows(rows)
			},
			expectedUser: &models.User{ID: 1, Username: "testuser", Email: "test@example.com"},
		},
		{
			name:   "Not Found",
			userID: 99,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 ORDER BY "users"."id" LIMIT $2`)).
					WithArgs(99, 1).
					WillReturnError(gorm.ErrRecordNotFound)
			},
			expectedCode:  models.CodeNotFound,
			expectedError: true,
		},
		{
			name:   "Database Error",
			userID: 5,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 ORDER BY "users"."id" LIMIT $2`)).
					WithArgs(5, 1).
					WillReturnError(errors.New("connection reset"))
			},
			expectedCode:  models.CodeInternal,
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			user, err := repo.GetByID(ctx, tt.userID)

			if tt.expectedError {
				require.Error(t, err)
				assert.True(t, models.HasCode(err, tt.expectedCode))
			} else if assert.NotNil(t, user) {
				assert.Equal(t, tt.expectedUser.Username, user.Username)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Username: "Alice", Password: "x"}))
	err := repo.Create(ctx, &models.User{Username: "alice ", Password: "y"})
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeValidation))
}

func TestUserRepository_GetByUsername_CaseInsensitive(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	testutil.CreateUser(t, db, "Bob")

	user, err := repo.GetByUsername(ctx, "  BOB ")
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)

	_, err = repo.GetByUsername(ctx, "nobody")
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	_, err = repo.GetByUsername(ctx, "   ")
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestUserRepository_GetCredentials(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &models.User{Username: "carol", Password: "hash"}))

	user, err := repo.GetCredentials(ctx, "Carol")
	require.NoError(t, err)
	assert.Equal(t, "hash", user.Password)

	_, err = repo.GetCredentials(ctx, "dave")
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestUserRepository_GetByUsername_UsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	carol := testutil.CreateUser(t, db, "carol")

	_, err := repo.GetByUsername(ctx, "carol")
	require.NoError(t, err)
	assert.True(t, mr.Exists(cache.UserNameKey("carol")))

	// the cached copy answers even after the row is gone
	require.NoError(t, db.Delete(&models.User{}, carol.ID).Error)
	cached, err := repo.GetByUsername(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, carol.ID, cached.ID)
	assert.Empty(t, cached.Password)

	// misses are not cached
	_, err = repo.GetByUsername(ctx, "ghost")
	require.Error(t, err)
	assert.False(t, mr.Exists(cache.UserNameKey("ghost")))
}

func TestUserRepository_UpdateInvalidatesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	dave := testutil.CreateUser(t, db, "dave")

	_, err := repo.GetByID(ctx, dave.ID)
	require.NoError(t, err)
	_, err = repo.GetByUsername(ctx, "dave")
	require.NoError(t, err)
	require.True(t, mr.Exists(cache.UserKey(dave.ID)))
	require.True(t, mr.Exists(cache.UserNameKey("dave")))

	// a cached copy carries a stale username and no password hash
	stale := &models.User{ID: dave.ID, Username: "someone-else", Email: "dave@books.test", Bio: "reads a lot"}
	require.NoError(t, repo.Update(ctx, stale))
	assert.False(t, mr.Exists(cache.UserKey(dave.ID)))
	assert.False(t, mr.Exists(cache.UserNameKey("dave")))

	fresh, err := repo.GetByUsername(ctx, "dave")
	require.NoError(t, err)
	assert.Equal(t, "reads a lot", fresh.Bio)
	assert.Equal(t, "dave@books.test", fresh.Email)

	creds, err := repo.GetCredentials(ctx, "dave")
	require.NoError(t, err)
	assert.Equal(t, dave.Password, creds.Password)

	err = repo.Update(ctx, &models.User{ID: 9999, Bio: "nobody"})
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestUserRepository_List(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	for _, name := range []string{"zed", "amy", "max"} {
		testutil.CreateUser(t, db, name)
	}

	users, err := repo.List(context.Background(), 2, 0)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "amy", users[0].Username)
	assert.Equal(t, "max", users[1].Username)
}

func TestIsUniqueConstraintError(t *testing.T) {
	assert.False(t, isUniqueConstraintError(nil))
	assert.True(t, isUniqueConstraintError(errors.New(`ERROR: duplicate key value violates unique constraint "idx_follow_edges_pair" (SQLSTATE 23505)`)))
	assert.True(t, isUniqueConstraintError(errors.New("UNIQUE constraint failed: reviews.ticket_id, reviews.user_id")))
	assert.True(t, isUniqueConstraintError(gorm.ErrDuplicatedKey))
	assert.False(t, isUniqueConstraintError(errors.New("connection refused")))
}
