package db

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Connect(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newUser(name string, role Role) *User {
	return &User{
		Username:     name,
		PasswordHash: []byte("hash-" + name),
		Salt:         []byte("salt-" + name),
		Role:         role,
	}
}

func TestConnectUnreachablePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "test.db")

	db, err := Connect(context.Background(), path)
	require.Error(t, err)
	assert.Nil(t, db)

	var connErr *ConnectionError
	require.True(t, errors.As(err, &connErr))
	assert.Equal(t, path, connErr.Path)
	assert.Contains(t, err.Error(), path)
}

func TestConnectPathWithQueryCharacters(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "my?db.db")

	db, err := Connect(context.Background(), path)
	require.NoError(t, err)
	defer db.Close()

	_, err = os.Stat(path)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "my"))
	assert.True(t, os.IsNotExist(err))

	var foreignKeys int
	require.NoError(t, db.conn.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys))
	assert.Equal(t, 1, foreignKeys)
}

func TestDataSourceName(t *testing.T) {
	assert.Equal(t,
		"file:/data/my%3Fdb.db?_busy_timeout=5000&_foreign_keys=1&_journal_mode=WAL",
		dataSourceName("/data/my?db.db"))
	assert.Equal(t,
		"file:deskgate.db?_busy_timeout=5000&_foreign_keys=1&_journal_mode=WAL",
		dataSourceName("deskgate.db"))
}

func TestConnectionErrorWithoutPath(t *testing.T) {
	err := &ConnectionError{Err: errors.New("timeout")}
	assert.Equal(t, "timeout", err.Error())
	assert.Equal(t, "timeout", errors.Unwrap(err).Error())
}

func TestConnectIsIdempotentAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	first, err := Connect(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.CreateUser(ctx, newUser("root", RoleAdmin)))
	require.NoError(t, first.Close())

	second, err := Connect(ctx, path)
	require.NoError(t, err)
	defer second.Close()

	users, err := second.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestIsEmpty(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	empty, err := db.IsEmpty(ctx, "users")
	require.NoError(t, err)
	assert.True(t, empty)

	require.NoError(t, db.CreateUser(ctx, newUser("root", RoleAdmin)))

	empty, err = db.IsEmpty(ctx, "users")
	require.NoError(t, err)
	assert.False(t, empty)
}

func TestIsEmptyUnknownTable(t *testing.T) {
	db := newTestDB(t)

	_, err := db.IsEmpty(context.Background(), `users"; DROP TABLE users; --`)
	assert.ErrorIs(t, err, ErrUnknownTable)

	_, err = db.IsEmpty(context.Background(), "users")
	assert.NoError(t, err)
}

func TestIsEmptyIgnoresTableNameCase(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for _, table := range []string{"Users", "USERS"} {
		empty, err := db.IsEmpty(ctx, table)
		require.NoError(t, err, table)
		assert.True(t, empty, table)
	}

	require.NoError(t, db.CreateUser(ctx, newUser("root", RoleAdmin)))
	empty, err := db.IsEmpty(ctx, "Users")
	require.NoError(t, err)
	assert.False(t, empty)
}

func TestCreateUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := newUser("alice", RoleUser)
	require.NoError(t, db.CreateUser(ctx, user))

	assert.NotZero(t, user.ID)
	assert.NotEqual(t, uuid.Nil, user.PublicID)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.CreateUser(ctx, newUser("alice", RoleUser)))
	err := db.CreateUser(ctx, newUser("ALICE", RoleUser))
	assert.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestCreateUserRejectsInvalid(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	assert.Error(t, db.CreateUser(ctx, newUser("", RoleUser)))
	assert.Error(t, db.CreateUser(ctx, newUser("bob", Role("owner"))))
}

func TestGetUserByUsername(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	created := newUser("alice", RoleAdmin)
	require.NoError(t, db.CreateUser(ctx, created))

	got, err := db.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.PublicID, got.PublicID)
	assert.Equal(t, RoleAdmin, got.Role)
	assert.Equal(t, []byte("hash-alice"), got.PasswordHash)
	assert.Nil(t, got.LastLoginAt)

	_, err = db.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListUsers(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for _, u := range []*User{newUser("carol", RoleUser), newUser("alice", RoleAdmin), newUser("bob", RoleUser)} {
		require.NoError(t, db.CreateUser(ctx, u))
	}

	users, err := db.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "carol", users[2].Username)
}

func TestUpdatePasswordAndTouchLastLogin(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := newUser("alice", RoleUser)
	require.NoError(t, db.CreateUser(ctx, user))

	require.NoError(t, db.UpdatePassword(ctx, user.ID, []byte("new-hash"), []byte("new-salt")))
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, db.TouchLastLogin(ctx, user.ID, at))

	got, err := db.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []byte("new-hash"), got.PasswordHash)
	assert.Equal(t, []byte("new-salt"), got.Salt)
	require.NotNil(t, got.LastLoginAt)
	assert.True(t, at.Equal(*got.LastLoginAt))

	assert.ErrorIs(t, db.UpdatePassword(ctx, 9999, []byte("h"), []byte("s")), ErrNotFound)
	assert.ErrorIs(t, db.TouchLastLogin(ctx, 9999, at), ErrNotFound)
}

func TestDeleteUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := newUser("alice", RoleUser)
	require.NoError(t, db.CreateUser(ctx, user))
	require.NoError(t, db.DeleteUser(ctx, user.ID))
	assert.ErrorIs(t, db.DeleteUser(ctx, user.ID), ErrNotFound)

	empty, err := db.IsEmpty(ctx, "users")
	require.NoError(t, err)
	assert.True(t, empty)
}
