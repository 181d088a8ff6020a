package services

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskz/internal/auth"
	"github.com/yukikurage/taskz/internal/models"
	"github.com/yukikurage/taskz/internal/policy"
	"github.com/yukikurage/taskz/internal/repository"
	"github.com/yukikurage/taskz/internal/testutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func anonymous() auth.Identity {
	return auth.Identity{State: auth.Anonymous}
}

func as(u *models.User) auth.Identity {
	return auth.Identity{State: auth.Authenticated, Principal: u}
}

func TestUserService_RegisterLowercasesEmail(t *testing.T) {
	f := newFixture(t, policy.StrategyRole)

	user, err := f.users.Register(context.Background(), anonymous(), RegisterInput{
		Email:    "Alice@Example.COM",
		Name:     "Alice",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, models.RoleNormal, user.Role)
	assert.NotEqual(t, "password123", user.PasswordHash)
}

func TestUserService_RegisterConflictModes(t *testing.T) {
	f := newFixture(t, policy.StrategyRole)
	ctx := context.Background()

	alice := testutil.CreateUser(t, f.db, "alice", "alice@example.com", models.RoleNormal, nil)
	bob := testutil.CreateUser(t, f.db, "bob", "bob@example.com", models.RoleNormal, nil)

	input := RegisterInput{Email: "ALICE@example.com", Name: "Changed", Password: "newpassword"}

	_, err := f.users.Register(ctx, anonymous(), input)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)

	_, err = f.users.Register(ctx, auth.Identity{State: auth.Rejected, Err: auth.ErrUnauthenticated}, input)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)

	_, err = f.users.Register(ctx, as(bob), input)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.users.Register(ctx, as(alice), input)
	assert.ErrorIs(t, err, ErrEmailTaken)

	stored, err := f.users.GetUser(ctx, alice, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.Name, stored.Name)
	assert.Equal(t, alice.PasswordHash, stored.PasswordHash)

	var count int64
	require.NoError(t, f.db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestUserService_RegisterAdminBootstrap(t *testing.T) {
	f := newFixture(t, policy.StrategyRole)
	ctx := context.Background()

	admin, err := f.users.Register(ctx, anonymous(), RegisterInput{
		Email: "root@example.com", Password: "password123", Role: models.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	_, err = f.users.Register(ctx, anonymous(), RegisterInput{
		Email: "second@example.com", Password: "password123", Role: models.RoleAdmin,
	})
	assert.ErrorIs(t, err, policy.ErrRoleNotAllowed)

	other, err := f.users.Register(ctx, as(admin), RegisterInput{
		Email: "second@example.com", Password: "password123", Role: models.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, other.Role)
}

func TestUserService_RegisterTenantScoped(t *testing.T) {
	f := newFixture(t, policy.StrategyTenant)
	ctx := context.Background()
	testutil.CreateTenant(t, f.db, "t1", "One")
	testutil.CreateTenant(t, f.db, "t2", "Two")

	first, err := f.users.Register(ctx, anonymous(), RegisterInput{
		Email: "first@example.com", Password: "password123", TenantID: testutil.Ptr("t1"),
	})
	require.NoError(t, err)
	assert.Equal(t, "t1", *first.TenantID)

	_, err = f.users.Register(ctx, anonymous(), RegisterInput{
		Email: "late@example.com", Password: "password123", TenantID: testutil.Ptr("t1"),
	})
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)

	_, err = f.users.Register(ctx, anonymous(), RegisterInput{
		Email: "ghost@example.com", Password: "password123", TenantID: testutil.Ptr("missing"),
	})
	assert.ErrorIs(t, err, ErrTenantNotFound)

	_, err = f.users.Register(ctx, as(first), RegisterInput{
		Email: "cross@example.com", Password: "password123", TenantID: testutil.Ptr("t2"),
	})
	assert.ErrorIs(t, err, policy.ErrCrossTenant)

	colleague, err := f.users.Register(ctx, as(first), RegisterInput{
		Email: "colleague@example.com", Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "t1", *colleague.TenantID)
}

func TestUserService_AccessRules(t *testing.T) {
	f := newFixture(t, policy.StrategyRole)
	ctx := context.Background()

	admin := testutil.CreateUser(t, f.db, "admin", "admin@example.com", models.RoleAdmin, nil)
	alice := testutil.CreateUser(t, f.db, "alice", "alice@example.com", models.RoleNormal, nil)
	bob := testutil.CreateUser(t, f.db, "bob", "bob@example.com", models.RoleNormal, nil)

	visible, err := f.users.ListUsers(ctx, alice, repository.Page{})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, alice.ID, visible[0].ID)

	all, err := f.users.ListUsers(ctx, admin, repository.Page{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = f.users.GetUser(ctx, alice, bob.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.users.GetUser(ctx, alice, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.ErrorIs(t, f.users.DeleteUser(ctx, alice, bob.ID), ErrForbidden)
	require.NoError(t, f.users.DeleteUser(ctx, admin, bob.ID))
}

func TestUserService_Update(t *testing.T) {
	f := newFixture(t, policy.StrategyRole)
	ctx := context.Background()

	alice := testutil.CreateUser(t, f.db, "alice", "alice@example.com", models.RoleNormal, nil)
	testutil.CreateUser(t, f.db, "bob", "bob@example.com", models.RoleNormal, nil)

	_, err := f.users.UpdateUser(ctx, alice, alice.ID, UpdateUserInput{Email: testutil.Ptr("BOB@example.com")})
	assert.ErrorIs(t, err, ErrEmailTaken)

	updated, err := f.users.UpdateUser(ctx, alice, alice.ID, UpdateUserInput{
		Email:    testutil.Ptr("Alice.New@Example.com"),
		Name:     testutil.Ptr("Alice N."),
		Password: testutil.Ptr("anotherpassword"),
	})
	require.NoError(t, err)
	assert.Equal(t, "alice.new@example.com", updated.Email)
	assert.Equal(t, "Alice N.", updated.Name)
	assert.NotEqual(t, alice.PasswordHash, updated.PasswordHash)

	_, err = f.users.UpdateUser(ctx, alice, alice.ID, UpdateUserInput{Password: testutil.Ptr("short")})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestUserService_TenantScopedHidesOtherTenants(t *testing.T) {
	f := newFixture(t, policy.StrategyTenant)
	ctx := context.Background()

	u1 := testutil.CreateUser(t, f.db, "u1", "u1@example.com", models.RoleNormal, testutil.Ptr("t1"))
	u2 := testutil.CreateUser(t, f.db, "u2", "u2@example.com", models.RoleNormal, testutil.Ptr("t2"))

	_, err := f.users.GetUser(ctx, u1, u2.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	listed, err := f.users.ListUsers(ctx, u1, repository.Page{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, u1.ID, listed[0].ID)
}

func TestUserService_RegisterRoleBasedIgnoresTenant(t *testing.T) {
	f := newFixture(t, policy.StrategyRole)

	user, err := f.users.Register(context.Background(), anonymous(), RegisterInput{
		Email:    "carol@example.com",
		Password: "password123",
		TenantID: testutil.Ptr("no-such-tenant"),
	})
	require.NoError(t, err)
	assert.Nil(t, user.TenantID)
}

func TestUserService_EmailChangeKeepsTaskAccess(t *testing.T) {
	f := newFixture(t, policy.StrategyRole)
	ctx := context.Background()

	admin := testutil.CreateUser(t, f.db, "admin", "admin@example.com", models.RoleAdmin, nil)
	alice := testutil.CreateUser(t, f.db, "alice", "alice@example.com", models.RoleNormal, nil)
	bob := testutil.CreateUser(t, f.db, "bob", "bob@example.com", models.RoleNormal, nil)

	own, err := f.tasks.CreateTask(ctx, alice, TaskInput{Title: testutil.Ptr("Own")})
	require.NoError(t, err)
	_, err = f.tasks.CreateTask(ctx, bob, TaskInput{
		Title:      testutil.Ptr("Handed over"),
		AssignedTo: testutil.Ptr("alice@example.com"),
	})
	require.NoError(t, err)

	renamed, err := f.users.UpdateUser(ctx, alice, alice.ID, UpdateUserInput{Email: testutil.Ptr("Alice2@Example.com")})
	require.NoError(t, err)
	assert.Equal(t, "alice2@example.com", renamed.Email)

	listed, err := f.tasks.ListTasks(ctx, renamed, repository.Page{})
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	got, err := f.tasks.GetTask(ctx, renamed, own.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice2@example.com", got.CreatedBy)

	_, err = f.tasks.UpdateTask(ctx, renamed, own.ID, TaskInput{Status: testutil.Ptr("done")})
	require.NoError(t, err)

	// an admin renaming someone else rewrites the same references
	renamedBob, err := f.users.UpdateUser(ctx, admin, bob.ID, UpdateUserInput{Email: testutil.Ptr("robert@example.com")})
	require.NoError(t, err)

	bobTasks, err := f.tasks.ListTasks(ctx, renamedBob, repository.Page{})
	require.NoError(t, err)
	require.Len(t, bobTasks, 1)
	assert.Equal(t, "robert@example.com", bobTasks[0].CreatedBy)
	assert.Equal(t, "alice2@example.com", bobTasks[0].AssignedTo)

	stale, err := f.tasks.ListTasks(ctx, &models.User{ID: "ghost", Email: "alice@example.com"}, repository.Page{})
	require.NoError(t, err)
	assert.Empty(t, stale)
}

func TestUserService_RegisterConcurrentDuplicateIsConflict(t *testing.T) {
	store, mock := newMockStore(t)
	svc := NewUserService(store, policy.RoleBased{}, auth.NewBcryptHasher(bcrypt.MinCost), zap.NewNop())

	// the email is free when checked but taken by the time the row is inserted
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"})
	mock.ExpectRollback()

	_, err := svc.Register(context.Background(), anonymous(), RegisterInput{
		Email:    "race@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}
