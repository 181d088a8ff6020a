package services

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskz/internal/models"
	"github.com/yukikurage/taskz/internal/policy"
	"github.com/yukikurage/taskz/internal/repository"
	"github.com/yukikurage/taskz/internal/testutil"
	"go.uber.org/zap"
)

func TestTenantService_CreateEnforcesUniqueName(t *testing.T) {
	f := newFixture(t, policy.StrategyTenant)
	ctx := context.Background()

	acme, err := f.tenants.CreateTenant(ctx, "Acme")
	require.NoError(t, err)
	assert.NotEmpty(t, acme.ID)

	_, err = f.tenants.CreateTenant(ctx, "Acme")
	assert.ErrorIs(t, err, ErrTenantNameTaken)

	_, err = f.tenants.CreateTenant(ctx, "acme")
	require.NoError(t, err, "names are case-sensitive")

	_, err = f.tenants.CreateTenant(ctx, " ")
	assert.ErrorIs(t, err, ErrTenantNameRequired)

	list, err := f.tenants.ListTenants(ctx, repository.Page{})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestTenantService_MemberOnlyAccess(t *testing.T) {
	f := newFixture(t, policy.StrategyTenant)
	ctx := context.Background()

	testutil.CreateTenant(t, f.db, "t1", "One")
	testutil.CreateTenant(t, f.db, "t2", "Two")
	member := testutil.CreateUser(t, f.db, "u1", "u1@example.com", models.RoleNormal, testutil.Ptr("t1"))

	got, err := f.tenants.GetTenant(ctx, member, "t1")
	require.NoError(t, err)
	assert.Equal(t, "One", got.Name)

	_, err = f.tenants.GetTenant(ctx, member, "t2")
	assert.ErrorIs(t, err, ErrTenantNotFound)

	_, err = f.tenants.UpdateTenant(ctx, member, "t1", testutil.Ptr("Two"))
	assert.ErrorIs(t, err, ErrTenantNameTaken)

	renamed, err := f.tenants.UpdateTenant(ctx, member, "t1", testutil.Ptr("Uno"))
	require.NoError(t, err)
	assert.Equal(t, "Uno", renamed.Name)

	assert.ErrorIs(t, f.tenants.DeleteTenant(ctx, member, "t2"), ErrTenantNotFound)
}

func TestTenantService_DeleteLeavesMembers(t *testing.T) {
	f := newFixture(t, policy.StrategyTenant)
	ctx := context.Background()

	testutil.CreateTenant(t, f.db, "t1", "One")
	member := testutil.CreateUser(t, f.db, "u1", "u1@example.com", models.RoleNormal, testutil.Ptr("t1"))
	task, err := f.tasks.CreateTask(ctx, member, TaskInput{Title: testutil.Ptr("Keep me")})
	require.NoError(t, err)

	require.NoError(t, f.tenants.DeleteTenant(ctx, member, "t1"))

	var users, tasks int64
	require.NoError(t, f.db.Model(&models.User{}).Where("tenant_id = ?", "t1").Count(&users).Error)
	require.NoError(t, f.db.Model(&models.Task{}).Where("id = ?", task.ID).Count(&tasks).Error)
	assert.Equal(t, int64(1), users)
	assert.Equal(t, int64(1), tasks)
}

func TestTenantService_CreateConcurrentDuplicateIsConflict(t *testing.T) {
	store, mock := newMockStore(t)
	svc := NewTenantService(store, policy.TenantScoped{}, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "tenants"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "tenants"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_tenants_name"})
	mock.ExpectRollback()

	_, err := svc.CreateTenant(context.Background(), "Acme")
	assert.ErrorIs(t, err, ErrTenantNameTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}
