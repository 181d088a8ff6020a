package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskz/internal/auth"
	"github.com/yukikurage/taskz/internal/policy"
	"github.com/yukikurage/taskz/internal/repository"
	"github.com/yukikurage/taskz/internal/testutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	db      *gorm.DB
	tasks   *TaskService
	users   *UserService
	tenants *TenantService
}

func newFixture(t *testing.T, strategy policy.Strategy) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	pol, err := policy.New(strategy)
	if err != nil {
		t.Fatal(err)
	}
	store := repository.NewStore(db)
	log := zap.NewNop()

	return &fixture{
		db:      db,
		tasks:   NewTaskService(store, pol, log),
		users:   NewUserService(store, pol, auth.NewBcryptHasher(bcrypt.MinCost), log),
		tenants: NewTenantService(store, pol, log),
	}
}

// newMockStore returns a store on sqlmock speaking the postgres dialect, with
// driver errors translated the way database.Connect does.
func newMockStore(t *testing.T) (*repository.Store, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return repository.NewStore(db), mock
}
