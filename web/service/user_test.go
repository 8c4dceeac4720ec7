package service

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/dboika/folio/config"
	"github.com/dboika/folio/database"
	"github.com/dboika/folio/database/model"
	"github.com/dboika/folio/util/crypto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setup(t *testing.T) *gorm.DB {
	t.Helper()
	crypto.Cost = bcrypt.MinCost
	cfg := config.GetDefaultDatabaseConfig()
	cfg.Type = config.DatabaseTypeSQLite
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "test.db")
	db, err := database.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		database.Close(db)
		crypto.Cost = bcrypt.DefaultCost
	})
	return db
}

func countUsers(t *testing.T, s *UserService) int64 {
	t.Helper()
	n, err := s.CountUsers()
	require.NoError(t, err)
	return n
}

func TestRegisterThenVerify(t *testing.T) {
	s := NewUserService(setup(t))

	user, err := s.Register("a@x.com", "Alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, 1, user.Id)
	assert.NotEqual(t, "secret1", user.Password)

	got, err := s.Verify("a@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.Id, got.Id)
	assert.Equal(t, "Alice", got.Name)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := NewUserService(setup(t))

	_, err := s.Register("a@x.com", "Alice", "secret1")
	require.NoError(t, err)
	before := countUsers(t, s)

	_, err = s.Register("a@x.com", "Mallory", "other-pass")
	assert.ErrorIs(t, err, ErrEmailAlreadyRegistered)
	assert.Equal(t, before, countUsers(t, s))
}

func TestRegisterRejectsEmptyInput(t *testing.T) {
	s := NewUserService(setup(t))

	_, err := s.Register("  ", "Alice", "secret1")
	assert.Error(t, err)
	_, err = s.Register("a@x.com", "Alice", "")
	assert.Error(t, err)
	assert.Zero(t, countUsers(t, s))
}

func TestRegisterRejectsLongPassword(t *testing.T) {
	s := NewUserService(setup(t))

	_, err := s.Register("a@x.com", "Alice", strings.Repeat("é", 50))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "password", verr.Fields[0].Field)
	assert.Equal(t, "maxbytes", verr.Fields[0].Tag)
	assert.Zero(t, countUsers(t, s))

	_, err = s.Register("a@x.com", "Alice", strings.Repeat("a", 72))
	assert.NoError(t, err)
}

func TestVerifyFailures(t *testing.T) {
	s := NewUserService(setup(t))
	_, err := s.Register("a@x.com", "Alice", "secret1")
	require.NoError(t, err)

	_, err = s.Verify("nobody@x.com", "secret1")
	assert.ErrorIs(t, err, ErrNoSuchEmail)

	_, err = s.Verify("a@x.com", "secret2")
	assert.ErrorIs(t, err, ErrWrongPassword)
}

func TestPasswordsAreSalted(t *testing.T) {
	db := setup(t)
	s := NewUserService(db)

	a, err := s.Register("a@x.com", "Alice", "same-password")
	require.NoError(t, err)
	b, err := s.Register("b@x.com", "Bob", "same-password")
	require.NoError(t, err)

	var stored []model.User
	require.NoError(t, db.Order("id").Find(&stored).Error)
	require.Len(t, stored, 2)
	assert.NotEqual(t, stored[0].Password, stored[1].Password)
	assert.NotContains(t, stored[0].Password, "same-password")

	_, err = s.Verify(a.Email, "same-password")
	assert.NoError(t, err)
	_, err = s.Verify(b.Email, "same-password")
	assert.NoError(t, err)
}

func TestGetUserAndFirstUser(t *testing.T) {
	s := NewUserService(setup(t))

	_, err := s.GetFirstUser()
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Register("a@x.com", "Alice", "secret1")
	require.NoError(t, err)
	_, err = s.Register("b@x.com", "Bob", "secret2")
	require.NoError(t, err)

	first, err := s.GetFirstUser()
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", first.Email)

	second, err := s.GetUser(2)
	require.NoError(t, err)
	assert.Equal(t, "b@x.com", second.Email)

	_, err = s.GetUser(99)
	assert.ErrorIs(t, err, ErrNotFound)
}
