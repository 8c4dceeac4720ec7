package service

import (
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/dboika/folio/database/model"
	"github.com/dboika/folio/web/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newProjectForm(name string) *entity.ProjectForm {
	return &entity.ProjectForm{
		Name:           name,
		Category:       string(model.WebDevelopment),
		UsedTechnology: "Flask, SQLAlchemy",
		ImgFgPath:      "img/fg.png",
		ImgBgPath:      "img/bg.png",
		GithubUrl:      "https://github.com/x/y",
		Title:          "Folio Site",
		Description:    "A personal **portfolio**.",
	}
}

type fixture struct {
	users    *UserService
	projects *ProjectService
	admin    *model.User
	visitor  *model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setup(t)
	users := NewUserService(db)
	admin, err := users.Register("admin@x.com", "Admin", "secret1")
	require.NoError(t, err)
	visitor, err := users.Register("b@x.com", "Bob", "secret2")
	require.NoError(t, err)
	require.Equal(t, 1, admin.Id)
	return &fixture{
		users:    users,
		projects: NewProjectService(db, NewAdminGuard(1)),
		admin:    admin,
		visitor:  visitor,
	}
}

func TestProjectLifecycle(t *testing.T) {
	f := newFixture(t)

	created, err := f.projects.AddProject(f.admin, newProjectForm("Folio"))
	require.NoError(t, err)
	assert.Equal(t, 1, created.Id)
	assert.WithinDuration(t, time.Now(), created.Date, time.Minute)

	all, err := f.projects.GetProjects()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Folio", all[0].Name)

	_, err = f.projects.AddProject(f.visitor, newProjectForm("Hack"))
	assert.ErrorIs(t, err, ErrForbidden)

	all, err = f.projects.GetProjects()
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, f.projects.DelProject(f.admin, created.Id))
	_, err = f.projects.GetProject(created.Id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddProjectRejectsDuplicateName(t *testing.T) {
	f := newFixture(t)

	_, err := f.projects.AddProject(f.admin, newProjectForm("Folio"))
	require.NoError(t, err)
	_, err = f.projects.AddProject(f.admin, newProjectForm("Folio"))
	assert.ErrorIs(t, err, ErrDuplicateName)

	all, err := f.projects.GetProjects()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAddProjectValidation(t *testing.T) {
	f := newFixture(t)

	form := newProjectForm("Folio")
	form.Category = "Cooking"
	form.GithubUrl = "not a url"
	_, err := f.projects.AddProject(f.admin, form)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	fields := make([]string, 0, len(verr.Fields))
	for _, fe := range verr.Fields {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"category", "github_url"}, fields)

	all, err := f.projects.GetProjects()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAddProjectRejectsNonHTTPURL(t *testing.T) {
	f := newFixture(t)

	for _, u := range []string{"javascript:alert(1)", "foo:bar", "mailto:x@y.com"} {
		form := newProjectForm("Folio")
		form.GithubUrl = u
		_, err := f.projects.AddProject(f.admin, form)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr, u)
	}

	all, err := f.projects.GetProjects()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestConcurrentAddProjectSameName(t *testing.T) {
	f := newFixture(t)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.projects.AddProject(f.admin, newProjectForm("Foo"))
		}(i)
	}
	wg.Wait()

	var created, duplicates int
	for _, err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrDuplicateName):
			duplicates++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, n-1, duplicates)

	all, err := f.projects.GetProjects()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAnonymousCannotMutate(t *testing.T) {
	f := newFixture(t)
	created, err := f.projects.AddProject(f.admin, newProjectForm("Folio"))
	require.NoError(t, err)

	_, err = f.projects.AddProject(nil, newProjectForm("Other"))
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.projects.UpdateProject(nil, created.Id, newProjectForm("Other"))
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, f.projects.DelProject(nil, created.Id), ErrForbidden)
	assert.ErrorIs(t, f.projects.DelProject(f.visitor, created.Id), ErrForbidden)

	got, err := f.projects.GetProject(created.Id)
	require.NoError(t, err)
	assert.Equal(t, "Folio", got.Name)
}

func TestUpdateProject(t *testing.T) {
	f := newFixture(t)
	created, err := f.projects.AddProject(f.admin, newProjectForm("Folio"))
	require.NoError(t, err)

	form := newProjectForm("Folio v2")
	form.Category = string(model.API)
	form.Title = ""
	updated, err := f.projects.UpdateProject(f.admin, created.Id, form)
	require.NoError(t, err)
	assert.Equal(t, created.Id, updated.Id)

	got, err := f.projects.GetProject(created.Id)
	require.NoError(t, err)
	assert.Equal(t, "Folio v2", got.Name)
	assert.Equal(t, string(model.API), got.Category)
	assert.Empty(t, got.Title)
	assert.Equal(t, "Folio v2", got.DisplayTitle())
	assert.True(t, created.Date.Equal(got.Date), "date must survive an update")
}

func TestUpdateProjectIsIdempotent(t *testing.T) {
	f := newFixture(t)
	created, err := f.projects.AddProject(f.admin, newProjectForm("Folio"))
	require.NoError(t, err)

	form := newProjectForm("Renamed")
	_, err = f.projects.UpdateProject(f.admin, created.Id, form)
	require.NoError(t, err)
	first, err := f.projects.GetProject(created.Id)
	require.NoError(t, err)

	_, err = f.projects.UpdateProject(f.admin, created.Id, newProjectForm("Renamed"))
	require.NoError(t, err)
	second, err := f.projects.GetProject(created.Id)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestUpdateProjectErrors(t *testing.T) {
	f := newFixture(t)
	a, err := f.projects.AddProject(f.admin, newProjectForm("A"))
	require.NoError(t, err)
	_, err = f.projects.AddProject(f.admin, newProjectForm("B"))
	require.NoError(t, err)

	_, err = f.projects.UpdateProject(f.admin, 999, newProjectForm("C"))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.projects.UpdateProject(f.admin, a.Id, newProjectForm("B"))
	assert.ErrorIs(t, err, ErrDuplicateName)

	got, err := f.projects.GetProject(a.Id)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)
}

func TestDelProjectMissing(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.projects.DelProject(f.admin, 42), ErrNotFound)
}

func TestGetProjectsOrderedByID(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"C", "A", "B"} {
		_, err := f.projects.AddProject(f.admin, newProjectForm(name))
		require.NoError(t, err)
	}
	all, err := f.projects.GetProjects()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"C", "A", "B"}, []string{all[0].Name, all[1].Name, all[2].Name})
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestAddProjectPostgresDuplicateKey(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewProjectService(db, NewAdminGuard(1))

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "projects"`)).
		WillReturnError(&duplicateKeyError{})

	_, err := s.AddProject(&model.User{Id: 1}, newProjectForm("Folio"))
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProjectsPostgres(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewProjectService(db, NewAdminGuard(1))

	rows := sqlmock.NewRows([]string{"id", "name", "category"}).
		AddRow(1, "Folio", string(model.WebDevelopment)).
		AddRow(2, "Scraper", string(model.ScrapingData))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "projects" ORDER BY id ASC`)).
		WillReturnRows(rows)

	all, err := s.GetProjects()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Scraper", all[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

type duplicateKeyError struct{}

func (*duplicateKeyError) Error() string {
	return `ERROR: duplicate key value violates unique constraint "idx_projects_name" (SQLSTATE 23505)`
}
