// Package seed fills an empty catalog with generated demo projects.
package seed

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dboika/folio/database/model"
	"github.com/dboika/folio/web/entity"
	"github.com/dboika/folio/web/service"

	"github.com/brianvoe/gofakeit/v6"
)

const maxAttempts = 5

var technologies = []string{
	"Go", "Python", "Flask", "Django", "FastAPI", "gin", "gorm", "PostgreSQL",
	"SQLite", "Redis", "BeautifulSoup", "Selenium", "pandas", "scikit-learn", "Tkinter",
}

// Projects creates n generated projects through the guarded service, acting
// as admin. A fixed seed gives the same catalog every time.
func Projects(projects *service.ProjectService, admin *model.User, n int, seed int64) ([]*model.Project, error) {
	faker := gofakeit.New(seed)
	created := make([]*model.Project, 0, n)
	for i := 0; i < n; i++ {
		p, err := createOne(projects, admin, faker)
		if err != nil {
			return created, err
		}
		created = append(created, p)
	}
	return created, nil
}

// createOne retries with a fresh name when the generated one is taken.
func createOne(projects *service.ProjectService, admin *model.User, faker *gofakeit.Faker) (*model.Project, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		p, err := projects.AddProject(admin, fakeForm(faker))
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, service.ErrDuplicateName) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("no free project name after %d attempts: %w", maxAttempts, lastErr)
}

func fakeForm(faker *gofakeit.Faker) *entity.ProjectForm {
	name := faker.AppName()
	slug := strings.ToLower(strings.ReplaceAll(name, " ", "-"))

	techs := make([]string, 0, 3)
	for len(techs) < 3 {
		t := faker.RandomString(technologies)
		if !contains(techs, t) {
			techs = append(techs, t)
		}
	}

	categories := make([]string, len(model.Categories))
	for i, c := range model.Categories {
		categories[i] = string(c)
	}

	return &entity.ProjectForm{
		Name:           name,
		Category:       faker.RandomString(categories),
		UsedTechnology: strings.Join(techs, ", "),
		ImgFgPath:      "img/portfolio/" + slug + "-fg.png",
		ImgBgPath:      "img/portfolio/" + slug + "-bg.png",
		GithubUrl:      "https://github.com/" + faker.Username() + "/" + slug,
		Title:          faker.HipsterSentence(5),
		Description:    faker.HipsterParagraph(2, 3, 12, "\n\n"),
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
