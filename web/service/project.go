package service

import (
	"github.com/dboika/folio/database"
	"github.com/dboika/folio/database/model"
	"github.com/dboika/folio/logger"
	"github.com/dboika/folio/util/metrics"
	"github.com/dboika/folio/web/entity"

	"gorm.io/gorm"
)

// ProjectService persists the project catalog. Every mutating method takes
// the acting principal and consults the guard before touching storage.
type ProjectService struct {
	db    *gorm.DB
	guard *AdminGuard
}

func NewProjectService(db *gorm.DB, guard *AdminGuard) *ProjectService {
	return &ProjectService{db: db, guard: guard}
}

func (s *ProjectService) GetProjects() ([]model.Project, error) {
	var projects []model.Project
	if err := s.db.Order("id ASC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *ProjectService) GetProject(id int) (*model.Project, error) {
	project := &model.Project{}
	err := s.db.First(project, id).Error
	if database.IsNotFound(err) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) AddProject(principal *model.User, form *entity.ProjectForm) (*model.Project, error) {
	if err := s.guard.RequireAdmin(principal); err != nil {
		return nil, err
	}
	form.Normalize()
	if err := validateForm(form); err != nil {
		return nil, err
	}

	project := &model.Project{}
	form.Apply(project)
	if err := s.db.Create(project).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicateName
		}
		return nil, err
	}

	metrics.ProjectMutations.WithLabelValues("create").Inc()
	logger.Infof("user %d added project %d %q", principal.Id, project.Id, project.Name)
	return project, nil
}

// UpdateProject replaces every mutable field of project id inside one
// transaction. The date and identifier are kept.
func (s *ProjectService) UpdateProject(principal *model.User, id int, form *entity.ProjectForm) (*model.Project, error) {
	if err := s.guard.RequireAdmin(principal); err != nil {
		return nil, err
	}
	form.Normalize()
	if err := validateForm(form); err != nil {
		return nil, err
	}

	project := &model.Project{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(project, id).Error; err != nil {
			return err
		}
		form.Apply(project)
		return tx.Model(project).
			Select("name", "category", "used_technology", "img_fg_path", "img_bg_path", "github_url", "title", "description").
			Updates(project).
			Error
	})
	switch {
	case err == nil:
	case database.IsNotFound(err):
		return nil, ErrNotFound
	case database.IsUniqueViolation(err):
		return nil, ErrDuplicateName
	default:
		return nil, err
	}

	metrics.ProjectMutations.WithLabelValues("update").Inc()
	logger.Infof("user %d updated project %d", principal.Id, project.Id)
	return project, nil
}

func (s *ProjectService) DelProject(principal *model.User, id int) error {
	if err := s.guard.RequireAdmin(principal); err != nil {
		return err
	}
	result := s.db.Delete(&model.Project{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	metrics.ProjectMutations.WithLabelValues("delete").Inc()
	logger.Infof("user %d deleted project %d", principal.Id, id)
	return nil
}
