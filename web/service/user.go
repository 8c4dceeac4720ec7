package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dboika/folio/database"
	"github.com/dboika/folio/database/model"
	"github.com/dboika/folio/logger"
	"github.com/dboika/folio/util/crypto"
	"github.com/dboika/folio/web/entity"

	"gorm.io/gorm"
)

// UserService is the only component that reads or writes password hashes.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Register creates an account for email. The email is checked up front and
// again by the unique index, so two concurrent sign-ups cannot both win.
func (s *UserService) Register(email, name, password string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, errors.New("email can not be empty")
	} else if password == "" {
		return nil, errors.New("password can not be empty")
	} else if len(password) > entity.MaxPasswordBytes {
		return nil, &ValidationError{Fields: []entity.FieldError{{
			Field: "password",
			Tag:   "maxbytes",
			Param: strconv.Itoa(entity.MaxPasswordBytes),
		}}}
	}

	exists, err := s.emailExists(email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyRegistered
	}

	hashedPassword, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:    email,
		Name:     strings.TrimSpace(name),
		Password: hashedPassword,
	}
	if err := s.db.Create(user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrEmailAlreadyRegistered
		}
		return nil, err
	}
	logger.Infof("registered user %d (%s)", user.Id, user.Email)
	return user, nil
}

// Verify returns the user owning email when password matches its hash.
func (s *UserService) Verify(email, password string) (*model.User, error) {
	user := &model.User{}
	err := s.db.Model(model.User{}).
		Where("email = ?", strings.TrimSpace(email)).
		First(user).
		Error
	if database.IsNotFound(err) {
		return nil, ErrNoSuchEmail
	} else if err != nil {
		return nil, err
	}

	if err := crypto.CheckPasswordHash(user.Password, password); err != nil {
		if errors.Is(err, crypto.ErrMismatchedPassword) {
			return nil, ErrWrongPassword
		}
		logger.Warningf("stored hash for user %d is unusable: %v", user.Id, err)
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUser(id int) (*model.User, error) {
	user := &model.User{}
	err := s.db.First(user, id).Error
	if database.IsNotFound(err) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetFirstUser() (*model.User, error) {
	user := &model.User{}
	err := s.db.Model(model.User{}).
		Order("id ASC").
		First(user).
		Error
	if database.IsNotFound(err) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) CountUsers() (int64, error) {
	var count int64
	err := s.db.Model(model.User{}).Count(&count).Error
	return count, err
}

func (s *UserService) emailExists(email string) (bool, error) {
	var count int64
	err := s.db.Model(model.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}
