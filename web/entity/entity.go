// Package entity defines the request and response shapes of the web layer:
// typed form structs, their validation, and the JSON message envelope.
package entity

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/dboika/folio/database/model"

	"github.com/go-playground/validator/v10"
)

// Msg represents a standard API response message with success status, message text, and optional data object.
type Msg struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Obj     any    `json:"obj"`
}

// RegisterForm is the sign-up form.
type RegisterForm struct {
	Name      string `form:"name" validate:"required,min=2,max=50"`
	Email     string `form:"email" validate:"required,email,max=100"`
	Password  string `form:"password" validate:"required,min=6,max=50,maxbytes=72"`
	Password2 string `form:"password2" validate:"required,eqfield=Password"`
}

// LoginForm is the sign-in form.
type LoginForm struct {
	Email      string `form:"email" validate:"required,email"`
	Password   string `form:"password" validate:"required,min=6,max=50,maxbytes=72"`
	RememberMe bool   `form:"remember_me"`
}

// ProjectForm carries every mutable field of a project.
type ProjectForm struct {
	Name           string `form:"name" validate:"required,max=80"`
	Category       string `form:"category" validate:"required,category"`
	UsedTechnology string `form:"used_technology" validate:"required,max=250"`
	ImgFgPath      string `form:"img_fg_path" validate:"required,max=250"`
	ImgBgPath      string `form:"img_bg_path" validate:"required,max=250"`
	GithubUrl      string `form:"github_url" validate:"required,http_url,max=250"`
	Title          string `form:"title" validate:"max=250"`
	Description    string `form:"description" validate:"required"`
}

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// FieldError describes one failed rule on one form field.
type FieldError struct {
	Field string // form field name, e.g. "github_url"
	Tag   string // failed rule, e.g. "required"
	Param string // rule parameter, e.g. "6" for min=6
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return model.IsValidCategory(fl.Field().String())
	})
	// max counts runes; maxbytes bounds the encoded length.
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= n
	})
	return v
}

// Validate checks form against its validate tags and returns one FieldError
// per failing field, in declaration order.
func Validate(form any) []FieldError {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Tag: "invalid"}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Tag: fe.Tag(), Param: fe.Param()})
	}
	return out
}

func (f *RegisterForm) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
}

func (f *LoginForm) Normalize() {
	f.Email = strings.TrimSpace(f.Email)
}

func (f *ProjectForm) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Category = strings.TrimSpace(f.Category)
	f.UsedTechnology = strings.TrimSpace(f.UsedTechnology)
	f.ImgFgPath = strings.TrimSpace(f.ImgFgPath)
	f.ImgBgPath = strings.TrimSpace(f.ImgBgPath)
	f.GithubUrl = strings.TrimSpace(f.GithubUrl)
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
}

// ProjectFormFrom pre-fills an edit form from a stored project.
func ProjectFormFrom(p *model.Project) ProjectForm {
	return ProjectForm{
		Name:           p.Name,
		Category:       p.Category,
		UsedTechnology: p.UsedTechnology,
		ImgFgPath:      p.ImgFgPath,
		ImgBgPath:      p.ImgBgPath,
		GithubUrl:      p.GithubUrl,
		Title:          p.Title,
		Description:    p.Description,
	}
}

// Apply copies the form onto p, leaving its identifier and date untouched.
func (f *ProjectForm) Apply(p *model.Project) {
	p.Name = f.Name
	p.Category = f.Category
	p.UsedTechnology = f.UsedTechnology
	p.ImgFgPath = f.ImgFgPath
	p.ImgBgPath = f.ImgBgPath
	p.GithubUrl = f.GithubUrl
	p.Title = f.Title
	p.Description = f.Description
}
