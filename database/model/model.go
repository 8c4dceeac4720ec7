package model

import (
	"time"
)

type Category string

const (
	WebDevelopment   Category = "Web Development"
	PythonScripting  Category = "Python Scripting"
	API              Category = "API"
	ScrapingData     Category = "Scraping Data"
	GUI              Category = "GUI"
	DataScienceAndML Category = "Data Science & Machine Learning"
)

// Categories lists the project categories in display order.
var Categories = []Category{
	WebDevelopment,
	PythonScripting,
	API,
	ScrapingData,
	GUI,
	DataScienceAndML,
}

func IsValidCategory(c string) bool {
	for _, v := range Categories {
		if string(v) == c {
			return true
		}
	}
	return false
}

// User is a registered account. Password holds a bcrypt hash, never plaintext.
type User struct {
	Id       int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Email    string `json:"email" gorm:"size:100;not null;uniqueIndex"`
	Name     string `json:"name" gorm:"size:100;index"`
	Password string `json:"-" gorm:"column:password_hash;size:100;not null"`
}

// Project is one entry of the portfolio catalog.
type Project struct {
	Id             int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Name           string    `json:"name" gorm:"size:80;not null;uniqueIndex"`
	Category       string    `json:"category" gorm:"size:80;not null"`
	UsedTechnology string    `json:"usedTechnology" gorm:"size:250;not null"`
	Date           time.Time `json:"date" gorm:"autoCreateTime"`
	ImgFgPath      string    `json:"imgFgPath" gorm:"size:250;not null"`
	ImgBgPath      string    `json:"imgBgPath" gorm:"size:250;not null"`
	GithubUrl      string    `json:"githubUrl" gorm:"size:250;not null"`
	Title          string    `json:"title" gorm:"size:250"`
	Description    string    `json:"description" gorm:"type:text;not null"`
}

// DisplayTitle falls back to the project name when no title was given.
func (p *Project) DisplayTitle() string {
	if p.Title != "" {
		return p.Title
	}
	return p.Name
}
