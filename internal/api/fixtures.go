package api

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"thiepcuoi.vn/web/internal/domain"
)

//go:embed fixtures/catalog.yaml
var catalogYAML []byte

type fixtureCatalog struct {
	Users []struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		Email    string `yaml:"email"`
		FullName string `yaml:"fullName"`
		Phone    string `yaml:"phone"`
	} `yaml:"users"`
	Categories []struct {
		ID          string `yaml:"id"`
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	} `yaml:"categories"`
	Templates []struct {
		ID          string `yaml:"id"`
		Name        string `yaml:"name"`
		CategoryID  string `yaml:"categoryId"`
		Price       int64  `yaml:"price"`
		ImageURL    string `yaml:"imageUrl"`
		Description string `yaml:"description"`
	} `yaml:"templates"`
	CardTemplates []struct {
		ID                string `yaml:"id"`
		TemplateID        string `yaml:"templateId"`
		CardTemplateName  string `yaml:"cardTemplateName"`
		Version           string `yaml:"version"`
		TemplateVariables string `yaml:"templateVariables"`
		HTMLContent       string `yaml:"htmlContent"`
		CSSContent        string `yaml:"cssContent"`
	} `yaml:"cardTemplates"`
}

type catalog struct {
	users         []fixtureUser
	categories    []domain.Category
	templates     []domain.Template
	cardTemplates []domain.CardTemplate
}

type fixtureUser struct {
	user     domain.User
	password string
}

func loadCatalog(raw []byte) (catalog, error) {
	var fx fixtureCatalog
	if err := yaml.Unmarshal(raw, &fx); err != nil {
		return catalog{}, fmt.Errorf("api: parse fixtures: %w", err)
	}
	var out catalog
	names := map[string]string{}
	for _, c := range fx.Categories {
		out.categories = append(out.categories, domain.Category{ID: domain.ID(c.ID), Name: c.Name, Description: c.Description})
		names[c.ID] = c.Name
	}
	tplNames := map[string]string{}
	for _, t := range fx.Templates {
		out.templates = append(out.templates, domain.Template{
			ID:           domain.ID(t.ID),
			Name:         t.Name,
			Description:  t.Description,
			CategoryID:   domain.ID(t.CategoryID),
			CategoryName: names[t.CategoryID],
			ImageURL:     t.ImageURL,
			PreviewURL:   t.ImageURL,
			Price:        domain.Money(t.Price),
			IsActive:     true,
		})
		tplNames[t.ID] = t.Name
	}
	for _, ct := range fx.CardTemplates {
		out.cardTemplates = append(out.cardTemplates, domain.CardTemplate{
			ID:                domain.ID(ct.ID),
			TemplateID:        domain.ID(ct.TemplateID),
			TemplateName:      tplNames[ct.TemplateID],
			CardTemplateName:  ct.CardTemplateName,
			HTMLContent:       ct.HTMLContent,
			CSSContent:        ct.CSSContent,
			TemplateVariables: ct.TemplateVariables,
			Version:           ct.Version,
			IsActive:          true,
		})
	}
	for i, u := range fx.Users {
		out.users = append(out.users, fixtureUser{
			user: domain.User{
				ID:       domain.ID(fmt.Sprint(i + 1)),
				Username: u.Username,
				Email:    u.Email,
				FullName: u.FullName,
				Phone:    u.Phone,
				Role:     "USER",
			},
			password: u.Password,
		})
	}
	return out, nil
}
