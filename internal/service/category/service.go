package category

import (
	"context"
	"strings"
	"unicode"

	"storefront/internal/domain"
	categoryrepo "storefront/internal/repository/category"
)

type Service struct {
	repo categoryrepo.Repository
}

func New(repo categoryrepo.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]domain.Category, error) {
	return s.repo.List(ctx)
}

// Ensure returns the category named name, creating it on first use.
func (s *Service) Ensure(ctx context.Context, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	slug := Slugify(name)
	if slug == "" {
		return nil, domain.FieldError("name", "The name field is required.")
	}
	return s.repo.Upsert(ctx, domain.Category{Name: name, Slug: slug})
}

// Slugify lowercases s and joins its alphanumeric runs with hyphens.
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingDash = false
			continue
		}
		pendingDash = true
	}
	return b.String()
}
