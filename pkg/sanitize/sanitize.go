// Package sanitize validates and cleans user-supplied query input before it
// reaches the repository layer.
package sanitize

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"produto-api/pkg/apperrors"
)

const (
	MaxSearchTermLength = 100
	MaxCategoryLength   = 50
	MinPageSize         = 1
	MaxPageSize         = 100
	MaxPageNumber       = 10000
)

// dangerous fragments rejected in free-text search input
var dangerousFragments = []string{
	";", "--", "/*", "*/", "xp_", "sp_", "exec", "execute",
	"union", "select", "insert", "update", "delete", "drop",
	"create", "alter", "truncate", "script", "<", ">",
}

var (
	controlChars = regexp.MustCompile(`[\x00-\x1f\x7f-\x9f]`)
	multiSpace   = regexp.MustCompile(`\s+`)
	categoryRE   = regexp.MustCompile(`^[\p{L}\p{N} _-]+$`)
)

// SearchTerm validates and cleans a free-text search term.
func SearchTerm(term string) (string, error) {
	term = strings.TrimSpace(term)

	if utf8.RuneCountInString(term) < 2 {
		return "", apperrors.BadRequest("termo de busca deve ter pelo menos 2 caracteres")
	}
	if utf8.RuneCountInString(term) > MaxSearchTermLength {
		return "", apperrors.BadRequest(fmt.Sprintf("termo de busca muito longo (máximo %d caracteres)", MaxSearchTermLength))
	}

	term = controlChars.ReplaceAllString(term, "")

	lower := strings.ToLower(term)
	for _, fragment := range dangerousFragments {
		if strings.Contains(lower, fragment) {
			return "", apperrors.BadRequest("termo de busca contém caracteres inválidos")
		}
	}

	return multiSpace.ReplaceAllString(term, " "), nil
}

// Category validates and cleans a category path segment.
func Category(category string) (string, error) {
	category = strings.TrimSpace(category)

	if category == "" {
		return "", apperrors.BadRequest("categoria não pode ser vazia")
	}
	if utf8.RuneCountInString(category) > MaxCategoryLength {
		return "", apperrors.BadRequest(fmt.Sprintf("categoria muito longa (máximo %d caracteres)", MaxCategoryLength))
	}
	if !categoryRE.MatchString(category) {
		return "", apperrors.BadRequest("categoria contém caracteres inválidos")
	}

	return category, nil
}

// PageParams normalizes pagination input, applying defaults for zero values.
func PageParams(page, pageSize int) (int, int, error) {
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = 10
	}
	if page < 1 || page > MaxPageNumber {
		return 0, 0, apperrors.BadRequest(fmt.Sprintf("página deve estar entre 1 e %d", MaxPageNumber))
	}
	if pageSize < MinPageSize || pageSize > MaxPageSize {
		return 0, 0, apperrors.BadRequest(fmt.Sprintf("tamanho da página deve estar entre %d e %d", MinPageSize, MaxPageSize))
	}
	return page, pageSize, nil
}

// ID validates a numeric resource identifier.
func ID(id int, field string) error {
	if id < 1 {
		return apperrors.BadRequest(fmt.Sprintf("%s deve ser um inteiro positivo", field))
	}
	return nil
}
