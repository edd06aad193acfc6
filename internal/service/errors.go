package service

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tcg-catalog/internal/repository"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrEmailTaken          = errors.New("email already taken")
	ErrDuplicateName       = errors.New("a card with this name already exists")
	ErrDuplicateDeckName   = errors.New("owner already has a deck with this name")
	ErrDuplicateCardInDeck = errors.New("card already in deck")
	ErrCardNotInDeck       = errors.New("card not in deck")
	ErrEmptyUpdate         = errors.New("no fields to update")
	ErrValidation          = errors.New("validation failed")
	ErrStoreUnavailable    = errors.New("store unavailable")
)

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

const (
	minNameLength = 2
	maxNameLength = 100
)

// cleanName trims surrounding whitespace and checks the remaining length in characters
func cleanName(field, name string) (string, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n < minNameLength || n > maxNameLength {
		return "", invalid("%s must be between %d and %d characters", field, minNameLength, maxNameLength)
	}
	return name, nil
}

// storeError wraps an unexpected repository failure
func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}

// lookupError maps a by-id lookup or delete failure to ErrNotFound or ErrStoreUnavailable
func lookupError(kind, id string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(kind, id)
	}
	return storeError(kind+" "+id, err)
}

// pageOf converts a 1-based page number into a repository window
func pageOf(page, pageSize int) repository.Page {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		return repository.Page{}
	}
	return repository.Page{Offset: (page - 1) * pageSize, Limit: pageSize}
}
