package businessflow

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/amirphl/Kusanagi/repository"
)

// Aliases that would shadow well-known paths are never allocated
var reservedAliases = map[string]struct{}{
	"admin":     {},
	"api":       {},
	"www":       {},
	"mail":      {},
	"ftp":       {},
	"localhost": {},
	"dashboard": {},
	"analytics": {},
	"stats":     {},
	"help":      {},
	"support":   {},
	"about":     {},
	"contact":   {},
	"privacy":   {},
	"terms":     {},
	"login":     {},
	"register":  {},
}

var aliasPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

const (
	minAliasLength = 3
	maxAliasLength = 50
)

// AliasValidator checks custom aliases for shape, reserved words, and availability in
// the shared code/alias namespace
type AliasValidator interface {
	Validate(ctx context.Context, alias string) error
}

type AliasValidatorImpl struct {
	shortRepo repository.ShortLinkRepository
}

func NewAliasValidator(shortRepo repository.ShortLinkRepository) AliasValidator {
	return &AliasValidatorImpl{shortRepo: shortRepo}
}

func (v *AliasValidatorImpl) Validate(ctx context.Context, alias string) error {
	if len(alias) < minAliasLength || len(alias) > maxAliasLength {
		return ErrInvalidAlias
	}
	if !aliasPattern.MatchString(alias) {
		return ErrInvalidAlias
	}
	if _, reserved := reservedAliases[strings.ToLower(alias)]; reserved {
		return ErrInvalidAlias
	}

	taken, err := v.shortRepo.LookupKeyTaken(ctx, alias)
	if err != nil {
		return fmt.Errorf("failed to check alias availability: %w", err)
	}
	if taken {
		return ErrAliasTaken
	}
	return nil
}
