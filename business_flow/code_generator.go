package businessflow

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"

	"github.com/amirphl/Kusanagi/repository"
	"github.com/amirphl/Kusanagi/utils"
)

// CodeGenerator allocates short codes that are free in the shared code/alias namespace.
// Random draws come first; after MaxGenerateAttempts collisions the generator falls back
// to a digest of the URL and the current timestamp.
type CodeGenerator interface {
	Generate(ctx context.Context, originalURL string) (string, error)
}

type CodeGeneratorImpl struct {
	shortRepo repository.ShortLinkRepository
	now       func() int64
}

func NewCodeGenerator(shortRepo repository.ShortLinkRepository) CodeGenerator {
	return &CodeGeneratorImpl{
		shortRepo: shortRepo,
		now:       func() int64 { return utils.UTCNow().UnixNano() },
	}
}

func (g *CodeGeneratorImpl) Generate(ctx context.Context, originalURL string) (string, error) {
	for attempt := 0; attempt < utils.MaxGenerateAttempts; attempt++ {
		code, err := randomCode()
		if err != nil {
			return "", fmt.Errorf("failed to draw random code: %w", err)
		}
		taken, err := g.shortRepo.LookupKeyTaken(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check code availability: %w", err)
		}
		if !taken {
			return code, nil
		}
	}

	// Digest fallback. Uniqueness is not re-checked here; the insert retry loop handles
	// the residual collision risk through the database constraint.
	return digestCode(originalURL, g.now()), nil
}

func randomCode() (string, error) {
	alphabetSize := big.NewInt(int64(len(utils.CodeAlphabet)))
	buf := make([]byte, utils.CodeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		buf[i] = utils.CodeAlphabet[n.Int64()]
	}
	return string(buf), nil
}

func digestCode(originalURL string, nowNanos int64) string {
	sum := sha256.Sum256([]byte(originalURL + strconv.FormatInt(nowNanos, 10)))
	return hex.EncodeToString(sum[:])[:utils.CodeLength]
}
