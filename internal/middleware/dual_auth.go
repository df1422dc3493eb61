package middleware

import (
	"context"
	"errors"

	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
)

// ChainValidator accepts a token if any of its validators does. Validators are
// tried in order, so put the one most callers use first.
type ChainValidator struct {
	validators []TokenValidator
}

// NewChainValidator creates a ChainValidator, skipping nil entries
func NewChainValidator(validators ...TokenValidator) *ChainValidator {
	chain := &ChainValidator{}
	for _, v := range validators {
		if v != nil {
			chain.validators = append(chain.validators, v)
		}
	}
	return chain
}

// ValidateToken implements TokenValidator
func (c *ChainValidator) ValidateToken(ctx context.Context, token string) (*domain.Identity, error) {
	if len(c.validators) == 0 {
		return nil, errors.New("no token validators configured")
	}

	var errs []error
	for _, v := range c.validators {
		id, err := v.ValidateToken(ctx, token)
		if err == nil {
			return id, nil
		}
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}
