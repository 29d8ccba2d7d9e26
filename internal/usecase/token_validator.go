package usecase

import (
	"courier-escrow/internal/domain/identity"
	"courier-escrow/internal/pkg/jwt"
)

// TokenValidator turns a bearer token from the identity provider into the caller's identity.
type TokenValidator interface {
	ValidateToken(tokenString string) (identity.Actor, error)
}

type tokenValidatorImpl struct {
	jwtService *jwt.Service
}

func NewTokenValidator(jwtService *jwt.Service) TokenValidator {
	return &tokenValidatorImpl{
		jwtService: jwtService,
	}
}

func (t *tokenValidatorImpl) ValidateToken(tokenString string) (identity.Actor, error) {
	claims, err := t.jwtService.ValidateToken(tokenString)
	if err != nil {
		return identity.Actor{}, err
	}
	return claims.Actor()
}
