package config

import (
	"context"

	"github.com/glorpus-work/shelfsync/pkg/catalog"
	"github.com/glorpus-work/shelfsync/pkg/errors"
)

// TokenAuthorizer hands out the catalog token from the configuration.
type TokenAuthorizer struct {
	Token string
}

// Authorization implements catalog.Authorizer.
func (a TokenAuthorizer) Authorization(context.Context) (string, error) {
	if a.Token == "" {
		return "", errors.ErrMissingToken
	}
	return a.Token, nil
}

// Authorizer returns the authorizer for catalog requests. Without a token
// requests are sent anonymously.
func (c *Config) Authorizer() catalog.Authorizer {
	if c.Catalog.Token == "" {
		return catalog.StaticAuthorizer{}
	}
	return TokenAuthorizer{Token: c.Catalog.Token}
}
