// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package auth

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ChatScopes are requested when exchanging service account credentials.
var ChatScopes = []string{
	"https://www.googleapis.com/auth/chat.spaces",
	"https://www.googleapis.com/auth/chat.spaces.readonly",
	"https://www.googleapis.com/auth/chat.messages",
	"https://www.googleapis.com/auth/chat.messages.readonly",
	"https://www.googleapis.com/auth/chat.memberships",
	"https://www.googleapis.com/auth/chat.memberships.readonly",
	"https://www.googleapis.com/auth/chat.spaces.create",
	"https://www.googleapis.com/auth/chat.delete",
	"https://www.googleapis.com/auth/chat.import",
}

// TokenProvider yields a bearer token for each outbound request.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// TokenProvider resolves credentials and builds the matching provider.
func (r *Resolver) TokenProvider(ctx context.Context) (TokenProvider, error) {
	strategy, err := r.Resolve()
	if err != nil {
		return nil, err
	}
	return NewTokenProvider(ctx, strategy, r.Getenv)
}

// NewTokenProvider builds a provider for a resolved strategy. The OAuth
// variant reads the token variable through getenv on every call.
func NewTokenProvider(ctx context.Context, strategy Strategy, getenv func(string) string) (TokenProvider, error) {
	switch strategy.Kind {
	case OAuthBearerToken:
		return &bearerTokenProvider{getenv: getenv}, nil
	case ServiceAccountPath, ServiceAccountInlineJSON:
		creds, err := google.CredentialsFromJSONWithParams(ctx, strategy.CredentialsJSON, google.CredentialsParams{
			Scopes:  ChatScopes,
			Subject: strategy.Subject,
		})
		if err != nil {
			return nil, &AuthExchangeError{Err: err}
		}
		return &serviceAccountProvider{source: creds.TokenSource}, nil
	default:
		return nil, fmt.Errorf("unsupported credential strategy %s", strategy.Kind)
	}
}

type bearerTokenProvider struct {
	getenv func(string) string
}

func (p *bearerTokenProvider) Token(_ context.Context) (string, error) {
	// Whitespace only decides presence; the configured value is sent as is.
	token := p.getenv(EnvAccessToken)
	if strings.TrimSpace(token) == "" {
		return "", &AuthExpiredError{}
	}
	return token, nil
}

// serviceAccountProvider delegates caching and refresh to the oauth2 token
// source, which reuses a token until shortly before it expires.
type serviceAccountProvider struct {
	source oauth2.TokenSource
}

func (p *serviceAccountProvider) Token(_ context.Context) (string, error) {
	tok, err := p.source.Token()
	if err != nil {
		return "", &AuthExchangeError{Err: err}
	}
	if tok == nil || tok.AccessToken == "" {
		return "", &AuthExchangeError{Err: errEmptyAccessToken}
	}
	return tok.AccessToken, nil
}

// StaticTokenProvider always returns the same token.
type StaticTokenProvider string

func (s StaticTokenProvider) Token(_ context.Context) (string, error) {
	if s == "" {
		return "", &AuthExpiredError{}
	}
	return string(s), nil
}
