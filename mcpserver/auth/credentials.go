// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Environment variables consulted by the Resolver, in priority order.
const (
	EnvCredentialsFile = "GOOGLE_APPLICATION_CREDENTIALS"
	EnvCredentialsJSON = "GOOGLE_CHAT_CREDENTIALS_JSON"
	EnvAccessToken     = "GOOGLE_CHAT_ACCESS_TOKEN"

	// EnvImpersonateUser optionally names the user a service account acts as
	// through domain-wide delegation.
	EnvImpersonateUser = "GOOGLE_CHAT_IMPERSONATE_USER"
)

// StrategyKind is the credential source selected by the Resolver.
type StrategyKind int

const (
	ServiceAccountPath StrategyKind = iota + 1
	ServiceAccountInlineJSON
	OAuthBearerToken
)

func (k StrategyKind) String() string {
	switch k {
	case ServiceAccountPath:
		return "service_account_path"
	case ServiceAccountInlineJSON:
		return "service_account_inline_json"
	case OAuthBearerToken:
		return "oauth_bearer_token"
	default:
		return "unknown"
	}
}

// Strategy is the outcome of credential resolution.
type Strategy struct {
	Kind StrategyKind

	// Path is the key file location for ServiceAccountPath.
	Path string

	// CredentialsJSON holds the service account key for both service account kinds.
	CredentialsJSON []byte

	// Subject is the impersonated user, if any.
	Subject string
}

// Sources abstracts the process environment so resolution can be tested.
type Sources struct {
	Getenv   func(string) string
	ReadFile func(string) ([]byte, error)
}

// EnvSources reads from the real process environment and filesystem.
func EnvSources() Sources {
	return Sources{Getenv: os.Getenv, ReadFile: os.ReadFile}
}

// Resolver decides, exactly once per process, which credential strategy is in
// effect. Both the strategy and any failure are memoized.
type Resolver struct {
	sources Sources

	once     sync.Once
	strategy Strategy
	err      error
}

// NewResolver creates a Resolver. Nil source functions default to the process
// environment.
func NewResolver(sources Sources) *Resolver {
	if sources.Getenv == nil {
		sources.Getenv = os.Getenv
	}
	if sources.ReadFile == nil {
		sources.ReadFile = os.ReadFile
	}
	return &Resolver{sources: sources}
}

// Resolve returns the memoized strategy. Concurrent first callers block until
// the single resolution finishes.
func (r *Resolver) Resolve() (Strategy, error) {
	r.once.Do(func() {
		r.strategy, r.err = r.resolve()
	})
	return r.strategy, r.err
}

// Getenv reads a variable from the resolver's sources at call time.
func (r *Resolver) Getenv(name string) string {
	return r.sources.Getenv(name)
}

func (r *Resolver) resolve() (Strategy, error) {
	subject := strings.TrimSpace(r.sources.Getenv(EnvImpersonateUser))

	if path := strings.TrimSpace(r.sources.Getenv(EnvCredentialsFile)); path != "" {
		data, err := r.sources.ReadFile(path)
		if err != nil {
			return Strategy{}, &ConfigurationError{Kind: UnreadableCredentialsFile, Err: err}
		}
		return Strategy{Kind: ServiceAccountPath, Path: path, CredentialsJSON: data, Subject: subject}, nil
	}

	if inline := strings.TrimSpace(r.sources.Getenv(EnvCredentialsJSON)); inline != "" {
		var doc map[string]any
		if err := json.Unmarshal([]byte(inline), &doc); err != nil {
			return Strategy{}, &ConfigurationError{Kind: InvalidInlineJSON, Err: err}
		}
		if doc == nil {
			return Strategy{}, &ConfigurationError{Kind: InvalidInlineJSON, Err: fmt.Errorf("value is null")}
		}
		return Strategy{Kind: ServiceAccountInlineJSON, CredentialsJSON: []byte(inline), Subject: subject}, nil
	}

	if strings.TrimSpace(r.sources.Getenv(EnvAccessToken)) != "" {
		return Strategy{Kind: OAuthBearerToken}, nil
	}

	return Strategy{}, &ConfigurationError{Kind: MissingCredentials}
}
