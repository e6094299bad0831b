// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package auth

import (
	"errors"
	"fmt"
)

// ConfigurationErrorKind identifies why credentials could not be resolved.
type ConfigurationErrorKind int

const (
	// MissingCredentials means none of the three credential variables is set.
	MissingCredentials ConfigurationErrorKind = iota
	// InvalidInlineJSON means the inline credentials variable is not a JSON object.
	InvalidInlineJSON
	// UnreadableCredentialsFile means the credentials file path could not be read.
	UnreadableCredentialsFile
)

func (k ConfigurationErrorKind) String() string {
	switch k {
	case InvalidInlineJSON:
		return "invalid_inline_json"
	case UnreadableCredentialsFile:
		return "unreadable_credentials_file"
	default:
		return "missing_credentials"
	}
}

// ConfigurationError is returned by the Resolver when the environment does not
// describe a usable credential strategy.
type ConfigurationError struct {
	Kind ConfigurationErrorKind
	Err  error
}

func (e *ConfigurationError) Error() string {
	switch e.Kind {
	case InvalidInlineJSON:
		return fmt.Sprintf("%s is set but does not contain a valid JSON object: %v", EnvCredentialsJSON, e.Err)
	case UnreadableCredentialsFile:
		return fmt.Sprintf("failed to read the credentials file named by %s: %v", EnvCredentialsFile, e.Err)
	default:
		return "no Google Chat credentials configured\n" + Remediation()
	}
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Remediation lists the three ways to supply credentials.
func Remediation() string {
	return fmt.Sprintf("Set one of the following environment variables:\n"+
		"  1. %s: path to a service account key file\n"+
		"  2. %s: the service account key JSON itself\n"+
		"  3. %s: an OAuth 2.0 access token",
		EnvCredentialsFile, EnvCredentialsJSON, EnvAccessToken)
}

// AuthExpiredError is returned when the OAuth bearer token has disappeared
// from the environment between resolution and use.
type AuthExpiredError struct{}

func (e *AuthExpiredError) Error() string {
	return fmt.Sprintf("OAuth access token is missing or expired; set %s to a fresh token", EnvAccessToken)
}

// AuthExchangeError is returned when service account credentials could not be
// exchanged for an access token.
type AuthExchangeError struct {
	Err error
}

func (e *AuthExchangeError) Error() string {
	return fmt.Sprintf("failed to obtain an access token from service account credentials: %v", e.Err)
}

func (e *AuthExchangeError) Unwrap() error {
	return e.Err
}

var errEmptyAccessToken = errors.New("token endpoint returned an empty access token")
