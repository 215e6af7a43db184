// SPDX-FileCopyrightText: 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

// Package auth issues and verifies the gateway's own identity assertions and
// enforces project ownership before any platform call.
package auth

import (
	"errors"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

// ErrInvalidToken covers missing, expired, malformed and wrongly signed
// assertions alike.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the identity assertion payload: the local user id and the
// identity the platform knows the user by.
type Claims struct {
	UserID     uint   `json:"uid"`
	ExternalID string `json:"external_id"`
	jwt.RegisteredClaims
}

// TokenPair is the assertion pair handed to end users: a short-lived access
// token and a longer-lived refresh token, signed with distinct secrets.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Verifier signs and verifies identity assertions. Assertions are consumed,
// never stored.
type Verifier struct {
	accessSecret    []byte
	refreshSecret   []byte
	accessLifetime  time.Duration
	refreshLifetime time.Duration
	clk             clock.Clock
}

// NewVerifier builds a verifier from the auth.* configuration section.
func NewVerifier() *Verifier {
	return newVerifier(clock.New())
}

func newVerifier(clk clock.Clock) *Verifier {
	return &Verifier{
		accessSecret:    []byte(viper.GetString("auth.access_secret")),
		refreshSecret:   []byte(viper.GetString("auth.refresh_secret")),
		accessLifetime:  viper.GetDuration("auth.access_lifetime"),
		refreshLifetime: viper.GetDuration("auth.refresh_lifetime"),
		clk:             clk,
	}
}

// IssuePair signs a fresh access/refresh assertion pair for the user.
func (v *Verifier) IssuePair(userID uint, externalID string) (TokenPair, error) {
	access, err := v.sign(userID, externalID, v.accessSecret, v.accessLifetime)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := v.sign(userID, externalID, v.refreshSecret, v.refreshLifetime)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// IssueAccess signs a fresh access assertion only, for refresh flows.
func (v *Verifier) IssueAccess(userID uint, externalID string) (string, error) {
	return v.sign(userID, externalID, v.accessSecret, v.accessLifetime)
}

func (v *Verifier) sign(userID uint, externalID string, secret []byte, lifetime time.Duration) (string, error) {
	now := v.clk.Now()
	claims := Claims{
		UserID:     userID,
		ExternalID: externalID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// VerifyAccess validates an access assertion and returns its claims.
func (v *Verifier) VerifyAccess(token string) (*Claims, error) {
	return v.verify(token, v.accessSecret)
}

// VerifyRefresh validates a refresh assertion and returns its claims.
func (v *Verifier) VerifyRefresh(token string) (*Claims, error) {
	return v.verify(token, v.refreshSecret)
}

func (v *Verifier) verify(token string, secret []byte) (*Claims, error) {
	claims := Claims{}
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.clk.Now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
