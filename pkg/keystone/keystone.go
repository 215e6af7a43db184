// SPDX-FileCopyrightText: 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package keystone

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gophercloud/gophercloud/v2"
	"github.com/gophercloud/gophercloud/v2/openstack/identity/v3/tokens"
	cache "github.com/patrickmn/go-cache"
	"github.com/spf13/viper"

	"github.com/sapcc/go-bits/logg"
)

// tokenSafetyMargin is subtracted from the admin token expiry: the token is
// refreshed once less than this much lifetime remains.
const tokenSafetyMargin = 60 * time.Second

const roleCacheKey = "roles"

// Driver is the admin-credential broker against the Keystone identity
// service. It owns the single shared admin session and performs all
// privileged identity operations on behalf of the gateway.
type Driver interface {
	// CurrentToken returns a valid admin token, refreshing it when the
	// cached one is absent or inside its safety margin.
	CurrentToken(ctx context.Context) (string, error)
	// CreateUser creates an end-user identity scoped to the configured
	// domain and returns its external ID.
	CreateUser(ctx context.Context, name, password, email string) (string, error)
	// CreateProject creates a tenant project scoped to the configured
	// domain and returns its external ID.
	CreateProject(ctx context.Context, name string) (string, error)
	// AssignDefaultRole grants the configured default role (or the first
	// available one) to a user on a project.
	AssignDefaultRole(ctx context.Context, userID, projectID string) error
}

// adminSession is the one process-wide admin credential. It is replaced
// wholesale on refresh and never leaves this package except as a bare token
// string.
type adminSession struct {
	token     string
	expiresAt time.Time
}

type keystone struct {
	// guards the session; also serializes refreshes so that concurrent
	// callers share a single admin login instead of each issuing one
	refreshMutex sync.Mutex
	session      adminSession

	roleCache *cache.Cache
	client    *gophercloud.ServiceClient
	clk       clock.Clock

	domain  ResourceRef
	project ResourceRef
}

// NewDriver builds the Keystone driver from the keystone.* configuration
// section.
func NewDriver() Driver {
	return newDriver(clock.New())
}

func newDriver(clk clock.Clock) *keystone {
	roleCacheTime := viper.GetDuration("keystone.role_cache_time")
	if roleCacheTime <= 0 {
		roleCacheTime = time.Hour
	}
	return &keystone{
		roleCache: cache.New(roleCacheTime, time.Minute),
		client:    newIdentityClient(viper.GetString("keystone.auth_url")),
		clk:       clk,
		domain:    ParseResourceRef(viper.GetString("keystone.domain")),
		project:   ParseResourceRef(viper.GetString("keystone.project")),
	}
}

// newIdentityClient builds an unauthenticated identity-v3 client. The admin
// token is attached per request, so the provider itself carries no state.
func newIdentityClient(endpoint string) *gophercloud.ServiceClient {
	if endpoint != "" && !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}
	return &gophercloud.ServiceClient{
		ProviderClient: &gophercloud.ProviderClient{},
		Endpoint:       endpoint,
	}
}

// CurrentToken returns the cached admin token while it has more than the
// safety margin of lifetime left, and otherwise performs one admin login.
// Refreshes are serialized; callers never observe a partially written
// session, and a failed refresh caches nothing.
func (d *keystone) CurrentToken(ctx context.Context) (string, error) {
	d.refreshMutex.Lock()
	defer d.refreshMutex.Unlock()

	if d.session.token != "" && d.clk.Now().Before(d.session.expiresAt.Add(-tokenSafetyMargin)) {
		return d.session.token, nil
	}

	token, expiresAt, err := d.authenticateAdmin(ctx)
	if err != nil {
		return "", err
	}
	logg.Debug("admin token refreshed, expires at %s", expiresAt.Format(time.RFC3339))
	d.session = adminSession{token: token, expiresAt: expiresAt}
	return token, nil
}

// authenticateAdmin performs a scoped password authentication with the
// configured admin credentials. The token arrives in the X-Subject-Token
// response header, its expiry in the body.
func (d *keystone) authenticateAdmin(ctx context.Context) (string, time.Time, error) {
	opts := d.adminAuthOptions()
	result := tokens.Create(ctx, d.client, &opts)
	if result.Err != nil {
		return "", time.Time{}, &AuthenticationError{Message: "token request rejected", Err: result.Err}
	}
	token, err := result.ExtractToken()
	if err != nil {
		return "", time.Time{}, &AuthenticationError{Message: "malformed token response", Err: err}
	}
	if token.ID == "" {
		return "", time.Time{}, &AuthenticationError{Message: "response is missing the subject-token header"}
	}
	if token.ExpiresAt.IsZero() {
		return "", time.Time{}, &AuthenticationError{Message: "response is missing token expiry metadata"}
	}
	return token.ID, token.ExpiresAt, nil
}

// adminAuthOptions builds the scoped password-auth request for the service
// user. Domain and project go into id or name fields according to their
// parsed refs.
func (d *keystone) adminAuthOptions() gophercloud.AuthOptions {
	opts := gophercloud.AuthOptions{
		IdentityEndpoint: viper.GetString("keystone.auth_url"),
		Username:         viper.GetString("keystone.username"),
		Password:         viper.GetString("keystone.password"),
		Scope:            &gophercloud.AuthScope{},
	}
	if d.domain.IsID() {
		opts.DomainID = d.domain.ID()
	} else {
		opts.DomainName = d.domain.Name()
	}
	if d.project.IsID() {
		opts.Scope.ProjectID = d.project.ID()
	} else {
		opts.Scope.ProjectName = d.project.Name()
		if d.domain.IsID() {
			opts.Scope.DomainID = d.domain.ID()
		} else {
			opts.Scope.DomainName = d.domain.Name()
		}
	}
	return opts
}

func (d *keystone) requestOpts(token string, okCodes ...int) *gophercloud.RequestOpts {
	return &gophercloud.RequestOpts{
		MoreHeaders: map[string]string{"X-Auth-Token": token},
		OkCodes:     okCodes,
	}
}

// CreateUser creates an end-user identity in the configured domain.
func (d *keystone) CreateUser(ctx context.Context, name, password, email string) (string, error) {
	token, err := d.CurrentToken(ctx)
	if err != nil {
		return "", err
	}

	user := map[string]any{
		"name":     name,
		"password": password,
		"email":    email,
	}
	if d.domain.IsID() {
		user["domain"] = map[string]any{"id": d.domain.ID()}
	} else {
		user["domain"] = map[string]any{"name": d.domain.Name()}
	}

	var result struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	resp, err := d.client.Post(ctx, d.client.ServiceURL("users"), map[string]any{"user": user}, &result, d.requestOpts(token, http.StatusCreated))
	if err != nil {
		return "", &ProvisioningError{Op: "create identity", Err: err}
	}
	defer resp.Body.Close()
	if result.User.ID == "" {
		return "", &ProvisioningError{Op: "create identity", Err: fmt.Errorf("response carries no user id")}
	}
	return result.User.ID, nil
}

// CreateProject creates a tenant project in the configured domain.
func (d *keystone) CreateProject(ctx context.Context, name string) (string, error) {
	token, err := d.CurrentToken(ctx)
	if err != nil {
		return "", err
	}

	project := map[string]any{"name": name}
	if d.domain.IsID() {
		project["domain_id"] = d.domain.ID()
	} else {
		project["domain"] = map[string]any{"name": d.domain.Name()}
	}

	var result struct {
		Project struct {
			ID string `json:"id"`
		} `json:"project"`
	}
	resp, err := d.client.Post(ctx, d.client.ServiceURL("projects"), map[string]any{"project": project}, &result, d.requestOpts(token, http.StatusCreated))
	if err != nil {
		return "", &ProvisioningError{Op: "create tenant", Err: err}
	}
	defer resp.Body.Close()
	if result.Project.ID == "" {
		return "", &ProvisioningError{Op: "create tenant", Err: fmt.Errorf("response carries no project id")}
	}
	return result.Project.ID, nil
}

type roleRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AssignDefaultRole grants the configured default role to the user on the
// project. When the configured role does not exist the first available role
// is used instead (with a warning); no roles at all is a hard failure.
func (d *keystone) AssignDefaultRole(ctx context.Context, userID, projectID string) error {
	roles, err := d.listRoles(ctx)
	if err != nil {
		return err
	}

	defaultName := viper.GetString("keystone.default_role")
	var role *roleRecord
	for i := range roles {
		if roles[i].Name == defaultName {
			role = &roles[i]
			break
		}
	}
	if role == nil {
		if len(roles) == 0 {
			return &ProvisioningError{Op: "grant role", Err: fmt.Errorf("identity service has no roles to assign")}
		}
		names := make([]string, len(roles))
		for i, r := range roles {
			names[i] = r.Name
		}
		logg.Info("WARNING: role %q not found, available roles: %s, falling back to %q", defaultName, strings.Join(names, ", "), roles[0].Name)
		role = &roles[0]
	}

	token, err := d.CurrentToken(ctx)
	if err != nil {
		return err
	}
	resp, err := d.client.Put(ctx, d.client.ServiceURL("projects", projectID, "users", userID, "roles", role.ID), nil, nil, d.requestOpts(token, http.StatusNoContent))
	if err != nil {
		return &ProvisioningError{Op: "grant role", Err: err}
	}
	resp.Body.Close()
	return nil
}

// listRoles fetches the global role list, cached to avoid hitting Keystone on
// every grant. Runtime role changes show up after the cache TTL.
func (d *keystone) listRoles(ctx context.Context) ([]roleRecord, error) {
	if cached, ok := d.roleCache.Get(roleCacheKey); ok {
		return cached.([]roleRecord), nil
	}

	token, err := d.CurrentToken(ctx)
	if err != nil {
		return nil, err
	}

	var result struct {
		Roles []roleRecord `json:"roles"`
	}
	resp, err := d.client.Get(ctx, d.client.ServiceURL("roles"), &result, d.requestOpts(token, http.StatusOK))
	if err != nil {
		return nil, &ProvisioningError{Op: "list roles", Err: err}
	}
	defer resp.Body.Close()

	d.roleCache.Set(roleCacheKey, result.Roles, cache.DefaultExpiration)
	return result.Roles, nil
}
