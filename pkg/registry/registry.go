// SPDX-FileCopyrightText: 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

// Package registry persists the gateway's local user and project records.
// Rows are written once at creation and only read afterwards; all
// cloud-resource state lives in the platform, never here.
package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ErrNotFound is returned for a missing record. The authorization guard also
// uses it for projects the caller does not own, so existence never leaks.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateEmail is returned when a user registers with an email that is
// already taken.
var ErrDuplicateEmail = errors.New("email already registered")

// User is a locally registered end user. ExternalID is the identity the
// platform knows the user by.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	Name         string
	PasswordHash []byte
	ExternalID   string
	CreatedAt    time.Time
}

// Project is a locally registered tenant project. ExternalID is the platform
// project all resource operations are scoped to; OwnerID is the single owner.
type Project struct {
	ID         uint `gorm:"primaryKey"`
	Name       string
	ExternalID string
	OwnerID    uint `gorm:"index;not null"`
	CreatedAt  time.Time
}

// Store is the registry's create/find-by-unique-key surface.
type Store interface {
	CreateUser(ctx context.Context, user *User) error
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	FindUserByID(ctx context.Context, id uint) (*User, error)
	CreateProject(ctx context.Context, project *Project) error
	FindProjectByID(ctx context.Context, id uint) (*Project, error)
	ProjectsByOwner(ctx context.Context, ownerID uint) ([]Project, error)
}

// Open connects the registry store for the given driver/dsn.
// Supported: "postgres", and "" for the in-memory store (dev and tests).
func Open(driver, dsn string) (Store, error) {
	switch driver {
	case "":
		return NewMemory(), nil
	case "postgres":
		db, err := gorm.Open(postgres.Open(dsn), gormConfig())
		if err != nil {
			return nil, fmt.Errorf("cannot open registry database: %w", err)
		}
		if err := db.AutoMigrate(&User{}, &Project{}); err != nil {
			return nil, fmt.Errorf("cannot migrate registry schema: %w", err)
		}
		return &gormStore{db: db}, nil
	default:
		return nil, fmt.Errorf("unsupported registry driver: %s", driver)
	}
}

// gormConfig must keep TranslateError on: without it the postgres driver
// surfaces raw pgconn errors and unique-constraint violations never match
// gorm.ErrDuplicatedKey.
func gormConfig() *gorm.Config {
	return &gorm.Config{TranslateError: true}
}

// translateCreateError maps a translated unique-constraint violation onto the
// registry's own sentinel. The only unique column is the user email.
func translateCreateError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateEmail
	}
	return err
}

type gormStore struct {
	db *gorm.DB
}

func (s *gormStore) CreateUser(ctx context.Context, user *User) error {
	return translateCreateError(s.db.WithContext(ctx).Create(user).Error)
}

func (s *gormStore) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *gormStore) FindUserByID(ctx context.Context, id uint) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *gormStore) CreateProject(ctx context.Context, project *Project) error {
	return s.db.WithContext(ctx).Create(project).Error
}

func (s *gormStore) FindProjectByID(ctx context.Context, id uint) (*Project, error) {
	var project Project
	err := s.db.WithContext(ctx).First(&project, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *gormStore) ProjectsByOwner(ctx context.Context, ownerID uint) ([]Project, error) {
	var projects []Project
	err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id").Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}
