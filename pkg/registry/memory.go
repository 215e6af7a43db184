// SPDX-FileCopyrightText: 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"context"
	"sync"
	"time"
)

// Memory is the in-memory registry store used when no database is configured.
// Reads are read-after-write consistent with the creates that produced them.
type Memory struct {
	mu       sync.RWMutex
	users    map[uint]User
	projects map[uint]Project
	nextUser uint
	nextProj uint
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:    map[uint]User{},
		projects: map[uint]Project{},
		nextUser: 1,
		nextProj: 1,
	}
}

func (m *Memory) CreateUser(ctx context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return ErrDuplicateEmail
		}
	}
	user.ID = m.nextUser
	user.CreatedAt = time.Now()
	m.nextUser++
	m.users[user.ID] = *user
	return nil
}

func (m *Memory) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) FindUserByID(ctx context.Context, id uint) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, ErrNotFound
}

func (m *Memory) CreateProject(ctx context.Context, project *Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	project.ID = m.nextProj
	project.CreatedAt = time.Now()
	m.nextProj++
	m.projects[project.ID] = *project
	return nil
}

func (m *Memory) FindProjectByID(ctx context.Context, id uint) (*Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.projects[id]; ok {
		return &p, nil
	}
	return nil, ErrNotFound
}

func (m *Memory) ProjectsByOwner(ctx context.Context, ownerID uint) ([]Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	projects := []Project{}
	for id := uint(1); id < m.nextProj; id++ {
		if p, ok := m.projects[id]; ok && p.OwnerID == ownerID {
			projects = append(projects, p)
		}
	}
	return projects, nil
}
