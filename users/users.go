// Package users is the typed users API: the jsonplaceholder data model,
// one provider per endpoint and a Repository returning lazy producers.
//
//	repo := users.NewRepository(base)
//	all, err := repo.FetchUsers().Await(ctx)
package users

import (
	"github.com/adamwoolhether/httpspec/future"
	"github.com/adamwoolhether/httpspec/repository"
)

// Repository exposes the users endpoints.
type Repository struct {
	repo *repository.Repository
}

// NewRepository returns a Repository fetching through repo.
func NewRepository(repo *repository.Repository) *Repository {
	return &Repository{repo: repo}
}

// FetchUsers lists every user.
func (r *Repository) FetchUsers() *future.Producer[[]User] {
	return repository.FetchList[User](r.repo, NewList(r.repo.API()))
}

// FetchUser fetches the user with the given id.
func (r *Repository) FetchUser(id int) *future.Producer[User] {
	return repository.Fetch[User](r.repo, NewGet(r.repo.API(), id))
}

// CreateUser posts u and returns the stored user.
func (r *Repository) CreateUser(u User) *future.Producer[User] {
	return repository.Fetch[User](r.repo, NewCreate(r.repo.API(), u))
}

// ReplaceUser overwrites user id with u.
func (r *Repository) ReplaceUser(id int, u User) *future.Producer[User] {
	return repository.Fetch[User](r.repo, NewReplace(r.repo.API(), id, u))
}

// UpdateUser applies p to user id.
func (r *Repository) UpdateUser(id int, p Patch) *future.Producer[User] {
	return repository.Fetch[User](r.repo, NewUpdate(r.repo.API(), id, p))
}

// DeleteUser removes user id.
func (r *Repository) DeleteUser(id int) *future.Producer[Deleted] {
	return repository.Fetch[Deleted](r.repo, NewDelete(r.repo.API(), id))
}
