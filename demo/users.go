// Package demo is the example application: one user list served as JSON to
// API clients and as an HTML fragment to htmx.
package demo

import "context"

type User struct {
	ID        *int64 `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Age       *int   `json:"age"`
	Admin     bool   `json:"-"`
}

func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func age(years int) *int {
	return &years
}

// SeedUsers is the data the demo starts with.
func SeedUsers() []User {
	return []User{
		{FirstName: "Peter", LastName: "Volf", Age: age(18)},
		{FirstName: "John", LastName: "Doe", Age: age(20)},
		{FirstName: "Hasan", LastName: "Tasan", Age: age(24)},
		{FirstName: "John", LastName: "Doe", Age: age(10), Admin: true},
	}
}

type UserStore interface {
	ListUsers(ctx context.Context) ([]User, error)
	ListAdmins(ctx context.Context) ([]User, error)
}

// StaticStore serves a fixed set of users from memory.
type StaticStore struct {
	users []User
}

func NewStaticStore(users []User) *StaticStore {
	return &StaticStore{users: users}
}

func (s *StaticStore) ListUsers(ctx context.Context) ([]User, error) {
	return s.filter(false), nil
}

func (s *StaticStore) ListAdmins(ctx context.Context) ([]User, error) {
	return s.filter(true), nil
}

func (s *StaticStore) filter(admin bool) []User {
	out := []User{}
	for _, u := range s.users {
		if u.Admin == admin {
			out = append(out, u)
		}
	}
	return out
}
