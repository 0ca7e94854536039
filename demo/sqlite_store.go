package demo

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const userSchema = `CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	age INTEGER,
	admin INTEGER NOT NULL DEFAULT 0
)`

// SQLiteStore keeps users in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens path, creates the users table and seeds it with
// SeedUsers when it is empty.
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, userSchema); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, u := range SeedUsers() {
		if _, err := s.Insert(ctx, u); err != nil {
			return err
		}
	}
	return nil
}

// Insert stores u and returns it with its new ID.
func (s *SQLiteStore) Insert(ctx context.Context, u User) (User, error) {
	var age sql.NullInt64
	if u.Age != nil {
		age = sql.NullInt64{Int64: int64(*u.Age), Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (first_name, last_name, age, admin) VALUES (?, ?, ?, ?)`,
		u.FirstName, u.LastName, age, u.Admin)
	if err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	u.ID = &id
	return u, nil
}

func (s *SQLiteStore) ListUsers(ctx context.Context) ([]User, error) {
	return s.list(ctx, false)
}

func (s *SQLiteStore) ListAdmins(ctx context.Context) ([]User, error) {
	return s.list(ctx, true)
}

func (s *SQLiteStore) list(ctx context.Context, admin bool) ([]User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, first_name, last_name, age, admin FROM users WHERE admin = ? ORDER BY id`, admin)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		var u User
		var id int64
		var age sql.NullInt64
		if err := rows.Scan(&id, &u.FirstName, &u.LastName, &age, &u.Admin); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.ID = &id
		if age.Valid {
			years := int(age.Int64)
			u.Age = &years
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
