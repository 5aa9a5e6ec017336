package storage

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/ghanu-pos/api/internal/enum"
	"github.com/ghanu-pos/api/internal/model"
	"golang.org/x/crypto/bcrypt"
)

var ErrUserNotFound = errors.New("user not found")

// DefaultAccounts are used when users.json is missing.
var DefaultAccounts = []model.DefaultAccount{
	{Username: "admin", Password: "1", Role: enum.UserRoleAdmin},
	{Username: "1", Password: "1", Role: enum.UserRoleCashier},
	{Username: "2", Password: "2", Role: enum.UserRoleCashier},
}

// UserFile is the read-only credential table.
type UserFile struct {
	mu    sync.RWMutex
	users map[string]model.User
}

// OpenUserFile loads users.json, falling back to DefaultAccounts.
func OpenUserFile(path string) (*UserFile, error) {
	var list []model.User
	found, err := readJSON(path, &list)
	if err != nil {
		return nil, err
	}
	if !found {
		log.Printf("users: %s not found, using default accounts", path)
		list, err = HashAccounts(DefaultAccounts)
		if err != nil {
			return nil, err
		}
	}

	f := &UserFile{users: make(map[string]model.User, len(list))}
	for _, u := range list {
		f.users[u.Username] = u
	}
	return f, nil
}

// HashAccounts bcrypt-hashes plain accounts into storable users.
func HashAccounts(accounts []model.DefaultAccount) ([]model.User, error) {
	out := make([]model.User, 0, len(accounts))
	for _, a := range accounts {
		h, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", a.Username, err)
		}
		out = append(out, model.User{Username: a.Username, PasswordHash: string(h), Role: a.Role})
	}
	return out, nil
}

// SaveUsers writes a users.json file.
func SaveUsers(path string, users []model.User) error {
	return writeJSON(path, users)
}

// GetUser looks up an account by username.
func (f *UserFile) GetUser(username string) (model.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	u, ok := f.users[username]
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	return u, nil
}
