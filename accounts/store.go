//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=../mocks/mock_user_store.go -package=mocks
package accounts

import (
	"encoding/json"
	goerrors "errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"interchat/errors"
)

// User is the stored account record. AvatarURL may be empty here; the
// gateway applies the display defaults when it builds identities.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	AvatarURL    string    `json:"avatar_url"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

type IUserStore interface {
	CreateUser(email, username, avatarURL, hashedPassword string) (User, error)
	GetUserByEmail(email string) (User, error)
	GetUserByID(id string) (User, error)
}

// UserStore persists accounts in BadgerDB. Two keyspaces are kept in
// step inside one transaction: "user:email:<email>" holds the record,
// "user:id:<id>" maps the generated id back to the email for the
// authorize lookup.
type UserStore struct {
	db *badger.DB
}

func NewUserStore(db *badger.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) CreateUser(email, username, avatarURL, hashedPassword string) (User, error) {
	user := User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		AvatarURL:    avatarURL,
		PasswordHash: hashedPassword,
		CreatedAt:    time.Now().UTC(),
	}

	data, err := json.Marshal(user)
	if err != nil {
		return User{}, fmt.Errorf("marshal failed: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		emailKey := []byte("user:email:" + email)
		if _, err := txn.Get(emailKey); err == nil {
			return errors.ErrUserAlreadyExists
		}
		if err := txn.Set(emailKey, data); err != nil {
			return err
		}
		return txn.Set([]byte("user:id:"+user.ID), []byte(email))
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *UserStore) GetUserByEmail(email string) (User, error) {
	var user User
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("user:email:" + email))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		})
	})
	if goerrors.Is(err, badger.ErrKeyNotFound) {
		return User{}, errors.ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *UserStore) GetUserByID(id string) (User, error) {
	var email string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("user:id:" + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			email = string(val)
			return nil
		})
	})
	if goerrors.Is(err, badger.ErrKeyNotFound) {
		return User{}, errors.ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return s.GetUserByEmail(email)
}
