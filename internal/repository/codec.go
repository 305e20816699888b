package repository

import (
	"encoding/json"
	"fmt"

	"github.com/ecostep/ecostep/internal/model"
)

// EncodeUsers serializes the collection into the users document.
func EncodeUsers(users []model.User) ([]byte, error) {
	if users == nil {
		users = []model.User{}
	}
	b, err := json.Marshal(users)
	if err != nil {
		return nil, fmt.Errorf("encode users: %w", err)
	}
	return b, nil
}

// DecodeUsers parses the users document. Empty input is an empty collection.
func DecodeUsers(b []byte) ([]model.User, error) {
	if len(b) == 0 {
		return []model.User{}, nil
	}
	var users []model.User
	if err := json.Unmarshal(b, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}
