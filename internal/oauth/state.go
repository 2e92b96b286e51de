// Package oauth provides the OAuth state parameter encoding used by the
// account linking flow.
package oauth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Linking actions carried in the state parameter.
const (
	ActionLink  = "link"
	ActionMerge = "merge"
)

// State is the payload of the OAuth state parameter. The nonce is unique
// per flow and keys the idempotency guard's lock and result records.
type State struct {
	UserID string `json:"userId"`
	Action string `json:"action"`
	Nonce  string `json:"nonce"`
}

// NewState builds a State with a fresh nonce.
func NewState(userID, action string) State {
	return State{
		UserID: userID,
		Action: action,
		Nonce:  uuid.NewString(),
	}
}

// Encode serializes the state to a URL-safe string.
func (s State) Encode() string {
	data, _ := json.Marshal(s)
	return base64.RawURLEncoding.EncodeToString(data)
}

// ParseState decodes a state parameter.
func ParseState(encoded string) (State, error) {
	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return State{}, fmt.Errorf("failed to decode state: %w", err)
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("failed to parse state: %w", err)
	}
	if state.UserID == "" || state.Nonce == "" {
		return State{}, fmt.Errorf("state is missing required fields")
	}
	return state, nil
}
