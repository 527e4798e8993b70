package domain

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Password policy constants.
const (
	// MinPasswordLength is the minimum number of characters for a password.
	MinPasswordLength = 6

	// forbiddenPasswordSubstring may not appear anywhere in a password,
	// compared case-insensitively.
	forbiddenPasswordSubstring = "password"
)

// User represents a registered account. The plaintext Password field is
// transient: it is populated only while a signup or profile update is in
// flight and must be hashed into HashedPassword before the user is persisted.
type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Age            int       `json:"age"`
	Email          string    `json:"email"`
	Password       string    `json:"-"` // Plaintext, pre-hash only. Never persisted.
	HashedPassword string    `json:"-"` // Never expose the hash in JSON
	Avatar         []byte    `json:"-"` // Normalized PNG bytes, loaded on demand
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a User from signup input. Inputs are normalized (name,
// email and password trimmed, email lowercased) before validation.
//
// The caller is responsible for hashing Password into HashedPassword before
// storing the user.
func NewUser(name, email, password string, age int) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Name:      name,
		Age:       age,
		Email:     email,
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}
	user.Normalize()

	if err := user.Validate(); err != nil {
		return nil, err
	}
	return user, nil
}

// Normalize applies the canonical form to user-supplied fields: name, email
// and password are trimmed, email is lowercased.
func (u *User) Normalize() {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Password = strings.TrimSpace(u.Password)
}

// Validate checks all user fields and returns a ValidationError listing
// every failing field, or nil when the user is valid.
//
// The plaintext password policy is only checked when Password is set; an
// already-persisted user carries only HashedPassword.
func (u *User) Validate() error {
	var fields []FieldError

	if u.ID == uuid.Nil {
		fields = append(fields, FieldError{Field: "id", Message: "is required"})
	}
	if u.Name == "" {
		fields = append(fields, FieldError{Field: "name", Message: "is required"})
	}
	if u.Age < 0 {
		fields = append(fields, FieldError{Field: "age", Message: "must not be negative"})
	}

	switch {
	case u.Email == "":
		fields = append(fields, FieldError{Field: "email", Message: "is required"})
	case !validEmail(u.Email):
		fields = append(fields, FieldError{Field: "email", Message: "is invalid"})
	}

	if u.Password != "" {
		if pe := validatePassword(u.Password); pe != nil {
			fields = append(fields, *pe)
		}
	} else if u.HashedPassword == "" {
		fields = append(fields, FieldError{Field: "password", Message: "is required"})
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// validEmail reports whether the string is a syntactically valid address.
// mail.ParseAddress accepts display names ("A <a@b.com>"), so the parsed
// address must round-trip to the input exactly.
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// validatePassword checks the plaintext password policy: minimum length and
// no occurrence of the forbidden substring, case-insensitively.
func validatePassword(password string) *FieldError {
	if len(password) < MinPasswordLength {
		return &FieldError{Field: "password", Message: "must be at least 6 characters long"}
	}
	if strings.Contains(strings.ToLower(password), forbiddenPasswordSubstring) {
		return &FieldError{Field: "password", Message: `cannot contain the word "password"`}
	}
	return nil
}
