package request

import (
	"bytes"
	"encoding/json"
)

// ID is a numeric identifier that JSON clients may send as a number or a string.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// UserRequest is the admin create form and the base of every user form.
type UserRequest struct {
	UserID    ID       `form:"id" json:"id" copier:"-" validate:"omitempty,numeric"`
	FirstName string   `form:"firstName" json:"firstName" validate:"required,min=2,max=30"`
	LastName  string   `form:"lastName" json:"lastName" validate:"required,min=2,max=30"`
	Email     string   `form:"email" json:"email" validate:"required"`
	Password  string   `form:"password" json:"password" validate:"required,min=6,max=100"`
	Gender    string   `form:"gender" json:"gender" validate:"omitempty,oneof=MALE FEMALE PREFER_NOT_TO_SAY"`
	NameRole  []string `form:"-" json:"nameRole" copier:"-"`
}

// UpdateUserRequest is used by the edit forms. An empty password keeps the current one.
type UpdateUserRequest struct {
	UserID    ID       `form:"id" json:"id" copier:"-" validate:"required,numeric"`
	FirstName string   `form:"firstName" json:"firstName" validate:"required,min=2,max=30"`
	LastName  string   `form:"lastName" json:"lastName" validate:"required,min=2,max=30"`
	Email     string   `form:"email" json:"email" validate:"required"`
	Password  string   `form:"password" json:"password" validate:"omitempty,min=6,max=100"`
	Gender    string   `form:"gender" json:"gender" validate:"omitempty,oneof=MALE FEMALE PREFER_NOT_TO_SAY"`
	NameRole  []string `form:"-" json:"nameRole" copier:"-"`
}
