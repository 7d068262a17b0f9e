package response

import (
	"user-admin/internal/data/entity"
)

type RoleResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type UserResponse struct {
	ID          int64    `json:"id"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	Email       string   `json:"email"`
	Gender      string   `json:"gender"`
	GenderLabel string   `json:"genderLabel"`
	Roles       []string `json:"roles"`
}

// HasRole is used by the edit views to pre-check role boxes.
func (u UserResponse) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// Helper converters
func UserToResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Email:       user.Email,
		Gender:      string(user.Gender),
		GenderLabel: user.Gender.DisplayName(),
		Roles:       entity.RoleNames(user.Roles),
	}
}

func UsersToResponse(users []*entity.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, UserToResponse(user))
	}
	return out
}

func RolesToResponse(roles []*entity.Role) []RoleResponse {
	out := make([]RoleResponse, 0, len(roles))
	for _, role := range roles {
		out = append(out, RoleResponse{ID: role.ID, Name: role.Name})
	}
	return out
}
