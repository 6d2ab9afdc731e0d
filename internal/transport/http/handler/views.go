package handler

import (
	"time"

	"staffhub/internal/domain"
)

type AdminView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func adminView(a *domain.Admin) AdminView {
	return AdminView{ID: a.ID, Name: a.Name, Email: a.Email, CreatedAt: a.CreatedAt}
}

// UserView 对外档案视图，永不带密码哈希
type UserView struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	DOB            time.Time `json:"dob"`
	DOJ            time.Time `json:"doj"`
	Type           string    `json:"type"`
	UserManager    string    `json:"userManager"`
	Project        []string  `json:"project"`
	Address        string    `json:"address"`
	PhoneNumber    string    `json:"phoneNumber"`
	ProfilePicture string    `json:"profilePicture"`
	IsDeleted      bool      `json:"isDeleted"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func userView(u *domain.User) UserView {
	return UserView{
		ID:             u.ID,
		UserID:         u.UserID,
		Name:           u.Name,
		Email:          u.Email,
		DOB:            u.DOB,
		DOJ:            u.DOJ,
		Type:           u.Type,
		UserManager:    u.UserManager,
		Project:        u.Project,
		Address:        u.Address,
		PhoneNumber:    u.PhoneNumber,
		ProfilePicture: u.ProfilePicture,
		IsDeleted:      u.IsDeleted(),
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func userViews(us []domain.User) []UserView {
	out := make([]UserView, 0, len(us))
	for i := range us {
		out = append(out, userView(&us[i]))
	}
	return out
}
