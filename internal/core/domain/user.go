package domain

import "time"

// UserType distinguishes administrators from regular marketplace members.
type UserType string

const (
	UserTypeAdmin   UserType = "admin"
	UserTypeRegular UserType = "regular"
)

// User models a registered marketplace member.
type User struct {
	UserID       string    `json:"userId"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	UserType     UserType  `json:"userType"`
	RealName     string    `json:"realName"`
	Phone        string    `json:"phone"`
	Intro        string    `json:"intro"`
	RegisterTime time.Time `json:"registerTime"`
	UpdateTime   time.Time `json:"updateTime"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.UserType == UserTypeAdmin
}

// Profile returns a copy of the user without credential material, suitable
// for session storage and API responses.
func (u *User) Profile() *User {
	if u == nil {
		return nil
	}
	p := *u
	p.PasswordHash = ""
	return &p
}

// UserPatch enumerates the profile fields a user may edit. Nil fields are
// left untouched.
type UserPatch struct {
	RealName *string
	Phone    *string
	Intro    *string
}

// Empty reports whether the patch carries no changes.
func (p UserPatch) Empty() bool {
	return p.RealName == nil && p.Phone == nil && p.Intro == nil
}
