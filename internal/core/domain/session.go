package domain

// Session is the authentication context of one client.
// IsLogin is true iff Token is non-empty.
type Session struct {
	Token    string `json:"token,omitempty"`
	UserInfo *User  `json:"userInfo,omitempty"`
	IsLogin  bool   `json:"isLogin"`
}

// NewSession builds a session whose login flag follows the token.
func NewSession(token string, user *User) Session {
	return Session{Token: token, UserInfo: user, IsLogin: token != ""}
}

// UserID returns the id of the logged-in user, or "" when anonymous.
func (s Session) UserID() string {
	if !s.IsLogin || s.UserInfo == nil {
		return ""
	}
	return s.UserInfo.UserID
}

// IsAdmin reports whether the session belongs to an admin.
func (s Session) IsAdmin() bool {
	return s.IsLogin && s.UserInfo.IsAdmin()
}
