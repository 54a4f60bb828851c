package model

type User struct {
	ID                 string `json:"id"`
	FullName           string `json:"full_name"`
	Email              string `json:"email"`
	PasswordHash       string `json:"-"`
	Country            string `json:"country"`
	DeviceToken        string `json:"-"`
	IsAdmin            bool   `json:"is_admin"`
	EmailVerified      bool   `json:"email_verified"`
	RefreshToken       string `json:"-"`
	RefreshTokenExpiry int64  `json:"-"`
	Ctime              int64  `json:"ctime"`
	Mtime              int64  `json:"mtime"`
}
