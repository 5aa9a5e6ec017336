package model

// User is a till account from users.json.
type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
	Role         string `json:"role"`
}

// DefaultAccount is a plain-text login installed when no users file exists.
type DefaultAccount struct {
	Username string
	Password string
	Role     string
}
