package users

type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"-"`
	IsStaff  bool   `json:"is_staff"`
	IsActive bool   `json:"is_active"`
}

// UpdateFields carries a partial update; nil means "leave unchanged".
type UpdateFields struct {
	Name     *string
	Email    *string
	Password *string
	IsStaff  *bool
	IsActive *bool
}
