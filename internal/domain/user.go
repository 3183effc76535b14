package domain

// User is the authenticated storefront user as supplied by the user API.
// Name/Surname take precedence over FirstName/LastName when both are set;
// normalization lives in the session package.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	Surname   string `json:"surname,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Role      string `json:"role,omitempty"`
}

// FullName composes the display name used to lock the checkout name
// field, falling back to the email local part when no name is present.
func (u User) FullName() string {
	primary := u.Name
	if primary == "" {
		primary = u.FirstName
	}
	secondary := u.Surname
	if secondary == "" {
		secondary = u.LastName
	}
	composed := primary
	if secondary != "" {
		if composed != "" {
			composed += " "
		}
		composed += secondary
	}
	if composed != "" {
		return composed
	}
	for i, r := range u.Email {
		if r == '@' {
			return u.Email[:i]
		}
	}
	return ""
}
