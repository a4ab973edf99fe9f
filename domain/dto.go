package domain

// CreatePostDTO carries the input of the create post use-case.
type CreatePostDTO struct {
	AccountID int64  `json:"accountId"`
	Title     string `json:"title"`
	Body      string `json:"body"`
}

// UpdatePostDTO patches a post. Nil fields are left untouched.
type UpdatePostDTO struct {
	ID    int64   `json:"id"`
	Title *string `json:"title,omitempty"`
	Body  *string `json:"body,omitempty"`
}

// Apply returns a copy of p with the patch applied.
func (d UpdatePostDTO) Apply(p Post) Post {
	if d.Title != nil {
		p.Title = *d.Title
	}
	if d.Body != nil {
		p.Body = *d.Body
	}
	return p
}

// CreateUserDTO carries the input of the create user use-case.
type CreateUserDTO struct {
	AccountID int64  `json:"accountId"`
	Name      string `json:"name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
}

// UpdateUserDTO patches a user. Nil fields are left untouched.
type UpdateUserDTO struct {
	ID       int64   `json:"id"`
	Name     *string `json:"name,omitempty"`
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
}

// Apply returns a copy of u with the patch applied.
func (d UpdateUserDTO) Apply(u User) User {
	if d.Name != nil {
		u.Name = *d.Name
	}
	if d.Username != nil {
		u.Username = *d.Username
	}
	if d.Email != nil {
		u.Email = *d.Email
	}
	return u
}

// CreateAccountDTO carries the input of the create account use-case.
type CreateAccountDTO struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateAccountDTO patches an account. Nil fields are left untouched.
type UpdateAccountDTO struct {
	ID    int64   `json:"id"`
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

// Apply returns a copy of a with the patch applied.
func (d UpdateAccountDTO) Apply(a Account) Account {
	if d.Name != nil {
		a.Name = *d.Name
	}
	if d.Email != nil {
		a.Email = *d.Email
	}
	return a
}
