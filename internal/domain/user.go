package domain

// Session is the payload returned by a successful login. Access is the
// bearer token sent on authenticated calls; Refresh is kept for the caller
// but never used by the core itself.
type Session struct {
	Refresh     string `json:"refresh"`
	Access      string `json:"access"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Mobile      string `json:"mobile"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"date_of_birth"`
}

type Profile struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"date_of_birth"`
}
