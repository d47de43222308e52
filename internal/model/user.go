package model

// User is a sign-in identity. Email and Password hold ciphertext.
type User struct {
	UserID          string       `json:"user_id"`
	UserName        string       `json:"user_name"`
	FullName        string       `json:"full_name"`
	Email           string       `json:"email"`
	Password        string       `json:"password,omitempty"`
	ProfilePictures []Attachment `json:"profile_pictures"`
	AuditInfo
}

func (u *User) AggregateID() string { return u.UserID }
func (u *User) Audit() *AuditInfo   { return &u.AuditInfo }

// UpdateDetails copies the mutable fields from other.
func (u *User) UpdateDetails(other User) {
	u.UserName = other.UserName
	u.FullName = other.FullName
	u.Email = other.Email
	u.ProfilePictures = other.ProfilePictures
}
