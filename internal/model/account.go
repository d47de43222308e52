package model

// Account is a customer account. Email and Password hold ciphertext produced by the encryption boundary.
type Account struct {
	AccountID       string       `json:"account_id"`
	FullName        string       `json:"full_name"`
	Email           string       `json:"email"`
	Password        string       `json:"password,omitempty"`
	ProfilePictures []Attachment `json:"profile_pictures"`
	AuditInfo
}

func (a *Account) AggregateID() string { return a.AccountID }
func (a *Account) Audit() *AuditInfo   { return &a.AuditInfo }

// UpdateDetails copies the mutable fields from other.
func (a *Account) UpdateDetails(other Account) {
	a.FullName = other.FullName
	a.Email = other.Email
	a.ProfilePictures = other.ProfilePictures
}
