package model

import "time"

// SystemActor is used for operations not triggered by a signed-in caller (seeding, internal jobs).
var SystemActor = Actor{ID: "system", Name: "System"}

// Actor identifies who is performing a command. It is passed explicitly on every mutation.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AuditInfo carries creation and modification metadata.
// It is composed into every aggregate rather than inherited from a shared base.
type AuditInfo struct {
	CreatedBy      string    `json:"created_by"`
	CreatedByName  string    `json:"created_by_name"`
	CreatedAtUTC   time.Time `json:"created_at_utc"`
	ModifiedBy     string    `json:"modified_by"`
	ModifiedByName string    `json:"modified_by_name"`
	ModifiedAtUTC  time.Time `json:"modified_at_utc"`
}

// NewAuditInfo stamps both the created and modified fields with the same actor and instant.
func NewAuditInfo(actor Actor, now time.Time) AuditInfo {
	ts := Timestamp(now)
	return AuditInfo{
		CreatedBy:      actor.ID,
		CreatedByName:  actor.Name,
		CreatedAtUTC:   ts,
		ModifiedBy:     actor.ID,
		ModifiedByName: actor.Name,
		ModifiedAtUTC:  ts,
	}
}

// SetModified records a modification by actor at ts.
func (a *AuditInfo) SetModified(actor Actor, ts time.Time) {
	a.ModifiedBy = actor.ID
	a.ModifiedByName = actor.Name
	a.ModifiedAtUTC = ts
}

// Timestamp normalizes t to UTC with microsecond precision, the resolution PostgreSQL keeps.
// Concurrency tokens compare by equality, so every stored timestamp goes through here.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// NextModified returns a timestamp strictly after prev, preferring now when it is later.
func NextModified(prev, now time.Time) time.Time {
	ts := Timestamp(now)
	if !ts.After(prev) {
		ts = Timestamp(prev).Add(time.Microsecond)
	}
	return ts
}
