package store

// Record is implemented by every persistable entity. The store uses it to
// assign identifiers and maintain timestamps; embedding Meta satisfies it.
type Record interface {
	GetID() string
	SetID(id string)
	GetCreatedAt() string
	SetCreatedAt(ts string)
	SetUpdatedAt(ts string)
}

// Meta carries the identity and lifecycle fields shared by all records.
// CreatedAt is set once at creation; UpdatedAt is refreshed on every write.
type Meta struct {
	ID        string `json:"id"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func (m *Meta) GetID() string          { return m.ID }
func (m *Meta) SetID(id string)        { m.ID = id }
func (m *Meta) GetCreatedAt() string   { return m.CreatedAt }
func (m *Meta) SetCreatedAt(ts string) { m.CreatedAt = ts }
func (m *Meta) SetUpdatedAt(ts string) { m.UpdatedAt = ts }
