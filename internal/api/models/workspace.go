package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Document is a raw workspace document. JSON documents are stored as jsonb;
// HCL sources are kept in StoredWorkspace.Source instead.
type Document []byte

// Scan implements sql.Scanner interface
func (d *Document) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		*d = append(Document(nil), v...)
		return nil
	case string:
		*d = Document(v)
		return nil
	default:
		return fmt.Errorf("cannot scan type %T into Document", value)
	}
}

// Value implements driver.Valuer interface
func (d Document) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return []byte(d), nil
}

// MarshalJSON implements json.Marshaler - returns raw JSON
func (d Document) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	return d, nil
}

// UnmarshalJSON keeps the raw bytes.
func (d *Document) UnmarshalJSON(data []byte) error {
	*d = append((*d)[:0], data...)
	return nil
}

type StoredWorkspace struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"not null"`
	Format    string    `gorm:"not null"`
	Document  Document  `gorm:"type:jsonb"`
	Source    string    `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Content returns the document bytes in the stored format.
func (w StoredWorkspace) Content() []byte {
	if w.Format == "hcl" {
		return []byte(w.Source)
	}
	return w.Document
}
