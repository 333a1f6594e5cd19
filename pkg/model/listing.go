package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Listing that is being stored. HashID is the sreality hash_id and is the
// dedupe key; a listing is written once at ingestion and never updated.
type Listing struct {
	ID         uint      `gorm:"primary_key" json:"id"`
	HashID     int64     `gorm:"column:hash_id;unique_index:idx_listings_hash_id" json:"hash_id"`
	Name       string    `gorm:"type:varchar(255)" json:"name"`
	Price      int       `json:"price"`
	PriceUnit  string    `gorm:"type:varchar(100)" json:"price_unit"`
	Locality   string    `gorm:"type:varchar(255)" json:"locality"`
	SizeSQM    *int      `gorm:"column:size_sqm" json:"size_sqm"`
	RoomLayout *string   `gorm:"type:varchar(20)" json:"room_layout"`
	HasGarage  bool      `json:"has_garage"`
	Latitude   *float64  `json:"latitude"`
	Longitude  *float64  `json:"longitude"`
	Images     ImageList `gorm:"type:text" json:"images"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName keeps the table name compatible with the original schema.
func (Listing) TableName() string {
	return "listings"
}

// ImageList stores the ordered image URLs as a JSON text column.
type ImageList []string

// Value implements driver.Valuer.
func (l ImageList) Value() (driver.Value, error) {
	if l == nil {
		l = ImageList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *ImageList) Scan(src interface{}) error {
	if src == nil {
		*l = ImageList{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("cannot scan %T into ImageList", src)
	}
}
