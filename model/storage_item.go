package model

import "time"

// StorageItem is one key/value row of the persisted storage area.
type StorageItem struct {
	Key       string    `json:"key" gorm:"primaryKey;type:text;not null"`
	Value     string    `json:"value" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
}

func (StorageItem) TableName() string {
	return "storage_items"
}
