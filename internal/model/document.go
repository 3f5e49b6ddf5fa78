package model

import "time"

// Document: бинарный документ (квитанция, договор).
// Содержимое лежит либо в Data, либо в объектном хранилище под StorageKey.
type Document struct {
	ID          string `gorm:"primaryKey;type:uuid"`
	FileName    string `gorm:"not null"`
	ContentType string `gorm:"not null"`
	Size        int64  `gorm:"not null"`

	Data       []byte
	StorageKey string

	CreatedAt time.Time `gorm:"autoCreateTime"`
}
