package models

import (
	"time"

	"gorm.io/datatypes"
)

// Delivery records one outbound webhook attempt for a task event.
type Delivery struct {
	BaseModel

	TaskID        string `gorm:"size:36;index"`
	WorkspaceName string `gorm:"index"`
	EventType     string `gorm:"not null"`
	Status        string `gorm:"not null"` // "sent", "failed"
	StatusCode    int
	Error         string
	Payload       datatypes.JSON
	SentAt        time.Time `gorm:"not null"`
}
