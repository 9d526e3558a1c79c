package models

import "time"

// Workspace is the claim a founding Admin holds on a workspace name. Key is
// the primary key, so two Admins can never own names that differ only in case.
type Workspace struct {
	Key       string `gorm:"primaryKey;size:255"`
	Name      string `gorm:"not null"`
	OwnerID   string `gorm:"not null;size:36;index"`
	CreatedAt time.Time

	// Relationships
	Owner User `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
