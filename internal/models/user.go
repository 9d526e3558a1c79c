package models

type User struct {
	BaseModel

	Name          string `json:"name"`
	Email         string `gorm:"uniqueIndex;not null;size:320" json:"email"`
	PasswordHash  string `gorm:"not null" json:"-"`
	Role          string `gorm:"not null;size:16" json:"role"`
	JobTitle      string `json:"jobTitle"`
	WorkspaceName string `gorm:"not null" json:"workspaceName"`
	WorkspaceKey  string `gorm:"not null;index" json:"-"` // lowercase WorkspaceName
}
