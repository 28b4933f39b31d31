package model

import "time"

type User struct {
	UUIDBase
	Username  string    `gorm:"size:100;unique;not null" json:"username"`
	Email     string    `gorm:"size:100;unique;not null" json:"email"`
	Password  string    `gorm:"size:100;not null" json:"-"`
	FullName  string    `gorm:"size:255" json:"fullName"`
	RoleID    string    `gorm:"size:50;index;default:'trainee'" json:"roleId"`
	Disabled  bool      `gorm:"default:false" json:"disabled"`
	LastLogin time.Time `json:"lastLogin"`
}

func (User) TableName() string {
	return "users"
}
