package models

import "fmt"

type ID string

// User is immutable once built; adapters pass it by value.
type User struct {
	ID   ID     `gorm:"primaryKey;size:64"`
	Name string `gorm:"size:255;not null"`
}

func NewUser(id ID, name string) *User {
	return &User{
		ID:   id,
		Name: name,
	}
}

func (User) TableName() string {
	return "users"
}

func (u User) String() string {
	return fmt.Sprintf("User{id='%s', name='%s'}", u.ID, u.Name)
}
