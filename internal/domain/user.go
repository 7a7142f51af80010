package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID             string          `gorm:"type:uuid;primaryKey" json:"id"`
	Email          string          `gorm:"size:255;uniqueIndex;not null" json:"email"`
	FirstName      string          `gorm:"size:30;not null" json:"firstName"`
	LastName       string          `gorm:"size:30;not null" json:"lastName"`
	Address        string          `gorm:"type:text" json:"address"`
	UserPreference *UserPreference `gorm:"constraint:OnDelete:CASCADE" json:"userPreference,omitempty"`
	SavedProducts  []Product       `gorm:"many2many:user_saved_products;constraint:OnDelete:CASCADE" json:"savedProducts,omitempty"`
	Orders         []Order         `gorm:"constraint:OnDelete:CASCADE" json:"orders,omitempty"`
	CreatedAt      time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// TableName Specify table name
func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// UserPreference one-to-one settings of a user
type UserPreference struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string    `gorm:"type:uuid;uniqueIndex;not null" json:"userId"`
	ReceiveEmail bool      `gorm:"not null;default:false" json:"receiveEmail"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName Specify table name
func (UserPreference) TableName() string {
	return "user_preferences"
}

func (p *UserPreference) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
