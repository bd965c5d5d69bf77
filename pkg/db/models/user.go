package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Max3uc3Planz/lcdt-back/pkg/enums"
)

// User represents the canonical identity entity. Deleted marks a
// soft-delete: the row survives so order history keeps its references.
type User struct {
	ID              uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email           *string        `gorm:"column:email;uniqueIndex"`
	Username        *string        `gorm:"column:username;uniqueIndex"`
	PasswordHash    string         `gorm:"column:password_hash;not null"`
	FirstName       string         `gorm:"column:first_name;not null"`
	LastName        string         `gorm:"column:last_name;not null"`
	Role            enums.UserRole `gorm:"column:role;not null;default:user"`
	Deleted         bool           `gorm:"column:deleted;not null;default:false"`
	SponsorshipCode *string        `gorm:"column:sponsorship_code;uniqueIndex"`
	SponsorCode     *string        `gorm:"column:sponsor_code"`

	Telephones           []Telephone           `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Addresses            []Address             `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	SponsorshipDiscounts []SponsorshipDiscount `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Orders               []Order               `gorm:"foreignKey:UserID"`

	LastLoginAt *time.Time `gorm:"column:last_login_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// Address is a delivery destination owned by a user. At most one address
// per user is main; deleting the main address promotes the oldest survivor.
type Address struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Label     string    `gorm:"column:label;not null"`
	Address1  string    `gorm:"column:address1;not null"`
	Address2  *string   `gorm:"column:address2"`
	City      string    `gorm:"column:city;not null"`
	Zipcode   string    `gorm:"column:zipcode;not null"`
	Lat       float64   `gorm:"column:lat;not null"`
	Lng       float64   `gorm:"column:lng;not null"`
	IsMain    bool      `gorm:"column:is_main;not null;default:false"`
	PlaceID   string    `gorm:"column:place_id;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Telephone is a contact number owned by a user, same main-flag rules as
// Address.
type Telephone struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Phone     string    `gorm:"column:phone;not null"`
	IsMain    bool      `gorm:"column:is_main;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
