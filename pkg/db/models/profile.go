package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile carries the per-user attributes the API needs beyond the JWT
// subject, most importantly the role group used for staff gating.
type Profile struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email     string    `gorm:"column:email;not null;uniqueIndex"`
	FullName  *string   `gorm:"column:full_name"`
	Group     string    `gorm:"column:group_name;not null;default:'USER'"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the id client-side so the sqlite dev path works
// without gen_random_uuid().
func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Role groups stored in profiles.group_name.
const (
	GroupAdmin = "ADMIN"
	GroupUser  = "USER"
)

// IsStaff reports whether the profile may drive order status changes.
func (p Profile) IsStaff() bool {
	return p.Group == GroupAdmin
}
