// Package model defines database models
package model

import "time"

type User struct {
	ID string `gorm:"primaryKey" json:"id"`

	// External auth provider ID. The frontend authenticates against the
	// provider and hands us the uid
	UID   string `gorm:"uniqueIndex;not null" json:"uid"`
	Email string `gorm:"uniqueIndex;not null" json:"email"`
	Name  string `gorm:"not null" json:"name"`

	Phone     string `json:"phone"`
	BirthDate string `json:"birthDate"`
	Address   string `json:"address"`
	PostCode  string `json:"postCode"`
	City      string `json:"city"`

	Role   string `gorm:"default:student" json:"role"`
	Status string `gorm:"default:active" json:"status"`

	PhotoURL string `json:"photoURL"`
	// S3 object key behind PhotoURL, kept so the object can be removed
	// when the photo is replaced or the account deleted
	PhotoKey string `json:"-"`

	DisplayName string `json:"displayName"`
	Bio         string `json:"bio"`
	Education   string `json:"education"`
	Occupation  string `json:"occupation"`

	SocialLinks   JSONMap `gorm:"type:text" json:"socialLinks"`
	Notifications JSONMap `gorm:"type:text" json:"notifications"`

	EmailVerified bool `gorm:"default:false" json:"emailVerified"`
	PhoneVerified bool `gorm:"default:false" json:"phoneVerified"`

	LastLogin  time.Time `json:"lastLogin"`
	LastActive time.Time `json:"lastActive"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// DefaultSocialLinks mirrors the profile object the frontend expects on a
// fresh account
func DefaultSocialLinks() JSONMap {
	return JSONMap{
		"facebook":  "",
		"twitter":   "",
		"linkedin":  "",
		"github":    "",
		"portfolio": "",
	}
}

func DefaultNotifications() JSONMap {
	return JSONMap{
		"email": true,
		"sms":   false,
		"push":  true,
	}
}
