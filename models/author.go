package models

import "strings"

// Author represents a blog user who can own posts
type Author struct {
	ID                    uint    `json:"id" db:"id" gorm:"primaryKey;autoIncrement"`
	Name                  string  `json:"name" db:"name" gorm:"type:text;not null"`
	Username              string  `json:"username" db:"username" gorm:"type:text;not null;uniqueIndex:idx_author_username"`
	Password              string  `json:"-" db:"password" gorm:"type:text;not null"`
	ProfilePicture        *string `json:"profilePicture,omitempty" db:"profile_picture" gorm:"type:text"`
	TwitterHandle         *string `json:"twitterHandle,omitempty" db:"twitter_handle" gorm:"type:text"`
	Biography             *string `json:"biography,omitempty" db:"biography" gorm:"type:text"`
	Tagline               *string `json:"tagline,omitempty" db:"tagline" gorm:"type:text"`
	ResetPasswordRequired bool    `json:"resetPasswordRequired" db:"reset_password_required" gorm:"not null;default:false"`
}

// NormalizeUsername lower-cases a username. Usernames are stored and compared in this form.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Clone returns a copy that shares no pointers with a.
func (a Author) Clone() Author {
	a.ProfilePicture = cloneString(a.ProfilePicture)
	a.TwitterHandle = cloneString(a.TwitterHandle)
	a.Biography = cloneString(a.Biography)
	a.Tagline = cloneString(a.Tagline)
	return a
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
