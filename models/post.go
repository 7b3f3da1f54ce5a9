package models

import (
	"strings"
	"time"
	"unicode"
)

// Post represents a blog post. A post with Published == false is a draft.
type Post struct {
	ID         uint       `json:"id" db:"id" gorm:"primaryKey;autoIncrement"`
	Title      string     `json:"title" db:"title" gorm:"type:text;not null"`
	Contents   string     `json:"contents" db:"contents" gorm:"type:text;not null"`
	Slug       string     `json:"slug" db:"slug" gorm:"type:text;not null;uniqueIndex:idx_post_slug"`
	AuthorID   uint       `json:"authorId" db:"author_id" gorm:"not null;index:idx_post_author_id"`
	Created    time.Time  `json:"created" db:"created" gorm:"not null;index:idx_post_created"`
	LastEdited *time.Time `json:"lastEdited,omitempty" db:"last_edited"`
	Published  bool       `json:"published" db:"published" gorm:"not null;default:false"`
}

// Updated returns the last edit time if the post has been edited, otherwise its creation time.
func (p Post) Updated() time.Time {
	if p.LastEdited != nil {
		return *p.LastEdited
	}
	return p.Created
}

// Clone returns a copy that shares no pointers with p.
func (p Post) Clone() Post {
	if p.LastEdited != nil {
		edited := *p.LastEdited
		p.LastEdited = &edited
	}
	return p
}

// Slugify turns a title into a lowercase, hyphen separated URL segment.
func Slugify(title string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingHyphen && b.Len() > 0 {
				b.WriteRune('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		default:
			pendingHyphen = true
		}
	}
	return b.String()
}
