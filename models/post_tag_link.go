package models

// PostTagLink associates a post with a tag. It has no identity of its own.
type PostTagLink struct {
	PostID uint `json:"postId" db:"post_id" gorm:"primaryKey;autoIncrement:false;index:idx_post_tag_link_post_id"`
	TagID  uint `json:"tagId" db:"tag_id" gorm:"primaryKey;autoIncrement:false;index:idx_post_tag_link_tag_id"`
}
