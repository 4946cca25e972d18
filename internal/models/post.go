package models

type Post struct {
	BaseModel

	Title    string `gorm:"size:200;not null"`
	Content  string `gorm:"type:text;not null"`
	AuthorID uint   `gorm:"not null;index"`

	// Relationships
	Author   User      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Likes    []Like    `gorm:"foreignKey:PostID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Comments []Comment `gorm:"foreignKey:PostID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// Like is unique per (post, user); it is toggled rather than counted.
type Like struct {
	BaseModel

	PostID uint `gorm:"not null;uniqueIndex:idx_like_post_user"`
	UserID uint `gorm:"not null;uniqueIndex:idx_like_post_user"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

type Comment struct {
	BaseModel

	Content  string `gorm:"type:text;not null"`
	PostID   uint   `gorm:"not null;index"`
	AuthorID uint   `gorm:"not null;index"`

	// Relationships
	Author User `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
