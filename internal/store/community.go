package store

import (
	"context"
	"errors"

	"github.com/monocle-dev/carbontrack/internal/models"
	"gorm.io/gorm"
)

func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	return s.db.WithContext(ctx).Create(post).Error
}

// ListPosts returns every post with its author, in creation order.
func (s *Store) ListPosts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post

	err := s.db.WithContext(ctx).Preload("Author").Order("id ASC").Find(&posts).Error

	return posts, err
}

func (s *Store) PostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post

	if err := s.db.WithContext(ctx).Preload("Author").First(&post, id).Error; err != nil {
		return nil, notFound(err)
	}

	return &post, nil
}

// DeletePost removes the post together with its likes and comments in one
// transaction.
func (s *Store) DeletePost(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, id).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})

	if err != nil {
		return nil, err
	}

	return &post, nil
}

func (s *Store) CreateComment(ctx context.Context, comment *models.Comment) error {
	return s.db.WithContext(ctx).Create(comment).Error
}

func (s *Store) CommentByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment

	if err := s.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, notFound(err)
	}

	return &comment, nil
}

// CommentsForPost returns the post's comments with their authors, oldest
// first.
func (s *Store) CommentsForPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment

	err := s.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("id ASC").
		Find(&comments).Error

	return comments, err
}

func (s *Store) DeleteComment(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Comment{}, id)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// ToggleLike creates the user's like on the post when absent and deletes it
// when present. It reports whether the user likes the post afterwards.
func (s *Store) ToggleLike(ctx context.Context, postID, userID uint) (bool, error) {
	liked := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Like

		err := tx.Where("post_id = ? AND user_id = ?", postID, userID).First(&existing).Error

		if err == nil {
			return tx.Delete(&existing).Error
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		err = tx.Create(&models.Like{PostID: postID, UserID: userID}).Error

		// A concurrent toggle already inserted the row.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			liked = true
			return nil
		}

		if err == nil {
			liked = true
		}

		return err
	})

	return liked, err
}

func (s *Store) CountLikes(ctx context.Context, postID uint) (int64, error) {
	var count int64

	err := s.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error

	return count, err
}

func (s *Store) HasLiked(ctx context.Context, postID, userID uint) (bool, error) {
	var count int64

	err := s.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error

	return count > 0, err
}
