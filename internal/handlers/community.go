package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/carbontrack/internal/logging"
	"github.com/monocle-dev/carbontrack/internal/models"
	"github.com/monocle-dev/carbontrack/internal/services"
	"github.com/monocle-dev/carbontrack/internal/store"
	"github.com/monocle-dev/carbontrack/internal/types"
	"github.com/monocle-dev/carbontrack/internal/utils"
	"github.com/sirupsen/logrus"
)

type CreatePostRequest struct {
	Title   string `form:"title" binding:"required,max=200"`
	Content string `form:"content" binding:"required"`
}

type PostSummary struct {
	Post  models.Post
	Likes int64
}

func (h *Handler) Community(ctx *gin.Context) {
	posts, err := h.store.ListPosts(ctx.Request.Context())

	if err != nil {
		h.serverError(ctx, err, "failed to list posts")
		return
	}

	summaries := make([]PostSummary, 0, len(posts))

	for _, post := range posts {
		likes, err := h.store.CountLikes(ctx.Request.Context(), post.ID)
		if err != nil {
			h.serverError(ctx, err, "failed to count likes")
			return
		}
		summaries = append(summaries, PostSummary{Post: post, Likes: likes})
	}

	h.render(ctx, http.StatusOK, "community.html", gin.H{"Posts": summaries})
}

func (h *Handler) CreatePost(ctx *gin.Context) {
	var body CreatePostRequest

	if err := ctx.ShouldBind(&body); err != nil || strings.TrimSpace(body.Title) == "" || strings.TrimSpace(body.Content) == "" {
		h.flashRedirect(ctx, "A post needs a title and some content.", "/community")
		return
	}

	post := models.Post{
		Title:    strings.TrimSpace(body.Title),
		Content:  strings.TrimSpace(body.Content),
		AuthorID: utils.GetSession(ctx).UserID,
	}

	if err := h.store.CreatePost(ctx.Request.Context(), &post); err != nil {
		logging.Log.WithError(err).Error("failed to create post")
		h.flashRedirect(ctx, types.FlashSomethingWrong, "/community")
		return
	}

	h.redirect(ctx, "/community")
}

func (h *Handler) ShowPost(ctx *gin.Context) {
	postID, err := utils.GetID(ctx, "id")

	if err != nil {
		h.notFound(ctx, types.FlashPostNotFound)
		return
	}

	post, err := h.store.PostByID(ctx.Request.Context(), postID)

	if errors.Is(err, store.ErrNotFound) {
		h.notFound(ctx, types.FlashPostNotFound)
		return
	}

	if err != nil {
		h.serverError(ctx, err, "failed to load post")
		return
	}

	comments, err := h.store.CommentsForPost(ctx.Request.Context(), post.ID)
	if err != nil {
		h.serverError(ctx, err, "failed to load comments")
		return
	}

	likes, err := h.store.CountLikes(ctx.Request.Context(), post.ID)
	if err != nil {
		h.serverError(ctx, err, "failed to count likes")
		return
	}

	liked, err := h.store.HasLiked(ctx.Request.Context(), post.ID, utils.GetSession(ctx).UserID)
	if err != nil {
		h.serverError(ctx, err, "failed to load like")
		return
	}

	h.render(ctx, http.StatusOK, "post.html", gin.H{
		"Post":         post,
		"Comments":     comments,
		"LikesCount":   likes,
		"UserHasLiked": liked,
	})
}

// PostAction toggles the user's like when the form carries "like";
// otherwise it adds a comment.
func (h *Handler) PostAction(ctx *gin.Context) {
	postID, err := utils.GetID(ctx, "id")

	if err != nil {
		h.notFound(ctx, types.FlashPostNotFound)
		return
	}

	if _, err := h.store.PostByID(ctx.Request.Context(), postID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.notFound(ctx, types.FlashPostNotFound)
			return
		}
		h.serverError(ctx, err, "failed to load post")
		return
	}

	userID := utils.GetSession(ctx).UserID
	location := fmt.Sprintf("/post/%d", postID)

	if _, like := ctx.GetPostForm("like"); like {
		if _, err := h.store.ToggleLike(ctx.Request.Context(), postID, userID); err != nil {
			logging.Log.WithError(err).WithField("post_id", postID).Error("failed to toggle like")
			h.flashRedirect(ctx, types.FlashSomethingWrong, location)
			return
		}
		h.redirect(ctx, location)
		return
	}

	content := strings.TrimSpace(ctx.PostForm("content"))

	if content == "" {
		h.flashRedirect(ctx, "A comment cannot be empty.", location)
		return
	}

	comment := models.Comment{Content: content, PostID: postID, AuthorID: userID}

	if err := h.store.CreateComment(ctx.Request.Context(), &comment); err != nil {
		logging.Log.WithError(err).WithField("post_id", postID).Error("failed to create comment")
		h.flashRedirect(ctx, types.FlashSomethingWrong, location)
		return
	}

	h.redirect(ctx, location)
}

func (h *Handler) DeletePost(ctx *gin.Context) {
	postID, err := utils.GetID(ctx, "id")

	if err != nil {
		h.flashRedirect(ctx, types.FlashPostNotFound, "/community")
		return
	}

	post, err := h.store.DeletePost(ctx.Request.Context(), postID)

	if errors.Is(err, store.ErrNotFound) {
		h.flashRedirect(ctx, types.FlashPostNotFound, "/community")
		return
	}

	if err != nil {
		logging.Log.WithError(err).WithField("post_id", postID).Error("failed to delete post")
		h.flashRedirect(ctx, types.FlashSomethingWrong, "/community")
		return
	}

	adminID := utils.GetSession(ctx).UserID
	logging.Log.WithFields(logrus.Fields{"post_id": post.ID, "admin_id": adminID}).Info("post deleted")

	h.notifier.NotifyModeration(ctx.Request.Context(), services.Moderation{
		Kind:    "post",
		ID:      post.ID,
		PostID:  post.ID,
		Title:   post.Title,
		Content: post.Content,
		AdminID: adminID,
		At:      time.Now().UTC(),
	})

	h.flashRedirect(ctx, types.FlashPostDeleted, "/community")
}

func (h *Handler) DeleteComment(ctx *gin.Context) {
	commentID, err := utils.GetID(ctx, "id")

	if err != nil {
		h.flashRedirect(ctx, types.FlashCommentNotFound, "/community")
		return
	}

	comment, err := h.store.CommentByID(ctx.Request.Context(), commentID)

	if errors.Is(err, store.ErrNotFound) {
		h.flashRedirect(ctx, types.FlashCommentNotFound, "/community")
		return
	}

	if err == nil {
		err = h.store.DeleteComment(ctx.Request.Context(), comment.ID)
	}

	if err != nil {
		logging.Log.WithError(err).WithField("comment_id", commentID).Error("failed to delete comment")
		h.flashRedirect(ctx, types.FlashSomethingWrong, "/community")
		return
	}

	adminID := utils.GetSession(ctx).UserID
	logging.Log.WithFields(logrus.Fields{"comment_id": comment.ID, "admin_id": adminID}).Info("comment deleted")

	h.notifier.NotifyModeration(ctx.Request.Context(), services.Moderation{
		Kind:    "comment",
		ID:      comment.ID,
		PostID:  comment.PostID,
		Content: comment.Content,
		AdminID: adminID,
		At:      time.Now().UTC(),
	})

	h.flashRedirect(ctx, types.FlashCommentDeleted, fmt.Sprintf("/post/%d", comment.PostID))
}
