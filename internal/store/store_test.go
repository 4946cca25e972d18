package store

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/monocle-dev/carbontrack/internal/models"
	"github.com/monocle-dev/carbontrack/internal/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(testutil.NewTestDB(t))
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &models.User{Email: "a@example.com", PasswordHash: "x"}))
	err := s.CreateUser(ctx, &models.User{Email: "a@example.com", PasswordHash: "y"})
	require.ErrorIs(t, err, ErrEmailTaken)

	user, err := s.UserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.Equal(t, "x", user.PasswordHash)

	_, err = s.UserByEmail(ctx, "missing@example.com")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.UserByID(ctx, 9999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.EnsureAdmin(ctx, &models.User{Email: "admin@example.com", PasswordHash: "h", Name: "admin"})
	require.NoError(t, err)
	require.True(t, created)

	created, err = s.EnsureAdmin(ctx, &models.User{Email: "admin@example.com", PasswordHash: "other"})
	require.NoError(t, err)
	require.False(t, created)

	admin, err := s.UserByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	require.True(t, admin.IsAdmin)
	require.Equal(t, "h", admin.PasswordHash)
}

func TestRecordEmissionRequiresExistingUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.RecordEmission(ctx, 42, 100, nil)
	require.ErrorIs(t, err, ErrUserNotFound)

	var count int64
	require.NoError(t, s.DB().Model(&models.LeaderboardEntry{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestHistoryIsChronological(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, s.DB(), "h@example.com", "H", "Delhi", false)
	other := testutil.CreateUser(t, s.DB(), "o@example.com", "O", "Pune", false)

	survey := datatypes.JSON(`{"diet":"vegan"}`)
	for _, emission := range []float64{300, 100, 200} {
		_, err := s.RecordEmission(ctx, user.ID, emission, survey)
		require.NoError(t, err)
	}
	_, err := s.RecordEmission(ctx, other.ID, 50, nil)
	require.NoError(t, err)

	history, err := s.History(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)

	var emissions []float64
	for i, entry := range history {
		emissions = append(emissions, entry.CarbonEmission)
		if i > 0 {
			require.False(t, entry.DateRecorded.Before(history[i-1].DateRecorded))
		}
		require.WithinDuration(t, time.Now().UTC(), entry.DateRecorded, time.Minute)
	}
	require.Equal(t, []float64{300, 100, 200}, emissions)
	require.JSONEq(t, `{"diet":"vegan"}`, string(history[0].Survey))
}

func TestLeaderboardOrdersByAverage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	records := map[string][]float64{
		"a@example.com": {500, 700},
		"b@example.com": {100},
		"c@example.com": {300, 300, 330},
		"d@example.com": {100},
	}
	for email, emissions := range records {
		user := testutil.CreateUser(t, s.DB(), email, email[:1], "City", false)
		for _, emission := range emissions {
			_, err := s.RecordEmission(ctx, user.ID, emission, nil)
			require.NoError(t, err)
		}
	}
	// Users without entries are not ranked.
	testutil.CreateUser(t, s.DB(), "e@example.com", "e", "City", false)

	standings, err := s.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, standings, 4)

	require.True(t, sort.SliceIsSorted(standings, func(i, j int) bool {
		return standings[i].AvgEmission < standings[j].AvgEmission
	}))
	for i := 1; i < len(standings); i++ {
		require.LessOrEqual(t, standings[i-1].AvgEmission, standings[i].AvgEmission)
	}

	last := standings[3]
	require.Equal(t, "a", last.Name)
	require.InDelta(t, 600, last.AvgEmission, 1e-9)
	require.EqualValues(t, 2, last.EntriesCount)
	require.InDelta(t, 310, standings[2].AvgEmission, 1e-9)
}

func TestLeaderboardEmpty(t *testing.T) {
	s := newTestStore(t)

	standings, err := s.Leaderboard(context.Background())
	require.NoError(t, err)
	require.Empty(t, standings)
}

func TestToggleLikeTwiceLeavesNoRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, s.DB(), "l@example.com", "L", "City", false)

	post := &models.Post{Title: "Cycling", Content: "To work", AuthorID: user.ID}
	require.NoError(t, s.CreatePost(ctx, post))

	liked, err := s.ToggleLike(ctx, post.ID, user.ID)
	require.NoError(t, err)
	require.True(t, liked)

	count, err := s.CountLikes(ctx, post.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	has, err := s.HasLiked(ctx, post.ID, user.ID)
	require.NoError(t, err)
	require.True(t, has)

	liked, err = s.ToggleLike(ctx, post.ID, user.ID)
	require.NoError(t, err)
	require.False(t, liked)

	var rows int64
	require.NoError(t, s.DB().Model(&models.Like{}).
		Where("post_id = ? AND user_id = ?", post.ID, user.ID).Count(&rows).Error)
	require.Zero(t, rows)

	// The unique pair can be liked again after an unlike.
	liked, err = s.ToggleLike(ctx, post.ID, user.ID)
	require.NoError(t, err)
	require.True(t, liked)
}

func TestDeletePostRemovesLikesAndComments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, s.DB(), "p@example.com", "P", "City", false)
	reader := testutil.CreateUser(t, s.DB(), "r@example.com", "R", "City", false)

	post := &models.Post{Title: "Compost", Content: "Tips", AuthorID: author.ID}
	require.NoError(t, s.CreatePost(ctx, post))
	keep := &models.Post{Title: "Solar", Content: "Panels", AuthorID: author.ID}
	require.NoError(t, s.CreatePost(ctx, keep))

	for _, userID := range []uint{author.ID, reader.ID} {
		_, err := s.ToggleLike(ctx, post.ID, userID)
		require.NoError(t, err)
		require.NoError(t, s.CreateComment(ctx, &models.Comment{Content: "nice", PostID: post.ID, AuthorID: userID}))
	}
	_, err := s.ToggleLike(ctx, keep.ID, reader.ID)
	require.NoError(t, err)
	require.NoError(t, s.CreateComment(ctx, &models.Comment{Content: "kept", PostID: keep.ID, AuthorID: reader.ID}))

	deleted, err := s.DeletePost(ctx, post.ID)
	require.NoError(t, err)
	require.Equal(t, "Compost", deleted.Title)

	_, err = s.PostByID(ctx, post.ID)
	require.ErrorIs(t, err, ErrNotFound)

	var likes, comments int64
	require.NoError(t, s.DB().Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&likes).Error)
	require.NoError(t, s.DB().Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&comments).Error)
	require.Zero(t, likes)
	require.Zero(t, comments)

	keptComments, err := s.CommentsForPost(ctx, keep.ID)
	require.NoError(t, err)
	require.Len(t, keptComments, 1)
	require.Equal(t, "R", keptComments[0].Author.Name)

	_, err = s.DeletePost(ctx, post.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListPostsAndDeleteComment(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, s.DB(), "w@example.com", "Writer", "City", false)

	for _, title := range []string{"first", "second"} {
		require.NoError(t, s.CreatePost(ctx, &models.Post{Title: title, Content: "body", AuthorID: author.ID}))
	}

	posts, err := s.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	require.Equal(t, "first", posts[0].Title)
	require.Equal(t, "Writer", posts[0].Author.Name)

	comment := &models.Comment{Content: "hello", PostID: posts[0].ID, AuthorID: author.ID}
	require.NoError(t, s.CreateComment(ctx, comment))

	found, err := s.CommentByID(ctx, comment.ID)
	require.NoError(t, err)
	require.Equal(t, posts[0].ID, found.PostID)

	require.NoError(t, s.DeleteComment(ctx, comment.ID))
	require.ErrorIs(t, s.DeleteComment(ctx, comment.ID), ErrNotFound)
	_, err = s.CommentByID(ctx, comment.ID)
	require.ErrorIs(t, err, ErrNotFound)
}
