package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/monocle-dev/carbontrack/internal/auth"
	"github.com/monocle-dev/carbontrack/internal/footprint"
	"github.com/monocle-dev/carbontrack/internal/handlers"
	"github.com/monocle-dev/carbontrack/internal/models"
	"github.com/monocle-dev/carbontrack/internal/services"
	"github.com/monocle-dev/carbontrack/internal/store"
	"github.com/monocle-dev/carbontrack/internal/testutil"
	"github.com/monocle-dev/carbontrack/internal/types"
	"github.com/monocle-dev/carbontrack/web"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeWeather struct {
	payload map[string]any
	err     error
	city    string
}

func (f *fakeWeather) Weather(_ context.Context, city string) (map[string]any, error) {
	f.city = city
	return f.payload, f.err
}

type fakeNews struct {
	articles []types.NewsArticle
	err      error
}

func (f *fakeNews) Latest(context.Context, string) ([]types.NewsArticle, error) {
	return f.articles, f.err
}

type failingPredictor struct{}

func (failingPredictor) Predict(context.Context, footprint.Survey) (float64, error) {
	return 0, errors.New("model unavailable")
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []services.Moderation
}

func (n *recordingNotifier) NotifyModeration(_ context.Context, m services.Moderation) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, m)
}

type testApp struct {
	t        *testing.T
	db       *gorm.DB
	server   *httptest.Server
	weather  *fakeWeather
	news     *fakeNews
	notifier *recordingNotifier
	hub      *handlers.LeaderboardHub
}

func newTestApp(t *testing.T, predictor handlers.Predictor) *testApp {
	t.Helper()

	database := testutil.NewTestDB(t)

	sessions, err := auth.NewManager("test-secret", time.Hour, false)
	require.NoError(t, err)

	templates, err := web.Templates()
	require.NoError(t, err)

	if predictor == nil {
		predictor = testutil.NewArtifact(t, 1234.5)
	}

	app := &testApp{
		t:        t,
		db:       database,
		weather:  &fakeWeather{payload: map[string]any{"name": "Paris", "aqi_status": "42 (Good)"}},
		news:     &fakeNews{},
		notifier: &recordingNotifier{},
		hub:      handlers.NewLeaderboardHub(nil),
	}

	h := handlers.New(handlers.Deps{
		Store:     store.New(database),
		Sessions:  sessions,
		Predictor: predictor,
		Weather:   app.weather,
		News:      app.news,
		Notifier:  app.notifier,
		Hub:       app.hub,
	})

	app.server = httptest.NewServer(NewRouter(h, sessions, Options{
		AllowedOrigins: []string{"http://localhost:5000"},
		Templates:      templates,
	}))
	t.Cleanup(app.server.Close)

	return app
}

// browser keeps cookies between requests and never follows redirects.
type browser struct {
	t      *testing.T
	app    *testApp
	client *http.Client
}

func (app *testApp) browser() *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(app.t, err)

	return &browser{
		t:   app.t,
		app: app,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (b *browser) get(path string) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.client.Get(b.app.server.URL + path)
	require.NoError(b.t, err)
	return resp, readBody(b.t, resp)
}

func (b *browser) post(path string, form map[string]string) (*http.Response, string) {
	b.t.Helper()
	values := url.Values{}
	for key, value := range form {
		values.Set(key, value)
	}
	resp, err := b.client.PostForm(b.app.server.URL+path, values)
	require.NoError(b.t, err)
	return resp, readBody(b.t, resp)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func requireRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, location, resp.Header.Get("Location"))
}

func (b *browser) login(email string) {
	b.t.Helper()
	resp, _ := b.post("/login", map[string]string{"email": email, "password": "password123"})
	requireRedirect(b.t, resp, "/dashboard")
}

func (app *testApp) countEntries() int64 {
	var count int64
	require.NoError(app.t, app.db.Model(&models.LeaderboardEntry{}).Count(&count).Error)
	return count
}

func TestRegisterLoginLogout(t *testing.T) {
	app := newTestApp(t, nil)
	b := app.browser()

	resp, _ := b.post("/register", map[string]string{
		"email": "Asha@Example.com", "password": "s3cret", "name": "Asha", "city": "Pune",
	})
	requireRedirect(t, resp, "/login")

	_, body := b.get("/login")
	require.Contains(t, body, types.FlashRegistered)

	// Flashes are shown once.
	_, body = b.get("/login")
	require.NotContains(t, body, types.FlashRegistered)

	resp, _ = b.post("/register", map[string]string{"email": "asha@example.com", "password": "other"})
	requireRedirect(t, resp, "/register")
	_, body = b.get("/register")
	require.Contains(t, body, types.FlashEmailTaken)

	var user models.User
	require.NoError(t, app.db.Where("email = ?", "asha@example.com").First(&user).Error)
	require.NotEqual(t, "s3cret", user.PasswordHash)
	require.True(t, auth.CheckPassword(user.PasswordHash, "s3cret"))

	resp, body = b.post("/login", map[string]string{"email": "asha@example.com", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Contains(t, body, types.FlashBadCredentials)

	resp, _ = b.post("/login", map[string]string{"email": "asha@example.com", "password": "s3cret"})
	requireRedirect(t, resp, "/dashboard")

	resp, body = b.get("/dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Welcome, Asha")

	resp, _ = b.get("/logout")
	requireRedirect(t, resp, "/")
	_, body = b.get("/")
	require.Contains(t, body, types.FlashLoggedOut)

	resp, _ = b.get("/dashboard")
	requireRedirect(t, resp, "/login")
}

func TestProtectedPagesRedirectToLogin(t *testing.T) {
	app := newTestApp(t, nil)
	b := app.browser()

	for _, path := range []string{"/index", "/dashboard", "/visualize", "/post/1"} {
		resp, _ := b.get(path)
		requireRedirect(t, resp, "/login")
	}

	resp, _ := b.post("/community", map[string]string{"title": "t", "content": "c"})
	requireRedirect(t, resp, "/login")

	resp, body := b.get("/api/history")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.JSONEq(t, `{"error":"User not authenticated"}`, body)
}

func TestAdminLogin(t *testing.T) {
	app := newTestApp(t, nil)
	testutil.CreateUser(t, app.db, "admin@example.com", "admin", "Trichy", true)
	testutil.CreateUser(t, app.db, "user@example.com", "user", "Pune", false)

	b := app.browser()
	resp, _ := b.post("/login_admin", map[string]string{"email": "user@example.com", "password": "password123"})
	requireRedirect(t, resp, "/login_admin")
	_, body := b.get("/login_admin")
	require.Contains(t, body, "Invalid login credentials or you&#39;re not an admin.")

	resp, _ = b.post("/login_admin", map[string]string{"email": "admin@example.com", "password": "password123"})
	requireRedirect(t, resp, "/dashboard")
	_, body = b.get("/dashboard")
	require.Contains(t, body, types.FlashAdminLoggedIn)

	resp, _ = b.get("/login_admin")
	requireRedirect(t, resp, "/dashboard")
}

func TestSurveyWithoutSessionWritesNoRow(t *testing.T) {
	app := newTestApp(t, nil)
	b := app.browser()

	resp, _ := b.post("/form", testutil.SurveyForm())
	requireRedirect(t, resp, "/result?emission=1234.5")
	require.Zero(t, app.countEntries())

	_, body := b.get("/result?emission=1234.5")
	require.Contains(t, body, "1234.50")
	require.Contains(t, body, types.FlashLoginToSave)
}

func TestSurveyWithSessionRecordsAndBroadcasts(t *testing.T) {
	app := newTestApp(t, nil)
	testutil.CreateUser(t, app.db, "saver@example.com", "Saver", "Delhi", false)
	b := app.browser()
	b.login("saver@example.com")

	wsURL := "ws" + strings.TrimPrefix(app.server.URL, "http") + "/ws/leaderboard"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var message map[string]string
	require.NoError(t, conn.ReadJSON(&message))
	require.Equal(t, "connected", message["type"])
	require.Eventually(t, func() bool { return app.hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	resp, _ := b.post("/form", testutil.SurveyForm())
	requireRedirect(t, resp, "/result?emission=1234.5")
	require.EqualValues(t, 1, app.countEntries())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&message))
	require.Equal(t, "refresh", message["type"])

	var entry models.LeaderboardEntry
	require.NoError(t, app.db.First(&entry).Error)
	require.Equal(t, 1234.5, entry.CarbonEmission)
	require.Contains(t, string(entry.Survey), `"diet":"omnivore"`)

	_, body := b.get("/leaderboard")
	require.Contains(t, body, "Saver")
	require.Contains(t, body, "1234.50")

	resp, body = b.get("/api/history")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var history handlers.History
	require.NoError(t, json.Unmarshal([]byte(body), &history))
	require.Len(t, history.Points, 1)
	require.Equal(t, 1234.5, history.Summary.Latest)

	resp, body = b.get("/visualize")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Carbon emission trends over time")
}

func TestSurveyForDeletedUserIsNotRecorded(t *testing.T) {
	app := newTestApp(t, nil)
	user := testutil.CreateUser(t, app.db, "gone@example.com", "Gone", "Delhi", false)
	b := app.browser()
	b.login("gone@example.com")

	require.NoError(t, app.db.Delete(user).Error)

	resp, _ := b.post("/form", testutil.SurveyForm())
	requireRedirect(t, resp, "/result?emission=1234.5")
	require.Zero(t, app.countEntries())

	_, body := b.get("/result?emission=1234.5")
	require.Contains(t, body, types.FlashUserNotFound)
}

func TestSurveyRejectsUnknownLabel(t *testing.T) {
	app := newTestApp(t, nil)
	testutil.CreateUser(t, app.db, "v@example.com", "V", "Delhi", false)
	b := app.browser()
	b.login("v@example.com")

	form := testutil.SurveyForm()
	form["diet"] = "carnivore"

	resp, body := b.post("/form", form)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, body, "Diet")
	require.Zero(t, app.countEntries())

	form = testutil.SurveyForm()
	delete(form, "grocery_bill")
	resp, _ = b.post("/form", form)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	form = testutil.SurveyForm()
	form["tv_pc_hours"] = "-2"
	resp, _ = b.post("/form", form)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Zero(t, app.countEntries())
}

func TestSurveyPredictionFailure(t *testing.T) {
	app := newTestApp(t, failingPredictor{})
	testutil.CreateUser(t, app.db, "p@example.com", "P", "Delhi", false)
	b := app.browser()
	b.login("p@example.com")

	resp, body := b.post("/form", testutil.SurveyForm())
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Contains(t, body, types.FlashPredictionFailed)
	require.Zero(t, app.countEntries())
}

func TestResultDefaultsToZero(t *testing.T) {
	app := newTestApp(t, nil)
	b := app.browser()

	for _, query := range []string{"", "?emission=abc", "?emission=NaN"} {
		resp, body := b.get("/result" + query)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Contains(t, body, "0.00 kg")
	}
}

func TestVisualizeWithoutData(t *testing.T) {
	app := newTestApp(t, nil)
	testutil.CreateUser(t, app.db, "n@example.com", "N", "Delhi", false)
	b := app.browser()
	b.login("n@example.com")

	resp, body := b.get("/visualize")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "No data available for Visualization!", body)
}

func TestCommunityLikesAndModeration(t *testing.T) {
	app := newTestApp(t, nil)
	testutil.CreateUser(t, app.db, "writer@example.com", "Writer", "Delhi", false)
	testutil.CreateUser(t, app.db, "mod@example.com", "Mod", "Trichy", true)

	writer := app.browser()
	writer.login("writer@example.com")

	resp, _ := writer.post("/community", map[string]string{"title": "Bike to work", "content": "Saves 2kg a day"})
	requireRedirect(t, resp, "/community")

	var post models.Post
	require.NoError(t, app.db.First(&post).Error)
	postPath := fmt.Sprintf("/post/%d", post.ID)

	_, body := writer.get("/community")
	require.Contains(t, body, "Bike to work")
	require.NotContains(t, body, "/admin/delete_post/")

	resp, _ = writer.post(postPath, map[string]string{"like": "1"})
	requireRedirect(t, resp, postPath)
	_, body = writer.get(postPath)
	require.Contains(t, body, "Unlike")
	require.Contains(t, body, "1 like")

	resp, _ = writer.post(postPath, map[string]string{"like": "1"})
	requireRedirect(t, resp, postPath)
	var likes int64
	require.NoError(t, app.db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&likes).Error)
	require.Zero(t, likes)

	resp, _ = writer.post(postPath, map[string]string{"content": "Agreed!"})
	requireRedirect(t, resp, postPath)
	_, body = writer.get(postPath)
	require.Contains(t, body, "Agreed!")

	// Non-admins are sent home and nothing is removed.
	resp, _ = writer.get(fmt.Sprintf("/admin/delete_post/%d", post.ID))
	requireRedirect(t, resp, "/")
	require.NoError(t, app.db.First(&models.Post{}, post.ID).Error)

	var comment models.Comment
	require.NoError(t, app.db.First(&comment).Error)

	admin := app.browser()
	resp, _ = admin.post("/login_admin", map[string]string{"email": "mod@example.com", "password": "password123"})
	requireRedirect(t, resp, "/dashboard")

	resp, _ = admin.get(fmt.Sprintf("/admin/delete_comment/%d", comment.ID))
	requireRedirect(t, resp, postPath)
	require.ErrorIs(t, app.db.First(&models.Comment{}, comment.ID).Error, gorm.ErrRecordNotFound)

	_, _ = writer.post(postPath, map[string]string{"like": "1"})
	_, _ = writer.post(postPath, map[string]string{"content": "Second"})

	resp, _ = admin.get(fmt.Sprintf("/admin/delete_post/%d", post.ID))
	requireRedirect(t, resp, "/community")

	var orphans int64
	require.NoError(t, app.db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&orphans).Error)
	require.Zero(t, orphans)
	require.NoError(t, app.db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&orphans).Error)
	require.Zero(t, orphans)

	resp, _ = admin.get(fmt.Sprintf("/admin/delete_post/%d", post.ID))
	requireRedirect(t, resp, "/community")
	_, body = admin.get("/community")
	require.Contains(t, body, types.FlashPostNotFound)

	app.notifier.mu.Lock()
	defer app.notifier.mu.Unlock()
	require.Len(t, app.notifier.notices, 2)
	require.Equal(t, "comment", app.notifier.notices[0].Kind)
	require.Equal(t, "post", app.notifier.notices[1].Kind)
	require.Equal(t, "Bike to work", app.notifier.notices[1].Title)
}

func TestMissingPost(t *testing.T) {
	app := newTestApp(t, nil)
	testutil.CreateUser(t, app.db, "m@example.com", "M", "Delhi", false)
	b := app.browser()
	b.login("m@example.com")

	resp, body := b.get("/post/999")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Contains(t, body, types.FlashPostNotFound)
}

func TestWeatherAndNewsEndpoints(t *testing.T) {
	app := newTestApp(t, nil)
	b := app.browser()

	resp, body := b.get("/api/weather?city=Paris")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"name":"Paris","aqi_status":"42 (Good)"}`, body)
	require.Equal(t, "Paris", app.weather.city)

	_, _ = b.get("/api/weather")
	require.Equal(t, "Bhimavaram", app.weather.city)

	app.weather.err = errors.New("boom")
	resp, body = b.get("/api/weather?city=Paris")
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.JSONEq(t, `{"error":"Could not fetch weather data"}`, body)

	resp, body = b.get("/api/news")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.JSONEq(t, `{"error":"City is required"}`, body)

	app.news.articles = []types.NewsArticle{{Title: "No Title", Description: "No Description", Link: "#"}}
	resp, body = b.get("/api/news?city=Chennai")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"results":[{"title":"No Title","description":"No Description","link":"#","image_url":null}]}`, body)

	app.news.err = errors.New("quota")
	resp, body = b.get("/api/news?city=Chennai")
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.JSONEq(t, `{"error":"Failed to fetch news"}`, body)
}

func TestHealthCheck(t *testing.T) {
	app := newTestApp(t, nil)

	resp, body := app.browser().get("/api/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, `"status":"ok"`)
	require.NotEmpty(t, resp.Header.Get(types.RequestIDHeader))
}
