package auth

import (
	"net/http"
	"time"
)

const CookieName = "carbontrack_session"

// Session is the per-browser state carried in the signed cookie.
type Session struct {
	UserID   uint
	LoggedIn bool
	IsAdmin  bool
	Name     string
	City     string

	flashes []string
}

// Authenticated reports whether the session identifies a user.
func (s *Session) Authenticated() bool {
	return s.UserID != 0 && (s.LoggedIn || s.IsAdmin)
}

func (s *Session) AddFlash(message string) {
	s.flashes = append(s.flashes, message)
}

// PopFlashes returns the pending messages and forgets them.
func (s *Session) PopFlashes() []string {
	flashes := s.flashes
	s.flashes = nil
	return flashes
}

// Clear drops the identity and any pending messages.
func (s *Session) Clear() {
	*s = Session{}
}

func (s *Session) empty() bool {
	return s.UserID == 0 && !s.LoggedIn && !s.IsAdmin && s.Name == "" && s.City == "" && len(s.flashes) == 0
}

// Manager moves sessions in and out of the cookie.
type Manager struct {
	signer *Signer
	maxAge time.Duration
	secure bool
}

func NewManager(secret string, maxAge time.Duration, secure bool) (*Manager, error) {
	signer, err := NewSigner(secret, maxAge)
	if err != nil {
		return nil, err
	}
	return &Manager{signer: signer, maxAge: maxAge, secure: secure}, nil
}

// Load returns the request's session. A missing, tampered or expired cookie
// yields an empty session.
func (m *Manager) Load(r *http.Request) *Session {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return &Session{}
	}

	claims, err := m.signer.Verify(cookie.Value)
	if err != nil {
		return &Session{}
	}

	return &Session{
		UserID:   claims.UserID,
		LoggedIn: claims.LoggedIn,
		IsAdmin:  claims.IsAdmin,
		Name:     claims.Name,
		City:     claims.City,
		flashes:  claims.Flashes,
	}
}

// Save writes the session cookie, or expires it when nothing is left to
// carry. It must run before the response body is written.
func (m *Manager) Save(w http.ResponseWriter, s *Session) error {
	if s.empty() {
		http.SetCookie(w, m.cookie("", -1))
		return nil
	}

	token, err := m.signer.Sign(SessionClaims{
		UserID:   s.UserID,
		LoggedIn: s.LoggedIn,
		IsAdmin:  s.IsAdmin,
		Name:     s.Name,
		City:     s.City,
		Flashes:  s.flashes,
	})
	if err != nil {
		return err
	}

	http.SetCookie(w, m.cookie(token, int(m.maxAge.Seconds())))
	return nil
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   m.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
