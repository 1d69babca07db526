package middleware

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

const (
	sessionCookieName = "THIEP_WEB_SESSION"
	sessionMaxAge     = 30 * 24 * time.Hour
)

// SessionData is the signed, client-held session.
type SessionData struct {
	ID        string    `json:"id"`
	CartID    string    `json:"cart,omitempty"`
	Locale    string    `json:"locale,omitempty"`
	CSRFToken string    `json:"csrf,omitempty"`
	Flash     []Flash   `json:"flash,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	// internal dirty flag; not serialized
	dirty bool `json:"-"`
}

// Flash is a one-shot notification shown on the next full page render.
type Flash struct {
	Tone string `json:"t"`
	Text string `json:"m"`
}

// Options configures cookie keys and flags.
type Options struct {
	// HashKey signs cookies. Random per process when empty.
	HashKey []byte
	// BlockKey encrypts the auth cookie (16, 24 or 32 bytes). Random per process when empty.
	BlockKey []byte
	Secure   bool
}

// Cookies owns the codecs for the session and auth cookies.
type Cookies struct {
	session *securecookie.SecureCookie
	auth    *securecookie.SecureCookie
	secure  bool
}

// NewCookies builds the cookie codecs. Empty keys are replaced with process-ephemeral ones.
func NewCookies(opts Options) (*Cookies, error) {
	hashKey := opts.HashKey
	if len(hashKey) == 0 {
		hashKey = securecookie.GenerateRandomKey(32)
	}
	blockKey := opts.BlockKey
	if len(blockKey) == 0 {
		blockKey = securecookie.GenerateRandomKey(32)
	}
	if hashKey == nil || blockKey == nil {
		return nil, errors.New("middleware: unable to generate cookie keys")
	}
	switch len(blockKey) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("middleware: block key must be 16, 24 or 32 bytes, got %d", len(blockKey))
	}
	session := securecookie.New(hashKey, nil).
		MaxAge(int(sessionMaxAge / time.Second)).
		SetSerializer(securecookie.JSONEncoder{})
	auth := securecookie.New(hashKey, blockKey).
		MaxAge(int(authMaxAge / time.Second)).
		SetSerializer(securecookie.JSONEncoder{})
	return &Cookies{session: session, auth: auth, secure: opts.Secure}, nil
}

// Session loads or initializes a session and stores it in request context.
func (c *Cookies) Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sd, fromCookie := c.readSessionCookie(r)
		if sd.ID == "" {
			sd.ID = randID()
			sd.CreatedAt = time.Now().UTC()
			sd.UpdatedAt = sd.CreatedAt
			sd.CSRFToken = newCSRFToken()
			sd.dirty = true
		}
		if sd.CartID == "" {
			sd.CartID = randID()
			sd.dirty = true
		}
		ctx := context.WithValue(r.Context(), ctxKeySession, sd)
		rw := NewResponseRecorder(w)
		// ensure cookie is set just before first write if needed
		rw.SetBeforeWrite(func(w http.ResponseWriter) {
			if sd.dirty || !fromCookie {
				c.writeSessionCookie(w, sd)
			}
		})
		next.ServeHTTP(rw, r.WithContext(ctx))
		// If nothing was written yet (e.g., HEAD), persist cookie now
		if !rw.wrote && (sd.dirty || !fromCookie) {
			c.writeSessionCookie(w, sd)
		}
	})
}

// GetSession returns session data from context
func GetSession(r *http.Request) *SessionData {
	if v := r.Context().Value(ctxKeySession); v != nil {
		if sd, ok := v.(*SessionData); ok {
			return sd
		}
	}
	return &SessionData{}
}

// MarkDirty flags the session for writing at end of request
func (s *SessionData) MarkDirty() { s.dirty = true; s.UpdatedAt = time.Now().UTC() }

// AddFlash queues a notification for the next page render.
func (s *SessionData) AddFlash(tone, text string) {
	s.Flash = append(s.Flash, Flash{Tone: tone, Text: text})
	s.MarkDirty()
}

// PopFlash drains queued notifications.
func (s *SessionData) PopFlash() []Flash {
	if len(s.Flash) == 0 {
		return nil
	}
	out := s.Flash
	s.Flash = nil
	s.MarkDirty()
	return out
}

// RegenerateID assigns a new session ID and CSRF token to prevent fixation after auth.
// The cart id is kept so the cart survives sign-in.
func (s *SessionData) RegenerateID() {
	s.ID = randID()
	s.CSRFToken = newCSRFToken()
	s.MarkDirty()
}

func (c *Cookies) readSessionCookie(r *http.Request) (*SessionData, bool) {
	ck, err := r.Cookie(sessionCookieName)
	if err != nil || ck.Value == "" {
		return &SessionData{}, false
	}
	var sd SessionData
	if err := c.session.Decode(sessionCookieName, ck.Value, &sd); err != nil {
		return &SessionData{}, false
	}
	return &sd, true
}

func (c *Cookies) writeSessionCookie(w http.ResponseWriter, sd *SessionData) {
	val, err := c.session.Encode(sessionCookieName, sd)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    val,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(sessionMaxAge),
	})
}

func randID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
