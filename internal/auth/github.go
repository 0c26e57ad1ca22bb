package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const (
	githubUserURL   = "https://api.github.com/user"
	stateCookieName = "oauth_state"
	stateTTL        = 10 * time.Minute
)

// GitHub runs the OAuth login flow against GitHub (or anything that speaks
// the same protocol, such as a test server).
type GitHub struct {
	OAuth    *oauth2.Config
	UserURL  string
	Sessions *Sessions
}

// NewGitHub returns a GitHub flow using the public GitHub endpoints.
func NewGitHub(clientID, clientSecret, callbackURL string, sessions *Sessions) *GitHub {
	return &GitHub{
		OAuth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Endpoint:     github.Endpoint,
			Scopes:       []string{"user:email"},
		},
		UserURL:  githubUserURL,
		Sessions: sessions,
	}
}

// Start handles GET /github: it remembers a fresh state value in a cookie and
// redirects to the provider's consent page.
func (g *GitHub) Start(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   g.Sessions.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, g.OAuth.AuthCodeURL(state), http.StatusFound)
}

// Callback handles GET /github/callback. On success the user gets a session
// and is sent to /welcome; any failure sends them back to /login.
func (g *GitHub) Callback(w http.ResponseWriter, r *http.Request) {
	log := zerolog.Ctx(r.Context())

	identity, err := g.complete(r)
	if err != nil {
		log.Warn().Err(err).Msg("github login failed")
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Value: "", Path: "/", MaxAge: -1})
	if err := g.Sessions.Start(w, r, identity); err != nil {
		log.Error().Err(err).Msg("failed to start session")
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	log.Info().Str("login", identity.Login).Msg("user logged in")
	http.Redirect(w, r, "/welcome", http.StatusFound)
}

func (g *GitHub) complete(r *http.Request) (Identity, error) {
	cookie, err := r.Cookie(stateCookieName)
	if err != nil || cookie.Value == "" {
		return Identity{}, fmt.Errorf("missing state cookie")
	}
	if r.URL.Query().Get("state") != cookie.Value {
		return Identity{}, fmt.Errorf("state mismatch")
	}
	if e := r.URL.Query().Get("error"); e != "" {
		return Identity{}, fmt.Errorf("provider error: %s", e)
	}

	token, err := g.OAuth.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		return Identity{}, fmt.Errorf("exchange code: %w", err)
	}
	return g.profile(r, token)
}

func (g *GitHub) profile(r *http.Request, token *oauth2.Token) (Identity, error) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, g.UserURL, nil)
	if err != nil {
		return Identity{}, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := g.OAuth.Client(r.Context(), token).Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("fetch profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Identity{}, fmt.Errorf("fetch profile: unexpected status %d", resp.StatusCode)
	}

	var identity Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return Identity{}, fmt.Errorf("decode profile: %w", err)
	}
	if identity.Login == "" {
		return Identity{}, fmt.Errorf("profile has no login")
	}
	return identity, nil
}

// Logout handles GET /logout.
func (g *GitHub) Logout(w http.ResponseWriter, r *http.Request) {
	if err := g.Sessions.End(w, r); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to end session")
	}
	http.Redirect(w, r, "/", http.StatusFound)
}
