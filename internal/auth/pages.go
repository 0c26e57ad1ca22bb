package auth

import (
	"html/template"
	"net/http"

	"github.com/rs/zerolog"
)

var homePage = template.Must(template.New("home").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>College API</title></head>
<body>
{{- if .SignedIn }}
  <h1>Welcome {{ .Identity.DisplayName }}!</h1>
  <p>You are logged in as {{ .Identity.Login }}</p>
  <a href="/logout">Logout</a>
{{- else }}
  <h1>Welcome to the College API!</h1>
  {{- if .LoginEnabled }}
  <p><a href="/login">Login with GitHub</a></p>
  {{- end }}
{{- end }}
</body>
</html>
`))

var loginPage = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Login - College API</title>
  <style>
    body { margin: 0; display: flex; justify-content: center; align-items: center;
           min-height: 100vh; font-family: sans-serif; background: #f4f4f8; }
    .container { background: white; border-radius: 10px; padding: 40px; text-align: center;
                 box-shadow: 0 10px 25px rgba(0, 0, 0, 0.2); max-width: 400px; }
    .button { display: inline-block; background-color: #333; color: white; padding: 12px 30px;
              border-radius: 5px; text-decoration: none; font-weight: 600; }
  </style>
</head>
<body>
  <div class="container">
    <h1>Authorize College API</h1>
    <p>College API wants to read your public GitHub profile.</p>
    <a href="/github" class="button">Authorize with GitHub</a>
  </div>
</body>
</html>
`))

// Home serves GET / and GET /welcome.
func Home(loginEnabled bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := FromContext(r.Context())
		render(w, r, homePage, map[string]any{
			"SignedIn":     ok,
			"Identity":     identity,
			"LoginEnabled": loginEnabled,
		})
	}
}

// Login serves GET /login.
func Login(w http.ResponseWriter, r *http.Request) {
	render(w, r, loginPage, nil)
}

func render(w http.ResponseWriter, r *http.Request, t *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.Execute(w, data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("template", t.Name()).Msg("failed to render page")
	}
}
