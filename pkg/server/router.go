package server

import (
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/palisadehq/palisade/pkg/contextkeys"
	"github.com/palisadehq/palisade/pkg/guard"
	"github.com/palisadehq/palisade/pkg/httputil"
	"github.com/palisadehq/palisade/pkg/identity"
	"github.com/palisadehq/palisade/pkg/observability"
	"github.com/palisadehq/palisade/pkg/ratelimit"
	"github.com/palisadehq/palisade/pkg/tenant"
	"github.com/palisadehq/palisade/pkg/validation"
)

// Deps carries the wiring the router needs
type Deps struct {
	Composer  *guard.Composer
	Directory tenant.ResourceDirectory
	Sessions  *Sessions
	Logger    *observability.Logger
	Secure    bool
}

// Server holds route handler state
type Server struct {
	deps  Deps
	users map[string]demoUser

	mu       sync.RWMutex
	settings map[string]map[string]string
}

// NewRouter builds the API route table with each route wrapped in its guard
// preset.
func NewRouter(deps Deps) http.Handler {
	s := &Server{
		deps:     deps,
		users:    demoUsers(),
		settings: make(map[string]map[string]string),
	}
	c := deps.Composer

	loginSchema := &validation.Schema{
		Methods: []string{http.MethodPost},
		Body: validation.FieldRules{
			"username": {validation.Required(), validation.String(128)},
			"password": {validation.Required(), validation.String(128)},
		},
	}
	searchSchema := &validation.Schema{
		Methods: []string{http.MethodGet},
		Query: validation.FieldRules{
			"q":     {validation.Required(), validation.String(256)},
			"limit": {validation.Int(1, 100)},
		},
	}
	projectSchema := &validation.Schema{
		Methods: []string{http.MethodPut},
		Body: validation.FieldRules{
			"name":        {validation.Required(), validation.String(128)},
			"description": {validation.String(1024)},
		},
	}
	uploadSchema := &validation.Schema{
		Methods: []string{http.MethodPost},
		Body: validation.FieldRules{
			"filename": {validation.Required(), validation.String(255)},
			"size":     {validation.Required(), validation.Int(1, 1<<30)},
		},
	}
	settingsSchema := &validation.Schema{
		Methods: []string{http.MethodPost},
		Body: validation.FieldRules{
			"key":   {validation.Required(), validation.String(64)},
			"value": {validation.Required(), validation.String(1024)},
		},
	}

	projectResolver := tenant.NewFromResource("project", "project_id", deps.Directory)
	orgResolver := tenant.NewFromSlug("org_slug", deps.Directory)

	r := mux.NewRouter()

	r.Handle("/api/auth/login", c.Wrap(http.HandlerFunc(s.login), guard.RouteConfig{
		Preset:          guard.Public,
		RateLimitPreset: ratelimit.PresetAuth,
		Schemas:         []*validation.Schema{loginSchema},
	})).Methods(http.MethodPost)

	r.Handle("/api/auth/logout", c.Wrap(http.HandlerFunc(s.logout), guard.RouteConfig{
		Preset:          guard.UserPrivate,
		RateLimitPreset: ratelimit.PresetAuth,
	})).Methods(http.MethodPost)

	r.Handle("/api/me", c.UserPrivate(http.HandlerFunc(s.me), "")).
		Methods(http.MethodGet)

	r.Handle("/api/search", c.Wrap(http.HandlerFunc(s.search), guard.RouteConfig{
		Preset:          guard.Public,
		RateLimitPreset: ratelimit.PresetSearch,
		Schemas:         []*validation.Schema{searchSchema},
	})).Methods(http.MethodGet)

	r.Handle("/api/projects/{project_id}", c.Wrap(http.HandlerFunc(s.getProject), guard.RouteConfig{
		Preset:          guard.TenantProtected,
		Resolver:        projectResolver,
		RateLimitPreset: ratelimit.PresetResource,
	})).Methods(http.MethodGet)

	r.Handle("/api/projects/{project_id}", c.Wrap(http.HandlerFunc(s.updateProject), guard.RouteConfig{
		Preset:          guard.TenantProtected,
		Resolver:        projectResolver,
		RateLimitPreset: ratelimit.PresetResource,
		Schemas:         []*validation.Schema{projectSchema},
	})).Methods(http.MethodPut)

	r.Handle("/api/orgs/{org_slug}/settings", c.BrowserAccessible(http.HandlerFunc(s.getSettings), orgResolver)).
		Methods(http.MethodGet)
	r.Handle("/api/orgs/{org_slug}/settings", c.BrowserAccessible(http.HandlerFunc(s.putSetting), orgResolver, settingsSchema)).
		Methods(http.MethodPost)

	r.Handle("/api/uploads", c.Wrap(http.HandlerFunc(s.upload), guard.RouteConfig{
		Preset:          guard.UserPrivate,
		RateLimitPreset: ratelimit.PresetUpload,
		Schemas:         []*validation.Schema{uploadSchema},
	})).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteNotFound(w)
	})

	return r
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httputil.ParseJSON(r, &req); err != nil {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	user, ok := s.users[req.Username]
	if !ok || user.password != req.Password {
		httputil.WriteUnauthorized(w)
		return
	}

	token := s.deps.Sessions.Create(user.identity)
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.deps.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	httputil.WriteSuccess(w, map[string]string{
		"token":   token,
		"user_id": user.identity.UserID,
	})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		s.deps.Sessions.Revoke(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.deps.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	httputil.WriteNoContent(w)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity.FromContext(r.Context())
	if !ok {
		httputil.WriteInternalError(w)
		return
	}
	httputil.WriteSuccess(w, ident)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	httputil.WriteSuccess(w, map[string]interface{}{
		"query":   q,
		"results": []string{},
	})
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := httputil.PathVar(r, "project_id")
	if err != nil {
		httputil.WriteNotFound(w)
		return
	}
	httputil.WriteSuccess(w, map[string]string{
		"project_id": projectID,
		"tenant_id":  contextkeys.TenantID(r.Context()),
	})
}

type projectUpdate struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := httputil.PathVar(r, "project_id")
	if err != nil {
		httputil.WriteNotFound(w)
		return
	}
	var upd projectUpdate
	if err := httputil.ParseJSON(r, &upd); err != nil {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	httputil.WriteSuccess(w, map[string]string{
		"project_id": projectID,
		"tenant_id":  contextkeys.TenantID(r.Context()),
		"name":       upd.Name,
	})
}

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	tenantID := contextkeys.TenantID(r.Context())
	s.mu.RLock()
	values := make(map[string]string, len(s.settings[tenantID]))
	for k, v := range s.settings[tenantID] {
		values[k] = v
	}
	s.mu.RUnlock()
	httputil.WriteSuccess(w, map[string]interface{}{
		"tenant_id": tenantID,
		"settings":  values,
	})
}

type settingUpdate struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (s *Server) putSetting(w http.ResponseWriter, r *http.Request) {
	tenantID := contextkeys.TenantID(r.Context())
	var upd settingUpdate
	if err := httputil.ParseJSON(r, &upd); err != nil {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	s.mu.Lock()
	if s.settings[tenantID] == nil {
		s.settings[tenantID] = make(map[string]string)
	}
	s.settings[tenantID][upd.Key] = upd.Value
	s.mu.Unlock()
	httputil.WriteSuccess(w, map[string]string{
		"tenant_id": tenantID,
		upd.Key:     upd.Value,
	})
}

type uploadRequest struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := httputil.ParseJSON(r, &req); err != nil {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	httputil.WriteCreated(w, map[string]interface{}{
		"filename": req.Filename,
		"size":     req.Size,
	})
}
