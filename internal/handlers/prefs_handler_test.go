package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vistamarket/marketplace-gateway/internal/middleware"
	"github.com/vistamarket/marketplace-gateway/internal/prefs"
	"github.com/vistamarket/marketplace-gateway/internal/session"
	"github.com/vistamarket/marketplace-gateway/pkg/logger"
)

func newPrefsTestRouter(t *testing.T, store prefs.Store) (*chi.Mux, string) {
	t.Helper()

	sessions := session.NewStore(time.Hour)
	sess := sessions.Create(session.Identity{UserID: 11, EmpresaID: 3})
	handler := NewPrefsHandler(store, logger.New("error"))

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionAuth(sessions))
		r.Get("/api/preferencias", handler.GetPrefs)
		r.Put("/api/preferencias", handler.SavePrefs)
		r.Delete("/api/preferencias", handler.ResetPrefs)
	})

	return r, sess.Token
}

func decodeTheme(t *testing.T, w *httptest.ResponseRecorder) prefs.Theme {
	t.Helper()
	var theme prefs.Theme
	if err := json.NewDecoder(w.Body).Decode(&theme); err != nil {
		t.Fatalf("failed to decode theme: %v", err)
	}
	return theme
}

func TestPrefsHandler_DefaultsBeforeSave(t *testing.T) {
	router, token := newPrefsTestRouter(t, prefs.NewMemoryStore())

	req := httptest.NewRequest(http.MethodGet, "/api/preferencias", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := decodeTheme(t, w); got != prefs.Defaults() {
		t.Errorf("theme = %+v, want defaults", got)
	}
}

func TestPrefsHandler_SaveThenGet(t *testing.T) {
	router, token := newPrefsTestRouter(t, prefs.NewMemoryStore())

	body := `{"primary-color": "#0ea5e9", "body-font": "Roboto", "font-size": "14px", "dark-mode": true}`
	req := httptest.NewRequest(http.MethodPut, "/api/preferencias", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("save status = %d, want %d", w.Code, http.StatusOK)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/preferencias", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	got := decodeTheme(t, w)
	if got.PrimaryColor != "#0ea5e9" || !got.DarkMode {
		t.Errorf("theme after save = %+v", got)
	}
}

func TestPrefsHandler_ResetRestoresDefaults(t *testing.T) {
	router, token := newPrefsTestRouter(t, prefs.NewMemoryStore())

	body := `{"primary-color": "#0ea5e9", "dark-mode": true}`
	req := httptest.NewRequest(http.MethodPut, "/api/preferencias", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("save status = %d, want %d", w.Code, http.StatusOK)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/preferencias", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("reset status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := decodeTheme(t, w); got != prefs.Defaults() {
		t.Errorf("reset response = %+v, want defaults", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/preferencias", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if got := decodeTheme(t, w); got != prefs.Defaults() {
		t.Errorf("theme after reset = %+v, want defaults", got)
	}
}

func TestPrefsHandler_MalformedBody(t *testing.T) {
	router, token := newPrefsTestRouter(t, prefs.NewMemoryStore())

	req := httptest.NewRequest(http.MethodPut, "/api/preferencias", strings.NewReader(`{not json`))
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
