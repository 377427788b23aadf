package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vistamarket/marketplace-gateway/internal/cart"
	"github.com/vistamarket/marketplace-gateway/internal/middleware"
	"github.com/vistamarket/marketplace-gateway/internal/session"
	"github.com/vistamarket/marketplace-gateway/pkg/logger"
)

func TestSessionHandler_Lifecycle(t *testing.T) {
	log := logger.New("error")
	sessions := session.NewStore(time.Hour)
	carts := cart.NewStore()
	handler := NewSessionHandler(sessions, carts, log)

	r := chi.NewRouter()
	r.Post("/api/sesion", handler.CreateSession)
	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionAuth(sessions))
		r.Delete("/api/sesion", handler.DeleteSession)
	})

	// Create
	body, _ := json.Marshal(session.Identity{UserID: 11, EmpresaID: 3, Permisos: []string{"ventas.administrar"}})
	req := httptest.NewRequest(http.MethodPost, "/api/sesion", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want %d", w.Code, http.StatusCreated)
	}

	var resp sessionResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode session response: %v", err)
	}
	if resp.Token == "" || resp.Usuario != 11 || resp.Empresa != 3 {
		t.Errorf("session response = %+v", resp)
	}

	// Delete
	req = httptest.NewRequest(http.MethodDelete, "/api/sesion", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if _, ok := sessions.Get(resp.Token); ok {
		t.Error("session still resolvable after logout")
	}
}

func TestSessionHandler_RejectsIncompleteIdentity(t *testing.T) {
	log := logger.New("error")
	handler := NewSessionHandler(session.NewStore(time.Hour), cart.NewStore(), log)

	tests := []struct {
		name string
		body string
	}{
		{"missing empresa", `{"usuario": 11}`},
		{"missing usuario", `{"empresa": 3}`},
		{"empty body", `{}`},
		{"invalid JSON", `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/sesion", bytes.NewReader([]byte(tt.body)))
			w := httptest.NewRecorder()
			handler.CreateSession(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
		})
	}
}
