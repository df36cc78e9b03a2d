package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes mounts every page, form and probe endpoint on r.
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	// Health and version
	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet)
	r.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)

	// Public pages
	r.HandleFunc("/", h.Index).Methods(http.MethodGet)
	r.HandleFunc("/login", h.LoginPage).Methods(http.MethodGet)
	r.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/logout", h.Logout).Methods(http.MethodGet)
	r.HandleFunc("/register", h.RegisterPage).Methods(http.MethodGet)
	r.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/search", h.Search).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/authors", h.Authors).Methods(http.MethodGet)
	r.HandleFunc("/author/{id:[0-9]+}", h.AuthorDetail).Methods(http.MethodGet)
	r.HandleFunc("/album/{id:[0-9]+}", h.AlbumView).Methods(http.MethodGet)
	r.HandleFunc("/book/{id:[0-9]+}", h.BookDetail).Methods(http.MethodGet)
	r.HandleFunc("/chapter/{id:[0-9]+}", h.ChapterDetail).Methods(http.MethodGet)

	// Logged-in users
	r.HandleFunc("/favorites", h.requireAuthenticated(h.Favorites)).Methods(http.MethodGet)
	r.HandleFunc("/favorite/toggle/{id:[0-9]+}", h.requireAuthenticated(h.ToggleFavorite)).Methods(http.MethodPost)
	r.HandleFunc("/settings", h.requireAuthenticated(h.SettingsPage)).Methods(http.MethodGet)
	r.HandleFunc("/settings", h.requireAuthenticated(h.Settings)).Methods(http.MethodPost)

	// Author tools
	r.HandleFunc("/author/dashboard", h.requireAuthor(h.AuthorDashboard)).Methods(http.MethodGet)
	r.HandleFunc("/author/book/create", h.requireAuthor(h.CreateBook)).Methods(http.MethodPost)
	r.HandleFunc("/author/album/create", h.requireAuthor(h.CreateAlbum)).Methods(http.MethodPost)
	r.HandleFunc("/author/book/{id:[0-9]+}/chapter/create", h.requireAuthor(h.CreateChapter)).Methods(http.MethodPost)
	r.HandleFunc("/author/chapter/{id:[0-9]+}/delete", h.requireAuthor(h.DeleteChapter)).Methods(http.MethodPost)
	r.HandleFunc("/author/note/create", h.requireAuthor(h.CreateNote)).Methods(http.MethodPost)
	r.HandleFunc("/author/note/{id:[0-9]+}/delete", h.requireAuthor(h.DeleteNote)).Methods(http.MethodPost)

	// Admin
	r.HandleFunc("/admin", h.requireAdmin(h.AdminDashboard)).Methods(http.MethodGet)
	r.HandleFunc("/admin/export", h.requireAdmin(h.AdminExportPage)).Methods(http.MethodGet)
	r.HandleFunc("/admin/export", h.requireAdmin(h.AdminExport)).Methods(http.MethodPost)
}
