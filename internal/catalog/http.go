package catalog

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"EstiloSol/pkg/kit"
)

type Server struct {
	Catalog        *Service
	Log            *zap.Logger
	RefreshLimiter *kit.IPRateLimiter
}

type listResponse struct {
	Status       Status    `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	Total        int       `json:"total"`
	Products     []Product `json:"products"`
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/products", s.list)
	r.Get("/products/{slug}", s.get)
	r.Get("/departments", s.departments)
	r.Get("/categories", s.categories)
	r.Post("/catalog/refresh", s.refresh)

	return r
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	sortBy, ok := ParseSortOrder(q.Get("sort"))
	if !ok {
		kit.WriteError(w, r, http.StatusBadRequest, "unknown sort", map[string]any{"sort": q.Get("sort")})
		return
	}

	force := q.Get("force") == "1"
	st := s.Catalog.LoadProducts(r.Context(), force)

	filtered := FilterProducts(st.Products, FilterState{
		SearchTerm: q.Get("search"),
		Department: q.Get("department"),
		Category:   q.Get("category"),
		SortBy:     sortBy,
	})

	kit.WriteJSON(w, http.StatusOK, listResponse{
		Status:       st.Status,
		ErrorMessage: st.ErrorMessage,
		Total:        len(filtered),
		Products:     filtered,
	})
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if decoded, err := url.PathUnescape(slug); err == nil {
		slug = decoded
	}

	s.Catalog.EnsureFresh(r.Context())

	p, found := s.Catalog.ProductBySlug(slug)
	if !found {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"slug": slug})
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) departments(w http.ResponseWriter, r *http.Request) {
	s.Catalog.EnsureFresh(r.Context())
	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"departments": s.Catalog.Departments(),
	})
}

func (s *Server) categories(w http.ResponseWriter, r *http.Request) {
	s.Catalog.EnsureFresh(r.Context())
	dept := r.URL.Query().Get("department")
	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"department": dept,
		"categories": s.Catalog.Categories(dept),
	})
}

// refresh forces a live fetch. Rate-limited per IP so a stuck client
// cannot hammer the sheet endpoint.
func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	if s.RefreshLimiter != nil && !s.RefreshLimiter.Allow(kit.ClientIP(r)) {
		kit.WriteError(w, r, http.StatusTooManyRequests, "too many requests", nil)
		return
	}

	st := s.Catalog.LoadProducts(r.Context(), true)
	if st.Status == StatusError && s.Log != nil {
		s.Log.Warn("manual refresh failed", zap.String("error", st.ErrorMessage))
	}

	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"status":        st.Status,
		"error_message": st.ErrorMessage,
		"products":      len(st.Products),
		"last_fetch":    st.LastFetch,
	})
}
