package cart

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"EstiloSol/pkg/kit"
)

type Server struct {
	Store       Store
	SellerPhone string
	Log         *zap.Logger
}

const maxBodyBytes = 1 << 20

type updateQtyReq struct {
	Qty int `json:"qty"`
}

type checkoutResponse struct {
	Message string `json:"message"`
	URL     string `json:"url,omitempty"`
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Post("/", s.create)
	r.Route("/{cartID}", func(rr chi.Router) {
		rr.Get("/", s.get)
		rr.Delete("/", s.clear)
		rr.Post("/items", s.addItem)
		rr.Put("/items/{productID}", s.updateQty)
		rr.Delete("/items/{productID}", s.removeItem)
		rr.Post("/checkout", s.checkout)
	})

	return r
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	c := Cart{
		ID:        "c_" + uuid.NewString(),
		Items:     []Item{},
		UpdatedAt: time.Now().UTC(),
	}

	if err := s.Store.Put(r.Context(), c); err != nil {
		s.storeError(w, r, "create cart", err)
		return
	}
	kit.WriteJSON(w, http.StatusCreated, c)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	c, ok := s.loadCart(w, r)
	if !ok {
		return
	}
	kit.WriteJSON(w, http.StatusOK, c)
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	c, ok := s.loadCart(w, r)
	if !ok {
		return
	}

	var it Item
	if err := decodeJSON(w, r, &it); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}
	it.ProductID = strings.TrimSpace(it.ProductID)
	if it.ProductID == "" || it.Qty <= 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "bad item", nil)
		return
	}
	if it.UnitPrice < 0 {
		it.UnitPrice = 0
	}

	c.Items = addItem(c.Items, it)
	s.save(w, r, c)
}

func (s *Server) updateQty(w http.ResponseWriter, r *http.Request) {
	c, ok := s.loadCart(w, r)
	if !ok {
		return
	}

	var req updateQtyReq
	if err := decodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	c.Items = setQty(c.Items, chi.URLParam(r, "productID"), req.Qty)
	s.save(w, r, c)
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	c, ok := s.loadCart(w, r)
	if !ok {
		return
	}

	c.Items = removeItem(c.Items, chi.URLParam(r, "productID"))
	s.save(w, r, c)
}

func (s *Server) clear(w http.ResponseWriter, r *http.Request) {
	c, ok := s.loadCart(w, r)
	if !ok {
		return
	}

	c.Items = []Item{}
	s.save(w, r, c)
}

func (s *Server) checkout(w http.ResponseWriter, r *http.Request) {
	c, ok := s.loadCart(w, r)
	if !ok {
		return
	}
	if len(c.Items) == 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "empty cart", nil)
		return
	}

	var req CheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	msg := BuildMessage(c, req)
	kit.WriteJSON(w, http.StatusOK, checkoutResponse{
		Message: msg,
		URL:     CheckoutURL(s.SellerPhone, msg),
	})
}

func (s *Server) loadCart(w http.ResponseWriter, r *http.Request) (Cart, bool) {
	id := chi.URLParam(r, "cartID")

	c, found, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.storeError(w, r, "get cart", err)
		return Cart{}, false
	}
	if !found {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return Cart{}, false
	}
	return c, true
}

func (s *Server) save(w http.ResponseWriter, r *http.Request, c Cart) {
	c.UpdatedAt = time.Now().UTC()
	if err := s.Store.Put(r.Context(), c); err != nil {
		s.storeError(w, r, "put cart", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, c)
}

func (s *Server) storeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if s.Log != nil {
		s.Log.Error("cart store failed", zap.String("op", op), zap.Error(err))
	}
	kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("extra data after json object")
	}
	return nil
}
