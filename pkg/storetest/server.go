// Package storetest is an in-memory implementation of the record store
// service contract the ordertrack client consumes. It backs the package
// tests end to end and powers `ordertrack serve` for local development. It
// is not a production server: state lives in maps and resets with the
// process.
package storetest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/hmkim/ordertrack/pkg/client"
	"github.com/hmkim/ordertrack/pkg/models"
)

type seedUser struct {
	password string
	user     models.User
}

// Server implements the record store API over in-memory state.
type Server struct {
	mu       sync.Mutex
	secret   []byte
	users    map[string]seedUser
	orders   map[string]models.WireOrder
	items    map[int64]models.WireInventoryItem
	logs     map[int64][]models.WireInventoryLog
	orderSeq int
	itemSeq  int64
	requests []string
	subs     map[*websocket.Conn]struct{}
	router   *mux.Router
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// New returns a server seeded with one user per role; each account's
// password equals its username.
func New() *Server {
	s := &Server{
		secret: []byte("storetest-secret"),
		users: map[string]seedUser{
			"admin":  {password: "admin", user: models.User{ID: 1, Username: "admin", Name: "Admin", Role: models.RoleAdmin}},
			"master": {password: "master", user: models.User{ID: 2, Username: "master", Name: "Master", Role: models.RoleMaster}},
			"staff":  {password: "staff", user: models.User{ID: 3, Username: "staff", Name: "Staff", Role: models.RoleStaff}},
		},
		orders: make(map[string]models.WireOrder),
		items:  make(map[int64]models.WireInventoryItem),
		logs:   make(map[int64][]models.WireInventoryLog),
		subs:   make(map[*websocket.Conn]struct{}),
		logger: zerolog.Nop(),
	}
	s.routes()
	return s
}

// SetLogger attaches a logger, used by `ordertrack serve`.
func (s *Server) SetLogger(logger zerolog.Logger) {
	s.logger = logger
}

func (s *Server) routes() {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/login", s.handleLogin).Methods("POST")
	api.HandleFunc("/auth/logout", s.requireAuth(s.handleLogout)).Methods("POST")
	api.HandleFunc("/auth/me", s.requireAuth(s.handleMe)).Methods("GET")

	api.HandleFunc("/orders", s.requireAuth(s.handleListOrders)).Methods("GET")
	api.HandleFunc("/orders", s.requireAuth(s.handleCreateOrder)).Methods("POST")
	api.HandleFunc("/orders/{id}", s.requireAuth(s.handleGetOrder)).Methods("GET")
	api.HandleFunc("/orders/{id}", s.requireAuth(s.handleUpdateOrder)).Methods("PUT")
	api.HandleFunc("/orders/{id}", s.requireAuth(s.handleDeleteOrder)).Methods("DELETE")

	api.HandleFunc("/inventory", s.requireAuth(s.handleListInventory)).Methods("GET")
	api.HandleFunc("/inventory", s.requireAuth(s.handleCreateItem)).Methods("POST")
	api.HandleFunc("/inventory/{id}", s.requireAuth(s.handleUpdateItem)).Methods("PUT")
	api.HandleFunc("/inventory/{id}", s.requireAuth(s.handleDeleteItem)).Methods("DELETE")
	api.HandleFunc("/inventory/{id}/restore", s.requireAuth(s.handleRestoreItem)).Methods("POST")
	api.HandleFunc("/inventory/{id}/logs", s.requireAuth(s.handleItemLogs)).Methods("GET")

	api.HandleFunc("/events", s.handleEvents).Methods("GET")

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.Method+" "+r.URL.Path)
	s.mu.Unlock()
	s.logger.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("store request")
	s.router.ServeHTTP(w, r)
}

// Requests returns every request seen so far as "METHOD /path" strings.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// CountRequests counts recorded requests equal to line.
func (s *Server) CountRequests(line string) int {
	n := 0
	for _, r := range s.Requests() {
		if r == line {
			n++
		}
	}
	return n
}

// ResetRequests clears the request log.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// --- auth -----------------------------------------------------------------

func (s *Server) mintToken(u models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":      strconv.FormatInt(u.ID, 10),
		"username": u.Username,
		"name":     u.Name,
		"role":     string(u.Role),
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) userFromRequest(r *http.Request) (models.User, bool) {
	token := ""
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		token = strings.TrimPrefix(auth, "Bearer ")
	} else {
		// The websocket endpoint may pass the credential as a query param.
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		return models.User{}, false
	}
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return models.User{}, false
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return models.User{}, false
	}
	username, _ := claims["username"].(string)
	s.mu.Lock()
	defer s.mu.Unlock()
	seed, ok := s.users[username]
	if !ok {
		return models.User{}, false
	}
	return seed.user, true
}

type authedHandler func(w http.ResponseWriter, r *http.Request, u models.User)

func (s *Server) requireAuth(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := s.userFromRequest(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid or missing credential")
			return
		}
		next(w, r, u)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req client.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	seed, ok := s.users[req.Username]
	s.mu.Unlock()
	if !ok || seed.password != req.Password {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := s.mintToken(seed.user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, client.SignInResponse{Token: token, User: seed.user})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request, _ models.User) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleMe(w http.ResponseWriter, _ *http.Request, u models.User) {
	writeJSON(w, u)
}

// --- orders ---------------------------------------------------------------

func elevatedRole(u models.User) bool {
	return u.Role == models.RoleAdmin || u.Role == models.RoleMaster
}

// SeedOrder inserts an order directly, assigning an ID when empty.
func (s *Server) SeedOrder(w models.WireOrder) models.WireOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w.ID == "" {
		s.orderSeq++
		w.ID = fmt.Sprintf("PO-%06d", s.orderSeq)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if w.CreatedAt == "" {
		w.CreatedAt = now
	}
	if w.UpdatedAt == "" {
		w.UpdatedAt = now
	}
	if w.Status == "" {
		w.Status = string(models.StatusPending)
	}
	s.orders[w.ID] = w
	return w
}

// SeedItem inserts an inventory item directly, assigning an ID when zero.
func (s *Server) SeedItem(w models.WireInventoryItem) models.WireInventoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w.ID == 0 {
		s.itemSeq++
		w.ID = s.itemSeq
	} else if w.ID > s.itemSeq {
		s.itemSeq = w.ID
	}
	if w.Visible == nil {
		one := 1
		w.Visible = &one
	}
	if w.UpdatedAt == "" {
		w.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	s.items[w.ID] = w
	return w
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request, _ models.User) {
	year := r.URL.Query().Get("year")
	month := r.URL.Query().Get("month")
	search := strings.ToLower(r.URL.Query().Get("search"))

	s.mu.Lock()
	out := make([]models.WireOrder, 0, len(s.orders))
	for _, o := range s.orders {
		if year != "" && !strings.HasPrefix(o.OrderDate, year) {
			continue
		}
		if month != "" && (len(o.OrderDate) < 7 || o.OrderDate[5:7] != month) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(o.ItemCode), search) &&
			!strings.Contains(strings.ToLower(o.ColorName), search) {
			continue
		}
		out = append(out, o)
	}
	s.mu.Unlock()
	writeJSON(w, out)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request, _ models.User) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	o, ok := s.orders[id]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	writeJSON(w, o)
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request, _ models.User) {
	var patch models.WireOrderPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	s.orderSeq++
	now := time.Now().UTC().Format(time.RFC3339)
	o := models.WireOrder{
		ID:        fmt.Sprintf("PO-%06d", s.orderSeq),
		Status:    string(models.StatusPending),
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyOrderPatch(&o, patch)
	s.orders[o.ID] = o
	s.mu.Unlock()

	s.broadcast(client.Event{Resource: "orders", Action: "create", Key: o.ID})
	writeJSON(w, o)
}

func (s *Server) handleUpdateOrder(w http.ResponseWriter, r *http.Request, u models.User) {
	id := mux.Vars(r)["id"]
	var patch models.WireOrderPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	o, ok := s.orders[id]
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	if patch.Status != "" && patch.Status != o.Status && !elevatedRole(u) {
		s.mu.Unlock()
		writeError(w, http.StatusForbidden, "role may not change order status")
		return
	}
	applyOrderPatch(&o, patch)
	o.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	s.orders[id] = o
	s.mu.Unlock()

	s.broadcast(client.Event{Resource: "orders", Action: "update", Key: id})
	writeJSON(w, o)
}

func (s *Server) handleDeleteOrder(w http.ResponseWriter, r *http.Request, u models.User) {
	id := mux.Vars(r)["id"]
	if !elevatedRole(u) {
		writeError(w, http.StatusForbidden, "role may not delete orders")
		return
	}
	s.mu.Lock()
	_, ok := s.orders[id]
	delete(s.orders, id)
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	s.broadcast(client.Event{Resource: "orders", Action: "delete", Key: id})
	w.WriteHeader(http.StatusNoContent)
}

func applyOrderPatch(o *models.WireOrder, p models.WireOrderPatch) {
	o.OrderDate = strOrEmpty(p.OrderDate)
	o.ItemCode = p.ItemCode
	o.ColorName = p.ColorName
	o.OrderQuantity = p.OrderQuantity
	o.ExpectedArrivalStartDate = strOrEmpty(p.ExpectedArrivalStartDate)
	o.ExpectedArrivalEndDate = strOrEmpty(p.ExpectedArrivalEndDate)
	o.ArrivalDate = p.ArrivalDate
	o.ArrivalQuantity = p.ArrivalQuantity
	o.SpecialNote = p.SpecialNote
	o.Remarks = p.Remarks
	if p.Status != "" {
		o.Status = p.Status
	}
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// --- inventory ------------------------------------------------------------

func (s *Server) handleListInventory(w http.ResponseWriter, _ *http.Request, _ models.User) {
	s.mu.Lock()
	out := make([]models.WireInventoryItem, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it)
	}
	s.mu.Unlock()
	writeJSON(w, out)
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request, u models.User) {
	if !elevatedRole(u) {
		writeError(w, http.StatusForbidden, "role may not add inventory")
		return
	}
	var it models.WireInventoryItem
	if err := json.NewDecoder(r.Body).Decode(&it); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	s.itemSeq++
	it.ID = s.itemSeq
	one := 1
	it.Visible = &one
	it.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	s.items[it.ID] = it
	if it.Stock != 0 {
		s.logs[it.ID] = append(s.logs[it.ID], models.WireInventoryLog{
			CreatedAt: it.UpdatedAt,
			Quantity:  it.Stock,
			Memo:      "initial stock",
			CreatedBy: u.Username,
		})
	}
	s.mu.Unlock()

	s.broadcast(client.Event{Resource: "inventory", Action: "create", Key: strconv.FormatInt(it.ID, 10)})
	writeJSON(w, it)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request, u models.User) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	var patch models.InventoryPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	it, ok := s.items[id]
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if patch.ItemName != nil {
		it.ItemName = *patch.ItemName
	}
	if patch.Color != nil {
		it.Color = patch.Color
	}
	if patch.Stock != nil && *patch.Stock != it.Stock {
		memo := patch.Memo
		if memo == "" {
			memo = "stock adjustment"
		}
		s.logs[id] = append(s.logs[id], models.WireInventoryLog{
			CreatedAt: now,
			Quantity:  *patch.Stock - it.Stock,
			Memo:      memo,
			CreatedBy: u.Username,
		})
		it.Stock = *patch.Stock
	}
	if patch.SafetyStock != nil {
		it.SafetyStock = *patch.SafetyStock
	}
	if patch.Unit != nil {
		it.Unit = *patch.Unit
	}
	if patch.Location != nil {
		it.Location = patch.Location
	}
	it.UpdatedAt = now
	s.items[id] = it
	s.mu.Unlock()

	s.broadcast(client.Event{Resource: "inventory", Action: "update", Key: strconv.FormatInt(id, 10)})
	writeJSON(w, it)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request, u models.User) {
	if !elevatedRole(u) {
		writeError(w, http.StatusForbidden, "role may not delete inventory")
		return
	}
	s.setVisible(w, r, 0, "delete")
}

func (s *Server) handleRestoreItem(w http.ResponseWriter, r *http.Request, u models.User) {
	if !elevatedRole(u) {
		writeError(w, http.StatusForbidden, "role may not restore inventory")
		return
	}
	s.setVisible(w, r, 1, "restore")
}

func (s *Server) setVisible(w http.ResponseWriter, r *http.Request, visible int, action string) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	s.mu.Lock()
	it, ok := s.items[id]
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	v := visible
	it.Visible = &v
	it.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	s.items[id] = it
	s.mu.Unlock()

	s.broadcast(client.Event{Resource: "inventory", Action: action, Key: strconv.FormatInt(id, 10)})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleItemLogs(w http.ResponseWriter, r *http.Request, _ models.User) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	s.mu.Lock()
	logs := append([]models.WireInventoryLog(nil), s.logs[id]...)
	s.mu.Unlock()
	writeJSON(w, logs)
}

// --- change feed ----------------------------------------------------------

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.userFromRequest(r); !ok {
		writeError(w, http.StatusUnauthorized, "invalid or missing credential")
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.subs[conn] = struct{}{}
	s.mu.Unlock()

	// Reader loop only exists to notice the peer going away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	s.mu.Lock()
	delete(s.subs, conn)
	s.mu.Unlock()
	conn.Close()
}

func (s *Server) broadcast(ev client.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.subs {
		if err := conn.WriteJSON(ev); err != nil {
			delete(s.subs, conn)
			conn.Close()
		}
	}
}

// --- helpers --------------------------------------------------------------

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
