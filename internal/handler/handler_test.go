package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openkart/storefront/internal/auth"
	"github.com/openkart/storefront/internal/domain/message"
	"github.com/openkart/storefront/internal/domain/order"
	"github.com/openkart/storefront/internal/domain/product"
	"github.com/openkart/storefront/internal/domain/settings"
	"github.com/openkart/storefront/internal/domain/user"
)

// --- Mock implementations ---

type mockProductRepo struct {
	byID    map[string]*product.Product
	deleted []string
	err     error
}

func newMockProductRepo(products ...product.Product) *mockProductRepo {
	byID := make(map[string]*product.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	return &mockProductRepo{byID: byID}
}

func (m *mockProductRepo) List(_ context.Context) ([]product.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	items := make([]product.Product, 0, len(m.byID))
	for _, p := range m.byID {
		items = append(items, *p)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (m *mockProductRepo) ListByCategory(ctx context.Context, category string) ([]product.Product, error) {
	all, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]product.Product, 0, len(all))
	for _, p := range all {
		if p.Category == category {
			items = append(items, p)
		}
	}
	return items, nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

func (m *mockProductRepo) Upsert(_ context.Context, p *product.Product) error {
	if m.err != nil {
		return m.err
	}
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

func (m *mockProductRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return product.ErrNotFound
	}
	delete(m.byID, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockOrderRepo struct {
	byID    map[string]*order.Order
	emiApps map[string]*order.EMIApplication
	err     error
}

func newMockOrderRepo(orders ...order.Order) *mockOrderRepo {
	byID := make(map[string]*order.Order, len(orders))
	for i := range orders {
		byID[orders[i].ID] = &orders[i]
	}
	return &mockOrderRepo{byID: byID, emiApps: map[string]*order.EMIApplication{}}
}

func (m *mockOrderRepo) Create(_ context.Context, o *order.Order) error {
	if m.err != nil {
		return m.err
	}
	cp := *o
	cp.CreatedAt = time.Now()
	m.byID[o.ID] = &cp
	return nil
}

func (m *mockOrderRepo) CreateWithEMI(ctx context.Context, o *order.Order, app *order.EMIApplication) error {
	if err := m.Create(ctx, o); err != nil {
		return err
	}
	cp := *app
	m.emiApps[o.ID] = &cp
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*order.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return o, nil
}

func (m *mockOrderRepo) GetEMIApplication(_ context.Context, orderID string) (*order.EMIApplication, error) {
	app, ok := m.emiApps[orderID]
	if !ok {
		return nil, order.ErrNotFound
	}
	return app, nil
}

func (m *mockOrderRepo) List(_ context.Context) ([]order.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	items := make([]order.Order, 0, len(m.byID))
	for _, o := range m.byID {
		items = append(items, *o)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (m *mockOrderRepo) SetStatus(_ context.Context, id string, status order.Status, deliveryDate *time.Time) (*order.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	o.Status = status
	o.DeliveryDate = deliveryDate
	cp := *o
	return &cp, nil
}

func (m *mockOrderRepo) CountConfirmedByUser(_ context.Context, userID string) (int, error) {
	n := 0
	for _, o := range m.byID {
		if o.UserID == userID && o.Status == order.StatusConfirmed {
			n++
		}
	}
	return n, nil
}

func (m *mockOrderRepo) Count(_ context.Context) (int, error) {
	return len(m.byID), nil
}

type mockUserRepo struct {
	byID    map[string]*user.User
	deleted []string
}

func newMockUserRepo(users ...user.User) *mockUserRepo {
	byID := make(map[string]*user.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	return &mockUserRepo{byID: byID}
}

func (m *mockUserRepo) Create(_ context.Context, u *user.User) error {
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*user.User, error) {
	for _, u := range m.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *mockUserRepo) GetByPhone(_ context.Context, phone string) (*user.User, error) {
	for _, u := range m.byID {
		if u.Phone == phone {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *mockUserRepo) List(_ context.Context) ([]user.User, error) {
	items := make([]user.User, 0, len(m.byID))
	for _, u := range m.byID {
		items = append(items, *u)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return user.ErrNotFound
	}
	delete(m.byID, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockSettingsRepo struct {
	stored     *settings.Settings
	replaceErr error
}

func (m *mockSettingsRepo) Get(_ context.Context) (*settings.Settings, error) {
	if m.stored == nil {
		return settings.Defaults(), nil
	}
	cp := *m.stored
	return &cp, nil
}

func (m *mockSettingsRepo) Replace(_ context.Context, s *settings.Settings) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	current, _ := m.Get(context.Background())
	if s.Version != current.Version {
		return settings.ErrVersionConflict
	}
	cp := *s
	cp.Version++
	cp.UpdatedAt = time.Now()
	m.stored = &cp
	*s = cp
	return nil
}

type mockMessageRepo struct {
	items []message.Message
}

func (m *mockMessageRepo) Create(_ context.Context, msg *message.Message) (*message.Message, error) {
	cp := *msg
	cp.CreatedAt = time.Now()
	m.items = append(m.items, cp)
	return &cp, nil
}

func (m *mockMessageRepo) ListForUser(_ context.Context, userID string) ([]message.Message, error) {
	items := make([]message.Message, 0)
	for _, msg := range m.items {
		if msg.UserID == userID {
			items = append(items, msg)
		}
	}
	return items, nil
}

func (m *mockMessageRepo) Latest(_ context.Context) (*message.Message, error) {
	for i := len(m.items) - 1; i >= 0; i-- {
		if m.items[i].SenderType == message.SenderUser {
			cp := m.items[i]
			return &cp, nil
		}
	}
	return nil, nil
}

type mockUploader struct {
	uploads []string
	err     error
}

func (m *mockUploader) Upload(_ context.Context, _ []byte, folder string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	url := "https://media.test/" + folder + "/upload.jpg"
	m.uploads = append(m.uploads, url)
	return url, nil
}

type nopNotifier struct{}

func (nopNotifier) OrderCreated(context.Context, *order.Order, string) {}

type nopIdem struct{}

func (nopIdem) Claim(_ context.Context, _, _ string) (string, bool, error) { return "", true, nil }
func (nopIdem) Release(context.Context, string) error                      { return nil }

// --- Test environment ---

type env struct {
	router   http.Handler
	tokens   *auth.Manager
	products *mockProductRepo
	orders   *mockOrderRepo
	users    *mockUserRepo
	settings *mockSettingsRepo
	messages *mockMessageRepo
	uploader *mockUploader
}

func newEnv(t *testing.T) *env {
	t.Helper()

	e := &env{
		tokens:   auth.NewManager([]byte("test-secret"), time.Hour),
		products: newMockProductRepo(),
		orders:   newMockOrderRepo(),
		users:    newMockUserRepo(),
		settings: &mockSettingsRepo{},
		messages: &mockMessageRepo{},
		uploader: &mockUploader{},
	}

	userSvc := user.NewService(e.users)
	orderSvc := order.NewService(order.Config{DeliveryLeadDays: 15},
		e.products, e.orders, e.uploader, nopNotifier{}, nopIdem{})

	h := New(e.tokens, userSvc, e.products, orderSvc, e.orders, e.settings, e.messages, e.uploader)
	e.router = h.Routes()
	return e
}

func (e *env) tokenFor(t *testing.T, id string, admin bool) string {
	t.Helper()

	token, err := e.tokens.Sign(&user.User{ID: id, Username: "tester", IsAdmin: admin})
	require.NoError(t, err)
	return token
}

// --- Request helpers ---

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func doForm(t *testing.T, router http.Handler, method, path, token string, fields map[string]string, files map[string][]byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, value := range fields {
		require.NoError(t, w.WriteField(name, value))
	}
	for name, data := range files {
		fw, err := w.CreateFormFile(name, name+".jpg")
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}
