package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/arkfood/ordering-backend/api/middleware"
	cartsvc "github.com/arkfood/ordering-backend/internal/cart"
	"github.com/arkfood/ordering-backend/internal/catalog"
	"github.com/arkfood/ordering-backend/internal/notify"
	"github.com/arkfood/ordering-backend/pkg/enums"
	pkgerrors "github.com/arkfood/ordering-backend/pkg/errors"
	"github.com/arkfood/ordering-backend/pkg/kv"
	"github.com/arkfood/ordering-backend/pkg/types"
)

type stubCatalog struct {
	dishes map[string]catalog.DishDTO
}

func (s *stubCatalog) Dish(_ context.Context, id string) (catalog.DishDTO, error) {
	dish, ok := s.dishes[id]
	if !ok {
		return catalog.DishDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("dish %s not found", id))
	}
	return dish, nil
}

func (s *stubCatalog) Menu(context.Context) (catalog.MenuDTO, error) {
	return catalog.MenuDTO{}, nil
}

func (s *stubCatalog) Category(context.Context, enums.MenuCategory) ([]catalog.DishDTO, error) {
	return nil, nil
}

func (s *stubCatalog) Popular(context.Context, int) ([]catalog.DishDTO, error) {
	return nil, nil
}

func (s *stubCatalog) Recommendations(_ context.Context, inCart []catalog.DishDTO) ([]catalog.DishDTO, error) {
	if len(inCart) == 0 {
		return nil, nil
	}
	return []catalog.DishDTO{s.dishes["cola"]}, nil
}

func newCartTestDeps(t *testing.T) (*cartsvc.Manager, *stubCatalog) {
	t.Helper()

	weight := "350г"
	catalogStub := &stubCatalog{dishes: map[string]catalog.DishDTO{
		"shawarma-classic": {
			ID:       "shawarma-classic",
			Name:     "Шаурма Класична",
			Price:    120,
			Weight:   &weight,
			Category: "shawarma",
		},
		"cola": {
			ID:       "cola",
			Name:     "Кока-Кола",
			Price:    35,
			Category: "drinks",
		},
	}}

	manager, err := cartsvc.NewManager(cartsvc.ManagerParams{
		Origin:   "api-test",
		Catalog:  catalogStub,
		KV:       kv.NewMemoryBus().Client("api-test"),
		Notifier: notify.NewCapture(),
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	t.Cleanup(manager.Close)
	return manager, catalogStub
}

func withSession(r *http.Request) *http.Request {
	return r.WithContext(middleware.WithSessionID(r.Context(), "sess-1"))
}

func decodeSnapshot(t *testing.T, body []byte) cartsvc.Snapshot {
	t.Helper()
	var envelope struct {
		Data cartsvc.Snapshot `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("decoding snapshot envelope: %v", err)
	}
	return envelope.Data
}

func TestCartAddItemHandler(t *testing.T) {
	manager, _ := newCartTestDeps(t)
	handler := CartAddItem(manager, nil)

	body := strings.NewReader(`{"dishId":"shawarma-classic","quantity":2}`)
	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", body))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	snap := decodeSnapshot(t, rec.Body.Bytes())
	if snap.ItemCount != 2 || snap.Subtotal != 240 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestCartAddItemHandlerDefaultsQuantity(t *testing.T) {
	manager, _ := newCartTestDeps(t)
	handler := CartAddItem(manager, nil)

	body := strings.NewReader(`{"dishId":"cola"}`)
	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", body))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	snap := decodeSnapshot(t, rec.Body.Bytes())
	if snap.ItemCount != 1 {
		t.Fatalf("item count = %d", snap.ItemCount)
	}
}

func TestCartAddItemHandlerRejectsBadBody(t *testing.T) {
	manager, _ := newCartTestDeps(t)
	handler := CartAddItem(manager, nil)

	cases := []string{
		`{"quantity":2}`,
		`{"dishId":"cola","quantity":-1}`,
		`{"dishId":"cola","quantity":1,"bogus":true}`,
		`not json`,
	}
	for _, body := range cases {
		req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)))
		rec := httptest.NewRecorder()
		handler(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status = %d", body, rec.Code)
		}
	}
}

func TestCartAddItemHandlerUnknownDish(t *testing.T) {
	manager, _ := newCartTestDeps(t)
	handler := CartAddItem(manager, nil)

	body := strings.NewReader(`{"dishId":"ghost","quantity":1}`)
	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", body))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decoding error envelope: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeNotFound) {
		t.Fatalf("error code = %q", envelope.Error.Code)
	}
}

func TestCartAddItemHandlerRequiresSession(t *testing.T) {
	manager, _ := newCartTestDeps(t)
	handler := CartAddItem(manager, nil)

	body := strings.NewReader(`{"dishId":"cola","quantity":1}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", body)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestCartUpdateAndRemoveHandlers(t *testing.T) {
	manager, _ := newCartTestDeps(t)
	seedCart(t, manager, "cola", 2)

	update := CartUpdateItem(manager, nil)
	req := withSession(chiRequest(http.MethodPatch, "/api/v1/cart/items/cola", `{"quantity":5}`, "lineId", "cola"))
	rec := httptest.NewRecorder()
	update(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d body %s", rec.Code, rec.Body.String())
	}
	if snap := decodeSnapshot(t, rec.Body.Bytes()); snap.ItemCount != 5 {
		t.Fatalf("quantity after update = %d", snap.ItemCount)
	}

	remove := CartRemoveItem(manager, nil)
	req = withSession(chiRequest(http.MethodDelete, "/api/v1/cart/items/cola", "", "lineId", "cola"))
	rec = httptest.NewRecorder()
	remove(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove status = %d", rec.Code)
	}
	if snap := decodeSnapshot(t, rec.Body.Bytes()); snap.LineCount != 0 {
		t.Fatal("line survived removal")
	}

	rec = httptest.NewRecorder()
	remove(rec, withSession(chiRequest(http.MethodDelete, "/api/v1/cart/items/cola", "", "lineId", "cola")))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("double remove status = %d", rec.Code)
	}
}

func TestCartClearHandlerNeedsConfirm(t *testing.T) {
	manager, _ := newCartTestDeps(t)
	seedCart(t, manager, "cola", 2)

	handler := CartClear(manager, nil)

	req := withSession(httptest.NewRequest(http.MethodDelete, "/api/v1/cart", strings.NewReader(`{"confirm":false}`)))
	rec := httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("unconfirmed clear status = %d", rec.Code)
	}

	req = withSession(httptest.NewRequest(http.MethodDelete, "/api/v1/cart", strings.NewReader(`{"confirm":true}`)))
	rec = httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("confirmed clear status = %d", rec.Code)
	}
	if snap := decodeSnapshot(t, rec.Body.Bytes()); snap.LineCount != 0 {
		t.Fatal("cart not cleared")
	}
}

func TestCartFetchAndRecommendations(t *testing.T) {
	manager, catalogStub := newCartTestDeps(t)
	seedCart(t, manager, "shawarma-classic", 1)

	fetch := CartFetch(manager, nil)
	rec := httptest.NewRecorder()
	fetch(rec, withSession(httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)))
	if rec.Code != http.StatusOK {
		t.Fatalf("fetch status = %d", rec.Code)
	}
	if snap := decodeSnapshot(t, rec.Body.Bytes()); snap.ItemCount != 1 {
		t.Fatalf("fetched %d items", snap.ItemCount)
	}

	recommend := CartRecommendations(manager, catalogStub, nil)
	rec = httptest.NewRecorder()
	recommend(rec, withSession(httptest.NewRequest(http.MethodGet, "/api/v1/cart/recommendations", nil)))
	if rec.Code != http.StatusOK {
		t.Fatalf("recommendations status = %d", rec.Code)
	}
	var envelope struct {
		Data []catalog.DishDTO `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decoding recommendations: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].ID != "cola" {
		t.Fatalf("recommendations = %+v", envelope.Data)
	}
}

func TestCartExportImportHandlers(t *testing.T) {
	manager, _ := newCartTestDeps(t)
	seedCart(t, manager, "shawarma-classic", 2)

	export := CartExport(manager, nil)
	rec := httptest.NewRecorder()
	export(rec, withSession(httptest.NewRequest(http.MethodGet, "/api/v1/cart/export", nil)))
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "cart-export.json") {
		t.Fatalf("content disposition = %q", got)
	}

	// Import the export into a clean session on a separate manager.
	other, _ := newCartTestDeps(t)
	importHandler := CartImport(other, nil)
	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/import", strings.NewReader(rec.Body.String())))
	rec = httptest.NewRecorder()
	importHandler(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("import status = %d body %s", rec.Code, rec.Body.String())
	}
	if snap := decodeSnapshot(t, rec.Body.Bytes()); snap.ItemCount != 2 {
		t.Fatalf("imported %d items", snap.ItemCount)
	}
}

func seedCart(t *testing.T, manager *cartsvc.Manager, dishID string, quantity int) {
	t.Helper()
	store, err := manager.Store(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if _, err := store.AddItem(context.Background(), dishID, "", quantity, false); err != nil {
		t.Fatalf("seeding cart: %v", err)
	}
}

func chiRequest(method, target, body, paramKey, paramValue string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(paramKey, paramValue)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}
