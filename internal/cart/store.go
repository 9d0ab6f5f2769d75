package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/arkfood/ordering-backend/internal/catalog"
	"github.com/arkfood/ordering-backend/internal/hours"
	"github.com/arkfood/ordering-backend/internal/notify"
	"github.com/arkfood/ordering-backend/pkg/config"
	"github.com/arkfood/ordering-backend/pkg/enums"
	pkgerrors "github.com/arkfood/ordering-backend/pkg/errors"
	"github.com/arkfood/ordering-backend/pkg/kv"
	"github.com/arkfood/ordering-backend/pkg/logger"
	"github.com/arkfood/ordering-backend/pkg/metrics"
)

var (
	// ErrLineNotFound reports a remove/update against a line that is not
	// in the cart. Benign: state is unchanged.
	ErrLineNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	// ErrCartFull reports the cart-wide item limit.
	ErrCartFull = pkgerrors.New(pkgerrors.CodeLimitExceeded, "cart item limit reached")
	// ErrLineLimit reports the per-line quantity limit.
	ErrLineLimit = pkgerrors.New(pkgerrors.CodeLimitExceeded, "quantity limit per item reached")
	// ErrClearDeclined reports that the confirmer aborted a clear.
	ErrClearDeclined = pkgerrors.New(pkgerrors.CodeConflict, "cart clear was not confirmed")
)

// Config carries the cart business rules.
type Config struct {
	MinOrderAmount        int
	DeliveryFee           int
	FreeDeliveryThreshold int
	MaxItems              int
	MaxPerLine            int

	AutoOpenDelay time.Duration
	ResyncWindow  time.Duration
	DirtyAfter    time.Duration

	BaseDeliveryMinutes int
	MaxDeliveryMinutes  int
	RestaurantName      string
}

// ConfigFromApp assembles the cart rules from the application config.
func ConfigFromApp(cfg *config.Config) Config {
	return Config{
		MinOrderAmount:        cfg.Cart.MinOrderAmount,
		DeliveryFee:           cfg.Cart.DeliveryFee,
		FreeDeliveryThreshold: cfg.Cart.FreeDeliveryThreshold,
		MaxItems:              cfg.Cart.MaxItems,
		MaxPerLine:            cfg.Cart.MaxPerLine,
		AutoOpenDelay:         cfg.Cart.AutoOpenDelay,
		ResyncWindow:          cfg.Cart.ResyncWindow,
		DirtyAfter:            cfg.Cart.DirtyAfter,
		BaseDeliveryMinutes:   cfg.Delivery.BaseTimeMinutes,
		MaxDeliveryMinutes:    cfg.Delivery.MaxTimeMinutes,
		RestaurantName:        cfg.Business.Name,
	}
}

// StoreParams groups dependencies for one cart session's store.
type StoreParams struct {
	SessionID string
	Key       string
	Origin    string

	Catalog   catalog.Lookup
	KV        kv.Store
	Notifier  notify.Notifier
	Confirmer Confirmer
	Emitter   *Emitter
	Schedule  hours.Schedule
	Metrics   *metrics.CartMetrics
	Logger    *logger.Logger

	Config Config
	Now    func() time.Time
}

// Store holds one session's cart in memory and mirrors it to the KV store
// after every mutation. All methods are safe for concurrent use.
type Store struct {
	sessionID string
	key       string
	origin    string

	catalog   catalog.Lookup
	kv        kv.Store
	notifier  notify.Notifier
	confirmer Confirmer
	emitter   *Emitter
	schedule  hours.Schedule
	metrics   *metrics.CartMetrics
	logg      *logger.Logger

	cfg Config
	now func() time.Time

	mu    sync.Mutex
	items []LineItem
}

// NewStore validates dependencies and hydrates the cart from storage.
// Stored items that no longer validate against the catalog are dropped
// silently, matching a menu change between visits.
func NewStore(ctx context.Context, params StoreParams) (*Store, error) {
	if params.SessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if params.Key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "storage key is required")
	}
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog lookup is required")
	}
	if params.KV == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "kv store is required")
	}
	if params.Notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notifier is required")
	}
	if params.Emitter == nil {
		params.Emitter = NewEmitter()
	}
	if params.Confirmer == nil {
		params.Confirmer = AutoConfirm
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	applyConfigDefaults(&params.Config)

	s := &Store{
		sessionID: params.SessionID,
		key:       params.Key,
		origin:    params.Origin,
		catalog:   params.Catalog,
		kv:        params.KV,
		notifier:  params.Notifier,
		confirmer: params.Confirmer,
		emitter:   params.Emitter,
		schedule:  params.Schedule,
		metrics:   params.Metrics,
		logg:      params.Logger,
		cfg:       params.Config,
		now:       params.Now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadLocked(ctx, "hydrate")
	return s, nil
}

func applyConfigDefaults(cfg *Config) {
	if cfg.MinOrderAmount == 0 {
		cfg.MinOrderAmount = 150
	}
	if cfg.DeliveryFee == 0 {
		cfg.DeliveryFee = 30
	}
	if cfg.FreeDeliveryThreshold == 0 {
		cfg.FreeDeliveryThreshold = 300
	}
	if cfg.MaxItems == 0 {
		cfg.MaxItems = 50
	}
	if cfg.MaxPerLine == 0 {
		cfg.MaxPerLine = 10
	}
	if cfg.AutoOpenDelay == 0 {
		cfg.AutoOpenDelay = time.Second
	}
	if cfg.ResyncWindow == 0 {
		cfg.ResyncWindow = 30 * time.Minute
	}
	if cfg.DirtyAfter == 0 {
		cfg.DirtyAfter = 5 * time.Minute
	}
	if cfg.BaseDeliveryMinutes == 0 {
		cfg.BaseDeliveryMinutes = 30
	}
	if cfg.MaxDeliveryMinutes == 0 {
		cfg.MaxDeliveryMinutes = 45
	}
}

// SessionID returns the cart session this store belongs to.
func (s *Store) SessionID() string {
	return s.sessionID
}

// Events exposes the store's event stream for subscription.
func (s *Store) Events() *Emitter {
	return s.emitter
}

// AddItem puts quantity units of a dish (optionally one of its sizes) into
// the cart. Adding the same dish+size again accumulates on the existing line.
func (s *Store) AddItem(ctx context.Context, dishID, sizeName string, quantity int, openCart bool) (Snapshot, error) {
	dish, err := s.catalog.Dish(ctx, dishID)
	if err != nil {
		s.countOp("add_item", "rejected")
		return Snapshot{}, err
	}
	if quantity <= 0 {
		s.countOp("add_item", "rejected")
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if sizeName != "" {
		if _, ok := dish.Size(sizeName); !ok {
			s.countOp("add_item", "rejected")
			return Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("dish %s has no size %q", dishID, sizeName))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if itemCount(s.items)+quantity > s.cfg.MaxItems {
		s.countOp("add_item", "rejected")
		s.notify(ctx, enums.NoticeWarning, fmt.Sprintf(notify.MsgMaxItems, s.cfg.MaxItems))
		return Snapshot{}, ErrCartFull
	}

	now := s.now().UTC()
	item := newLineItem(dish, sizeName, quantity, now)

	if existing := s.findLocked(item.ID); existing != nil {
		if existing.Quantity+quantity > s.cfg.MaxPerLine {
			s.countOp("add_item", "rejected")
			s.notify(ctx, enums.NoticeWarning, fmt.Sprintf(notify.MsgMaxPerLine, s.cfg.MaxPerLine))
			return Snapshot{}, ErrLineLimit
		}
		existing.Quantity += quantity
		existing.UpdatedAt = now
		item = *existing
	} else {
		s.items = append(s.items, item)
	}

	s.persistLocked(ctx)
	s.countOp("add_item", "ok")
	s.notify(ctx, enums.NoticeSuccess, fmt.Sprintf(notify.MsgAddedToCart, item.DisplayName()))
	s.emitLocked(ctx, Event{Type: EventItemAdded, Item: item, NewQuantity: item.Quantity})

	if len(s.items) == 1 || openCart {
		s.scheduleOpenLocked()
	}

	return s.snapshotLocked(ctx), nil
}

// RemoveItem deletes a whole line regardless of its quantity.
func (s *Store) RemoveItem(ctx context.Context, lineID string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(lineID)
	if idx < 0 {
		s.countOp("remove_item", "rejected")
		return Snapshot{}, ErrLineNotFound
	}

	removed := s.items[idx]
	s.items = append(s.items[:idx], s.items[idx+1:]...)

	s.persistLocked(ctx)
	s.countOp("remove_item", "ok")
	s.notify(ctx, enums.NoticeInfo, fmt.Sprintf(notify.MsgRemovedFromCart, removed.Name))
	s.emitLocked(ctx, Event{Type: EventItemRemoved, Item: removed, OldQuantity: removed.Quantity})

	return s.snapshotLocked(ctx), nil
}

// UpdateQuantity sets a line's quantity. Zero or negative removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, lineID string, quantity int) (Snapshot, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, lineID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity > s.cfg.MaxPerLine {
		s.countOp("update_quantity", "rejected")
		s.notify(ctx, enums.NoticeWarning, fmt.Sprintf(notify.MsgMaxPerLine, s.cfg.MaxPerLine))
		return Snapshot{}, ErrLineLimit
	}

	item := s.findLocked(lineID)
	if item == nil {
		s.countOp("update_quantity", "rejected")
		return Snapshot{}, ErrLineNotFound
	}

	oldQuantity := item.Quantity
	item.Quantity = quantity
	item.UpdatedAt = s.now().UTC()

	s.persistLocked(ctx)
	s.countOp("update_quantity", "ok")
	s.emitLocked(ctx, Event{
		Type:        EventQuantityChanged,
		Item:        *item,
		OldQuantity: oldQuantity,
		NewQuantity: quantity,
	})

	return s.snapshotLocked(ctx), nil
}

// Clear empties the cart after the confirmer approves. Clearing an empty
// cart is a no-op and skips the confirmer entirely.
func (s *Store) Clear(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 {
		return s.snapshotLocked(ctx), nil
	}

	if !s.confirmer.Confirm(ctx, "Очистити весь кошик?") {
		s.countOp("clear", "declined")
		return Snapshot{}, ErrClearDeclined
	}

	count := itemCount(s.items)
	s.items = nil

	s.persistLocked(ctx)
	s.countOp("clear", "ok")
	s.notify(ctx, enums.NoticeInfo, notify.MsgCartCleared)
	s.emitLocked(ctx, Event{Type: EventCartCleared, ItemCount: count})

	return s.snapshotLocked(ctx), nil
}

// RequestOpen emits an open-requested signal immediately.
func (s *Store) RequestOpen(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emitLocked(ctx, Event{Type: EventOpenRequested})
}

// Checkout gates the cart against the order rules and emits the checkout
// event on success. Failures notify the first blocking issue.
func (s *Store) Checkout(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshotLocked(ctx)
	if !snap.IsValid {
		s.countOp("checkout", "rejected")
		if len(snap.Issues) > 0 {
			s.notify(ctx, enums.NoticeWarning, snap.Issues[0].Message)
		}
		return snap, pkgerrors.New(pkgerrors.CodeValidation, "order requirements not met").
			WithDetails(snap.Issues)
	}

	s.countOp("checkout", "ok")
	s.emitLocked(ctx, Event{Type: EventCheckoutStarted})
	return snap, nil
}

// Snapshot returns the current cart view with all derived values.
func (s *Store) Snapshot(ctx context.Context) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(ctx)
}

// Find returns the line for a dish and optional size, if present.
func (s *Store) Find(dishID, size string) (LineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item := s.findLocked(LineID(dishID, size)); item != nil {
		return *item, true
	}
	return LineItem{}, false
}

// Has reports whether a dish (and optional size) is in the cart.
func (s *Store) Has(dishID, size string) bool {
	_, ok := s.Find(dishID, size)
	return ok
}

// Quantity returns the quantity of a dish+size line, zero when absent.
func (s *Store) Quantity(dishID, size string) int {
	item, ok := s.Find(dishID, size)
	if !ok {
		return 0
	}
	return item.Quantity
}

// Export serializes the cart for handing off to another device.
func (s *Store) Export(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload := ExportPayload{
		Snapshot:   s.snapshotLocked(ctx),
		ExportedAt: s.now().UTC(),
		Restaurant: s.cfg.RestaurantName,
		Version:    stateVersion,
	}
	return json.MarshalIndent(payload, "", "  ")
}

// Import replaces the cart with the valid items of an exported payload.
// Items that fail validation are dropped; an import with no valid items
// fails and leaves the cart unchanged.
func (s *Store) Import(ctx context.Context, raw []byte) (Snapshot, error) {
	var payload struct {
		Items []LineItem `json:"items"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		s.countOp("import", "rejected")
		s.notify(ctx, enums.NoticeError, notify.MsgImportFailed)
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed cart payload")
	}

	valid := s.validItems(ctx, payload.Items)
	if len(valid) == 0 {
		s.countOp("import", "rejected")
		s.notify(ctx, enums.NoticeError, notify.MsgImportFailed)
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "no valid items in cart payload")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = valid
	s.persistLocked(ctx)
	s.countOp("import", "ok")
	s.notify(ctx, enums.NoticeSuccess, fmt.Sprintf(notify.MsgImported, len(valid)))
	s.emitLocked(ctx, Event{Type: EventReloaded})

	return s.snapshotLocked(ctx), nil
}

func (s *Store) snapshotLocked(ctx context.Context) Snapshot {
	now := s.now()
	sub := subtotal(s.items)
	fee := s.deliveryFee(sub)
	allergens := allergenUnion(s.items)

	snap := Snapshot{
		SessionID:            s.sessionID,
		Items:                append([]LineItem(nil), s.items...),
		ItemCount:            itemCount(s.items),
		LineCount:            len(s.items),
		Subtotal:             sub,
		DeliveryFee:          fee,
		Total:                sub + fee,
		TotalWeight:          totalWeight(s.items),
		EstimatedTimeMinutes: s.estimatedTimeLocked(ctx),
		DeliveryWindow: DeliveryWindow{
			MinMinutes: s.cfg.BaseDeliveryMinutes,
			MaxMinutes: s.cfg.MaxDeliveryMinutes,
		},
		Categories:   categoryBreakdown(s.items),
		Allergens:    allergens,
		HasAllergens: len(allergens) > 0,
		TakenAt:      now.UTC(),
	}
	snap.Issues = s.validationIssues(snap, now)
	snap.IsValid = len(snap.Issues) == 0
	return snap
}

func (s *Store) validationIssues(snap Snapshot, now time.Time) []ValidationIssue {
	var issues []ValidationIssue
	if snap.LineCount == 0 {
		issues = append(issues, ValidationIssue{Code: IssueCartEmpty, Message: notify.MsgCartEmpty})
	}
	if snap.Subtotal < s.cfg.MinOrderAmount {
		issues = append(issues, ValidationIssue{
			Code:    IssueBelowMinimum,
			Message: fmt.Sprintf(notify.MsgMinOrder, s.cfg.MinOrderAmount),
		})
	}
	if !s.schedule.IsZero() && !s.schedule.IsOpenAt(now) {
		open, closing := s.schedule.Window()
		issues = append(issues, ValidationIssue{
			Code:    IssueClosed,
			Message: notify.MsgClosed + ". " + fmt.Sprintf(notify.MsgWorkingHours, open, closing),
		})
	}
	return issues
}

func (s *Store) deliveryFee(sub int) int {
	if sub >= s.cfg.FreeDeliveryThreshold {
		return 0
	}
	return s.cfg.DeliveryFee
}

// estimatedTimeLocked is the longest preparation time in the cart plus the
// base delivery time. Dishes missing from the catalog contribute zero.
func (s *Store) estimatedTimeLocked(ctx context.Context) int {
	maxPrep := 0
	for _, item := range s.items {
		dish, err := s.catalog.Dish(ctx, item.DishID)
		if err != nil {
			continue
		}
		if dish.PreparationTime > maxPrep {
			maxPrep = dish.PreparationTime
		}
	}
	return maxPrep + s.cfg.BaseDeliveryMinutes
}

func (s *Store) findLocked(lineID string) *LineItem {
	idx := s.indexLocked(lineID)
	if idx < 0 {
		return nil
	}
	return &s.items[idx]
}

func (s *Store) indexLocked(lineID string) int {
	for i := range s.items {
		if s.items[i].ID == lineID {
			return i
		}
	}
	return -1
}

// persistLocked mirrors memory to storage. A failed write is logged and
// counted but the in-memory cart stays authoritative.
func (s *Store) persistLocked(ctx context.Context) {
	state := persistedState{
		Items:   s.items,
		SavedAt: s.now().UTC(),
		Version: stateVersion,
	}
	payload, err := json.Marshal(state)
	if err != nil {
		s.persistFailed(ctx, err)
		return
	}
	if err := s.kv.Set(ctx, s.key, payload); err != nil {
		s.persistFailed(ctx, err)
	}
}

func (s *Store) persistFailed(ctx context.Context, err error) {
	s.metrics.IncPersistFailure()
	if s.logg != nil {
		s.logg.Error(s.logg.WithSessionID(ctx, s.sessionID), "persisting cart failed", err)
	}
}

// reloadLocked replaces memory with the validated stored state.
func (s *Store) reloadLocked(ctx context.Context, trigger string) {
	raw, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if err != kv.ErrNotFound {
			// Unreadable storage is not the same as empty storage.
			// Memory stays authoritative, like the write path.
			if s.logg != nil {
				s.logg.Warn(s.logg.WithSessionID(ctx, s.sessionID), "loading cart failed")
			}
			return
		}
		s.items = nil
		s.metrics.IncReload(trigger)
		return
	}

	var state persistedState
	if err := json.Unmarshal(raw, &state); err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithSessionID(ctx, s.sessionID), "discarding malformed cart state")
		}
		s.items = nil
		s.metrics.IncReload(trigger)
		return
	}

	s.items = s.validItems(ctx, state.Items)
	s.metrics.IncReload(trigger)
}

// validItems drops items with missing fields, unknown dishes, or
// out-of-range quantities.
func (s *Store) validItems(ctx context.Context, items []LineItem) []LineItem {
	var valid []LineItem
	for _, item := range items {
		if item.ID == "" || item.DishID == "" || item.Name == "" || item.Price <= 0 {
			continue
		}
		if item.Quantity <= 0 || item.Quantity > s.cfg.MaxPerLine {
			continue
		}
		if _, err := s.catalog.Dish(ctx, item.DishID); err != nil {
			continue
		}
		valid = append(valid, item)
	}
	return valid
}

func (s *Store) scheduleOpenLocked() {
	time.AfterFunc(s.cfg.AutoOpenDelay, func() {
		s.mu.Lock()
		s.emitLocked(context.Background(), Event{Type: EventOpenRequested})
		s.mu.Unlock()
	})
}

func (s *Store) emitLocked(ctx context.Context, event Event) {
	event.SessionID = s.sessionID
	if event.ItemCount == 0 {
		event.ItemCount = itemCount(s.items)
	}
	event.Subtotal = subtotal(s.items)
	event.DeliveryFee = s.deliveryFee(event.Subtotal)
	event.Total = event.Subtotal + event.DeliveryFee
	event.At = s.now().UTC()
	s.emitter.emit(ctx, event)
}

func (s *Store) countOp(op, result string) {
	s.metrics.IncOperation(op, result)
}

func (s *Store) notify(ctx context.Context, level enums.NoticeLevel, message string) {
	s.notifier.Notify(ctx, notify.Notice{Level: level, Message: message})
}
