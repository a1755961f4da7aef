package service

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/elgransazon/pos-backend/internal/model"
	"github.com/elgransazon/pos-backend/internal/queue"
	"github.com/elgransazon/pos-backend/internal/repository"
)

// OrderService is the command orchestrator. Every exported command runs as a
// single transaction over orders, items, stock and tables; events go to the
// broker only after the commit, and a publish failure never fails the
// command.
type OrderService struct {
	db       *sql.DB
	orders   *repository.OrderRepo
	menus    *repository.MenuRepo
	settings *repository.SettingsRepo
	stock    *StockService
	tables   *TableService
	numbers  *NumberGenerator
}

// NewOrderService wires the orchestrator.
func NewOrderService(db *sql.DB, orders *repository.OrderRepo, menus *repository.MenuRepo,
	settings *repository.SettingsRepo, stock *StockService, tables *TableService,
	numbers *NumberGenerator) *OrderService {
	return &OrderService{
		db: db, orders: orders, menus: menus, settings: settings,
		stock: stock, tables: tables, numbers: numbers,
	}
}

// OrderItemInput is one requested line in a create or add-items command.
type OrderItemInput struct {
	MenuItemID uint64
	Quantity   int
	Comments   string
}

// CreateOrderInput carries everything needed to open an order.
type CreateOrderInput struct {
	Type               model.OrderType
	CustomerName       string
	CustomerPhone      string
	DeliveryAddress    string
	DeliveryReferences string
	TableID            *uint64
	CustomerID         *uint64
	PaymentMethod      model.PaymentMethod
	Tip                decimal.Decimal
	Items              []OrderItemInput
}

// Create opens a new order: validates input, claims the table for dine-in,
// deducts stock for every line, assigns the order number and persists the
// aggregate, all in one transaction. Orders whose items all skip the kitchen
// auto-advance straight to READY.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput, actor string) (*model.Order, error) {
	if !in.Type.Valid() {
		return nil, &model.ValidationError{Field: "order_type", Reason: "unknown order type"}
	}
	if len(in.Items) == 0 {
		return nil, &model.ValidationError{Field: "items", Reason: "an order needs at least one item"}
	}
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, &model.ValidationError{Field: "quantity", Reason: "item quantity must be positive"}
		}
	}

	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if in.PaymentMethod != "" {
		if !in.PaymentMethod.Valid() {
			return nil, &model.ValidationError{Field: "payment_method", Reason: "unknown payment method"}
		}
		if !cfg.PaymentMethodEnabled(in.PaymentMethod) {
			return nil, &model.ValidationError{Field: "payment_method", Reason: "payment method is not accepted"}
		}
	}

	o := &model.Order{
		Type:               in.Type,
		Status:             model.StatusPending,
		CustomerName:       in.CustomerName,
		CustomerPhone:      in.CustomerPhone,
		DeliveryAddress:    in.DeliveryAddress,
		DeliveryReferences: in.DeliveryReferences,
		TableID:            in.TableID,
		CustomerID:         in.CustomerID,
		PaymentMethod:      in.PaymentMethod,
		TaxRate:            cfg.TaxRate,
		Tip:                in.Tip,
		CreatedBy:          actor,
		UpdatedBy:          actor,
	}
	if err := model.ValidateCustomerInfo(o); err != nil {
		return nil, err
	}
	if cleared, err := model.NormalizeTable(o); err != nil {
		return nil, err
	} else if cleared {
		log.Printf("orders: dropped table reference from a delivery order (actor=%s)", actor)
	}

	now := time.Now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if o.Type == model.DineIn {
		// One active order per table: refuse while another order holds it.
		if _, err := s.orders.ActiveOrderByTableTx(ctx, tx, *o.TableID); err == nil {
			return nil, &model.StateError{
				Entity:  "table",
				Current: string(model.TableOccupied),
				Reason:  "table already has an active order",
			}
		} else if err != repository.ErrOrderNotFound {
			return nil, err
		}
		if _, err := s.tables.OccupyForOrderTx(ctx, tx, *o.TableID, actor, now, cfg); err != nil {
			return nil, err
		}
	}

	items, err := s.buildItems(ctx, tx, in.Items, now)
	if err != nil {
		return nil, err
	}
	o.Items = items

	if err := s.stock.CheckStockTx(ctx, tx, o.Items); err != nil {
		return nil, err
	}
	for i := range o.Items {
		if err := s.stock.DeductForItemTx(ctx, tx, &o.Items[i]); err != nil {
			return nil, err
		}
	}
	if err := s.stock.RefreshAvailabilityTx(ctx, tx, ingredientIDs(o.Items)); err != nil {
		return nil, err
	}

	if model.AllSkipPreparation(o.Items) {
		o.Status = model.StatusReady
		for i := range o.Items {
			o.Items[i].Status = model.StatusReady
		}
	}
	o.RecalculateAmounts()

	o.OrderNumber, err = s.numbers.Next(ctx, now)
	if err != nil {
		return nil, err
	}
	if err := s.orders.CreateTx(ctx, tx, o); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	_ = queue.Publish(ctx, queue.OrderCreated(o, actor))
	return o, nil
}

// buildItems resolves menu items and snapshots prices for a batch of
// requested lines. Inactive dishes are refused; availability is implied by
// the stock check that follows.
func (s *OrderService) buildItems(ctx context.Context, tx *sql.Tx, in []OrderItemInput, now time.Time) ([]model.OrderItem, error) {
	ids := make([]uint64, 0, len(in))
	for _, it := range in {
		ids = append(ids, it.MenuItemID)
	}
	menus, err := s.menus.GetByIDsTx(ctx, tx, ids)
	if err != nil {
		return nil, err
	}
	items := make([]model.OrderItem, 0, len(in))
	for _, req := range in {
		m := menus[req.MenuItemID]
		if !m.Active {
			return nil, &model.ValidationError{Field: "menu_item_id", Reason: "menu item " + m.Name + " is not on the menu"}
		}
		it := model.OrderItem{
			MenuItemID: m.ID,
			MenuItem:   m,
			Quantity:   req.Quantity,
			UnitPrice:  m.Price,
			Status:     model.StatusPending,
			Comments:   req.Comments,
			AddedAt:    now,
		}
		it.CalculateSubtotal()
		items = append(items, it)
	}
	return items, nil
}

// GetByID loads one order.
func (s *OrderService) GetByID(ctx context.Context, id uint64) (*model.Order, error) {
	return s.orders.GetByID(ctx, id)
}

// GetByNumber loads one order by its public number.
func (s *OrderService) GetByNumber(ctx context.Context, number string) (*model.Order, error) {
	return s.orders.GetByNumber(ctx, number)
}

// List returns orders matching the filter.
func (s *OrderService) List(ctx context.Context, f repository.ListFilter) ([]model.Order, error) {
	return s.orders.List(ctx, f)
}

// TodaysRevenue sums today's paid orders.
func (s *OrderService) TodaysRevenue(ctx context.Context) (decimal.Decimal, error) {
	return s.orders.TodaysRevenue(ctx, time.Now())
}

// UpdateDetailsInput carries the mutable header fields of an order. Nil
// pointers leave a field untouched.
type UpdateDetailsInput struct {
	CustomerName       *string
	CustomerPhone      *string
	DeliveryAddress    *string
	DeliveryReferences *string
	PaymentMethod      *model.PaymentMethod
	Tip                *decimal.Decimal
}

// UpdateDetails edits customer and payment header fields on a live order.
func (s *OrderService) UpdateDetails(ctx context.Context, orderID uint64, in UpdateDetailsInput, actor string) (*model.Order, error) {
	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	o, err := s.orders.GetByIDTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status.Terminal() {
		return nil, &model.StateError{Entity: "order", Current: string(o.Status), Reason: "order can no longer be edited"}
	}

	if in.CustomerName != nil {
		o.CustomerName = *in.CustomerName
	}
	if in.CustomerPhone != nil {
		o.CustomerPhone = *in.CustomerPhone
	}
	if in.DeliveryAddress != nil {
		o.DeliveryAddress = *in.DeliveryAddress
	}
	if in.DeliveryReferences != nil {
		o.DeliveryReferences = *in.DeliveryReferences
	}
	if in.PaymentMethod != nil {
		if !in.PaymentMethod.Valid() {
			return nil, &model.ValidationError{Field: "payment_method", Reason: "unknown payment method"}
		}
		if !cfg.PaymentMethodEnabled(*in.PaymentMethod) {
			return nil, &model.ValidationError{Field: "payment_method", Reason: "payment method is not accepted"}
		}
		o.PaymentMethod = *in.PaymentMethod
	}
	if in.Tip != nil {
		if in.Tip.IsNegative() {
			return nil, &model.ValidationError{Field: "tip", Reason: "tip cannot be negative"}
		}
		o.Tip = *in.Tip
	}
	if err := model.ValidateCustomerInfo(o); err != nil {
		return nil, err
	}

	o.UpdatedBy = actor
	o.RecalculateAmounts()
	if err := s.orders.UpdateTx(ctx, tx, o); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return o, nil
}

// UpdateOrderInput replaces an order wholesale: header fields, table
// assignment and the full item list. Absent fields are cleared, not kept;
// callers send the complete picture they want.
type UpdateOrderInput struct {
	CustomerName       string
	CustomerPhone      string
	DeliveryAddress    string
	DeliveryReferences string
	TableID            *uint64
	PaymentMethod      model.PaymentMethod
	Tip                decimal.Decimal
	Items              []OrderItemInput
}

// Update rewrites a live order in place. Stock settles as undo then redo:
// every old line returns its deduction, then the new set is validated and
// deducted fresh. A dine-in order moving tables frees the old table and
// claims the new one under the same rules as Create, including the
// one-active-order check and the reserved-table time check.
func (s *OrderService) Update(ctx context.Context, orderID uint64, in UpdateOrderInput, actor string) (*model.Order, error) {
	if len(in.Items) == 0 {
		return nil, &model.ValidationError{Field: "items", Reason: "an order needs at least one item"}
	}
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, &model.ValidationError{Field: "quantity", Reason: "item quantity must be positive"}
		}
	}
	if in.Tip.IsNegative() {
		return nil, &model.ValidationError{Field: "tip", Reason: "tip cannot be negative"}
	}

	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if in.PaymentMethod != "" {
		if !in.PaymentMethod.Valid() {
			return nil, &model.ValidationError{Field: "payment_method", Reason: "unknown payment method"}
		}
		if !cfg.PaymentMethodEnabled(in.PaymentMethod) {
			return nil, &model.ValidationError{Field: "payment_method", Reason: "payment method is not accepted"}
		}
	}

	now := time.Now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	o, err := s.orders.GetByIDTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status.Terminal() {
		return nil, &model.StateError{Entity: "order", Current: string(o.Status), Reason: "order can no longer be edited"}
	}
	if o.HasDeliveredItems() {
		return nil, &model.StateError{
			Entity:  "order",
			Current: string(o.Status),
			Reason:  "orders with delivered items cannot be rewritten",
		}
	}

	oldTable := o.TableID
	o.CustomerName = in.CustomerName
	o.CustomerPhone = in.CustomerPhone
	o.DeliveryAddress = in.DeliveryAddress
	o.DeliveryReferences = in.DeliveryReferences
	o.TableID = in.TableID
	o.PaymentMethod = in.PaymentMethod
	o.Tip = in.Tip
	if err := model.ValidateCustomerInfo(o); err != nil {
		return nil, err
	}
	if cleared, err := model.NormalizeTable(o); err != nil {
		return nil, err
	} else if cleared {
		log.Printf("orders: dropped table reference from a delivery order (actor=%s)", actor)
	}

	// Undo the old stock picture before building the new one.
	touched := ingredientIDs(o.Items)
	for i := range o.Items {
		if err := s.stock.ReturnForItemTx(ctx, tx, &o.Items[i]); err != nil {
			return nil, err
		}
		if err := s.orders.DeleteItemTx(ctx, tx, o.Items[i].ID); err != nil {
			return nil, err
		}
	}

	items, err := s.buildItems(ctx, tx, in.Items, now)
	if err != nil {
		return nil, err
	}
	if err := s.stock.CheckStockTx(ctx, tx, items); err != nil {
		return nil, err
	}
	for i := range items {
		if err := s.stock.DeductForItemTx(ctx, tx, &items[i]); err != nil {
			return nil, err
		}
	}
	touched = append(touched, ingredientIDs(items)...)
	if err := s.stock.RefreshAvailabilityTx(ctx, tx, touched); err != nil {
		return nil, err
	}

	for i := range items {
		items[i].OrderID = o.ID
		if !items[i].RequiresPreparation() {
			items[i].Status = model.StatusReady
		}
		if err := s.orders.InsertItemTx(ctx, tx, &items[i]); err != nil {
			return nil, err
		}
	}
	o.Items = items

	if o.Type == model.DineIn && !sameTable(oldTable, o.TableID) {
		if oldTable != nil {
			if err := s.tables.FreeTx(ctx, tx, *oldTable, actor); err != nil {
				return nil, err
			}
		}
		// The order row still carries the old table here, so this sees only
		// other orders on the destination table.
		if _, err := s.orders.ActiveOrderByTableTx(ctx, tx, *o.TableID); err == nil {
			return nil, &model.StateError{
				Entity:  "table",
				Current: string(model.TableOccupied),
				Reason:  "table already has an active order",
			}
		} else if err != repository.ErrOrderNotFound {
			return nil, err
		}
		if _, err := s.tables.OccupyForOrderTx(ctx, tx, *o.TableID, actor, now, cfg); err != nil {
			return nil, err
		}
	}

	prev := o.Status
	o.Status = model.RecomputeStatus(o.Items, o.PreparedBy)
	o.UpdatedBy = actor
	o.RecalculateAmounts()
	if err := s.orders.UpdateTx(ctx, tx, o); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	if o.Status != prev {
		_ = queue.Publish(ctx, queue.OrderStatusChanged(o, prev, actor))
	}
	return o, nil
}

// sameTable reports whether two optional table references point at the same
// table.
func sameTable(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// AddItems appends items to a live order. Dine-in orders accept additions
// until payment; takeout and delivery close once the order leaves the
// counter. New items that skip the kitchen arrive READY; the rest arrive
// PENDING and are marked IsNew so the kitchen display can highlight them.
func (s *OrderService) AddItems(ctx context.Context, orderID uint64, in []OrderItemInput, actor string) (*model.Order, error) {
	if len(in) == 0 {
		return nil, &model.ValidationError{Field: "items", Reason: "no items to add"}
	}
	for _, it := range in {
		if it.Quantity <= 0 {
			return nil, &model.ValidationError{Field: "quantity", Reason: "item quantity must be positive"}
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	o, err := s.orders.GetByIDTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if !model.CanAcceptNewItems(o.Type, o.Status) {
		return nil, &model.StateError{Entity: "order", Current: string(o.Status), Reason: "order no longer accepts new items"}
	}

	added, err := s.buildItems(ctx, tx, in, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.stock.CheckStockTx(ctx, tx, added); err != nil {
		return nil, err
	}
	for i := range added {
		if err := s.stock.DeductForItemTx(ctx, tx, &added[i]); err != nil {
			return nil, err
		}
	}
	if err := s.stock.RefreshAvailabilityTx(ctx, tx, ingredientIDs(added)); err != nil {
		return nil, err
	}

	prev := o.Status
	for i := range added {
		added[i].OrderID = o.ID
		added[i].IsNew = true
		if !added[i].RequiresPreparation() {
			added[i].Status = model.StatusReady
		}
		if err := s.orders.InsertItemTx(ctx, tx, &added[i]); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, added[i])
	}

	o.Status = model.RecomputeStatus(o.Items, o.PreparedBy)
	o.UpdatedBy = actor
	o.RecalculateAmounts()
	if err := s.orders.UpdateTx(ctx, tx, o); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	_ = queue.Publish(ctx, queue.OrderItemsAdded(o, added, actor))
	if o.Status != prev {
		_ = queue.Publish(ctx, queue.OrderStatusChanged(o, prev, actor))
	}
	return o, nil
}

// UpdateItemQuantity changes the quantity of a PENDING line. The stock delta
// is settled immediately: an increase checks and deducts, a decrease returns.
func (s *OrderService) UpdateItemQuantity(ctx context.Context, orderID, itemID uint64, quantity int, actor string) (*model.Order, error) {
	if quantity <= 0 {
		return nil, &model.ValidationError{Field: "quantity", Reason: "item quantity must be positive"}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	o, err := s.orders.GetByIDTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status.Terminal() {
		return nil, &model.StateError{Entity: "order", Current: string(o.Status), Reason: "order can no longer be edited"}
	}
	it := findItem(o, itemID)
	if it == nil {
		return nil, repository.ErrOrderItemNotFound
	}
	if it.Status != model.StatusPending {
		return nil, &model.StateError{
			Entity:  "order item",
			Current: string(it.Status),
			Reason:  "only pending items can change quantity",
		}
	}
	if quantity == it.Quantity {
		return o, nil
	}

	delta := *it
	if quantity > it.Quantity {
		delta.Quantity = quantity - it.Quantity
		if err := s.stock.CheckStockTx(ctx, tx, []model.OrderItem{delta}); err != nil {
			return nil, err
		}
		if err := s.stock.DeductForItemTx(ctx, tx, &delta); err != nil {
			return nil, err
		}
	} else {
		delta.Quantity = it.Quantity - quantity
		if err := s.stock.ReturnForItemTx(ctx, tx, &delta); err != nil {
			return nil, err
		}
	}
	if err := s.stock.RefreshAvailabilityTx(ctx, tx, ingredientIDs([]model.OrderItem{delta})); err != nil {
		return nil, err
	}

	it.Quantity = quantity
	it.CalculateSubtotal()
	if err := s.orders.UpdateItemTx(ctx, tx, it); err != nil {
		return nil, err
	}

	o.UpdatedBy = actor
	o.RecalculateAmounts()
	if err := s.orders.UpdateTx(ctx, tx, o); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return o, nil
}

// DeleteItem removes one line from a live order. The last remaining line can
// never be deleted; cancel the order instead. Stock returns follow the
// per-item policy: untouched items return automatically, kitchen-touched
// items are left for manual reconciliation, delivered items cannot go.
func (s *OrderService) DeleteItem(ctx context.Context, orderID, itemID uint64, actor string) (*model.Order, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	o, err := s.orders.GetByIDTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status.Terminal() {
		return nil, &model.StateError{Entity: "order", Current: string(o.Status), Reason: "order can no longer be edited"}
	}
	it := findItem(o, itemID)
	if it == nil {
		return nil, repository.ErrOrderItemNotFound
	}
	if len(o.Items) == 1 {
		return nil, model.ErrLastItem
	}

	switch model.StockReturnMode(it) {
	case model.ReturnForbidden:
		return nil, &model.StateError{
			Entity:  "order item",
			Current: string(it.Status),
			Reason:  "delivered items cannot be removed",
		}
	case model.ReturnAutomatic:
		if err := s.stock.ReturnForItemTx(ctx, tx, it); err != nil {
			return nil, err
		}
		if err := s.stock.RefreshAvailabilityTx(ctx, tx, ingredientIDs([]model.OrderItem{*it})); err != nil {
			return nil, err
		}
	case model.ReturnManual:
		log.Printf("orders: item %d (order %s) removed in state %s; stock needs manual reconciliation",
			it.ID, o.OrderNumber, it.Status)
	}

	if err := s.orders.DeleteItemTx(ctx, tx, it.ID); err != nil {
		return nil, err
	}
	kept := o.Items[:0]
	for i := range o.Items {
		if o.Items[i].ID != itemID {
			kept = append(kept, o.Items[i])
		}
	}
	o.Items = kept

	prev := o.Status
	o.Status = model.RecomputeStatus(o.Items, o.PreparedBy)
	o.UpdatedBy = actor
	o.RecalculateAmounts()
	if err := s.orders.UpdateTx(ctx, tx, o); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	if o.Status != prev {
		_ = queue.Publish(ctx, queue.OrderStatusChanged(o, prev, actor))
	}
	return o, nil
}

// ChangeStatus moves the whole order forward along its lifecycle and
// cascades to the items: IN_PREPARATION claims the kitchen-bound items for
// the acting chef, READY and DELIVERED sweep every item along. Payment goes
// through Pay, cancellation through Cancel.
func (s *OrderService) ChangeStatus(ctx context.Context, orderID uint64, next model.OrderStatus, actor string) (*model.Order, error) {
	if next == model.StatusPaid || next == model.StatusCancelled {
		return nil, &model.ValidationError{Field: "status", Reason: "use the payment or cancellation operation"}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	o, err := s.orders.GetByIDTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if !model.IsValidTransition(o.Status, next, o.Type) {
		return nil, &model.StateError{
			Entity:    "order",
			Current:   string(o.Status),
			Attempted: string(next),
		}
	}

	prev := o.Status
	switch next {
	case model.StatusInPreparation:
		if o.PreparedBy == "" {
			o.PreparedBy = actor
		}
		for i := range o.Items {
			if o.Items[i].Status == model.StatusPending && o.Items[i].RequiresPreparation() {
				o.Items[i].Status = model.StatusInPreparation
				o.Items[i].PreparedBy = o.PreparedBy
			}
		}
	case model.StatusReady:
		for i := range o.Items {
			if o.Items[i].Status.Rank() >= 0 && o.Items[i].Status.Rank() < model.StatusReady.Rank() {
				o.Items[i].Status = model.StatusReady
				if o.Items[i].PreparedBy == "" && o.Items[i].RequiresPreparation() {
					o.Items[i].PreparedBy = actor
				}
			}
		}
		if o.PreparedBy == "" {
			o.PreparedBy = actor
		}
	case model.StatusOnTheWay:
		// Items stay READY while the courier is out.
	case model.StatusDelivered:
		for i := range o.Items {
			if !o.Items[i].Status.Terminal() {
				o.Items[i].Status = model.StatusDelivered
			}
		}
	}
	o.Status = next
	o.UpdatedBy = actor
	for i := range o.Items {
		if err := s.orders.UpdateItemTx(ctx, tx, &o.Items[i]); err != nil {
			return nil, err
		}
	}
	if err := s.orders.UpdateTx(ctx, tx, o); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	_ = queue.Publish(ctx, queue.OrderStatusChanged(o, prev, actor))
	return o, nil
}

// ChangeItemsStatus moves a set of line items and recomputes the aggregate
// with the weakest-link rule. The first chef to take an item owns the order;
// later additions flowing to IN_PREPARATION inherit that ownership.
func (s *OrderService) ChangeItemsStatus(ctx context.Context, orderID uint64, itemIDs []uint64, next model.OrderStatus, actor string) (*model.Order, error) {
	if len(itemIDs) == 0 {
		return nil, &model.ValidationError{Field: "item_ids", Reason: "no items given"}
	}
	switch next {
	case model.StatusInPreparation, model.StatusReady, model.StatusDelivered:
	default:
		return nil, &model.ValidationError{Field: "status", Reason: "items only move to IN_PREPARATION, READY or DELIVERED"}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	o, err := s.orders.GetByIDTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status.Terminal() {
		return nil, &model.StateError{Entity: "order", Current: string(o.Status), Reason: "order can no longer be edited"}
	}

	for _, id := range itemIDs {
		it := findItem(o, id)
		if it == nil {
			return nil, repository.ErrOrderItemNotFound
		}
		if !itemTransitionValid(it, next) {
			return nil, &model.StateError{
				Entity:    "order item",
				Current:   string(it.Status),
				Attempted: string(next),
			}
		}
		it.Status = next
		if next == model.StatusInPreparation || (next == model.StatusReady && it.RequiresPreparation()) {
			if it.PreparedBy == "" {
				it.PreparedBy = actor
			}
		}
		it.IsNew = false
		if err := s.orders.UpdateItemTx(ctx, tx, it); err != nil {
			return nil, err
		}
	}

	if o.PreparedBy == "" && next == model.StatusInPreparation {
		o.PreparedBy = actor
	}
	prev := o.Status
	o.Status = model.RecomputeStatus(o.Items, o.PreparedBy)
	o.UpdatedBy = actor
	if err := s.orders.UpdateTx(ctx, tx, o); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	if o.Status != prev {
		_ = queue.Publish(ctx, queue.OrderStatusChanged(o, prev, actor))
	}
	return o, nil
}

// itemTransitionValid is the per-item chain: PENDING -> IN_PREPARATION ->
// READY -> DELIVERED, with the kitchen skip PENDING -> READY for items that
// need no preparation.
func itemTransitionValid(it *model.OrderItem, next model.OrderStatus) bool {
	switch it.Status {
	case model.StatusPending:
		if next == model.StatusInPreparation {
			return it.RequiresPreparation()
		}
		return next == model.StatusReady
	case model.StatusInPreparation:
		return next == model.StatusReady
	case model.StatusReady:
		return next == model.StatusDelivered
	}
	return false
}

// Pay settles a delivered order: validates the payment method against
// settings, records who collected, and frees the table.
func (s *OrderService) Pay(ctx context.Context, orderID uint64, method model.PaymentMethod, tip *decimal.Decimal, actor string) (*model.Order, error) {
	if !method.Valid() {
		return nil, &model.ValidationError{Field: "payment_method", Reason: "unknown payment method"}
	}
	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !cfg.PaymentMethodEnabled(method) {
		return nil, &model.ValidationError{Field: "payment_method", Reason: "payment method is not accepted"}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	o, err := s.orders.GetByIDTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if !model.IsValidTransition(o.Status, model.StatusPaid, o.Type) {
		return nil, &model.StateError{
			Entity:    "order",
			Current:   string(o.Status),
			Attempted: string(model.StatusPaid),
		}
	}

	prev := o.Status
	o.Status = model.StatusPaid
	o.PaymentMethod = method
	o.PaidBy = actor
	o.UpdatedBy = actor
	if tip != nil {
		if tip.IsNegative() {
			return nil, &model.ValidationError{Field: "tip", Reason: "tip cannot be negative"}
		}
		o.Tip = *tip
	}
	o.RecalculateAmounts()
	if err := s.orders.UpdateTx(ctx, tx, o); err != nil {
		return nil, err
	}
	if o.HoldsTable() {
		if err := s.tables.FreeTx(ctx, tx, *o.TableID, actor); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	_ = queue.Publish(ctx, queue.OrderStatusChanged(o, prev, actor))
	return o, nil
}

// Cancel aborts an order that nobody has received yet. Orders with any
// delivered item are refused outright. Stock partitions by the per-item
// policy: untouched lines return automatically, kitchen-touched lines are
// logged for manual reconciliation. A held dine-in table is released.
func (s *OrderService) Cancel(ctx context.Context, orderID uint64, reason, actor string) (*model.Order, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	o, err := s.orders.GetByIDTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if o.HasDeliveredItems() {
		return nil, &model.StateError{
			Entity:  "order",
			Current: string(o.Status),
			Reason:  "orders with delivered items cannot be cancelled",
		}
	}
	if !o.Status.CanBeCancelled() {
		return nil, &model.StateError{
			Entity:    "order",
			Current:   string(o.Status),
			Attempted: string(model.StatusCancelled),
		}
	}

	var touched []uint64
	var manual []string
	for i := range o.Items {
		it := &o.Items[i]
		switch model.StockReturnMode(it) {
		case model.ReturnAutomatic:
			if err := s.stock.ReturnForItemTx(ctx, tx, it); err != nil {
				return nil, err
			}
			if it.MenuItem != nil {
				for _, line := range it.MenuItem.Recipe {
					touched = append(touched, line.IngredientID)
				}
			}
		case model.ReturnManual:
			name := "?"
			if it.MenuItem != nil {
				name = it.MenuItem.Name
			}
			manual = append(manual, name)
		}
	}
	if len(touched) > 0 {
		if err := s.stock.RefreshAvailabilityTx(ctx, tx, touched); err != nil {
			return nil, err
		}
	}
	if len(manual) > 0 {
		log.Printf("orders: order %s cancelled with kitchen-touched items needing manual stock reconciliation: %v",
			o.OrderNumber, manual)
	}

	prev := o.Status
	o.Status = model.StatusCancelled
	o.UpdatedBy = actor
	if err := s.orders.UpdateTx(ctx, tx, o); err != nil {
		return nil, err
	}
	if o.HoldsTable() {
		if err := s.tables.FreeTx(ctx, tx, *o.TableID, actor); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	ev := queue.OrderCancelled(o, reason, actor)
	ev.PrevStatus = string(prev)
	_ = queue.Publish(ctx, ev)
	return o, nil
}

// Delete permanently removes a cancelled order. Anything else is refused;
// history of completed orders is never destroyed.
func (s *OrderService) Delete(ctx context.Context, orderID uint64, actor string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	o, err := s.orders.GetByIDTx(ctx, tx, orderID)
	if err != nil {
		return err
	}
	if o.Status != model.StatusCancelled {
		return &model.StateError{
			Entity:  "order",
			Current: string(o.Status),
			Reason:  "only cancelled orders can be deleted",
		}
	}
	if err := s.orders.DeleteTx(ctx, tx, o.ID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	log.Printf("orders: order %s deleted by %s", o.OrderNumber, actor)
	_ = queue.Publish(ctx, queue.OrderDeleted(o, actor))
	return nil
}

func findItem(o *model.Order, itemID uint64) *model.OrderItem {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i]
		}
	}
	return nil
}
