package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/elgransazon/pos-backend/internal/model"
)

// OrderRepo persists orders and their line items. Commands load the aggregate
// with GetByIDTx (row locked) inside the same transaction that mutates stock
// and tables, so the lock ordering is always order -> table -> ingredients.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns an OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderCols = `id, order_number, order_type, status, customer_name, customer_phone,
	delivery_address, delivery_references, table_id, customer_id, payment_method,
	subtotal, tax_rate, tax_amount, tip, total,
	created_by, updated_by, prepared_by, paid_by, created_at, updated_at`

const itemCols = `id, order_id, menu_item_id, quantity, unit_price, subtotal,
	status, is_new, comments, prepared_by, added_at`

func scanOrder(row interface{ Scan(...any) error }) (*model.Order, error) {
	var o model.Order
	var phone, address, references, payment, updatedBy, preparedBy, paidBy sql.NullString
	var tableID, customerID sql.NullInt64
	err := row.Scan(&o.ID, &o.OrderNumber, &o.Type, &o.Status, &o.CustomerName, &phone,
		&address, &references, &tableID, &customerID, &payment,
		&o.Subtotal, &o.TaxRate, &o.TaxAmount, &o.Tip, &o.Total,
		&o.CreatedBy, &updatedBy, &preparedBy, &paidBy, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.CustomerPhone = phone.String
	o.DeliveryAddress = address.String
	o.DeliveryReferences = references.String
	o.PaymentMethod = model.PaymentMethod(payment.String)
	o.UpdatedBy = updatedBy.String
	o.PreparedBy = preparedBy.String
	o.PaidBy = paidBy.String
	if tableID.Valid {
		v := uint64(tableID.Int64)
		o.TableID = &v
	}
	if customerID.Valid {
		v := uint64(customerID.Int64)
		o.CustomerID = &v
	}
	return &o, nil
}

func scanItem(row interface{ Scan(...any) error }) (*model.OrderItem, error) {
	var it model.OrderItem
	var comments, preparedBy sql.NullString
	err := row.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.Quantity, &it.UnitPrice,
		&it.Subtotal, &it.Status, &it.IsNew, &comments, &preparedBy, &it.AddedAt)
	if err != nil {
		return nil, err
	}
	it.Comments = comments.String
	it.PreparedBy = preparedBy.String
	return &it, nil
}

// CreateTx inserts the order and its items and fills in the generated IDs.
// A duplicate order number surfaces as ErrConflict so the number generator
// can retry with the next sequence.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO orders (order_number, order_type, status, customer_name, customer_phone,
		   delivery_address, delivery_references, table_id, customer_id, payment_method,
		   subtotal, tax_rate, tax_amount, tip, total,
		   created_by, updated_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`,
		o.OrderNumber, o.Type, o.Status, o.CustomerName, nullStr(o.CustomerPhone),
		nullStr(o.DeliveryAddress), nullStr(o.DeliveryReferences), o.TableID, o.CustomerID,
		nullStr(string(o.PaymentMethod)),
		o.Subtotal, o.TaxRate, o.TaxAmount, o.Tip, o.Total,
		o.CreatedBy, o.CreatedBy)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
		if err := r.InsertItemTx(ctx, tx, &o.Items[i]); err != nil {
			return err
		}
	}
	return nil
}

// InsertItemTx inserts one line item and fills in its generated ID.
func (r *OrderRepo) InsertItemTx(ctx context.Context, tx *sql.Tx, it *model.OrderItem) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO order_items (order_id, menu_item_id, quantity, unit_price, subtotal,
		   status, is_new, comments, prepared_by, added_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NOW())`,
		it.OrderID, it.MenuItemID, it.Quantity, it.UnitPrice, it.Subtotal,
		it.Status, it.IsNew, nullStr(it.Comments), nullStr(it.PreparedBy))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	it.ID = uint64(id)
	return nil
}

// UpdateItemTx persists quantity, price, status and preparation fields of one
// line item.
func (r *OrderRepo) UpdateItemTx(ctx context.Context, tx *sql.Tx, it *model.OrderItem) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE order_items
		 SET quantity = ?, unit_price = ?, subtotal = ?, status = ?, is_new = ?,
		     comments = ?, prepared_by = ?
		 WHERE id = ?`,
		it.Quantity, it.UnitPrice, it.Subtotal, it.Status, it.IsNew,
		nullStr(it.Comments), nullStr(it.PreparedBy), it.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM order_items WHERE id = ?)`, it.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrOrderItemNotFound
		}
	}
	return nil
}

// DeleteItemTx removes one line item.
func (r *OrderRepo) DeleteItemTx(ctx context.Context, tx *sql.Tx, itemID uint64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE id = ?`, itemID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrOrderItemNotFound
	}
	return nil
}

// UpdateTx persists the mutable order fields. Items are saved separately.
func (r *OrderRepo) UpdateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE orders
		 SET status = ?, customer_name = ?, customer_phone = ?, delivery_address = ?,
		     delivery_references = ?, table_id = ?, payment_method = ?,
		     subtotal = ?, tax_amount = ?, tip = ?, total = ?,
		     updated_by = ?, prepared_by = ?, paid_by = ?, updated_at = NOW()
		 WHERE id = ?`,
		o.Status, o.CustomerName, nullStr(o.CustomerPhone), nullStr(o.DeliveryAddress),
		nullStr(o.DeliveryReferences), o.TableID, nullStr(string(o.PaymentMethod)),
		o.Subtotal, o.TaxAmount, o.Tip, o.Total,
		o.UpdatedBy, nullStr(o.PreparedBy), nullStr(o.PaidBy), o.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM orders WHERE id = ?)`, o.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrOrderNotFound
		}
	}
	return nil
}

// DeleteTx removes a cancelled order and its items for good. Only the
// service calls this, and only for orders already in CANCELLED.
func (r *OrderRepo) DeleteTx(ctx context.Context, tx *sql.Tx, orderID uint64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, orderID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, orderID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// GetByID loads an order with its items, without locking.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (*model.Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderCols+` FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, r.db, o); err != nil {
		return nil, err
	}
	return o, nil
}

// GetByIDTx loads an order with a row lock held for the rest of the
// transaction, then its items. Every mutating command starts here.
func (r *OrderRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Order, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+orderCols+` FROM orders WHERE id = ? FOR UPDATE`, id)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, tx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// GetByNumber resolves an order by its public number.
func (r *OrderRepo) GetByNumber(ctx context.Context, number string) (*model.Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderCols+` FROM orders WHERE order_number = ?`, number)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, r.db, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OrderRepo) loadItems(ctx context.Context, q querier, o *model.Order) error {
	rows, err := q.QueryContext(ctx,
		`SELECT `+itemCols+` FROM order_items WHERE order_id = ? ORDER BY id`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	var menuIDs []uint64
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return err
		}
		o.Items = append(o.Items, *it)
		menuIDs = append(menuIDs, it.MenuItemID)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return attachMenuItems(ctx, q, o.Items, menuIDs)
}

// attachMenuItems loads the referenced menu items (with recipes) and links
// them into the order items so preparation and stock decisions work off fresh
// catalog data. A menu item deleted since the order was taken is left nil.
func attachMenuItems(ctx context.Context, q querier, items []model.OrderItem, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	menus, err := menuItemsByIDs(ctx, q, ids)
	if err != nil {
		return err
	}
	byID := make(map[uint64]*model.MenuItem, len(menus))
	for i := range menus {
		byID[menus[i].ID] = &menus[i]
	}
	for i := range items {
		items[i].MenuItem = byID[items[i].MenuItemID]
	}
	return nil
}

// ActiveOrderByTableTx reports the non-terminal order currently holding the
// table, or ErrOrderNotFound. Called under the table's row lock when a new
// order wants the table, which enforces one active order per table.
func (r *OrderRepo) ActiveOrderByTableTx(ctx context.Context, tx *sql.Tx, tableID uint64) (*model.Order, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+orderCols+` FROM orders
		 WHERE table_id = ? AND status NOT IN (?, ?)
		 ORDER BY id DESC LIMIT 1 FOR UPDATE`,
		tableID, model.StatusPaid, model.StatusCancelled)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, tx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// ExistsByNumber reports whether an order number is already taken.
func (r *OrderRepo) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM orders WHERE order_number = ?)`, number).Scan(&exists)
	return exists, err
}

// LastSequenceForPrefix returns the highest NNN already issued under a
// day-prefix like "ORD-20260828-". Zero means no orders yet today. Used to
// reseed the counter when Redis is unavailable.
func (r *OrderRepo) LastSequenceForPrefix(ctx context.Context, prefix string) (int, error) {
	var seq sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT MAX(CAST(SUBSTRING(order_number, ?) AS UNSIGNED))
		 FROM orders WHERE order_number LIKE ?`,
		len(prefix)+1, prefix+"%").Scan(&seq)
	if err != nil {
		return 0, err
	}
	return int(seq.Int64), nil
}

// ListFilter narrows List results. Zero values mean "no filter".
type ListFilter struct {
	Status  model.OrderStatus
	Type    model.OrderType
	TableID uint64
	Active  bool      // only orders that are not PAID or CANCELLED
	From    time.Time // inclusive
	To      time.Time // exclusive
}

// List returns orders matching the filter, newest first, items included.
func (r *OrderRepo) List(ctx context.Context, f ListFilter) ([]model.Order, error) {
	query := `SELECT ` + orderCols + ` FROM orders WHERE 1=1`
	var args []any
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.Type != "" {
		query += ` AND order_type = ?`
		args = append(args, f.Type)
	}
	if f.TableID != 0 {
		query += ` AND table_id = ?`
		args = append(args, f.TableID)
	}
	if f.Active {
		query += ` AND status NOT IN (?, ?)`
		args = append(args, model.StatusPaid, model.StatusCancelled)
	}
	if !f.From.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, f.From)
	}
	if !f.To.IsZero() {
		query += ` AND created_at < ?`
		args = append(args, f.To)
	}
	query += ` ORDER BY id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := r.loadItems(ctx, r.db, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// TodaysRevenue sums the totals of orders paid today.
func (r *OrderRepo) TodaysRevenue(ctx context.Context, now time.Time) (decimal.Decimal, error) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var total decimal.NullDecimal
	err := r.db.QueryRowContext(ctx,
		`SELECT SUM(total) FROM orders
		 WHERE status = ? AND updated_at >= ? AND updated_at < ?`,
		model.StatusPaid, start, start.AddDate(0, 0, 1)).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
