package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/elgransazon/pos-backend/internal/model"
)

// Monetary fields travel as fixed two-decimal strings so clients never see
// float artifacts.

func orderJSON(o *model.Order) echo.Map {
	items := make([]echo.Map, 0, len(o.Items))
	for i := range o.Items {
		items = append(items, itemJSON(&o.Items[i]))
	}
	out := echo.Map{
		"id":           o.ID,
		"order_number": o.OrderNumber,
		"order_type":   o.Type,
		"status":       o.Status,
		"subtotal":     o.Subtotal.StringFixed(2),
		"tax_rate":     o.TaxRate.String(),
		"tax_amount":   o.TaxAmount.StringFixed(2),
		"tip":          o.Tip.StringFixed(2),
		"total":        o.Total.StringFixed(2),
		"items":        items,
		"created_by":   o.CreatedBy,
		"created_at":   o.CreatedAt.Format(time.RFC3339),
		"updated_at":   o.UpdatedAt.Format(time.RFC3339),
	}
	if o.CustomerName != "" {
		out["customer_name"] = o.CustomerName
	}
	if o.CustomerPhone != "" {
		out["customer_phone"] = o.CustomerPhone
	}
	if o.DeliveryAddress != "" {
		out["delivery_address"] = o.DeliveryAddress
	}
	if o.DeliveryReferences != "" {
		out["delivery_references"] = o.DeliveryReferences
	}
	if o.TableID != nil {
		out["table_id"] = *o.TableID
	}
	if o.PaymentMethod != "" {
		out["payment_method"] = o.PaymentMethod
	}
	if o.PreparedBy != "" {
		out["prepared_by"] = o.PreparedBy
	}
	if o.PaidBy != "" {
		out["paid_by"] = o.PaidBy
	}
	return out
}

func itemJSON(it *model.OrderItem) echo.Map {
	out := echo.Map{
		"id":           it.ID,
		"menu_item_id": it.MenuItemID,
		"quantity":     it.Quantity,
		"unit_price":   it.UnitPrice.StringFixed(2),
		"subtotal":     it.Subtotal.StringFixed(2),
		"status":       it.Status,
		"is_new":       it.IsNew,
	}
	if it.MenuItem != nil {
		out["name"] = it.MenuItem.Name
	}
	if it.Comments != "" {
		out["comments"] = it.Comments
	}
	if it.PreparedBy != "" {
		out["prepared_by"] = it.PreparedBy
	}
	return out
}

func tableJSON(t *model.RestaurantTable) echo.Map {
	out := echo.Map{
		"id":           t.ID,
		"table_number": t.Number,
		"capacity":     t.Capacity,
		"status":       t.Status,
		"is_occupied":  t.Occupied,
	}
	if t.Location != "" {
		out["location"] = t.Location
	}
	if t.Comments != "" {
		out["comments"] = t.Comments
	}
	return out
}

func reservationJSON(r *model.Reservation) echo.Map {
	out := echo.Map{
		"id":             r.ID,
		"table_id":       r.TableID,
		"table_number":   r.TableNumber,
		"customer_name":  r.CustomerName,
		"customer_phone": r.CustomerPhone,
		"guests":         r.Guests,
		"date":           r.Date.Format("2006-01-02"),
		"time":           r.Time.Format("15:04"),
		"status":         r.Status,
	}
	if r.CustomerEmail != "" {
		out["customer_email"] = r.CustomerEmail
	}
	if r.SpecialRequests != "" {
		out["special_requests"] = r.SpecialRequests
	}
	return out
}

func ingredientJSON(i *model.Ingredient) echo.Map {
	return echo.Map{
		"id":            i.ID,
		"name":          i.Name,
		"current_stock": i.CurrentStock.String(),
		"min_stock":     i.MinStock.String(),
		"max_stock":     i.MaxStock.String(),
		"unit":          i.Unit,
		"out_of_stock":  i.OutOfStock(),
		"low_stock":     i.LowStock(),
	}
}

func menuItemJSON(m *model.MenuItem) echo.Map {
	return echo.Map{
		"id":                   m.ID,
		"name":                 m.Name,
		"description":          m.Description,
		"price":                m.Price.StringFixed(2),
		"requires_preparation": m.RequiresPreparation,
		"available":            m.Available,
	}
}
