package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"food-order-service/internal/entity"
)

// amount is a VND amount that the backend may send as a JSON number or as a
// decimal string ("45000.00"). Fractions are dropped.
type amount int64

func (a *amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*a = 0
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return fmt.Errorf("invalid amount %s: %w", b, err)
	}
	if d.IsNegative() {
		*a = 0
		return nil
	}
	*a = amount(d.Floor().IntPart())
	return nil
}

type menuItemDTO struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       amount `json:"price"`
	Img         string `json:"img"`
	Image       string `json:"image"`
	CategoryID  int    `json:"category_id"`
	Available   *bool  `json:"available"`
}

func (d menuItemDTO) toEntity() entity.MenuItem {
	available := true
	if d.Available != nil {
		available = *d.Available
	}
	return entity.MenuItem{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Price:       int64(d.Price),
		Image:       firstNonEmpty(d.Img, d.Image),
		CategoryID:  d.CategoryID,
		Available:   available,
	}
}

type cartItemDTO struct {
	MenuItemID int    `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
	Price      amount `json:"price"`
	MenuItem   *struct {
		Name  string `json:"name"`
		Img   string `json:"img"`
		Image string `json:"image"`
	} `json:"MenuItem"`
}

type cartDTO struct {
	Items []cartItemDTO `json:"items"`
}

// lines converts the server rows to cart lines in server order. Rows with a
// non-positive quantity are dropped and repeated products are merged into the
// first occurrence.
func (d cartDTO) lines() []entity.CartLine {
	lines := make([]entity.CartLine, 0, len(d.Items))
	seen := make(map[int]int, len(d.Items))
	for _, it := range d.Items {
		if it.Quantity <= 0 {
			continue
		}
		if idx, ok := seen[it.MenuItemID]; ok {
			lines[idx].Quantity += it.Quantity
			continue
		}
		line := entity.CartLine{
			ProductID: it.MenuItemID,
			Name:      "Unknown Product",
			UnitPrice: int64(it.Price),
			Quantity:  it.Quantity,
		}
		if it.MenuItem != nil {
			if it.MenuItem.Name != "" {
				line.Name = it.MenuItem.Name
			}
			line.Image = firstNonEmpty(it.MenuItem.Img, it.MenuItem.Image)
		}
		seen[it.MenuItemID] = len(lines)
		lines = append(lines, line)
	}
	return lines
}

type voucherDTO struct {
	ID             int             `json:"id"`
	Code           string          `json:"code"`
	Description    string          `json:"description"`
	DiscountType   string          `json:"discount_type"`
	DiscountValue  decimal.Decimal `json:"discount_value"`
	MinOrderAmount amount          `json:"min_order_amount"`
	StartDate      entity.Date     `json:"start_date"`
	EndDate        entity.Date     `json:"end_date"`
	Limit          int             `json:"limit"`
	MaxUsesPerUser int             `json:"max_uses_per_user"`
	UsedCount      int             `json:"used_count"`
	Status         string          `json:"status"`
}

func (d voucherDTO) toEntity() (entity.Voucher, error) {
	dt, err := entity.ParseDiscountType(d.DiscountType)
	if err != nil {
		return entity.Voucher{}, err
	}
	st, err := entity.ParseVoucherStatus(d.Status)
	if err != nil {
		return entity.Voucher{}, err
	}
	return entity.Voucher{
		ID:             d.ID,
		Code:           entity.NormalizeVoucherCode(d.Code),
		Description:    d.Description,
		DiscountType:   dt,
		DiscountValue:  d.DiscountValue,
		MinOrderAmount: int64(d.MinOrderAmount),
		StartDate:      d.StartDate,
		EndDate:        d.EndDate,
		UsageLimit:     d.Limit,
		PerUserLimit:   d.MaxUsesPerUser,
		UsedCount:      d.UsedCount,
		Status:         st,
	}, nil
}

type orderLineDTO struct {
	ID         int    `json:"id"`
	OrderID    int    `json:"order_id"`
	MenuItemID int    `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
	Price      amount `json:"price"`
	LineTotal  amount `json:"line_total"`
}

func (d orderLineDTO) toEntity() entity.OrderLine {
	total := int64(d.LineTotal)
	if total == 0 {
		total = int64(d.Price) * int64(d.Quantity)
	}
	return entity.OrderLine{
		ID:        d.ID,
		OrderID:   d.OrderID,
		ProductID: d.MenuItemID,
		Quantity:  d.Quantity,
		UnitPrice: int64(d.Price),
		LineTotal: total,
	}
}

type orderDTO struct {
	ID              int            `json:"id"`
	UserID          int            `json:"user_id"`
	Subtotal        amount         `json:"subtotal"`
	Discount        amount         `json:"discount"`
	ShippingFee     amount         `json:"shipping_fee"`
	TotalPrice      amount         `json:"total_price"`
	VoucherCode     string         `json:"voucher_code"`
	FullName        string         `json:"full_name"`
	Phone           string         `json:"phone"`
	ShippingAddress string         `json:"shipping_address"`
	Status          string         `json:"status"`
	PaymentStatus   string         `json:"payment_status"`
	PaymentMethod   string         `json:"payment_method"`
	CreatedAt       time.Time      `json:"created_at"`
	Lines           []orderLineDTO `json:"lines"`
}

func (d orderDTO) toEntity() (entity.Order, error) {
	status := entity.OrderPending
	if d.Status != "" {
		st, err := entity.ParseOrderStatus(d.Status)
		if err != nil {
			return entity.Order{}, err
		}
		status = st
	}
	payment, err := entity.ParsePaymentStatus(d.PaymentStatus)
	if err != nil {
		return entity.Order{}, err
	}
	o := entity.Order{
		ID:              d.ID,
		UserID:          d.UserID,
		Subtotal:        int64(d.Subtotal),
		Discount:        int64(d.Discount),
		ShippingFee:     int64(d.ShippingFee),
		TotalPrice:      int64(d.TotalPrice),
		VoucherCode:     entity.NormalizeVoucherCode(d.VoucherCode),
		FullName:        d.FullName,
		Phone:           d.Phone,
		ShippingAddress: d.ShippingAddress,
		Status:          status,
		PaymentStatus:   payment,
		PaymentMethod:   d.PaymentMethod,
		CreatedAt:       d.CreatedAt,
	}
	for _, l := range d.Lines {
		o.Lines = append(o.Lines, l.toEntity())
	}
	return o, nil
}

// errorBody covers both {"error": ...} and {"message": ...} answers.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Reason  string `json:"reason"`
}

func (b errorBody) text() string {
	return firstNonEmpty(b.Error, b.Message)
}

func decodeList[D any, E any](raw json.RawMessage, conv func(D) (E, error)) ([]E, error) {
	var dtos []D
	if err := json.Unmarshal(raw, &dtos); err != nil {
		return nil, err
	}
	out := make([]E, 0, len(dtos))
	for _, d := range dtos {
		e, err := conv(d)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
