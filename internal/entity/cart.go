package entity

// CartLine is one (product, quantity) pairing of a user's cart. The product
// fields are a denormalized snapshot taken when the cart was fetched.
type CartLine struct {
	ProductID int    `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Image     string `json:"image"`
	Quantity  int    `json:"quantity"`
}

func (l CartLine) LineTotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// Cart is the current cart of one user. UserID is zero for an anonymous
// session, whose cart is always empty.
type Cart struct {
	UserID int        `json:"user_id"`
	Lines  []CartLine `json:"lines"`
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Clone returns a deep copy so callers can never alias the owner's slice.
func (c Cart) Clone() Cart {
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	return Cart{UserID: c.UserID, Lines: lines}
}

// CartItemRow is a persisted cart row joined with its menu item.
type CartItemRow struct {
	ID         int    `json:"id"`
	UserID     int    `json:"user_id"`
	MenuItemID int    `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
	Price      int64  `json:"price"`
	Name       string `json:"name"`
	Image      string `json:"img"`
}

/*
Mysql Schema:
CREATE TABLE cart_items (
	id INT AUTO_INCREMENT PRIMARY KEY,
	user_id INT NOT NULL,
	menu_item_id INT NOT NULL,
	quantity INT NOT NULL,
	UNIQUE KEY uq_cart_user_item (user_id, menu_item_id)
);
*/
