package entity

// MenuItem is a product of the catalog. Price is a whole number of VND.
type MenuItem struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Image       string `json:"img"`
	CategoryID  int    `json:"category_id"`
	Available   bool   `json:"available"`
}

/*
Mysql Schema:
CREATE TABLE menu_items (
	id INT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	description TEXT NOT NULL,
	price BIGINT NOT NULL,
	img VARCHAR(500) NOT NULL DEFAULT '',
	category_id INT NOT NULL DEFAULT 0,
	available TINYINT(1) NOT NULL DEFAULT 1
);
*/
