package entity

// Category groups menu items. A menu item with category_id 0 has none.
type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

/*
Mysql Schema:
CREATE TABLE categories (
	id INT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(100) NOT NULL UNIQUE,
	description VARCHAR(255) NOT NULL DEFAULT '',
	image VARCHAR(500) NOT NULL DEFAULT ''
);
*/
