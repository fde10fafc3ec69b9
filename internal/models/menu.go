package models

// MenuItem is a single orderable dish. Prices are kept in the currency's
// minor unit so totals stay integral; calories come from the vendor-supplied
// nutrition sheet and are only approximate.
//
// Items carry no surrogate key: two items with the same name, price and
// calories are indistinguishable. Selection and removal work on structural
// equality, which mirrors how the menu documents are stored.
type MenuItem struct {
	Name     string  `json:"name"`
	Price    int     `json:"price"`
	Calories float64 `json:"calories"`
}

// Equal reports structural equality, the identity used for selection.
func (m MenuItem) Equal(other MenuItem) bool {
	return m.Name == other.Name && m.Price == other.Price && m.Calories == other.Calories
}

type Category struct {
	Name  string     `json:"name"`
	Items []MenuItem `json:"items"`
}

type Restaurant struct {
	Name       string     `json:"name"`
	Categories []Category `json:"items"`
}

// Canteen is a top-level grouping of restaurants, e.g. a school cafeteria.
// Synthetic vendors injected by the augment package also live at this level.
type Canteen struct {
	Name        string       `json:"name"`
	Restaurants []Restaurant `json:"items"`
}

// Forest is the root of the menu tree. It is rebuilt wholesale on every load
// and never mutated in place; any edit builds a new forest and swaps the
// reference, so readers always see a consistent snapshot.
type Forest []Canteen

// Canteen returns the top-level canteen with the given name.
func (f Forest) Canteen(name string) (Canteen, bool) {
	for _, c := range f {
		if c.Name == name {
			return c, true
		}
	}
	return Canteen{}, false
}

// Restaurant walks canteen -> restaurant.
func (f Forest) Restaurant(canteenName, restaurantName string) (Restaurant, bool) {
	c, ok := f.Canteen(canteenName)
	if !ok {
		return Restaurant{}, false
	}
	for _, r := range c.Restaurants {
		if r.Name == restaurantName {
			return r, true
		}
	}
	return Restaurant{}, false
}

// Category walks canteen -> restaurant -> category.
func (f Forest) Category(canteenName, restaurantName, categoryName string) (Category, bool) {
	r, ok := f.Restaurant(canteenName, restaurantName)
	if !ok {
		return Category{}, false
	}
	for _, cat := range r.Categories {
		if cat.Name == categoryName {
			return cat, true
		}
	}
	return Category{}, false
}

// Item walks the full path down to a single menu item.
func (f Forest) Item(canteenName, restaurantName, categoryName, itemName string) (MenuItem, bool) {
	cat, ok := f.Category(canteenName, restaurantName, categoryName)
	if !ok {
		return MenuItem{}, false
	}
	for _, it := range cat.Items {
		if it.Name == itemName {
			return it, true
		}
	}
	return MenuItem{}, false
}
