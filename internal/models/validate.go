package models

import "strconv"

// ParseMenuItem validates user-supplied item fields and builds a MenuItem.
// Rejections happen here, before the mapper or any store ever sees the
// value. Price is in the currency's minor unit and must be a non-negative
// integer; calories must be a non-negative number.
func ParseMenuItem(name, price, calories string) (MenuItem, error) {
	if name == "" {
		return MenuItem{}, &ValidationError{Field: "name", Value: name, Reason: "must not be empty"}
	}
	p, err := strconv.Atoi(price)
	if err != nil {
		return MenuItem{}, &ValidationError{Field: "price", Value: price, Reason: "not an integer"}
	}
	if p < 0 {
		return MenuItem{}, &ValidationError{Field: "price", Value: price, Reason: "must not be negative"}
	}
	c, err := strconv.ParseFloat(calories, 64)
	if err != nil {
		return MenuItem{}, &ValidationError{Field: "calories", Value: calories, Reason: "not a number"}
	}
	if c < 0 {
		return MenuItem{}, &ValidationError{Field: "calories", Value: calories, Reason: "must not be negative"}
	}
	return MenuItem{Name: name, Price: p, Calories: c}, nil
}
