// Package selection tracks the items a user has picked for the order in
// progress. Sets are plain values: every operation returns a new set and
// totals are recomputed as a full fold on demand, so there are no running
// counters to drift out of sync.
package selection

import "github.com/yuchialin/canteend/internal/models"

// Set is an ordered sequence of selected menu items. Insertion order is
// preserved and duplicates are allowed: picking the same dish twice means
// ordering two of it.
type Set []models.MenuItem

// Toggle flips membership of item under structural equality, matching the
// checkbox behavior in the menu screens: if a structurally equal item is
// present the first occurrence is removed, otherwise item is appended.
func Toggle(set Set, item models.MenuItem) Set {
	for i, existing := range set {
		if existing.Equal(item) {
			out := make(Set, 0, len(set)-1)
			out = append(out, set[:i]...)
			out = append(out, set[i+1:]...)
			return out
		}
	}
	out := make(Set, 0, len(set)+1)
	out = append(out, set...)
	out = append(out, item)
	return out
}

// Totals folds the set into its aggregate price and calories. An empty set
// totals to (0, 0).
func Totals(set Set) (totalPrice int, totalCalories float64) {
	for _, item := range set {
		totalPrice += item.Price
		totalCalories += item.Calories
	}
	return totalPrice, totalCalories
}

func Clear() Set {
	return Set{}
}

// Contains reports whether a structurally equal item is in the set.
func Contains(set Set, item models.MenuItem) bool {
	for _, existing := range set {
		if existing.Equal(item) {
			return true
		}
	}
	return false
}
