// Package augment implements the dynamic-vendor policy: a configured canteen
// triggers injection of a synthetic vendor node (a convenience store whose
// menu is user-contributed rather than pre-loaded) into the forest, and items
// can be appended into that vendor after the fact.
package augment

import "github.com/yuchialin/canteend/internal/models"

// Rule is the augmentation policy. The trigger and vendor names come from
// configuration, not code, so the policy is swappable per deployment.
type Rule struct {
	// TriggerCanteen is the canteen whose presence causes the synthetic
	// vendor to be injected.
	TriggerCanteen string
	// VendorName is the reserved name of the synthetic vendor node.
	VendorName string
	// CategoryLabel labels the vendor's single user-contributed category.
	CategoryLabel string
}

// Apply scans the top-level canteens and, if the trigger canteen is present,
// ensures the synthetic vendor node exists alongside it with an empty item
// list. Apply is idempotent: a forest that already carries the vendor is
// returned unchanged.
func (r Rule) Apply(forest models.Forest) models.Forest {
	if _, ok := forest.Canteen(r.VendorName); ok {
		return forest
	}
	if _, ok := forest.Canteen(r.TriggerCanteen); !ok {
		return forest
	}
	out := make(models.Forest, 0, len(forest)+1)
	out = append(out, forest...)
	out = append(out, models.Canteen{Name: r.VendorName, Restaurants: []models.Restaurant{}})
	return out
}

// AddDynamicItem appends item to the named vendor's category labeled
// categoryLabel, lazily creating the vendor subtree when the name is the
// configured synthetic vendor. Only the touched canteen is rebuilt; every
// other canteen in the returned forest shares structure with the input.
//
// A vendor name that is neither present in the forest nor the designated
// synthetic vendor fails with NotFoundError and the input forest is returned
// untouched, so a misconfigured trigger can never write into an arbitrary
// restaurant.
func (r Rule) AddDynamicItem(forest models.Forest, vendorName, categoryLabel string, item models.MenuItem) (models.Forest, error) {
	idx := -1
	for i, c := range forest {
		if c.Name == vendorName {
			idx = i
			break
		}
	}
	if idx < 0 {
		if vendorName != r.VendorName {
			return forest, &models.NotFoundError{Kind: "vendor", Name: vendorName}
		}
		// designated vendor not yet injected: create it on demand
		forest = append(append(make(models.Forest, 0, len(forest)+1), forest...),
			models.Canteen{Name: vendorName, Restaurants: []models.Restaurant{}})
		idx = len(forest) - 1
	}

	out := make(models.Forest, len(forest))
	copy(out, forest)
	out[idx] = appendItem(forest[idx], vendorName, categoryLabel, item)
	return out, nil
}

// appendItem rebuilds only the path down to the dynamic category. The vendor
// canteen holds a single restaurant of the same name with a single labeled
// category; both are created on first use.
func appendItem(c models.Canteen, vendorName, categoryLabel string, item models.MenuItem) models.Canteen {
	rebuilt := models.Canteen{Name: c.Name, Restaurants: make([]models.Restaurant, len(c.Restaurants))}
	copy(rebuilt.Restaurants, c.Restaurants)

	ri := -1
	for i, rest := range rebuilt.Restaurants {
		if rest.Name == vendorName {
			ri = i
			break
		}
	}
	if ri < 0 {
		rebuilt.Restaurants = append(rebuilt.Restaurants, models.Restaurant{
			Name:       vendorName,
			Categories: []models.Category{},
		})
		ri = len(rebuilt.Restaurants) - 1
	}

	rest := rebuilt.Restaurants[ri]
	categories := make([]models.Category, len(rest.Categories))
	copy(categories, rest.Categories)
	rest.Categories = categories

	ci := -1
	for i, cat := range rest.Categories {
		if cat.Name == categoryLabel {
			ci = i
			break
		}
	}
	if ci < 0 {
		rest.Categories = append(rest.Categories, models.Category{Name: categoryLabel, Items: []models.MenuItem{}})
		ci = len(rest.Categories) - 1
	}

	cat := rest.Categories[ci]
	items := make([]models.MenuItem, 0, len(cat.Items)+1)
	items = append(items, cat.Items...)
	items = append(items, item)
	cat.Items = items
	rest.Categories[ci] = cat
	rebuilt.Restaurants[ri] = rest
	return rebuilt
}
