package document

import (
	"log"

	"github.com/yuchialin/canteend/internal/models"
)

// Mapper converts the store's weakly-typed documents into the strongly-typed
// menu forest and back. Decoding is permissive about missing child lists and
// numeric fields but strict about identity: a node without a name is dropped
// and reported, never invented, and same-named siblings are never merged.
type Mapper struct {
	Logger *log.Logger
}

func NewMapper(logger *log.Logger) *Mapper {
	if logger == nil {
		logger = log.Default()
	}
	return &Mapper{Logger: logger}
}

// ToForest decodes a batch of top-level canteen documents. Malformed nodes
// are skipped: the returned error slice carries one SchemaError per dropped
// subtree while the rest of the batch still decodes. The forest is valid
// even when errs is non-empty.
func (m *Mapper) ToForest(docs []models.RawDocument) (models.Forest, []error) {
	forest := make(models.Forest, 0, len(docs))
	var errs []error
	seen := map[string]bool{}
	for _, doc := range docs {
		name, ok := stringField(doc, "name")
		if !ok {
			errs = append(errs, m.skip("", "name"))
			continue
		}
		if seen[name] {
			errs = append(errs, m.duplicate("", name))
			continue
		}
		seen[name] = true

		canteen := models.Canteen{Name: name, Restaurants: []models.Restaurant{}}
		for _, child := range childDocs(doc) {
			r, ok, err := m.decodeRestaurant(name, child)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if !ok {
				continue
			}
			if hasName(canteen.Restaurants, r.Name) {
				errs = append(errs, m.duplicate(name, r.Name))
				continue
			}
			canteen.Restaurants = append(canteen.Restaurants, r)
		}
		forest = append(forest, canteen)
	}
	return forest, errs
}

func (m *Mapper) decodeRestaurant(path string, doc models.RawDocument) (models.Restaurant, bool, error) {
	name, ok := stringField(doc, "name")
	if !ok {
		return models.Restaurant{}, false, m.skip(path, "name")
	}
	r := models.Restaurant{Name: name, Categories: []models.Category{}}
	for _, child := range childDocs(doc) {
		cat, ok, err := m.decodeCategory(path+"/"+name, child)
		if err != nil || !ok {
			if err != nil {
				m.Logger.Printf("skipping malformed category under %s/%s: %v", path, name, err)
			}
			continue
		}
		if categoryNamed(r.Categories, cat.Name) {
			m.Logger.Printf("skipping duplicate category %q under %s/%s", cat.Name, path, name)
			continue
		}
		r.Categories = append(r.Categories, cat)
	}
	return r, true, nil
}

func (m *Mapper) decodeCategory(path string, doc models.RawDocument) (models.Category, bool, error) {
	name, ok := stringField(doc, "name")
	if !ok {
		return models.Category{}, false, m.skip(path, "name")
	}
	cat := models.Category{Name: name, Items: []models.MenuItem{}}
	for _, child := range childDocs(doc) {
		item, ok := m.decodeItem(path+"/"+name, child)
		if !ok {
			continue
		}
		cat.Items = append(cat.Items, item)
	}
	return cat, true, nil
}

// decodeItem reads a terminal menu item leaf. Price and calories default to
// zero when missing or non-numeric; only the name is mandatory.
func (m *Mapper) decodeItem(path string, doc models.RawDocument) (models.MenuItem, bool) {
	name, ok := stringField(doc, "name")
	if !ok {
		m.Logger.Printf("skipping menu item without name under %s", path)
		return models.MenuItem{}, false
	}
	return models.MenuItem{
		Name:     name,
		Price:    intField(doc, "price"),
		Calories: floatField(doc, "calories"),
	}, true
}

// ToDocument is the inverse of ToForest for a single canteen. Round-tripping
// a decoded forest through ToDocument and back yields a structurally equal
// forest.
func (m *Mapper) ToDocument(c models.Canteen) models.RawDocument {
	restaurants := make([]models.RawDocument, 0, len(c.Restaurants))
	for _, r := range c.Restaurants {
		restaurants = append(restaurants, m.restaurantDocument(r))
	}
	return models.RawDocument{"name": c.Name, "items": restaurants}
}

func (m *Mapper) restaurantDocument(r models.Restaurant) models.RawDocument {
	categories := make([]models.RawDocument, 0, len(r.Categories))
	for _, cat := range r.Categories {
		items := make([]models.RawDocument, 0, len(cat.Items))
		for _, it := range cat.Items {
			items = append(items, models.RawDocument{
				"name":     it.Name,
				"price":    it.Price,
				"calories": it.Calories,
			})
		}
		categories = append(categories, models.RawDocument{"name": cat.Name, "items": items})
	}
	return models.RawDocument{"name": r.Name, "items": categories}
}

func (m *Mapper) skip(path, field string) error {
	err := &models.SchemaError{Path: path, Field: field}
	m.Logger.Printf("document mapper: %v", err)
	return err
}

func (m *Mapper) duplicate(path, name string) error {
	err := &models.SchemaError{Path: path + "/" + name, Field: "name (duplicate sibling)"}
	m.Logger.Printf("document mapper: %v", err)
	return err
}

func hasName(rs []models.Restaurant, name string) bool {
	for _, r := range rs {
		if r.Name == name {
			return true
		}
	}
	return false
}

func categoryNamed(cats []models.Category, name string) bool {
	for _, c := range cats {
		if c.Name == name {
			return true
		}
	}
	return false
}

func stringField(doc models.RawDocument, key string) (string, bool) {
	v, ok := doc[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// childDocs resolves the "items" field as a sequence of child documents,
// defaulting to empty. Children that are not documents are ignored.
func childDocs(doc models.RawDocument) []models.RawDocument {
	v, ok := doc["items"]
	if !ok {
		return nil
	}
	switch children := v.(type) {
	case []models.RawDocument:
		return children
	case []any:
		out := make([]models.RawDocument, 0, len(children))
		for _, c := range children {
			switch child := c.(type) {
			case models.RawDocument:
				out = append(out, child)
			case map[string]any:
				out = append(out, models.RawDocument(child))
			}
		}
		return out
	default:
		return nil
	}
}

func intField(doc models.RawDocument, key string) int {
	switch v := doc[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	case float32:
		return int(v)
	default:
		return 0
	}
}

func floatField(doc models.RawDocument, key string) float64 {
	switch v := doc[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}
