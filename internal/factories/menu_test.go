package factories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuchialin/canteend/internal/models"
)

func TestCreateCanteenHonorsConfiguredCounts(t *testing.T) {
	cfg := &models.Config{SeedRestaurants: 2, SeedCategories: 3, SeedItemsPerLevel: 4}
	factory := &MenuFactory{}

	canteen := factory.CreateCanteen(0, cfg)
	require.Len(t, canteen.Restaurants, 2)
	for _, r := range canteen.Restaurants {
		assert.Len(t, r.Categories, 3)
		for _, cat := range r.Categories {
			// duplicate dish names within a category are dropped, so the
			// configured count is an upper bound
			assert.NotEmpty(t, cat.Items)
			assert.LessOrEqual(t, len(cat.Items), 4)
		}
	}
}

func TestCreateCanteen(t *testing.T) {
	cfg := &models.Config{SeedRestaurants: 5}
	factory := &MenuFactory{}

	canteen := factory.CreateCanteen(0, cfg)
	require.Len(t, canteen.Restaurants, 5)

	seen := map[string]bool{}
	for _, r := range canteen.Restaurants {
		assert.False(t, seen[r.Name], "duplicate restaurant name %q", r.Name)
		seen[r.Name] = true
		assert.NotEmpty(t, r.Categories)

		for _, cat := range r.Categories {
			assert.NotEmpty(t, cat.Name)
			for _, item := range cat.Items {
				assert.NotEmpty(t, item.Name)
				assert.GreaterOrEqual(t, item.Price, 25)
				assert.LessOrEqual(t, item.Price, 140)
				assert.Greater(t, item.Calories, 0.0)
			}
		}
	}
}
