package factories

import (
	"fmt"
	"math/rand"

	"github.com/jaswdr/faker"
	"github.com/yuchialin/canteend/internal/models"
)

var fake = faker.New()

// MenuFactory generates plausible canteen menus for seeding a development
// database.
type MenuFactory struct{}

func (mf *MenuFactory) CreateCanteen(index int, cfg *models.Config) models.Canteen {
	restaurants := make([]models.Restaurant, 0, cfg.SeedRestaurants)
	for i := 0; i < cfg.SeedRestaurants; i++ {
		restaurants = append(restaurants, mf.createRestaurant(restaurants, cfg))
	}
	return models.Canteen{
		Name:        fmt.Sprintf("%s 餐廳 %d", fake.Address().StreetName(), index+1),
		Restaurants: restaurants,
	}
}

func (mf *MenuFactory) createRestaurant(siblings []models.Restaurant, cfg *models.Config) models.Restaurant {
	name := fake.Company().Name()
	for restaurantNamed(siblings, name) {
		name = fake.Company().Name()
	}

	categoryNames := []string{"主食", "麵類", "飯類", "湯品", "小菜", "飲料", "甜點"}
	rand.Shuffle(len(categoryNames), func(i, j int) {
		categoryNames[i], categoryNames[j] = categoryNames[j], categoryNames[i]
	})
	count := cfg.SeedCategories
	if count <= 0 {
		count = rand.Intn(3) + 2
	}
	if count > len(categoryNames) {
		count = len(categoryNames)
	}

	categories := make([]models.Category, 0, count)
	for _, categoryName := range categoryNames[:count] {
		categories = append(categories, mf.createCategory(categoryName, cfg))
	}
	return models.Restaurant{Name: name, Categories: categories}
}

func (mf *MenuFactory) createCategory(name string, cfg *models.Config) models.Category {
	count := cfg.SeedItemsPerLevel
	if count <= 0 {
		count = rand.Intn(5) + 3
	}
	items := make([]models.MenuItem, 0, count)
	for i := 0; i < count; i++ {
		item := mf.createItem()
		if !itemNamed(items, item.Name) {
			items = append(items, item)
		}
	}
	return models.Category{Name: name, Items: items}
}

func (mf *MenuFactory) createItem() models.MenuItem {
	dishes := []string{
		"滷肉飯", "雞腿便當", "排骨飯", "牛肉麵", "陽春麵", "蛋炒飯",
		"飯糰", "水餃", "鍋貼", "肉羹湯", "味噌湯", "燙青菜",
		"珍珠奶茶", "紅茶", "豆漿", "蛋餅", "蘿蔔糕", "三明治",
	}
	return models.MenuItem{
		Name:     dishes[rand.Intn(len(dishes))],
		Price:    (rand.Intn(24) + 5) * 5, // 25 to 140, in 5-dollar steps
		Calories: fake.Float64(1, 80, 900),
	}
}

func restaurantNamed(rs []models.Restaurant, name string) bool {
	for _, r := range rs {
		if r.Name == name {
			return true
		}
	}
	return false
}

func itemNamed(items []models.MenuItem, name string) bool {
	for _, it := range items {
		if it.Name == name {
			return true
		}
	}
	return false
}
