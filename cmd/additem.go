package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/yuchialin/canteend/internal/augment"
	"github.com/yuchialin/canteend/internal/document"
	"github.com/yuchialin/canteend/internal/models"
	"github.com/yuchialin/canteend/internal/repositories/postgres"
)

// additem appends a user-contributed item to the synthetic vendor and writes
// the rewritten vendor document back to the store.
var addItemCmd = &cobra.Command{
	Use:   "additem <name> <price> <calories>",
	Short: "Add an item to the dynamic convenience-store vendor",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		item, err := models.ParseMenuItem(args[0], args[1], args[2])
		if err != nil {
			return err
		}

		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		ctx := cmd.Context()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()

		repo := postgres.NewDocumentRepository(pool)
		mapper := document.NewMapper(nil)
		rule := augment.Rule{
			TriggerCanteen: cfg.AugmentTrigger,
			VendorName:     cfg.AugmentVendor,
			CategoryLabel:  cfg.AugmentCategory,
		}

		docs, err := repo.ListRestaurantDocuments(ctx)
		if err != nil {
			return err
		}
		forest, errs := mapper.ToForest(docs)
		for _, e := range errs {
			log.Printf("additem: %v", e)
		}
		forest = rule.Apply(forest)

		forest, err = rule.AddDynamicItem(forest, rule.VendorName, rule.CategoryLabel, item)
		if err != nil {
			return err
		}

		vendor, ok := forest.Canteen(rule.VendorName)
		if !ok {
			return &models.NotFoundError{Kind: "vendor", Name: rule.VendorName}
		}
		if err := repo.UpsertRestaurantDocument(ctx, vendor.Name, mapper.ToDocument(vendor)); err != nil {
			return err
		}

		fmt.Printf("added %s ($%d, %.1f kcal) to %s\n", item.Name, item.Price, item.Calories, vendor.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addItemCmd)
}
