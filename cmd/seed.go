package cmd

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/yuchialin/canteend/internal/document"
	"github.com/yuchialin/canteend/internal/factories"
	"github.com/yuchialin/canteend/internal/models"
	"github.com/yuchialin/canteend/internal/repositories/postgres"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the document store with generated canteen menus",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		if cfg.SeedCanteens <= 0 {
			cfg.SeedCanteens = viper.GetInt("canteens")
		}
		if cfg.SeedRestaurants <= 0 {
			cfg.SeedRestaurants = viper.GetInt("restaurants")
		}

		ctx := cmd.Context()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()

		repo := postgres.NewDocumentRepository(pool)
		mapper := document.NewMapper(nil)
		factory := &factories.MenuFactory{}

		bar := progressbar.Default(int64(cfg.SeedCanteens), "seeding canteens")
		if viper.GetBool("fresh") {
			// wipe and reload in one COPY instead of per-row upserts
			if err := repo.DeleteAll(ctx); err != nil {
				return fmt.Errorf("failed to clear existing documents: %w", err)
			}
			docs := make(map[string]models.RawDocument, cfg.SeedCanteens)
			for i := 0; i < cfg.SeedCanteens; i++ {
				canteen := factory.CreateCanteen(i, cfg)
				docs[canteen.Name] = mapper.ToDocument(canteen)
				bar.Add(1)
			}
			if err := repo.BulkCreate(ctx, docs); err != nil {
				return err
			}
		} else {
			for i := 0; i < cfg.SeedCanteens; i++ {
				canteen := factory.CreateCanteen(i, cfg)
				if err := repo.UpsertRestaurantDocument(ctx, canteen.Name, mapper.ToDocument(canteen)); err != nil {
					return err
				}
				bar.Add(1)
			}
		}

		count, err := repo.Count(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("document store now holds %d canteen documents\n", count)
		return nil
	},
}

func init() {
	seedCmd.Flags().Int("canteens", 3, "Number of canteens to generate")
	seedCmd.Flags().Int("restaurants", 6, "Restaurants per canteen")
	seedCmd.Flags().Bool("fresh", false, "Delete existing documents first")
	viper.BindPFlag("canteens", seedCmd.Flags().Lookup("canteens"))
	viper.BindPFlag("restaurants", seedCmd.Flags().Lookup("restaurants"))
	viper.BindPFlag("fresh", seedCmd.Flags().Lookup("fresh"))
	rootCmd.AddCommand(seedCmd)
}
