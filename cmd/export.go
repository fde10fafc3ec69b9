package cmd

import (
	"fmt"
	"path"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/yuchialin/canteend/internal/cloudwriter"
	"github.com/yuchialin/canteend/internal/export"
	"github.com/yuchialin/canteend/internal/history"
	"github.com/yuchialin/canteend/internal/models"
	"github.com/yuchialin/canteend/internal/repositories/postgres"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export an owner's order history to parquet",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		owner := viper.GetString("export_owner")
		if owner == "" {
			return &models.ValidationError{Field: "owner", Value: "", Reason: "must not be empty"}
		}
		target := viper.GetString("export_output")
		if target == "" {
			target = cfg.ExportPath
		}
		if target == "" {
			return &models.ValidationError{Field: "output", Value: "", Reason: "must not be empty"}
		}

		ctx := cmd.Context()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()

		recorder := history.NewRecorder(postgres.NewHistoryRepository(pool), nil, nil)
		records, err := recorder.FetchAll(ctx, owner)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Printf("no history for owner %s\n", owner)
			return nil
		}

		if strings.HasPrefix(target, "s3://") {
			trimmed := strings.TrimPrefix(target, "s3://")
			bucket, objectPath, ok := strings.Cut(trimmed, "/")
			if !ok || objectPath == "" {
				objectPath = path.Join("history", owner, "data.parquet")
			}
			factory, err := cloudwriter.NewS3WriterFactory(cfg.CloudRegion)
			if err != nil {
				return err
			}
			if err := export.WriteCloud(factory, bucket, objectPath, records); err != nil {
				return err
			}
			fmt.Printf("exported %d records to s3://%s/%s\n", len(records), bucket, objectPath)
			return nil
		}

		if err := export.WriteLocal(target, records); err != nil {
			return err
		}
		fmt.Printf("exported %d records to %s\n", len(records), target)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("owner", "", "Owner identifier whose history to export")
	exportCmd.Flags().String("output", "", "Destination: local path or s3://bucket/key")
	viper.BindPFlag("export_owner", exportCmd.Flags().Lookup("owner"))
	viper.BindPFlag("export_output", exportCmd.Flags().Lookup("output"))
	rootCmd.AddCommand(exportCmd)
}
