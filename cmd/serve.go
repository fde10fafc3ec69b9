package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/yuchialin/canteend/internal/augment"
	"github.com/yuchialin/canteend/internal/document"
	"github.com/yuchialin/canteend/internal/events"
	"github.com/yuchialin/canteend/internal/history"
	"github.com/yuchialin/canteend/internal/models"
	"github.com/yuchialin/canteend/internal/repositories/postgres"
	"github.com/yuchialin/canteend/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run an ordering session against the document store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()

		var publisher history.EventPublisher
		if cfg.KafkaEnabled {
			kafka, err := events.NewKafkaPublisher(cfg.KafkaBrokerList, cfg.KafkaTopic)
			if err != nil {
				return err
			}
			defer kafka.Close()
			publisher = kafka
		}

		recorder := history.NewRecorder(postgres.NewHistoryRepository(pool), publisher, nil)
		rule := augment.Rule{
			TriggerCanteen: cfg.AugmentTrigger,
			VendorName:     cfg.AugmentVendor,
			CategoryLabel:  cfg.AugmentCategory,
		}

		owner := viper.GetString("owner")
		sess := session.New(
			postgres.NewDocumentRepository(pool),
			recorder,
			document.NewMapper(nil),
			rule,
			history.SystemClock{},
			owner,
			nil,
		)
		defer sess.Close()

		if err := sess.Reload(ctx); err != nil {
			return fmt.Errorf("initial menu load failed: %w", err)
		}

		updates := sess.Subscribe()
		go func() {
			for forest := range updates {
				log.Printf("menu published: %d canteens", len(forest))
			}
		}()

		if cfg.ReloadInterval > 0 {
			go func() {
				ticker := time.NewTicker(cfg.ReloadInterval)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						if err := sess.Reload(ctx); err != nil {
							log.Printf("menu reload failed: %v", err)
						}
					}
				}
			}()
		}

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		<-sigs
		log.Println("shutting down")
		return nil
	},
}

func init() {
	serveCmd.Flags().String("owner", "", "Owner identifier used to partition order history")
	viper.BindPFlag("owner", serveCmd.Flags().Lookup("owner"))
	rootCmd.AddCommand(serveCmd)
}
