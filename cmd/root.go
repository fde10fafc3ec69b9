package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "canteend",
	Short: "Campus canteen menu and ordering backend",
	Long:  `canteend loads school canteen menus from a document store, tracks in-progress selections, and records finalized orders for later retrieval and export.`,
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./canteend.yaml)")

	rootCmd.PersistentFlags().String("augment-trigger", "至善餐廳", "Canteen whose presence injects the synthetic vendor")
	rootCmd.PersistentFlags().String("augment-vendor", "全家便利商店", "Name of the synthetic convenience-store vendor")
	rootCmd.PersistentFlags().String("augment-category", "分類", "Category label for user-contributed vendor items")
	rootCmd.PersistentFlags().Bool("kafka-enabled", false, "Enable Kafka output for committed orders")
	rootCmd.PersistentFlags().String("kafka-broker-list", "localhost:9092", "Kafka broker list")

	viper.BindPFlag("augment_trigger", rootCmd.PersistentFlags().Lookup("augment-trigger"))
	viper.BindPFlag("augment_vendor", rootCmd.PersistentFlags().Lookup("augment-vendor"))
	viper.BindPFlag("augment_category", rootCmd.PersistentFlags().Lookup("augment-category"))
	viper.BindPFlag("kafka_enabled", rootCmd.PersistentFlags().Lookup("kafka-enabled"))
	viper.BindPFlag("kafka_broker_list", rootCmd.PersistentFlags().Lookup("kafka-broker-list"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
