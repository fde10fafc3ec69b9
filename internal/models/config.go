package models

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`

	KafkaEnabled    bool   `mapstructure:"kafka_enabled"`
	KafkaBrokerList string `mapstructure:"kafka_broker_list"`
	KafkaTopic      string `mapstructure:"kafka_topic"`

	// Augmentation policy: which canteen triggers injection of the synthetic
	// convenience-store vendor, what the vendor is called, and the label of
	// its single user-contributed category.
	AugmentTrigger  string `mapstructure:"augment_trigger"`
	AugmentVendor   string `mapstructure:"augment_vendor"`
	AugmentCategory string `mapstructure:"augment_category"`

	// seed command
	SeedCanteens      int `mapstructure:"seed_canteens"`
	SeedRestaurants   int `mapstructure:"seed_restaurants"`
	SeedCategories    int `mapstructure:"seed_categories"`
	SeedItemsPerLevel int `mapstructure:"seed_items_per_level"`

	// export command
	ExportPath  string `mapstructure:"export_path"`
	CloudRegion string `mapstructure:"cloud_region"`
	CloudBucket string `mapstructure:"cloud_bucket"`

	ReloadInterval time.Duration `mapstructure:"reload_interval"`
}

// LoadConfig initializes and reads the configuration using Viper
func LoadConfig(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("canteend")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv() // Read in environment variables that match

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", "5432")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("kafka_topic", "order-history")
	viper.SetDefault("augment_trigger", "至善餐廳")
	viper.SetDefault("augment_vendor", "全家便利商店")
	viper.SetDefault("augment_category", "分類")
	viper.SetDefault("reload_interval", "5m")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToTimeDurationHookFunc(),
		)
	})
	if err := viper.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	return &config, nil
}
