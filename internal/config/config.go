package config

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type Config struct {
	//Application config
	LogLevel string `mapstructure:"LogLevel"`

	// Pipeline config
	DataDir      string `mapstructure:"DATA_DIR"`
	NameTemplate string `mapstructure:"NAME_TEMPLATE"`
	YearStart    int    `mapstructure:"YEAR_START"`
	YearEnd      int    `mapstructure:"YEAR_END"`
	PipelineMode string `mapstructure:"PIPELINE_MODE"`
	TopN         int    `mapstructure:"TOP_N"`
	OutputDir    string `mapstructure:"OUTPUT_DIR"`

	// Database config
	DBDriver   string `mapstructure:"DB_DRIVER"`
	DBName     string `mapstructure:"DB_NAME"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBssl      string `mapstructure:"DB_SSL"`
	DBTable    string `mapstructure:"DB_TABLE"`
	DBIfExists string `mapstructure:"DB_IF_EXISTS"`
	DBBatch    int    `mapstructure:"DB_BATCH_SIZE"`

	// Artifact publishing
	S3Bucket              string `mapstructure:"S3_BUCKET"`
	S3Prefix              string `mapstructure:"S3_PREFIX"`
	AWSRegion             string `mapstructure:"AWS_REGION"`
	KafkaBootstrapServers string `mapstructure:"KAFKA_BOOTSTRAP_SERVERS"`
	KafkaSecurityProtocol string `mapstructure:"KAFKA_SECURITY_PROTOCOL"`
	KafkaSASLMechanism    string `mapstructure:"KAFKA_SASL_MECHANISM"`
	KafkaCA               string `mapstructure:"KAFKA_CA"`
	KafkaUsername         string `mapstructure:"KAFKA_USERNAME"`
	KafkaPassword         string `mapstructure:"KAFKA_PASSWORD"`
	ReportTopic           string `mapstructure:"REPORT_TOPIC"`
	PushgatewayURL        string `mapstructure:"PUSHGATEWAY_URL"`

	API_PORT          string `mapstructure:"API_PORT"`
	ReadHeaderTimeout int    `mapstructure:"READ_HEADER_TIMEOUT"`
}

var cfg *Config = nil

func initConfig() {
	viper.AutomaticEnv()

	// default pipeline config
	viper.SetDefault("DATA_DIR", "./data")
	viper.SetDefault("NAME_TEMPLATE", "ImportsExports_Coffee")
	viper.SetDefault("YEAR_START", 2018)
	viper.SetDefault("YEAR_END", 2024)
	viper.SetDefault("PIPELINE_MODE", "raw")
	viper.SetDefault("TOP_N", 0)
	viper.SetDefault("OUTPUT_DIR", "./output")

	// default DB Config
	viper.SetDefault("DB_DRIVER", "mysql")
	viper.SetDefault("DB_NAME", "coffee")
	viper.SetDefault("DB_USER", "root")
	viper.SetDefault("DB_PASSWORD", "")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "3306")
	viper.SetDefault("DB_SSL", "disable")
	viper.SetDefault("DB_TABLE", "coffee_trade")
	viper.SetDefault("DB_IF_EXISTS", "replace")
	viper.SetDefault("DB_BATCH_SIZE", 500)

	viper.SetDefault("KAFKA_BOOTSTRAP_SERVERS", "localhost:29092")
	viper.SetDefault("S3_PREFIX", "coffee-trade")
	viper.SetDefault("AWS_REGION", "us-east-1")
	viper.SetDefault("API_PORT", "8000")
	viper.SetDefault("READ_HEADER_TIMEOUT", 10)
	viper.SetDefault("LogLevel", "INFO")

	// Hack till viper issue get fix - https://github.com/spf13/viper/issues/761
	envKeysMap := &map[string]interface{}{}
	if err := mapstructure.Decode(Config{}, &envKeysMap); err != nil {
		fmt.Println(err)
	}
	for k := range *envKeysMap {
		if bindErr := viper.BindEnv(k); bindErr != nil {
			fmt.Println(bindErr)
		}
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		fmt.Println("Can not unmarshal config. Exiting.. ", err)
		os.Exit(1)
	}
}

func GetConfig() *Config {
	if cfg == nil {
		initConfig()
	}
	return cfg
}
