package config

import (
	"github.com/spf13/viper"
	"sync"
)

var once sync.Once

func InitConfig() {
	once.Do(func() {
		viper.AutomaticEnv()

		viper.BindEnv("metrics_port", "METRICS_PORT")
		viper.BindEnv("telegram_bot_token", "TELEGRAM_BOT_TOKEN")
		viper.BindEnv("tinkoff_token", "TINKOFF_TOKEN")
		viper.BindEnv("db_path", "DB_PATH")
		viper.BindEnv("debug", "DEBUG")
		viper.BindEnv("lang", "LANG")
		viper.BindEnv("timezone", "TIMEZONE")
		viper.BindEnv("alert_interval_minutes", "ALERT_INTERVAL_MINUTES")
		viper.BindEnv("digest_time", "DIGEST_TIME")
		viper.BindEnv("misfire_grace_minutes", "MISFIRE_GRACE_MINUTES")
		viper.BindEnv("crypto_suffixes", "CRYPTO_SUFFIXES")
		viper.BindEnv("crypto_benchmark", "CRYPTO_BENCHMARK")
		viper.BindEnv("stocks_benchmark", "STOCKS_BENCHMARK")

		viper.SetDefault("metrics_port", 9090)
		viper.SetDefault("db_path", "/app/data/bot.db")
		viper.SetDefault("debug", false)
		viper.SetDefault("lang", "en")
		viper.SetDefault("timezone", "Europe/Moscow")
		viper.SetDefault("alert_interval_minutes", 5)
		viper.SetDefault("digest_time", "09:00")
		viper.SetDefault("misfire_grace_minutes", 5)
		viper.SetDefault("crypto_suffixes", "USDT,BTC,ETH")
		viper.SetDefault("crypto_benchmark", "BTCUSDT")
		viper.SetDefault("stocks_benchmark", "SBER")
	})
}

func GetString(key string) string {
	InitConfig()
	return viper.GetString(key)
}

func GetInt(key string) int {
	InitConfig()
	return viper.GetInt(key)
}

func GetBool(key string) bool {
	InitConfig()
	return viper.GetBool(key)
}
