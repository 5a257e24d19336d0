package main

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/leonelquinteros/gotext"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/vozzhaevsn/BOT-ITMO/config"
	"github.com/vozzhaevsn/BOT-ITMO/internal/alert"
	"github.com/vozzhaevsn/BOT-ITMO/internal/commands"
	"github.com/vozzhaevsn/BOT-ITMO/internal/database"
	"github.com/vozzhaevsn/BOT-ITMO/internal/digest"
	"github.com/vozzhaevsn/BOT-ITMO/internal/metrics"
	"github.com/vozzhaevsn/BOT-ITMO/internal/resolver"
	"github.com/vozzhaevsn/BOT-ITMO/internal/scheduler"
	"github.com/vozzhaevsn/BOT-ITMO/internal/source"
	"github.com/vozzhaevsn/BOT-ITMO/internal/telegram"
)

func init() {
	config.InitConfig()
	setupLogging()
}

func main() {
	gotext.Configure("locales", strings.ToLower(config.GetString("lang")), "default")

	db, err := database.Open(config.GetString("db_path"))
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	metrics.LoadFromDB(db)

	binance := source.NewBinance()
	bybit := source.NewBybit()
	tinkoff := source.NewTinkoff(config.GetString("tinkoff_token"))
	moex := source.NewMOEX()

	res := resolver.New(resolver.Config{
		CryptoSuffixes: strings.Split(config.GetString("crypto_suffixes"), ","),
		CryptoChain:    []source.Source{binance, bybit},
		EquityChain:    []source.Source{tinkoff, moex},
	})

	cmds := &commands.Commands{Repo: db, Resolver: res}

	bot, err := telegram.NewBot(telegram.BotConfig{
		Token:          config.GetString("telegram_bot_token"),
		Debug:          config.GetBool("debug"),
		UpdatesTimeout: 60,
	}, cmds)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	alertEngine := &alert.Engine{Store: db, Resolver: res, Notifier: bot}
	digestEngine := &digest.Engine{
		Store:           db,
		Notifier:        bot,
		Crypto:          binance,
		Stocks:          moex,
		CryptoBenchmark: config.GetString("crypto_benchmark"),
		StocksBenchmark: config.GetString("stocks_benchmark"),
	}

	sched, err := scheduler.New(scheduler.Config{
		Timezone:      config.GetString("timezone"),
		AlertInterval: time.Duration(config.GetInt("alert_interval_minutes")) * time.Minute,
		DigestTime:    config.GetString("digest_time"),
		MisfireGrace:  time.Duration(config.GetInt("misfire_grace_minutes")) * time.Minute,
	}, alertEngine.CheckAlerts, digestEngine.SendDailyDigest)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	if err := sched.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	updates, err := bot.GetUpdatesChannel()
	if err != nil {
		log.Fatalf("Failed to get updates channel: %v", err)
	}

	go handleUpdates(bot, updates)

	go func() {
		for {
			time.Sleep(5 * time.Minute)
			metrics.SaveToDB(db)
		}
	}()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		sched.Stop()
		metrics.SaveToDB(db)
		db.Close()
		log.Println("Metrics saved, shutting down...")
		os.Exit(0)
	}()

	if err := launchMetricsAndHealthServer(config.GetInt("metrics_port")); err != nil {
		log.Fatalf("Failed to start metrics and health server: %v", err)
	}
}

func setupLogging() {
	log.SetLevel(log.ErrorLevel)
	if config.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}
	log.Debug("Starting finance bot...")
}

func handleUpdates(bot *telegram.Bot, updates tgbotapi.UpdatesChannel) {
	for update := range updates {
		if update.CallbackQuery != nil {
			bot.HandleCallbackQuery(update.CallbackQuery)
			continue
		}

		if update.Message == nil || !update.Message.IsCommand() {
			log.Debug("Received non-command update")
			continue
		}

		metrics.MessagesHandled.Inc()
		handleCommand(bot, update)
	}
}

func handleCommand(bot *telegram.Bot, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			stackBuf := make([]byte, 1024)
			stackSize := runtime.Stack(stackBuf, false)
			stackTrace := bytes.TrimRight(stackBuf[:stackSize], "\x00")
			log.Errorf("Recovered from panic: %v\nStack trace: %s", r, stackTrace)
		}
	}()

	text := bot.HandleUpdate(update)
	if text == "" {
		metrics.CommandsProcessed.Inc()
		return
	}

	err := bot.SendMessage(telegram.Message{
		ChatID:    update.Message.Chat.ID,
		Text:      text,
		MessageID: update.Message.MessageID,
	})

	if err != nil {
		log.Errorf("Failed to send message: %v", err)
	} else {
		metrics.CommandsProcessed.Inc()
	}
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func launchMetricsAndHealthServer(port int) error {
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/health", healthCheckHandler)

	log.Infof("Launching metrics and health endpoint on :%d", port)
	return http.ListenAndServe(fmt.Sprintf(":%d", port), http.DefaultServeMux)
}
