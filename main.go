package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/slack-go/slack"
)

func main() {
	cfg := LoadConfig()

	store := &CorpusStore{}
	corpus, err := LoadCorpus(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to load corpus: %v", err)
	}
	store.Replace(corpus)

	// One-shot mode: trfagent "<query>" answers once and exits.
	if len(os.Args) > 1 {
		query := strings.Join(os.Args[1:], " ")
		result, err := RunQuery(cfg, store.Snapshot().Records, query)
		if err != nil {
			log.Fatalf("Query failed: %v", err)
		}
		fmt.Println(result.Payload)
		return
	}

	if !cfg.SlackConfigured() {
		log.Fatalf("slack_bot_token and slack_app_token are required in bot mode (or pass a query as an argument for one-shot mode)")
	}

	db, err := InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}
	defer db.Close()

	api := slack.New(
		cfg.SlackBotToken,
		slack.OptionAppLevelToken(cfg.SlackAppToken),
	)

	StartReloadScheduler(cfg, store)

	log.Println("Starting TRF query agent...")
	if err := StartSlackBot(cfg, db, store, api); err != nil {
		log.Fatalf("Slack bot error: %v", err)
	}
}
