package main

import (
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
)

const historyPageSize = 10

func StartSlackBot(cfg Config, db *sql.DB, store *CorpusStore, api *slack.Client) error {
	client := socketmode.New(api)

	go func() {
		for evt := range client.Events {
			switch evt.Type {
			case socketmode.EventTypeSlashCommand:
				client.Ack(*evt.Request)
				cmd, ok := evt.Data.(slack.SlashCommand)
				if !ok {
					continue
				}
				log.Printf("Slash command received: %s from user=%s channel=%s", cmd.Command, cmd.UserID, cmd.ChannelID)
				go handleSlashCommand(api, db, store, cfg, cmd)
			case socketmode.EventTypeEventsAPI:
				client.Ack(*evt.Request)
				eventsAPIEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
				if !ok {
					continue
				}
				go handleEventsAPI(api, db, store, cfg, eventsAPIEvent)
			}
		}
	}()

	log.Println("Slack bot connected via Socket Mode")
	return client.Run()
}

func handleSlashCommand(api *slack.Client, db *sql.DB, store *CorpusStore, cfg Config, cmd slack.SlashCommand) {
	switch cmd.Command {
	case "/trf":
		handleQuery(api, db, store, cfg, cmd.ChannelID, cmd.Text)
	case "/trf-reload":
		handleReload(api, store, cfg, cmd.ChannelID)
	case "/trf-history":
		handleHistory(api, db, cmd.ChannelID)
	case "/trf-help":
		postMessage(api, cmd.ChannelID, helpText())
	}
}

func handleEventsAPI(api *slack.Client, db *sql.DB, store *CorpusStore, cfg Config, event slackevents.EventsAPIEvent) {
	if event.Type != slackevents.CallbackEvent {
		return
	}
	switch ev := event.InnerEvent.Data.(type) {
	case *slackevents.AppMentionEvent:
		query := stripMention(ev.Text)
		if query == "" {
			postMessage(api, ev.Channel, helpText())
			return
		}
		handleQuery(api, db, store, cfg, ev.Channel, query)
	}
}

func handleQuery(api *slack.Client, db *sql.DB, store *CorpusStore, cfg Config, channelID, query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		postMessage(api, channelID, "Usage: /trf <query>, e.g. `get braking test data from February 2025 sprint 2 as CSV`")
		return
	}

	corpus := store.Snapshot()
	if len(corpus.Records) == 0 {
		postMessage(api, channelID, "No test records loaded. Check the data directory, then try /trf-reload.")
		return
	}

	result, err := RunQuery(cfg, corpus.Records, query)
	if err != nil {
		postMessage(api, channelID, fmt.Sprintf("Query failed: %v", err))
		return
	}
	logQuery(db, query, result)

	header := fmt.Sprintf("%d matching record(s)", result.Matched)
	if result.Diag.Failed {
		header += " (could not interpret the query; showing everything)"
	}
	if corpus.Malformed > 0 {
		header += fmt.Sprintf(" — %d malformed entr(ies) were skipped at load", corpus.Malformed)
	}
	postMessage(api, channelID, header+"\n"+wrapPayload(result.Spec.Format, result.Payload))
}

func handleReload(api *slack.Client, store *CorpusStore, cfg Config, channelID string) {
	corpus, err := LoadCorpus(cfg.DataDir)
	if err != nil {
		postMessage(api, channelID, fmt.Sprintf("Reload failed: %v", err))
		return
	}
	store.Replace(corpus)
	postMessage(api, channelID, fmt.Sprintf("Reloaded %d record(s) from %d file(s), %d malformed entr(ies) skipped.", len(corpus.Records), corpus.Files, corpus.Malformed))
}

func handleHistory(api *slack.Client, db *sql.DB, channelID string) {
	logs, err := RecentQueryLogs(db, historyPageSize)
	if err != nil {
		postMessage(api, channelID, fmt.Sprintf("History unavailable: %v", err))
		return
	}
	postMessage(api, channelID, "Recent queries:\n```"+FormatQueryHistory(logs)+"```")
}

func logQuery(db *sql.DB, query string, result QueryResult) {
	if db == nil {
		return
	}
	err := InsertQueryLog(db, QueryLog{
		Query:      query,
		Strategy:   result.Diag.Strategy,
		Format:     result.Spec.Format,
		Matched:    result.Matched,
		Failed:     result.Diag.Failed,
		DurationMs: result.Duration.Milliseconds(),
	})
	if err != nil {
		log.Printf("query history insert error: %v", err)
	}
}

// wrapPayload fences the monospace formats so Slack keeps their
// alignment; prose formats post as-is.
func wrapPayload(format, payload string) string {
	switch format {
	case "table", "csv", "json", "stats":
		return "```" + payload + "```"
	default:
		return payload
	}
}

func stripMention(text string) string {
	for {
		start := strings.Index(text, "<@")
		if start < 0 {
			break
		}
		end := strings.Index(text[start:], ">")
		if end < 0 {
			break
		}
		text = text[:start] + text[start+end+1:]
	}
	return strings.TrimSpace(text)
}

func postMessage(api *slack.Client, channelID, text string) {
	if _, _, err := api.PostMessage(channelID, slack.MsgOptionText(text, false)); err != nil {
		log.Printf("Error posting message: %v", err)
	}
}

func helpText() string {
	return strings.Join([]string{
		"Ask about equipment test reports in plain language:",
		"- `/trf get braking test data from February 2025 sprint 2 as CSV`",
		"- `/trf give me a summary of all steering tests`",
		"- `/trf show stats for March 2024 sprint 1`",
		"- `/trf count how many tests passed in February 2025`",
		"Formats: table (default), csv, json, markdown, summary, stats, count.",
		"Also: /trf-reload re-scans the data directory, /trf-history shows recent queries.",
	}, "\n")
}
