package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Corpus is one loaded snapshot of the report data directory. It is
// immutable once built; reloads swap in a fresh snapshot.
type Corpus struct {
	Records   []Record
	Malformed int
	Files     int
	LoadedAt  time.Time
}

// CorpusStore hands out the current snapshot to concurrent readers
// while a reload builds the next one.
type CorpusStore struct {
	mu      sync.RWMutex
	current Corpus
}

func (s *CorpusStore) Snapshot() Corpus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *CorpusStore) Replace(c Corpus) {
	s.mu.Lock()
	s.current = c
	s.mu.Unlock()
}

// LoadCorpus reads every .trf file under dataDir, parses it, tags each
// record with its source file, and de-duplicates repeated observations
// (first occurrence wins). A file that fails to read is logged and
// skipped; it never fails the load.
func LoadCorpus(dataDir string) (Corpus, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return Corpus{}, fmt.Errorf("reading data dir %s: %w", dataDir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".trf") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	corpus := Corpus{LoadedAt: time.Now()}
	seen := make(map[string]bool)
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dataDir, name))
		if err != nil {
			log.Printf("corpus skipping %s: %v", name, err)
			continue
		}
		records, malformed := ParseReports(string(data))
		corpus.Malformed += malformed
		corpus.Files++
		for _, rec := range records {
			rec.File = name
			key := dedupKey(rec)
			if seen[key] {
				continue
			}
			seen[key] = true
			corpus.Records = append(corpus.Records, rec)
		}
	}

	log.Printf("corpus loaded files=%d records=%d malformed=%d", corpus.Files, len(corpus.Records), corpus.Malformed)
	return corpus, nil
}

func dedupKey(rec Record) string {
	value := ""
	if rec.Value != nil {
		value = fmt.Sprintf("%g", *rec.Value)
	}
	return strings.Join([]string{rec.Feature, rec.Status, value, rec.Month, fmt.Sprint(rec.Year), fmt.Sprint(rec.Sprint), rec.File}, "|")
}

// StartReloadScheduler re-scans the data directory on a 5-field cron
// schedule ("0 6 * * *" = daily 6am). An empty schedule disables it.
func StartReloadScheduler(cfg Config, store *CorpusStore) {
	schedule := strings.TrimSpace(cfg.ReloadSchedule)
	if schedule == "" {
		log.Println("Corpus reload disabled (reload_schedule not set)")
		return
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		log.Printf("Invalid reload_schedule '%s': %v — corpus reload disabled", schedule, err)
		return
	}
	log.Printf("Corpus reload scheduled (cron: %s)", schedule)

	go func() {
		for {
			now := time.Now()
			next := sched.Next(now)
			log.Printf("Next corpus reload at %s (in %s)", next.Format("Mon Jan 2 15:04"), next.Sub(now).Round(time.Minute))
			time.Sleep(next.Sub(now))

			corpus, err := LoadCorpus(cfg.DataDir)
			if err != nil {
				log.Printf("Corpus reload error: %v", err)
				continue
			}
			store.Replace(corpus)
		}
	}()
}
