package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"vibe-in-the-dark/internal/config"
	"vibe-in-the-dark/internal/db"
	"vibe-in-the-dark/internal/game"
	"vibe-in-the-dark/internal/store"
)

func main() {
	code := flag.String("code", "", "game code")
	outPath := flag.String("out", "-", "csv output path, - for stdout")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	normalized := game.NormalizeCode(*code)
	if !game.ValidCode(normalized) {
		log.Fatal("a valid -code is required")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DBDriver == "memory" {
		log.Fatal("DB_DRIVER=memory keeps no event log")
	}
	dsn := cfg.DatabaseURL
	if cfg.DBDriver == db.DriverSQLite {
		dsn = cfg.SQLitePath
	}
	conn, err := db.Open(db.Options{Driver: cfg.DBDriver, DSN: dsn})
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	events, err := store.NewEventLog(conn).History(ctx, normalized)
	if err != nil {
		log.Fatalf("failed to read events: %v", err)
	}

	out := io.Writer(os.Stdout)
	if *outPath != "-" {
		file, err := os.Create(*outPath)
		if err != nil {
			log.Fatalf("create output: %v", err)
		}
		defer file.Close()
		out = file
	}
	if err := writeEvents(out, events); err != nil {
		log.Fatalf("write events: %v", err)
	}
	log.Printf("exported %d events for %s", len(events), normalized)
}

func writeEvents(w io.Writer, events []db.GameEvent) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id", "type", "created_at", "payload"}); err != nil {
		return err
	}
	for _, e := range events {
		row := []string{
			strconv.FormatUint(uint64(e.ID), 10),
			e.Type,
			e.CreatedAt.UTC().Format(time.RFC3339Nano),
			string(e.Payload),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
