package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func main() {
	name := flag.String("name", "", "migration name, e.g. add_game_index")
	dir := flag.String("dir", filepath.Join("db", "migrations"), "directory to write into")
	flag.Parse()

	upPath, downPath, err := create(*dir, *name, time.Now())
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("created %s and %s", upPath, downPath)
}

// create writes an empty up/down pair named <timestamp>_<slug>.
func create(dir, name string, now time.Time) (string, string, error) {
	slug := slugify(name)
	if slug == "" {
		return "", "", errors.New("migration name is required")
	}
	base := fmt.Sprintf("%s_%s", now.UTC().Format("20060102150405"), slug)
	upPath := filepath.Join(dir, base+".up.sql")
	downPath := filepath.Join(dir, base+".down.sql")

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create migrations dir: %w", err)
	}
	if err := writeFile(upPath, "-- "+slug+" (up)\n"); err != nil {
		return "", "", fmt.Errorf("create up migration: %w", err)
	}
	if err := writeFile(downPath, "-- "+slug+" (down)\n"); err != nil {
		return "", "", fmt.Errorf("create down migration: %w", err)
	}
	return upPath, downPath, nil
}

func slugify(name string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "_"), "_")
}

func writeFile(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("file already exists: %s", path)
		}
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
