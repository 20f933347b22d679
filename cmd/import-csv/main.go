package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"arcstride/pkg/database"
	"arcstride/pkg/normalize"
)

func main() {
	var (
		titlesIn = flag.String("titles", "data/titles.csv", "input CSV path for titles")
		unitsIn  = flag.String("units", "data/units.csv", "input CSV path for units")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if err := importTitles(ctx, db, *titlesIn); err != nil {
		log.Fatalf("import titles failed: %v", err)
	}
	if err := importUnits(ctx, db, *unitsIn); err != nil {
		log.Fatalf("import units failed: %v", err)
	}

	log.Printf("imported titles from %s and units from %s", *titlesIn, *unitsIn)
}

func importTitles(ctx context.Context, db *sql.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return err
	}

	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO titles (id, type, original_title, korean_title, release_date, cover_url, summary, is_explicit, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type           = excluded.type,
			original_title = excluded.original_title,
			korean_title   = excluded.korean_title,
			release_date   = excluded.release_date,
			cover_url      = excluded.cover_url,
			summary        = excluded.summary,
			is_explicit    = excluded.is_explicit
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	statsStmt, err := db.PrepareContext(ctx, `
		INSERT INTO title_stats (title_id) VALUES (?) ON CONFLICT(title_id) DO NOTHING
	`)
	if err != nil {
		return err
	}
	defer statsStmt.Close()

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if len(row) == 0 {
			continue
		}

		id := valueAt(header, row, "id")
		titleType := strings.ToUpper(valueAt(header, row, "type"))
		originalTitle := valueAt(header, row, "original_title")
		if id == "" || titleType == "" || originalTitle == "" {
			continue
		}

		isExplicit, err := parseBool(valueAt(header, row, "is_explicit"))
		if err != nil {
			return fmt.Errorf("parse is_explicit for %s: %w", id, err)
		}
		createdBy, err := strconv.ParseInt(valueAt(header, row, "created_by"), 10, 64)
		if err != nil {
			return fmt.Errorf("parse created_by for %s: %w", id, err)
		}

		if _, err := stmt.ExecContext(
			ctx,
			id,
			titleType,
			originalTitle,
			nullString(valueAt(header, row, "korean_title")),
			nullString(valueAt(header, row, "release_date")),
			nullString(valueAt(header, row, "cover_url")),
			nullString(valueAt(header, row, "summary")),
			isExplicit,
			createdBy,
		); err != nil {
			return err
		}
		if _, err := statsStmt.ExecContext(ctx, id); err != nil {
			return err
		}
	}

	return nil
}

func importUnits(ctx context.Context, db *sql.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return err
	}

	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO units (title_id, unit_type, unit_key, normalized_unit_key, display_name, sort_order, release_date, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(title_id, unit_type, normalized_unit_key) DO UPDATE SET
			unit_key     = excluded.unit_key,
			display_name = excluded.display_name,
			sort_order   = excluded.sort_order,
			release_date = excluded.release_date
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if len(row) == 0 {
			continue
		}

		titleID := valueAt(header, row, "title_id")
		unitType := strings.ToUpper(valueAt(header, row, "unit_type"))
		unitKey := valueAt(header, row, "unit_key")
		if titleID == "" || unitType == "" || unitKey == "" {
			continue
		}

		sortOrder, err := parseNullInt(valueAt(header, row, "sort_order"))
		if err != nil {
			return fmt.Errorf("parse sort_order for %s/%s: %w", titleID, unitKey, err)
		}
		createdBy, err := strconv.ParseInt(valueAt(header, row, "created_by"), 10, 64)
		if err != nil {
			return fmt.Errorf("parse created_by for %s/%s: %w", titleID, unitKey, err)
		}

		if _, err := stmt.ExecContext(
			ctx,
			titleID,
			unitType,
			unitKey,
			normalize.Key(unitKey),
			nullString(valueAt(header, row, "display_name")),
			sortOrder,
			nullString(valueAt(header, row, "release_date")),
			createdBy,
		); err != nil {
			return err
		}
	}

	return nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseNullInt(raw string) (sql.NullInt64, error) {
	if raw == "" {
		return sql.NullInt64{}, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return sql.NullInt64{}, err
	}
	return sql.NullInt64{Int64: n, Valid: true}, nil
}

func parseBool(raw string) (bool, error) {
	if raw == "" {
		return false, nil
	}
	return strconv.ParseBool(raw)
}

func nullString(raw string) sql.NullString {
	if raw == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: raw, Valid: true}
}
