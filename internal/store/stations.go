package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"

	"radiocat/internal/logging"
	"radiocat/internal/services"
	"radiocat/internal/station"
)

const stationColumns = "stream_url, name, image_url, website, countries_json, genres_json, languages_json, providers_json, status, codec, bitrate, sample_rate, last_tested_at, failure_count, is_verified, created_at, updated_at"

// Row is a persisted station with its sync bookkeeping.
type Row struct {
	station.Record
	FailureCount int
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SyncStats summarizes a Sync call.
type SyncStats struct {
	Total    int
	Inserted int
	Updated  int
	Failed   int
}

// Sync upserts records in a single transaction. Existing rows are merged:
// providers and sets are unioned, the longer name and an https image win,
// and rows marked verified keep their status and codec.
func (s *Store) Sync(ctx context.Context, logger *slog.Logger, records []station.Record) (SyncStats, error) {
	logger = logging.NewComponentLogger(logger, "store")
	stats := SyncStats{Total: len(records)}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("begin sync tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		existing, err := getRow(ctx, tx, rec.StreamURL)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if err := insertRow(ctx, tx, newRow(rec, now)); err != nil {
				stats.Failed++
				logSyncFailure(logger, rec, err)
				continue
			}
			stats.Inserted++
		case err != nil:
			stats.Failed++
			logSyncFailure(logger, rec, err)
		default:
			if err := updateRow(ctx, tx, MergeRow(*existing, rec, now)); err != nil {
				stats.Failed++
				logSyncFailure(logger, rec, err)
				continue
			}
			stats.Updated++
		}
	}

	if err := retryOnBusy(ctx, tx.Commit); err != nil {
		return stats, fmt.Errorf("commit sync: %w", err)
	}
	return stats, nil
}

func logSyncFailure(logger *slog.Logger, rec station.Record, err error) {
	logging.WarnWithContext(logger, "station sync failed", "store_sync_failed",
		logging.String(logging.FieldStreamURL, rec.StreamURL),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "rerun sync; check the database file is writable"),
		logging.String(logging.FieldImpact, "station not updated in the database"),
	)
}

func newRow(rec station.Record, now time.Time) Row {
	row := Row{Record: rec.Clone(), CreatedAt: now, UpdatedAt: now}
	if row.Status == station.StatusBroken {
		row.FailureCount = 1
	}
	return row
}

// MergeRow folds an incoming record into an existing row.
func MergeRow(existing Row, incoming station.Record, now time.Time) Row {
	out := existing
	out.Record = existing.Record.Clone()
	out.UpdatedAt = now

	for k, v := range incoming.Providers {
		out.Providers[k] = v
	}
	out.Countries = out.Countries.Union(incoming.Countries)
	out.Genres = out.Genres.Union(incoming.Genres)
	out.Languages = out.Languages.Union(incoming.Languages)

	if utf8.RuneCountInString(incoming.Name) > utf8.RuneCountInString(out.Name) {
		out.Name = incoming.Name
	}
	if incoming.Image != "" && (out.Image == "" || (station.IsHTTPS(incoming.Image) && !station.IsHTTPS(out.Image))) {
		out.Image = incoming.Image
	}
	if out.Website == "" {
		out.Website = incoming.Website
	}

	switch incoming.Status {
	case station.StatusWorking:
		out.FailureCount = 0
	case station.StatusBroken:
		out.FailureCount++
	}

	if !out.Verified {
		out.Status = incoming.Status
		if incoming.Codec != "" {
			out.Codec = incoming.Codec
		}
		if incoming.Status == station.StatusWorking {
			out.Bitrate = incoming.Bitrate
			out.SampleRate = incoming.SampleRate
		}
	}
	if incoming.LastTestedAt != nil {
		ts := *incoming.LastTestedAt
		out.LastTestedAt = &ts
	}
	return out
}

// Get returns the row for url, or nil when absent.
func (s *Store) Get(ctx context.Context, url string) (*Row, error) {
	row, err := getRow(ctx, s.db, url)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get station: %w", err)
	}
	return row, nil
}

// SetVerified marks a station as human-verified so later syncs keep its
// status and codec.
func (s *Store) SetVerified(ctx context.Context, url string, verified bool) error {
	var affected int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx,
			`UPDATE radio_stations SET is_verified = ?, updated_at = ? WHERE stream_url = ?`,
			boolToInt(verified), time.Now().UTC().Format(time.RFC3339Nano), url)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("set verified: %w", err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, "store", "set verified", url, nil)
	}
	return nil
}

// StatusCounts returns the number of stations per status.
func (s *Store) StatusCounts(ctx context.Context) (map[station.Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM radio_stations GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count stations: %w", err)
	}
	defer rows.Close()

	counts := make(map[station.Status]int)
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[station.ParseStatus(status)] += count
	}
	return counts, rows.Err()
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getRow(ctx context.Context, q queryer, url string) (*Row, error) {
	return scanRow(q.QueryRowContext(ctx, `SELECT `+stationColumns+` FROM radio_stations WHERE stream_url = ?`, url))
}

func insertRow(ctx context.Context, tx *sql.Tx, row Row) error {
	args, err := rowArgs(row)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO radio_stations (`+stationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		args...)
	if err != nil {
		return fmt.Errorf("insert station: %w", err)
	}
	return nil
}

func updateRow(ctx context.Context, tx *sql.Tx, row Row) error {
	args, err := rowArgs(row)
	if err != nil {
		return err
	}
	// stream_url moves from the first column to the WHERE clause.
	updateArgs := append(append([]any{}, args[1:]...), args[0])
	_, err = tx.ExecContext(ctx,
		`UPDATE radio_stations
         SET name = ?, image_url = ?, website = ?, countries_json = ?, genres_json = ?,
             languages_json = ?, providers_json = ?, status = ?, codec = ?, bitrate = ?,
             sample_rate = ?, last_tested_at = ?, failure_count = ?, is_verified = ?,
             created_at = ?, updated_at = ?
         WHERE stream_url = ?`,
		updateArgs...)
	if err != nil {
		return fmt.Errorf("update station: %w", err)
	}
	return nil
}

func rowArgs(row Row) ([]any, error) {
	countries, err := json.Marshal(orEmpty(row.Countries))
	if err != nil {
		return nil, fmt.Errorf("marshal countries: %w", err)
	}
	genres, err := json.Marshal(orEmpty(row.Genres))
	if err != nil {
		return nil, fmt.Errorf("marshal genres: %w", err)
	}
	languages, err := json.Marshal(orEmpty(row.Languages))
	if err != nil {
		return nil, fmt.Errorf("marshal languages: %w", err)
	}
	providers := row.Providers
	if providers == nil {
		providers = map[string]string{}
	}
	providersJSON, err := json.Marshal(providers)
	if err != nil {
		return nil, fmt.Errorf("marshal providers: %w", err)
	}
	status := row.Status
	if status == "" {
		status = station.StatusUntested
	}
	return []any{
		row.StreamURL,
		row.Name,
		row.Image,
		row.Website,
		string(countries),
		string(genres),
		string(languages),
		string(providersJSON),
		string(status),
		nullableString(row.Codec),
		nullableInt(row.Bitrate),
		nullableInt(int64(row.SampleRate)),
		nullableTime(row.LastTestedAt),
		row.FailureCount,
		boolToInt(row.Verified),
		row.CreatedAt.UTC().Format(time.RFC3339Nano),
		row.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}, nil
}

func scanRow(scanner interface{ Scan(dest ...any) error }) (*Row, error) {
	var (
		url, name, image, website               string
		countries, genres, languages, providers string
		status                                  string
		codec, lastTested                       sql.NullString
		bitrate, sampleRate                     sql.NullInt64
		failures, verified                      int64
		createdRaw, updatedRaw                  string
	)
	if err := scanner.Scan(
		&url, &name, &image, &website,
		&countries, &genres, &languages, &providers,
		&status, &codec, &bitrate, &sampleRate, &lastTested,
		&failures, &verified, &createdRaw, &updatedRaw,
	); err != nil {
		return nil, err
	}

	row := &Row{
		Record: station.Record{
			Name:       name,
			Image:      image,
			StreamURL:  url,
			Website:    website,
			Status:     station.ParseStatus(status),
			Codec:      codec.String,
			Bitrate:    bitrate.Int64,
			SampleRate: int(sampleRate.Int64),
			Providers:  map[string]string{},
		},
		FailureCount: int(failures),
		Verified:     verified != 0,
		CreatedAt:    parseTime(createdRaw),
		UpdatedAt:    parseTime(updatedRaw),
	}
	if err := json.Unmarshal([]byte(countries), &row.Countries); err != nil {
		return nil, fmt.Errorf("decode countries: %w", err)
	}
	if err := json.Unmarshal([]byte(genres), &row.Genres); err != nil {
		return nil, fmt.Errorf("decode genres: %w", err)
	}
	if err := json.Unmarshal([]byte(languages), &row.Languages); err != nil {
		return nil, fmt.Errorf("decode languages: %w", err)
	}
	if err := json.Unmarshal([]byte(providers), &row.Providers); err != nil {
		return nil, fmt.Errorf("decode providers: %w", err)
	}
	if lastTested.Valid {
		if ts := parseTime(lastTested.String); !ts.IsZero() {
			row.LastTestedAt = &ts
		}
	}
	return row, nil
}

func orEmpty(s station.Set) station.Set {
	if s == nil {
		return station.NewSet()
	}
	return s
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}

func nullableTime(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
