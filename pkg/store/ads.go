package store

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pkgz/repeater/v2"

	"github.com/umputun/adscope/pkg/domain"
)

// adSQL represents an ad row for SQL operations
type adSQL struct {
	ID          string    `db:"ad_id"`
	URL         string    `db:"url"`
	Title       string    `db:"title"`
	Price       string    `db:"price"`
	FirstSeen   time.Time `db:"first_seen"`
	LastChecked time.Time `db:"last_checked"`
}

func (a *adSQL) toDomain() domain.Ad {
	return domain.Ad{
		ID:          a.ID,
		URL:         a.URL,
		Title:       a.Title,
		Price:       a.Price,
		FirstSeen:   a.FirstSeen.UTC(),
		LastChecked: a.LastChecked.UTC(),
	}
}

// IsKnown checks if an ad with the given id exists
func (s *Store) IsKnown(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.conn.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM ad_changes WHERE ad_id = ?)", id)
	if err != nil {
		return false, fmt.Errorf("check ad exists: %w", err)
	}
	return exists, nil
}

// Upsert inserts a new ad row or, when the id already exists, refreshes
// last_checked, title and price of the existing row. The conflict clause
// makes the insert-or-update decision atomic per id, so a raced duplicate
// submission degrades to an update instead of an error.
func (s *Store) Upsert(ctx context.Context, ad domain.Ad) (domain.UpsertResult, error) {
	row := &adSQL{
		ID:          ad.ID,
		URL:         ad.URL,
		Title:       ad.Title,
		Price:       ad.Price,
		FirstSeen:   ad.FirstSeen.UTC(),
		LastChecked: ad.LastChecked.UTC(),
	}

	res := domain.Updated
	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))
	err := retrier.Do(ctx, func() error {
		insert := `
			INSERT INTO ad_changes (ad_id, url, title, price, first_seen, last_checked)
			VALUES (:ad_id, :url, :title, :price, :first_seen, :last_checked)
			ON CONFLICT(ad_id) DO NOTHING
		`
		result, err := s.conn.NamedExecContext(ctx, insert, row)
		if err != nil {
			if isLockError(err) {
				return err // repeater will retry this
			}
			return &criticalError{err: fmt.Errorf("insert ad: %w", err)}
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return &criticalError{err: fmt.Errorf("get rows affected: %w", err)}
		}
		if affected > 0 {
			res = domain.Inserted
			return nil
		}

		// identity collision, refresh the existing row. first_seen stays
		// untouched so the row keeps the timestamp of its first sighting.
		update := `
			UPDATE ad_changes
			SET last_checked = :last_checked, title = :title, price = :price
			WHERE ad_id = :ad_id
		`
		if _, err := s.conn.NamedExecContext(ctx, update, row); err != nil {
			if isLockError(err) {
				return err
			}
			return &criticalError{err: fmt.Errorf("update ad: %w", err)}
		}
		res = domain.Updated
		return nil
	})
	if err != nil {
		return domain.Updated, err
	}
	return res, nil
}

// Recent returns ads checked at or after the given time, newest first,
// capped at limit
func (s *Store) Recent(ctx context.Context, since time.Time, limit int) ([]domain.Ad, error) {
	var rows []adSQL
	query := `
		SELECT ad_id, url, title, price, first_seen, last_checked
		FROM ad_changes
		WHERE last_checked >= ?
		ORDER BY last_checked DESC
		LIMIT ?
	`
	if err := s.conn.SelectContext(ctx, &rows, query, since.UTC(), limit); err != nil {
		return nil, fmt.Errorf("get recent ads: %w", err)
	}

	ads := make([]domain.Ad, len(rows))
	for i := range rows {
		ads[i] = rows[i].toDomain()
	}
	return ads, nil
}

// Prune deletes ads whose last_checked is strictly older than now-retention.
// Returns the number of deleted rows.
func (s *Store) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)

	var deleted int64
	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))
	err := retrier.Do(ctx, func() error {
		result, err := s.conn.ExecContext(ctx, "DELETE FROM ad_changes WHERE last_checked < ?", cutoff)
		if err != nil {
			if isLockError(err) {
				return err
			}
			return &criticalError{err: fmt.Errorf("prune ads: %w", err)}
		}
		deleted, err = result.RowsAffected()
		if err != nil {
			return &criticalError{err: fmt.Errorf("get rows affected: %w", err)}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// Count returns the total number of tracked ads
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.conn.GetContext(ctx, &count, "SELECT COUNT(*) FROM ad_changes"); err != nil {
		return 0, fmt.Errorf("count ads: %w", err)
	}
	return count, nil
}
