//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"courier-escrow/internal/domain/pricing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// DBLike is satisfied by both a pool and a transaction.
type DBLike interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CreateListing inserts an active listing owned by providerID.
func CreateListing(t *testing.T, db DBLike, providerID uuid.UUID, card pricing.RateCard, requiresPickup bool) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Exec(context.Background(), `
		INSERT INTO listings (id, provider_id, title, base_cents, per_km_cents, per_minute_cents, estimated_minutes, requires_pickup, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, true)`,
		id, providerID, "Same-day courier", card.BaseCents, card.PerKmCents, card.PerMinuteCents, card.EstimatedMinutes, requiresPickup)
	require.NoError(t, err)
	return id
}

func DeactivateListing(t *testing.T, db DBLike, id uuid.UUID) {
	t.Helper()
	_, err := db.Exec(context.Background(), "UPDATE listings SET active = false WHERE id = $1", id)
	require.NoError(t, err)
}

// BookingState reads the persisted status pair and version.
func BookingState(t *testing.T, db DBLike, id uuid.UUID) (status, paymentStatus string, version int64) {
	t.Helper()
	err := db.QueryRow(context.Background(),
		"SELECT status, payment_status, version FROM bookings WHERE id = $1", id).
		Scan(&status, &paymentStatus, &version)
	require.NoError(t, err)
	return status, paymentStatus, version
}

func PaymentReference(t *testing.T, db DBLike, id uuid.UUID) string {
	t.Helper()
	var ref string
	err := db.QueryRow(context.Background(), "SELECT payment_reference FROM bookings WHERE id = $1", id).Scan(&ref)
	require.NoError(t, err)
	return ref
}

func CountRows(t *testing.T, db DBLike, table, where string, args ...any) int {
	t.Helper()
	var n int
	err := db.QueryRow(context.Background(), "SELECT count(*) FROM "+table+" WHERE "+where, args...).Scan(&n)
	require.NoError(t, err)
	return n
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	_, err := pool.Exec(ctx, sqlAny.(string))
	return err
}
