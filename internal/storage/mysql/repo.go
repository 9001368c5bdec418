package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"stayhaven/internal/domain"
)

// Repo is the MySQL-backed reservation store. Create runs the overlap
// check and the insert in one SERIALIZABLE transaction, so the
// check-then-insert race two independent API calls would otherwise have
// cannot produce overlapping confirmed rows.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) CreateConfirmed(ctx context.Context, n domain.NewReservation) (domain.Reservation, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("begin create tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // no-op after commit

	var clashes int
	err = tx.QueryRowContext(ctx, countOverlapSQL,
		n.HotelID, n.RoomID, n.CheckOut, n.CheckIn,
	).Scan(&clashes)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("overlap check: %w", err)
	}
	if clashes > 0 {
		return domain.Reservation{}, domain.ErrUnavailable
	}

	res := domain.Reservation{
		ID:         uuid.NewString(),
		UserID:     n.UserID,
		HotelID:    n.HotelID,
		RoomID:     n.RoomID,
		CheckIn:    n.CheckIn,
		CheckOut:   n.CheckOut,
		Guests:     n.Guests,
		TotalPrice: n.TotalPrice,
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
		Status:     domain.StatusConfirmed,
	}
	_, err = tx.ExecContext(ctx, insertReservationSQL,
		res.ID, res.UserID, res.HotelID, res.RoomID,
		res.CheckIn, res.CheckOut, res.Guests, res.TotalPrice,
		res.CreatedAt,
	)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("insert reservation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Reservation{}, fmt.Errorf("commit reservation: %w", err)
	}
	return res, nil
}

func (r *Repo) ListForRoom(ctx context.Context, hotelID, roomID string) ([]domain.Reservation, error) {
	return r.list(ctx, listForRoomSQL, hotelID, roomID)
}

func (r *Repo) ListForUser(ctx context.Context, userID string) ([]domain.Reservation, error) {
	return r.list(ctx, listForUserSQL, userID)
}

// CancelOwned flips status to cancelled, scoped by (id, user_id).
// Repeating a cancel is a no-op success; a completed stay cannot be
// cancelled; a missing row and somebody else's row look the same.
func (r *Repo) CancelOwned(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, cancelOwnedSQL, id, userID)
	if err != nil {
		return fmt.Errorf("cancel reservation: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("cancel reservation: %w", err)
	}
	if rows > 0 {
		return nil
	}

	var raw string
	err = r.db.QueryRowContext(ctx, selectStatusOwnedSQL, id, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("cancel reservation: %w", err)
	}
	status, err := domain.ParseStatus(raw)
	if err != nil {
		return err
	}
	if status == domain.StatusCancelled {
		return nil // already cancelled, idempotent
	}
	return fmt.Errorf("%w: cannot cancel a %s reservation", domain.ErrInvalidInput, status)
}

func (r *Repo) ListDueForCompletion(ctx context.Context, asOf time.Time, limit int) ([]domain.Reservation, error) {
	return r.list(ctx, listDueSQL, asOf, limit)
}

func (r *Repo) MarkCompleted(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, markCompletedSQL, id)
	if err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) list(ctx context.Context, query string, args ...any) ([]domain.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		rv, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanReservation(rows *sql.Rows) (domain.Reservation, error) {
	var (
		rv        domain.Reservation
		rawStatus string
	)
	if err := rows.Scan(
		&rv.ID, &rv.UserID, &rv.HotelID, &rv.RoomID,
		&rv.CheckIn, &rv.CheckOut, &rv.Guests, &rv.TotalPrice,
		&rv.CreatedAt, &rawStatus,
	); err != nil {
		return domain.Reservation{}, err
	}
	// the status enum is closed; anything else in the table is corrupt
	status, err := domain.ParseStatus(rawStatus)
	if err != nil {
		return domain.Reservation{}, err
	}
	rv.Status = status
	return rv, nil
}
