package mysql

// Overlap test is the canonical half-open form: an existing confirmed
// row [check_in, check_out) collides with the new stay iff
// existing.check_in < new.check_out AND new.check_in < existing.check_out.
// Runs FOR UPDATE inside the create transaction; under SERIALIZABLE,
// InnoDB's next-key locks on idx_room_status also close the empty-range
// race between two first-time bookings of the same room.
const countOverlapSQL = `
SELECT COUNT(*)
FROM reservations
WHERE hotel_id = ? AND room_id = ?
  AND status = 'confirmed'
  AND check_in < ? AND ? < check_out
FOR UPDATE
`

const insertReservationSQL = `
INSERT INTO reservations
  (id, user_id, hotel_id, room_id, check_in, check_out, guests, total_price, created_at, status)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, 'confirmed')
`

const selectColumns = `
  id, user_id, hotel_id, room_id, check_in, check_out, guests, total_price, created_at, status
`

const listForRoomSQL = `
SELECT` + selectColumns + `
FROM reservations
WHERE hotel_id = ? AND room_id = ? AND status <> 'cancelled'
ORDER BY check_in, id
`

const listForUserSQL = `
SELECT` + selectColumns + `
FROM reservations
WHERE user_id = ?
ORDER BY created_at DESC, id DESC
`

const cancelOwnedSQL = `
UPDATE reservations
SET status = 'cancelled'
WHERE id = ? AND user_id = ? AND status = 'confirmed'
`

// Used when the scoped cancel touched no rows: distinguishes "already
// cancelled" (idempotent success) from "missing or not yours".
const selectStatusOwnedSQL = `
SELECT status FROM reservations WHERE id = ? AND user_id = ?
`

const listDueSQL = `
SELECT` + selectColumns + `
FROM reservations
WHERE status = 'confirmed' AND check_out <= ?
ORDER BY check_out, id
LIMIT ?
`

const markCompletedSQL = `
UPDATE reservations
SET status = 'completed'
WHERE id = ? AND status = 'confirmed'
`
