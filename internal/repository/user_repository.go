package repository

import "context"

// UserExists reports whether a users row with id exists.
func (s sqlQueries) UserExists(ctx context.Context, id uint64) (bool, error) {
	var n int
	err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
