package utils

import "github.com/jackc/pgx/v5/pgtype"

// NumericToFloat64 converts a scanned numeric column to float64, treating
// NULL and unrepresentable values as 0. Report math tolerates the float
// conversion; nothing downstream does exact decimal arithmetic.
func NumericToFloat64(value pgtype.Numeric) float64 {
	if !value.Valid {
		return 0
	}
	f, err := value.Float64Value()
	if err != nil || !f.Valid {
		return 0
	}
	return f.Float64
}
