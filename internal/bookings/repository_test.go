package bookings

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(gorm.ErrDuplicatedKey))
	assert.True(t, isDuplicateKey(fmt.Errorf("failed to create tickets: %w", gorm.ErrDuplicatedKey)))

	// Raw SQLSTATE from the postgres driver, with and without wrapping
	seatRace := &pgconn.PgError{Code: "23505", ConstraintName: "uniq_tickets_held_seat"}
	assert.True(t, isDuplicateKey(seatRace))
	assert.True(t, isDuplicateKey(fmt.Errorf("failed to create tickets: %w", seatRace)))

	assert.False(t, isDuplicateKey(&pgconn.PgError{Code: "40001"}))
	assert.False(t, isDuplicateKey(gorm.ErrRecordNotFound))
	assert.False(t, isDuplicateKey(nil))
}
