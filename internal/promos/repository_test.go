package promos

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(gorm.ErrDuplicatedKey))

	codeCollision := &pgconn.PgError{Code: "23505", ConstraintName: "idx_promo_codes_code"}
	assert.True(t, isDuplicateKey(codeCollision))
	assert.True(t, isDuplicateKey(fmt.Errorf("failed to create promo: %w", codeCollision)))

	assert.False(t, isDuplicateKey(gorm.ErrRecordNotFound))
	assert.False(t, isDuplicateKey(&pgconn.PgError{Code: "23503"}))
}
