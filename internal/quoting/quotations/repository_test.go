package quotations

import (
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestSaveTransactionsUseReadCommitted(t *testing.T) {
	assert.Equal(t, pgx.ReadCommitted, saveTxOptions.IsoLevel)
}
