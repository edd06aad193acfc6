package gormrepo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestYearExpr(t *testing.T) {
	t.Run("postgres reads the year in UTC", func(t *testing.T) {
		assert.Equal(t, "CAST(EXTRACT(YEAR FROM release_date AT TIME ZONE 'UTC') AS INTEGER)", yearExpr(DriverPostgres))
	})

	t.Run("sqlite reads the stored text prefix", func(t *testing.T) {
		assert.Equal(t, "CAST(substr(release_date, 1, 4) AS INTEGER)", yearExpr(DriverSQLite))
	})
}
