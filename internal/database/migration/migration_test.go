package migration

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasonhew98/e-commerce-service/internal/logger"
)

var sentinelQuery = regexp.QuoteMeta("SELECT to_regclass('" + sentinel + "') IS NOT NULL")

func TestEnsureMigrated_Skip(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(sentinelQuery).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	require.NoError(t, EnsureMigrated(context.Background(), db, logger.Nop(), "localhost"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureMigrated_RunsAllSteps(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(sentinelQuery).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	for _, step := range steps {
		mock.ExpectExec(regexp.QuoteMeta(step.SQL)).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, EnsureMigrated(context.Background(), db, logger.Nop(), "localhost"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureMigrated_StepFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(sentinelQuery).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta(steps[0].SQL)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(steps[1].SQL)).WillReturnError(errors.New("permission denied"))

	err = EnsureMigrated(context.Background(), db, logger.Nop(), "localhost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), steps[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureMigrated_SentinelError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(sentinelQuery).WillReturnError(errors.New("conn reset"))

	err = EnsureMigrated(context.Background(), db, logger.Nop(), "localhost")
	assert.ErrorContains(t, err, "failed to check sentinel")
}

func TestSteps_CreateEveryStoreTable(t *testing.T) {
	names := make(map[string]bool, len(steps))
	for _, s := range steps {
		assert.False(t, names[s.Name], "duplicate step %s", s.Name)
		names[s.Name] = true
	}
	for _, table := range []string{"accounts", "users", "products"} {
		assert.True(t, names["create_table_"+table], table)
	}
	assert.Equal(t, "create_index_products_product_name", steps[len(steps)-1].Name)
}
