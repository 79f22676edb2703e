package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/maquipaes-api/internal/domain"
	"github.com/jhoicas/maquipaes-api/internal/domain/entity"
)

func TestClassify_PgErrorEsRechazo(t *testing.T) {
	err := classify(&pgconn.PgError{Code: "23514", Message: "check violation"})
	assert.ErrorIs(t, err, domain.ErrRemoteRejected)
	assert.NotErrorIs(t, err, domain.ErrConnectivity)
}

func TestClassify_OtrosSonConectividad(t *testing.T) {
	assert.ErrorIs(t, classify(errors.New("dial tcp: connection refused")), domain.ErrConnectivity)
	assert.ErrorIs(t, classify(context.DeadlineExceeded), domain.ErrConnectivity)
	assert.NoError(t, classify(nil))
}

func TestTable_EscapaIdentificador(t *testing.T) {
	assert.Equal(t, `"ventas"`, table("ventas"))
	assert.Equal(t, `"a""b"`, table(`a"b`))
}

func TestMigrationSQL_CubreTodasLasColecciones(t *testing.T) {
	sql := MigrationSQL()
	for _, et := range entity.EntityTypes {
		assert.True(t, strings.Contains(sql, `"`+string(et)+`"`), "falta tabla %s", et)
	}
}
