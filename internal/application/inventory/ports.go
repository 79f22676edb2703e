package inventory

import (
	"context"
	"encoding/json"

	"github.com/jhoicas/maquipaes-api/internal/application/datasource"
	"github.com/jhoicas/maquipaes-api/internal/domain/entity"
)

// TxRunner ejecuta fn dentro de una transacción del ledger; las escrituras se confirman juntas
// o no se confirma ninguna. Lo implementa datasource.TxRunner.
type TxRunner interface {
	Run(ctx context.Context, fn func(tx datasource.LedgerTx) error) (datasource.CommitResult, error)
}

// Reader lectura de colecciones ruteada (remoto o caché local). Lo implementa datasource.Router.
type Reader interface {
	List(ctx context.Context, et entity.EntityType) ([]json.RawMessage, datasource.DataSource, error)
}
