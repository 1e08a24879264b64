package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"

	"tabkeep/internal/domain/repositories"
)

// stubTx satisfies pgx.Tx for identity checks only; no method is ever invoked.
type stubTx struct{ pgx.Tx }

func TestGetExecutorPrefersContextTransaction(t *testing.T) {
	tx := &stubTx{}
	ctx := repositories.SetTx(context.Background(), tx)

	got, ok := GetExecutor(ctx, nil).(*stubTx)
	if !ok || got != tx {
		t.Errorf("GetExecutor() = %T, want the transaction from the context", GetExecutor(ctx, nil))
	}
}

func TestGetExecutorFallsBackToPool(t *testing.T) {
	if _, ok := GetExecutor(context.Background(), nil).(*stubTx); ok {
		t.Error("GetExecutor() returned a transaction for a plain context")
	}
	if repositories.GetTx(context.Background()) != nil {
		t.Error("GetTx() found a transaction in a plain context")
	}
}
