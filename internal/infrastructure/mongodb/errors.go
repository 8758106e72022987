package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jhoicas/Gestion-RD-api/internal/domain"
)

// codeIllegalOperation lo devuelve un standalone al recibir una escritura con txnNumber.
const codeIllegalOperation = 20

// isTransactionsUnsupported reconoce el rechazo de transacciones de un despliegue standalone.
func isTransactionsUnsupported(err error) bool {
	if err == nil {
		return false
	}
	var se mongo.ServerError
	if errors.As(err, &se) && se.HasErrorCode(codeIllegalOperation) &&
		se.HasErrorMessage("Transaction numbers are only allowed") {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Transaction numbers are only allowed") ||
		strings.Contains(msg, "transactions are not supported")
}

// wrap envuelve errores del driver; timeouts y errores de red se reportan como reintentables.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if isTransactionsUnsupported(err) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrTransactionsUnsupported, err)
	}
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrRetryable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
