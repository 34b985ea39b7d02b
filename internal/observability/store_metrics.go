package observability

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/geocoder89/commenthub/internal/domain/comment"
	"github.com/geocoder89/commenthub/internal/domain/user"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// ObserveStore times fn under op. A missing row or document is a regular lookup
// outcome and is recorded as ok.
func (p *Prom) ObserveStore(op string, fn func() error) error {
	start := time.Now()
	err := fn()

	status := "ok"
	if err != nil && !isNotFound(err) {
		status = "error"
		p.store.errors.WithLabelValues(op, errorClass(err)).Inc()
	}

	p.store.opLatency.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
	return err
}

var notFoundErrs = []error{user.ErrNotFound, comment.ErrNotFound, mongo.ErrNoDocuments, pgx.ErrNoRows}

func isNotFound(err error) bool {
	for _, target := range notFoundErrs {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

var pgClasses = map[string]string{
	"23505": "unique_violation",
	"23503": "foreign_key_violation",
	"40001": "serialization_failure",
	"40P01": "deadlock",
	"57014": "query_canceled",
}

// errorClass keeps the class label set small: known postgres codes, the
// driver-level mongo predicates, then a coarse guess from the message.
func errorClass(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if class, ok := pgClasses[pgErr.Code]; ok {
			return class
		}
		return "pg_" + pgErr.Code
	}

	switch {
	case errors.Is(err, user.ErrEmailTaken), mongo.IsDuplicateKeyError(err):
		return "unique_violation"
	case errors.Is(err, context.DeadlineExceeded), mongo.IsTimeout(err):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case mongo.IsNetworkError(err), pgconn.SafeToRetry(err):
		return "connection"
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "connection") || strings.Contains(msg, "refused") {
		return "connection"
	}
	return "unknown"
}
