package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/NinnOgTonic/antaeus/internal/logger"
	"github.com/NinnOgTonic/antaeus/internal/metrics"
)

// queryTrace times one statement and reports it on completion
type queryTrace struct {
	logger  *logger.Logger
	metrics *metrics.Metrics
	query   string
	params  interface{}
	start   time.Time
	txID    string
}

func (qt *queryTrace) done(err error) {
	duration := time.Since(qt.start)
	if qt.metrics != nil {
		qt.metrics.RecordQuery(qt.query, duration, err)
	}

	fields := []interface{}{
		"duration_ms", duration.Milliseconds(),
		"query", qt.query,
		"params", fmt.Sprintf("%+v", qt.params),
	}
	if qt.txID != "" {
		fields = append(fields, "tx_id", qt.txID)
	}
	// no rows is a regular outcome for lookups and is mapped by the repositories
	if err != nil && err != sql.ErrNoRows {
		fields = append(fields, "error", err.Error())
		qt.logger.Errorw("database query failed", fields...)
		return
	}
	qt.logger.Debugw("database query completed", fields...)
}

// TracedQuerier logs and times every statement run through the wrapped Querier
type TracedQuerier struct {
	Querier
	logger  *logger.Logger
	metrics *metrics.Metrics
	txID    string
}

func NewTracedQuerier(q Querier, logger *logger.Logger, m *metrics.Metrics, txID string) *TracedQuerier {
	return &TracedQuerier{Querier: q, logger: logger, metrics: m, txID: txID}
}

func (tq *TracedQuerier) trace(query string, params interface{}) *queryTrace {
	return &queryTrace{
		logger:  tq.logger,
		metrics: tq.metrics,
		query:   query,
		params:  params,
		start:   time.Now(),
		txID:    tq.txID,
	}
}

func (tq *TracedQuerier) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	t := tq.trace(query, args)
	result, err := tq.Querier.ExecContext(ctx, query, args...)
	t.done(err)
	return result, err
}

func (tq *TracedQuerier) NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error) {
	t := tq.trace(query, arg)
	result, err := tq.Querier.NamedExecContext(ctx, query, arg)
	t.done(err)
	return result, err
}

func (tq *TracedQuerier) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	t := tq.trace(query, args)
	rows, err := tq.Querier.QueryContext(ctx, query, args...)
	t.done(err)
	return rows, err
}

func (tq *TracedQuerier) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	t := tq.trace(query, args)
	err := tq.Querier.GetContext(ctx, dest, query, args...)
	t.done(err)
	return err
}

func (tq *TracedQuerier) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	t := tq.trace(query, args)
	err := tq.Querier.SelectContext(ctx, dest, query, args...)
	t.done(err)
	return err
}
