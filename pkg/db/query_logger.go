package db

import (
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

type registrar interface {
	Register(name string, fn func(*gorm.DB)) error
}

// queryLogger reports slow or failing statements through the request-scoped
// logger instead of GORM's own printer.
type queryLogger struct {
	logg *logger.Logger
}

func newQueryLogger(logg *logger.Logger) *queryLogger {
	return &queryLogger{logg: logg}
}

func (q *queryLogger) Name() string { return "storefront:query_logger" }

func (q *queryLogger) Initialize(db *gorm.DB) error {
	if q.logg == nil {
		return nil
	}
	cb := db.Callback()
	hooks := []struct {
		name          string
		before, after registrar
	}{
		{name: "create", before: cb.Create().Before("gorm:create"), after: cb.Create().After("gorm:create")},
		{name: "query", before: cb.Query().Before("gorm:query"), after: cb.Query().After("gorm:query")},
		{name: "update", before: cb.Update().Before("gorm:update"), after: cb.Update().After("gorm:update")},
		{name: "delete", before: cb.Delete().Before("gorm:delete"), after: cb.Delete().After("gorm:delete")},
	}
	for _, h := range hooks {
		if err := h.before.Register(q.Name()+":before_"+h.name, q.start); err != nil {
			return err
		}
		if err := h.after.Register(q.Name()+":after_"+h.name, q.finish); err != nil {
			return err
		}
	}
	return nil
}

func (q *queryLogger) start(tx *gorm.DB) {
	tx.InstanceSet(q.Name()+":start", time.Now())
}

func (q *queryLogger) finish(tx *gorm.DB) {
	v, ok := tx.InstanceGet(q.Name() + ":start")
	if !ok {
		return
	}
	started, _ := v.(time.Time)
	elapsed := time.Since(started)

	ctx := tx.Statement.Context
	if tx.Error != nil && !IsNotFound(tx.Error) {
		ctx = q.logg.WithFields(ctx, map[string]any{
			"table":       tx.Statement.Table,
			"duration_ms": elapsed.Milliseconds(),
		})
		q.logg.Warn(ctx, "db.query_failed: "+tx.Error.Error())
		return
	}
	if elapsed >= slowQueryThreshold {
		ctx = q.logg.WithFields(ctx, map[string]any{
			"table":       tx.Statement.Table,
			"duration_ms": elapsed.Milliseconds(),
			"rows":        tx.RowsAffected,
		})
		q.logg.Warn(ctx, "db.slow_query")
	}
}
