package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/infinityfire/api/internal/metrics"
)

const writeTimeout = 5 * time.Second

type writer interface {
	Insert(ctx context.Context, rec NewRecord) error
}

// Logger appends audit records. Failures are logged and counted, never returned,
// so an unavailable audit trail cannot fail the operation being audited.
type Logger struct {
	store writer
	log   *zap.Logger
	now   func() time.Time
}

// NewLogger constructs a Logger. A nil zap logger falls back to zap.L().
func NewLogger(store writer, log *zap.Logger) *Logger {
	if log == nil {
		log = zap.L()
	}
	return &Logger{store: store, log: log.Named("activity"), now: time.Now}
}

// Record writes one entry synchronously. The request context's cancellation is
// dropped so a client hanging up does not lose the record.
func (l *Logger) Record(ctx context.Context, actorID uuid.UUID, kind Kind, description string, rc RequestContext, metadata map[string]any) {
	fields := []zap.Field{
		zap.String("actor_id", actorID.String()),
		zap.String("kind", string(kind)),
		zap.String("endpoint", rc.Endpoint),
	}

	if !kind.Valid() {
		l.fail(fmt.Errorf("%w: %q", ErrUnknownKind, kind), fields)
		return
	}

	payload, err := l.enrich(metadata, rc)
	if err != nil {
		l.fail(fmt.Errorf("encode metadata: %w", err), fields)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	err = l.store.Insert(ctx, NewRecord{
		ActorID:     actorID,
		Kind:        kind,
		Description: description,
		IPAddress:   rc.IP,
		UserAgent:   rc.UserAgent,
		Metadata:    payload,
	})
	if err != nil {
		l.fail(err, fields)
	}
}

func (l *Logger) enrich(metadata map[string]any, rc RequestContext) ([]byte, error) {
	merged := make(map[string]any, len(metadata)+3)
	for k, v := range metadata {
		merged[k] = v
	}
	merged["timestamp"] = l.now().UTC().Format(time.RFC3339Nano)
	merged["endpoint"] = rc.Endpoint
	merged["method"] = rc.Method
	return json.Marshal(merged)
}

func (l *Logger) fail(err error, fields []zap.Field) {
	metrics.ActivityWriteFailed()
	l.log.Error("activity write failed", append(fields, zap.Error(err))...)
}

// RequestContextFrom captures the attributes of the current request.
func RequestContextFrom(c *gin.Context) RequestContext {
	return RequestContext{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Endpoint:  c.Request.URL.Path,
		Method:    c.Request.Method,
	}
}
