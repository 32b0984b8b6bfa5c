package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/kasuganosora/sr5rules/config"
	"github.com/kasuganosora/sr5rules/model"
)

// Actions written by the test session.
const (
	ActionTestBegin    = "test.begin"
	ActionTestDialog   = "test.dialog"
	ActionTestEvaluate = "test.evaluate"
	ActionTestExtend   = "test.extend"
	ActionTestExpire   = "test.expire"
	ActionDocPatch     = "document.patch"
	ActionMarksSet     = "matrix.marks"
	ActionNetwork      = "matrix.network"
)

// Entry holds one audit event to be logged.
type Entry struct {
	TraceID    string
	UserID     string
	ActorID    string
	TestID     string
	SceneID    string
	Action     string
	Request    interface{}
	Response   interface{}
	Error      string
	IP         string
	DurationMs int
}

// Service logs audit entries asynchronously in batches.
type Service struct {
	db        *gorm.DB
	ch        chan *model.AuditLog
	stopCh    chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	logger    *zap.Logger
	batchSize int
	interval  time.Duration
}

// New creates a new audit Service and starts its background worker.
// Zero config values fall back to a 1024 entry buffer, batches of 100 and
// a 2s flush interval.
func New(db *gorm.DB, cfg config.AuditConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	buf := cfg.BufferSize
	if buf <= 0 {
		buf = 1024
	}
	svc := &Service{
		db:        db,
		ch:        make(chan *model.AuditLog, buf),
		stopCh:    make(chan struct{}),
		logger:    logger,
		batchSize: cfg.BatchSize,
		interval:  cfg.FlushInterval,
	}
	if svc.batchSize <= 0 {
		svc.batchSize = 100
	}
	if svc.interval <= 0 {
		svc.interval = 2 * time.Second
	}
	svc.wg.Add(1)
	go svc.worker()
	return svc
}

// Log enqueues an audit entry for async DB write. A nil Service drops it.
func (svc *Service) Log(entry Entry) {
	if svc == nil {
		return
	}
	reqJSON, _ := json.Marshal(entry.Request)
	respJSON, _ := json.Marshal(entry.Response)
	record := &model.AuditLog{
		TraceID:    entry.TraceID,
		UserID:     entry.UserID,
		ActorID:    entry.ActorID,
		TestID:     entry.TestID,
		SceneID:    entry.SceneID,
		Action:     entry.Action,
		Request:    datatypes.JSON(reqJSON),
		Response:   datatypes.JSON(respJSON),
		Error:      entry.Error,
		IP:         entry.IP,
		DurationMs: entry.DurationMs,
	}
	select {
	case svc.ch <- record:
	default:
		svc.logger.Warn("audit channel full, dropping entry",
			zap.String("action", entry.Action),
			zap.String("test_id", entry.TestID))
	}
}

// ByTest returns the audit trail of one test, oldest first.
func (svc *Service) ByTest(ctx context.Context, testID string) ([]model.AuditLog, error) {
	var logs []model.AuditLog
	err := svc.db.WithContext(ctx).Where("test_id = ?", testID).Order("id").Find(&logs).Error
	return logs, err
}

// Purge deletes entries older than the given number of days.
func (svc *Service) Purge(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -days)
	res := svc.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&model.AuditLog{})
	return res.RowsAffected, res.Error
}

// Stop flushes remaining entries and shuts down the worker.
// It blocks until the worker goroutine has finished.
func (svc *Service) Stop(_ context.Context) {
	if svc == nil {
		return
	}
	svc.stopOnce.Do(func() { close(svc.stopCh) })
	svc.wg.Wait()
}

func (svc *Service) worker() {
	defer svc.wg.Done()
	ticker := time.NewTicker(svc.interval)
	defer ticker.Stop()

	batch := make([]*model.AuditLog, 0, svc.batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := svc.db.Create(&batch).Error; err != nil {
			svc.logger.Error("audit batch write failed", zap.Error(err), zap.Int("entries", len(batch)))
		}
		batch = batch[:0]
	}

	for {
		select {
		case entry := <-svc.ch:
			batch = append(batch, entry)
			if len(batch) >= svc.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-svc.stopCh:
			// Drain remaining entries.
			for {
				select {
				case entry := <-svc.ch:
					batch = append(batch, entry)
				default:
					flush()
					return
				}
			}
		}
	}
}
