package sqlstore

import (
	"context"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-notifiarr/core"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	DefaultDispatchesPerPage = 25

	dispatchStatusOK     = "ok"
	dispatchStatusFailed = "failed"
)

// DispatchStore persists one row per Send or Test outcome.
type DispatchStore struct {
	db   *bun.DB
	repo repository.Repository[*dispatchRecord]
	now  func() time.Time
}

func NewDispatchStore(db *bun.DB) (*DispatchStore, error) {
	if db == nil {
		return nil, storeError("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*dispatchRecord](db, dispatchHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, storeWrapError(err, "sqlstore: invalid dispatch repository wiring")
		}
	}
	return &DispatchStore{db: db, repo: repo, now: time.Now}, nil
}

func (s *DispatchStore) Record(ctx context.Context, entry core.DispatchRecord) error {
	if s == nil || s.repo == nil {
		return storeError("sqlstore: dispatch store is not configured")
	}
	id := strings.TrimSpace(entry.ID)
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := entry.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = s.now().UTC()
	}
	operation := strings.TrimSpace(string(entry.Operation))
	if operation == "" {
		operation = string(core.OperationSend)
	}
	status := dispatchStatusOK
	if !entry.Succeeded() {
		status = dispatchStatusFailed
	}

	record := &dispatchRecord{
		ID:           id,
		Operation:    operation,
		InstanceName: strings.TrimSpace(entry.InstanceName),
		Environment:  entry.Environment.String(),
		Status:       status,
		StatusCode:   entry.StatusCode,
		Category:     string(entry.Category),
		Message:      entry.Message,
		FieldCount:   entry.Fields,
		DurationMS:   entry.Duration.Milliseconds(),
		Metadata:     core.RedactSensitiveMap(entry.Metadata),
		CreatedAt:    createdAt,
	}

	_, err := s.repo.Create(ctx, record)
	return err
}

func (s *DispatchStore) List(ctx context.Context, filter core.DispatchFilter) (core.DispatchPage, error) {
	if s == nil || s.repo == nil {
		return core.DispatchPage{}, storeError("sqlstore: dispatch store is not configured")
	}
	filter = normalizeFilter(filter)
	offset := (filter.Page - 1) * filter.PerPage

	selectors := []repository.SelectCriteria{
		repository.OrderBy("created_at DESC"),
		repository.SelectPaginate(filter.PerPage, offset),
	}
	if filter.InstanceName != "" {
		selectors = append(selectors, repository.SelectBy("instance_name", "=", filter.InstanceName))
	}
	if filter.Operation != "" {
		selectors = append(selectors, repository.SelectBy("operation", "=", string(filter.Operation)))
	}

	records, total, err := s.repo.List(ctx, selectors...)
	if err != nil {
		return core.DispatchPage{}, err
	}
	items := make([]core.DispatchRecord, 0, len(records))
	for _, record := range records {
		items = append(items, dispatchRecordToDomain(record))
	}
	return core.DispatchPage{
		Items:   items,
		Page:    filter.Page,
		PerPage: filter.PerPage,
		Total:   total,
	}, nil
}

// Prune deletes rows older than ttl and returns the number removed.
func (s *DispatchStore) Prune(ctx context.Context, ttl time.Duration) (int, error) {
	if s == nil || s.db == nil {
		return 0, storeError("sqlstore: dispatch store is not configured")
	}
	if ttl <= 0 {
		return 0, nil
	}
	cutoff := s.now().UTC().Add(-ttl)
	res, err := s.db.NewDelete().
		Model((*dispatchRecord)(nil)).
		Where("created_at < ?", cutoff).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

func normalizeFilter(filter core.DispatchFilter) core.DispatchFilter {
	filter.InstanceName = strings.TrimSpace(filter.InstanceName)
	filter.Operation = core.Operation(strings.TrimSpace(string(filter.Operation)))
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = DefaultDispatchesPerPage
	}
	return filter
}

func dispatchRecordToDomain(record *dispatchRecord) core.DispatchRecord {
	if record == nil {
		return core.DispatchRecord{}
	}
	env, _ := core.ParseEnvironment(record.Environment)
	return core.DispatchRecord{
		ID:           record.ID,
		Operation:    core.Operation(record.Operation),
		InstanceName: record.InstanceName,
		Environment:  env,
		StatusCode:   record.StatusCode,
		Category:     core.FailureCategory(record.Category),
		Message:      record.Message,
		Fields:       record.FieldCount,
		Duration:     time.Duration(record.DurationMS) * time.Millisecond,
		Metadata:     copyAnyMap(record.Metadata),
		CreatedAt:    record.CreatedAt,
	}
}

func copyAnyMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
