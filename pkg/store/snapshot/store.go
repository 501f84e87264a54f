package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/de-tools/entra-atlas/pkg/models/store"
	"github.com/de-tools/entra-atlas/pkg/store/kv"
)

const (
	HistoryKeyPrefix    = "scanHistory_"
	ScanKeyPrefix       = "scan_"
	DefaultHistoryLimit = 10
)

var ErrNotFound = errors.New("scan not found")

// Store keeps one blob per scan and a bounded per-tenant history of summaries.
// The two keys are written independently; a history entry whose blob is
// missing reads back as ErrNotFound.
type Store interface {
	Save(ctx context.Context, data store.ScanData) error
	Update(ctx context.Context, data store.ScanData) error
	Get(ctx context.Context, scanID string) (*store.ScanData, error)
	Latest(ctx context.Context, tenantID string) (*store.ScanData, error)
	History(ctx context.Context, tenantID string) ([]store.ScanSummary, error)
	Clear(ctx context.Context) (int, error)
}

type kvStore struct {
	storage kv.Storage
	limit   int
}

func NewStore(storage kv.Storage, limit int) (Store, error) {
	if storage == nil {
		return nil, fmt.Errorf("storage is nil")
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &kvStore{storage: storage, limit: limit}, nil
}

func HistoryKey(tenantID string) string {
	return HistoryKeyPrefix + tenantID
}

func ScanKey(scanID string) string {
	return ScanKeyPrefix + scanID
}

func (s *kvStore) Save(ctx context.Context, data store.ScanData) error {
	if data.Summary.ID == "" {
		return fmt.Errorf("scan id is required")
	}
	if err := s.Update(ctx, data); err != nil {
		return err
	}

	history, err := s.History(ctx, data.Summary.TenantID)
	if err != nil {
		return err
	}

	history = append(history, data.Summary)
	if len(history) > s.limit {
		history = history[len(history)-s.limit:]
	}

	raw, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshal scan history: %w", err)
	}
	if err := s.storage.Set(ctx, HistoryKey(data.Summary.TenantID), raw); err != nil {
		return fmt.Errorf("store scan history: %w", err)
	}
	return nil
}

func (s *kvStore) Update(ctx context.Context, data store.ScanData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal scan %s: %w", data.Summary.ID, err)
	}
	if err := s.storage.Set(ctx, ScanKey(data.Summary.ID), raw); err != nil {
		return fmt.Errorf("store scan %s: %w", data.Summary.ID, err)
	}
	return nil
}

func (s *kvStore) Get(ctx context.Context, scanID string) (*store.ScanData, error) {
	raw, err := s.storage.Get(ctx, ScanKey(scanID))
	if errors.Is(err, kv.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, scanID)
	}
	if err != nil {
		return nil, fmt.Errorf("load scan %s: %w", scanID, err)
	}

	var data store.ScanData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode scan %s: %w", scanID, err)
	}
	return &data, nil
}

func (s *kvStore) Latest(ctx context.Context, tenantID string) (*store.ScanData, error) {
	history, err := s.History(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, fmt.Errorf("%w: no scans for tenant %s", ErrNotFound, tenantID)
	}
	return s.Get(ctx, history[len(history)-1].ID)
}

// History returns summaries oldest first.
func (s *kvStore) History(ctx context.Context, tenantID string) ([]store.ScanSummary, error) {
	raw, err := s.storage.Get(ctx, HistoryKey(tenantID))
	if errors.Is(err, kv.ErrKeyNotFound) {
		return []store.ScanSummary{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load scan history: %w", err)
	}

	var history []store.ScanSummary
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil, fmt.Errorf("decode scan history: %w", err)
	}
	return history, nil
}

// Clear removes every scan blob and every tenant history. Auth keys are kept.
func (s *kvStore) Clear(ctx context.Context) (int, error) {
	keys, err := s.storage.Keys(ctx, "scan")
	if err != nil {
		return 0, fmt.Errorf("list scan keys: %w", err)
	}

	removed := 0
	for _, key := range keys {
		if !strings.HasPrefix(key, ScanKeyPrefix) && !strings.HasPrefix(key, HistoryKeyPrefix) {
			continue
		}
		if err := s.storage.Delete(ctx, key); err != nil {
			return removed, fmt.Errorf("delete %s: %w", key, err)
		}
		removed++
	}
	return removed, nil
}
