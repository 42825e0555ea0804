package store

import (
	"time"

	"github.com/ncurl/jobwatch/internal/model"
)

var _ model.JobStore = (*NopStore)(nil)

// NopStore is a no-op store used in check mode. It never marks jobs as
// seen, so every job appears new on each poll and nothing is persisted.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) HasSeen(uid string) (bool, error) { return false, nil }

func (s *NopStore) MarkSeen(job model.Job, firstSeen time.Time) (bool, error) { return true, nil }

func (s *NopStore) Flush() error { return nil }

func (s *NopStore) Count() (int, error) { return 0, nil }

func (s *NopStore) Recent(limit int) ([]model.SeenRecord, error) { return nil, nil }
