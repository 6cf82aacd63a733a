package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/HorizonteApps/clinic-scheduler/internal/httperr"
)

const draftTTL = time.Hour

// Draft is the professional's uncommitted working copy of the whole schedule:
// the weekly template plus every per-date override. It lives outside the
// durable store until Commit swaps it in, so half-edited schedules are never
// visible to booking attempts or other dashboards.
type Draft struct {
	Days      []DayConfig      `json:"days"`
	Overrides []OverrideConfig `json:"overrides"`
}

type DayConfig struct {
	Weekday   int    `json:"weekday"`
	Enabled   bool   `json:"enabled"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type OverrideConfig struct {
	Date  string   `json:"date"`
	Times []string `json:"times"`
}

// DraftStore keeps working copies in redis, one key per professional. The
// TTL bounds how long an abandoned editing session lingers.
type DraftStore struct {
	rdb *redis.Client
}

func NewDraftStore(rdb *redis.Client) *DraftStore {
	return &DraftStore{rdb: rdb}
}

func draftKey(professionalID uint) string {
	return fmt.Sprintf("availability:draft:%d", professionalID)
}

func (s *DraftStore) Save(ctx context.Context, professionalID uint, d *Draft) error {
	b, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, draftKey(professionalID), b, draftTTL).Err()
}

func (s *DraftStore) Get(ctx context.Context, professionalID uint) (*Draft, error) {
	raw, err := s.rdb.Get(ctx, draftKey(professionalID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, httperr.ErrBusiness(httperr.CodeDraftNotFound)
	}
	if err != nil {
		return nil, err
	}

	var d Draft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *DraftStore) Discard(ctx context.Context, professionalID uint) error {
	return s.rdb.Del(ctx, draftKey(professionalID)).Err()
}
