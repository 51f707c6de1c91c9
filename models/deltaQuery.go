package models

import (
	"context"
	"reflect"
	"time"

	"github.com/mmdatafocus/lottery_backend/config"
	"gorm.io/gorm"
)

const (
	DefaultPullLimit = 100
	MaxPullLimit     = 500
)

// ClampPullLimit normalizes a client-supplied page size.
func ClampPullLimit(limit int) int {
	if limit <= 0 {
		return DefaultPullLimit
	}
	if limit > MaxPullLimit {
		return MaxPullLimit
	}
	return limit
}

// PullFilter carries the cursor position for one delta page. SinceId
// breaks timestamp ties so a page boundary falling on a shared
// updated_at cannot re-deliver rows the client already has.
type PullFilter struct {
	Since         time.Time
	SinceId       string
	SinceSequence int64
	Limit         int
}

// PulledRecord pairs a row with its request-relative sequence number.
type PulledRecord[T any] struct {
	Sequence int64 `json:"sequence"`
	Record   T     `json:"record"`
}

// PullResult is one page of a delta pull.
type PullResult[T any] struct {
	Records     []PulledRecord[T] `json:"records"`
	HasMore     bool              `json:"has_more"`
	ServerTime  time.Time         `json:"server_time"`
	NextSince   time.Time         `json:"-"`
	NextSinceId string            `json:"-"`
	NextSeq     int64             `json:"-"`
}

// PullDelta pages rows changed at or after the cursor, ordered by
// (updated_at, id) so ties resolve deterministically. The scope func adds
// the collection's visibility predicate; a nil scope keeps the default
// tenant scoping.
func PullDelta[T any](ctx context.Context, filter PullFilter, scope func(*gorm.DB) *gorm.DB) (*PullResult[T], error) {
	limit := ClampPullLimit(filter.Limit)

	db := config.GetDB()
	query := db.WithContext(ctx).Model(new(T))
	if scope != nil {
		query = scope(query)
	}
	if !filter.Since.IsZero() {
		if filter.SinceId != "" {
			query = query.Where("updated_at > ? OR (updated_at = ? AND id > ?)",
				filter.Since, filter.Since, filter.SinceId)
		} else {
			// A bare timestamp resumes inclusively. That can repeat the
			// boundary row but never skips one, which is the right trade
			// for a client that lost its id cursor.
			query = query.Where("updated_at >= ?", filter.Since)
		}
	}

	var rows []T
	// Fetch one extra row to learn whether another page exists.
	if err := query.
		Order("updated_at ASC, id ASC").
		Limit(limit + 1).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}

	result := PullResult[T]{
		Records:    make([]PulledRecord[T], 0, len(rows)),
		HasMore:    hasMore,
		ServerTime: time.Now().UTC(),
	}
	seq := filter.SinceSequence
	for _, row := range rows {
		result.Records = append(result.Records, PulledRecord[T]{
			Sequence: seq,
			Record:   row,
		})
		seq++
	}
	result.NextSeq = seq
	if n := len(rows); n > 0 {
		result.NextSince = recordUpdatedAt(rows[n-1])
		result.NextSinceId = recordId(rows[n-1])
	} else {
		result.NextSince = filter.Since
		result.NextSinceId = filter.SinceId
	}
	return &result, nil
}

// recordUpdatedAt reads the UpdatedAt field every pull collection carries.
func recordUpdatedAt(record any) time.Time {
	v := reflect.ValueOf(record)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return time.Time{}
	}
	field := v.FieldByName("UpdatedAt")
	if !field.IsValid() {
		return time.Time{}
	}
	if t, ok := field.Interface().(time.Time); ok {
		return t
	}
	return time.Time{}
}

// recordId reads the string primary key shared by the pull collections.
func recordId(record any) string {
	v := reflect.ValueOf(record)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return ""
	}
	field := v.FieldByName("ID")
	if !field.IsValid() || field.Kind() != reflect.String {
		return ""
	}
	return field.String()
}
