package approval

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Notice is a short-lived per-user UI flash, e.g. "change sent for approval".
// The core deposits notices; the screen layer renders and drains them.
type Notice struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	RequestID int64     `json:"request_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NoticeStore keeps per-user notice lists in redis with a TTL so abandoned
// notices expire on their own.
type NoticeStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewNoticeStore creates a notice store. ttl <= 0 defaults to 15 minutes.
func NewNoticeStore(rdb *redis.Client, ttl time.Duration) *NoticeStore {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &NoticeStore{rdb: rdb, ttl: ttl}
}

func noticeKey(userID int64) string {
	return fmt.Sprintf("erp:notices:%d", userID)
}

// Push appends a notice to the user's list and refreshes the TTL.
func (s *NoticeStore) Push(ctx context.Context, userID int64, n Notice) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notice: %w", err)
	}
	key := noticeKey(userID)
	if err := s.rdb.RPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("push notice: %w", err)
	}
	if err := s.rdb.Expire(ctx, key, s.ttl).Err(); err != nil {
		return fmt.Errorf("expire notices: %w", err)
	}
	return nil
}

// Drain returns and removes all pending notices for the user in arrival order.
func (s *NoticeStore) Drain(ctx context.Context, userID int64) ([]Notice, error) {
	key := noticeKey(userID)
	items, err := s.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read notices: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return nil, fmt.Errorf("drain notices: %w", err)
	}
	notices := make([]Notice, 0, len(items))
	for _, item := range items {
		var n Notice
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			continue
		}
		notices = append(notices, n)
	}
	return notices, nil
}
