package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/xavierca1/coach-crm/internal/entity"
)

const DefaultFeedLimit = 50

// NotificationStore keeps each user's feed as a Redis list, newest first, trimmed to Limit.
type NotificationStore struct {
	Client *Client
	Limit  int
}

func NewNotificationStore(client *Client, limit int) *NotificationStore {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	return &NotificationStore{Client: client, Limit: limit}
}

func feedKey(userID string) string {
	return "notifications:" + userID
}

func (s *NotificationStore) Push(ctx context.Context, n entity.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	key := feedKey(n.UserID)
	_, err = s.Client.Redis.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LPush(ctx, key, body)
		p.LTrim(ctx, key, 0, int64(s.Limit-1))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to push notification: %w", err)
	}
	return nil
}

func (s *NotificationStore) List(ctx context.Context, userID string) ([]entity.Notification, error) {
	raw, err := s.Client.Redis.LRange(ctx, feedKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return decodeFeed(raw)
}

func (s *NotificationStore) MarkRead(ctx context.Context, userID, notificationID string) error {
	return s.rewrite(ctx, userID, func(n *entity.Notification) {
		if n.ID == notificationID {
			n.IsRead = true
		}
	})
}

func (s *NotificationStore) MarkAllRead(ctx context.Context, userID string) error {
	return s.rewrite(ctx, userID, func(n *entity.Notification) {
		n.IsRead = true
	})
}

func (s *NotificationStore) Clear(ctx context.Context, userID string) error {
	if err := s.Client.Redis.Del(ctx, feedKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear notifications: %w", err)
	}
	return nil
}

// rewrite applies fn to every notification of the feed under WATCH, so a concurrent push
// aborts the rewrite and it is retried.
func (s *NotificationStore) rewrite(ctx context.Context, userID string, fn func(*entity.Notification)) error {
	key := feedKey(userID)

	txf := func(tx *redis.Tx) error {
		raw, err := tx.LRange(ctx, key, 0, -1).Result()
		if err != nil {
			return err
		}
		feed, err := decodeFeed(raw)
		if err != nil {
			return err
		}
		if len(feed) == 0 {
			return nil
		}

		values := make([]any, 0, len(feed))
		for i := range feed {
			fn(&feed[i])
			body, err := json.Marshal(feed[i])
			if err != nil {
				return err
			}
			values = append(values, body)
		}

		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Del(ctx, key)
			p.RPush(ctx, key, values...)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < 3; attempt++ {
		err := s.Client.Redis.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to update notifications: %w", err)
		}
		return nil
	}
	return fmt.Errorf("failed to update notifications: %w", redis.TxFailedErr)
}

func decodeFeed(raw []string) ([]entity.Notification, error) {
	out := make([]entity.Notification, 0, len(raw))
	for _, item := range raw {
		var n entity.Notification
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			return nil, fmt.Errorf("failed to decode notification: %w", err)
		}
		out = append(out, n)
	}
	return out, nil
}
