package notify

import (
	"encoding/json"

	"github.com/go-redis/redis"

	"flightsurety/core/events"
)

// RecentEventsSize is the number of events kept in the recent events list.
const RecentEventsSize = 10_000

// RedisSink publishes each event as JSON on a pub/sub channel and keeps a
// capped list of recent events.
type RedisSink struct {
	client  *redis.Client
	channel string
}

func NewRedisSink(opts *redis.Options, channel string) (*RedisSink, error) {
	client := redis.NewClient(opts)

	if _, err := client.Ping().Result(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &RedisSink{client: client, channel: channel}, nil
}

func (r *RedisSink) recentKey() string {
	return r.channel + ":recent"
}

func (r *RedisSink) Deliver(e events.Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	if err := pipe.Publish(r.channel, body).Err(); err != nil {
		return err
	}
	if err := pipe.LPush(r.recentKey(), body).Err(); err != nil {
		return err
	}
	if err := pipe.LTrim(r.recentKey(), 0, RecentEventsSize-1).Err(); err != nil {
		return err
	}
	_, err = pipe.Exec()
	return err
}

// Recent returns up to n of the most recently delivered events, newest first.
func (r *RedisSink) Recent(n int64) ([]events.Event, error) {
	cmd := r.client.LRange(r.recentKey(), 0, n-1)
	if err := cmd.Err(); err != nil {
		return nil, err
	}
	out := make([]events.Event, 0, len(cmd.Val()))
	for _, raw := range cmd.Val() {
		var e events.Event
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *RedisSink) Close() error {
	return r.client.Close()
}
