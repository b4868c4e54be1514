package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/mxcd/go-bounded-cache"

// FeedMessage is the msgpack payload published on a feed channel.
type FeedMessage[V any] struct {
	Key   string `msgpack:"key"`
	Value V      `msgpack:"value"`
}

// RedisFeed offers entries published on a Redis channel to a cache. It only
// reads from Redis: nothing written to the target cache is sent back.
type RedisFeed[K comparable, V any] struct {
	Options     *RedisFeedOptions[K, V]
	Client      *redis.Client
	callbacks   []func(CacheEvent[K, V])
	callbacksMu sync.RWMutex
	// serializes inserts from the receive loop and Backfill
	offerMu sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

type RedisFeedOptions[K comparable, V any] struct {
	RedisOptions *redis.Options
	ChannelName  string
	// KeyPrefix selects the keys read by Backfill
	KeyPrefix string
	CacheKey  CacheKey[K]
	// Target receives every entry. The feed never inserts into it from two
	// goroutines at once, so a plain BoundedCache is fine as long as nothing
	// else uses it while the feed runs. Use a SynchronizedCache when the host
	// reads the cache concurrently.
	Target Cache[K, V]
}

func (o *RedisFeedOptions[K, V]) validate() error {
	if o == nil {
		return errors.New("options are required")
	}
	if o.RedisOptions == nil {
		return errors.New("RedisOptions is required")
	}
	if o.ChannelName == "" {
		return errors.New("ChannelName is required")
	}
	if o.CacheKey == nil {
		return errors.New("CacheKey is required")
	}
	if o.Target == nil {
		return errors.New("Target is required")
	}
	return nil
}

// NewRedisFeed connects, subscribes to the channel and returns once the
// subscription is confirmed. Messages are then applied in the background
// until Close is called.
func NewRedisFeed[K comparable, V any](options *RedisFeedOptions[K, V]) (*RedisFeed[K, V], error) {
	if err := options.validate(); err != nil {
		return nil, err
	}

	client := redis.NewClient(options.RedisOptions)

	if err := redisotel.InstrumentTracing(client); err != nil {
		client.Close()
		return nil, err
	}

	if err := redisotel.InstrumentMetrics(client); err != nil {
		client.Close()
		return nil, err
	}

	f := &RedisFeed[K, V]{
		Options: options,
		Client:  client,
	}

	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel

	pubsub, err := f.subscribe(ctx)
	if err != nil {
		cancel()
		client.Close()
		return nil, err
	}
	Logger().Info("feed subscribed", "channel", options.ChannelName)

	f.wg.Add(1)
	go f.run(ctx, pubsub)

	return f, nil
}

func (f *RedisFeed[K, V]) subscribe(ctx context.Context) (*redis.PubSub, error) {
	pubsub := f.Client.Subscribe(ctx, f.Options.ChannelName)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}
	return pubsub, nil
}

func (f *RedisFeed[K, V]) run(ctx context.Context, pubsub *redis.PubSub) {
	defer f.wg.Done()
	backoff := 100 * time.Millisecond
	maxBackoff := 10 * time.Second

	for {
		for {
			msg, err := pubsub.ReceiveMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					pubsub.Close()
					return
				}
				Logger().Warn("feed receive error, reconnecting", "channel", f.Options.ChannelName, "error", err)
				break
			}

			backoff = 100 * time.Millisecond
			f.apply(ctx, []byte(msg.Payload))
		}
		pubsub.Close()

		select {
		case <-time.After(backoff):
			if backoff < maxBackoff {
				backoff *= 2
			}
		case <-ctx.Done():
			return
		}

		var err error
		pubsub, err = f.subscribe(ctx)
		for err != nil {
			if ctx.Err() != nil {
				return
			}
			Logger().Warn("feed resubscribe failed", "channel", f.Options.ChannelName, "error", err)
			select {
			case <-time.After(backoff):
				if backoff < maxBackoff {
					backoff *= 2
				}
			case <-ctx.Done():
				return
			}
			pubsub, err = f.subscribe(ctx)
		}
	}
}

func (f *RedisFeed[K, V]) apply(ctx context.Context, payload []byte) {
	_, span := otel.Tracer(tracerName).Start(ctx, "cache.feed.apply",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(attribute.String("messaging.destination.name", f.Options.ChannelName)),
	)
	defer span.End()

	var message FeedMessage[V]
	if err := msgpack.Unmarshal(payload, &message); err != nil {
		span.RecordError(err)
		Logger().Warn("error unmarshalling feed message", "error", err)
		return
	}

	key, err := f.Options.CacheKey.Unmarshal(message.Key)
	if err != nil {
		span.RecordError(err)
		Logger().Warn("error unmarshalling feed key", "key", message.Key, "error", err)
		return
	}

	admitted := f.offer(key, message.Value)
	span.SetAttributes(
		attribute.String("cache.key", message.Key),
		attribute.Bool("cache.admitted", admitted),
	)
}

// offer inserts into the target and notifies callbacks of the outcome.
// Callbacks run with offerMu held, in insert order.
func (f *RedisFeed[K, V]) offer(key K, value V) bool {
	f.offerMu.Lock()
	defer f.offerMu.Unlock()

	admitted := f.Options.Target.Insert(key, value)

	event := CacheEvent[K, V]{
		Entry: &CacheEntry[K, V]{
			Key:   key,
			Value: &value,
		},
		Type: CacheEventAdmitted,
	}
	if !admitted {
		event.Type = CacheEventRejected
	}

	f.callbacksMu.RLock()
	for _, callback := range f.callbacks {
		callback(event)
	}
	f.callbacksMu.RUnlock()

	return admitted
}

func (f *RedisFeed[K, V]) AddCallback(callback func(CacheEvent[K, V])) {
	f.callbacksMu.Lock()
	defer f.callbacksMu.Unlock()
	f.callbacks = append(f.callbacks, callback)
}

// Publish sends an entry to every feed subscribed to the channel, including
// this one.
func (f *RedisFeed[K, V]) Publish(ctx context.Context, key K, value V) error {
	data, err := msgpack.Marshal(&FeedMessage[V]{
		Key:   f.Options.CacheKey.Marshal(key),
		Value: value,
	})
	if err != nil {
		return err
	}

	return f.Client.Publish(ctx, f.Options.ChannelName, data).Err()
}

func (f *RedisFeed[K, V]) Close() error {
	if f.cancel != nil {
		f.cancel()
	}
	// Close client to unblock any TCP reads in the receive goroutine,
	// then wait for the goroutine to finish.
	err := f.Client.Close()
	f.wg.Wait()
	return err
}
