package cache

import (
	"context"
	"strings"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

const backfillBatchSize = 100

var globEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`?`, `\?`,
	`[`, `\[`,
	`]`, `\]`,
)

// keyPattern matches KeyPrefix literally, even when it contains glob
// characters.
func (f *RedisFeed[K, V]) keyPattern() string {
	if f.Options.KeyPrefix == "" {
		return "*"
	}
	return globEscaper.Replace(f.Options.KeyPrefix) + ":*"
}

func (f *RedisFeed[K, V]) trimKey(key string) string {
	if f.Options.KeyPrefix == "" {
		return key
	}
	return strings.TrimPrefix(key, f.Options.KeyPrefix+":")
}

func (f *RedisFeed[K, V]) fetchValues(ctx context.Context, keys []string, resultsChan chan<- map[string]V, wg *sync.WaitGroup) {
	defer wg.Done()
	keyValues := make(map[string]V)
	for _, key := range keys {
		value, err := f.Client.Get(ctx, key).Bytes()
		if err != nil {
			Logger().Warn("error fetching backfill value", "key", key, "error", err)
			continue
		}

		var unmarshalledValue V
		err = msgpack.Unmarshal(value, &unmarshalledValue)
		if err != nil {
			Logger().Warn("error unmarshalling backfill value", "key", key, "error", err)
			continue
		}
		keyValues[key] = unmarshalledValue
	}
	resultsChan <- keyValues
}

// Backfill scans KeyPrefix:* and offers every decodable value to the target
// cache, returning how many were admitted. Offer order across keys follows
// the SCAN order and is therefore unspecified.
func (f *RedisFeed[K, V]) Backfill(ctx context.Context) (int, error) {
	var cursor uint64
	var err error
	resultsChan := make(chan map[string]V)
	var wg sync.WaitGroup

	for {
		var scanKeys []string
		scanKeys, cursor, err = f.Client.Scan(ctx, cursor, f.keyPattern(), 0).Result()
		if err != nil {
			break
		}

		for i := 0; i < len(scanKeys); i += backfillBatchSize {
			end := i + backfillBatchSize
			if end > len(scanKeys) {
				end = len(scanKeys)
			}
			wg.Add(1)
			go f.fetchValues(ctx, scanKeys[i:end], resultsChan, &wg)
		}

		if cursor == 0 {
			break
		}
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	admitted := 0
	for keyMap := range resultsChan {
		for rawKey, value := range keyMap {
			key, keyErr := f.Options.CacheKey.Unmarshal(f.trimKey(rawKey))
			if keyErr != nil {
				Logger().Warn("error unmarshalling backfill key", "key", rawKey, "error", keyErr)
				continue
			}
			if f.offer(key, value) {
				admitted++
			}
		}
	}

	if err != nil {
		return admitted, err
	}

	Logger().Info("feed backfill finished", "pattern", f.keyPattern(), "admitted", admitted)
	return admitted, nil
}
