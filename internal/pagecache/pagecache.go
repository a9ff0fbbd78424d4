// Package pagecache stores values derived from MarketWatch pages that rarely
// change (ticker uids, game settings) so they are not scraped on every call.
package pagecache

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"net/url"
	"time"

	devenv "marketwatch-backend/dev/env"
	"marketwatch-backend/internal/components/assert"
	"marketwatch-backend/internal/components/chrono"

	"github.com/PuerkitoBio/purell"
	"github.com/dgraph-io/badger/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("marketwatch.internal.pagecache")

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("pagecache: miss")

type entry struct {
	Contents  []byte
	ExpiresAt int64
}

// Open opens (or creates) a badger database in dir, an empty dir opens an
// in-memory database.
func Open(dir string) (*badger.DB, error) {
	if dir == "" {
		return badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	}
	resolved, err := devenv.ResolvePath(dir)
	if err != nil {
		return nil, err
	}
	return badger.Open(badger.DefaultOptions(resolved).WithLogger(nil))
}

type Cache struct {
	db        *badger.DB
	namespace string
	clock     chrono.TimeAPI
}

// New creates a cache whose keys are prefixed with namespace, so several
// caches can share one database.
func New(db *badger.DB, namespace string, clock chrono.TimeAPI) Cache {
	assert.NotNil(db, "badger db")
	assert.NotEmptyStr(namespace, "namespace")
	assert.NotNil(clock, "clock")
	return Cache{db: db, namespace: namespace, clock: clock}
}

// Key normalizes link so that equivalent urls (different query order, a
// trailing fragment, etc.) share an entry.
func (c Cache) Key(link string) (string, error) {
	parsed, err := url.Parse(link)
	if err != nil {
		return "", err
	}
	normalized := purell.NormalizeURL(
		parsed,
		purell.FlagsSafe|
			purell.FlagsUsuallySafeNonGreedy|
			purell.FlagRemoveDirectoryIndex|
			purell.FlagRemoveFragment|
			purell.FlagSortQuery,
	)
	return c.namespace + ":" + normalized, nil
}

func (c Cache) Get(ctx context.Context, link string) ([]byte, error) {
	_, span := tracer.Start(ctx, "Get")
	defer span.End()

	key, err := c.Key(link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create cache key")
		return nil, err
	}
	span.SetAttributes(attribute.String("cache_key", key))

	var serialized []byte
	err = c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		serialized, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrMiss
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read item from badger")
		return nil, err
	}

	var cached entry
	err = gob.NewDecoder(bytes.NewReader(serialized)).Decode(&cached)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to deserialize cached item")
		return nil, err
	}

	if c.clock.Now().Unix() >= cached.ExpiresAt {
		span.AddEvent("delete expired cache key")
		err = c.db.Update(func(txn *badger.Txn) error {
			return txn.Delete([]byte(key))
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to delete expired key")
		}
		return nil, ErrMiss
	}

	span.SetAttributes(attribute.Int("content_length", len(cached.Contents)))
	return cached.Contents, nil
}

func (c Cache) Set(ctx context.Context, link string, contents []byte, ttl time.Duration) error {
	_, span := tracer.Start(ctx, "Set")
	defer span.End()

	key, err := c.Key(link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create cache key")
		return err
	}
	span.SetAttributes(attribute.String("cache_key", key))

	serialized := bytes.NewBuffer(nil)
	err = gob.NewEncoder(serialized).Encode(entry{
		Contents:  contents,
		ExpiresAt: c.clock.Now().Add(ttl).Unix(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to serialize entry")
		return err
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), serialized.Bytes())
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to set badger item")
		return err
	}
	return nil
}

func (c Cache) Delete(ctx context.Context, link string) error {
	key, err := c.Key(link)
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}
