// Package redis provides an example nedb.Persister backed by Redis,
// kept outside the core module's import graph: nedb only depends on the
// Persister interface, never on a concrete backend.
package redis

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	goredis "github.com/redis/go-redis/v9"

	"github.com/nedbgo/nedb"
)

// Persister writes every committed record batch to a Redis list, BSON
// encoding each record so it round-trips through any BSON-aware reader.
type Persister struct {
	client *goredis.Client
	key    string
	ctx    context.Context
}

// New constructs a Persister that appends to the Redis list named key.
func New(client *goredis.Client, key string) *Persister {
	return &Persister{client: client, key: key, ctx: context.Background()}
}

// PersistNewState implements nedb.Persister.
func (p *Persister) PersistNewState(records []nedb.Doc, done func(error)) {
	if len(records) == 0 {
		done(nil)
		return
	}
	vals := make([]interface{}, 0, len(records))
	for _, r := range records {
		b, err := bson.Marshal(r)
		if err != nil {
			done(fmt.Errorf("encoding persisted record: %w", err))
			return
		}
		vals = append(vals, b)
	}
	if err := p.client.RPush(p.ctx, p.key, vals...).Err(); err != nil {
		done(err)
		return
	}
	done(nil)
}

// Load replays every previously persisted record, decoding each back into
// a nedb.Doc, in the order they were written.
func (p *Persister) Load() ([]nedb.Doc, error) {
	raw, err := p.client.LRange(p.ctx, p.key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	docs := make([]nedb.Doc, 0, len(raw))
	for _, s := range raw {
		var d nedb.Doc
		if err := bson.Unmarshal([]byte(s), &d); err != nil {
			return nil, fmt.Errorf("decoding persisted record: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, nil
}
