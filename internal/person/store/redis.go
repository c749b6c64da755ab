package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"personpatch/internal/person/models"
	id "personpatch/pkg/domain"
	"personpatch/pkg/platform/sentinel"
)

const defaultKeyPrefix = "people:"

// RedisStore keeps each person as a JSON document under <prefix>person:<id>
// and the insertion order in the list <prefix>ids.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// RedisOption configures a RedisStore instance.
type RedisOption func(*RedisStore)

// WithKeyPrefix namespaces every key the store touches.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewRedis constructs a Redis-backed person store.
func NewRedis(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: defaultKeyPrefix}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *RedisStore) personKey(personID id.PersonID) string {
	return s.prefix + "person:" + personID.String()
}

func (s *RedisStore) indexKey() string {
	return s.prefix + "ids"
}

func (s *RedisStore) ListAll(ctx context.Context) ([]*models.Person, error) {
	ids, err := s.client.LRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list person ids: %w", err)
	}
	out := make([]*models.Person, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, personID := range ids {
		keys[i] = s.personKey(id.PersonID(personID))
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load people: %w", err)
	}
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		p, err := decodePerson(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *RedisStore) FindByID(ctx context.Context, personID id.PersonID) (*models.Person, error) {
	raw, err := s.client.Get(ctx, s.personKey(personID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get person: %w", err)
	}
	return decodePerson(raw)
}

// insertScript writes the document only when the key is new and indexes it in
// the same step, so a person is never stored without being listed.
var insertScript = redis.NewScript(`
if redis.call('SET', KEYS[1], ARGV[1], 'NX') then
	redis.call('RPUSH', KEYS[2], ARGV[2])
	return 1
end
return 0
`)

// Insert stores p under a fresh or caller-chosen id. An existing person is
// never overwritten.
func (s *RedisStore) Insert(ctx context.Context, p *models.Person) (id.PersonID, error) {
	personID := assignID(p)
	data, err := json.Marshal(toEntity(p))
	if err != nil {
		return "", fmt.Errorf("encode person: %w", err)
	}
	created, err := insertScript.Run(ctx, s.client,
		[]string{s.personKey(personID), s.indexKey()},
		data, personID.String(),
	).Int()
	if err != nil {
		return "", fmt.Errorf("insert person: %w", err)
	}
	if created == 0 {
		return "", sentinel.ErrConflict
	}
	return personID, nil
}

// Replace swaps the stored document in one SET XX GET round trip, so the
// previous version returned is exactly the one overwritten.
func (s *RedisStore) Replace(ctx context.Context, personID id.PersonID, p *models.Person) (*models.Person, error) {
	e := toEntity(p)
	e.ID = personID.String()
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode person: %w", err)
	}
	previous, err := s.client.SetArgs(ctx, s.personKey(personID), data, redis.SetArgs{Mode: "XX", Get: true}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("replace person: %w", err)
	}
	return decodePerson(previous)
}

func decodePerson(raw string) (*models.Person, error) {
	var e entity
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return nil, fmt.Errorf("decode person: %w", err)
	}
	return e.toPerson(), nil
}
