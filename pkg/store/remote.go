package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"tableflip.dev/questlog/pkg/logger"
	"tableflip.dev/questlog/pkg/quest"
	"tableflip.dev/questlog/pkg/state"
)

// RemoteOptions locates a user's keyspace on a Redis server.
type RemoteOptions struct {
	Addr   string
	Prefix string
	User   string
}

// maxTxAttempts bounds optimistic transaction retries on contention.
const maxTxAttempts = 8

// Remote is the Redis backend. Quests live in one hash keyed by id, the
// course and category sets in sorted sets scored by insertion order, and
// every write is announced on a pub/sub channel.
type Remote struct {
	log *logger.Logger
	rdb *goredis.Client

	questsKey     string
	coursesKey    string
	categoriesKey string
	seqKey        string
	channel       string
}

var _ Persistence = (*Remote)(nil)

// NewRemote connects to opts.Addr and checks the connection.
func NewRemote(ctx context.Context, opts RemoteOptions, log *logger.Logger) (*Remote, error) {
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		return nil, errors.New("store: missing redis address")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return newRemote(rdb, opts, log), nil
}

func newRemote(rdb *goredis.Client, opts RemoteOptions, log *logger.Logger) *Remote {
	prefix := strings.TrimSpace(opts.Prefix)
	if prefix == "" {
		prefix = "questlog"
	}
	user := strings.TrimSpace(opts.User)
	if user == "" {
		user = "default"
	}
	base := prefix + ":" + user + ":"
	return &Remote{
		log:           logger.OrNop(log).With("store", "remote", "user", user),
		rdb:           rdb,
		questsKey:     base + "quests",
		coursesKey:    base + "courses",
		categoriesKey: base + "categories",
		seqKey:        base + "seq",
		channel:       base + "changed",
	}
}

func (r *Remote) LoadAll(ctx context.Context) (state.Document, error) {
	var (
		raw        map[string]string
		courses    []string
		categories []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		raw, err = r.rdb.HGetAll(gctx, r.questsKey).Result()
		if err != nil {
			return fmt.Errorf("redis load quests: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		courses, err = r.rdb.ZRange(gctx, r.coursesKey, 0, -1).Result()
		if err != nil {
			return fmt.Errorf("redis load courses: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		categories, err = r.rdb.ZRange(gctx, r.categoriesKey, 0, -1).Result()
		if err != nil {
			return fmt.Errorf("redis load categories: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return state.Document{}, err
	}

	doc := state.Document{
		Quests:     make([]quest.Quest, 0, len(raw)),
		Courses:    courses,
		Categories: categories,
	}
	for id, data := range raw {
		var q quest.Quest
		if err := json.Unmarshal([]byte(data), &q); err != nil {
			r.log.Warn("skipping unreadable quest", "id", id, "error", err)
			continue
		}
		if q.ID == "" {
			q.ID = id
		}
		doc.Quests = append(doc.Quests, q)
	}
	sortQuests(doc.Quests)
	return doc, nil
}

func (r *Remote) AddQuest(ctx context.Context, q quest.Quest) (quest.Quest, error) {
	saved := prepareNew(q)
	data, err := json.Marshal(saved)
	if err != nil {
		return quest.Quest{}, err
	}
	if err := r.rdb.HSet(ctx, r.questsKey, saved.ID, data).Err(); err != nil {
		return quest.Quest{}, fmt.Errorf("redis add quest: %w", err)
	}
	r.publish(ctx, Event{Type: EventQuestChanged, ID: saved.ID})
	return saved, nil
}

func (r *Remote) UpdateQuestProgress(ctx context.Context, id string, p quest.Progress) error {
	return r.modify(ctx, id, func(q quest.Quest) quest.Quest {
		return applyProgress(q, p)
	})
}

func (r *Remote) UpdateQuest(ctx context.Context, id string, patch map[string]any) error {
	return r.modify(ctx, id, func(q quest.Quest) quest.Quest {
		return applyPatch(q, patch)
	})
}

// modify runs a read-merge-write of one quest inside WATCH/MULTI, retrying
// when another writer touched the hash first.
func (r *Remote) modify(ctx context.Context, id string, fn func(quest.Quest) quest.Quest) error {
	txf := func(tx *goredis.Tx) error {
		data, err := tx.HGet(ctx, r.questsKey, id).Result()
		if errors.Is(err, goredis.Nil) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if err != nil {
			return err
		}
		var q quest.Quest
		if err := json.Unmarshal([]byte(data), &q); err != nil {
			return fmt.Errorf("store: decode %s: %w", id, err)
		}
		q.ID = id
		next, err := json.Marshal(fn(q))
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.HSet(ctx, r.questsKey, id, next)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxAttempts; i++ {
		err := r.rdb.Watch(ctx, txf, r.questsKey)
		if errors.Is(err, goredis.TxFailedErr) {
			r.log.Debug("quest transaction retry", "id", id, "attempt", i+1)
			continue
		}
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return err
			}
			return fmt.Errorf("redis update quest: %w", err)
		}
		r.publish(ctx, Event{Type: EventQuestChanged, ID: id})
		return nil
	}
	return fmt.Errorf("redis update quest %s: %w", id, goredis.TxFailedErr)
}

func (r *Remote) DeleteQuest(ctx context.Context, id string) error {
	n, err := r.rdb.HDel(ctx, r.questsKey, id).Result()
	if err != nil {
		return fmt.Errorf("redis delete quest: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	r.publish(ctx, Event{Type: EventQuestChanged, ID: id})
	return nil
}

func (r *Remote) AddCourse(ctx context.Context, name string) error {
	return r.addLabel(ctx, r.coursesKey, "courses", name)
}

func (r *Remote) RemoveCourse(ctx context.Context, name string) error {
	return r.removeLabel(ctx, r.coursesKey, "courses", name)
}

func (r *Remote) AddCategory(ctx context.Context, name string) error {
	return r.addLabel(ctx, r.categoriesKey, "categories", name)
}

func (r *Remote) RemoveCategory(ctx context.Context, name string) error {
	return r.removeLabel(ctx, r.categoriesKey, "categories", name)
}

// addLabel appends name to a sorted set. The score comes from a per-user
// counter so ZRANGE returns insertion order; NX keeps the first position.
func (r *Remote) addLabel(ctx context.Context, key, set, name string) error {
	seq, err := r.rdb.Incr(ctx, r.seqKey).Result()
	if err != nil {
		return fmt.Errorf("redis add %s: %w", set, err)
	}
	if err := r.rdb.ZAddNX(ctx, key, goredis.Z{Score: float64(seq), Member: name}).Err(); err != nil {
		return fmt.Errorf("redis add %s: %w", set, err)
	}
	r.publish(ctx, Event{Type: EventMetaChanged, ID: set})
	return nil
}

func (r *Remote) removeLabel(ctx context.Context, key, set, name string) error {
	if err := r.rdb.ZRem(ctx, key, name).Err(); err != nil {
		return fmt.Errorf("redis remove %s: %w", set, err)
	}
	r.publish(ctx, Event{Type: EventMetaChanged, ID: set})
	return nil
}

// Import replaces the user's keyspace atomically.
func (r *Remote) Import(ctx context.Context, doc state.Document) error {
	quests := make([]any, 0, 2*len(doc.Quests))
	for _, q := range doc.Quests {
		saved := prepareNew(q)
		data, err := json.Marshal(saved)
		if err != nil {
			return err
		}
		quests = append(quests, saved.ID, data)
	}
	_, err := r.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, r.questsKey, r.coursesKey, r.categoriesKey, r.seqKey)
		if len(quests) > 0 {
			pipe.HSet(ctx, r.questsKey, quests...)
		}
		if z := scored(doc.Courses); len(z) > 0 {
			pipe.ZAdd(ctx, r.coursesKey, z...)
		}
		if z := scored(doc.Categories); len(z) > 0 {
			pipe.ZAdd(ctx, r.categoriesKey, z...)
		}
		pipe.Set(ctx, r.seqKey, len(doc.Courses)+len(doc.Categories), 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis import: %w", err)
	}
	r.publish(ctx, Event{Type: EventInvalidated})
	return nil
}

func scored(labels []string) []goredis.Z {
	out := make([]goredis.Z, 0, len(labels))
	for i, l := range state.Dedupe(labels) {
		out = append(out, goredis.Z{Score: float64(i + 1), Member: l})
	}
	return out
}

// publish announces a change. Subscribers reload on any event, so a lost
// notification is logged rather than failing the write.
func (r *Remote) publish(ctx context.Context, ev Event) {
	raw, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := r.rdb.Publish(ctx, r.channel, raw).Err(); err != nil {
		r.log.Warn("redis publish", "error", err)
	}
}

// Watch subscribes to the user's change channel.
func (r *Remote) Watch(ctx context.Context) (<-chan Event, error) {
	sub := r.rdb.Subscribe(ctx, r.channel)

	// ensures subscription actually started
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	events := make(chan Event, 64)
	go func() {
		defer close(events)
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					r.log.Warn("bad change payload", "error", err)
					ev = Event{Type: EventInvalidated}
				}
				select {
				case events <- ev:
				default:
				}
			}
		}
	}()
	return events, nil
}

func (r *Remote) Close() error {
	if r == nil || r.rdb == nil {
		return nil
	}
	return r.rdb.Close()
}
