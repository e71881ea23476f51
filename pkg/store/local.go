package store

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/peterbourgon/diskv/v3"

	"tableflip.dev/questlog/pkg/logger"
	"tableflip.dev/questlog/pkg/quest"
	"tableflip.dev/questlog/pkg/state"
)

const (
	questsDir     = "quests"
	metaDir       = "meta"
	coursesKey    = metaDir + "/courses"
	categoriesKey = metaDir + "/categories"
)

// NewLocal opens a diskv tree rooted at basePath. Each quest is one JSON
// file under quests/; the course and category sets live under meta/.
func NewLocal(basePath string, log *logger.Logger) (*Local, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, errors.New("store: base path unknown")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}
	return &Local{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      1024 * 1024, // 1MB
		}),
		basePath: basePath,
		log:      logger.OrNop(log).With("store", "local"),
	}, nil
}

// Local is the on-disk backend.
type Local struct {
	// mu serialises read-modify-write cycles.
	mu       sync.Mutex
	d        *diskv.Diskv
	basePath string
	log      *logger.Logger
}

var _ Persistence = (*Local)(nil)

func (p *Local) LoadAll(ctx context.Context) (state.Document, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	doc := state.Document{Quests: []quest.Quest{}}
	for key := range p.d.KeysPrefix(questsDir+"/", ctx.Done()) {
		q, err := p.readQuest(key)
		if err != nil {
			p.log.Warn("skipping unreadable quest", "key", key, "error", err)
			continue
		}
		doc.Quests = append(doc.Quests, q)
	}
	if err := ctx.Err(); err != nil {
		return state.Document{}, err
	}
	sortQuests(doc.Quests)

	var err error
	if doc.Courses, err = p.readLabels(coursesKey); err != nil {
		return state.Document{}, err
	}
	if doc.Categories, err = p.readLabels(categoriesKey); err != nil {
		return state.Document{}, err
	}
	return doc, nil
}

func (p *Local) AddQuest(_ context.Context, q quest.Quest) (quest.Quest, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	saved := prepareNew(q)
	if err := p.writeQuest(saved); err != nil {
		return quest.Quest{}, err
	}
	return saved, nil
}

func (p *Local) UpdateQuestProgress(_ context.Context, id string, progress quest.Progress) error {
	return p.modify(id, func(q quest.Quest) quest.Quest {
		return applyProgress(q, progress)
	})
}

func (p *Local) UpdateQuest(_ context.Context, id string, patch map[string]any) error {
	return p.modify(id, func(q quest.Quest) quest.Quest {
		return applyPatch(q, patch)
	})
}

func (p *Local) modify(id string, fn func(quest.Quest) quest.Quest) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := toKey(id)
	if !p.d.Has(key) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	q, err := p.readQuest(key)
	if err != nil {
		return err
	}
	return p.writeQuest(fn(q))
}

func (p *Local) DeleteQuest(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := toKey(id)
	if !p.d.Has(key) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p.d.Erase(key)
}

func (p *Local) AddCourse(_ context.Context, name string) error {
	return p.modifyLabels(coursesKey, func(l []string) []string { return state.Dedupe(append(l, name)) })
}

func (p *Local) RemoveCourse(_ context.Context, name string) error {
	return p.modifyLabels(coursesKey, func(l []string) []string { return removeLabel(l, name) })
}

func (p *Local) AddCategory(_ context.Context, name string) error {
	return p.modifyLabels(categoriesKey, func(l []string) []string { return state.Dedupe(append(l, name)) })
}

func (p *Local) RemoveCategory(_ context.Context, name string) error {
	return p.modifyLabels(categoriesKey, func(l []string) []string { return removeLabel(l, name) })
}

func (p *Local) modifyLabels(key string, fn func([]string) []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	labels, err := p.readLabels(key)
	if err != nil {
		return err
	}
	return p.writeLabels(key, fn(labels))
}

// Import replaces every stored quest and both label sets with doc. The new
// records are written before stale ones are erased, and a failed write puts
// back everything touched so far.
func (p *Local) Import(ctx context.Context, doc state.Document) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := make(map[string][]byte, len(doc.Quests)+2)
	order := make([]string, 0, len(doc.Quests)+2)
	for _, q := range doc.Quests {
		q = prepareNew(q)
		data, err := json.Marshal(q)
		if err != nil {
			return fmt.Errorf("store: encode %s: %w", q.ID, err)
		}
		key := toKey(q.ID)
		if _, dup := next[key]; !dup {
			order = append(order, key)
		}
		next[key] = data
	}
	for key, labels := range map[string][]string{coursesKey: doc.Courses, categoriesKey: doc.Categories} {
		if labels == nil {
			labels = []string{}
		}
		data, err := json.Marshal(labels)
		if err != nil {
			return err
		}
		next[key] = data
		order = append(order, key)
	}

	before := make(map[string][]byte)
	for key := range p.d.KeysPrefix(questsDir+"/", ctx.Done()) {
		before[key] = nil
	}
	for _, key := range []string{coursesKey, categoriesKey} {
		if p.d.Has(key) {
			before[key] = nil
		}
	}
	for key := range before {
		data, err := p.d.Read(key)
		if err != nil {
			return fmt.Errorf("store: read %s: %w", key, err)
		}
		before[key] = data
	}

	var written []string
	rollback := func(cause error) error {
		for _, key := range written {
			var err error
			if old, ok := before[key]; ok {
				err = p.d.Write(key, old)
			} else {
				err = p.d.Erase(key)
			}
			if err != nil {
				p.log.Error("import rollback", "key", key, "error", err)
			}
		}
		return cause
	}

	for _, key := range order {
		if err := p.d.Write(key, next[key]); err != nil {
			return rollback(fmt.Errorf("store: write %s: %w", key, err))
		}
		written = append(written, key)
	}
	for key := range before {
		if _, keep := next[key]; keep {
			continue
		}
		if err := p.d.Erase(key); err != nil {
			p.log.Warn("import left a stale quest", "key", key, "error", err)
		}
	}
	return nil
}

func (p *Local) Close() error {
	return nil
}

func (p *Local) readQuest(key string) (quest.Quest, error) {
	val, err := p.d.Read(key)
	if err != nil {
		return quest.Quest{}, err
	}
	var q quest.Quest
	if err := json.Unmarshal(val, &q); err != nil {
		return quest.Quest{}, fmt.Errorf("store: decode %s: %w", key, err)
	}
	if q.ID == "" {
		q.ID = fromID(keyToPathTransform(key).FileName)
	}
	return q, nil
}

func (p *Local) writeQuest(q quest.Quest) error {
	data, err := json.Marshal(q)
	if err != nil {
		return err
	}
	return p.d.Write(toKey(q.ID), data)
}

func (p *Local) readLabels(key string) ([]string, error) {
	if !p.d.Has(key) {
		return []string{}, nil
	}
	val, err := p.d.Read(key)
	if err != nil {
		return nil, err
	}
	var labels []string
	if err := json.Unmarshal(val, &labels); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", key, err)
	}
	return labels, nil
}

func (p *Local) writeLabels(key string, labels []string) error {
	if labels == nil {
		labels = []string{}
	}
	data, err := json.Marshal(labels)
	if err != nil {
		return err
	}
	return p.d.Write(key, data)
}

// Keys look like "quests/<base64 id>" or "meta/courses".
func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "/")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return strings.Join(append(append([]string{}, pathKey.Path...), pathKey.FileName), "/")
}

func toKey(id string) string {
	return questsDir + "/" + base64.RawURLEncoding.EncodeToString([]byte(id))
}

func fromID(s string) string {
	id, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return s
	}
	return string(id)
}
