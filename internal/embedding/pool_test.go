package embedding

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/articlerec/internal/domain"
	"github.com/yungbote/articlerec/internal/platform/logger"
	"github.com/yungbote/articlerec/internal/store/storetest"
	"github.com/yungbote/articlerec/internal/vecmath"
)

func TestBuildPoolExcludesInvalidVectors(t *testing.T) {
	nan := storetest.Axis(0, 1)
	nan[4] = float32(math.NaN())
	works := []domain.Work{
		{ID: "ok", Embedding: storetest.Axis(0, 3, 1, 4)},
		{ID: "short", Embedding: []float32{1, 2, 3}},
		{ID: "absent"},
		{ID: "zero", Embedding: make([]float32, domain.EmbeddingDim)},
		{ID: "nan", Embedding: nan},
		{ID: "ok", Embedding: storetest.Axis(2, 1)},
	}
	p := BuildPool(works, domain.EmbeddingDim)
	if p.Len() != 1 {
		t.Fatalf("entries: want=1 got=%d", p.Len())
	}
	e := p.Entries[0]
	if e.Work.ID != "ok" {
		t.Fatalf("entry id: got=%q", e.Work.ID)
	}
	if math.Abs(vecmath.Norm(e.Vector)-1) > 1e-9 {
		t.Fatalf("entry not normalized: norm=%v", vecmath.Norm(e.Vector))
	}
	if e.Work.Embedding != nil {
		t.Fatalf("raw embedding should be dropped from the pool entry")
	}
	if len(p.Invalid) != 4 {
		t.Fatalf("invalid: want=4 got=%d", len(p.Invalid))
	}
	reasons := map[string]string{}
	for _, inv := range p.Invalid {
		reasons[inv.ItemID] = inv.Reason
	}
	if reasons["zero"] != "zero norm" || reasons["absent"] != "absent" {
		t.Fatalf("reasons: got=%v", reasons)
	}
}

type fakeSource struct {
	works []domain.Work
	err   error
	calls int
}

func (f *fakeSource) WorkEmbeddings(context.Context) ([]domain.Work, error) {
	f.calls++
	return f.works, f.err
}

func TestLoadPoolWrapsSourceErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := LoadPool(context.Background(), &fakeSource{err: boom}, domain.EmbeddingDim)
	if !errors.Is(err, boom) {
		t.Fatalf("want wrapped boom got=%v", err)
	}
}

type fakeKV struct {
	data    map[string]string
	getErr  error
	setTTLs []time.Duration
}

func (f *fakeKV) Get(_ context.Context, key string) *goredis.StringCmd {
	if f.getErr != nil {
		return goredis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(v, nil)
}

func (f *fakeKV) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *goredis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.setTTLs = append(f.setTTLs, ttl)
	return goredis.NewStatusResult("OK", nil)
}

func TestCachedSourceFillsThenServesFromCache(t *testing.T) {
	title := "Deep Nets"
	src := &fakeSource{works: []domain.Work{{ID: "w1", Title: &title, Embedding: storetest.Axis(1, 1)}}}
	kv := &fakeKV{data: map[string]string{}}
	cs := NewCachedSource(src, kv, "pool", time.Minute, logger.NewNop())

	for i := 0; i < 3; i++ {
		works, err := cs.WorkEmbeddings(context.Background())
		if err != nil {
			t.Fatalf("WorkEmbeddings: %v", err)
		}
		if len(works) != 1 || works[0].ID != "w1" || works[0].Title == nil || *works[0].Title != title {
			t.Fatalf("round %d: got=%+v", i, works)
		}
		if len(works[0].Embedding) != domain.EmbeddingDim {
			t.Fatalf("embedding length: got=%d", len(works[0].Embedding))
		}
	}
	if src.calls != 1 {
		t.Fatalf("source calls: want=1 got=%d", src.calls)
	}
	if len(kv.setTTLs) != 1 || kv.setTTLs[0] != time.Minute {
		t.Fatalf("ttl: got=%v", kv.setTTLs)
	}
}

func TestCachedSourceFallsThroughOnRedisError(t *testing.T) {
	src := &fakeSource{works: []domain.Work{{ID: "w1"}}}
	kv := &fakeKV{data: map[string]string{}, getErr: errors.New("dial tcp: refused")}
	cs := NewCachedSource(src, kv, "pool", time.Minute, logger.NewNop())
	works, err := cs.WorkEmbeddings(context.Background())
	if err != nil {
		t.Fatalf("WorkEmbeddings: %v", err)
	}
	if len(works) != 1 || src.calls != 1 {
		t.Fatalf("fallthrough: works=%d calls=%d", len(works), src.calls)
	}
}

func TestCachedSourceSourceErrorSurfaces(t *testing.T) {
	boom := errors.New("neo4j down")
	cs := NewCachedSource(&fakeSource{err: boom}, &fakeKV{data: map[string]string{}}, "pool", 0, nil)
	if _, err := cs.WorkEmbeddings(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("want boom got=%v", err)
	}
}
