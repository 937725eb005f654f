package recommend

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/goleak"

	"github.com/yungbote/articlerec/internal/config"
	"github.com/yungbote/articlerec/internal/domain"
	"github.com/yungbote/articlerec/internal/observability"
	"github.com/yungbote/articlerec/internal/platform/logger"
	"github.com/yungbote/articlerec/internal/store"
	"github.com/yungbote/articlerec/internal/store/storetest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testOptions() Options {
	cfg := config.Default()
	return Options{Scoring: cfg.Scoring, Content: cfg.Content, Defaults: cfg.Defaults}
}

func newTestService(st store.Store, opts Options) *Service {
	mem, ok := st.(interface {
		WorkEmbeddings(context.Context) ([]domain.Work, error)
	})
	if !ok {
		panic("test store must provide embeddings")
	}
	return NewService(st, mem, logger.NewNop(), opts)
}

func approaches(recs []domain.RankedRecord) map[string]string {
	out := make(map[string]string, len(recs))
	for _, r := range recs {
		out[r.ItemID] = r.Approach
	}
	return out
}

func TestSearchNeuralNetworks(t *testing.T) {
	svc := newTestService(storetest.Memory(), testOptions())
	got, err := svc.Search(context.Background(), "Neural Networks", "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := map[string]string{
		storetest.WorkDeepNets:  "Content, Ontology",
		storetest.WorkUntitled:  "Content",
		storetest.WorkTheory:    "Ontology",
		storetest.WorkBadVector: "Ontology",
		storetest.WorkNoVector:  "Ontology",
	}
	if diff := cmp.Diff(want, approaches(got)); diff != "" {
		t.Fatalf("approaches (-want +got):\n%s", diff)
	}
	for _, r := range got {
		if r.Score != nil {
			t.Fatalf("search must not score records: %+v", r)
		}
	}
}

func TestSearchBlankTopicUsesDefault(t *testing.T) {
	svc := newTestService(storetest.Memory(), testOptions())
	blank, err := svc.Search(context.Background(), "  ", "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	explicit, err := svc.Search(context.Background(), "Neural Networks", "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if diff := cmp.Diff(explicit, blank); diff != "" {
		t.Fatalf("default topic (-explicit +blank):\n%s", diff)
	}
}

func TestSearchUnknownTopicIsEmpty(t *testing.T) {
	svc := newTestService(storetest.Memory(), testOptions())
	got, err := svc.Search(context.Background(), "Quantum Gravity", "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil got=%#v", got)
	}
}

func TestRecommendMergesAllSignals(t *testing.T) {
	svc := newTestService(storetest.Memory(), testOptions())
	got, err := svc.Recommend(context.Background(), RecommendRequest{UserID: storetest.UserNN})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	want := map[string]string{
		storetest.WorkDeepNets:  "Collaborative, Content, Ontology, User",
		storetest.WorkProtein:   "Collaborative",
		storetest.WorkUntitled:  "Content",
		storetest.WorkTheory:    "Ontology",
		storetest.WorkBadVector: "Ontology",
		storetest.WorkNoVector:  "Ontology",
	}
	if diff := cmp.Diff(want, approaches(got)); diff != "" {
		t.Fatalf("approaches (-want +got):\n%s", diff)
	}
}

func TestRecommendColdStartUser(t *testing.T) {
	svc := newTestService(storetest.Memory(), testOptions())
	got, err := svc.Recommend(context.Background(), RecommendRequest{UserID: storetest.UserCold, Topic: "Biology"})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	want := map[string]string{storetest.WorkProtein: "Ontology"}
	if diff := cmp.Diff(want, approaches(got)); diff != "" {
		t.Fatalf("approaches (-want +got):\n%s", diff)
	}
}

func TestRecommendRequiresUser(t *testing.T) {
	svc := newTestService(storetest.Memory(), testOptions())
	for _, req := range []RecommendRequest{{}, {UserID: " "}, {UserID: "User_0", TopN: -1}} {
		if _, err := svc.Recommend(context.Background(), req); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("req %+v: want ErrInvalidInput got=%v", req, err)
		}
	}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestRecommendWeighted(t *testing.T) {
	svc := newTestService(storetest.Memory(), testOptions())
	got, err := svc.Recommend(context.Background(), RecommendRequest{UserID: storetest.UserNN, Weighted: true})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	ids := make([]string, 0, len(got))
	for _, r := range got {
		ids = append(ids, r.ItemID)
		if r.Score == nil {
			t.Fatalf("weighted record without score: %+v", r)
		}
	}
	want := []string{storetest.WorkDeepNets, storetest.WorkUntitled, storetest.WorkProtein}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}

	deepSim := 1 / math.Sqrt(1.04)
	if want := deepSim * 1.1 * 0.6; !near(*got[0].Score, want) {
		t.Fatalf("deep nets score: want=%v got=%v", want, *got[0].Score)
	}
	if got[0].Approach != "Collaborative, Content, Ontology" {
		t.Fatalf("deep nets approach: got=%q", got[0].Approach)
	}
	if want := 1 / math.Sqrt2 * 1.1 * 0.6; !near(*got[1].Score, want) {
		t.Fatalf("untitled score: want=%v got=%v", want, *got[1].Score)
	}
	if want := 0.8 * 0.4; !near(*got[2].Score, want) {
		t.Fatalf("protein score: want=%v got=%v", want, *got[2].Score)
	}
}

func TestRecommendWeightedTopN(t *testing.T) {
	svc := newTestService(storetest.Memory(), testOptions())
	got, err := svc.Recommend(context.Background(), RecommendRequest{UserID: storetest.UserNN, Weighted: true, TopN: 1})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(got) != 1 || got[0].ItemID != storetest.WorkDeepNets {
		t.Fatalf("top 1: got=%+v", got)
	}
}

func TestRecommendWeightedColdUserFallsBackToTopic(t *testing.T) {
	svc := newTestService(storetest.Memory(), testOptions())
	got, err := svc.Recommend(context.Background(), RecommendRequest{UserID: storetest.UserCold, Weighted: true})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(got) != 1 || got[0].ItemID != storetest.WorkDeepNets {
		t.Fatalf("cold weighted: got=%+v", got)
	}
	if want := 1.1 * 0.4; !near(*got[0].Score, want) || got[0].Approach != domain.SignalOntology {
		t.Fatalf("cold weighted: score=%v approach=%q", *got[0].Score, got[0].Approach)
	}
}

func TestCitationBoostReordersContent(t *testing.T) {
	opts := testOptions()
	opts.Scoring.CitationBoost = 1
	svc := newTestService(storetest.Memory(), opts)
	got, err := svc.Recommend(context.Background(), RecommendRequest{UserID: storetest.UserNN, Weighted: true})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	want := 1 / math.Sqrt(1.04) * 1.1 * (1 + math.Log1p(120)) * 0.6
	if got[0].ItemID != storetest.WorkDeepNets || !near(*got[0].Score, want) {
		t.Fatalf("boosted: got=%s %v want=%v", got[0].ItemID, *got[0].Score, want)
	}
}

type failingStore struct {
	*store.Memory
}

func (f failingStore) PeersSharingInterest(context.Context, string) ([]string, error) {
	return nil, store.Unavailable("peers_sharing_interest", errors.New("connection refused"))
}

func TestStoreFailureFailsRequest(t *testing.T) {
	svc := newTestService(failingStore{storetest.Memory()}, testOptions())
	for _, weighted := range []bool{false, true} {
		_, err := svc.Recommend(context.Background(), RecommendRequest{UserID: storetest.UserNN, Weighted: weighted})
		if !errors.Is(err, store.ErrUnavailable) {
			t.Fatalf("weighted=%v: want ErrUnavailable got=%v", weighted, err)
		}
		var ue *store.UnavailableError
		if !errors.As(err, &ue) || ue.Op != "peers_sharing_interest" {
			t.Fatalf("weighted=%v: want UnavailableError op got=%v", weighted, err)
		}
	}
}

func flatUserStore() *store.Memory {
	fx := storetest.Fixture()
	fx.Concepts = append(fx.Concepts,
		store.FixtureConcept{URI: "c:pos", Label: "Positive", Embedding: storetest.Axis(9, 1)},
		store.FixtureConcept{URI: "c:neg", Label: "Negative", Embedding: storetest.Axis(9, -1)},
	)
	fx.Users = append(fx.Users, store.FixtureUser{ID: "User_flat", Interests: []string{"c:pos", "c:neg"}})
	return store.NewMemory(fx)
}

func TestDegenerateProfile(t *testing.T) {
	for _, lenient := range []bool{false, true} {
		opts := testOptions()
		opts.Content.DegradeOnVectorError = lenient
		svc := newTestService(flatUserStore(), opts)
		for _, weighted := range []bool{false, true} {
			got, err := svc.Recommend(context.Background(), RecommendRequest{UserID: "User_flat", Weighted: weighted})
			if err != nil {
				t.Fatalf("lenient=%v weighted=%v: %v", lenient, weighted, err)
			}
			for _, r := range got {
				if strings.Contains(r.Approach, domain.SignalContent) {
					t.Fatalf("lenient=%v weighted=%v: unexpected content record %+v", lenient, weighted, r)
				}
			}
			// The unweighted ontology signal runs on the default topic and still answers.
			if !weighted && approaches(got)[storetest.WorkDeepNets] != domain.SignalOntology {
				t.Fatalf("lenient=%v: want ontology record for %s got=%v", lenient, storetest.WorkDeepNets, approaches(got))
			}
		}
	}
}

func TestSignalsAreTracedAndMeasured(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	opts := testOptions()
	opts.Tracer = tp.Tracer("test")
	opts.Metrics = observability.NewMetrics()
	svc := newTestService(storetest.Memory(), opts)
	if _, err := svc.Search(context.Background(), "Neural Networks", ""); err != nil {
		t.Fatalf("Search: %v", err)
	}

	names := map[string]bool{}
	for _, s := range rec.Ended() {
		names[s.Name()] = true
	}
	for _, want := range []string{"recommend.Search", "signal.ontology", "signal.content"} {
		if !names[want] {
			t.Fatalf("missing span %q in %v", want, names)
		}
	}

	families, err := opts.Metrics.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := map[string]bool{}
	for _, f := range families {
		found[f.GetName()] = true
	}
	for _, want := range []string{"articlerec_signal_duration_seconds", "articlerec_ranked_results", "articlerec_embedding_pool_size"} {
		if !found[want] {
			t.Fatalf("missing metric %q", want)
		}
	}
}
