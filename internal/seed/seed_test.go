// ABOUTME: Tests for static record generation, OpenAI generation, and backend seeding.
// ABOUTME: Uses a fake creator and an httptest stand-in for the OpenAI API.

package seed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"slices"
	"sync"
	"testing"

	"github.com/sashabaranov/go-openai"

	"github.com/2389/joinlab/internal/resource"
)

type fakeCreator struct {
	mu    sync.Mutex
	paths []string
	fail  string
}

func (f *fakeCreator) Create(ctx context.Context, path string, draft resource.Record) (resource.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, path)
	if path == f.fail {
		return nil, errors.New("backend rejected")
	}
	return draft, nil
}

func schema(t *testing.T, name string) resource.Schema {
	t.Helper()
	s, ok := resource.Builtin().Get(name)
	if !ok {
		t.Fatalf("no built-in schema %q", name)
	}
	return s
}

func TestStaticRecords_RespectsBounds(t *testing.T) {
	for _, name := range []string{"student", "course", "enroll"} {
		s := schema(t, name)
		for _, rec := range StaticRecords(s, 25) {
			for _, f := range s.Fields {
				if f.Min == nil || f.Max == nil {
					continue
				}
				n, ok := rec[f.Key].(int64)
				if !ok {
					t.Fatalf("%s.%s = %#v, want int64", name, f.Key, rec[f.Key])
				}
				if float64(n) < *f.Min || float64(n) > *f.Max {
					t.Errorf("%s.%s = %d, outside [%g, %g]", name, f.Key, n, *f.Min, *f.Max)
				}
			}
		}
	}
}

func TestStaticRecords_Schedule(t *testing.T) {
	hhmm := regexp.MustCompile(`^\d{2}:\d{2}$`)
	for _, rec := range StaticRecords(schema(t, "sched"), 12) {
		day, _ := rec["day_name"].(string)
		if !slices.Contains(dayNames, day) {
			t.Errorf("day_name = %q", day)
		}
		start, _ := rec["start_time"].(string)
		end, _ := rec["end_time"].(string)
		if !hhmm.MatchString(start) || !hhmm.MatchString(end) {
			t.Errorf("times = %q-%q, want HH:MM", start, end)
		}
		if end <= start {
			t.Errorf("end %q not after start %q", end, start)
		}
	}
}

func TestStaticRecords_OnlyFormFields(t *testing.T) {
	s := schema(t, "employee")
	recs := StaticRecords(s, 3)
	if len(recs) != 3 {
		t.Fatalf("records = %d, want 3", len(recs))
	}
	for _, rec := range recs {
		if _, ok := rec[s.ID]; ok {
			t.Errorf("record carries identifier %s", s.ID)
		}
		if len(rec) != len(s.Fields) {
			t.Errorf("record keys = %d, want %d", len(rec), len(s.Fields))
		}
	}
	if recs[2]["manager_id"] != nil {
		t.Errorf("third row manager_id = %v, want nil", recs[2]["manager_id"])
	}
	if recs[0]["dept_id"] != int64(1) {
		t.Errorf("first row dept_id = %#v, want 1", recs[0]["dept_id"])
	}
}

func TestPick_SuffixesRepeats(t *testing.T) {
	values := []string{"a", "b"}
	got := []string{pick(values, 0), pick(values, 1), pick(values, 2), pick(values, 5)}
	want := []string{"a", "b", "a 2", "b 3"}
	if !slices.Equal(got, want) {
		t.Errorf("pick = %v, want %v", got, want)
	}
}

func TestSeed_CreatesInOrder(t *testing.T) {
	g := NewGenerator("", "")
	if g.UsesAI() {
		t.Fatal("UsesAI() = true without a key")
	}
	schemas := []resource.Schema{schema(t, "dept"), schema(t, "student"), schema(t, "teacher")}
	c := &fakeCreator{}

	reports, err := g.Seed(context.Background(), c, schemas, 4)
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	want := []string{"dept", "dept", "dept", "dept", "student", "student", "student", "student", "teacher", "teacher", "teacher", "teacher"}
	if !slices.Equal(c.paths, want) {
		t.Errorf("create paths = %v", c.paths)
	}
	for _, r := range reports {
		if r.Created != 4 || r.Failed != 0 {
			t.Errorf("report %+v, want 4 created", r)
		}
	}
}

func TestSeed_CountsFailures(t *testing.T) {
	g := NewGenerator("", "")
	c := &fakeCreator{fail: "room"}

	reports, err := g.Seed(context.Background(), c, []resource.Schema{schema(t, "room"), schema(t, "dept")}, 2)
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if reports[0].Failed != 2 || reports[0].Created != 0 || reports[0].LastErr == nil {
		t.Errorf("room report = %+v", reports[0])
	}
	if reports[1].Created != 2 {
		t.Errorf("dept report = %+v", reports[1])
	}
}

func TestSeed_RejectsNonPositiveCount(t *testing.T) {
	if _, err := NewGenerator("", "").Seed(context.Background(), &fakeCreator{}, nil, 0); err == nil {
		t.Error("Seed(count=0) error = nil")
	}
}

func fakeOpenAI(t *testing.T, content string, status int) *Generator {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			w.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": content}}},
		})
	}))
	t.Cleanup(srv.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	return newGeneratorWithConfig(cfg, "")
}

func TestRecords_FromOpenAI(t *testing.T) {
	g := fakeOpenAI(t, `[{"fullname":"Ada","year_num":2,"dept_id":null,"student_id":99,"extra":"x"}]`, http.StatusOK)
	if !g.UsesAI() || g.model != DefaultModel {
		t.Fatalf("generator useAI=%v model=%q", g.UsesAI(), g.model)
	}

	recs := g.Records(context.Background(), schema(t, "student"), 1)
	if len(recs) != 1 {
		t.Fatalf("records = %d, want 1", len(recs))
	}
	rec := recs[0]
	if rec["fullname"] != "Ada" || rec["year_num"] != int64(2) {
		t.Errorf("record = %#v", rec)
	}
	if v, ok := rec["dept_id"]; !ok || v != nil {
		t.Errorf("dept_id = %#v present=%v, want explicit nil", v, ok)
	}
	for _, key := range []string{"student_id", "extra"} {
		if _, ok := rec[key]; ok {
			t.Errorf("record kept %q", key)
		}
	}
}

func TestRecords_FallsBackToStatic(t *testing.T) {
	tests := []struct {
		name    string
		content string
		status  int
	}{
		{"api error", "", http.StatusTooManyRequests},
		{"invalid json", "here are your rows", http.StatusOK},
		{"empty array", "[]", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := fakeOpenAI(t, tt.content, tt.status)
			recs := g.Records(context.Background(), schema(t, "dept"), 3)
			if len(recs) != 3 || recs[0]["name"] != deptNames[0] {
				t.Errorf("records = %v, want static fallback", recs)
			}
		})
	}
}
