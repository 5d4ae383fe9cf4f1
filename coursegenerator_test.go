package learnpath

import (
	"context"
	"errors"
	"os"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"
)

// scriptedCompleter answers prompts with the first reply whose key appears in the prompt
type scriptedCompleter struct {
	mu      sync.Mutex
	replies []scriptedReply
	prompts []string
	configs []GenerationConfig
}

type scriptedReply struct {
	match string
	text  string
	err   error
}

func (sc *scriptedCompleter) Complete(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.prompts = append(sc.prompts, prompt)
	sc.configs = append(sc.configs, cfg)
	for _, reply := range sc.replies {
		if strings.Contains(prompt, reply.match) {
			return reply.text, reply.err
		}
	}
	return "", nil
}

func TestGenerateQuizStoresAndScores(t *testing.T) {
	completer := &scriptedCompleter{replies: []scriptedReply{{
		match: "Generate a quiz",
		text: "```json\n" + `{"topic": "Letters", "questions": [
			{"question": "First?", "choices": ["A", "B", "C"], "answer": "A"},
			{"question": "Second?", "choices": ["A", "B", "C"], "answer": "B"},
			{"question": "Third?", "choices": ["A", "B", "C"], "answer": "C"}
		]}` + "\n```",
	}}}
	store := NewMemoryQuizStore()
	gen := NewGenerator(completer, store)
	ctx := context.Background()

	quiz, err := gen.GenerateQuiz(ctx, "session-1", "Letters", 3, 3)
	if err != nil {
		t.Fatalf("GenerateQuiz failed: %v", err)
	}
	if len(quiz.Questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(quiz.Questions))
	}
	if store.Size() != 1 {
		t.Fatalf("expected quiz to be stored")
	}
	if completer.configs[0] != ProseConfig {
		t.Errorf("quiz used config %+v", completer.configs[0])
	}

	tests := []struct {
		name    string
		answers []string
		want    int
	}{
		{"one wrong", []string{"A", "X", "C"}, 2},
		{"all right", []string{"A", "B", "C"}, 3},
		{"short submission", []string{"A"}, 1},
		{"short and wrong", []string{"B"}, 0},
		{"none", nil, 0},
		{"extra answers ignored", []string{"A", "B", "C", "D"}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := gen.ScoreQuiz(ctx, "session-1", tt.answers)
			if err != nil {
				t.Fatalf("ScoreQuiz failed: %v", err)
			}
			if score.Score != tt.want {
				t.Errorf("score = %d, want %d", score.Score, tt.want)
			}
			if !reflect.DeepEqual(score.Correct, []string{"A", "B", "C"}) {
				t.Errorf("correct = %v", score.Correct)
			}
		})
	}
}

func TestScoreQuizWithoutQuiz(t *testing.T) {
	gen := NewGenerator(&scriptedCompleter{}, NewMemoryQuizStore())

	score, err := gen.ScoreQuiz(context.Background(), "nobody", []string{"A"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if score != nil {
		t.Fatalf("expected no score, got %+v", score)
	}
}

func TestGenerateQuizLastWriteWins(t *testing.T) {
	completer := &scriptedCompleter{replies: []scriptedReply{
		{match: "Topic: First", text: `{"topic": "First", "questions": [{"question": "q", "choices": ["x", "y"], "answer": "x"}]}`},
		{match: "Topic: Second", text: `{"topic": "Second", "questions": [{"question": "q", "choices": ["x", "y"], "answer": "y"}]}`},
	}}
	store := NewMemoryQuizStore()
	gen := NewGenerator(completer, store)
	ctx := context.Background()

	if _, err := gen.GenerateQuiz(ctx, "s", "First", 1, 2); err != nil {
		t.Fatal(err)
	}
	if _, err := gen.GenerateQuiz(ctx, "s", "Second", 1, 2); err != nil {
		t.Fatal(err)
	}

	quiz, err := store.Get(ctx, "s")
	if err != nil {
		t.Fatal(err)
	}
	if quiz.Topic != "Second" {
		t.Errorf("stored topic = %q, want Second", quiz.Topic)
	}
}

func TestGenerateQuizMalformed(t *testing.T) {
	completer := &scriptedCompleter{replies: []scriptedReply{{match: "Generate a quiz", text: "I cannot do that"}}}
	store := NewMemoryQuizStore()
	gen := NewGenerator(completer, store)

	_, err := gen.GenerateQuiz(context.Background(), "s", "Go", 2, 4)
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
	if store.Size() != 0 {
		t.Error("malformed quiz must not be stored")
	}
	if len(completer.prompts) != 1 {
		t.Errorf("expected exactly one attempt, got %d", len(completer.prompts))
	}
}

func TestGenerateQuizInvalidRequest(t *testing.T) {
	completer := &scriptedCompleter{}
	gen := NewGenerator(completer, NewMemoryQuizStore())

	_, err := gen.GenerateQuiz(context.Background(), "s", "", 2, 4)
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if len(completer.prompts) != 0 {
		t.Error("invalid request must not reach the model")
	}
}

func TestGenerateCourse(t *testing.T) {
	completer := &scriptedCompleter{replies: []scriptedReply{
		{match: "pedagogy expert", text: "* Learn by building\n* Weekly quizzes"},
		{match: "List modules", text: "Here are the modules:\n* Arrays: storage\n• Trees: hierarchy\n"},
	}}
	gen := NewGenerator(completer, NewMemoryQuizStore())

	outline, err := gen.GenerateCourse(context.Background(), "Data Structures")
	if err != nil {
		t.Fatalf("GenerateCourse failed: %v", err)
	}

	if !strings.Contains(outline.ApproachHTML, "<li>Learn by building</li>") {
		t.Errorf("approach html = %q", outline.ApproachHTML)
	}
	if !reflect.DeepEqual(outline.Modules, []string{"Arrays: storage", "Trees: hierarchy"}) {
		t.Errorf("modules = %q", outline.Modules)
	}
	if len(completer.prompts) != 2 || !strings.Contains(completer.prompts[0], "pedagogy") {
		t.Errorf("expected approach then module prompts, got %q", completer.prompts)
	}
}

func TestGenerateModuleConcatenation(t *testing.T) {
	completer := &scriptedCompleter{replies: []scriptedReply{
		{match: "Comprehensively explain", text: "Main part"},
		{match: "code snippets", text: "Code part"},
		{match: "ASCII art", text: "ASCII part"},
	}}
	gen := NewGenerator(completer, NewMemoryQuizStore())

	doc, err := gen.GenerateModule(context.Background(), "Go", "Channels")
	if err != nil {
		t.Fatalf("GenerateModule failed: %v", err)
	}

	want := MarkdownToHTML("Main part") + "\n" + MarkdownToHTML("Code part") + "\n" + MarkdownToHTML("ASCII part")
	if doc != want {
		t.Errorf("doc = %q, want %q", doc, want)
	}
}

func TestGenerateModuleEmptyParts(t *testing.T) {
	completer := &scriptedCompleter{replies: []scriptedReply{
		{match: "code snippets", text: "Code part"},
	}}
	gen := NewGenerator(completer, NewMemoryQuizStore())

	doc, err := gen.GenerateModule(context.Background(), "Go", "Channels")
	if err != nil {
		t.Fatalf("GenerateModule failed: %v", err)
	}
	if want := "\n" + MarkdownToHTML("Code part") + "\n"; doc != want {
		t.Errorf("doc = %q, want %q", doc, want)
	}
}

func TestGenerateModuleUpstreamFailure(t *testing.T) {
	upstream := errors.New("connection reset")
	completer := &scriptedCompleter{replies: []scriptedReply{
		{match: "code snippets", err: errors.Join(ErrUpstream, upstream)},
	}}
	gen := NewGenerator(completer, NewMemoryQuizStore())

	_, err := gen.GenerateModule(context.Background(), "Go", "Channels")
	if !errors.Is(err, ErrUpstream) || !errors.Is(err, upstream) {
		t.Fatalf("expected upstream failure, got %v", err)
	}
	if len(completer.prompts) != 2 {
		t.Errorf("expected no further round trips after failure, got %d", len(completer.prompts))
	}
}

func TestGenerateRecommendations(t *testing.T) {
	completer := &scriptedCompleter{replies: []scriptedReply{
		{match: "after Go", text: "Concurrency in Practice: Learn **patterns**"},
		{match: "after Rust", text: "NoColonHere"},
		{match: "after Python", text: "concurrency in practice: same course again"},
		{match: "after C", text: "Go: already saved"},
	}}
	gen := NewGenerator(completer, NewMemoryQuizStore())

	recs, err := gen.GenerateRecommendations(context.Background(), []string{"Go", "Rust", "Python", "C"})
	if err != nil {
		t.Fatalf("GenerateRecommendations failed: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 recommendation, got %+v", recs)
	}
	if recs[0].Name != "Concurrency in Practice" || !strings.Contains(recs[0].DescriptionHTML, "<strong>patterns</strong>") {
		t.Errorf("unexpected recommendation %+v", recs[0])
	}
	for _, cfg := range completer.configs {
		if cfg != RecommendationConfig {
			t.Errorf("recommendation used config %+v", cfg)
		}
	}
}

func TestGenerateRecommendationsNoCourses(t *testing.T) {
	completer := &scriptedCompleter{}
	gen := NewGenerator(completer, NewMemoryQuizStore())

	recs, err := gen.GenerateRecommendations(context.Background(), nil)
	if err != nil || len(recs) != 0 {
		t.Fatalf("expected no recommendations, got %v, %v", recs, err)
	}
	if len(completer.prompts) != 0 {
		t.Error("no saved courses must not reach the model")
	}
}

type blockingCompleter struct{}

func (blockingCompleter) Complete(ctx context.Context, _ string, _ GenerationConfig) (string, error) {
	<-ctx.Done()
	return "", errors.Join(ErrUpstream, ctx.Err())
}

func TestGeneratorTimeout(t *testing.T) {
	gen := NewGenerator(blockingCompleter{}, NewMemoryQuizStore())
	gen.SetTimeout(20 * time.Millisecond)

	_, err := gen.GenerateCourse(context.Background(), "Go")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestGeneratorWritesTranscript(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLLMLogger(dir)
	if err != nil {
		t.Fatal(err)
	}

	completer := &scriptedCompleter{replies: []scriptedReply{{match: "pedagogy", text: "* step"}}}
	gen := NewGenerator(completer, NewMemoryQuizStore())
	gen.SetLogger(logger)

	if _, err := gen.GenerateCourse(context.Background(), "Transcripts 101"); err != nil {
		t.Fatal(err)
	}
	if err := logger.Close(); err != nil {
		t.Fatal(err)
	}

	data := readFile(t, dir+"/llm.log")
	for _, want := range []string{"Transcripts 101", "llm request", "llm response", "request_id", "pedagogy expert"} {
		if !strings.Contains(data, want) {
			t.Errorf("transcript missing %q", want)
		}
	}
}

func TestGenerateRecommendationsTranscriptCountsDrops(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLLMLogger(dir)
	if err != nil {
		t.Fatal(err)
	}

	completer := &scriptedCompleter{replies: []scriptedReply{
		{match: "after Go", text: "Testing: table driven tests"},
		{match: "after Rust", text: "NoColonHere"},
		{match: "after Python", text: "testing: again"},
		{match: "after C", text: "Go: already saved"},
	}}
	gen := NewGenerator(completer, NewMemoryQuizStore())
	gen.SetLogger(logger)

	recs, err := gen.GenerateRecommendations(context.Background(), []string{"Go", "Rust", "Python", "C"})
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Name != "Testing" {
		t.Fatalf("recommendations = %+v", recs)
	}
	if err := logger.Close(); err != nil {
		t.Fatal(err)
	}

	data := readFile(t, dir+"/llm.log")
	if !strings.Contains(data, `"msg":"entries dropped"`) {
		t.Error("transcript missing the malformed entry drop")
	}
	if !strings.Contains(data, `"msg":"duplicate entries dropped"`) || !strings.Contains(data, `"dropped":2`) {
		t.Errorf("transcript missing the duplicate drop count:\n%s", data)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}
