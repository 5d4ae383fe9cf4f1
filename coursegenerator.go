package learnpath

import (
	"context"
	"fmt"
	"time"
)

// Generator orchestrates prompt building, completion and normalization for
// every user facing generation flow
type Generator struct {
	completer Completer
	quizzes   QuizStore
	logger    *LLMLogger
	timeout   time.Duration
}

// NewGenerator creates a generator on a shared completer and quiz store
func NewGenerator(completer Completer, quizzes QuizStore) *Generator {
	return &Generator{
		completer: completer,
		quizzes:   quizzes,
	}
}

// SetLogger attaches an LLM transcript logger
func (g *Generator) SetLogger(logger *LLMLogger) {
	g.logger = logger
}

// SetTimeout bounds each round trip. Zero waits until the model answers.
func (g *Generator) SetTimeout(timeout time.Duration) {
	g.timeout = timeout
}

func (g *Generator) begin(flow, subject string) *LLMLogger {
	if g.logger == nil {
		return nil
	}
	return g.logger.Begin(flow, subject)
}

// roundTrip runs one prompt -> completion -> normalization sequence
func (g *Generator) roundTrip(ctx context.Context, req GenerationRequest, tl *LLMLogger) (*Result, error) {
	prompt, err := BuildPrompt(req)
	if err != nil {
		return nil, err
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	if tl != nil {
		tl.LogLLMRequest(req.Kind, prompt)
	}

	raw, err := g.completer.Complete(ctx, prompt, req.Kind.Config())
	if err != nil {
		if tl != nil {
			tl.LogLLMError(req.Kind, err)
		}
		return nil, fmt.Errorf("failed to generate %s for %q: %w", req.Kind, req.Subject, err)
	}

	if tl != nil {
		tl.LogLLMResponse(req.Kind, raw)
	}

	result, err := Normalize(raw, req.Kind.Shape())
	if err != nil {
		if tl != nil {
			tl.LogLLMError(req.Kind, err)
		}
		return nil, fmt.Errorf("failed to normalize %s for %q: %w", req.Kind, req.Subject, err)
	}

	if result.Dropped > 0 {
		VerboseLog("%s for %q: dropped %d entries", req.Kind, req.Subject, result.Dropped)
		if tl != nil {
			tl.LogDropped(req.Kind, result.Dropped)
		}
	}

	return result, nil
}

// GenerateQuiz generates a quiz and stores it as the active quiz for sessionKey
func (g *Generator) GenerateQuiz(ctx context.Context, sessionKey, topic string, numQuestions, numChoices int) (*Quiz, error) {
	logger.Infof("Generating quiz: topic=%q questions=%d choices=%d", topic, numQuestions, numChoices)

	req := GenerationRequest{
		Kind:          KindQuizSpec,
		Subject:       topic,
		QuestionCount: numQuestions,
		ChoiceCount:   numChoices,
	}
	result, err := g.roundTrip(ctx, req, g.begin("quiz", topic))
	if err != nil {
		return nil, err
	}

	quiz := result.Quiz
	for _, issue := range CheckQuiz(quiz, numChoices) {
		logger.Infof("Quiz %q: %s", topic, issue)
	}

	if err := g.quizzes.Put(ctx, sessionKey, quiz); err != nil {
		return nil, fmt.Errorf("failed to store quiz: %w", err)
	}

	logger.Infof("Generated %d questions for topic %q", len(quiz.Questions), topic)
	return quiz, nil
}

// ScoreQuiz compares answers, by position, against the active quiz for sessionKey.
// It returns ErrNotFound when no quiz has been generated for the session.
func (g *Generator) ScoreQuiz(ctx context.Context, sessionKey string, answers []string) (*QuizScore, error) {
	quiz, err := g.quizzes.Get(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	return ScoreAnswers(quiz, answers), nil
}

// ScoreAnswers counts positions where the given answer equals the correct one.
// Only positions present in both sequences are compared.
func ScoreAnswers(quiz *Quiz, answers []string) *QuizScore {
	correct := quiz.Answers()

	n := min(len(correct), len(answers))
	score := 0
	for i := 0; i < n; i++ {
		if correct[i] == answers[i] {
			score++
		}
	}

	return &QuizScore{
		Score:   score,
		Correct: correct,
		Given:   answers,
	}
}

// GenerateCourse generates the teaching approach and module list for a course
func (g *Generator) GenerateCourse(ctx context.Context, courseName string) (*CourseOutline, error) {
	logger.Infof("Generating course outline: %q", courseName)
	tl := g.begin("course", courseName)

	approach, err := g.roundTrip(ctx, GenerationRequest{Kind: KindApproach, Subject: courseName}, tl)
	if err != nil {
		return nil, err
	}

	modules, err := g.roundTrip(ctx, GenerationRequest{Kind: KindModuleList, Subject: courseName}, tl)
	if err != nil {
		return nil, err
	}

	return &CourseOutline{
		CourseName:   courseName,
		ApproachHTML: approach.HTML,
		Modules:      modules.Items,
	}, nil
}

// GenerateModule generates the explanation, code snippets and ASCII diagrams for
// a module and joins them into one HTML document, in that order
func (g *Generator) GenerateModule(ctx context.Context, courseName, moduleName string) (string, error) {
	logger.Infof("Generating module %q of course %q", moduleName, courseName)
	tl := g.begin("module", courseName+"/"+moduleName)

	kinds := []Kind{KindModuleContent, KindCodeSnippets, KindAsciiDiagram}
	parts := make([]string, len(kinds))
	for i, kind := range kinds {
		result, err := g.roundTrip(ctx, GenerationRequest{Kind: kind, Subject: moduleName, Course: courseName}, tl)
		if err != nil {
			return "", err
		}
		parts[i] = result.HTML
	}

	return parts[0] + "\n" + parts[1] + "\n" + parts[2], nil
}

// GenerateRecommendations asks for one follow-up course per saved course.
// Completions without a "Name: Description" form are left out, as are
// repeated names and names of courses already saved.
func (g *Generator) GenerateRecommendations(ctx context.Context, savedCourses []string) ([]Recommendation, error) {
	if len(savedCourses) == 0 {
		return nil, nil
	}

	tl := g.begin("recommendations", fmt.Sprintf("%d saved courses", len(savedCourses)))

	var recs []Recommendation
	for _, course := range savedCourses {
		result, err := g.roundTrip(ctx, GenerationRequest{Kind: KindRecommendation, Subject: course}, tl)
		if err != nil {
			return nil, err
		}
		recs = append(recs, result.Recommendations...)
	}

	recs, dropped := DedupRecommendations(recs, savedCourses)
	if dropped > 0 {
		VerboseLog("Dropped %d duplicate recommendations", dropped)
		if tl != nil {
			tl.LogDuplicates(KindRecommendation, dropped)
		}
	}
	return recs, nil
}
