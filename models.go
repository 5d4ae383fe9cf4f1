package learnpath

// Kind identifies which prompt template a round trip uses
type Kind string

const (
	KindApproach       Kind = "approach"
	KindModuleList     Kind = "modules"
	KindModuleContent  Kind = "module_content"
	KindCodeSnippets   Kind = "code_snippets"
	KindAsciiDiagram   Kind = "ascii_diagram"
	KindQuizSpec       Kind = "quiz"
	KindRecommendation Kind = "recommendation"
)

// Shape is the structural form a completion is normalized into
type Shape int

const (
	ShapeJSON Shape = iota
	ShapeBulletList
	ShapeMarkdown
	ShapeRecommendation
)

func (s Shape) String() string {
	switch s {
	case ShapeJSON:
		return "json"
	case ShapeBulletList:
		return "bullet_list"
	case ShapeMarkdown:
		return "markdown"
	case ShapeRecommendation:
		return "recommendation"
	default:
		return "unknown"
	}
}

// Shape returns the shape the model is asked to answer in for this kind
func (k Kind) Shape() Shape {
	switch k {
	case KindQuizSpec:
		return ShapeJSON
	case KindModuleList:
		return ShapeBulletList
	case KindRecommendation:
		return ShapeRecommendation
	default:
		return ShapeMarkdown
	}
}

// Config returns the fixed generation parameters used for this kind
func (k Kind) Config() GenerationConfig {
	if k == KindRecommendation {
		return RecommendationConfig
	}
	return ProseConfig
}

// GenerationRequest describes one prompt to build.
// Subject is the quiz topic, the course name or the module name depending on Kind;
// Course scopes the module kinds to their course.
type GenerationRequest struct {
	Kind          Kind   `json:"kind"`
	Subject       string `json:"subject"`
	Course        string `json:"course,omitempty"`
	QuestionCount int    `json:"question_count,omitempty"`
	ChoiceCount   int    `json:"choice_count,omitempty"`
}

// QuizQuestion is a single multiple choice question as returned by the model
type QuizQuestion struct {
	Question string   `json:"question"`
	Choices  []string `json:"choices"`
	Answer   string   `json:"answer"`
}

// Quiz is the structured quiz the model is asked to emit
type Quiz struct {
	Topic     string         `json:"topic"`
	Questions []QuizQuestion `json:"questions"`
}

// Answers returns the correct answers in question order
func (q *Quiz) Answers() []string {
	answers := make([]string, len(q.Questions))
	for i, question := range q.Questions {
		answers[i] = question.Answer
	}
	return answers
}

// QuizScore is the outcome of comparing submitted answers against a stored quiz
type QuizScore struct {
	Score   int      `json:"score"`
	Correct []string `json:"correct"`
	Given   []string `json:"given"`
}

// Recommendation is a follow-up course suggested for a saved course
type Recommendation struct {
	Name            string `json:"name"`
	DescriptionHTML string `json:"description_html"`
}

// CourseOutline bundles the approach and module list generated for a course
type CourseOutline struct {
	CourseName   string   `json:"course_name"`
	ApproachHTML string   `json:"approach_html"`
	Modules      []string `json:"modules"`
}

// Result is a normalized completion. Only the field matching Shape is set.
type Result struct {
	Shape           Shape
	Quiz            *Quiz
	Items           []string
	HTML            string
	Recommendations []Recommendation
	// Dropped counts list entries discarded because they did not match the shape
	Dropped int
}
