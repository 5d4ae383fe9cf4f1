package learnpath

import (
	"fmt"
	"strings"
)

// QuizIssue describes a structural problem found in a generated question
type QuizIssue struct {
	QuestionNum int    `json:"question_num"` // 1-based
	Reason      string `json:"reason"`
}

func (qi QuizIssue) String() string {
	return fmt.Sprintf("question %d: %s", qi.QuestionNum, qi.Reason)
}

// CheckQuiz validates the questions of a generated quiz. Answers that name a
// choice loosely (different case or spacing, or by letter such as "B" or "B)")
// are rewritten to the exact choice text. Questions are never removed.
func CheckQuiz(quiz *Quiz, choiceCount int) []QuizIssue {
	var issues []QuizIssue

	for i := range quiz.Questions {
		question := &quiz.Questions[i]
		num := i + 1

		if strings.TrimSpace(question.Question) == "" {
			issues = append(issues, QuizIssue{QuestionNum: num, Reason: "empty question text"})
		}

		if choiceCount > 0 && len(question.Choices) != choiceCount {
			issues = append(issues, QuizIssue{
				QuestionNum: num,
				Reason:      fmt.Sprintf("expected %d choices, got %d", choiceCount, len(question.Choices)),
			})
		}

		if idx := matchChoice(question.Answer, question.Choices); idx >= 0 {
			question.Answer = question.Choices[idx]
		} else {
			issues = append(issues, QuizIssue{
				QuestionNum: num,
				Reason:      fmt.Sprintf("answer %q is not one of the choices", question.Answer),
			})
		}
	}

	return issues
}

// matchChoice returns the index of the choice the answer refers to, or -1
func matchChoice(answer string, choices []string) int {
	for i, choice := range choices {
		if choice == answer {
			return i
		}
	}

	normalized := strings.ToLower(strings.TrimSpace(answer))
	if normalized == "" {
		return -1
	}
	for i, choice := range choices {
		if strings.ToLower(strings.TrimSpace(choice)) == normalized {
			return i
		}
	}

	// Letter reference: "b", "b)", "b."
	letter := strings.TrimRight(normalized, ").:")
	if len(letter) == 1 && letter[0] >= 'a' && letter[0] <= 'z' {
		idx := int(letter[0] - 'a')
		if idx < len(choices) {
			return idx
		}
	}

	return -1
}
