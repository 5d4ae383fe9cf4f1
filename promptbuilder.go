package learnpath

import (
	"fmt"
	"strings"
)

// BuildPrompt renders the instruction text sent to the model for a request
func BuildPrompt(req GenerationRequest) (string, error) {
	if strings.TrimSpace(req.Subject) == "" {
		return "", fmt.Errorf("%w: subject is required", ErrInvalidRequest)
	}

	switch req.Kind {
	case KindQuizSpec:
		return buildQuizPrompt(req)
	case KindApproach:
		return buildApproachPrompt(req), nil
	case KindModuleList:
		return buildModuleListPrompt(req), nil
	case KindModuleContent, KindCodeSnippets, KindAsciiDiagram:
		return buildModulePrompt(req)
	case KindRecommendation:
		return fmt.Sprintf("Recommend one course to take after %s. Format: 'Course Name: Description'", req.Subject), nil
	default:
		return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidRequest, req.Kind)
	}
}

func buildQuizPrompt(req GenerationRequest) (string, error) {
	if req.QuestionCount <= 0 {
		return "", fmt.Errorf("%w: question count must be positive, got %d", ErrInvalidRequest, req.QuestionCount)
	}
	if req.ChoiceCount <= 0 {
		return "", fmt.Errorf("%w: choice count must be positive, got %d", ErrInvalidRequest, req.ChoiceCount)
	}

	var sb strings.Builder

	sb.WriteString("Generate a quiz in JSON format with the following requirements:\n")
	sb.WriteString(fmt.Sprintf("- Topic: %s\n", req.Subject))
	sb.WriteString(fmt.Sprintf("- Number of questions: %d\n", req.QuestionCount))
	sb.WriteString(fmt.Sprintf("- Choices per question: %d\n", req.ChoiceCount))
	sb.WriteString("- Format: {\n")
	sb.WriteString("    \"topic\": \"topic name\",\n")
	sb.WriteString("    \"questions\": [\n")
	sb.WriteString("        {\n")
	sb.WriteString("            \"question\": \"question text\",\n")
	sb.WriteString("            \"choices\": [\"choice1\", \"choice2\", ...],\n")
	sb.WriteString("            \"answer\": \"correct answer\"\n")
	sb.WriteString("        }\n")
	sb.WriteString("    ]\n")
	sb.WriteString("}\n")
	sb.WriteString("The answer must be copied exactly from one of the choices.\n")
	sb.WriteString("Ensure valid JSON format without markdown formatting or code fences.")

	return sb.String(), nil
}

func buildApproachPrompt(req GenerationRequest) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("You are a pedagogy expert designing learning material for %s.\n", req.Subject))
	sb.WriteString("Describe the teaching approach and expected learning outcomes in bullet points.\n")
	sb.WriteString("Use * as the bullet marker.")

	return sb.String()
}

func buildModuleListPrompt(req GenerationRequest) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("List modules for %s as bullet points (*).\n", req.Subject))
	sb.WriteString("For each module: include a brief description after a colon, as in \"* Module name: description\".")

	return sb.String()
}

func buildModulePrompt(req GenerationRequest) (string, error) {
	if strings.TrimSpace(req.Course) == "" {
		return "", fmt.Errorf("%w: course is required for %s", ErrInvalidRequest, req.Kind)
	}

	switch req.Kind {
	case KindCodeSnippets:
		return fmt.Sprintf("Provide code snippets for %s in %s.", req.Subject, req.Course), nil
	case KindAsciiDiagram:
		return fmt.Sprintf("Create ASCII art diagrams explaining %s in %s.", req.Subject, req.Course), nil
	default:
		return fmt.Sprintf("Comprehensively explain %s from %s with examples/analogies.", req.Subject, req.Course), nil
	}
}
