package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"learnpath"

	"github.com/google/uuid"
)

func main() {
	var (
		topic        = flag.String("topic", "", "Quiz topic")
		numQuestions = flag.Int("questions", 5, "Number of questions to generate")
		numChoices   = flag.Int("choices", 4, "Number of choices per question")
		course       = flag.String("course", "", "Course to outline, or the course a -module belongs to")
		module       = flag.String("module", "", "Module to explain in depth (requires -course)")
		pdfFile      = flag.String("pdf", "", "Write the module as a PDF to this file")
		outputFile   = flag.String("output", "", "Output file (default: stdout)")
		playMode     = flag.Bool("play", false, "Play the quiz interactively")
		provider     = flag.String("provider", "", "LLM provider: gemini or openai (or set LLM_PROVIDER env var)")
		apiKey       = flag.String("api-key", "", "API key for the provider (or set GOOGLE_API_KEY / OPENAI_API_KEY env var)")
		configDir    = flag.String("config", ".", "Directory containing config.yaml")
		timeout      = flag.Duration("timeout", 10*time.Minute, "Overall time limit")
		verbose      = flag.Bool("verbose", false, "Enable verbose debugging output")
	)

	flag.Parse()

	learnpath.SetVerbose(*verbose)
	log := learnpath.Logger()

	if *topic == "" && *course == "" {
		log.Fatal("Nothing to do. Use -topic for a quiz or -course for a course outline.")
	}
	if *module != "" && *course == "" {
		log.Fatal("-module requires -course")
	}

	cfg, err := learnpath.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags override the config file and environment
	if *provider != "" {
		cfg.Provider = *provider
	}
	if *apiKey != "" {
		if strings.ToLower(cfg.Provider) == learnpath.ProviderOpenAI {
			cfg.OpenAIAPIKey = *apiKey
		} else {
			cfg.GoogleAPIKey = *apiKey
		}
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	completer, err := learnpath.NewCompleter(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create completer: %v", err)
	}

	gen := learnpath.NewGenerator(completer, learnpath.NewMemoryQuizStore())
	gen.SetTimeout(cfg.CompletionTimeout)

	llmLogger, err := learnpath.NewLLMLogger(cfg.LogDir)
	if err != nil {
		log.Fatalf("Failed to create LLM logger: %v", err)
	}
	defer llmLogger.Close()
	gen.SetLogger(llmLogger)

	var output []byte
	switch {
	case *topic != "":
		quiz, err := gen.GenerateQuiz(ctx, uuid.NewString(), *topic, *numQuestions, *numChoices)
		if err != nil {
			log.Fatalf("Failed to generate quiz: %v", err)
		}
		if *playMode {
			playQuiz(os.Stdin, os.Stdout, quiz)
			return
		}
		output, err = json.MarshalIndent(quiz, "", "  ")
		if err != nil {
			log.Fatalf("Failed to marshal quiz: %v", err)
		}

	case *module != "":
		content, err := gen.GenerateModule(ctx, *course, *module)
		if err != nil {
			log.Fatalf("Failed to generate module: %v", err)
		}
		if *pdfFile != "" {
			if err := writePDF(*pdfFile, content); err != nil {
				log.Fatalf("Failed to write PDF: %v", err)
			}
			log.Infof("Module saved to: %s", *pdfFile)
		}
		output = []byte(content)

	default:
		outline, err := gen.GenerateCourse(ctx, *course)
		if err != nil {
			log.Fatalf("Failed to generate course: %v", err)
		}
		output, err = json.MarshalIndent(outline, "", "  ")
		if err != nil {
			log.Fatalf("Failed to marshal course: %v", err)
		}
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, output, 0644); err != nil {
			log.Fatalf("Failed to write output file: %v", err)
		}
		log.Infof("Output saved to: %s", *outputFile)
	} else {
		fmt.Println(string(output))
	}
}

func writePDF(path, content string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := learnpath.RenderPDF(f, content, learnpath.DefaultPageOptions); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// playQuiz asks each question in turn and scores the answers at the end.
// An answer may be given by letter or as the choice text.
func playQuiz(in io.Reader, out io.Writer, quiz *learnpath.Quiz) *learnpath.QuizScore {
	scanner := bufio.NewScanner(in)

	fmt.Fprintf(out, "🎯 Quiz: %s\n", quiz.Topic)
	fmt.Fprintf(out, "📝 Questions: %d\n\n", len(quiz.Questions))

	answers := make([]string, 0, len(quiz.Questions))
	for i, question := range quiz.Questions {
		fmt.Fprintf(out, "Question %d/%d:\n", i+1, len(quiz.Questions))
		fmt.Fprintf(out, "%s\n\n", question.Question)
		for j, choice := range question.Choices {
			fmt.Fprintf(out, "%c) %s\n", 'A'+j, choice)
		}
		fmt.Fprintln(out)

		answer := ""
		for {
			fmt.Fprint(out, "Your answer: ")
			if !scanner.Scan() {
				break
			}
			if answer = resolveAnswer(scanner.Text(), question.Choices); answer != "" {
				break
			}
			fmt.Fprintf(out, "Please enter a letter between A and %c\n", 'A'+len(question.Choices)-1)
		}
		answers = append(answers, answer)

		if answer == question.Answer {
			fmt.Fprintln(out, "✅ Correct!")
		} else {
			fmt.Fprintf(out, "❌ Incorrect. The correct answer is: %s\n", question.Answer)
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, strings.Repeat("─", 50))
		fmt.Fprintln(out)
	}

	score := learnpath.ScoreAnswers(quiz, answers)
	total := len(quiz.Questions)
	percentage := 0.0
	if total > 0 {
		percentage = float64(score.Score) / float64(total) * 100
	}

	fmt.Fprintln(out, "🎉 Quiz completed!")
	fmt.Fprintf(out, "🏆 Score: %d/%d (%.1f%%)\n", score.Score, total, percentage)
	switch {
	case percentage >= 80:
		fmt.Fprintln(out, "🌟 Excellent work!")
	case percentage >= 60:
		fmt.Fprintln(out, "👍 Good job!")
	default:
		fmt.Fprintln(out, "📚 Keep studying!")
	}
	return score
}

// resolveAnswer maps a typed letter or choice text to the choice, or "" when it matches nothing
func resolveAnswer(input string, choices []string) string {
	input = strings.TrimSpace(input)
	if len(input) == 1 {
		idx := int(strings.ToUpper(input)[0]) - 'A'
		if idx >= 0 && idx < len(choices) {
			return choices[idx]
		}
	}
	for _, choice := range choices {
		if strings.EqualFold(strings.TrimSpace(choice), input) {
			return choice
		}
	}
	return ""
}
