package main

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"learnpath"
)

func (s *Server) handleQuizInterface(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "quiz_form", nil)
}

func (s *Server) handleQuizGenerate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	topic := r.FormValue("language")
	numQuestions, err := strconv.Atoi(r.FormValue("ques"))
	if err != nil {
		http.Error(w, "Number of questions must be a number", http.StatusBadRequest)
		return
	}
	numChoices, err := strconv.Atoi(r.FormValue("choices"))
	if err != nil {
		http.Error(w, "Number of choices must be a number", http.StatusBadRequest)
		return
	}

	quiz, err := s.gen.GenerateQuiz(r.Context(), s.quizKey(w, r), topic, numQuestions, numChoices)
	if err != nil {
		s.fail(w, "Failed to generate quiz", err)
		return
	}

	s.render(w, r, "quiz", map[string]interface{}{
		"Quiz": quiz,
	})
}

func (s *Server) handleQuizScore(w http.ResponseWriter, r *http.Request) {
	answers, err := orderedQueryValues(r.URL.RawQuery)
	if err != nil {
		http.Error(w, "Failed to parse answers", http.StatusBadRequest)
		return
	}

	score, err := s.gen.ScoreQuiz(r.Context(), s.quizKey(w, r), answers)
	if err != nil {
		if errors.Is(err, learnpath.ErrNotFound) {
			w.Write([]byte("<p>Quiz not found</p>"))
			return
		}
		s.fail(w, "Failed to score quiz", err)
		return
	}

	s.render(w, r, "score", map[string]interface{}{
		"Score": score,
		"Total": len(score.Correct),
	})
}

// orderedQueryValues returns the values of a raw query string in the order they
// were submitted. url.Values loses that order.
func orderedQueryValues(rawQuery string) ([]string, error) {
	var values []string
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		_, value, _ := strings.Cut(pair, "=")
		unescaped, err := url.QueryUnescape(value)
		if err != nil {
			return nil, err
		}
		values = append(values, unescaped)
	}
	return values, nil
}
