package learnpath

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LLMLogger records every prompt and completion exchanged with the model.
// Entries go to a rotating JSON log; each orchestration flow gets its own request id.
type LLMLogger struct {
	log    *zap.Logger
	closer io.Closer
}

// NewLLMLogger creates a transcript logger writing to dir/llm.log
func NewLLMLogger(dir string) (*LLMLogger, error) {
	// Ensure log directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	writer := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "llm.log"),
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:     "time",
		LevelKey:    "level",
		MessageKey:  "msg",
		LineEnding:  zapcore.DefaultLineEnding,
		EncodeLevel: zapcore.LowercaseLevelEncoder,
		EncodeTime:  zapcore.ISO8601TimeEncoder,
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(writer), zap.DebugLevel)

	return &LLMLogger{
		log:    zap.New(core),
		closer: writer,
	}, nil
}

// Begin returns a logger whose entries are tagged with a fresh request id
func (ll *LLMLogger) Begin(flow, subject string) *LLMLogger {
	id := uuid.NewString()
	child := &LLMLogger{
		log: ll.log.With(
			zap.String("request_id", id),
			zap.String("flow", flow),
			zap.String("subject", subject),
		),
	}
	child.log.Info("flow started")
	return child
}

// LogLLMRequest logs an LLM request
func (ll *LLMLogger) LogLLMRequest(kind Kind, prompt string) {
	ll.log.Info("llm request", zap.String("kind", string(kind)), zap.String("prompt", prompt))
}

// LogLLMResponse logs an LLM response
func (ll *LLMLogger) LogLLMResponse(kind Kind, response string) {
	ll.log.Info("llm response", zap.String("kind", string(kind)), zap.String("response", response))
}

// LogLLMError logs a failed round trip
func (ll *LLMLogger) LogLLMError(kind Kind, err error) {
	ll.log.Error("llm failure", zap.String("kind", string(kind)), zap.Error(err))
}

// LogDropped logs list entries discarded by the normalizer
func (ll *LLMLogger) LogDropped(kind Kind, dropped int) {
	ll.log.Warn("entries dropped", zap.String("kind", string(kind)), zap.Int("dropped", dropped))
}

// LogDuplicates logs entries discarded because they repeat an earlier or saved one
func (ll *LLMLogger) LogDuplicates(kind Kind, dropped int) {
	ll.log.Warn("duplicate entries dropped", zap.String("kind", string(kind)), zap.Int("dropped", dropped))
}

// Close flushes and closes the log file. Loggers returned by Begin share the
// file and need no closing.
func (ll *LLMLogger) Close() error {
	_ = ll.log.Sync()
	if ll.closer != nil {
		return ll.closer.Close()
	}
	return nil
}
