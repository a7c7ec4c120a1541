package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
)

// Kind groups error codes by the subsystem that raised them.
type Kind string

const (
	KindValidation Kind = "validation"
	KindIO         Kind = "io"
	KindDocument   Kind = "document"
	KindAI         Kind = "ai"
	KindStorage    Kind = "storage"
	KindConfig     Kind = "config"
	KindAuth       Kind = "auth"
	KindInternal   Kind = "internal"
)

// AppError is the error type carried across package boundaries. Handlers and
// commands render it; everything else wraps it.
type AppError struct {
	Kind    Kind           `json:"kind"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Cause   error          `json:"-"`
	Fields  map[string]any `json:"fields,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithField attaches a structured field that LogError emits alongside the code.
func (e *AppError) WithField(key string, value any) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]any)
	}
	e.Fields[key] = value
	return e
}

// HTTPStatus maps the error kind (and a few codes) onto a response status.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case CodeAITimeout:
		return http.StatusGatewayTimeout
	}
	switch e.Kind {
	case KindValidation, KindDocument:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindAI:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func newError(kind Kind, code, message string, cause error) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message, Cause: cause}
}

func NewValidationError(code, message string, cause error) *AppError {
	return newError(KindValidation, code, message, cause)
}

func NewIOError(code, message string, cause error) *AppError {
	return newError(KindIO, code, message, cause)
}

func NewDocumentError(code, message string, cause error) *AppError {
	return newError(KindDocument, code, message, cause)
}

func NewAIError(code, message string, cause error) *AppError {
	return newError(KindAI, code, message, cause)
}

func NewStorageError(code, message string, cause error) *AppError {
	return newError(KindStorage, code, message, cause)
}

func NewConfigError(code, message string, cause error) *AppError {
	return newError(KindConfig, code, message, cause)
}

func NewAuthError(code, message string, cause error) *AppError {
	return newError(KindAuth, code, message, cause)
}

func NewInternalError(code, message string, cause error) *AppError {
	return newError(KindInternal, code, message, cause)
}

// AsAppError reports whether err wraps an *AppError and returns it.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Logger wraps slog with helpers for AppError fields.
type Logger struct {
	logger *slog.Logger
}

// NewLogger returns a JSON logger writing to stderr, keeping stdout free for
// command output.
func NewLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return &Logger{logger: slog.New(handler)}
}

// Discard returns a logger that drops every record.
func Discard() *Logger {
	return &Logger{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// New parses a level name and returns a logger for it.
func New(level string) (*Logger, error) {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "info", "":
		slogLevel = slog.LevelInfo
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}
	return NewLogger(slogLevel), nil
}

// With returns a logger that always carries the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{logger: l.logger.With(args...)}
}

// LogError logs err at error level; AppErrors are expanded into their code and fields.
func (l *Logger) LogError(err error, message string, args ...any) {
	appErr, ok := AsAppError(err)
	if !ok {
		l.logger.Error(message, append([]any{"error", err.Error()}, args...)...)
		return
	}

	logArgs := []any{
		"error_kind", appErr.Kind,
		"error_code", appErr.Code,
		"error_message", appErr.Message,
	}
	if appErr.Cause != nil {
		logArgs = append(logArgs, "cause", appErr.Cause.Error())
	}
	for key, value := range appErr.Fields {
		logArgs = append(logArgs, key, value)
	}
	l.logger.Error(message, append(logArgs, args...)...)
}

func (l *Logger) Info(message string, args ...any) {
	l.logger.Info(message, args...)
}

func (l *Logger) Debug(message string, args ...any) {
	l.logger.Debug(message, args...)
}

func (l *Logger) Warn(message string, args ...any) {
	l.logger.Warn(message, args...)
}

func (l *Logger) Error(message string, args ...any) {
	l.logger.Error(message, args...)
}

const (
	CodeMissingField       = "MISSING_FIELD"
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidFormat      = "INVALID_FORMAT"
	CodeFileNotFound       = "FILE_NOT_FOUND"
	CodeFileNotReadable    = "FILE_NOT_READABLE"
	CodeFileWriteFailed    = "FILE_WRITE_FAILED"
	CodeFileTooLarge       = "FILE_TOO_LARGE"
	CodeUnsupportedFile    = "UNSUPPORTED_FILE"
	CodeDocumentUnreadable = "DOCUMENT_UNREADABLE"
	CodeAIServiceFailed    = "AI_SERVICE_FAILED"
	CodeAITimeout          = "AI_TIMEOUT"
	CodeMissingAPIKey      = "MISSING_API_KEY"
	CodeStorageFailed      = "STORAGE_FAILED"
	CodeInvalidConfig      = "INVALID_CONFIG"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeRateLimited        = "RATE_LIMIT_EXCEEDED"
	CodeInternal           = "INTERNAL_ERROR"
)
