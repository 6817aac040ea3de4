package utils

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logLevelDebugStringConstant          = "debug"
	logLevelInfoStringConstant           = "info"
	logLevelWarnStringConstant           = "warn"
	logLevelErrorStringConstant          = "error"
	logFormatStructuredStringConstant    = "structured"
	logFormatConsoleStringConstant       = "console"
	jsonZapEncodingStringConstant        = "json"
	consoleZapEncodingStringConstant     = "console"
	unsupportedLogLevelTemplateConstant  = "unsupported log level: %s"
	unsupportedLogFormatTemplateConstant = "unsupported log format: %s"
)

// LogLevel enumerates supported logging granularities.
type LogLevel string

// Exported log level constants for reuse across packages.
const (
	LogLevelDebug LogLevel = LogLevel(logLevelDebugStringConstant)
	LogLevelInfo  LogLevel = LogLevel(logLevelInfoStringConstant)
	LogLevelWarn  LogLevel = LogLevel(logLevelWarnStringConstant)
	LogLevelError LogLevel = LogLevel(logLevelErrorStringConstant)
)

// LogFormat enumerates supported logger output encodings.
type LogFormat string

// Exported log format constants for reuse across packages.
const (
	LogFormatStructured LogFormat = LogFormat(logFormatStructuredStringConstant)
	LogFormatConsole    LogFormat = LogFormat(logFormatConsoleStringConstant)
)

// LoggerFactory builds zap.Logger instances with consistent configuration.
type LoggerFactory struct {
	outputWriter io.Writer
}

var logLevelMapping = map[LogLevel]zapcore.Level{
	LogLevelDebug: zapcore.DebugLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelError: zapcore.ErrorLevel,
}

var logFormatEncodingMapping = map[LogFormat]string{
	LogFormatStructured: jsonZapEncodingStringConstant,
	LogFormatConsole:    consoleZapEncodingStringConstant,
}

// NewLoggerFactory constructs a logger factory writing to standard error.
func NewLoggerFactory() *LoggerFactory {
	return &LoggerFactory{}
}

// NewLoggerFactoryWithOutput constructs a logger factory writing to the provided writer.
func NewLoggerFactoryWithOutput(outputWriter io.Writer) *LoggerFactory {
	return &LoggerFactory{outputWriter: outputWriter}
}

// ParseLogLevel normalizes a textual log level.
func ParseLogLevel(logLevelValue string) (LogLevel, error) {
	normalizedLevel := LogLevel(strings.ToLower(strings.TrimSpace(logLevelValue)))
	if _, levelExists := logLevelMapping[normalizedLevel]; !levelExists {
		return "", fmt.Errorf(unsupportedLogLevelTemplateConstant, logLevelValue)
	}
	return normalizedLevel, nil
}

// ParseLogFormat normalizes a textual log format.
func ParseLogFormat(logFormatValue string) (LogFormat, error) {
	normalizedFormat := LogFormat(strings.ToLower(strings.TrimSpace(logFormatValue)))
	if _, formatExists := logFormatEncodingMapping[normalizedFormat]; !formatExists {
		return "", fmt.Errorf(unsupportedLogFormatTemplateConstant, logFormatValue)
	}
	return normalizedFormat, nil
}

// CreateLogger produces a zap.Logger honoring the requested log level and format.
func (factory *LoggerFactory) CreateLogger(requestedLogLevel LogLevel, requestedLogFormat LogFormat) (*zap.Logger, error) {
	zapLogLevel, levelExists := logLevelMapping[requestedLogLevel]
	if !levelExists {
		return nil, fmt.Errorf(unsupportedLogLevelTemplateConstant, requestedLogLevel)
	}

	encoding, formatExists := logFormatEncodingMapping[requestedLogFormat]
	if !formatExists {
		return nil, fmt.Errorf(unsupportedLogFormatTemplateConstant, requestedLogFormat)
	}

	configuration := zap.NewProductionConfig()
	configuration.Level = zap.NewAtomicLevelAt(zapLogLevel)
	configuration.Encoding = encoding

	if factory == nil || factory.outputWriter == nil {
		return configuration.Build()
	}

	var encoder zapcore.Encoder
	if encoding == consoleZapEncodingStringConstant {
		encoder = zapcore.NewConsoleEncoder(configuration.EncoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(configuration.EncoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(factory.outputWriter), configuration.Level)
	return zap.New(core), nil
}
