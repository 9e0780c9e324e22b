package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/BLAZED-sh/unescape/pkg/escape"
	"github.com/BLAZED-sh/unescape/pkg/stream"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// CLI flag definitions
	// Basic options
	dialectName := flag.String("dialect", "ascii", "Escape dialect (ascii, byte, unicode, quote)")
	inputPath := flag.String("in", "", "Input file to read escaped literals from (default: stdin)")

	// Debug options
	debugSignal := flag.Int("debug-signal", int(syscall.SIGUSR1), "Signal number to use for dumping debug info (default: SIGUSR1)")

	// Performance options
	bufferSize := flag.Int("buffer", 16384, "Buffer size for the line decoder")
	maxRead := flag.Int("max-read", 4096, "Maximum read size per operation")
	maxLine := flag.Int("max-line", 9999, "Maximum record length in bytes")

	// Logging options
	logLevel := flag.String("log-level", "info", "Log level (trace, debug, info, warn, error, fatal)")
	prettyLogs := flag.Bool("pretty", false, "Enable pretty logging output")

	// Other options
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	// Version info
	const version = "0.1.0"

	// Handle version flag
	if *showVersion {
		fmt.Printf("unescape version %s\n", version)
		os.Exit(0)
	}

	// Configure zerolog
	setupLogging(*logLevel, *prettyLogs)

	dialect, err := parseDialect(*dialectName)
	if err != nil {
		log.Fatal().Err(err).Str("dialect", *dialectName).Msg("Unknown escape dialect")
	}

	input := os.Stdin
	if *inputPath != "" {
		input, err = os.Open(*inputPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *inputPath).Msg("Failed to open input file")
		}
		defer input.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	decoder := stream.NewLineDecoder(ctx, input, dialect, *bufferSize, *maxRead)
	decoder.SetMaxLineLength(*maxLine)

	log.Debug().
		Str("dialect", dialect.String()).
		Int("buffer_size", *bufferSize).
		Int("max_read", *maxRead).
		Int("max_line", *maxLine).
		Str("version", version).
		Msg("Decoder configured")

	// Setup signal handlers
	sigChan := make(chan os.Signal, 1)
	debugSigChan := make(chan os.Signal, 1)

	// Register for debug signal
	debugSig := syscall.Signal(*debugSignal)
	signal.Notify(debugSigChan, debugSig)

	// Register for termination signals
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Handle signals
	go func() {
		for {
			select {
			case <-debugSigChan:
				log.Info().Int("signal", *debugSignal).Msg("Received debug signal - dumping debug information")
				dumpDebugInfo(decoder)

				// Additional debug: print goroutine stacks
				buf := make([]byte, 1<<20) // 1MB buffer
				stackLen := runtime.Stack(buf, true)
				log.Info().Msgf("=== GOROUTINE DUMP ===\n%s", buf[:stackLen])
			case <-sigChan:
				log.Info().Msg("Shutting down...")
				cancel()
				return
			}
		}
	}()

	out := bufio.NewWriter(os.Stdout)
	exitCode := 0

	decoder.DecodeAll(func(b []byte) {
		b = append(b, '\n')
		if _, err := out.Write(b); err != nil {
			log.Error().Err(err).Msg("Error writing resolved record")
		}
	}, func(err error) {
		log.Error().Err(err).Msg("Decode failed")
		exitCode = 1
	})

	if err := out.Flush(); err != nil {
		log.Error().Err(err).Msg("Error flushing output")
		exitCode = 1
	}
	os.Exit(exitCode)
}

func parseDialect(name string) (escape.Dialect, error) {
	switch name {
	case "ascii":
		return escape.DialectAscii, nil
	case "byte":
		return escape.DialectByte, nil
	case "unicode":
		return escape.DialectUnicode, nil
	case "quote":
		return escape.DialectQuote, nil
	}
	return 0, fmt.Errorf("no such dialect: %q", name)
}

// dumpDebugInfo logs the decoder state through its debug accessors
func dumpDebugInfo(decoder *stream.LineDecoder) {
	bufferInfo := fmt.Sprintf("Buffer length: %d, cursor: %d, capacity: %d",
		decoder.BufferLength(),
		decoder.Cursor(),
		cap(decoder.Buffer()))

	log.Info().
		Str("buffer", bufferInfo).
		Str("buffer_content", decoder.BufferContent()).
		Msg("Decoder debug info")
}

func setupLogging(level string, pretty bool) {
	// Set log level
	var logLevel zerolog.Level
	switch level {
	case "trace":
		logLevel = zerolog.TraceLevel
	case "debug":
		logLevel = zerolog.DebugLevel
	case "info":
		logLevel = zerolog.InfoLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	case "fatal":
		logLevel = zerolog.FatalLevel
	default:
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	// Configure output format
	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}
