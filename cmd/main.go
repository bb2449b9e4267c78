// lingoland - play a first-words lesson in the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"lingoland/internal/config"
	"lingoland/internal/content"
	"lingoland/internal/logging"
	"lingoland/internal/loop"
	"lingoland/internal/metrics"
	"lingoland/internal/player"
	"lingoland/internal/speech"
	"lingoland/internal/ui"

	"github.com/spf13/pflag"
)

func main() {
	// Flags
	language := pflag.StringP("language", "l", config.DefaultLanguage(), "Lesson language ("+config.AvailableLanguagesStr()+")")
	name := pflag.StringP("name", "n", config.DefaultName(), "Your name in the lesson")
	lessonPath := pflag.StringP("lesson", "f", config.DefaultLesson(), "Lesson file or URL (empty = built-in lesson)")
	cacheDir := pflag.StringP("cache-dir", "c", "", "Cache directory for downloaded lessons")
	noCapture := pflag.Bool("no-capture", false, "Disable speaking (listen-only)")
	speakerCmd := pflag.String("speaker", config.DefaultSpeaker(), "Text-to-speech command (empty = silent)")
	writeMetrics := pflag.Bool("metrics", config.DefaultMetrics(), "Write session metrics to the output directory")
	outputDir := pflag.StringP("output-dir", "o", config.DefaultOutputDir(), "Output directory for metrics")
	logLevel := pflag.String("log-level", config.DefaultLogLevel(), "Log level (trace, debug, info, warn, error, off)")
	logDir := pflag.String("log-dir", config.DefaultLogDir(), "Directory for the rotating log file")
	quiet := pflag.BoolP("quiet", "q", config.DefaultQuiet(), "Suppress screen output")
	verbose := pflag.BoolP("verbose", "v", false, "Verbose output")

	pflag.Parse()

	term := ui.New(*quiet, *verbose)
	term.Banner()

	log, err := logging.New(*logLevel, *logDir)
	if err != nil {
		term.Error(err.Error())
		os.Exit(1)
	}

	if *cacheDir == "" {
		*cacheDir = filepath.Join(*outputDir, "lessons")
	}
	spinner := term.Spinner("Loading lesson...")
	l, err := content.Resolve(*lessonPath, *cacheDir)
	spinner.Stop()
	if err != nil {
		log.Error("lesson load failed", log.Args("path", *lessonPath, "error", err.Error()))
		term.Error(fmt.Sprintf("Failed to load lesson: %v", err))
		os.Exit(1)
	}

	var collector *metrics.Collector
	if *writeMetrics {
		collector = metrics.NewCollector(l.ID)
		collector.SetConfig("language", *language)
		collector.SetConfig("capture", !*noCapture)
		collector.SetConfig("speaker", *speakerCmd)
	}

	var spk speech.Speaker
	if *speakerCmd != "" {
		if s, err := player.NewExecSpeaker(*speakerCmd); err != nil {
			log.Warn("speaker unavailable", log.Args("error", err.Error()))
			term.Warning(fmt.Sprintf("No speech output: %v", err))
		} else {
			spk = s
		}
	}

	events := loop.New(64)
	p, err := player.New(l, player.Options{
		Language:    *language,
		Name:        *name,
		Speaker:     spk,
		Capture:     !*noCapture,
		Scheduler:   events,
		Logger:      log,
		Metrics:     collector,
		WrongFlash:  config.WrongFlash(),
		WrongRevert: config.WrongRevert(),
		UI:          term,
	})
	if err != nil {
		term.Error(err.Error())
		os.Exit(1)
	}

	c := p.Controller()
	term.Config(l.Title, c.Language().DisplayName, c.Name(), !*noCapture, spk != nil)
	term.Info(`Type "help" for commands.`)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := p.Run(ctx, events, os.Stdin); err != nil && ctx.Err() == nil {
		log.Error("player stopped", log.Args("error", err.Error()))
		term.Error(err.Error())
	}
	if spk != nil {
		spk.Cancel()
	}

	if collector != nil {
		session := collector.Finalize()
		reporter, err := metrics.NewReporter(*outputDir)
		if err != nil {
			term.Warning(fmt.Sprintf("Failed to write metrics: %v", err))
		} else {
			previous, _ := reporter.GetLastRun()
			if err := reporter.Write(session); err != nil {
				term.Warning(fmt.Sprintf("Failed to write metrics: %v", err))
			} else {
				term.Debug(fmt.Sprintf("Metrics written: %s", session.RunID))
			}
			if cmp := metrics.CompareRuns(session, previous); cmp != nil {
				term.Info(metrics.FormatComparison(cmp))
			}
		}
		term.FinalReport(session)
	}
	term.Done()
}
