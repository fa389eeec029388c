package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goreport/internal/config"
	"github.com/hyperifyio/goreport/internal/session"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		configPath   string
		fieldsPath   string
		assetDir     string
		outputPath   string
		pdfPath      string
		manifestPath string
		chapters     int
		enablePDF    bool
		verbose      bool
	)

	flag.StringVar(&configPath, "config", "", "Path to YAML configuration file (optional)")
	flag.StringVar(&fieldsPath, "fields", "fields.yaml", "Path to YAML field dictionary")
	flag.StringVar(&assetDir, "assets", "", "Figure and logo directory (overrides config)")
	flag.StringVar(&outputPath, "output", "", "Path to write the document (overrides config)")
	flag.StringVar(&pdfPath, "pdf", "", "Path to write the PDF preview (overrides config)")
	flag.StringVar(&manifestPath, "manifest", "", "Path to write the run manifest (overrides config)")
	flag.IntVar(&chapters, "chapters", 0, "Chapter count; 0 derives it from the field keys")
	flag.BoolVar(&enablePDF, "enable.pdf", false, "Also render a PDF preview")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Error().Err(err).Msg("load config")
		os.Exit(1)
	}
	if assetDir != "" {
		cfg.AssetDir = assetDir
	}
	if outputPath != "" {
		cfg.OutputPath = outputPath
	}
	if pdfPath != "" {
		cfg.PDFPath = pdfPath
	}
	if manifestPath != "" {
		cfg.ManifestPath = manifestPath
	}
	if chapters > 0 {
		cfg.Chapters = chapters
	}
	if enablePDF {
		cfg.EnablePDF = true
	}
	cfg.Verbose = verbose

	if err := run(cfg, fieldsPath); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}

func run(cfg config.Config, fieldsPath string) error {
	fields, err := config.LoadFields(fieldsPath)
	if err != nil {
		return fmt.Errorf("load fields: %w", err)
	}

	chapters := cfg.Chapters
	if chapters == 0 {
		chapters = session.DeriveChapters(fields)
	}
	if chapters == 0 {
		return fmt.Errorf("no chapter count: pass -chapters or ChapterNTitle/Content fields")
	}

	s := session.New(cfg)
	if err := s.Initialize(); err != nil {
		return err
	}
	if err := s.RebuildTail(chapters); err != nil {
		return err
	}
	if err := s.Apply(fields); err != nil {
		return err
	}
	if err := s.Save(); err != nil {
		return err
	}
	log.Info().Str("output", cfg.OutputPath).Int("chapters", chapters).Msg("report written")
	return nil
}
