package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/book-expert/logger"
	pinyin "github.com/ieee0824/pinyin-go"
	"github.com/ieee0824/pinyin-go/internal/config"
	"github.com/ieee0824/pinyin-go/internal/counts"
	"github.com/ieee0824/pinyin-go/internal/objectstore"
	"github.com/ieee0824/pinyin-go/internal/parallel"
	"github.com/ieee0824/pinyin-go/language"
	"github.com/ieee0824/pinyin-go/lexicon"
	"github.com/nats-io/nats.go"
)

type options struct {
	configPath   string
	unigramFiles string
	bigramFiles  string
	outUnigrams  string
	outBigrams   string
	uniThreshold int64
	biThreshold  int64
	fallbackPath string
	workers      int
	natsURL      string
	bucket       string
	logDir       string
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "TOML or YAML config file")
	flag.StringVar(&o.unigramFiles, "unigrams", "", "comma-separated unigram count dumps (pron<TAB>text<TAB>count)")
	flag.StringVar(&o.bigramFiles, "bigrams", "", "comma-separated bigram count dumps (left<TAB>right<TAB>count)")
	flag.StringVar(&o.outUnigrams, "out-unigrams", "", "unigram table output (default: model.unigram_path)")
	flag.StringVar(&o.outBigrams, "out-bigrams", "", "bigram table output (default: model.bigram_path)")
	flag.Int64Var(&o.uniThreshold, "unigram-threshold", language.DefaultUnigramThreshold, "drop unigram entries with count <= threshold")
	flag.Int64Var(&o.biThreshold, "bigram-threshold", language.DefaultBigramThreshold, "drop bigram entries with count <= threshold")
	flag.StringVar(&o.fallbackPath, "fallback", "", "fallback table (default: embedded table)")
	flag.IntVar(&o.workers, "workers", 0, "parallel readers (default: NumCPU)")
	flag.StringVar(&o.natsURL, "nats-url", "", "upload both tables to this NATS server")
	flag.StringVar(&o.bucket, "bucket", "", "object store bucket (default: nats.model_store_bucket)")
	flag.StringVar(&o.logDir, "log-dir", os.TempDir(), "log directory")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: lmbuild -unigrams U1,U2,... -bigrams B1,B2,... [options]")
		fmt.Fprintln(os.Stderr, "  Builds the unigram and bigram tables from count dumps.")
		fmt.Fprintln(os.Stderr, "  Each dump file is read into its own shard; shards are merged before normalization.")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}
	flag.Parse()

	if o.unigramFiles == "" || o.bigramFiles == "" {
		flag.Usage()
		os.Exit(1)
	}

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if err := run(o, set); err != nil {
		fmt.Fprintf(os.Stderr, "lmbuild: %v\n", err)
		os.Exit(1)
	}
}

func run(o options, set map[string]bool) error {
	log, err := logger.New(o.logDir, "lmbuild.log")
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() {
		if closeErr := log.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing logger: %v\n", closeErr)
		}
	}()

	cfg, err := loadConfig(o, set)
	if err != nil {
		log.Error("Failed to load configuration: %v", err)
		return err
	}

	fallback := lexicon.Default()
	if cfg.Build.FallbackPath != "" {
		fallback, err = lexicon.LoadFile(cfg.Build.FallbackPath)
		if err != nil {
			return fmt.Errorf("load fallback table: %w", err)
		}
	}

	b, err := buildShards(splitList(o.unigramFiles), splitList(o.bigramFiles), cfg.BuildConfig(), o.workers)
	if err != nil {
		log.Error("Failed to read counts: %v", err)
		return err
	}

	m, report, err := b.Build(fallback)
	if err != nil {
		log.Error("Build failed: %v", err)
		return err
	}
	for _, s := range report.Fallbacks {
		log.Warn("Syllable %s has no observed unit; using fallback", s)
	}
	log.Info("Built model: %d keys, %d candidates, %d bigrams, max span %d",
		report.Stats.Keys, report.Stats.Candidates, report.Stats.Bigrams, report.Stats.MaxSpan)
	log.Info("Totals: %d unigram counts, %d bigram counts; dropped %d unigram and %d bigram entries; %d fallbacks",
		report.UnigramTotal, report.BigramTotal, report.DroppedUnigrams, report.DroppedBigrams, len(report.Fallbacks))

	if err := m.SaveFiles(cfg.Model.UnigramPath, cfg.Model.BigramPath); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	log.Info("Wrote %s and %s", cfg.Model.UnigramPath, cfg.Model.BigramPath)

	if o.natsURL == "" {
		return nil
	}
	return upload(m, cfg, log)
}

func loadConfig(o options, set map[string]bool) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.LoadFile(o.configPath); err != nil {
			return nil, err
		}
	}

	// Explicit flags win over the file
	if o.outUnigrams != "" {
		cfg.Model.UnigramPath = o.outUnigrams
	}
	if o.outBigrams != "" {
		cfg.Model.BigramPath = o.outBigrams
	}
	if set["unigram-threshold"] {
		cfg.Build.UnigramThreshold = o.uniThreshold
	}
	if set["bigram-threshold"] {
		cfg.Build.BigramThreshold = o.biThreshold
	}
	if o.fallbackPath != "" {
		cfg.Build.FallbackPath = o.fallbackPath
	}
	if o.natsURL != "" {
		cfg.NATS.URL = o.natsURL
	}
	if o.bucket != "" {
		cfg.NATS.ModelStoreBucket = o.bucket
	}
	return cfg, cfg.Validate()
}

// buildShards reads every dump into its own Builder on at most workers
// goroutines and merges the shards.
func buildShards(unigramFiles, bigramFiles []string, cfg language.BuildConfig, workers int) (*language.Builder, error) {
	type job struct {
		path    string
		unigram bool
	}
	var jobs []job
	for _, p := range unigramFiles {
		jobs = append(jobs, job{p, true})
	}
	for _, p := range bigramFiles {
		jobs = append(jobs, job{p, false})
	}

	shards := make([]*language.Builder, len(jobs))
	errs := make([]error, len(jobs))
	parallel.ForEach(len(jobs), workers, func(i int) {
		shards[i], errs[i] = readShard(jobs[i].path, jobs[i].unigram, cfg)
	})
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	b := language.NewBuilder(cfg)
	for _, s := range shards {
		b.Merge(s)
	}
	return b, nil
}

func readShard(path string, unigram bool, cfg language.BuildConfig) (*language.Builder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	b := language.NewBuilder(cfg)
	if unigram {
		_, err = counts.ReadUnigrams(f, func(pron, text string, count int64) error {
			b.AddUnigram(pron, text, count)
			return nil
		})
	} else {
		_, err = counts.ReadBigrams(f, func(left, right string, count int64) error {
			b.AddBigram(left, right, count)
			return nil
		})
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

func upload(m *language.Model, cfg *config.Config, log *logger.Logger) error {
	nc, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NATS.URL, err)
	}
	defer nc.Close()

	js, err := nc.JetStream()
	if err != nil {
		return fmt.Errorf("failed to get JetStream context: %w", err)
	}
	store, err := objectstore.New(js, cfg.NATS.ModelStoreBucket)
	if err != nil {
		return err
	}

	err = pinyin.SaveModelToStore(context.Background(), store, m, cfg.NATS.UnigramKey, cfg.NATS.BigramKey)
	if err != nil {
		return err
	}
	log.Info("Uploaded %s and %s to bucket %s", cfg.NATS.UnigramKey, cfg.NATS.BigramKey, store.Bucket())
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
