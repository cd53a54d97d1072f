package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/book-expert/logger"
	pinyin "github.com/ieee0824/pinyin-go"
	"github.com/ieee0824/pinyin-go/internal/config"
)

const prompt = "全拼拼音，音与音之间用空格隔开："

func main() {
	configPath := flag.String("config", "", "TOML or YAML config file")
	uniPath := flag.String("unigrams", "", "unigram table (default: model.unigram_path)")
	biPath := flag.String("bigrams", "", "bigram table (default: model.bigram_path)")
	policy := flag.String("policy", "", "unit policy: single-syllable or dictionary-word")
	penalty := flag.Float64("penalty", -1, "backoff penalty (default: tuned value of the policy)")
	workers := flag.Int("workers", -1, "parallel decoders in batch mode (default: NumCPU)")
	logDir := flag.String("log-dir", os.TempDir(), "log directory")
	verbose := flag.Bool("v", false, "print segmentation and score in interactive mode")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pinyin [options] [INPUT OUTPUT]")
		fmt.Fprintln(os.Stderr, "  Without arguments, converts lines typed at the prompt until EOF.")
		fmt.Fprintln(os.Stderr, "  With INPUT and OUTPUT, converts every line of INPUT into the same line of OUTPUT.")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 0 && flag.NArg() != 2 {
		flag.Usage()
		os.Exit(1)
	}

	log, err := logger.New(*logDir, "pinyin.log")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	cfg := config.Default()
	if *configPath != "" {
		if cfg, err = config.LoadFile(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	if *uniPath != "" {
		cfg.Model.UnigramPath = *uniPath
	}
	if *biPath != "" {
		cfg.Model.BigramPath = *biPath
	}
	if *policy != "" {
		cfg.Decoder.Policy = *policy
		// the policy brings its own tuned penalty unless one is given
		cfg.Decoder.BackoffPenalty = nil
	}
	if *penalty >= 0 {
		cfg.Decoder.BackoffPenalty = penalty
	}
	if *workers >= 0 {
		cfg.Decoder.Workers = *workers
	}

	c, err := newConverter(cfg)
	if err != nil {
		log.Error("Failed to create converter: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log.Info("Converter ready: %s", c)

	if flag.NArg() == 0 {
		if err := interactive(c, os.Stdin, os.Stdout, *verbose); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := batchFiles(c, flag.Arg(0), flag.Arg(1), log); err != nil {
		log.Error("Batch conversion failed: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newConverter(cfg *config.Config) (*pinyin.Converter, error) {
	decCfg, err := cfg.DecoderConfig()
	if err != nil {
		return nil, err
	}
	return pinyin.NewConverter(cfg.Model.UnigramPath, cfg.Model.BigramPath,
		pinyin.WithDecoderConfig(decCfg),
		pinyin.WithWorkers(cfg.Decoder.Workers),
	)
}

// interactive reads one line at a time and answers each with its conversion.
// Errors for a single line are printed and the session continues.
func interactive(c *pinyin.Converter, in io.Reader, out io.Writer, verbose bool) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		res, err := c.ConvertResult(scanner.Text())
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		fmt.Fprintln(out, res.Text)
		if verbose {
			fmt.Fprintf(out, "score: %.4f\n", res.LogScore)
			for _, u := range res.Units {
				fmt.Fprintf(out, "  [%d-%d] %s %s %.4f\n", u.Start, u.End, u.Pronunciation, u.Text, u.LogProb)
			}
		}
	}
}

func batchFiles(c *pinyin.Converter, inPath, outPath string, log *logger.Logger) error {
	in, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}

	n, failed, err := batch(c, in, out, log)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	log.Info("Converted %d lines from %s to %s (%d failed)", n, inPath, outPath, failed)
	return nil
}

// batch converts every line of in and writes exactly one line per input line.
// A line that fails to convert is written empty and logged.
func batch(c *pinyin.Converter, in io.Reader, out io.Writer, log *logger.Logger) (n, failed int, err error) {
	var lines []string
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return 0, 0, err
	}

	texts, errs := c.ConvertLines(lines)
	w := bufio.NewWriter(out)
	for i, text := range texts {
		if errs[i] != nil {
			failed++
			log.Warn("line %d: %v", i+1, errs[i])
		}
		w.WriteString(text)
		w.WriteByte('\n')
	}
	return len(lines), failed, w.Flush()
}
