package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/sublee/derivegen/internal/codefmt"
	derivegeninternal "github.com/sublee/derivegen/internal/derivegen"
)

var Version = "dev"

var (
	oFlag      = flag.String("o", "", "output file suffix (default \""+derivegeninternal.DefaultSuffix+"\")")
	crateFlag  = flag.String("crate", "", "path of the runtime crate (default \"derive_more\")")
	dFlag      = flag.String("d", "", "comma-separated derives to expand (default all)")
	configFlag = flag.String("config", derivegeninternal.ConfigFile, "configuration file")
	cFlag      = flag.String("c", "auto", "colorize (auto|always|never)")
	vFlag      = flag.Bool("v", false, "log progress to stderr")
	nFlag      = flag.Bool("n", false, "print outputs instead of writing them")
)

func init() {
	derivegeninternal.Version = Version
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: derivegen [flags] [patterns...]\n\n")
		fmt.Fprintf(flag.CommandLine.Output(), "Patterns are globs such as \"src/**/*.rs\". A directory stands for every .rs file below it.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	wd, err := os.Getwd()
	if err != nil {
		fail(err)
	}

	color := false
	switch *cFlag {
	case "auto":
		color = isatty()
	case "always":
		color = true
	case "never":
		color = false
	default:
		fail(fmt.Errorf("invalid -c value: %s", *cFlag))
	}

	level := slog.LevelWarn
	if *vFlag {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := derivegeninternal.LoadConfig(filepath.Join(wd, *configFlag))
	if err != nil {
		fail(err)
	}
	cfg = cfg.Update(flagConfig())
	if err := cfg.Validate(); err != nil {
		fail(err)
	}

	patterns := flag.Args()
	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	for i, p := range patterns {
		if filepath.IsAbs(p) {
			if rel, err := filepath.Rel(wd, p); err == nil {
				patterns[i] = rel
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	outs, _, err := derivegeninternal.Main(ctx, wd, cfg, log, patterns)
	if err != nil {
		var b strings.Builder
		render(&b, err, wd)
		message := strings.TrimRight(b.String(), "\n")
		if color {
			message = colorize(message)
		}
		fmt.Fprintln(os.Stderr, message)
		os.Exit(1)
	}

	names := make([]string, 0, len(outs))
	for out := range outs {
		names = append(names, out)
	}
	slices.Sort(names)

	for _, out := range names {
		if *nFlag {
			fmt.Printf("// %s\n%s", out, outs[out])
			continue
		}
		if err := os.WriteFile(filepath.Join(wd, out), outs[out], 0o644); err != nil {
			fail(err)
		}
		log.Debug("written", "file", out, "bytes", len(outs[out]))
		fmt.Println("Generated:", out)
	}
}

// flagConfig collects the configuration given by flags.
func flagConfig() derivegeninternal.Config {
	cfg := derivegeninternal.Config{Crate: *crateFlag, Suffix: *oFlag}
	if *dFlag != "" {
		for _, d := range strings.Split(*dFlag, ",") {
			if d = strings.TrimSpace(d); d != "" {
				cfg.Derives = append(cfg.Derives, d)
			}
		}
	}
	return cfg
}

// render writes every error of a joined error as a diagnostic with an
// excerpt of the source.
func render(w io.Writer, err error, wd string) {
	source := func(name string) []byte {
		src, err := os.ReadFile(filepath.Join(wd, filepath.FromSlash(name)))
		if err != nil {
			return nil
		}
		return src
	}

	errs := []error{err}
	if u, ok := err.(interface{ Unwrap() []error }); ok {
		errs = u.Unwrap()
	}
	for _, err := range errs {
		codefmt.Render(w, err, source)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	if errors.Is(err, context.Canceled) {
		os.Exit(130)
	}
	os.Exit(1)
}

// isatty reports whether the program is running in a terminal. If it is true,
// we can use ANSI color codes.
func isatty() bool {
	_, err := unix.IoctlGetWinsize(int(os.Stderr.Fd()), unix.TIOCGWINSZ)
	return err == nil
}

var (
	reTab    = regexp.MustCompile(`(?m)^\t.+`)
	reGutter = regexp.MustCompile(`(?m)^ *\d* \|`)
	reCaret  = regexp.MustCompile(`(?m)\^+$`)
)

// colorize adds ANSI color codes to the message.
func colorize(message string) string {
	const (
		red   = "\033[31m"
		dim   = "\033[2m"
		reset = "\033[0m"
	)
	m := []byte(message)
	m = reTab.ReplaceAllFunc(m, func(b []byte) []byte {
		return []byte(dim + string(b) + reset)
	})
	m = reGutter.ReplaceAllFunc(m, func(b []byte) []byte {
		return []byte(dim + string(b) + reset)
	})
	m = reCaret.ReplaceAllFunc(m, func(b []byte) []byte {
		return []byte(red + string(b) + reset)
	})
	return string(m)
}
