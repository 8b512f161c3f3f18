// Package main is the main entrypoint to the typefence application
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/tanema/typefence/src/conf"
	"github.com/tanema/typefence/src/instrument"
)

var (
	showVersion bool
	checkExpr   string
	interactive bool
	configPath  string
	traceOn     bool
)

func init() {
	flag.BoolVar(&showVersion, "v", false, "show version information")
	flag.StringVar(&checkExpr, "e", "", "check a single 'value :: type' expression")
	flag.BoolVar(&interactive, "i", false, "enter interactive mode after checking")
	flag.StringVar(&configPath, "c", conf.CONFIGFILE, "path to the instrumentation config file")
	flag.BoolVar(&traceOn, "t", false, "trace each check to stderr")
}

func main() {
	flag.Usage = printUsage
	flag.Parse()

	if showVersion {
		printVersion()
	}

	var tracer *instrument.Tracer
	if traceOn {
		t, err := instrument.NewTracer(os.Stderr, conf.TRACEPATTERN)
		checkErr(err)
		tracer = t
	}

	args := flag.Args()
	if stat, _ := os.Stdin.Stat(); (stat.Mode() & os.ModeCharDevice) == 0 {
		data, err := io.ReadAll(os.Stdin)
		checkErr(err)
		for _, line := range strings.Split(string(data), "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			reportCheck(line, tracer)
		}
	} else if checkExpr != "" {
		reportCheck(checkExpr, tracer)
		if interactive {
			runREPL(tracer)
		}
	} else if len(args) > 0 {
		runQuery(args)
	} else if !showVersion {
		runREPL(tracer)
	}
}

// runQuery answers whether each named package would be instrumented under
// the loaded config.
func runQuery(names []string) {
	cfg, err := instrument.LoadConfig(configPath)
	checkErr(err)
	finder := cfg.Finder()
	for _, name := range names {
		if finder.ShouldInstrument(name) {
			fmt.Fprintf(os.Stdout, "%s: instrumented\n", name)
		} else {
			fmt.Fprintf(os.Stdout, "%s: skipped\n", name)
			cfg.Warnf(os.Stderr, "%s is outside the instrumented packages", name)
		}
	}
}

func reportCheck(line string, tracer *instrument.Tracer) {
	err := checkLine(line)
	tracer.Logf("check %q", strings.TrimSpace(line))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", paint("31", err.Error()))
		os.Exit(1)
	}
	fmt.Fprintln(os.Stdout, paint("32", "ok"))
}

// paint wraps text in an ansi color code when stderr is a terminal.
func paint(color, text string) string {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return text
	}
	return fmt.Sprintf("\033[%sm%s\033[0m", color, text)
}

func printVersion() {
	fmt.Fprintf(os.Stderr, "%v\n", conf.FullVersion())
}

func printUsage() {
	printVersion()
	fmt.Fprint(os.Stderr, "\nUsage: typefence [options] [package ...]\n")
	flag.PrintDefaults()
}

func checkErr(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
