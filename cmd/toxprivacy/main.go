package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"
)

// Opts with all CLI options
type Opts struct {
	DataDir string `short:"d" long:"data-dir" env:"TOXPRIVACY_DATA_DIR" description:"profile data directory"`
	Yes     bool   `short:"y" long:"yes" description:"answer yes to confirmation prompts"`

	Show      ShowCmd      `command:"show" description:"show privacy settings and own address"`
	Nospam    NospamCmd    `command:"nospam" description:"inspect or change the nospam value"`
	History   HistoryCmd   `command:"history" description:"turn history logging on or off"`
	Typing    TypingCmd    `command:"typing" description:"turn typing notifications on or off"`
	Blacklist BlacklistCmd `command:"blacklist" description:"show or replace the blacklist"`

	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Println(flagsErr.Message)
			os.Exit(0)
		}
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	var opts Opts
	env := &cliEnv{ctx: ctx, in: in, out: out}
	opts.bind(env)

	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.CommandHandler = func(command flags.Commander, args []string) error {
		if command == nil {
			return nil
		}
		setupLog(opts.Debug, opts.NoColor)
		log.Printf("[DEBUG] toxprivacy %s", revision)

		if err := env.open(opts.DataDir, opts.Yes); err != nil {
			return err
		}
		defer env.close()
		return command.Execute(args)
	}

	_, err := parser.ParseArgs(args)
	return err
}

func (o *Opts) bind(env *cliEnv) {
	o.Show.env = env
	o.Nospam.Set.env = env
	o.Nospam.Random.env = env
	o.Nospam.Normalize.env = env
	o.History.env = env
	o.Typing.env = env
	o.Blacklist.Show.env = env
	o.Blacklist.Set.env = env
}

func setupLog(dbg, noColor bool) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	if !noColor {
		colorizer := lgr.Mapper{
			ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
			WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
			InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
			DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
			CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
			TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
		}
		logOpts = append(logOpts, lgr.Map(colorizer))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}

func printField(out io.Writer, name, value string) {
	fmt.Fprintf(out, "%-22s %s\n", name+":", value)
}
