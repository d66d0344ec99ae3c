package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"hkn-admin/internal/service"
)

var errHelp = errors.New("help provided")

type migrator interface {
	MigrateUp(log *slog.Logger) error
	MigrateDown(log *slog.Logger) error
}

type commandLine struct {
	svc      *service.Service
	migrator migrator
	log      *slog.Logger
	out      io.Writer
	json     bool
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  migrate up|down                                   - apply or roll back the schema")
	fmt.Fprintln(w, "  slot create -hour H -wday D -room R               - add a tutoring slot")
	fmt.Fprintln(w, "  slot update -id ID -hour H -wday D -room R        - move a slot")
	fmt.Fprintln(w, "  slot list | slot schedule                         - show slots, or runs of adjacent slots")
	fmt.Fprintln(w, "  slot delete -id ID                                - delete a slot")
	fmt.Fprintln(w, "  slot clear -yes                                   - delete every slot (semester rollover)")
	fmt.Fprintln(w, "  slot assign|unassign -slot ID -tutor ID           - change who tutors a slot")
	fmt.Fprintln(w, "  slot tutors -id ID                                - list a slot's tutors")
	fmt.Fprintln(w, "  slot availabilities -id ID                        - list tutors free at a slot's time")
	fmt.Fprintln(w, "  tutor add -name NAME [-person ID] [-languages L]  - add a tutor")
	fmt.Fprintln(w, "  tutor slots -id ID                                - list a tutor's slots")
	fmt.Fprintln(w, "  availability add -tutor ID -hour H -wday D [-semester S] [-preference P]")
	fmt.Fprintln(w, "  availability delete -id ID")
	fmt.Fprintln(w, "  property show | property set [-semester S] [-start H] [-end H] [-surveys=true|false]")
	fmt.Fprintln(w, "  class add -dept DEPT -number NUM [-name N] [-section S] [-instructor I]")
	fmt.Fprintln(w, "  class list")
	fmt.Fprintln(w, "  survey select -ids 1,2,3 [-active]                - choose the classes to survey")
	fmt.Fprintln(w, "  survey list")
	fmt.Fprintln(w, "  survey update -id ID [-max N] [-status 0|1|2] [-at RFC3339]")
}

func (cli *commandLine) printUsage() {
	printUsage(cli.out)
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	cmd, rest := args[1], args[2:]

	switch cmd {
	case "migrate":
		return cli.migrate(rest)
	case "slot":
		return cli.slot(ctx, rest)
	case "tutor":
		return cli.tutor(ctx, rest)
	case "availability":
		return cli.availability(ctx, rest)
	case "property":
		return cli.property(ctx, rest)
	case "class":
		return cli.class(ctx, rest)
	case "survey":
		return cli.survey(ctx, rest)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) migrate(args []string) error {
	if len(args) != 1 {
		cli.printUsage()
		return errHelp
	}

	switch args[0] {
	case "up":
		return cli.migrator.MigrateUp(cli.log)
	case "down":
		return cli.migrator.MigrateDown(cli.log)
	default:
		return fmt.Errorf("%q: no such migrate command", args[0])
	}
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

// parse reports which flags were given so absent values can stay nil.
func (cli *commandLine) parse(fs *flag.FlagSet, args []string, required ...string) (map[string]bool, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, errHelp
		}
		return nil, err
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(cli.out, "unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return nil, errHelp
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	for _, name := range required {
		if !set[name] {
			fmt.Fprintf(cli.out, "-%s is required\n", name)
			fs.Usage()
			return nil, errHelp
		}
	}

	return set, nil
}

func opt[T any](set map[string]bool, name string, v T) *T {
	if !set[name] {
		return nil
	}
	return &v
}
