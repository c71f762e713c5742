// Command astar runs an A* query over a YAML scenario and prints the path.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"geo_astar/pkg/logging"
	"geo_astar/pkg/scenario"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "astar:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("astar", flag.ContinueOnError)
	fs.SetOutput(stderr)
	file := fs.String("scenario", "", "Path to a YAML scenario file")
	builtin := fs.String("builtin", "five_cities", "Embedded scenario to run when --scenario is not set")
	list := fs.Bool("list", false, "List embedded scenarios and exit")
	heuristic := fs.String("heuristic", "", "Override the scenario heuristic (haversine, euclidean, manhattan, zero)")
	logLevel := fs.String("log-level", "warn", "Log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *list {
		for _, name := range scenario.BuiltinNames() {
			fmt.Fprintln(stdout, name)
		}
		return nil
	}

	var (
		s   *scenario.Scenario
		err error
	)
	if *file != "" {
		s, err = scenario.LoadFile(*file)
	} else {
		s, err = scenario.Builtin(*builtin)
	}
	if err != nil {
		return err
	}
	if *heuristic != "" {
		s.Heuristic = *heuristic
	}

	res, err := s.Run(logging.New("text", *logLevel, stderr))
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "scenario:  %s\n", res.Scenario)
	fmt.Fprintf(stdout, "heuristic: %s\n", res.Heuristic)
	fmt.Fprintf(stdout, "settled:   %d\n", res.Settled)
	if !res.Reached {
		fmt.Fprintln(stdout, "path:      none")
		return nil
	}
	fmt.Fprintf(stdout, "path:      %s\n", strings.Join(res.Path, " -> "))
	fmt.Fprintf(stdout, "cost:      %.2f\n", res.Cost)
	return nil
}
