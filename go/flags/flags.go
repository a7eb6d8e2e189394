// Package flags parses command line arguments and environment variables into tagged option structs.
package flags

import (
	"errors"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
)

// ErrHelp is returned when the arguments request the help message, which has already been printed.
var ErrHelp = errors.New("help requested")

// Parse parses os.Args and the environment into opts.
func Parse(opts any) error {
	_, err := ParseArgs(opts, os.Args[1:])
	return err
}

// ParseArgs parses args and the environment into opts, returning the positional arguments.
func ParseArgs(opts any, args []string) ([]string, error) {
	parser := flags.NewParser(opts, flags.Default)
	rest, err := parser.ParseArgs(args)
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return nil, ErrHelp
		}
		return nil, fmt.Errorf("parsing flags: %w", err)
	}
	return rest, nil
}

// MustParse is Parse, exiting the process on failure.
func MustParse(opts any) {
	if err := Parse(opts); err != nil {
		if errors.Is(err, ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}
}
