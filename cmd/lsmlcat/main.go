// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// lsmlcat parses one or more LSML files (or stdin) into a single Data
// and writes the merged result back out in canonical form.
package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/solidcoredata/lsml"
	"github.com/solidcoredata/lsml/internal/start"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	app := &cli.App{
		Name:  "lsmlcat",
		Usage: "parse and re-emit LSML files in canonical form",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "mem-cap", Value: 16 * 1024 * 1024, Usage: "arena capacity in bytes"},
			&cli.BoolFlag{Name: "ascii", Usage: "escape all non-ASCII and non-printable bytes"},
		},
		Action: func(c *cli.Context) error {
			return start.Start(context.Background(), 5*time.Second, func(ctx context.Context) error {
				return runCat(ctx, log, c)
			})
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Error().Err(err).Msg("lsmlcat failed")
		os.Exit(1)
	}
}

func runCat(ctx context.Context, log zerolog.Logger, c *cli.Context) error {
	names := c.Args().Slice()
	if len(names) == 0 {
		names = []string{"-"}
	}

	raw, err := readAll(ctx, log, names)
	if err != nil {
		return err
	}

	memCap := c.Int64("mem-cap")
	data, err := lsml.NewData(make([]byte, memCap))
	if err != nil {
		return fmt.Errorf("allocate data: %w", err)
	}

	file := ""
	opts := lsml.ParseOptions{
		ErrLog: func(errCode lsml.Err, line int) bool {
			log.Warn().Str("file", file).Int("line", line).Msg(errCode.Error())
			return false
		},
	}
	for i, content := range raw {
		file = names[i]
		br := bufio.NewReader(bytes.NewReader(content))
		if err := lsml.Parse(data, br, opts); err != nil {
			return fmt.Errorf("parse: %w", err)
		}
	}

	out := bufio.NewWriter(os.Stdout)
	if err := lsml.Write(out, data, lsml.WriteOptions{ASCIIEscape: c.Bool("ascii")}); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return out.Flush()
}

// readAll reads every named file (or stdin for "-") concurrently,
// returning their contents in argument order.
func readAll(ctx context.Context, log zerolog.Logger, names []string) ([][]byte, error) {
	out := make([][]byte, len(names))
	runs := make([]func(context.Context) error, len(names))
	for i, name := range names {
		i, name := i, name
		runs[i] = func(ctx context.Context) error {
			b, err := readOne(name)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			out[i] = b
			log.Debug().Str("file", name).Int("bytes", len(b)).Msg("read")
			return nil
		}
	}
	if err := start.RunAll(ctx, runs...); err != nil {
		return nil, err
	}
	return out, nil
}

func readOne(name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(os.Stdin)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
