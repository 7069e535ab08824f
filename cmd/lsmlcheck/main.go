// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// lsmlcheck parses one or more LSML files and reports parse errors,
// optionally checking the merged result against a template file's
// section/key shape.
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
		Name:      "lsmlcheck",
		Usage:     "validate one or more LSML files, optionally against a template",
		ArgsUsage: "[file...]",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "mem-cap", Value: 16 * 1024 * 1024, Usage: "arena capacity in bytes"},
			&cli.StringFlag{Name: "template", Usage: "path to a template LSML file"},
		},
		Action: func(c *cli.Context) error {
			return start.Start(context.Background(), 5*time.Second, func(ctx context.Context) error {
				return runCheck(ctx, log, c)
			})
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Error().Err(err).Msg("lsmlcheck failed")
		os.Exit(1)
	}
}

func runCheck(ctx context.Context, log zerolog.Logger, c *cli.Context) error {
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

	var template *lsml.Data
	var accept lsml.SectionAcceptFunc
	if path := c.String("template"); path != "" {
		template, err = loadTemplate(path, memCap)
		if err != nil {
			return fmt.Errorf("template %s: %w", path, err)
		}
		accept = lsml.TemplateAccept(template)
	}

	badLines := 0
	file := ""
	opts := lsml.ParseOptions{
		SectionAccept: accept,
		ErrLog: func(errCode lsml.Err, line int) bool {
			badLines++
			log.Error().Str("file", file).Int("line", line).Msg(errCode.Error())
			return false
		},
	}
	for i, content := range raw {
		file = names[i]
		if err := lsml.Parse(data, bufio.NewReader(bytes.NewReader(content)), opts); err != nil {
			return fmt.Errorf("%s: parse: %w", names[i], err)
		}
	}
	if badLines > 0 {
		return fmt.Errorf("%d line(s) failed to parse cleanly", badLines)
	}

	if template != nil {
		mismatches := lsml.Verify(data, template)
		for _, m := range mismatches {
			log.Error().Str("section", m.Section).Str("key", m.Key).Msg(m.Kind.String())
		}
		if len(mismatches) > 0 {
			return fmt.Errorf("%d mismatch(es) against template", len(mismatches))
		}
	}
	return nil
}

func loadTemplate(path string, memCap int64) (*lsml.Data, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data, err := lsml.NewData(make([]byte, memCap))
	if err != nil {
		return nil, err
	}
	err = lsml.Parse(data, bufio.NewReader(bytes.NewReader(content)), lsml.ParseAll)
	if err != nil {
		return nil, err
	}
	return data, nil
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
