// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"godark/chunk"
	"godark/conlog"
	"godark/filesystem"
)

type entry struct {
	name         string
	size         int64
	major, minor uint32
}

func entries(c *chunk.Container) ([]entry, error) {
	var es []entry
	for _, n := range c.Names() {
		h, err := c.FileHeader(n)
		if err != nil {
			return nil, err
		}
		f, err := c.GetFile(n)
		if err != nil {
			return nil, err
		}
		es = append(es, entry{name: n, size: f.Size(), major: h.Major, minor: h.Minor})
		if err := f.Close(); err != nil {
			return nil, err
		}
	}
	return es, nil
}

func list(w io.Writer, c *chunk.Container) error {
	es, err := entries(c)
	if err != nil {
		return err
	}
	for _, e := range es {
		if _, err := fmt.Fprintf(w, "%-12s %10d  %d.%d\n", e.name, e.size, e.major, e.minor); err != nil {
			return err
		}
	}
	return nil
}

func listJSON(w io.Writer, c *chunk.Container) error {
	es, err := entries(c)
	if err != nil {
		return err
	}
	chunks := make([]interface{}, 0, len(es))
	for _, e := range es {
		chunks = append(chunks, map[string]interface{}{
			"name":  e.name,
			"size":  e.size,
			"major": e.major,
			"minor": e.minor,
		})
	}
	s, err := structpb.NewStruct(map[string]interface{}{"chunks": chunks})
	if err != nil {
		return errors.Wrap(err, "build listing")
	}
	b, err := protojson.MarshalOptions{Multiline: true}.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "marshal listing")
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func extract(c *chunk.Container, name, out string) error {
	f, err := c.GetFile(name)
	if err != nil {
		return err
	}
	defer f.Close()
	o, err := filesystem.Create(out)
	if err != nil {
		return err
	}
	if _, err := filesystem.Copy(o, f); err != nil {
		o.Close()
		return err
	}
	return o.Close()
}

func run(ctx *cli.Context) error {
	args := ctx.Args()
	if args.Len() != 1 && args.Len() != 3 {
		return cli.ShowAppHelp(ctx)
	}
	src, err := filesystem.Open(args.Get(0))
	if err != nil {
		return err
	}
	defer src.Close()
	c, err := chunk.Open(src)
	if err != nil {
		return errors.Wrap(err, args.Get(0))
	}
	defer c.Close()

	if args.Len() == 3 {
		return extract(c, args.Get(1), args.Get(2))
	}
	if ctx.Bool("json") {
		return listJSON(ctx.App.Writer, c)
	}
	return list(ctx.App.Writer, c)
}

func main() {
	app := &cli.App{
		Name:      "chunk",
		Usage:     "list or extract the chunks of a tagged database file",
		UsageText: "chunk [--json] FILE [CHUNK OUTFILE]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print the listing as JSON"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log chunk details"},
		},
		Before: func(ctx *cli.Context) error {
			conlog.Init(os.Stderr, conlog.Level(ctx.Bool("verbose"), false))
			return nil
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "chunk: %v\n", err)
		os.Exit(1)
	}
}
