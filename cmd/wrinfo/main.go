// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"godark/chunk"
	"godark/conlog"
	"godark/cvar"
	"godark/filesystem"
	"godark/image"
	"godark/lightmap"
	"godark/worldrep"
)

func report(w io.Writer, wr *worldrep.World, atlases []*lightmap.Atlas) error {
	polys, textured, lightmaps, variants := 0, 0, 0, 0
	for _, c := range wr.Cells {
		polys += len(c.Polygons)
		textured += len(c.Texturing)
		for _, lm := range c.Lightmaps {
			lightmaps++
			variants += len(lm.Lights())
		}
	}
	var err error
	p := func(format string, args ...interface{}) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}
	p("format     %s\n", wr.Format)
	p("cells      %d\n", len(wr.Cells))
	p("polygons   %d (%d textured)\n", polys, textured)
	p("portals    %d\n", len(wr.Portals))
	p("bsp planes %d\n", len(wr.Planes))
	mins, maxs := wr.Bounds()
	p("bounds     (%g %g %g) - (%g %g %g)\n", mins.X, mins.Y, mins.Z, maxs.X, maxs.Y, maxs.Z)
	p("lightmaps  %d (%d animated variants)\n", lightmaps, variants)
	p("atlases    %d\n", len(atlases))
	for _, a := range atlases {
		used, total := a.Usage()
		p("  %s %4dx%-4d %5d lightmaps %3d%% used\n",
			a.ID, a.Width(), a.Height(), len(a.Lightmaps()), 100*used/max(total, 1))
	}
	return err
}

func dumpAtlases(dir string, atlases []*lightmap.Atlas) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "atlas dir")
	}
	for _, a := range atlases {
		if a.Image() == nil {
			continue
		}
		if err := image.Write(filepath.Join(dir, a.ID.String()+".png"), a.Image()); err != nil {
			return err
		}
	}
	return nil
}

func loadConfig(name string) error {
	f, err := filesystem.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()
	return errors.Wrap(cvar.LoadTOML(f), name)
}

func run(ctx *cli.Context) error {
	if ctx.Bool("cvars") {
		return cvar.List(ctx.App.Writer)
	}
	if ctx.Args().Len() != 1 {
		return cli.ShowAppHelp(ctx)
	}
	if cfg := ctx.String("config"); cfg != "" {
		if err := loadConfig(cfg); err != nil {
			return err
		}
	}
	name := ctx.Args().First()
	src, err := filesystem.Open(name)
	if err != nil {
		return err
	}
	defer src.Close()
	c, err := chunk.Open(src)
	if err != nil {
		return errors.Wrap(err, name)
	}
	defer c.Close()

	opts := worldrep.DefaultOptions()
	wr, err := worldrep.Load(c, opts)
	if err != nil {
		return errors.Wrap(err, name)
	}
	if err := report(ctx.App.Writer, wr, opts.Atlases.Atlases()); err != nil {
		return err
	}
	if dir := ctx.String("atlas-dir"); dir != "" {
		return dumpAtlases(dir, opts.Atlases.Atlases())
	}
	return nil
}

func main() {
	app := &cli.App{
		Name:      "wrinfo",
		Usage:     "inspect the world representation of a mission file",
		UsageText: "wrinfo [--atlas-dir DIR] [--config FILE] FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "atlas-dir", Usage: "write the lightmap atlases as png into `DIR`"},
			&cli.StringFlag{Name: "config", Usage: "load cvars from the toml `FILE`"},
			&cli.BoolFlag{Name: "cvars", Usage: "list the cvars and exit"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "debug logging"},
		},
		Before: func(ctx *cli.Context) error {
			conlog.Init(os.Stderr, conlog.Level(ctx.Bool("verbose"), false))
			return nil
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "wrinfo: %v\n", err)
		os.Exit(1)
	}
}
