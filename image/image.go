// SPDX-License-Identifier: GPL-2.0-or-later

package image

import (
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"

	"godark/qerr"
)

// Write stores img as png file name.
func Write(name string, img *image.NRGBA) error {
	if img == nil {
		return qerr.Format("no image data for %s", name)
	}
	f, err := os.Create(name)
	if err != nil {
		slog.Error("Create image", slog.String("file", name), slog.Any("err", err))
		return qerr.IO("create", err)
	}
	defer f.Close()

	if err := Encode(f, img); err != nil {
		slog.Error("Write image", slog.String("file", name), slog.Any("err", err))
		return err
	}
	return nil
}

func Encode(w io.Writer, img *image.NRGBA) error {
	return qerr.IO("encode png", png.Encode(w, img))
}
