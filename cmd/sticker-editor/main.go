package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	stickereditor "github.com/menta2k/sticker-editor"
	"github.com/menta2k/sticker-editor/internal/config"
	"github.com/menta2k/sticker-editor/internal/utils"
	"github.com/menta2k/sticker-editor/pkg/raster"
	"github.com/menta2k/sticker-editor/pkg/stickers"
	"github.com/menta2k/sticker-editor/pkg/types"
)

func main() {
	var cfgPath, scriptPath, bg, stickerDir, out, ext, backdrop string
	var quality int
	var lossless, list, saveConfig, verbose bool
	var width, height float64

	flag.StringVar(&cfgPath, "config", "", "config file (default: XDG config dir)")
	flag.StringVar(&scriptPath, "script", "", "JSON edit script to replay")
	flag.StringVar(&bg, "bg", "", "background image (overrides the script's background)")
	flag.StringVar(&stickerDir, "stickers", "", "sticker directory (overrides config)")
	flag.StringVar(&out, "out", "", "output file (default: <output_dir>/<background><suffix>.<ext>)")
	flag.StringVar(&ext, "ext", "", "output format: png|jpg|webp (overrides config)")
	flag.IntVar(&quality, "quality", 0, "JPEG/WebP quality 1-100 (overrides config)")
	flag.BoolVar(&lossless, "lossless", false, "WebP lossless mode")
	flag.StringVar(&backdrop, "backdrop", "", "hex colour under the background, e.g. #ffffff")
	flag.Float64Var(&width, "w", 0, "viewport width (overrides config)")
	flag.Float64Var(&height, "h", 0, "viewport height (overrides config)")
	flag.BoolVar(&list, "list", false, "list available stickers and exit")
	flag.BoolVar(&saveConfig, "save-config", false, "write the effective config to the config path and exit")
	flag.BoolVar(&verbose, "v", false, "log every editing step")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	applyOverrides(cfg, stickerDir, ext, backdrop, quality, lossless, width, height)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	if saveConfig {
		path := cfgPath
		if path == "" {
			path = config.GetConfigPath()
		}
		if err := cfg.SaveToFile(path); err != nil {
			log.Fatal(err)
		}
		log.Printf("wrote %s", path)
		return
	}

	var lib *stickers.Library
	if utils.DirExists(cfg.Stickers.Dir) {
		lib, err = stickers.Open(cfg.Stickers.Dir, cfg.Stickers.CacheSize)
		if err != nil {
			log.Fatal(err)
		}
	}

	if list {
		listStickers(lib, cfg.Stickers.Dir)
		return
	}

	script := &types.Script{}
	baseDir := ""
	if scriptPath != "" {
		script, err = types.LoadScript(scriptPath)
		if err != nil {
			log.Fatal(err)
		}
		baseDir = filepath.Dir(scriptPath)
	}
	if bg != "" {
		script.Background, err = filepath.Abs(bg)
		if err != nil {
			log.Fatal(err)
		}
	}
	if script.Background == "" {
		log.Fatalf("usage: %s -bg photo.jpg [-script edit.json] [-stickers dir] [-out edited.png] [-ext png|jpg|webp]", filepath.Base(os.Args[0]))
	}

	editor, err := stickereditor.NewWithConfig(cfg.SessionConfig(), cfg.RenderOptions(), cfg.EncodeOptions(), lib)
	if err != nil {
		log.Fatal(err)
	}
	if verbose {
		editor.SetLogger(log.Default())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := editor.RunScript(ctx, script, baseDir)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("replayed %d steps, %d stickers on canvas", res.Steps, len(editor.Session().Overlays()))

	if out == "" {
		out = utils.GenerateOutputFilename(script.Background, cfg.Export.OutputDir, cfg.Export.Suffix, cfg.Export.Format)
	}
	if err := utils.EnsureDir(filepath.Dir(out)); err != nil {
		log.Fatal(err)
	}

	format := raster.FormatFromPath(out)
	f, err := os.Create(out)
	if err != nil {
		log.Fatal(err)
	}
	if err := editor.Export(f, format); err != nil {
		f.Close()
		log.Fatalf("export failed: %v", err)
	}
	if err := f.Close(); err != nil {
		log.Fatal(err)
	}

	if info, err := os.Stat(out); err == nil {
		log.Printf("wrote %s (%s)", out, utils.FormatFileSize(info.Size()))
	}
}

func applyOverrides(cfg *config.Config, stickerDir, ext, backdrop string, quality int, lossless bool, width, height float64) {
	if stickerDir != "" {
		cfg.Stickers.Dir = stickerDir
	}
	if ext != "" {
		cfg.Export.Format = ext
	}
	if backdrop != "" {
		cfg.Export.Backdrop = backdrop
	}
	if quality > 0 {
		cfg.Export.Quality = quality
	}
	if lossless {
		cfg.Export.Lossless = true
	}
	if width > 0 {
		cfg.Viewport.Width = width
	}
	if height > 0 {
		cfg.Viewport.Height = height
	}
}

func listStickers(lib *stickers.Library, dir string) {
	if lib == nil {
		log.Fatalf("sticker directory not found: %s", dir)
	}
	names, err := lib.List()
	if err != nil {
		log.Fatal(err)
	}
	for _, name := range names {
		img, err := lib.Get(name)
		if err != nil {
			fmt.Printf("%-40s  error: %v\n", name, err)
			continue
		}
		info := raster.Info(img)
		fmt.Printf("%-40s  %dx%d trimmed\n", name, info.Width, info.Height)
	}
}
