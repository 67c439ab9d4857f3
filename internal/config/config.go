package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/menta2k/sticker-editor/pkg/placement"
	"github.com/menta2k/sticker-editor/pkg/raster"
	"github.com/menta2k/sticker-editor/pkg/render"
	"github.com/menta2k/sticker-editor/pkg/session"
)

// appConfigFile is the config location relative to the XDG config dirs
const appConfigFile = "sticker-editor/config.json"

// Config holds the application configuration
type Config struct {
	Editor   EditorConfig   `json:"editor"`
	Viewport ViewportConfig `json:"viewport"`
	Stickers StickersConfig `json:"stickers"`
	Export   ExportConfig   `json:"export"`
}

// EditorConfig holds sticker sizing and zoom behaviour
type EditorConfig struct {
	StickerWidth float64 `json:"sticker_width"`
	MinZoom      float64 `json:"min_zoom"`
	MaxZoom      float64 `json:"max_zoom"`
	ZoomStep     float64 `json:"zoom_step"`
}

// ViewportConfig holds the initial canvas size
type ViewportConfig struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// StickersConfig holds the sticker library settings
type StickersConfig struct {
	Dir       string `json:"dir"`
	CacheSize int    `json:"cache_size"`
}

// ExportConfig holds configuration for the flattened output
type ExportConfig struct {
	Format        string `json:"format"`
	Quality       int    `json:"quality"`
	Lossless      bool   `json:"lossless"`
	Backdrop      string `json:"backdrop"`
	Interpolation string `json:"interpolation"`
	OutputDir     string `json:"output_dir"`
	Suffix        string `json:"suffix"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			StickerWidth: 250,
			MinZoom:      0.5,
			MaxZoom:      3,
			ZoomStep:     0.1,
		},
		Viewport: ViewportConfig{
			Width:  1280,
			Height: 720,
		},
		Stickers: StickersConfig{
			Dir:       "./stickers",
			CacheSize: 64,
		},
		Export: ExportConfig{
			Format:        "png",
			Quality:       90,
			Interpolation: "bilinear",
			OutputDir:     "./output",
			Suffix:        "_edited",
		},
	}
}

// LoadFromFile loads configuration from a JSON file. Missing fields keep
// their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Load reads filename, or the default config path when filename is empty.
// A missing default file yields the defaults.
func Load(filename string) (*Config, error) {
	if filename != "" {
		return LoadFromFile(filename)
	}

	path := GetConfigPath()
	cfg, err := LoadFromFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Editor.StickerWidth <= 0 {
		return fmt.Errorf("editor.sticker_width must be positive")
	}

	if err := c.ZoomLimits().Validate(); err != nil {
		return fmt.Errorf("editor: %w", err)
	}

	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return fmt.Errorf("viewport.width and viewport.height must be positive")
	}

	if c.Stickers.CacheSize < 0 {
		return fmt.Errorf("stickers.cache_size cannot be negative")
	}

	if _, err := raster.ParseFormat(c.Export.Format); err != nil {
		return fmt.Errorf("export.format: %w", err)
	}

	if c.Export.Quality < 1 || c.Export.Quality > 100 {
		return fmt.Errorf("export.quality must be between 1 and 100")
	}

	if _, err := render.NewRenderer(c.RenderOptions()); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	return nil
}

// ZoomLimits returns the editor's zoom range
func (c *Config) ZoomLimits() placement.ZoomLimits {
	return placement.ZoomLimits{Min: c.Editor.MinZoom, Max: c.Editor.MaxZoom, Step: c.Editor.ZoomStep}
}

// SessionConfig converts the configuration for a new editing session
func (c *Config) SessionConfig() session.Config {
	return session.Config{
		StickerWidth: c.Editor.StickerWidth,
		Zoom:         c.ZoomLimits(),
		Viewport:     placement.Viewport{Width: c.Viewport.Width, Height: c.Viewport.Height},
	}
}

// RenderOptions converts the export section for the renderer
func (c *Config) RenderOptions() render.Options {
	return render.Options{Backdrop: c.Export.Backdrop, Interpolation: c.Export.Interpolation}
}

// EncodeOptions converts the export section for the encoder
func (c *Config) EncodeOptions() raster.EncodeOptions {
	return raster.EncodeOptions{Quality: c.Export.Quality, Lossless: c.Export.Lossless}
}

// GetConfigPath returns the configuration file path, preferring an existing
// file in any XDG config directory
func GetConfigPath() string {
	if path, err := xdg.SearchConfigFile(appConfigFile); err == nil {
		return path
	}
	return filepath.Join(xdg.ConfigHome, appConfigFile)
}
