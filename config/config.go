// Package config holds the configuration of the thumbnail embedder.  The
// configuration is loaded once from the defaults and the optional TOML file,
// and is not modified afterwards.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/rusq/gcodethumb/fontmgr"
	"github.com/rusq/gcodethumb/gcode"
	"github.com/rusq/gcodethumb/printers"
	"github.com/rusq/gcodethumb/thumb"
)

// ConfigFile is the path of the configuration file, relative to the XDG
// config directories.
var ConfigFile = filepath.Join("gcodethumb", "config.toml")

var ErrInvalid = errors.New("invalid configuration")

const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

type Config struct {
	// MinThumbnailSize is the minimum width and height of the source
	// thumbnail.
	MinThumbnailSize int      `koanf:"min_thumbnail_size"`
	Currency         string   `koanf:"currency"`
	Censor           []string `koanf:"censor"` // slicer names to hide from the firmware
	BlockSize        int      `koanf:"block_size"`
	JPEGQuality      int      `koanf:"jpeg_quality"`
	MaxColors        int      `koanf:"colors"` // packed palette size limit

	Font     Font     `koanf:"font"`
	Footer   Footer   `koanf:"footer"`
	Klipper  Klipper  `koanf:"klipper"`
	Palette  Palette  `koanf:"palette"`
	Families Families `koanf:"families"`

	colors Colors
}

type Font struct {
	Name string  `koanf:"name"` // built-in font name or font file
	Size float64 `koanf:"size"`
	DPI  float64 `koanf:"dpi"`
}

type Footer struct {
	Name string `koanf:"name"`
	URL  string `koanf:"url"`
}

type Klipper struct {
	Small int `koanf:"small"`
	Large int `koanf:"large"`
}

// Palette is the set of hex colours, i.e. "#1e2434".
type Palette struct {
	TextDark   string `koanf:"text_dark"`  // text on light backgrounds
	TextLight  string `koanf:"text_light"` // text on dark backgrounds
	DarkBase   string `koanf:"dark_base"`
	DarkBand   string `koanf:"dark_band"`
	DarkPanel  string `koanf:"dark_panel"`
	LightBase  string `koanf:"light_base"`
	LightBand  string `koanf:"light_band"`
	LightPanel string `koanf:"light_panel"`
}

// Colors is the parsed Palette.
type Colors struct {
	TextDark, TextLight              color.Color
	DarkBase, DarkBand, DarkPanel    color.Color
	LightBase, LightBand, LightPanel color.Color
}

type Families struct {
	Legacy Family `koanf:"legacy"`
	Packed Family `koanf:"packed"`
	JPEG   Family `koanf:"jpeg"`
}

type Family struct {
	Models  []string `koanf:"models"`
	Targets []Target `koanf:"targets"`
	// Theme is the procedural background theme, "dark" or "light".
	Theme string `koanf:"theme"`
	// Background is the background image file, it overrides the theme.
	Background string `koanf:"background"`
}

type Target struct {
	Width  int    `koanf:"width"`
	Height int    `koanf:"height"`
	Marker string `koanf:"marker"`
}

// Default returns the default configuration.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		panic(err)
	}
	return &cfg
}

// Load loads the configuration from the file.  If filename is empty, the
// file is searched in the XDG config directories, and if there is none, the
// defaults are returned.
func Load(filename string) (*Config, error) {
	k := koanf.New(".")
	if path := locate(filename); path != "" {
		slog.Debug("loading configuration", "filename", path)
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading %s: %w", path, err)
		}
	}
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error parsing configuration: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func locate(filename string) string {
	if filename != "" {
		return filename
	}
	path, err := xdg.SearchConfigFile(ConfigFile)
	if err != nil {
		return ""
	}
	return path
}

func (c *Config) applyDefaults() {
	setDefault(&c.MinThumbnailSize, 300)
	setDefault(&c.Currency, "€")
	if c.Censor == nil {
		c.Censor = gcode.DefaultCensor
	}
	setDefault(&c.BlockSize, thumb.DefaultBlockSize)
	setDefault(&c.JPEGQuality, thumb.DefaultJPEGQuality)
	setDefault(&c.MaxColors, 1024)

	setDefault(&c.Font.Name, fontmgr.DefaultFont)
	setDefault(&c.Font.Size, fontmgr.DefaultSize)
	setDefault(&c.Font.DPI, fontmgr.DefaultDPI)

	setDefault(&c.Footer.Name, thumb.DefaultName)
	setDefault(&c.Footer.URL, thumb.DefaultURL)

	setDefault(&c.Klipper.Small, thumb.DefaultKlipperSmall)
	setDefault(&c.Klipper.Large, thumb.DefaultKlipperLarge)

	p := &c.Palette
	setDefault(&p.TextDark, "#3f3f3f")
	setDefault(&p.TextLight, "#c8c8c8")
	setDefault(&p.DarkBase, "#1e2434")
	setDefault(&p.DarkBand, "#2e364b")
	setDefault(&p.DarkPanel, "#30394f")
	setDefault(&p.LightBase, "#ffffff")
	setDefault(&p.LightBand, "#ebebeb")
	setDefault(&p.LightPanel, "#c8c8c8")

	c.Families.Legacy.applyDefaults(printers.LegacyModels, thumb.DefaultLayout[thumb.FamilyLegacy], ThemeDark)
	c.Families.Packed.applyDefaults(printers.PackedModels, thumb.DefaultLayout[thumb.FamilyPacked], ThemeDark)
	c.Families.JPEG.applyDefaults(printers.JPEGModels, thumb.DefaultLayout[thumb.FamilyJPEG], ThemeLight)
}

func (f *Family) applyDefaults(models []string, targets []thumb.Target, theme string) {
	if f.Models == nil {
		f.Models = models
	}
	if f.Targets == nil {
		for _, t := range targets {
			f.Targets = append(f.Targets, Target{Width: t.Width, Height: t.Height, Marker: t.Marker})
		}
	}
	setDefault(&f.Theme, theme)
}

func setDefault[T comparable](v *T, def T) {
	var zero T
	if *v == zero {
		*v = def
	}
}

func (c *Config) validate() error {
	if c.MinThumbnailSize < 1 {
		return fmt.Errorf("%w: min_thumbnail_size must be positive", ErrInvalid)
	}
	if c.BlockSize < 16 {
		return fmt.Errorf("%w: block_size must be at least 16", ErrInvalid)
	}
	if c.JPEGQuality < 1 || 100 < c.JPEGQuality {
		return fmt.Errorf("%w: jpeg_quality must be in [1, 100]", ErrInvalid)
	}
	if c.MaxColors < 1 {
		return fmt.Errorf("%w: colors must be positive", ErrInvalid)
	}
	for name, fam := range map[string]Family{
		"legacy": c.Families.Legacy,
		"packed": c.Families.Packed,
		"jpeg":   c.Families.JPEG,
	} {
		if fam.Theme != ThemeDark && fam.Theme != ThemeLight {
			return fmt.Errorf("%w: families.%s: unknown theme %q", ErrInvalid, name, fam.Theme)
		}
		for i, t := range fam.Targets {
			if t.Width < 1 || t.Height < 1 || t.Marker == "" {
				return fmt.Errorf("%w: families.%s.targets[%d]: width, height and marker are required", ErrInvalid, name, i)
			}
		}
	}
	var err error
	c.colors, err = c.Palette.parse()
	return err
}

func (p Palette) parse() (Colors, error) {
	var (
		cs  Colors
		err error
	)
	for _, pc := range []struct {
		name string
		hex  string
		dst  *color.Color
	}{
		{"text_dark", p.TextDark, &cs.TextDark},
		{"text_light", p.TextLight, &cs.TextLight},
		{"dark_base", p.DarkBase, &cs.DarkBase},
		{"dark_band", p.DarkBand, &cs.DarkBand},
		{"dark_panel", p.DarkPanel, &cs.DarkPanel},
		{"light_base", p.LightBase, &cs.LightBase},
		{"light_band", p.LightBand, &cs.LightBand},
		{"light_panel", p.LightPanel, &cs.LightPanel},
	} {
		if *pc.dst, err = parseHex(pc.hex); err != nil {
			return Colors{}, fmt.Errorf("%w: palette.%s: %w", ErrInvalid, pc.name, err)
		}
	}
	return cs, nil
}

func parseHex(s string) (color.Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, err
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// Colors returns the parsed palette.
func (c *Config) Colors() Colors {
	return c.colors
}

// Layout returns the encoding targets per family.
func (c *Config) Layout() thumb.Layout {
	l := make(thumb.Layout, 3)
	for f, fam := range c.families() {
		ts := make([]thumb.Target, 0, len(fam.Targets))
		for _, t := range fam.Targets {
			ts = append(ts, thumb.Target{Width: t.Width, Height: t.Height, Marker: t.Marker})
		}
		l[f] = ts
	}
	return l
}

// Models returns the printer model lists per family.
func (c *Config) Models() map[thumb.Family][]string {
	m := make(map[thumb.Family][]string, 3)
	for f, fam := range c.families() {
		m[f] = fam.Models
	}
	return m
}

// Family returns the configuration of the family.
func (c *Config) Family(f thumb.Family) (Family, bool) {
	fam, ok := c.families()[f]
	return fam, ok
}

func (c *Config) families() map[thumb.Family]Family {
	return map[thumb.Family]Family{
		thumb.FamilyLegacy: c.Families.Legacy,
		thumb.FamilyPacked: c.Families.Packed,
		thumb.FamilyJPEG:   c.Families.JPEG,
	}
}
