package options

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrUsage = errors.New("usage error")

// DefaultKMZ matches the sample product shipped alongside the tool.
const DefaultKMZ = "S1A_20251014_0551.kmz"

type OutputKind int

const (
	OutNone OutputKind = iota
	OutStatic
	OutAnimation
	OutKML
)

type Settings struct {
	Kmz         string
	Output      string
	DepthColumn string
	Sql         string
	NoShow      bool
	Animate     bool
	ShowLabels  bool
	Robust      bool
	Scale       float64
	Epsilon     float64
	Elev        float64
	Azim        float64
	Seed        int64
}

var Config = Settings{
	Kmz:   DefaultKMZ,
	Scale: 0.05,
	Elev:  45,
	Azim:  -120,
}

func Usage() {
	flag.Usage()
}

// ParseCLI fills Config from $FLOOD3D_OPTS defaults then the command
// line, and validates the combination.
func ParseCLI(gv func() string) error {
	app := filepath.Base(os.Args[0])
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s [options]\n", app)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintln(os.Stderr, gv())
	}

	defs := os.Getenv("FLOOD3D_OPTS")
	var parts []string
	for _, p := range strings.Split(defs, " ") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	envflags := flag.NewFlagSet("$FLOOD3D_OPTS", flag.ExitOnError)
	noshow := envflags.Bool("no-show", false, "no-show")
	labels := envflags.Bool("show-labels", false, "show-labels")
	robust := envflags.Bool("robust", false, "robust")
	scale := envflags.Float64("scale", Config.Scale, "scale")
	envflags.Parse(parts)
	Config.NoShow = *noshow
	Config.ShowLabels = *labels
	Config.Robust = *robust
	Config.Scale = *scale

	flag.StringVar(&Config.Kmz, "kmz", Config.Kmz, "Input KMZ (or KML) file")
	flag.StringVar(&Config.Kmz, "k", Config.Kmz, "Input KMZ file (shorthand)")
	flag.StringVar(&Config.Output, "output", "", "Output file; extension selects format (png,jpg,pdf,gif,mp4,kml,kmz)")
	flag.StringVar(&Config.Output, "o", "", "Output file (shorthand)")
	flag.BoolVar(&Config.NoShow, "no-show", Config.NoShow, "Skip the interactive terminal preview")
	flag.BoolVar(&Config.Animate, "animate", false, "Render a 360 degree rotation (gif/mp4 output)")
	flag.BoolVar(&Config.Animate, "a", false, "Animate (shorthand)")
	flag.BoolVar(&Config.ShowLabels, "show-labels", Config.ShowLabels, "Label each polygon with its depth at the centroid")
	flag.StringVar(&Config.DepthColumn, "depth-column", "", "Attribute column holding depth values")
	flag.Float64Var(&Config.Scale, "scale", Config.Scale, "Extrusion scale, visual height units per metre of depth")
	flag.Int64Var(&Config.Seed, "seed", 0, "Seed for synthetic depths (<=0: time based)")
	flag.Float64Var(&Config.Epsilon, "epsilon", 0, "Ring simplification tolerance, 0 disables")
	flag.BoolVar(&Config.Robust, "robust", Config.Robust, "Colour-normalise over the 5th..95th depth percentiles")
	flag.StringVar(&Config.Sql, "sql", "", "Also write polygon records to this SQLite file")
	flag.Float64Var(&Config.Elev, "elev", Config.Elev, "View elevation (degrees)")
	flag.Float64Var(&Config.Azim, "azim", Config.Azim, "View azimuth (degrees)")
	flag.Parse()

	return Config.Validate()
}

// OutputType classifies the output path by extension.
func (s *Settings) OutputType() (OutputKind, error) {
	if s.Output == "" {
		return OutNone, nil
	}
	switch strings.ToLower(filepath.Ext(s.Output)) {
	case ".png", ".jpg", ".jpeg", ".pdf":
		return OutStatic, nil
	case ".gif", ".mp4":
		return OutAnimation, nil
	case ".kml", ".kmz":
		return OutKML, nil
	default:
		return OutNone, fmt.Errorf("%w: unrecognised output extension %q", ErrUsage, filepath.Ext(s.Output))
	}
}

// Validate rejects incompatible flag combinations before any loading
// or rendering starts.
func (s *Settings) Validate() error {
	kind, err := s.OutputType()
	if err != nil {
		return err
	}
	if s.Animate && (kind == OutStatic || kind == OutKML) {
		return fmt.Errorf("%w: -animate needs a gif/mp4 output, not %q", ErrUsage, filepath.Ext(s.Output))
	}
	if !s.Animate && kind == OutAnimation {
		return fmt.Errorf("%w: %q output requires -animate", ErrUsage, filepath.Ext(s.Output))
	}
	if s.Scale <= 0 {
		return fmt.Errorf("%w: -scale must be positive", ErrUsage)
	}
	return nil
}

// StaticFormat is the EncodeStatic format string for the output path.
func (s *Settings) StaticFormat() string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(s.Output)), ".")
}
