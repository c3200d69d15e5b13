package main

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/yookoala/realpath"

	"flood3d/pkg/anim"
	"flood3d/pkg/colors"
	"flood3d/pkg/depth"
	"flood3d/pkg/flsql"
	"flood3d/pkg/kmlgen"
	"flood3d/pkg/kmzgeo"
	"flood3d/pkg/options"
	"flood3d/pkg/prism"
	"flood3d/pkg/scene"
	"flood3d/pkg/show"
)

var GitCommit = "local"
var GitTag = "0.0.0"

func GetVersion() string {
	return fmt.Sprintf("%s %s commit:%s", filepath.Base(os.Args[0]), GitTag, GitCommit)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", filepath.Base(os.Args[0]), err)
		if errors.Is(err, options.ErrUsage) {
			options.Usage()
		}
		os.Exit(1)
	}
}

func run() error {
	if err := options.ParseCLI(GetVersion); err != nil {
		return err
	}
	cfg := &options.Config

	ds, err := kmzgeo.Load(cfg.Kmz)
	if err != nil {
		return err
	}

	res, err := depth.Resolve(ds.Records, cfg.DepthColumn, cfg.Seed)
	if err != nil {
		return err
	}
	st := depth.Summarize(res.Depths)

	mapper, err := colors.NewMapper(colors.Config{Robust: cfg.Robust}, st)
	if err != nil {
		return err
	}

	prisms, skipped := prism.BuildAll(ds.Records, res.Depths, cfg.Scale, cfg.Epsilon)
	if len(prisms) == 0 {
		return fmt.Errorf("%w: all %d polygons degenerate", kmzgeo.ErrFormat, len(ds.Records))
	}

	fmt.Printf("%-8.8s : %s (%s)\n", "Source", ds.Source, ds.CRS)
	fmt.Printf("%-8.8s : %d polygons", "Loaded", len(prisms))
	if skipped > 0 {
		fmt.Printf(" (%d degenerate, skipped)", skipped)
	}
	fmt.Println()
	if res.Synthetic {
		fmt.Printf("%-8.8s : no depth column, synthetic %.1f-%.1fm\n", "Depths",
			depth.FallbackMin, depth.FallbackMax)
	} else {
		fmt.Printf("%-8.8s : column %s\n", "Depths", res.Column)
	}
	fmt.Printf("%-8.8s : %.2fm to %.2fm (p05 %.2f, p95 %.2f)\n", "Range",
		st.Min, st.Max, st.P05, st.P95)

	style := scene.DefaultStyle()
	style.ShowLabels = cfg.ShowLabels
	sc := scene.New(prisms, mapper, style)
	sc.Elev = cfg.Elev
	sc.Azim = cfg.Azim

	if cfg.Sql != "" {
		if err = writeSQL(cfg.Sql, ds, prisms, skipped, st, res, mapper); err != nil {
			return err
		}
		show_output(cfg.Sql)
	}

	kind, _ := cfg.OutputType()
	switch kind {
	case options.OutKML:
		err = kmlgen.Generate(ds, prisms, mapper, res, st, cfg.ShowLabels, cfg.Output, GetVersion())
	case options.OutStatic:
		err = anim.WriteOutput(cfg.Output, func(w io.Writer) error {
			return sc.EncodeStatic(w, cfg.StaticFormat())
		})
	case options.OutAnimation:
		var enc anim.Encoder
		enc, err = anim.ForPath(cfg.Output)
		if err == nil {
			seq := anim.NewSequence(cfg.Azim, anim.DefaultStep)
			frames := anim.Frames(seq, func(az float64) image.Image {
				return sc.RenderAt(cfg.Elev, az)
			})
			err = anim.WriteOutput(cfg.Output, func(w io.Writer) error {
				return enc.Encode(w, frames, anim.DefaultFPS)
			})
		}
	}
	if err != nil {
		return err
	}
	if cfg.Output != "" {
		show_output(cfg.Output)
	}

	if !cfg.NoShow {
		return show.Preview(sc, cfg.Animate)
	}
	return nil
}

func writeSQL(fn string, ds *kmzgeo.Dataset, prisms []*prism.Prism, skipped int,
	st depth.Stats, res depth.Result, mapper *colors.Mapper) error {
	db, err := flsql.NewDB(fn)
	if err != nil {
		return err
	}
	defer db.Close()
	if err = db.WriteMeta(ds.Source, ds.CRS, len(prisms), skipped, st, res); err != nil {
		return err
	}
	return db.WritePolygons(prisms, func(d float64) string {
		c := mapper.Top(d)
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	})
}

func show_output(outfn string) {
	rp, err := realpath.Realpath(outfn)
	if err != nil || rp == "" {
		rp = outfn
	}
	size := ""
	if fi, err := os.Stat(outfn); err == nil {
		size = " (" + humanize.Bytes(uint64(fi.Size())) + ")"
	}
	fmt.Printf("%-8.8s : %s%s\n", "Output", rp, size)
}
