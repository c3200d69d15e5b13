package flsql

import (
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"flood3d/pkg/depth"
	"flood3d/pkg/prism"
)

const SCHEMA = `CREATE TABLE IF NOT EXISTS meta (id integer NOT NULL PRIMARY KEY,
 src text, crs text, npoly integer, skipped integer,
 dmin double precision, dmax double precision,
 depth_column text, synthetic integer, generated timestamp);
CREATE TABLE IF NOT EXISTS polygons (id integer NOT NULL PRIMARY KEY, name text,
 vertices integer, clon double precision, clat double precision,
 depth double precision, height double precision, fill text)`

const IMETA = `insert into meta (id, src, crs, npoly, skipped, dmin, dmax, depth_column, synthetic, generated)
 values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
const IPOLY = `insert into polygons (id, name, vertices, clon, clat, depth, height, fill)
 values ($1,$2,$3,$4,$5,$6,$7,$8)`

// DBL is the record dump target: one meta row per run, one row per
// extruded polygon. The file is recreated on every invocation.
type DBL struct {
	db *sqlx.DB
}

func NewDB(fn string) (*DBL, error) {
	os.Remove(fn)
	db, err := sqlx.Connect("sqlite", fn)
	if err != nil {
		return nil, err
	}
	if _, err = db.Exec(SCHEMA); err != nil {
		db.Close()
		return nil, err
	}
	return &DBL{db: db}, nil
}

func (d *DBL) WriteMeta(src, crs string, npoly, skipped int, st depth.Stats, res depth.Result) error {
	synth := 0
	if res.Synthetic {
		synth = 1
	}
	_, err := d.db.Exec(IMETA, 1, src, crs, npoly, skipped,
		st.Min, st.Max, res.Column, synth, time.Now().UTC())
	return err
}

func (d *DBL) WritePolygons(prisms []*prism.Prism, fill func(float64) string) error {
	tx, err := d.db.Beginx()
	if err != nil {
		return err
	}
	for i, p := range prisms {
		_, err = tx.Exec(IPOLY, i, p.Name, len(p.Top)-1, p.CX, p.CY, p.Depth, p.Height, fill(p.Depth))
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("polygons: %w", err)
		}
	}
	return tx.Commit()
}

func (d *DBL) Close() error {
	return d.db.Close()
}
