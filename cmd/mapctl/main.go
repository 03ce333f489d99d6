// Command mapctl inspects and edits stored hex maps without running the
// editor host.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/talgya/hexmap/internal/config"
	"github.com/talgya/hexmap/internal/mapdata"
	"github.com/talgya/hexmap/internal/persistence"
	"github.com/talgya/hexmap/internal/world"
)

const usage = `usage: mapctl <command> [flags] [args]

commands:
  list                       list stored maps
  show <map>                 print a map summary and terrain counts
  new [-w N] [-h N] [-size F] [-paint] [-seed N] <map>
                             generate and save a new map
  resize <map> <width> <height>
                             regenerate a stored map at new dimensions, keeping overlapping tiles
  neighbors <q> <r>          print the six neighbors of a coordinate
  rm <map>                   delete a stored map
`

func main() {
	cfg, err := config.Load(envOrDefault("CONFIG_PATH", "configs/hexeditor.yaml"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	// Logs go to stderr so command output stays clean.
	slog.SetDefault(cfg.Log.NewLogger(os.Stderr))

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err := run(cfg, os.Args[1], os.Args[2:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "mapctl %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

var errUsage = errors.New("bad arguments, run mapctl without arguments for usage")

func run(cfg *config.Config, cmd string, args []string, out io.Writer) error {
	if cmd == "neighbors" {
		return neighbors(args, out)
	}

	store, err := persistence.Open(cfg.Storage.Backend, cfg.Storage.Dir, cfg.Storage.SQLitePath)
	if err != nil {
		return err
	}
	defer store.Close()

	switch cmd {
	case "list":
		return list(store, out)
	case "show":
		if len(args) != 1 {
			return errUsage
		}
		return show(store, args[0], out)
	case "new":
		return create(store, cfg, args, out)
	case "resize":
		return resize(store, args, out)
	case "rm":
		if len(args) != 1 {
			return errUsage
		}
		name := persistence.FileName(args[0])
		if err := store.Delete(name); err != nil {
			return err
		}
		fmt.Fprintf(out, "deleted %s\n", persistence.DisplayName(name))
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func list(store persistence.Store, out io.Writer) error {
	entries, err := store.Entries()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "no maps stored")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTILES\tMODIFIED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Display, humanize.Comma(int64(e.Tiles)), humanize.Time(e.Modified))
	}
	return tw.Flush()
}

func show(store persistence.Store, display string, out io.Writer) error {
	name := persistence.FileName(display)
	doc, err := store.Load(name)
	if err != nil {
		return err
	}
	g := world.NewGrid(doc.Width, doc.Height, doc.HexSize)
	report, err := mapdata.ApplyDocument(doc, g)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s\n", persistence.DisplayName(name))
	fmt.Fprintf(out, "  size      %dx%d (hex size %g)\n", doc.Width, doc.Height, doc.HexSize)
	fmt.Fprintf(out, "  version   %d\n", doc.Version)
	fmt.Fprintf(out, "  created   %s\n", doc.CreatedDate)
	fmt.Fprintf(out, "  modified  %s\n", doc.LastModified)
	fmt.Fprintf(out, "  tiles     %s applied, %d defaulted, %d dropped\n",
		humanize.Comma(int64(report.Applied)), report.Defaulted, report.Dropped)
	b := g.Layout().Backing
	fmt.Fprintf(out, "  backing   %.3f x %.3f\n", b.Width, b.Height)

	counts := world.TerrainCounts(g)
	for _, tmpl := range world.Templates() {
		if n := counts[tmpl.Name]; n > 0 {
			fmt.Fprintf(out, "  %-9s %s\n", tmpl.Name, humanize.Comma(int64(n)))
			delete(counts, tmpl.Name)
		}
	}
	for tag, n := range counts {
		fmt.Fprintf(out, "  %-9s %s (no template)\n", tag, humanize.Comma(int64(n)))
	}
	return nil
}

func create(store persistence.Store, cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("new", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	width := fs.Int("w", cfg.Grid.Width, "grid width")
	height := fs.Int("h", cfg.Grid.Height, "grid height")
	size := fs.Float64("size", cfg.Grid.HexSize, "hex size")
	paint := fs.Bool("paint", false, "fill with procedural terrain")
	seed := fs.Int64("seed", 0, "terrain seed (0 = random)")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return errUsage
	}
	name := persistence.FileName(fs.Arg(0))
	if store.Exists(name) {
		return fmt.Errorf("map %q already exists", persistence.DisplayName(name))
	}

	g := world.NewGrid(max(1, *width), max(1, *height), *size)
	g.Generate()
	if *paint {
		pc := world.DefaultPaintConfig()
		pc.Seed = *seed
		*seed = world.Paint(g, pc)
	}
	if _, err := mapdata.NewService(store).SaveGrid(g, name); err != nil {
		return err
	}
	fmt.Fprintf(out, "created %s: %s tiles", persistence.DisplayName(name), humanize.Comma(int64(g.TileCount())))
	if *paint {
		fmt.Fprintf(out, " (seed %d)", *seed)
	}
	fmt.Fprintln(out)
	return nil
}

func resize(store persistence.Store, args []string, out io.Writer) error {
	if len(args) != 3 {
		return errUsage
	}
	width, err1 := strconv.Atoi(args[1])
	height, err2 := strconv.Atoi(args[2])
	if err1 != nil || err2 != nil || width < 1 || height < 1 {
		return errUsage
	}

	name := persistence.FileName(args[0])
	svc := mapdata.NewService(store)
	g := world.NewGrid(0, 0, 1)
	if _, _, err := svc.LoadGrid(g, name); err != nil {
		return err
	}

	// Re-apply the current tiles onto the new dimensions; tiles outside are
	// dropped and new cells keep defaults.
	doc := mapdata.ToDocument(g)
	doc.Width, doc.Height = width, height
	report, err := mapdata.ApplyDocument(doc, g)
	if err != nil {
		return err
	}
	if _, err := svc.SaveGrid(g, name); err != nil {
		return err
	}
	fmt.Fprintf(out, "resized %s to %dx%d: %d kept, %d new, %d dropped\n",
		persistence.DisplayName(name), width, height, report.Applied, report.Defaulted, report.Dropped)
	return nil
}

func neighbors(args []string, out io.Writer) error {
	if len(args) != 2 {
		return errUsage
	}
	q, err1 := strconv.Atoi(args[0])
	r, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		return errUsage
	}
	c := world.HexCoord{Q: q, R: r}
	for dir, n := range c.Neighbors() {
		fmt.Fprintf(out, "%d %s\n", dir, n)
	}
	return nil
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
