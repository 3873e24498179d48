package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/wifi-survey/internal/interp"
	"github.com/roman-kulish/wifi-survey/internal/storage"
	"github.com/roman-kulish/wifi-survey/internal/survey"
)

func runSample(ctx context.Context, a *App, args []string) error {
	var sessionID int64
	var x, y int

	fs := a.newFlagSet("sample")
	fs.Int64Var(&sessionID, "s", 0, "Session ID (default: new session)")
	fs.IntVar(&x, "x", 0, "Horizontal position on the floor plan")
	fs.IntVar(&y, "y", 0, "Vertical position on the floor plan")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	var hasX, hasY bool
	fs.Visit(func(f *flag.Flag) {
		hasX = hasX || f.Name == "x"
		hasY = hasY || f.Name == "y"
	})
	if !hasX || !hasY {
		return usageError(fs, "position -x and -y is required")
	}

	source, err := a.newSource(a.config.Scanner, a.logger)
	if err != nil {
		return err
	}

	id, err := a.sessionOrCreate(ctx, sessionID)
	if err != nil {
		return err
	}

	pos := survey.Position{X: x, Y: y}
	ps, err := source.Sample(ctx)
	if err != nil {
		return fmt.Errorf("sampling at %s: %w", pos, err)
	}

	if err = a.store.StoreSample(ctx, id, pos, ps); err != nil {
		return fmt.Errorf("storing sample: %w", err)
	}

	a.logger.Info("sample stored",
		slog.Int64("session", id),
		slog.String("position", pos.String()),
		slog.String("emitters", humanize.Comma(int64(len(ps)))))
	a.logger.Debug(ps.Text())
	return nil
}

func runImport(ctx context.Context, a *App, args []string) error {
	var sessionID int64
	var csvPath string

	fs := a.newFlagSet("import")
	fs.Int64Var(&sessionID, "s", 0, "Session ID (default: new session)")
	fs.StringVar(&csvPath, "csv", "", "Path to the CSV file")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if csvPath == "" {
		return usageError(fs, "csv file is required")
	}

	in, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("opening csv: %w", err)
	}
	defer in.Close()

	s := survey.NewStore()
	err = s.ReadCSV(in, survey.WithSampleHandler(func(pos survey.Position, ps survey.PointSample) {
		a.logger.Debug("sample loaded", slog.String("position", pos.String()), slog.Int("emitters", len(ps)))
	}))
	if err != nil {
		return fmt.Errorf("reading %s: %w", csvPath, err)
	}

	id, err := a.sessionOrCreate(ctx, sessionID)
	if err != nil {
		return err
	}

	if err = a.store.StoreSurvey(ctx, id, s); err != nil {
		return fmt.Errorf("storing survey: %w", err)
	}

	a.logger.Info("survey imported",
		slog.Int64("session", id),
		slog.String("source", csvPath),
		slog.String("positions", humanize.Comma(int64(s.Len()))),
		slog.String("emitters", humanize.Comma(int64(len(s.Emitters())))))
	return nil
}

func runExport(ctx context.Context, a *App, args []string) (err error) {
	var sessionID int64
	var csvPath string

	fs := a.newFlagSet("export")
	fs.Int64Var(&sessionID, "s", 0, "Session ID (default: latest session)")
	fs.StringVar(&csvPath, "csv", "", "Path to the CSV file, '-' for standard output")
	if err = parseFlags(fs, args); err != nil {
		return err
	}
	if csvPath == "" {
		return usageError(fs, "csv file is required")
	}

	sess, err := a.resolveSession(ctx, sessionID)
	if err != nil {
		return err
	}

	s, err := a.store.ReadSurvey(ctx, sess.ID)
	if err != nil {
		return err
	}

	out, err := a.createOutput(csvPath)
	if err != nil {
		return err
	}
	defer closeWithError(out, &err)

	if err = s.WriteCSV(out); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}

	a.logger.Info("survey exported",
		slog.Int64("session", sess.ID),
		slog.String("destination", csvPath),
		slog.String("positions", humanize.Comma(int64(s.Len()))),
		slog.String("size", humanize.Bytes(uint64(out.n))))
	return nil
}

func runSessions(ctx context.Context, a *App, args []string) error {
	fs := a.newFlagSet("sessions")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	sessions, err := a.store.Sessions(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tSTARTED\tFLOOR PLAN")
	for _, sess := range sessions {
		floorPlan := "-"
		if sess.FloorPlan != nil {
			floorPlan = *sess.FloorPlan
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", sess.ID, sess.Name, humanize.Time(sess.StartTime), floorPlan)
	}
	return tw.Flush()
}

func runEmitters(ctx context.Context, a *App, args []string) error {
	var sessionID int64
	var byKey bool

	fs := a.newFlagSet("emitters")
	fs.Int64Var(&sessionID, "s", 0, "Session ID (default: latest session)")
	fs.BoolVar(&byKey, "by-key", false, "Sort by BSSID instead of SSID")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	sess, err := a.resolveSession(ctx, sessionID)
	if err != nil {
		return err
	}

	s, err := a.store.ReadSurvey(ctx, sess.ID)
	if err != nil {
		return err
	}

	emitters := s.EmittersByLabel()
	if byKey {
		emitters = s.Emitters()
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "SSID\tBSSID\tSAMPLES")
	for _, e := range emitters {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Label, e.Key, humanize.Comma(int64(len(s.SamplesFor(e.Key)))))
	}
	return tw.Flush()
}

func runField(ctx context.Context, a *App, args []string) (err error) {
	var sessionID int64
	var key, outPath string
	var bands bool

	fs := a.newFlagSet("field")
	fs.Int64Var(&sessionID, "s", 0, "Session ID (default: latest session)")
	fs.StringVar(&key, "bssid", "", "Emitter BSSID")
	fs.BoolVar(&bands, "bands", false, "Write band indices instead of signal strength")
	fs.StringVar(&outPath, "o", "", "Path to the output CSV file, '-' for standard output")
	if err = parseFlags(fs, args); err != nil {
		return err
	}
	if key == "" {
		return usageError(fs, "bssid is required")
	} else if outPath == "" {
		return usageError(fs, "output file is required")
	}

	sess, err := a.resolveSession(ctx, sessionID)
	if err != nil {
		return err
	}

	// every observation feeds the interpolator, the floor plan only bounds the grid
	s, err := a.store.ReadSurvey(ctx, sess.ID, storage.WithEmitters(key))
	if err != nil {
		return err
	}

	rbf, err := interp.ForEmitter(s, key)
	if err != nil {
		return err
	}

	grid := a.grid(s)
	field, err := rbf.Evaluate(grid)
	if err != nil {
		return fmt.Errorf("evaluating field: %w", err)
	}

	stats := field.Stats()
	a.logger.Info("field evaluated",
		slog.String("bssid", key),
		slog.Int("samples", rbf.Len()),
		slog.Group("grid",
			slog.Float64("width", grid.Width),
			slog.Float64("height", grid.Height),
			slog.Int("cols", grid.Cols),
			slog.Int("rows", grid.Rows),
		),
		slog.Group("stats",
			slog.String("min", fmt.Sprintf("%0.2fdBm", stats.Min)),
			slog.String("max", fmt.Sprintf("%0.2fdBm", stats.Max)),
			slog.String("mean", fmt.Sprintf("%0.2fdBm", stats.Mean)),
		))

	out, err := a.createOutput(outPath)
	if err != nil {
		return err
	}
	defer closeWithError(out, &err)

	if !bands {
		return writeField(out, field)
	}

	bg, err := field.Bands(a.config.Interpolation.Thresholds)
	if err != nil {
		return err
	}

	total := float64(len(bg.Bands))
	for i, n := range bg.Histogram() {
		a.logger.Info("band",
			slog.String("range", bg.Thresholds.Label(i)),
			slog.String("cells", humanize.Comma(int64(n))),
			slog.String("share", fmt.Sprintf("%0.1f%%", 100*float64(n)/total)))
	}

	return writeBands(out, field, bg)
}

// grid spans the floor plan, or the sampled area when its size is not configured.
func (a *App) grid(s *survey.Store) interp.Grid {
	width, height := a.config.Survey.Width, a.config.Survey.Height
	if width == 0 || height == 0 {
		width, height = 0, 0
		for _, e := range s.Positions() {
			width = max(width, e.Position.X)
			height = max(height, e.Position.Y)
		}
	}

	return interp.Grid{
		Width:  float64(width),
		Height: float64(height),
		Cols:   a.config.Interpolation.Cols,
		Rows:   a.config.Interpolation.Rows,
	}
}

type countingWriter struct {
	io.Writer
	closer io.Closer
	n      int64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	n, err := w.Writer.Write(p)
	w.n += int64(n)
	return n, err
}

func (w *countingWriter) Close() error {
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}

func (a *App) createOutput(path string) (*countingWriter, error) {
	if path == "-" {
		return &countingWriter{Writer: a.out}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating output: %w", err)
	}
	return &countingWriter{Writer: f, closer: f}, nil
}

func closeWithError(cl io.Closer, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

// IsUsageError reports whether err was caused by a bad command line.
func IsUsageError(err error) bool {
	return errors.Is(err, ErrUsage) || errors.Is(err, flag.ErrHelp)
}
