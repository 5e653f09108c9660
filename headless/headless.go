// Package headless runs the room without graphics: it furnishes the room,
// audits the projection and writes the report.
package headless

import (
	"errors"
	"log/slog"

	"github.com/pthm-cable/catroom/audit"
	"github.com/pthm-cable/catroom/config"
	"github.com/pthm-cable/catroom/coords"
	"github.com/pthm-cable/catroom/placement"
	"github.com/pthm-cable/catroom/report"
)

// ErrAuditFailed is returned when the projection audit found violations.
var ErrAuditFailed = errors.New("projection audit found violations")

// Options configures a run.
type Options struct {
	Seed      int64
	Furniture bool   // place the furniture catalogue
	OutputDir string // empty disables report output
	Logger    *slog.Logger
}

// Run furnishes the room, audits sys and writes the report. It returns
// ErrAuditFailed when the audit does not pass.
func Run(sys *coords.System, opts Options) (audit.Report, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	logger := opts.Logger
	cfg := sys.Config()

	svc := placement.New(sys, placement.Options{Seed: opts.Seed, Logger: logger})
	if opts.Furniture {
		if err := PlaceCatalogue(svc, cfg); err != nil {
			return audit.Report{}, err
		}
	}

	r := audit.Run(sys, audit.ParamsFromConfig(cfg))

	om, err := report.NewOutputManager(opts.OutputDir)
	if err != nil {
		return r, err
	}
	defer om.Close()

	if err := om.WriteConfig(cfg); err != nil {
		return r, err
	}
	if err := om.WriteReport(r); err != nil {
		return r, err
	}
	if err := om.WritePlacements(svc.Layouts()); err != nil {
		return r, err
	}

	for _, v := range r.Violations {
		logger.Warn("violation", "check", v.Check, "z", v.Z, "detail", v.Detail)
	}

	logger.Info("audit complete",
		"ok", r.OK(),
		"samples", len(r.Samples),
		"violations", len(r.Violations),
		"furniture", svc.Len(),
		"floor_height", r.Floor.ScreenHeight,
		"world_scale", r.Floor.WorldScale,
		"mean_scale", r.MeanScale,
		"scale_stddev", r.ScaleStdDev,
		"mean_alignment_error", r.MeanAlignmentError,
		"max_alignment_error", r.MaxAlignmentError,
		"output_dir", om.Dir(),
	)

	if !r.OK() {
		return r, ErrAuditFailed
	}
	return r, nil
}

// PlaceCatalogue places every configured furniture instance, collecting failures.
func PlaceCatalogue(svc *placement.Service, cfg *config.Config) error {
	specs, err := placement.SpecsFromConfig(cfg)
	if err != nil {
		return err
	}
	var errs []error
	for _, spec := range specs {
		if _, err := svc.Place(spec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
