package cfmask

import (
	"runtime"

	"github.com/alitto/pond"
	"github.com/sirupsen/logrus"
)

// Options configures a single-scene run, mirroring the original's
// --prob/--cldpix/--sdpix/--with-cirrus/--without-thermal CLI flags.
type Options struct {
	CloudProbThreshold float64 // additive bump on the dynamic cloud threshold; default 22.5
	CloudDilatePixels  int     // default 3
	ShadowDilatePixels int     // default 3
	UseCirrus          bool
	UseThermal         bool
}

// DefaultOptions mirrors cfmask's documented defaults.
func DefaultOptions() Options {
	return Options{
		CloudProbThreshold: 22.5,
		CloudDilatePixels:  3,
		ShadowDilatePixels: 3,
		UseCirrus:          false,
		UseThermal:         true,
	}
}

// Result is the complete output of a scene run: the categorical mask, the
// confidence band, and summary statistics for the ESPA metadata sidecar.
type Result struct {
	Mask        []byte
	Confidence  []byte
	Stats       Stats
	Thresholds  *PCSMThresholds
}

// Run executes the full pipeline — PCSM then OCSM then flatten — over a
// single scene's buffers, row-striping the per-pixel passes across a pond
// worker pool sized like the teacher's file-level pool
// (runtime.NumCPU()*2), applied here at row-chunk granularity.
func Run(scn *Scene, buf *Buffers, opts Options, log *logrus.Entry) (*Result, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	if err := scn.Validate(); err != nil {
		return nil, err
	}
	if !opts.UseThermal {
		buf.Bands[Thermal] = nil
	}

	n := runtime.NumCPU() * 2
	pool := pond.New(n, 0, pond.MinWorkers(n))
	defer pool.StopAndWait()

	th, err := RunPCSM(scn, buf, opts.CloudProbThreshold, pool, log)
	if err != nil {
		return nil, err
	}

	if err := RunOCSM(scn, buf, th, opts.CloudDilatePixels, opts.ShadowDilatePixels, log); err != nil {
		return nil, err
	}

	mask, stats := Flatten(buf)

	return &Result{
		Mask:       mask,
		Confidence: buf.Confidence,
		Stats:      stats,
		Thresholds: th,
	}, nil
}
