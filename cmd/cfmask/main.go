// Command cfmask runs the cloud/cloud-shadow/snow/water classifier over a
// single Landsat scene named by its ESPA metadata XML file.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cfmask "github.com/GNINNUR/espa-cloud-masking"
	"github.com/GNINNUR/espa-cloud-masking/internal/bandio"
	"github.com/GNINNUR/espa-cloud-masking/internal/envi"
	"github.com/GNINNUR/espa-cloud-masking/internal/espa"
	"github.com/GNINNUR/espa-cloud-masking/internal/esun"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const (
	appName    = "cfmask"
	appVersion = "3.0.0"
)

func main() {
	log := logrus.New()

	app := &cli.App{
		Name:    appName,
		Usage:   "classify cloud, cloud shadow, snow and water in a Landsat scene",
		Version: appVersion,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "xml", Required: true, Usage: "path to the scene's ESPA metadata XML file"},
			&cli.Float64Flag{Name: "prob", Value: 22.5, Usage: "cloud probability threshold bump"},
			&cli.IntFlag{Name: "cldpix", Value: 3, Usage: "cloud dilation radius in pixels"},
			&cli.IntFlag{Name: "sdpix", Value: 3, Usage: "shadow dilation radius in pixels"},
			&cli.BoolFlag{Name: "with-cirrus", Usage: "enable the cirrus-band cloud test"},
			&cli.BoolFlag{Name: "without-thermal", Usage: "disable the thermal band in classification"},
			&cli.BoolFlag{Name: "verbose", Usage: "enable debug logging"},
		},
		Action: func(cCtx *cli.Context) error {
			if cCtx.Bool("verbose") {
				log.SetLevel(logrus.DebugLevel)
			}
			return run(cCtx, log)
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.NewEntry(log).WithError(err).Error("cfmask failed")
		os.Exit(1)
	}
}

func run(cCtx *cli.Context, log *logrus.Logger) error {
	xmlPath := cCtx.String("xml")
	entry := log.WithField("scene", xmlPath)

	scn, bandFiles, err := espa.Parse(xmlPath)
	if err != nil {
		return fmt.Errorf("%s: %w", appName, err)
	}

	dir := filepath.Dir(xmlPath)
	rows, cols := scn.Rows, scn.Cols
	buf := cfmask.NewBuffers(rows, cols)
	for role, name := range bandFiles {
		data, err := bandio.ReadInt16Band(filepath.Join(dir, name), rows, cols)
		if err != nil {
			return err
		}
		if role == cfmask.Thermal {
			cfmask.ConvertThermalToBrightnessTemperature(data, scn.GainThermal, scn.BiasThermal, scn.K1, scn.K2)
		}
		if err := buf.SetBand(role, data); err != nil {
			return err
		}
	}

	var table [366]float64
	if scn.Satellite != cfmask.Landsat8 {
		table, err = esun.LoadTable()
		if err != nil {
			return err
		}
	}
	ceiling, err := cfmask.SaturationCeilings(scn, table)
	if err != nil {
		return err
	}
	scn.SetSaturationCeiling(ceiling)

	for _, role := range cfmask.ReflectiveRoles {
		if data := buf.Bands[role]; data != nil {
			cfmask.ClampSaturated(data, scn.SaturationRef[role], ceiling[role])
		}
	}

	opts := cfmask.DefaultOptions()
	opts.CloudProbThreshold = cCtx.Float64("prob")
	opts.CloudDilatePixels = cCtx.Int("cldpix")
	opts.ShadowDilatePixels = cCtx.Int("sdpix")
	opts.UseCirrus = cCtx.Bool("with-cirrus")
	opts.UseThermal = !cCtx.Bool("without-thermal")
	scn.UseCirrus = opts.UseCirrus

	result, err := cfmask.Run(scn, buf, opts, entry)
	if err != nil {
		return err
	}

	// Classification is done; restore the original solar azimuth before any
	// metadata is reported or written back alongside the output bands.
	scn.RestoreSunAzimuth()

	base := strings.TrimSuffix(xmlPath, filepath.Ext(xmlPath))
	maskPath := base + "_cfmask.img"
	confPath := base + "_cfmask_conf.img"

	if err := bandio.WriteByteBand(maskPath, result.Mask); err != nil {
		return err
	}
	if err := bandio.WriteByteBand(confPath, result.Confidence); err != nil {
		return err
	}
	if err := envi.Write(maskPath+".hdr", envi.Header{Samples: cols, Lines: rows, DataType: 1}); err != nil {
		return err
	}
	if err := envi.Write(confPath+".hdr", envi.Header{Samples: cols, Lines: rows, DataType: 1}); err != nil {
		return err
	}

	entry.WithFields(logrus.Fields{
		"clear_pct":  result.Stats.PercentOf(result.Stats.Clear),
		"cloud_pct":  result.Stats.PercentOf(result.Stats.Cloud),
		"shadow_pct": result.Stats.PercentOf(result.Stats.CloudShadow),
		"snow_pct":   result.Stats.PercentOf(result.Stats.Snow),
		"water_pct":  result.Stats.PercentOf(result.Stats.Water),
	}).Info("scene classified")

	return nil
}
