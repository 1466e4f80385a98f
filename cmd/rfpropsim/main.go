package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/signalsfoundry/rfprop-engine/internal/logging"
	"github.com/signalsfoundry/rfprop-engine/internal/observability"
	"github.com/signalsfoundry/rfprop-engine/profile"
	"github.com/signalsfoundry/rfprop-engine/rfprop"
	"github.com/signalsfoundry/rfprop-engine/timectrl"
)

func main() {
	files := flag.String("files", "", "comma-separated AREPS files for the initial file set")
	fileTime := flag.Float64("file-time", 0, "playback time in seconds the initial file set is tagged with")
	quantity := flag.String("quantity", "pod", "quantity to report each tick: pod, loss, ppf, cnr, snr, one-way, received")
	bearingDeg := flag.Float64("bearing", 0, "query bearing in degrees true")
	rangeM := flag.Float64("range", 10000, "query ground range in metres")
	heightM := flag.Float64("height", 100, "query height in metres")
	rcs := flag.Float64("rcs", 1.0, "target radar cross section in square metres for snr and received power")
	duration := flag.Duration("duration", 60*time.Second, "total playback duration, 0 runs until interrupted")
	tick := flag.Duration("tick", 1*time.Second, "tick interval")
	accelerated := flag.Bool("accelerated", false, "run playback in accelerated mode (vs real-time)")
	metricsAddr := flag.String("metrics-addr", ":9090", "HTTP address for Prometheus /metrics, empty disables")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := logging.ContextWithLogger(context.Background(), log)

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

	collector, err := observability.NewEngineCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}
	metricsSrv := serveMetrics(*metricsAddr, collector, log)

	facade := rfprop.NewFacade(log, collector)

	if *files == "" {
		fmt.Fprintln(os.Stderr, "no AREPS files given; pass -files file1,file2,...")
		os.Exit(2)
	}
	names := splitFiles(*files)
	if err := facade.LoadArepsFiles(ctx, *fileTime, names...); err != nil {
		log.Error(ctx, "failed to load AREPS file set",
			logging.String("error", err.Error()), logging.Int("files", len(names)))
		os.Exit(1)
	}
	params := facade.RadarParams()
	log.Info(ctx, "loaded AREPS file set",
		logging.Int("profiles", facade.NumProfiles()),
		logging.Any("freq_mhz", params.FreqMHz),
		logging.Any("antenna_height_m", facade.AntennaHeight()))

	facade.SetThresholdType(thresholdForQuantity(*quantity))

	bearingRad := *bearingDeg * math.Pi / 180.0
	slantRng := math.Hypot(*heightM, *rangeM)

	mode := timectrl.RealTime
	if *accelerated {
		mode = timectrl.Accelerated
	}
	tc := timectrl.NewTimeController(time.Now().UTC(), *tick, mode)
	tc.AddListener(func(elapsedSec float64) {
		facade.Manager().Update(*fileTime + elapsedSec)
		facade.RebuildDirtyProfiles(ctx)

		v := queryValue(ctx, facade, *quantity, bearingRad, *rangeM, *heightM, slantRng, *rcs)
		fmt.Printf("[t=%7.1fs] %s @ brg=%.1f rng=%.0fm hgt=%.0fm = %.2f\n",
			elapsedSec, *quantity, *bearingDeg, *rangeM, *heightM, v)
	})

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Info(ctx, "starting playback",
		logging.Any("duration", duration.String()),
		logging.Any("tick", tick.String()),
		logging.Any("mode", mode))
	<-tc.Start(stopCtx, *duration)
	log.Info(ctx, "playback complete")

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
}

func splitFiles(list string) []string {
	var names []string
	for _, name := range strings.Split(list, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func thresholdForQuantity(q string) profile.ThresholdType {
	switch strings.ToLower(q) {
	case "loss":
		return profile.ThresholdLoss
	case "ppf":
		return profile.ThresholdFactor
	case "cnr":
		return profile.ThresholdCNR
	case "snr":
		return profile.ThresholdSNR
	case "one-way":
		return profile.ThresholdOneWayPower
	case "received":
		return profile.ThresholdReceivedPower
	default:
		return profile.ThresholdPOD
	}
}

func queryValue(ctx context.Context, f *rfprop.Facade, quantity string, bearingRad, rangeM, heightM, slantRng, rcs float64) float64 {
	gain := f.RadarParams().AntennaGaindB
	switch strings.ToLower(quantity) {
	case "loss":
		return f.Loss(ctx, bearingRad, rangeM, heightM)
	case "ppf":
		return f.PPF(ctx, bearingRad, rangeM, heightM)
	case "cnr":
		return f.CNR(ctx, bearingRad, rangeM)
	case "snr":
		return f.SNR(ctx, bearingRad, slantRng, heightM, gain, gain, rcs, rangeM)
	case "one-way":
		return f.OneWayPower(ctx, bearingRad, slantRng, heightM, gain, rangeM, gain)
	case "received":
		return f.ReceivedPower(ctx, bearingRad, slantRng, heightM, gain, gain, rcs, rangeM)
	default:
		return f.POD(ctx, bearingRad, rangeM, heightM)
	}
}

func serveMetrics(addr string, collector *observability.EngineCollector, log logging.Logger) *http.Server {
	if addr == "" || collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.String("error", err.Error()))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
