package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/meenmo/shortrate/calibration"
	"github.com/meenmo/shortrate/config"
	"github.com/meenmo/shortrate/internal/logging"
	"github.com/meenmo/shortrate/market"
	"github.com/meenmo/shortrate/model"
	"github.com/meenmo/shortrate/pricing"
	"github.com/meenmo/shortrate/termstructure"
	"github.com/meenmo/shortrate/utils"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("hwcalibrate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML config path (optional)")
	method := fs.String("method", "", "Optimizer: levenberg-marquardt or simplex (overrides config)")
	verbose := fs.Bool("v", false, "Log calibration runs to stderr")
	help := fs.Bool("h", false, "Show help")
	fs.BoolVar(help, "help", false, "Show help")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *help {
		usage(stdout)
		return 0
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected argument %q\n\n", fs.Arg(0))
		usage(stderr)
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "hwcalibrate: %v\n", err)
		return 1
	}
	if m := strings.TrimSpace(*method); m != "" {
		cfg.Calibration.Method = m
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(stderr, "hwcalibrate: -method: %v\n", err)
			return 2
		}
	}

	logger := slog.New(slog.DiscardHandler)
	if *verbose {
		logger = logging.New(cfg.Logging, stderr)
	}

	if err := calibrateCases(cfg, logger, stdout); err != nil {
		fmt.Fprintf(stderr, "hwcalibrate: %v\n", err)
		return 1
	}
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: hwcalibrate [-config file.yaml] [-method levenberg-marquardt|simplex] [-v]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Calibrate a one-factor Hull-White model to a diagonal ATM swaption basket")
	fmt.Fprintln(w, "on a flat USD curve and print the parameters of three fitting cases.")
}

var (
	tradeDate      = time.Date(2002, time.February, 15, 0, 0, 0, 0, time.UTC)
	settlementDate = time.Date(2002, time.February, 19, 0, 0, 0, 0, time.UTC)
)

const flatRate = 0.04875825

type calibrationCase struct {
	title     string
	reversion float64
	sigma     float64
	fix       []bool
}

var cases = []calibrationCase{
	{
		title:     "case 1 : calibrate all involved parameters (HW1F : reversion, sigma)",
		reversion: model.DefaultReversion,
		sigma:     model.DefaultSigma,
	},
	{
		title:     "case 2 : calibrate sigma and fix reversion to 0.05",
		reversion: 0.05,
		sigma:     0.0001,
		fix:       []bool{true, false},
	},
	{
		title:     "case 3 : calibrate reversion and fix sigma to 0.01",
		reversion: 0.05,
		sigma:     0.01,
		fix:       []bool{false, true},
	},
}

// calibrateCases fits every case against one shared basket. Each case gets its own model and engine.
func calibrateCases(cfg *config.Config, logger *slog.Logger, w io.Writer) error {
	curve, err := termstructure.NewFlatForward(settlementDate, flatRate, market.Act365F, termstructure.Continuous, market.FreqAnnual)
	if err != nil {
		return err
	}
	descriptor, err := market.USDLibor(utils.Months(3))
	if err != nil {
		return err
	}
	index, err := market.Bind(descriptor, curve)
	if err != nil {
		return err
	}
	errorType, err := calibration.ParseErrorType(cfg.Calibration.ErrorType)
	if err != nil {
		return err
	}
	basket, err := calibration.NewDiagonalSwaptionBasket(calibration.SwaptionVolatilities(), index, curve,
		calibration.WithFixedLeg(utils.Years(1), market.Act360),
		calibration.WithFloatingLegDayCount(market.Act360),
		calibration.WithErrorType(errorType))
	if err != nil {
		return err
	}

	ec, err := cfg.EndCriteria()
	if err != nil {
		return err
	}
	method, err := cfg.Method()
	if err != nil {
		return err
	}
	calibrator, err := calibration.NewModelCalibrator(ec,
		calibration.WithMethod(method),
		calibration.WithLogger(logger.With("trade_date", tradeDate.Format("2006-01-02"))))
	if err != nil {
		return err
	}
	for _, h := range basket {
		calibrator.AddCalibrationHelper(h)
	}

	for _, c := range cases {
		fmt.Fprintln(w, c.title)
		hw, err := model.NewHullWhite(curve, c.reversion, c.sigma)
		if err != nil {
			return err
		}
		engine, err := pricing.NewJamshidianSwaptionEngine(hw)
		if err != nil {
			return err
		}
		if _, err := calibrator.Calibrate(hw, engine, curve, c.fix); err != nil {
			return err
		}
		fmt.Fprintf(w, "%s reversion: %v\n", label(c.fix, 0), utils.RoundTo(hw.Reversion(), 5))
		fmt.Fprintf(w, "%s sigma: %v\n", label(c.fix, 1), utils.RoundTo(hw.Sigma(), 5))
		fmt.Fprintln(w)
	}
	return nil
}

func label(fix []bool, i int) string {
	if i < len(fix) && fix[i] {
		return "fixed"
	}
	return "calibrated"
}
