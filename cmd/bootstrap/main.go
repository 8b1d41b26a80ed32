package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/meenmo/shortrate/calendar"
	"github.com/meenmo/shortrate/config"
	"github.com/meenmo/shortrate/internal/logging"
	"github.com/meenmo/shortrate/market"
	"github.com/meenmo/shortrate/termstructure"
	"github.com/meenmo/shortrate/utils"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("bootstrap", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML config path (optional)")
	outPath := fs.String("out", "", "Also write zero rates on the curve day count to this file")
	verbose := fs.Bool("v", false, "Log bootstrap progress to stderr")
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
		fmt.Fprintf(stderr, "bootstrap: %v\n", err)
		return 1
	}
	logger := slog.New(slog.DiscardHandler)
	if *verbose {
		logger = logging.New(cfg.Logging, stderr)
	}

	curve, err := buildCurve(cfg.BootstrapOptions(), logger)
	if err != nil {
		fmt.Fprintf(stderr, "bootstrap: %v\n", err)
		return 1
	}
	writeReport(stdout, curve)

	if path := strings.TrimSpace(*outPath); path != "" {
		if err := writeZeroFile(path, curve); err != nil {
			fmt.Fprintf(stderr, "bootstrap: %v\n", err)
			return 1
		}
	}
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: bootstrap [-config file.yaml] [-out zero.txt] [-v]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Bootstrap the 18 Feb 2015 USD deposit/futures/swap curve and print zero rates.")
}

var (
	curveCalendar = calendar.Joint(calendar.GBP, calendar.USD)
	settlement    = time.Date(2015, time.February, 18, 0, 0, 0, 0, time.UTC)
)

const fixingDays = 2

type depositQuote struct {
	tenor utils.Period
	rate  float64
}

var deposits = []depositQuote{
	{utils.Weeks(1), 0.001375},
	{utils.Weeks(4), 0.001717},
	{utils.Months(2), 0.002112},
	{utils.Months(3), 0.002581},
}

// futuresPrices are strip prices on successive IMM dates from settlement.
var futuresPrices = []float64{99.725, 99.585, 99.385, 99.16, 98.93, 98.715}

type swapQuote struct {
	tenor utils.Period
	rate  float64
}

var swaps = []swapQuote{
	{utils.Years(2), 0.0089268},
	{utils.Years(3), 0.0123343},
	{utils.Years(4), 0.0147985},
	{utils.Years(5), 0.0165843},
	{utils.Years(6), 0.0179191},
}

// buildCurve fits a log-discount curve on settlement from the deposit, futures and swap quotes.
func buildCurve(opts termstructure.BootstrapOptions, logger *slog.Logger) (*termstructure.PiecewiseLogDiscount, error) {
	settle := market.ModifiedFollowing.Apply(curveCalendar, settlement)
	evalDate := calendar.AddBusinessDays(curveCalendar, settle, -fixingDays)

	helpers := make([]termstructure.RateHelper, 0, len(deposits)+len(futuresPrices)+len(swaps))
	for _, d := range deposits {
		h, err := termstructure.NewDepositHelper(d.rate, d.tenor, fixingDays, curveCalendar,
			market.ModifiedFollowing, true, market.Act360, evalDate)
		if err != nil {
			return nil, err
		}
		helpers = append(helpers, h)
	}

	imm := termstructure.NextIMMDate(settle)
	for _, price := range futuresPrices {
		h, err := termstructure.NewFuturesHelper(price, imm, 3, curveCalendar, market.ModifiedFollowing, true, market.Act360)
		if err != nil {
			return nil, err
		}
		helpers = append(helpers, h)
		imm = termstructure.NextIMMDate(imm)
	}

	libor3m, err := market.USDLibor(utils.Months(3))
	if err != nil {
		return nil, err
	}
	for _, s := range swaps {
		h, err := termstructure.NewSwapHelper(s.rate, s.tenor, curveCalendar, market.FreqAnnual,
			market.Unadjusted, market.Act360, libor3m, evalDate)
		if err != nil {
			return nil, err
		}
		helpers = append(helpers, h)
	}

	logger.Debug("bootstrapping", "reference", settle.Format("2006-01-02"), "helpers", len(helpers))
	curve, err := termstructure.Bootstrap(settle, helpers, market.Act360, opts)
	if err != nil {
		return nil, err
	}
	logger.Info("curve built", "pillars", len(curve.PillarDates())-1, "last", curve.PillarDates()[len(curve.PillarDates())-1].Format("2006-01-02"))
	return curve, nil
}

type reportDate struct {
	date        time.Time
	compounding termstructure.Compounding
}

func simple(y int, m time.Month, d int) reportDate {
	return reportDate{time.Date(y, m, d, 0, 0, 0, 0, time.UTC), termstructure.Simple}
}

func annual(y int, m time.Month, d int) reportDate {
	return reportDate{time.Date(y, m, d, 0, 0, 0, 0, time.UTC), termstructure.Compounded}
}

var reportDates = []reportDate{
	simple(2015, time.February, 25),
	simple(2015, time.March, 18),
	simple(2015, time.April, 20),
	simple(2015, time.May, 18),
	simple(2015, time.June, 17),
	simple(2015, time.September, 16),
	simple(2015, time.December, 16),
	simple(2016, time.March, 16),
	simple(2016, time.June, 15),
	annual(2016, time.September, 21),
	annual(2017, time.February, 21),
	annual(2018, time.February, 20),
	annual(2019, time.February, 19),
	annual(2020, time.February, 18),
}

func writeReport(w io.Writer, curve termstructure.YieldCurve) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MATURITY\tCOMPOUNDING\tZERO (%)")
	for _, r := range reportDates {
		z := termstructure.ZeroRate(curve, r.date, market.Act360, r.compounding, market.FreqAnnual)
		fmt.Fprintf(tw, "%s\t%s\t%.5f\n", r.date.Format("2006-01-02"), r.compounding, 100*z)
	}
	tw.Flush()

	last := reportDates[len(reportDates)-1].date
	prev := reportDates[len(reportDates)-2].date
	fmt.Fprintf(w, "discount %s: %.8f\n", last.Format("2006-01-02"), curve.DF(last))
	fmt.Fprintf(w, "forward %s-%s: %.5f%%\n", prev.Format("2006-01-02"), last.Format("2006-01-02"),
		100*termstructure.ForwardRate(curve, prev, last, market.Act360, termstructure.Simple, market.FreqAnnual))
}

// writeZeroFile writes simple zero rates on the curve day count for the money-market dates.
func writeZeroFile(path string, curve termstructure.YieldCurve) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	for _, r := range reportDates[:6] {
		z := termstructure.ZeroRate(curve, r.date, curve.DayCount(), termstructure.Simple, market.FreqAnnual)
		if _, err := fmt.Fprintf(f, "%s: %.8f\n", r.date.Format("2006-01-02"), z); err != nil {
			return err
		}
	}
	return f.Close()
}
