package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/meenmo/shortrate/market"
	"github.com/meenmo/shortrate/utils"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("indexinspect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "Print the conventions of every index")
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

	indices, err := inspectIndices()
	if err != nil {
		fmt.Fprintf(stderr, "indexinspect: %v\n", err)
		return 1
	}
	if *verbose {
		writeTable(stdout, indices)
	}
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: indexinspect [-v]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Build the FedFunds, USDLibor ON and USDLibor 3M indices and read their")
	fmt.Fprintln(w, "conventions. Nothing is printed unless -v is given.")
}

// conventions is one row of static index data.
type conventions struct {
	name       string
	fixingDays int
	fixingCal  string
	bdc        market.BusinessDayAdjustment
	endOfMonth bool
	dayCount   market.DayCount
	currency   market.Currency
}

func inspectIndices() ([]conventions, error) {
	libor3m, err := market.USDLibor(utils.Months(3))
	if err != nil {
		return nil, err
	}
	descriptors := []*market.IndexDescriptor{market.FedFunds(), market.USDLiborON(), libor3m}

	out := make([]conventions, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, conventions{
			name:       d.Name(),
			fixingDays: d.FixingDays(),
			fixingCal:  string(d.FixingCalendar()),
			bdc:        d.BusinessDayConvention(),
			endOfMonth: d.EndOfMonth(),
			dayCount:   d.DayCount(),
			currency:   d.Currency(),
		})
	}
	return out, nil
}

func writeTable(w io.Writer, rows []conventions) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tFIXING DAYS\tCALENDAR\tCONVENTION\tEOM\tDAY COUNT\tCCY")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%t\t%s\t%s\n",
			r.name, r.fixingDays, r.fixingCal, r.bdc, r.endOfMonth, r.dayCount, r.currency)
	}
	tw.Flush()
}
