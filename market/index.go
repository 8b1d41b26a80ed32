package market

import (
	"errors"
	"fmt"
	"time"

	"github.com/meenmo/shortrate/calendar"
	"github.com/meenmo/shortrate/utils"
)

// ReferenceIndex enumerates supported floating benchmarks.
type ReferenceIndex string

const (
	FEDFUNDS   ReferenceIndex = "FedFunds"
	USDLIBORON ReferenceIndex = "USDLibor ON"
	USDLIBOR   ReferenceIndex = "USDLibor"
)

// IsOvernight reports whether the reference rate is an overnight index.
func IsOvernight(r ReferenceIndex) bool {
	switch r {
	case FEDFUNDS, USDLIBORON:
		return true
	default:
		return false
	}
}

var (
	// ErrNilCurve is returned when an index needs a forwarding curve it was not given.
	ErrNilCurve = errors.New("nil forwarding curve")
)

// IndexDescriptor holds the static conventions of an interest-rate index.
// It is immutable once built.
type IndexDescriptor struct {
	reference  ReferenceIndex
	tenor      utils.Period
	fixingDays int
	fixingCal  calendar.CalendarID
	valueCal   calendar.CalendarID
	bdc        BusinessDayAdjustment
	endOfMonth bool
	dayCount   DayCount
	currency   Currency
}

// NewIndexDescriptor validates conventions and builds a descriptor.
func NewIndexDescriptor(ref ReferenceIndex, tenor utils.Period, fixingDays int, fixingCal, valueCal calendar.CalendarID,
	bdc BusinessDayAdjustment, endOfMonth bool, dc DayCount, ccy Currency) (*IndexDescriptor, error) {
	if !tenor.Valid() {
		return nil, fmt.Errorf("%s: %w: tenor %s", ref, utils.ErrInvalidPeriod, tenor)
	}
	if fixingDays < 0 {
		return nil, fmt.Errorf("%s: negative fixing days %d", ref, fixingDays)
	}
	if !fixingCal.Known() || !valueCal.Known() {
		return nil, fmt.Errorf("%s: unknown calendar %q/%q", ref, fixingCal, valueCal)
	}
	if !dc.Valid() {
		return nil, fmt.Errorf("%s: unsupported day count %q", ref, dc)
	}
	return &IndexDescriptor{
		reference:  ref,
		tenor:      tenor,
		fixingDays: fixingDays,
		fixingCal:  fixingCal,
		valueCal:   valueCal,
		bdc:        bdc,
		endOfMonth: endOfMonth,
		dayCount:   dc,
		currency:   ccy,
	}, nil
}

// FedFunds is the effective federal funds overnight rate.
func FedFunds() *IndexDescriptor {
	d, _ := NewIndexDescriptor(FEDFUNDS, utils.Period{Length: 1, Unit: utils.UnitDays}, 0,
		calendar.USD, calendar.USD, Following, false, Act360, USD)
	return d
}

// USDLiborON is the overnight USD Libor fixing.
func USDLiborON() *IndexDescriptor {
	d, _ := NewIndexDescriptor(USDLIBORON, utils.Period{Length: 1, Unit: utils.UnitDays}, 0,
		calendar.GBP, calendar.Joint(calendar.GBP, calendar.USD), Following, false, Act360, USD)
	return d
}

// USDLibor is the term USD Libor for tenors of one week and longer.
func USDLibor(tenor utils.Period) (*IndexDescriptor, error) {
	eom := tenor.Unit == utils.UnitMonths || tenor.Unit == utils.UnitYears
	bdc := ModifiedFollowing
	if tenor.Unit == utils.UnitDays || tenor.Unit == utils.UnitWeeks {
		bdc = Following
	}
	return NewIndexDescriptor(USDLIBOR, tenor, 2,
		calendar.GBP, calendar.Joint(calendar.GBP, calendar.USD), bdc, eom, Act360, USD)
}

// Name follows the "<index><tenor> <day count>" form, e.g. "USDLibor3M ACT/360".
func (d *IndexDescriptor) Name() string {
	if IsOvernight(d.reference) {
		return fmt.Sprintf("%s %s", d.reference, d.dayCount)
	}
	return fmt.Sprintf("%s%s %s", d.reference, d.tenor, d.dayCount)
}

func (d *IndexDescriptor) Reference() ReferenceIndex                    { return d.reference }
func (d *IndexDescriptor) Tenor() utils.Period                          { return d.tenor }
func (d *IndexDescriptor) FixingDays() int                              { return d.fixingDays }
func (d *IndexDescriptor) FixingCalendar() calendar.CalendarID          { return d.fixingCal }
func (d *IndexDescriptor) ValueCalendar() calendar.CalendarID           { return d.valueCal }
func (d *IndexDescriptor) BusinessDayConvention() BusinessDayAdjustment { return d.bdc }
func (d *IndexDescriptor) EndOfMonth() bool                             { return d.endOfMonth }
func (d *IndexDescriptor) DayCount() DayCount                           { return d.dayCount }
func (d *IndexDescriptor) Currency() Currency                           { return d.currency }
func (d *IndexDescriptor) IsOvernight() bool                            { return IsOvernight(d.reference) }

// ValueDate is the start of the deposit fixed on fixingDate.
func (d *IndexDescriptor) ValueDate(fixingDate time.Time) time.Time {
	return calendar.AddBusinessDays(d.valueCal, fixingDate, d.fixingDays)
}

// FixingDate is the fixing that starts accruing on valueDate.
func (d *IndexDescriptor) FixingDate(valueDate time.Time) time.Time {
	return calendar.AddBusinessDays(d.fixingCal, valueDate, -d.fixingDays)
}

// MaturityDate is the end of the deposit starting on valueDate.
func (d *IndexDescriptor) MaturityDate(valueDate time.Time) time.Time {
	return Advance(d.valueCal, valueDate, d.tenor, d.bdc, d.endOfMonth)
}

// ProjectionCurve provides discount factors used to infer forward rates.
type ProjectionCurve interface {
	DF(t time.Time) float64
}

// Index is a descriptor bound to a shared forwarding curve. The curve is not owned.
type Index struct {
	*IndexDescriptor
	curve ProjectionCurve
}

// Bind attaches a forwarding curve to the descriptor.
func Bind(d *IndexDescriptor, curve ProjectionCurve) (*Index, error) {
	if d == nil {
		return nil, errors.New("nil index descriptor")
	}
	if curve == nil {
		return nil, fmt.Errorf("%s: %w", d.Name(), ErrNilCurve)
	}
	return &Index{IndexDescriptor: d, curve: curve}, nil
}

// Curve returns the forwarding curve.
func (i *Index) Curve() ProjectionCurve { return i.curve }

// ForecastFixing projects the simple forward rate fixed on fixingDate.
func (i *Index) ForecastFixing(fixingDate time.Time) float64 {
	start := i.ValueDate(fixingDate)
	end := i.MaturityDate(start)
	return i.ForwardBetween(start, end)
}

// ForwardBetween is the simple forward over [start, end] in the index day count.
func (i *Index) ForwardBetween(start, end time.Time) float64 {
	tau := i.dayCount.YearFraction(start, end)
	if tau <= 0 {
		return 0
	}
	return (i.curve.DF(start)/i.curve.DF(end) - 1.0) / tau
}
