// Package elapsed keeps a "time since loaded" label up to date.
package elapsed

import (
	"context"
	"math"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Attribute holds the first-call timestamp in Unix milliseconds. A label is
// live while its element carries the attribute.
const Attribute = "data-first-call-time"

// Refresh delays, chosen by how long the label has been running.
const (
	BaseDelay = 3 * time.Second
	SlowDelay = 10 * time.Second
	IdleDelay = 100 * time.Second

	// MaxJitter bounds the random delay added to each refresh so that many
	// labels on one page do not update in lockstep.
	MaxJitter = time.Second
)

const suffix = " since loaded..."

// Format renders an elapsed number of seconds in the coarsest unit that
// keeps the number readable.
func Format(seconds float64) string {
	switch {
	case seconds < 60:
		return unit(seconds, "seconds")
	case seconds < 3600:
		return unit(seconds/60, "minutes")
	case seconds < 86400:
		return unit(seconds/3600, "hours")
	default:
		return unit(seconds/86400, "days")
	}
}

func unit(n float64, name string) string {
	// Halves round up, as Math.round does in browsers.
	return strconv.FormatFloat(math.Floor(n+0.5), 'f', -1, 64) + " " + name + suffix
}

// NextDelay returns the time to wait before the next refresh.
func NextDelay(elapsed, jitter time.Duration) time.Duration {
	delay := BaseDelay
	if elapsed > time.Minute {
		delay = SlowDelay
	}
	if elapsed > 6*time.Minute {
		delay = IdleDelay
	}
	return delay + jitter
}

// Label drives one element carrying Attribute.
type Label struct {
	el     *goquery.Selection
	now    func() time.Time
	jitter func() time.Duration
	locker sync.Locker
}

// Option configures a Label.
type Option func(*Label)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Label) { l.now = now }
}

// WithJitter replaces the random jitter source.
func WithJitter(jitter func() time.Duration) Option {
	return func(l *Label) { l.jitter = jitter }
}

// WithLocker makes the label hold locker while it touches the document,
// for example a viewer.Surface sharing it.
func WithLocker(locker sync.Locker) Option {
	return func(l *Label) { l.locker = locker }
}

// NewLabel returns a label for the first element of el.
func NewLabel(el *goquery.Selection, opts ...Option) *Label {
	l := &Label{
		el:     el.First(),
		now:    time.Now,
		jitter: func() time.Duration { return rand.N(MaxJitter) },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Labels returns a label for every element below root carrying Attribute.
func Labels(root *goquery.Selection, opts ...Option) []*Label {
	var labels []*Label
	root.Find("[" + Attribute + "]").Each(func(_ int, el *goquery.Selection) {
		labels = append(labels, NewLabel(el, opts...))
	})
	return labels
}

// Update refreshes the label text once and returns the delay until the next
// refresh. It reports false when the element no longer carries Attribute.
//
// An empty or unparsable timestamp is reset to the current time.
func (l *Label) Update() (time.Duration, bool) {
	if l.locker != nil {
		l.locker.Lock()
		defer l.locker.Unlock()
	}

	raw, ok := l.el.Attr(Attribute)
	if !ok {
		return 0, false
	}

	now := l.now()
	first, err := strconv.ParseInt(raw, 10, 64)
	if raw == "" || err != nil {
		first = now.UnixMilli()
		l.el.SetAttr(Attribute, strconv.FormatInt(first, 10))
	}

	elapsed := now.Sub(time.UnixMilli(first))
	l.el.SetText(Format(elapsed.Seconds()))
	return NextDelay(elapsed, l.jitter()), true
}

// Run refreshes the label until the attribute is removed or ctx is done.
func (l *Label) Run(ctx context.Context) error {
	delay, ok := l.Update()
	if !ok {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
		if delay, ok = l.Update(); !ok {
			return nil
		}
		timer.Reset(delay)
	}
}

// Text returns the current label text.
func (l *Label) Text() string {
	if l.locker != nil {
		l.locker.Lock()
		defer l.locker.Unlock()
	}
	return l.el.Text()
}
