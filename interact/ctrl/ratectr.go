// SPDX-License-Identifier: GPL-3.0-or-later

package ctrl

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// RateIntervals are the rate counter intervals, in CSV column order.
var RateIntervals = []string{"abs", "per_sec", "per_min", "per_hour", "per_day"}

// RateCounterHeader is the CSV header row.
var RateCounterHeader = []string{"group", "counter", "absolute", "second", "minute", "hour", "day"}

// RateCounter holds the values of one counter, indexed like RateIntervals.
type RateCounter struct {
	Group  string
	Name   string
	Values [5]string
}

func (r RateCounter) record() []string {
	return append([]string{r.Group, r.Name}, r.Values[:]...)
}

// RateCounters reads all rate counter groups and the values of their
// counters for every interval.
func (c *Client) RateCounters(ctx context.Context) ([]RateCounter, error) {
	c.Info("getting rate counter groups info...")

	groups, err := c.Get(ctx, "rate_ctr.*")
	if err != nil {
		return nil, fmt.Errorf("rate counter groups: %w", err)
	}

	var all []RateCounter
	for _, group := range splitList(groups.Value) {
		counters, err := c.rateCounterGroup(ctx, group)
		if err != nil {
			return nil, err
		}
		all = append(all, counters...)
	}

	return all, nil
}

func (c *Client) rateCounterGroup(ctx context.Context, group string) ([]RateCounter, error) {
	var (
		order []string
		byKey = make(map[string]*RateCounter)
	)

	for i, interval := range RateIntervals {
		c.Debugf("getting %s counter values: %s...", group, interval)

		reply, err := c.Get(ctx, fmt.Sprintf("rate_ctr.%s.%s", interval, group))
		if err != nil {
			return nil, fmt.Errorf("rate counter group %s (%s): %w", group, interval, err)
		}

		for _, item := range splitList(reply.Value) {
			name, value, ok := strings.Cut(item, " ")
			if !ok {
				return nil, fmt.Errorf("rate counter group %s (%s): malformed counter %q", group, interval, item)
			}
			rc, ok := byKey[name]
			if !ok {
				rc = &RateCounter{Group: group, Name: name}
				byKey[name] = rc
				order = append(order, name)
			}
			rc.Values[i] = strings.TrimSpace(value)
		}
	}

	counters := make([]RateCounter, 0, len(order))
	for _, name := range order {
		counters = append(counters, *byKey[name])
	}
	return counters, nil
}

// WriteRateCountersCSV writes the counters as CSV with every field quoted.
func WriteRateCountersCSV(w io.Writer, counters []RateCounter, header bool) error {
	if header {
		if err := writeRecord(w, RateCounterHeader); err != nil {
			return err
		}
	}
	for _, rc := range counters {
		if err := writeRecord(w, rc.record()); err != nil {
			return err
		}
	}
	return nil
}

func writeRecord(w io.Writer, fields []string) error {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	_, err := io.WriteString(w, strings.Join(quoted, ",")+"\n")
	return err
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ";") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
