package scenario

import "time"

// Report is the outcome of one scenario.
type Report struct {
	Scenario string
	Moulds   []string
	Oracles  []string
	// Frames is the number of frames exchanged before the scenario ended.
	Frames int
	// FirstAlert is the simulated time of the first alert matching an oracle.
	FirstAlert time.Duration
	Alerted    bool
	Passed     bool
	Failure    string
}

func newReport(sc *Scenario) Report {
	report := Report{Scenario: sc.Name}

	for _, m := range sc.Moulds {
		report.Moulds = append(report.Moulds, m.String())
	}

	for _, o := range sc.Oracles {
		report.Oracles = append(report.Oracles, o.String())
	}

	return report
}

func (r *Report) complete(verdicts []*verdict, failure *AssertionError) {
	for _, v := range verdicts {
		if v.alerted && (!r.Alerted || v.firstAlert < r.FirstAlert) {
			r.Alerted = true
			r.FirstAlert = v.firstAlert
		}
	}

	r.Passed = failure == nil
	if failure != nil {
		r.Failure = failure.Error()
	}
}
