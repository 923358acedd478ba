/*
Package testing provides a conformance suite for comm.Correlator implementations.

Usage:

	func TestLoopback(t *testing.T) {
		corrtesting.RunCorrelatorTests(t, "Loopback", func(t *testing.T, handlers map[comm.Rank]comm.Handler) corrtesting.Setup {
			l := comm.NewLoopback(handlers)
			return corrtesting.Setup{Correlator: l, Advance: func() { l.Advance() }, Close: func() {}}
		})
	}

The suite checks that requests stay pending until the messaging layer advances,
that responses are correlated by worker id and can be taken exactly once, and
that a failed request is resubmitted instead of completing with a made up answer.
*/
package testing
