package simulator

import "time"

// TTFT returns the simulated prefill delay (time to first token) for a
// prompt of the given size.
func (s *Simulator) TTFT(promptTokens int) time.Duration {
	return tokensDuration(promptTokens, s.cfg.PrefillTPS)
}

// DecodeTime returns the simulated autoregressive generation delay for a
// completion of the given size.
func (s *Simulator) DecodeTime(completionTokens int) time.Duration {
	return tokensDuration(completionTokens, s.cfg.DecodeTPS)
}

// ThinkingTime returns the shorter delay that precedes a tool-call delta
// on the streaming path.
func (s *Simulator) ThinkingTime() time.Duration {
	return tokensDuration(s.cfg.ThinkingTokens, s.cfg.DecodeTPS)
}

// tokensDuration converts a token count and a tokens-per-second rate into
// a wall-clock duration. The rate is floored at 1, which keeps the
// division defined without any error handling.
func tokensDuration(tokens, tps int) time.Duration {
	if tokens <= 0 {
		return 0
	}
	if tps < 1 {
		tps = 1
	}
	return time.Duration(float64(tokens) / float64(tps) * float64(time.Second))
}
