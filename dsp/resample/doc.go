// Package resample converts impulse responses between sample rates.
//
// [Convert] works on a whole signal at once: the rate ratio is reduced to a
// fraction up/down and the signal is filtered at the upsampled rate by a
// Kaiser-windowed sinc, evaluating only the taps that meet non-zero input.
// The filter is applied centred, so a response keeps its onset.
//
//	mode            taps/phase   kaiser beta   cutoff
//	QualityFast     16           5.0           0.88
//	QualityBalanced 32           7.5           0.92
//	QualityBest     64           9.0           0.96
package resample
