// Package analysis inspects recorded runs after the fact.
//
//   - [Spectrum]: power spectrum of a uniformly sampled signal
//   - [DominantFrequency]: strongest non-constant component
//   - [SettleTime]: when a signal stops leaving a band around its final value
//   - [Bodies]: both of the above for every tracked body's height
//
// A resting stack that keeps a strong component above a few hertz is
// jittering; one with no settle time never came to rest.
package analysis
