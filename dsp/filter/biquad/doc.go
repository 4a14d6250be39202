// Package biquad designs second-order filter sections after the Audio EQ
// Cookbook and runs them as multichannel cascades.
//
// The tone stack, the impulse-response cut filters and the saturation pre
// and post filters are all built from these sections.
package biquad
