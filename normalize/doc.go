// Package normalize scales sampled eigenfunctions to unit L² norm.
//
// The norm is ‖u‖ = √(∫u²dx) evaluated with the composite trapezoidal rule
// on the sample grid, so a normalized vector has trapezoidal norm 1 on
// the same grid and normalizing it again changes nothing beyond rounding.
package normalize
