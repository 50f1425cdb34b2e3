// SPDX-License-Identifier: MIT
// Package matrix provides the dense linear-algebra kernels needed by the
// equilibrium core: a square solve by LU factorization with partial pivoting.
//
// Notes:
//   - All kernels use the central validators and return sentinels wrapped via matrixErrorf.
//   - Inputs are never mutated; workspaces are allocated per call.

package matrix

import (
	"fmt"
	"math"
)

// ZeroSum is the initial sum value for forward/backward substitution.
const ZeroSum = 0.0

// ZeroPivot is the sentinel for detecting a zero pivot after row exchange.
const ZeroPivot = 0.0

// Operation name constants for unified error wrapping.
const (
	opLUSolve = "LUSolve"
)

// matrixErrorf wraps err with an operation tag, preserving the original error via %w.
// Use only when err != nil to avoid creating a non-nil wrapper around a nil cause.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// LUSolve solves the square system A·x = b by Doolittle LU factorization with
// partial (row) pivoting, returning a freshly allocated x.
//
// Implementation:
//   - Stage 1: ValidateSquare(a), ValidateVecLen(b, n). Copy A into a flat
//     workspace and b into x.
//   - Stage 2: For k=0..n-1, pick the row p ≥ k with the largest |A[p,k]|,
//     swap rows p and k in both A and x, reject an exactly zero pivot, then
//     eliminate below the pivot storing the multipliers in place (L part).
//   - Stage 3: Back substitution on the U part, bottom-up.
//
// Behavior highlights:
//   - Fully deterministic loop orders; ties in pivot magnitude keep the
//     lowest row index.
//   - Singularity is reported only for an exactly zero pivot; near-singular
//     systems return a (possibly large) solution and leave conditioning
//     policy to the caller.
//
// Inputs:
//   - a: non-nil square matrix (n×n).
//   - b: right-hand side of length n.
//
// Returns:
//   - []float64: solution x of length n.
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare, ErrDimensionMismatch (validation).
//   - ErrSingular (zero pivot after pivoting).
//
// Complexity:
//   - Time O(n^3), Space O(n^2).
func LUSolve(a Matrix, b []float64) ([]float64, error) {
	if err := ValidateSquare(a); err != nil {
		return nil, matrixErrorf(opLUSolve, err)
	}
	n := a.Rows()
	if err := ValidateVecLen(b, n); err != nil {
		return nil, matrixErrorf(opLUSolve, err)
	}

	// Workspace copy of A (row-major) and RHS.
	w := make([]float64, n*n)
	if d, ok := a.(*Dense); ok {
		copy(w, d.data)
	} else {
		var i, j int
		var v float64
		var err error
		for i = 0; i < n; i++ {
			for j = 0; j < n; j++ {
				if v, err = a.At(i, j); err != nil {
					return nil, matrixErrorf(opLUSolve, err)
				}
				w[i*n+j] = v
			}
		}
	}
	x := make([]float64, n)
	copy(x, b)

	var (
		i, j, k, p int
		pivot, mag float64
		factor     float64
		sum        float64
	)
	// Forward elimination with partial pivoting.
	for k = 0; k < n; k++ {
		p = k
		mag = math.Abs(w[k*n+k])
		for i = k + 1; i < n; i++ {
			if v := math.Abs(w[i*n+k]); v > mag {
				mag, p = v, i
			}
		}
		if mag == ZeroPivot {
			return nil, matrixErrorf(opLUSolve, ErrSingular)
		}
		if p != k {
			for j = 0; j < n; j++ {
				w[k*n+j], w[p*n+j] = w[p*n+j], w[k*n+j]
			}
			x[k], x[p] = x[p], x[k]
		}
		pivot = w[k*n+k]
		for i = k + 1; i < n; i++ {
			factor = w[i*n+k] / pivot
			w[i*n+k] = factor
			if factor == 0 {
				continue
			}
			for j = k + 1; j < n; j++ {
				w[i*n+j] -= factor * w[k*n+j]
			}
			x[i] -= factor * x[k]
		}
	}

	// Back substitution: U*x = y.
	for i = n - 1; i >= 0; i-- {
		sum = ZeroSum
		for j = i + 1; j < n; j++ {
			sum += w[i*n+j] * x[j]
		}
		x[i] = (x[i] - sum) / w[i*n+i]
	}

	return x, nil
}
