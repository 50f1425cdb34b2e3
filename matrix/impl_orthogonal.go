// SPDX-License-Identifier: MIT

// Package matrix - incremental modified Gram–Schmidt.
//
// Purpose:
//   - Decide, one candidate row at a time, whether a row is linearly
//     independent of the rows accepted so far (QR without row pivoting).
//   - Separate "probe" (Project) from "commit" (Accept) so a caller can
//     reject dependent candidates without disturbing the accepted basis.
//
// Complexity quicksheet:
//   - Project: O(k*w) for k accepted rows of width w; Accept: O(w).

package matrix

import "fmt"

const ctxOrtho = "Orthogonalizer"

// Orthogonalizer accumulates mutually orthogonal rows of a fixed width.
// Accepted rows are stored unnormalized together with their squared norms,
// so the projection coefficient of a candidate v on row q is <v,q>/<q,q>.
//
// The zero value is not usable; build with NewOrthogonalizer.
type Orthogonalizer struct {
	width   int
	basis   [][]float64 // accepted, mutually orthogonal rows
	normSq  []float64   // squared norms of basis rows
	pending []float64   // residual of the last projected candidate
	ready   bool        // pending holds an unconsumed projection
}

// NewOrthogonalizer prepares an orthogonalizer for rows of the given width
// with room for capacity accepted rows.
//
// Errors:
//   - ErrInvalidDimensions when width or capacity is negative.
func NewOrthogonalizer(width, capacity int) (*Orthogonalizer, error) {
	if width < 0 || capacity < 0 {
		return nil, fmt.Errorf("%s: width %d, capacity %d: %w", ctxOrtho, width, capacity, ErrInvalidDimensions)
	}

	return &Orthogonalizer{
		width:   width,
		basis:   make([][]float64, 0, capacity),
		normSq:  make([]float64, 0, capacity),
		pending: make([]float64, width),
	}, nil
}

// Len returns the number of accepted rows.
func (o *Orthogonalizer) Len() int { return len(o.basis) }

// Project orthogonalizes a copy of row against every accepted row, using the
// modified Gram–Schmidt update (each coefficient is taken against the
// already-reduced residual), and returns the squared norm of the residual.
// The residual is kept as the pending candidate for Accept.
//
// Errors:
//   - ErrDimensionMismatch when len(row) differs from the construction width.
//
// Complexity:
//   - Time O(Len()*w) for row width w, Space O(1) beyond the pending buffer.
func (o *Orthogonalizer) Project(row []float64) (float64, error) {
	if len(row) != o.width {
		return 0, fmt.Errorf("%s.Project: len %d != %d: %w", ctxOrtho, len(row), o.width, ErrDimensionMismatch)
	}
	copy(o.pending, row)

	var (
		j, l int
		dot  float64
		q    []float64
	)
	for j = 0; j < len(o.basis); j++ {
		q = o.basis[j]
		dot = ZeroSum
		for l = 0; l < o.width; l++ {
			dot += o.pending[l] * q[l]
		}
		dot /= o.normSq[j]
		for l = 0; l < o.width; l++ {
			o.pending[l] -= dot * q[l]
		}
	}

	var ns float64
	for l = 0; l < o.width; l++ {
		ns += o.pending[l] * o.pending[l]
	}
	o.ready = true

	return ns, nil
}

// Accept commits the last projected residual as a new basis row.
// It returns false when there is no pending projection (Project not called,
// or the projection was already consumed) or when the residual is exactly zero.
func (o *Orthogonalizer) Accept() bool {
	if !o.ready {
		return false
	}
	var ns float64
	for _, v := range o.pending {
		ns += v * v
	}
	if ns == ZeroSum {
		return false
	}
	row := make([]float64, o.width)
	copy(row, o.pending)
	o.basis = append(o.basis, row)
	o.normSq = append(o.normSq, ns)
	o.ready = false

	return true
}
