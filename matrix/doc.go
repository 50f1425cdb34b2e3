// Package matrix offers the dense storage and small linear-algebra kernels
// behind the equilibrium constraint core.
//
// The matrix package provides:
//
//   - Dense, a row-major float64 matrix with bounds-checked At/Set, live row
//     views (RawRow), in-place row/column permutation and copy-based
//     submatrix extraction (Induced, Leading).
//   - LUSolve, a deterministic square solve with partial pivoting that
//     reports exact singularity as ErrSingular.
//   - Orthogonalizer, an incremental modified Gram–Schmidt used to pick a
//     maximal linearly independent subset of rows.
//
// All public operations return sentinel errors (see errors.go) instead of
// panicking on user input.
package matrix
