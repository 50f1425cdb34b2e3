// Package vcs repairs and orders the elemental-abundance constraints of a
// multiphase chemical equilibrium problem before a VCS (Villars–Cruise–Smith)
// solve begins.
//
// What is in here?
//
//	Given a formula matrix (constraints × species), target abundances and a
//	nonnegative mole vector, vcs can:
//		• Evaluate current abundances and the discrepancy norm
//		• Check compliance with mixed relative/absolute tolerances
//		• Rearrange constraints so the first C rows are linearly independent
//		• Correct the mole vector through a staged repair
//		• Switch two constraints while keeping dependent bookkeeping in sync
//
// Everything is organized under a few subpackages:
//
//	equil/     - Problem, Evaluator, Checker, Rearranger, Corrector, switches
//	matrix/    - dense row-major storage, Gram–Schmidt and pivoted LU kernels
//	problemio/ - YAML problem files (decode, build, encode)
//	telemetry/ - Prometheus counters and histograms for corrections
//	cmd/       - equilfix, a CLI driving the above from a problem file
//
// Quick example:
//
//	p, _ := equil.NewProblem(def)
//	_, _ = p.RearrangeConstraints()
//	rep, _ := p.CorrectAbundances()
//	fmt.Println(rep.Status) // compliant
//
//	go get github.com/katalvlaran/vcs
package vcs
