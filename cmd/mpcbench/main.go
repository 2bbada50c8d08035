// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command mpcbench measures the evaluation throughput of the navi_test
// kernels through the dispatch layer. Each simulated control loop owns its
// workspace; the evaluator is shared.
package main

import (
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/curioloop/mpckernel/navitest"
)

func main() {
	iters := flag.Int("iters", 10000, "evaluations per control loop")
	loops := flag.Int("loops", 1, "independent control loops")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()

	eval, err := navitest.Problem(&log).New()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid generated metadata")
	}

	p := demoParams()
	start := time.Now()

	var eg errgroup.Group
	for l := 0; l < *loops; l++ {
		w := eval.Init()
		eg.Go(func() error {
			u := make([]float64, navitest.Nu)
			xi := make([]float64, navitest.Nxi)
			xi[0] = 10
			cost := make([]float64, 1)
			grad := make([]float64, navitest.Nu)
			f1 := make([]float64, navitest.N1)
			f2 := make([]float64, navitest.N2)

			for n := 0; n < *iters; n++ {
				if s := eval.Cost(w, u, xi, p, cost); !s.OK() {
					log.Error().Int("loop", l).Int("status", int(s)).Msg("cost kernel failed")
					return nil
				}
				eval.Gradient(w, u, xi, p, grad)
				eval.MappingF1(w, u, p, f1)
				eval.MappingF2(w, u, p, f2)

				// A crude descent step keeps the iterates moving like a
				// solver would, without pretending to be one.
				for i := range u {
					u[i] -= 1e-4 * grad[i]
				}
			}
			log.Debug().Int("loop", l).Float64("cost", cost[0]).Msg("loop finished")
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		log.Fatal().Err(err).Msg("benchmark failed")
	}

	elapsed := time.Since(start)
	total := 4 * *iters * *loops
	log.Info().
		Str("problem", eval.Meta().Name).
		Int("loops", *loops).
		Int("evaluations", total).
		Dur("elapsed", elapsed).
		Float64("evals_per_sec", float64(total)/elapsed.Seconds()).
		Msg("done")
}



// demoParams mirrors the reference scene of the package tests: a straight
// path to the goal with the obstacle set far from the trajectory.
func demoParams() []float64 {
	p := make([]float64, navitest.Np)
	p[3] = 5   // goal x
	p[6] = 0.2 // initial linear speed

	copy(p[8:18], []float64{1, 0.5, 0.1, 0.01, 0.01, 5, 2, 10, 0.1, 0.1})

	for k := 0; k < navitest.NHor; k++ {
		p[18+3*k] = 0.25 * float64(k+1) // path reference
		p[78+k] = 1.0                   // speed reference
		p[2618+k] = 1.0                 // static weights
		p[2638+k] = 1.0                 // dynamic weights
	}
	for j := 0; j < navitest.NOther; j++ {
		for k := 0; k < navitest.NHor; k++ {
			base := 98 + j*3*navitest.NHor + 3*k
			p[base], p[base+1] = float64(100+j), 50
		}
	}
	for i := 0; i < navitest.NStcObs; i++ {
		base := 1298 + i*12
		xl, xh := float64(40+5*i), float64(42+5*i)
		copy(p[base:], []float64{xh, -xl, 42, -40})
		copy(p[base+4:], []float64{1, -1, 0, 0})
		copy(p[base+8:], []float64{0, 0, 1, -1})
	}
	for j := 0; j < navitest.NDynObs; j++ {
		for k := 0; k < navitest.NHor; k++ {
			base := 1418 + j*6*navitest.NHor + 6*k
			p[base], p[base+1] = float64(30+j), 30
			p[base+2], p[base+3] = 1, 1
			p[base+5] = 1
		}
	}
	return p
}
