// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package co provides goroutine helpers.
package co

import (
	"runtime"
	"sync"
)

// Goes to run and manage life-cycle of go routines.
type Goes struct {
	wg sync.WaitGroup
}

// Go run f in go routine.
func (g *Goes) Go(f func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		f()
	}()
}

// Wait wait for all go routines started by 'Go' done.
func (g *Goes) Wait() {
	g.wg.Wait()
}

// Parallel runs works enqueued by cb on NumCPU workers.
// The returned channel is closed once all works are done.
func Parallel(cb func(queue chan<- func())) <-chan struct{} {
	queue := make(chan func(), runtime.NumCPU()*2)
	done := make(chan struct{})

	var goes Goes
	for i := 0; i < runtime.NumCPU(); i++ {
		goes.Go(func() {
			for work := range queue {
				work()
			}
		})
	}
	go func() {
		defer close(done)
		defer goes.Wait()
		defer close(queue)
		cb(queue)
	}()
	return done
}
