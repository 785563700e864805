package game

import (
	"fmt"
	"io"
	"sync"
)

// Observer is notified of every round and of every finished session.
// Implementations must be safe for concurrent use when sessions run in
// parallel.
type Observer interface {
	OnRound(ev RoundEvent)
	OnFinish(res Result)
}

// Observers fans out to each observer in order.
type Observers []Observer

func (o Observers) OnRound(ev RoundEvent) {
	for _, x := range o {
		x.OnRound(ev)
	}
}

func (o Observers) OnFinish(res Result) {
	for _, x := range o {
		x.OnFinish(res)
	}
}

// Printer writes the per-round diagnostics of verbose mode.
type Printer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewPrinter(w io.Writer) *Printer { return &Printer{w: w} }

func (p *Printer) OnRound(ev RoundEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.w, "Guessing for (X)     : %+v\n", ev.Slot)
	fmt.Fprintf(p.w, "Guessing this letter : %s\n", ev.Guess)
	fmt.Fprintf(p.w, "Possible Guesses     : %s\n", ev.Ranked)
	fmt.Fprintf(p.w, "Server Response      : %+v\n", ev.Reply)
	fmt.Fprintf(p.w, "New Details of (X)   : %+v\n", ev.Slots)
}

func (p *Printer) OnFinish(res Result) {
	p.mu.Lock()
	defer p.mu.Unlock()

	outcome := string(res.Status)
	if res.Aborted() {
		outcome = "ABORTED"
	}
	fmt.Fprintf(p.w, "The prisoner is: %s\n", outcome)
	fmt.Fprintf(p.w, "%s - %s\n\n\n", outcome, res.State)
}
