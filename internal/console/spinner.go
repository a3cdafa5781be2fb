package console

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Progress shows activity while a blocking call runs.
type Progress interface {
	// Start begins the indicator. The returned stop function halts it and
	// waits for it to exit; calling it more than once is safe.
	Start(message string) (stop func())
}

var frames = []string{"-", "/", "|", `\`}

// Spinner draws a one-line animated indicator on a terminal.
type Spinner struct {
	Out   io.Writer
	Delay time.Duration
}

func NewSpinner(out io.Writer) *Spinner {
	return &Spinner{Out: out, Delay: 100 * time.Millisecond}
}

func (s *Spinner) Start(message string) func() {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(s.Delay)
		defer ticker.Stop()
		for i := 0; ; i++ {
			fmt.Fprintf(s.Out, "\r\033[96m\033[1m%s %s\033[0m", message, frames[i%len(frames)])
			select {
			case <-done:
				fmt.Fprint(s.Out, "\r"+strings.Repeat(" ", len(message)+5)+"\r")
				return
			case <-ticker.C:
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			wg.Wait()
		})
	}
}

// Quiet is a Progress that draws nothing.
type Quiet struct{}

func (Quiet) Start(string) func() { return func() {} }
