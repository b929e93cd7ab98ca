// Package script drives a player from Lua.
//
// The following globals are installed (also available as fields of the
// pcplay table):
//
//	play(mml)                 replace the current song
//	play_tone(freq, seconds)  play a single tone
//	beep()                    400 Hz for 0.2 s
//	sleep(seconds)            pause the script
//	wait()                    block until the current song ends
//	log(msg)                  write to the host logger
package script

import (
	"context"
	"log"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// Controller is the part of the player a script can reach.
type Controller interface {
	Play(script string) error
	PlayTone(freq int, seconds float64) error
	Beep() error
	Wait(ctx context.Context) error
}

type Runner struct {
	L      *lua.LState
	ctx    context.Context
	ctrl   Controller
	logger *log.Logger
}

// New creates a Lua state bound to ctrl. Cancelling ctx interrupts the
// running script.
func New(ctx context.Context, ctrl Controller, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	r := &Runner{L: lua.NewState(), ctx: ctx, ctrl: ctrl, logger: logger}
	r.L.SetContext(ctx)
	funcs := map[string]lua.LGFunction{
		"play":      r.play,
		"play_tone": r.playTone,
		"beep":      r.beep,
		"sleep":     r.sleep,
		"wait":      r.wait,
		"log":       r.log,
	}
	r.L.SetGlobal("pcplay", r.L.SetFuncs(r.L.NewTable(), funcs))
	for name, fn := range funcs {
		r.L.SetGlobal(name, r.L.NewFunction(fn))
	}
	return r
}

func (r *Runner) DoString(src string) error { return r.L.DoString(src) }

func (r *Runner) DoFile(path string) error { return r.L.DoFile(path) }

func (r *Runner) Close() { r.L.Close() }

func (r *Runner) play(L *lua.LState) int {
	if err := r.ctrl.Play(L.CheckString(1)); err != nil {
		L.RaiseError("play: %v", err)
	}
	return 0
}

func (r *Runner) playTone(L *lua.LState) int {
	freq := L.CheckInt(1)
	seconds := float64(L.CheckNumber(2))
	if err := r.ctrl.PlayTone(freq, seconds); err != nil {
		L.RaiseError("play_tone: %v", err)
	}
	return 0
}

func (r *Runner) beep(L *lua.LState) int {
	if err := r.ctrl.Beep(); err != nil {
		L.RaiseError("beep: %v", err)
	}
	return 0
}

func (r *Runner) sleep(L *lua.LState) int {
	d := time.Duration(float64(L.CheckNumber(1)) * float64(time.Second))
	if d <= 0 {
		return 0
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-r.ctx.Done():
		L.RaiseError("sleep: %v", r.ctx.Err())
	case <-t.C:
	}
	return 0
}

func (r *Runner) wait(L *lua.LState) int {
	if err := r.ctrl.Wait(r.ctx); err != nil {
		L.RaiseError("wait: %v", err)
	}
	return 0
}

func (r *Runner) log(L *lua.LState) int {
	r.logger.Print(L.CheckString(1))
	return 0
}
