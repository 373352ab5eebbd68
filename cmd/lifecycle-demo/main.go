// Command lifecycle-demo plays a short card round through the event bus,
// tears the table view down with a bag and lets a leaked deck be reaped.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/krew-solutions/ascetic-lifecycle-go/internal/logx"
	"github.com/krew-solutions/ascetic-lifecycle-go/lifecycle/bag"
	"github.com/krew-solutions/ascetic-lifecycle-go/lifecycle/config"
	"github.com/krew-solutions/ascetic-lifecycle-go/lifecycle/eventbus"
	"github.com/krew-solutions/ascetic-lifecycle-go/lifecycle/observable"
	"github.com/krew-solutions/ascetic-lifecycle-go/lifecycle/reaper"
)

type RoundStarted struct {
	eventbus.EventBase
	Round int
}

type CardPlayed struct {
	eventbus.EventBase
	Seat int
	Card string
}

type RoundEnded struct {
	eventbus.EventBase
}

const scoreboardView bag.ViewID = 1

// views is an in-memory view allocator.
type views struct {
	out    io.Writer
	serial int
}

func (v *views) OpenView(id bag.ViewID, _ any) int {
	v.serial++
	fmt.Fprintf(v.out, "open view %d as #%d\n", id, v.serial)
	return v.serial
}

func (v *views) CloseView(serialID int) {
	fmt.Fprintf(v.out, "close view #%d\n", serialID)
}

// tableView is a feature that owns everything it subscribes to through one bag.
type tableView struct {
	bag   *bag.Bag
	score *observable.Value[int]
	out   io.Writer
}

func openTableView(out io.Writer, bus *eventbus.Bus, opener bag.ViewOpener, logger *slog.Logger) *tableView {
	v := &tableView{
		bag:   bag.New(bag.WithLogger(logger)),
		score: observable.NewValue(0),
		out:   out,
	}
	bag.OnNotify[RoundStarted](v.bag, bus, func() {
		fmt.Fprintln(out, "table: round started")
	})
	bag.On(v.bag, bus, func(e CardPlayed) {
		fmt.Fprintf(out, "table: seat %d played %s\n", e.Seat, e.Card)
		v.score.Set(v.score.Get() + 1)
	})
	bag.Listen(v.bag, v.score.OnValueChanged, func(prev, next int) {
		fmt.Fprintf(out, "table: score %d -> %d\n", prev, next)
	})
	bag.OpenSubView(v.bag, opener, scoreboardView, nil)
	return v
}

func (v *tableView) Close() error {
	return v.bag.Close()
}

// deck stands for a resource that a careless caller may drop without closing.
type deck struct {
	cards []string
}

func run(out io.Writer, cfg config.Config, logger *slog.Logger) error {
	bus := eventbus.New(eventbus.WithLogger(logger), eventbus.WithDebugEmit(cfg.DebugEmit))
	r := reaper.New(reaper.WithLogger(logger))
	defer r.Dispose()

	view := openTableView(out, bus, &views{out: out}, logger)

	eventbus.Emit(bus, RoundStarted{Round: 1})
	eventbus.Emit(bus, CardPlayed{Seat: 0, Card: "3♠"})
	eventbus.Emit(bus, CardPlayed{Seat: 1, Card: "K♥"})
	eventbus.EmitDefault[RoundEnded](bus)

	if err := view.Close(); err != nil {
		return err
	}
	eventbus.Emit(bus, CardPlayed{Seat: 2, Card: "A♦"})
	fmt.Fprintf(out, "subscribed event types after teardown: %d\n", bus.Len())

	released := make(chan struct{})
	if err := leakDeck(r, released); err != nil {
		return err
	}
	deadline := time.After(5 * time.Second)
	for {
		runtime.GC()
		select {
		case <-released:
			fmt.Fprintln(out, "deck released after collection")
			return nil
		case <-deadline:
			return fmt.Errorf("deck was not reaped")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func leakDeck(r *reaper.Reaper, released chan<- struct{}) error {
	d := &deck{cards: []string{"3♠", "K♥", "A♦"}}
	return reaper.Register(r, d, func() { close(released) })
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := cfg.Logger(os.Stderr)
	slog.SetDefault(logger)

	if err := run(os.Stdout, cfg, logger); err != nil {
		logger.Error("demo failed", logx.Error(err))
		os.Exit(1)
	}
}
