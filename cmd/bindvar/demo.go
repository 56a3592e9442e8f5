package main

import (
	stderrors "errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/vango-dev/bindvar/internal/errors"
	"github.com/vango-dev/bindvar/pkg/binding"
)

// scenario is one self-checking walk through the engine.
type scenario struct {
	name string
	run  func() error
}

func demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the engine behavior checks",
		Long: `Run a set of small graphs through the engine and check the results.

Each scenario prints ✓ when the engine behaves as documented and ✗ with
the deviation otherwise. The command fails if any scenario deviates.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.OutOrStdout())
		},
	}
}

func runDemo(w io.Writer) error {
	printBanner(w)
	fmt.Fprintln(w)

	failed := 0
	for _, s := range scenarios() {
		if err := s.run(); err != nil {
			failure(w, "%s", s.name)
			info(w, "%v", err)
			failed++
			continue
		}
		success(w, "%s", s.name)
	}
	fmt.Fprintln(w)

	if failed > 0 {
		return errors.Newf(errors.CategoryCLI, "%d of %d scenarios deviated", failed, len(scenarios())).
			WithSuggestion("Run the binding package tests for a detailed report")
	}
	info(w, "All scenarios passed")
	return nil
}

func scenarios() []scenario {
	return []scenario{
		{"memoization", checkMemoization},
		{"propagation", checkPropagation},
		{"dynamic dependencies", checkDynamicDeps},
		{"no-op suppression", checkNoopSuppression},
		{"cycle detection", checkCycle},
		{"listener ordering", checkListenerOrder},
		{"times ten", checkTimesTen},
		{"invert", checkInvert},
	}
}

func expect[T comparable](what string, got, want T) error {
	if got != want {
		return fmt.Errorf("%s: expected %v, got %v", what, want, got)
	}
	return nil
}

func get[T any](c *binding.Var[T]) T {
	v, _ := c.Get()
	return v
}

func checkMemoization() error {
	a := binding.New(3)
	calls := 0
	b := binding.Computed(func(ctx *binding.Context) int {
		calls++
		return binding.Use(ctx, a) + 1
	})

	first := get(b)
	second := get(b)
	return stderrors.Join(
		expect("first read", first, 4),
		expect("second read", second, 4),
		expect("evaluations", calls, 1),
	)
}

func checkPropagation() error {
	a := binding.New(1)
	bCalls := 0
	b := binding.Computed(func(ctx *binding.Context) int {
		bCalls++
		return binding.Use(ctx, a) * 2
	})
	c := binding.Computed(func(ctx *binding.Context) int {
		return binding.Use(ctx, b) + 1
	})
	get(c)

	a.Set(5)
	cv := get(c)
	bv := get(b)
	return stderrors.Join(
		expect("c", cv, 11),
		expect("b", bv, 10),
		expect("b evaluations", bCalls, 2),
	)
}

func checkDynamicDeps() error {
	flag := binding.New(true)
	x := binding.New(1)
	y := binding.New(2)
	d := binding.Computed(func(ctx *binding.Context) int {
		if binding.Use(ctx, flag) {
			return binding.Use(ctx, x)
		}
		return binding.Use(ctx, y)
	})
	get(d)

	y.Set(20)
	if d.Dirty() {
		return fmt.Errorf("unread branch invalidated the cell")
	}

	flag.Set(false)
	if got := get(d); got != 20 {
		return fmt.Errorf("after toggle: expected 20, got %d", got)
	}
	y.Set(30)
	if !d.Dirty() {
		return fmt.Errorf("newly read branch did not invalidate the cell")
	}
	return expect("after second write", get(d), 30)
}

func checkNoopSuppression() error {
	a := binding.New(3)
	parity := binding.Computed(func(ctx *binding.Context) int {
		return binding.Use(ctx, a) % 2
	})
	get(parity)

	fired := 0
	parity.AddListener(binding.NewListener(func(binding.Observable) { fired++ }))

	a.Set(5)
	return stderrors.Join(
		expect("parity", get(parity), 1),
		expect("listener calls", fired, 0),
	)
}

func checkCycle() error {
	var a, b *binding.Var[int]
	a = binding.Computed(func(ctx *binding.Context) int { return binding.Use(ctx, b) + 1 })
	b = binding.Computed(func(ctx *binding.Context) int { return binding.Use(ctx, a) + 1 })

	_, err := a.Get()
	if !stderrors.Is(err, binding.ErrCycle) {
		return fmt.Errorf("expected a cycle error, got %v", err)
	}
	return nil
}

func checkListenerOrder() error {
	a := binding.New(0)
	var order []string
	var second binding.Listener
	first := binding.NewListener(func(binding.Observable) {
		order = append(order, "first")
		a.RemoveListener(second)
	})
	second = binding.NewListener(func(binding.Observable) { order = append(order, "second") })
	third := binding.NewListener(func(binding.Observable) { order = append(order, "third") })
	a.AddListener(first)
	a.AddListener(second)
	a.AddListener(third)

	a.Set(1)
	return expect("order", fmt.Sprint(order), "[first third]")
}

func checkTimesTen() error {
	a := binding.New(2)
	calls := 0
	b := binding.Computed(func(ctx *binding.Context) int {
		calls++
		return binding.Use(ctx, a) * 10
	})
	fired := 0
	b.AddListener(binding.NewListener(func(binding.Observable) { fired++ }))

	if err := stderrors.Join(expect("b", get(b), 20), expect("evaluations", calls, 1)); err != nil {
		return err
	}
	a.Set(2)
	if err := stderrors.Join(expect("b after same value", get(b), 20), expect("listener calls", fired, 0)); err != nil {
		return err
	}
	a.Set(5)
	return stderrors.Join(
		expect("b after write", get(b), 50),
		expect("evaluations", calls, 2),
		expect("listener calls", fired, 1),
	)
}

func checkInvert() error {
	f := binding.NewBool(false)
	got, err := f.Invert()
	if err != nil {
		return err
	}
	return stderrors.Join(
		expect("returned", got, true),
		expect("stored", get(f.Var), true),
	)
}
