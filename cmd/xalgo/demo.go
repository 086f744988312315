package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xalgo/lib/tree"
	"github.com/benz9527/xalgo/lib/xlog"
)

var errDemoCheck = errors.New("demo check failed")

func newDemoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Walk through the ordered map operations on an AVL tree",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newCommandLogger(cmd)
			defer func() {
				_ = logger.Sync()
			}()
			return runDemo(cmd.OutOrStdout(), logger)
		},
	}
}

func newCommandLogger(cmd *cobra.Command) xlog.XLogger {
	lvl, _ := cmd.Flags().GetString("log-level")
	format, _ := cmd.Flags().GetString("log-format")
	return xlog.NewXLogger(
		xlog.WithXLoggerLevel(xlog.LogLevel(lvl)),
		xlog.WithXLoggerEncoder(xlog.ParseLogEncoder(format)),
	)
}

func demoCheck(ok bool, what string) error {
	if ok {
		return nil
	}
	return fmt.Errorf("%w: %s", errDemoCheck, what)
}

func printAges(w io.Writer, ages tree.Tree[string, int]) {
	fmt.Fprintln(w, "Contents of AVL tree:")
	ages.Foreach(func(_ int64, name string, age int) bool {
		fmt.Fprintf(w, "(%s, %d)\n", name, age)
		return true
	})
}

// runDemo maps names to ages and exercises insert, duplicate insert,
// erase by iterator and by key, find and clear.
func runDemo(w io.Writer, logger xlog.XLogger) error {
	ages := tree.NewAVLTree[string, int]()
	for _, p := range []struct {
		name string
		age  int
	}{{"Joe", 25}, {"Ben", 99}, {"Arthur", 42}} {
		_, inserted := ages.Insert(p.name, p.age)
		if err := demoCheck(inserted, "insert "+p.name); err != nil {
			return err
		}
	}
	printAges(w, ages)

	pos, inserted := ages.Insert("Arthur", 142)
	logger.Debug("duplicate insert", zap.Bool("inserted", inserted), zap.Int("kept", pos.Val()))
	if err := multierr.Combine(
		demoCheck(!inserted, "duplicate insert must be rejected"),
		demoCheck(pos.Key() == "Arthur" && pos.Val() == 42, "duplicate insert must point to the kept element"),
	); err != nil {
		return err
	}
	printAges(w, ages)

	_, erased := ages.EraseAt(pos)
	if err := demoCheck(erased, "erase Arthur by iterator"); err != nil {
		return err
	}
	printAges(w, ages)

	pos, inserted = ages.Insert("Arthur", 142)
	if err := multierr.Combine(
		demoCheck(inserted, "re-insert Arthur"),
		demoCheck(ages.Find("Arthur").Equal(pos), "find must return the inserted position"),
		demoCheck(ages.Erase("Ben"), "erase Ben"),
	); err != nil {
		return err
	}
	printAges(w, ages)

	if err := multierr.Combine(
		demoCheck(!ages.Erase("Benjamin"), "erase absent Benjamin"),
		demoCheck(ages.Erase("Joe"), "erase Joe"),
		demoCheck(ages.Erase("Arthur"), "erase Arthur"),
	); err != nil {
		return err
	}
	printAges(w, ages)
	fmt.Fprintf(w, "Size of AVL tree: %d\n", ages.Len())
	if err := demoCheck(ages.Empty() && ages.Len() == 0, "tree must be empty"); err != nil {
		return err
	}

	_, inserted = ages.Insert("Ben", 99)
	_, insertedToo := ages.Insert("Arthur", 42)
	if err := demoCheck(inserted && insertedToo && ages.Len() == 2 && !ages.Empty(), "refill"); err != nil {
		return err
	}
	ages.Clear()
	if err := demoCheck(ages.Empty() && ages.Len() == 0, "clear"); err != nil {
		return err
	}
	logger.Info("demo finished", zap.Int64("size", ages.Len()))
	return nil
}
