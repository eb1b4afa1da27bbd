package main

import (
	"fmt"
	"os"

	"github.com/lox/bjtrainer/internal/display"
)

type ChartCmd struct{}

func (c *ChartCmd) Run(g *Globals) error {
	d := display.New(os.Stdout, !g.NoColor)
	fmt.Println(d.Chart())
	return nil
}
