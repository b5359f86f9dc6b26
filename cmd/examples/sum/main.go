package main

import (
	"context"
	"fmt"
	"log"

	"github.com/avi3tal/blueprint/internal/engine"
	"github.com/avi3tal/blueprint/internal/nodes"
	"github.com/avi3tal/blueprint/pkg/blueprint"
	"github.com/avi3tal/blueprint/pkg/types"
)

func main() {
	for _, mode := range []types.PureCache{types.PureCacheResolution, types.PureCachePass} {
		app, err := blueprint.NewApp(blueprint.WithPassConfig(engine.NewConfig(engine.WithPureCache(mode))))
		if err != nil {
			log.Fatal(err)
		}

		app.OnStatusChange(func(c blueprint.StatusChange) {
			fmt.Printf("  %-16s %s\n", c.NodeID, c.Status)
		})

		g, vars, err := nodes.SumDemo(app.Registry())
		if err != nil {
			log.Fatal(err)
		}
		if mode == types.PureCacheResolution {
			fmt.Println(g.Mermaid())
		}

		globals := blueprint.NewVariables(vars)
		fmt.Printf("pure cache %q:\n", mode)
		res, err := app.Run(context.Background(), g, "", globals)
		if err != nil {
			log.Fatal(err)
		}

		sum, _ := globals.Get("Sum")
		fmt.Printf("console: %v\nSum = %v after %d steps\n\n", res.ConsoleValues(), sum, res.Steps)
	}
}
