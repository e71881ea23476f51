// Package info prints where questlog keeps its data and how loaded it is.
package info

import (
	"context"
	"fmt"
	"os"

	"tableflip.dev/questlog/pkg/app"
	"tableflip.dev/questlog/pkg/printers"
	"tableflip.dev/questlog/pkg/store"
)

type Info struct {
	Config  store.Config
	Service *app.Service
	// Date is the day whose load is summarised; empty means today.
	Date string
	JSON bool
}

type infoJSON struct {
	Backend string      `json:"backend"`
	Path    string      `json:"path,omitempty"`
	Redis   string      `json:"redis,omitempty"`
	User    string      `json:"user"`
	Summary app.Summary `json:"summary"`
}

func (n *Info) Do(ctx context.Context) error {
	if n.Config == nil {
		var err error
		n.Config, err = store.LoadConfig()
		if err != nil {
			return err
		}
	}
	if n.Service == nil {
		return fmt.Errorf("Failed to create service object.")
	}
	sum, err := n.Service.Stats(ctx, n.Date)
	if err != nil {
		return err
	}

	if n.JSON {
		out := infoJSON{Backend: n.Config.Backend(), User: n.Config.User(), Summary: sum}
		if out.Backend == store.BackendRemote {
			out.Redis = n.Config.RedisAddr()
		} else {
			out.Path = n.Config.BasePath()
		}
		return printers.JSON(out)
	}

	if override := os.Getenv("QUESTLOG_CONFIG_PATH"); override != "" {
		fmt.Println("QUESTLOG_CONFIG_PATH found on env, using ", override)
	}
	fmt.Println("Backend: ", n.Config.Backend())
	if n.Config.Backend() == store.BackendRemote {
		fmt.Printf("Redis:    %s (%s/%s)\n", n.Config.RedisAddr(), n.Config.RedisPrefix(), n.Config.User())
	} else {
		fmt.Println("Path:    ", n.Config.BasePath())
	}
	fmt.Println("")

	pp := printers.PrettyPrint{Now: n.Service.Engine.Now()}
	pp.Stats(sum.Global, sum.Day, sum.Date)
	return nil
}
