package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/mazearena/internal/core/arena"
)

func main() {
	var (
		arenaPath string
		seed      int64
		count     int
		parallel  int
		format    string
	)
	flag.StringVar(&arenaPath, "arena", "", "arena YAML file; defaults apply when empty")
	flag.Int64Var(&seed, "seed", 1, "first seed")
	flag.IntVar(&count, "count", 1, "number of consecutive seeds; 1 renders the maze")
	flag.IntVar(&parallel, "parallel", runtime.GOMAXPROCS(0), "generators to run at once")
	flag.StringVar(&format, "format", "table", "survey output: table or yaml")
	flag.Parse()

	cfg := arena.DefaultConfig()
	if arenaPath != "" {
		var err error
		if cfg, err = arena.LoadFile(arenaPath); err != nil {
			fmt.Fprintln(os.Stderr, "load arena:", err)
			os.Exit(1)
		}
	}

	if count <= 1 {
		cfg.Seed, cfg.SeedPhrase = seed, ""
		if err := render(os.Stdout, cfg); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	seeds := make([]int64, count)
	for i := range seeds {
		seeds[i] = seed + int64(i)
	}
	surveys, err := arena.Sweep(ctx, cfg, seeds, parallel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "survey:", err)
		os.Exit(1)
	}

	switch format {
	case "yaml":
		err = writeYAML(os.Stdout, surveys)
	default:
		err = writeTable(os.Stdout, surveys)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func render(w io.Writer, cfg arena.Config) error {
	a, err := arena.New(cfg)
	if err != nil {
		return err
	}
	l := a.Layout()
	fmt.Fprintf(w, "seed %d  %dx%d  entrance %d,%d (%s)\n", a.Seed(), l.Config.Width, l.Config.Height, l.Entrance.X, l.Entrance.Z, l.GateDir)
	fmt.Fprint(w, l.Render())
	fmt.Fprintf(w, "walls %d  dead ends %d  lava %d  pads %d\n", l.Stats.Walls, l.Stats.DeadEnds, len(l.LavaCells), len(l.SpawnPads))
	return nil
}

func writeTable(w io.Writer, surveys []arena.Survey) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEED\tINSIDE\tWALLS\tDEAD ENDS\tBRAIDED\tREPAIRS\tPADS\tERROR")
	for _, s := range surveys {
		errText := ""
		if s.Err != nil {
			errText = s.Err.Error()
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
			s.Seed, s.Stats.InsideCells, s.Stats.Walls, s.Stats.DeadEnds,
			s.Stats.Braided, s.Stats.Repairs, s.SpawnPads, errText)
	}
	return tw.Flush()
}

type surveyRecord struct {
	Seed      int64  `yaml:"seed"`
	Inside    int    `yaml:"inside"`
	Walls     int    `yaml:"walls"`
	DeadEnds  int    `yaml:"dead_ends"`
	Braided   int    `yaml:"braided"`
	Repairs   int    `yaml:"repairs"`
	SpawnPads int    `yaml:"spawn_pads"`
	Colliders int    `yaml:"colliders"`
	Error     string `yaml:"error,omitempty"`
}

func writeYAML(w io.Writer, surveys []arena.Survey) error {
	records := make([]surveyRecord, 0, len(surveys))
	for _, s := range surveys {
		r := surveyRecord{
			Seed:      s.Seed,
			Inside:    s.Stats.InsideCells,
			Walls:     s.Stats.Walls,
			DeadEnds:  s.Stats.DeadEnds,
			Braided:   s.Stats.Braided,
			Repairs:   s.Stats.Repairs,
			SpawnPads: s.SpawnPads,
			Colliders: s.Colliders,
		}
		if s.Err != nil {
			r.Error = s.Err.Error()
		}
		records = append(records, r)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return err
	}
	return enc.Close()
}
