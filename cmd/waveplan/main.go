// waveplan prints the night waves the Lua scripts produce, one entry per day,
// as yaml. Useful when tuning wave.lua.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/survivethenight/server/internal/scripting"
)

type Group struct {
	Type  string `yaml:"type"`
	Count int    `yaml:"count"`
}

type Night struct {
	Day      int     `yaml:"day"`
	Duration float64 `yaml:"duration"`
	Total    int     `yaml:"total"`
	Groups   []Group `yaml:"groups"`
}

func main() {
	dir := flag.String("scripts", "", "extra .lua directory loaded over the built-ins")
	days := flag.Int("days", 10, "number of nights to plan")
	night := flag.Float64("night", 100, "base night duration in seconds")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: waveplan [-scripts dir] [-days n] [-night seconds] [output.yaml]")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(*dir, *days, *night, flag.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(dir string, days int, base float64, outPath string) error {
	log, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer log.Sync()

	engine, err := scripting.NewEngine(dir, log)
	if err != nil {
		return fmt.Errorf("load scripts: %w", err)
	}
	defer engine.Close()

	plan := make([]Night, 0, days)
	for day := 1; day <= days; day++ {
		n := Night{Day: day, Duration: base}
		if d, ok := engine.NightDuration(day, base); ok {
			n.Duration = d
		}
		for _, g := range engine.PlanWave(day) {
			n.Groups = append(n.Groups, Group{Type: string(g.Type), Count: g.Count})
			n.Total += g.Count
		}
		plan = append(plan, n)
	}

	var out io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	fmt.Fprintf(out, "# Night waves, auto-generated by waveplan (%d nights)\n", len(plan))
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(plan); err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	if outPath != "" {
		fmt.Printf("Wrote %d nights to %s\n", len(plan), outPath)
	}
	return nil
}
