/*
shaderbind reflects one or more WGSL shaders, merges them into a pipeline
resource layout and prints the resulting descriptor sets and cache size.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spaghettifunk/shaderbind/engine/config"
	"github.com/spaghettifunk/shaderbind/engine/core"
	"github.com/spaghettifunk/shaderbind/engine/renderer/reflect"
	"github.com/spaghettifunk/shaderbind/engine/renderer/vulkan"
	"github.com/spaghettifunk/shaderbind/engine/systems"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML configuration file")
	watch := flag.Bool("watch", false, "inspect again whenever the configuration file changes")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-config file] [-watch] shader.wgsl...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	shaders := flag.Args()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			core.LogFatal("%s", err)
		}
	}
	if err := cfg.Apply(); err != nil {
		core.LogFatal("%s", err)
	}

	if err := inspect(shaders); err != nil {
		core.LogFatal("%s", err)
	}
	if !*watch || *configPath == "" {
		return
	}

	w, err := config.Watch(*configPath, func(c *config.Config) {
		if err := c.Apply(); err != nil {
			core.LogError("%s", err)
			return
		}
		if err := inspect(shaders); err != nil {
			core.LogError("%s", err)
		}
	})
	if err != nil {
		core.LogFatal("%s", err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	<-sigCh
	if err := w.Close(); err != nil {
		core.LogError("%s", err)
	}
}

func loadLayout(path string) (*vulkan.ShaderResourceLayout, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	builder := vulkan.NewShaderResourceLayoutBuilder(0)
	if err := reflect.ReflectWGSL(string(source), builder); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	layout, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return layout, nil
}

// loadLayouts reflects every shader on the job system. Stage order follows
// the command line.
func loadLayouts(shaders []string) ([]*vulkan.ShaderResourceLayout, error) {
	js, err := systems.NewJobSystem(min(runtime.NumCPU(), len(shaders)), len(shaders))
	if err != nil {
		return nil, err
	}
	layouts := make([]*vulkan.ShaderResourceLayout, len(shaders))
	errs := make([]error, len(shaders))
	for i, path := range shaders {
		err := js.Submit(systems.JobTask{
			Name: path,
			Run: func() error {
				layouts[i], errs[i] = loadLayout(path)
				return errs[i]
			},
		})
		if err != nil {
			return nil, err
		}
	}
	if err := js.Shutdown(); err != nil {
		return nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return layouts, nil
}

func inspect(shaders []string) error {
	clock := core.NewClock()
	clock.Start()

	stages, err := loadLayouts(shaders)
	if err != nil {
		return err
	}
	pipeline, err := vulkan.NewPipelineResourceLayout(stages...)
	if err != nil {
		return err
	}

	allocator := &core.TrackingAllocator{}
	srb, err := vulkan.NewShaderResourceBinding(pipeline, allocator)
	if err != nil {
		return err
	}
	defer srb.Release()
	clock.Stop()

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("SET", "SLOT", "BINDING", "NAME", "TYPE", "ARRAY", "STAGES")
	for set := uint32(0); set < pipeline.NumSets(); set++ {
		for _, attr := range pipeline.Resources(set) {
			t.Row(
				strconv.FormatUint(uint64(set), 10),
				strconv.FormatUint(uint64(attr.CacheOffset), 10),
				strconv.FormatUint(uint64(attr.Binding), 10),
				attr.Name,
				attr.Type.String(),
				strconv.FormatUint(uint64(attr.ArraySize), 10),
				attr.Stages.String(),
			)
		}
	}
	fmt.Println(t.Render())
	fmt.Printf("stages:          %s\n", pipeline.Stages)
	fmt.Printf("set sizes:       %v\n", pipeline.SetSizes())
	fmt.Printf("dynamic offsets: %d\n", srb.Cache().DynamicOffsetCount())
	fmt.Printf("cache memory:    %s\n", core.FormatMemorySize(allocator.Allocated(), 2, 0))
	core.LogDebug("inspected %d shaders in %s", len(shaders), clock.Elapsed())
	return nil
}
