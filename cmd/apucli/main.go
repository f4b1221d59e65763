// Command apucli is a reference host for the nexen-apu core: it drives
// Apu.Run/Write/ReadStatus against a synthetic collaborator so the
// bus-glue contract in §6.1 of the core's spec has somewhere real to
// run end-to-end, outside of unit tests.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli"

	"github.com/TheAnsarya/nexen-apu/internal/apu"
	"github.com/TheAnsarya/nexen-apu/internal/version"
)

func main() {
	app := cli.NewApp()
	app.Name = "apucli"
	app.Usage = "nexen-apu reference host"
	app.Description = "Drives the NES APU core against a synthetic CPU collaborator"
	app.Version = version.String()
	app.Commands = []cli.Command{
		runCommand(),
		traceCommand(),
		regionsCommand(),
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("apucli: %v", err)
	}
}

func loadPRGFlag(collab *syntheticCollaborator, path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("prg: %w", err)
	}
	collab.loadPRG(data)
	return nil
}

func regionFromName(name string) (apu.Region, error) {
	switch name {
	case "ntsc", "":
		return apu.RegionNTSC, nil
	case "pal":
		return apu.RegionPAL, nil
	case "dendy":
		return apu.RegionDendy, nil
	default:
		return 0, fmt.Errorf("unknown region %q (want ntsc, pal, or dendy)", name)
	}
}

func runCommand() cli.Command {
	return cli.Command{
		Name:  "run",
		Usage: "advance the APU a fixed number of cycles and print a diagnostics snapshot",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "region", Value: "ntsc", Usage: "ntsc, pal, or dendy"},
			cli.Uint64Flag{Name: "cycles", Value: 29830, Usage: "CPU cycles to advance"},
			cli.StringFlag{Name: "prg", Usage: "PRG image to serve DMC DMA fetches from (mirrored across the window)"},
		},
		Action: func(c *cli.Context) error {
			region, err := regionFromName(c.String("region"))
			if err != nil {
				return err
			}

			collab := newSyntheticCollaborator()
			if err := loadPRGFlag(collab, c.String("prg")); err != nil {
				return err
			}
			sink := &countingSink{}
			a := apu.New(sink, collab)
			a.SetRegion(region)
			a.Reset(false)

			a.Write(0x4015, 0x1F) // enable all five channels

			target := c.Uint64("cycles")
			a.Run(target)

			printDiagnostics(a, sink, collab)
			return nil
		},
	}
}

type traceEvent struct {
	Cycle uint64 `json:"cycle"`
	Addr  uint16 `json:"addr"`
	Value uint8  `json:"value"`
}

func traceCommand() cli.Command {
	return cli.Command{
		Name:      "trace",
		Usage:     "replay a JSON list of {cycle, addr, value} register writes",
		ArgsUsage: "<trace.json>",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "region", Value: "ntsc", Usage: "ntsc, pal, or dendy"},
			cli.StringFlag{Name: "prg", Usage: "PRG image to serve DMC DMA fetches from (mirrored across the window)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("trace: a trace file path is required")
			}
			region, err := regionFromName(c.String("region"))
			if err != nil {
				return err
			}

			data, err := os.ReadFile(c.Args().Get(0))
			if err != nil {
				return fmt.Errorf("trace: %w", err)
			}

			var events []traceEvent
			if err := json.Unmarshal(data, &events); err != nil {
				return fmt.Errorf("trace: invalid trace file: %w", err)
			}

			collab := newSyntheticCollaborator()
			if err := loadPRGFlag(collab, c.String("prg")); err != nil {
				return err
			}
			sink := &countingSink{}
			a := apu.New(sink, collab)
			a.SetRegion(region)
			a.Reset(false)

			for _, ev := range events {
				a.Run(ev.Cycle)
				a.Write(ev.Addr, ev.Value)
				fmt.Printf("cycle=%d addr=$%04X value=$%02X status=$%02X\n",
					ev.Cycle, ev.Addr, ev.Value, a.ReadStatus())
			}

			printDiagnostics(a, sink, collab)
			return nil
		},
	}
}

func regionsCommand() cli.Command {
	return cli.Command{
		Name:  "regions",
		Usage: "list the supported regions",
		Action: func(c *cli.Context) error {
			fmt.Println("ntsc   North American / Japanese timing (default)")
			fmt.Println("pal    European timing")
			fmt.Println("dendy  Famicom-clone timing (shares NTSC DMC/noise/frame tables)")
			return nil
		},
	}
}

func printDiagnostics(a *apu.Apu, sink *countingSink, collab *syntheticCollaborator) {
	d := a.Snapshot()
	fmt.Printf("cycle=%d region=%d\n", d.Cycle, a.Region())
	fmt.Printf("pulse1 active=%t  pulse2 active=%t  triangle active=%t  noise active=%t  dmc active=%t\n",
		d.Pulse1Active, d.Pulse2Active, d.TriangleActive, d.NoiseActive, d.DMCActive)
	fmt.Printf("frame irq=%t  dmc irq=%t\n", d.FrameIRQ, d.DMCIRQ)
	fmt.Printf("samples: pulse1=%d pulse2=%d triangle=%d noise=%d dmc=%d\n",
		sink.counts[apu.ChannelPulse1], sink.counts[apu.ChannelPulse2],
		sink.counts[apu.ChannelTriangle], sink.counts[apu.ChannelNoise], sink.counts[apu.ChannelDMC])
	fmt.Printf("dma stall cycles accumulated: %d\n", collab.takeStall())
	fmt.Printf("collaborator irq line: %t\n", collab.irqLine())
}
