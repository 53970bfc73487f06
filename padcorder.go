// This file is part of Padcorder.
//
// Padcorder is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Padcorder is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Padcorder.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/padcorder/padcorder/config"
	"github.com/padcorder/padcorder/driver"
	"github.com/padcorder/padcorder/driver/sdlpad"
	"github.com/padcorder/padcorder/driver/xpad"
	"github.com/padcorder/padcorder/logger"
	"github.com/padcorder/padcorder/metrics"
	"github.com/padcorder/padcorder/notify"
	"github.com/padcorder/padcorder/pad"
	"github.com/padcorder/padcorder/sequence"
	"github.com/padcorder/padcorder/session"
	"github.com/padcorder/padcorder/transcript"
	"github.com/padcorder/padcorder/version"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "padcorder",
		Short:        "record and replay gamepad input through a virtual controller",
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(configPath)
		},
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "padcorder.yaml", "path to configuration file")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "print version information",
		Run: func(_ *cobra.Command, _ []string) {
			ver, rev, release := version.Version()
			fmt.Printf("%s (%s)\n", version.ApplicationName, ver)
			if !release {
				fmt.Printf("  %s\n", rev)
			}
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "list recorded sequences in the transcript",
		RunE: func(_ *cobra.Command, _ []string) error {
			return listSequences(configPath)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "rename slot name",
		Short: "rename a recorded sequence",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return renameSequence(configPath, args[0], args[1])
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// consoleNotify prints session notices to stdout.
type consoleNotify struct {
	s *session.Session
}

func (c *consoleNotify) Notify(notice notify.Notice) error {
	switch notice {
	case notify.NotifyRecordingStarted:
		fmt.Printf("* recording slot %d\n", c.s.Slot())
	case notify.NotifyRecordingEnded:
		fmt.Printf("* recorded slot %d\n", c.s.Slot())
	case notify.NotifyRecordingFull:
		fmt.Printf("* recording full, slot %d committed\n", c.s.Slot())
	case notify.NotifyPlaybackStarted:
		fmt.Printf("* playing slot %d\n", c.s.Slot())
	case notify.NotifyPlaybackEnded:
		fmt.Printf("* finished slot %d\n", c.s.Slot())
	case notify.NotifyPlaybackAborted:
		fmt.Printf("* playback aborted\n")
	case notify.NotifyInterference:
		fmt.Printf("* taken over, recording slot %d\n", c.s.Slot())
	case notify.NotifySlotChanged:
		fmt.Printf("* slot %d\n", c.s.Slot())
	}
	return nil
}

func listSequences(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	store := sequence.NewStore()
	if err := transcript.Load(cfg.TranscriptPath, store); err != nil {
		return err
	}

	all := store.ExportAll()
	if len(all) == 0 {
		fmt.Println("no sequences recorded")
		return nil
	}

	for slot := 1; slot <= sequence.NumSlots; slot++ {
		if seq, ok := all[slot]; ok {
			fmt.Printf("%2d: %s\n", slot, seq)
		}
	}

	return nil
}

func renameSequence(configPath string, slotArg string, name string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	slot, err := strconv.Atoi(slotArg)
	if err != nil {
		return fmt.Errorf("bad slot: %s", slotArg)
	}

	store := sequence.NewStore()
	if err := transcript.Load(cfg.TranscriptPath, store); err != nil {
		return err
	}

	if err := store.Rename(slot, name); err != nil {
		return err
	}

	return transcript.Save(cfg.TranscriptPath, store)
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.LogEcho {
		logger.SetEcho(os.Stderr, true)
	}

	controlMask, err := cfg.ControlButtons()
	if err != nil {
		return err
	}

	store := sequence.NewStore()
	if err := transcript.Load(cfg.TranscriptPath, store); err != nil {
		return err
	}

	in, err := sdlpad.Open(cfg.Device)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := xpad.Create("Padcorder Virtual Gamepad")
	if err != nil {
		return err
	}
	defer out.Close()

	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			logger.Logf(logger.Allow, "metrics", "listening on %s", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				logger.Logf(logger.Allow, "metrics", "%v", err)
			}
		}()
	}

	// a single saver goroutine serializes transcript writes. the session
	// commit path only pokes the channel
	save := make(chan bool, 1)
	go func() {
		for range save {
			if err := transcript.Save(cfg.TranscriptPath, store); err != nil {
				logger.Logf(logger.Allow, "transcript", "%v", err)
			}
		}
	}()

	ip, err := cfg.InterferencePolicy()
	if err != nil {
		return err
	}

	n := &consoleNotify{}
	s := session.NewSession(store, out, session.Options{
		Capture:      cfg.CapturePolicy(),
		Interference: ip,
		Loop:         cfg.LoopConfig(),
		OnCommit: func(_ int) {
			if cfg.Autosave {
				select {
				case save <- true:
				default:
				}
			}
		},
	}, n)
	n.s = s

	fmt.Printf("%s: %s=record  %s=play  %s/%s=slot\n", version.ApplicationName,
		cfg.RecordButton, cfg.PlayButton, cfg.SlotUpButton, cfg.SlotDownButton)

	err = poll(cfg, s, in, controlMask)

	s.Quit()
	if cfg.Autosave {
		if err := transcript.Save(cfg.TranscriptPath, store); err != nil {
			logger.Logf(logger.Allow, "transcript", "%v", err)
		}
	}
	close(save)

	return err
}

// poll runs the polling loop until interrupted or the input device fails.
// Operator control buttons are edge-detected into session triggers and
// stripped from the sample before it reaches the session, so driving the
// recorder is never itself recorded.
func poll(cfg *config.Config, s *session.Session, in driver.Input, controlMask pad.Buttons) error {
	type control struct {
		button pad.Buttons
		trg    session.Trigger
	}

	var controls []control
	for _, c := range []struct {
		name string
		trg  session.Trigger
	}{
		{cfg.RecordButton, session.TriggerRecord},
		{cfg.PlayButton, session.TriggerPlay},
		{cfg.SlotUpButton, session.TriggerSlotUp},
		{cfg.SlotDownButton, session.TriggerSlotDown},
	} {
		b, err := pad.ParseButton(c.name)
		if err != nil {
			return err
		}
		controls = append(controls, control{button: b, trg: c.trg})
	}

	intChan := make(chan os.Signal, 1)
	signal.Notify(intChan, os.Interrupt, syscall.SIGTERM)

	tck := time.NewTicker(cfg.PollingInterval())
	defer tck.Stop()

	var held pad.Buttons

	for {
		select {
		case <-intChan:
			fmt.Println("")
			return nil

		case <-tck.C:
			smp, err := in.Poll()
			if err != nil {
				return err
			}

			for _, c := range controls {
				if smp.Buttons.Holds(c.button) && !held.Holds(c.button) {
					if err := s.Do(c.trg); err != nil {
						logger.Logf(logger.Allow, "padcorder", "%v", err)
					}
				}
			}
			held = smp.Buttons

			smp.Buttons &^= controlMask
			s.Tick(smp)
		}
	}
}
