package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"funhub/internal/draw"
	"funhub/internal/grouping"
	"funhub/internal/ingest"
	"funhub/internal/models"
	"funhub/internal/randomizer"
)

var (
	drawCount   int
	drawRepeat  bool
	drawInstant bool

	groupSize  int
	groupTheme string
)

var drawCmd = &cobra.Command{
	Use:   "draw <names-file>",
	Short: "Draw winners from a names file",
	Long: `Reads a .csv or .txt names file ("-" for stdin) and draws winners one
spin at a time, printing every winner with its draw number.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, closeLog, err := loadConfig(io.Discard)
		if err != nil {
			return err
		}
		defer closeLog()

		participants, err := readParticipants(cmd, args[0])
		if err != nil {
			return err
		}
		pacing := pacingFrom(cfg.Draw)
		if drawInstant {
			pacing.Interval = 0
			pacing.SlowdownStep = 0
		}
		winners, err := runDraws(draw.NewDrawer(randomizer.New(), draw.NewScheduler(), pacing), participants, drawCount, drawRepeat)
		for _, w := range models.WinnerRecords(winners) {
			fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", w.Ordinal, w.Name)
		}
		return err
	},
}

var groupCmd = &cobra.Command{
	Use:   "group <names-file>",
	Short: "Split a names file into named groups",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, closeLog, err := loadConfig(io.Discard)
		if err != nil {
			return err
		}
		defer closeLog()

		participants, err := readParticipants(cmd, args[0])
		if err != nil {
			return err
		}
		size := groupSize
		if size == 0 {
			size = cfg.Grouping.DefaultSize
		}
		theme := groupTheme
		if theme == "" {
			theme = cfg.Grouping.DefaultTheme
		}
		if grouping.GroupCount(len(participants), size) == 0 {
			return fmt.Errorf("cannot split %d participants into groups of %d", len(participants), size)
		}

		partitioner := grouping.NewPartitioner(randomizer.New(), newNamer(cmd.Context(), cfg.Naming))
		printGroups(cmd.OutOrStdout(), partitioner.Partition(cmd.Context(), participants, size, theme))
		return nil
	},
}

func init() {
	drawCmd.Flags().IntVarP(&drawCount, "count", "n", 1, "number of winners to draw")
	drawCmd.Flags().BoolVar(&drawRepeat, "repeat", false, "allow a participant to win more than once")
	drawCmd.Flags().BoolVar(&drawInstant, "instant", false, "skip the spin delays")

	groupCmd.Flags().IntVarP(&groupSize, "size", "s", 0, "members per group (default from config)")
	groupCmd.Flags().StringVarP(&groupTheme, "theme", "t", "", "naming theme: superheroes, space, animals, nature or business")
}

func readParticipants(cmd *cobra.Command, path string) ([]models.Participant, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open names file: %w", err)
		}
		defer f.Close()
		r = f
	}
	names, err := ingest.ParseNames(r)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, errors.New("names file has no names")
	}
	return ingest.NewParticipants(names), nil
}

// runDraws spins count times and returns the winners, most recent first.
// It stops early once nobody is left to draw.
func runDraws(d *draw.Drawer, participants []models.Participant, count int, allowRepeat bool) ([]models.Participant, error) {
	for i := 0; i < count; i++ {
		done, ok := d.Start(participants, allowRepeat)
		if !ok {
			return d.History(), fmt.Errorf("only %d of %d winners drawn: no participants left", i, count)
		}
		<-done
	}
	return d.History(), nil
}

func printGroups(w io.Writer, groups []models.Group) {
	for _, g := range groups {
		fmt.Fprintf(w, "%s (%d)\n", g.Name, len(g.Members))
		fmt.Fprintf(w, "  %s\n", strings.Join(ingest.Names(g.Members), ", "))
	}
}
