package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"capdash/internal/config"
	"capdash/internal/hypergraph"
	"capdash/internal/logging"
	"capdash/internal/storage"
	"capdash/internal/view"
)

var (
	archiveListLimit int
	archivePruneKeep int
	archiveShowRaw   bool
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Manage archived graph snapshots",
	Long: `Store raw payload snapshots in the local archive and inspect how the
graph evolved between polls.

Examples:
  capdash archive save snapshot.json
  capdash archive list
  capdash archive diff 4fa3 9c01`,
}

var archiveSaveCmd = &cobra.Command{
	Use:   "save <payload.json>",
	Short: "Archive one raw snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchiveSave,
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived snapshots, newest first",
	Args:  cobra.NoArgs,
	RunE:  runArchiveList,
}

var archiveShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an archived snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchiveShow,
}

var archiveDiffCmd = &cobra.Command{
	Use:   "diff <old-id> <new-id>",
	Short: "Diff capability ids between two archived snapshots",
	Args:  cobra.ExactArgs(2),
	RunE:  runArchiveDiff,
}

var archivePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest snapshots",
	Args:  cobra.NoArgs,
	RunE:  runArchivePrune,
}

func init() {
	archiveListCmd.Flags().IntVarP(&archiveListLimit, "limit", "n", 20, "Maximum snapshots to list (0 for all)")
	archivePruneCmd.Flags().IntVar(&archivePruneKeep, "keep", 0, "Snapshots to keep (default: archive.keep from config)")
	archiveShowCmd.Flags().BoolVar(&archiveShowRaw, "raw", false, "Print the raw payload instead of metadata")

	archiveCmd.AddCommand(archiveSaveCmd)
	archiveCmd.AddCommand(archiveListCmd)
	archiveCmd.AddCommand(archiveShowCmd)
	archiveCmd.AddCommand(archiveDiffCmd)
	archiveCmd.AddCommand(archivePruneCmd)
	rootCmd.AddCommand(archiveCmd)
}

// openArchive wires config, database, and archive together for one command.
func openArchive(cfg *config.Config, logger *logging.Logger) (*storage.Archive, func(), error) {
	db, err := storage.Open(rootFlag, logger)
	if err != nil {
		return nil, nil, err
	}
	archive, err := storage.NewArchive(db, cfg.Archive.CompressionLevel, logger)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	cleanup := func() {
		archive.Close()
		db.Close()
	}
	return archive, cleanup, nil
}

func runArchiveSave(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	data, err := readPayload(args[0])
	if err != nil {
		return err
	}
	payload, err := parsePayload(data)
	if err != nil {
		return err
	}

	g := hypergraph.Ingest(payload, logger)
	counts := storage.Counts{
		Nodes:        len(payload.Nodes),
		Edges:        len(payload.Edges),
		Capabilities: len(g.Capabilities),
	}

	archive, cleanup, err := openArchive(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	snap, err := archive.Save(data, counts, time.Now())
	if err != nil {
		return err
	}
	fmt.Printf("archived %s (%d nodes, %d edges, %d capabilities)\n",
		snap.ID, snap.NodeCount, snap.EdgeCount, snap.CapabilityCount)
	return nil
}

func runArchiveList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	archive, cleanup, err := openArchive(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	snaps, err := archive.List(archiveListLimit)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		fmt.Println("no snapshots archived")
		return nil
	}
	for _, s := range snaps {
		fmt.Printf("%s  %s  nodes=%d edges=%d capabilities=%d\n",
			s.ID[:8], s.CapturedAt.Format(time.RFC3339), s.NodeCount, s.EdgeCount, s.CapabilityCount)
	}
	return nil
}

func runArchiveShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	archive, cleanup, err := openArchive(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	snap, data, err := archive.Get(args[0])
	if err != nil {
		return err
	}
	if archiveShowRaw {
		fmt.Println(string(data))
		return nil
	}
	fmt.Printf("id:           %s\n", snap.ID)
	fmt.Printf("captured at:  %s\n", snap.CapturedAt.Format(time.RFC3339))
	fmt.Printf("nodes:        %d\n", snap.NodeCount)
	fmt.Printf("edges:        %d\n", snap.EdgeCount)
	fmt.Printf("capabilities: %d\n", snap.CapabilityCount)
	fmt.Printf("payload size: %d bytes\n", snap.RawSize)
	return nil
}

func runArchiveDiff(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	archive, cleanup, err := openArchive(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	oldIDs, err := archivedCapabilityIDs(archive, args[0], logger)
	if err != nil {
		return err
	}
	newIDs, err := archivedCapabilityIDs(archive, args[1], logger)
	if err != nil {
		return err
	}

	added, removed := view.DiffIDSets(oldIDs, newIDs)
	if len(added) == 0 && len(removed) == 0 {
		fmt.Println("no capability changes")
		return nil
	}
	for _, id := range added {
		fmt.Printf("+ %s\n", id)
	}
	for _, id := range removed {
		fmt.Printf("- %s\n", id)
	}
	return nil
}

func archivedCapabilityIDs(archive *storage.Archive, id string, logger *logging.Logger) ([]string, error) {
	_, data, err := archive.Get(id)
	if err != nil {
		return nil, err
	}
	payload, err := parsePayload(data)
	if err != nil {
		return nil, err
	}
	g := hypergraph.Ingest(payload, logger)
	ids := make([]string, 0, len(g.Capabilities))
	for _, c := range g.Capabilities {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func runArchivePrune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	keep := archivePruneKeep
	if keep <= 0 {
		keep = cfg.Archive.Keep
	}

	archive, cleanup, err := openArchive(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	removed, err := archive.Prune(keep)
	if err != nil {
		return err
	}
	fmt.Printf("removed %d snapshots, kept newest %d\n", removed, keep)
	return nil
}
