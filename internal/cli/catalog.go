package cli

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/glorpus-work/shelfsync/internal/logger"
	"github.com/glorpus-work/shelfsync/pkg/catalog"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// NewCatalogCmd creates the catalog command with subcommands.
func NewCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the local game catalog",
		Long:  "Import game manifests into the local catalog database and inspect its content",
	}

	cmd.AddCommand(
		newCatalogImportCmd(),
		newCatalogListCmd(),
	)

	return cmd
}

func newCatalogImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import MANIFEST",
		Short: "Import a manifest into the local catalog",
		Long: `Import every game of a YAML manifest into the local catalog.
Games already present are replaced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := catalog.OpenStore(cfg.Catalog.DatabasePath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			return importManifest(cmd.Context(), store, args[0])
		},
	}
}

func newCatalogListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List games in the local catalog",
		Args:  cobra.NoArgs,
		RunE:  runCatalogList,
	}
}

func runCatalogList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := catalog.OpenStore(cfg.Catalog.DatabasePath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	games, err := store.Games(cmd.Context())
	if err != nil {
		return err
	}
	if len(games) == 0 {
		logger.Info("The catalog is empty, import a manifest first")
		return nil
	}

	return pterm.DefaultTable.
		WithHasHeader().
		WithWriter(cmd.OutOrStdout()).
		WithData(catalogTable(games)).
		Render()
}

// catalogTable returns one row per game, the header first.
func catalogTable(games []*catalog.Game) pterm.TableData {
	data := pterm.TableData{{"ID", "Title", "Installers", "Extras", "Size"}}
	for _, game := range games {
		var size uint64
		for _, entry := range game.Entries() {
			size += uint64(entry.Size())
		}
		data = append(data, []string{
			strconv.FormatInt(game.ID, 10),
			game.Title,
			fmt.Sprint(len(game.Installers)),
			fmt.Sprint(len(game.Extras)),
			humanize.IBytes(size),
		})
	}
	return data
}
