package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	siteConfPath string
	watch        bool
	collections  []string
)

var rootCmd = &cobra.Command{
	Use:   "sitebuild",
	Short: "Build post pages and listing pages from markdown",
	Long: `sitebuild converts the markdown posts of each configured collection
into HTML pages with previous/next navigation, copies their images, and
updates the collection's listing page. With --watch it keeps running and
rebuilds a collection whenever its source directory changes.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := readConf(siteConfPath)
		if err != nil {
			return err
		}
		selected, err := conf.selectCollections(collections)
		if err != nil {
			return err
		}

		if err := renderSite(conf, selected, log.Default()); err != nil {
			return err
		}
		if !watch {
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return rerenderOnChange(ctx, conf, selected, log.Default())
	},
}

func init() {
	rootCmd.Flags().StringVar(&siteConfPath, "config", "", "config file (default is ./sitebuild.yaml, else the built-in collections)")
	rootCmd.Flags().BoolVar(&watch, "watch", false, "keep running and rebuild on changes to the source directories")
	rootCmd.Flags().StringSliceVar(&collections, "collection", nil, "only build the named collection (repeatable)")
}

// renderSite builds every selected collection. A failing collection does not
// stop the others; all failures are returned together.
func renderSite(conf *SiteConf, selected []*CollectionConf, logger *log.Logger) error {
	var errs []error
	for _, c := range selected {
		if _, err := buildCollection(conf, c, logger); err != nil {
			logger.Printf("Building %s failed: %v", c.Name, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
