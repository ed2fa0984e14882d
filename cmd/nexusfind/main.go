package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nexusfind/backend/internal/app"
	"github.com/nexusfind/backend/internal/config"
	"github.com/nexusfind/backend/internal/models"
	"github.com/nexusfind/backend/internal/services"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var configPath string

// openBoard reads the config and opens the board. The caller must defer
// board.Close.
func openBoard(ctx context.Context) (*app.Board, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		return nil, err
	}
	if cfg.LogLevel != "debug" {
		// Keep command output readable; warnings still go to stderr.
		logger = logger.WithOptions(zap.IncreaseLevel(zap.WarnLevel))
	}

	b, err := app.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing board: %w", err)
	}
	return b, nil
}

// liveItems subscribes and waits for the first snapshot. Seeding first means
// that snapshot already holds the demo items on a fresh store.
func liveItems(ctx context.Context, b *app.Board) error {
	if _, err := b.Cache.SeedIfEmpty(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	if err := b.Cache.Subscribe(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v (showing demo items)\n", err)
	}
	select {
	case <-b.Cache.Ready():
		return nil
	case <-time.After(30 * time.Second):
		return errors.New("timed out waiting for items")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func closeBoard(ctx context.Context, b *app.Board) {
	if err := b.Close(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
}

var rootCmd = &cobra.Command{
	Use:           "nexusfind",
	Short:         "Campus lost-and-found board",
	SilenceUsage:  true,
	SilenceErrors: false,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the local user id and verification state",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		b, err := openBoard(ctx)
		if err != nil {
			return err
		}
		defer closeBoard(ctx, b)

		id, err := b.Identity.Identity(ctx)
		if err != nil {
			return err
		}
		printIdentity(cmd.OutOrStdout(), id)
		return nil
	},
}

func printIdentity(w io.Writer, id models.Identity) {
	fmt.Fprintf(w, "User ID:     %s\n", id.UserID)
	if id.Verified {
		fmt.Fprintf(w, "Verified:    yes (%s)\n", id.Institution.DisplayName())
	} else {
		fmt.Fprintln(w, "Verified:    no")
	}
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify your institution",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		inst, _ := cmd.Flags().GetString("institution")
		email, _ := cmd.Flags().GetString("email")
		location, _ := cmd.Flags().GetString("location")

		req := models.VerifyRequest{Institution: models.Institution(strings.ToUpper(inst)), Email: email, Location: location}
		if errs := req.Validate(); len(errs) > 0 {
			return &services.ValidationError{Fields: errs}
		}

		b, err := openBoard(ctx)
		if err != nil {
			return err
		}
		defer closeBoard(ctx, b)

		out := cmd.OutOrStdout()
		if b.Advisor != nil {
			sg, err := b.Advisor.VerificationSafeguards(ctx, req)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Could not get safeguards from AI: %v\n", err)
			} else {
				fmt.Fprintf(out, "Safeguards:\n%s\n\nWarnings:\n%s\n\n", sg.Safeguards, sg.Warnings)
			}
		}

		if err := b.Identity.SetVerified(ctx, true, req.Institution); err != nil {
			return err
		}
		id, err := b.Identity.Identity(ctx)
		if err != nil {
			return err
		}
		printIdentity(out, id)
		return nil
	},
}

var unverifyCmd = &cobra.Command{
	Use:   "unverify",
	Short: "Clear your verification",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		b, err := openBoard(ctx)
		if err != nil {
			return err
		}
		defer closeBoard(ctx, b)

		if err := b.Identity.Unverify(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Verification cleared.")
		return nil
	},
}

func filterFromFlags(cmd *cobra.Command) (models.ItemFilter, error) {
	inst, _ := cmd.Flags().GetString("institution")
	category, _ := cmd.Flags().GetString("category")
	status, _ := cmd.Flags().GetString("status")
	all, _ := cmd.Flags().GetBool("all")

	f := models.ItemFilter{Category: category, ShowResolved: all}
	if inst != "" {
		parsed, ok := models.ParseInstitution(strings.ToUpper(inst))
		if !ok {
			return f, fmt.Errorf("unknown institution %q", inst)
		}
		f.Institution = parsed
	}
	if status != "" {
		f.Status = models.ItemStatus(strings.ToLower(status))
		if !f.Status.Valid() {
			return f, fmt.Errorf("status must be lost or found, got %q", status)
		}
	}
	return f, nil
}

func printItems(w io.Writer, items []models.Item, degraded bool) {
	lost, found := models.SplitByStatus(items)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, group := range []struct {
		title string
		items []models.Item
	}{{"LOST", lost}, {"FOUND", found}} {
		fmt.Fprintf(tw, "%s (%d)\n", group.title, len(group.items))
		for _, it := range group.items {
			state := ""
			if it.Resolved {
				state = "resolved"
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n", it.ID, it.Name, it.Institution, it.Category, state)
		}
	}
	tw.Flush()
	if degraded {
		fmt.Fprintln(w, "(offline: showing demo items)")
	}
}

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "List items",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		filter, err := filterFromFlags(cmd)
		if err != nil {
			return err
		}

		b, err := openBoard(ctx)
		if err != nil {
			return err
		}
		defer closeBoard(ctx, b)

		if err := liveItems(ctx, b); err != nil {
			return err
		}
		printItems(cmd.OutOrStdout(), filter.Apply(b.Cache.Items()), b.Cache.Degraded())
		return nil
	},
}

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "List a lost or found item",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		name, _ := cmd.Flags().GetString("name")
		description, _ := cmd.Flags().GetString("description")
		status, _ := cmd.Flags().GetString("status")
		category, _ := cmd.Flags().GetString("category")
		inst, _ := cmd.Flags().GetString("institution")
		imagePath, _ := cmd.Flags().GetString("image")

		b, err := openBoard(ctx)
		if err != nil {
			return err
		}
		defer closeBoard(ctx, b)

		v, err := b.Identity.Verification(ctx)
		if err != nil {
			return err
		}
		if !v.Verified {
			return errors.New("verify your institution first: nexusfind verify --institution ... --email ... --location ...")
		}

		draft := models.ItemDraft{
			Name:        name,
			Description: description,
			Status:      models.ItemStatus(strings.ToLower(status)),
			Institution: models.Institution(strings.ToUpper(inst)),
			Category:    category,
			ImageURL:    models.PlaceholderImageURL,
		}
		if draft.Institution == "" {
			draft.Institution = v.Institution
		}

		if imagePath != "" {
			f, err := os.Open(imagePath)
			if err != nil {
				return err
			}
			defer f.Close()

			userID, err := b.Identity.UserID(ctx)
			if err != nil {
				return err
			}
			draft.ImageURL, err = b.Images.Store(ctx, userID, filepath.Base(imagePath), f)
			if err != nil {
				return err
			}
		}

		id, err := b.Cache.AddItem(ctx, draft)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Listed %s\n", id)
		return nil
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <item-id>",
	Short: "Toggle the resolved flag on one of your items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		b, err := openBoard(ctx)
		if err != nil {
			return err
		}
		defer closeBoard(ctx, b)

		if err := liveItems(ctx, b); err != nil {
			return err
		}

		item, ok := b.Cache.Lookup(args[0])
		if !ok {
			return fmt.Errorf("item %s not found", args[0])
		}
		userID, err := b.Identity.UserID(ctx)
		if err != nil {
			return err
		}
		if item.UserID != userID {
			return errors.New("only the person who listed an item can resolve it")
		}

		resolved, err := b.Cache.ToggleResolved(ctx, item.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s resolved=%v\n", item.ID, resolved)
		return nil
	},
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize <description>",
	Short: "Get AI suggestions for an item description",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		b, err := openBoard(ctx)
		if err != nil {
			return err
		}
		defer closeBoard(ctx, b)

		if b.Advisor == nil {
			return services.ErrAdvisorNotConfigured
		}
		out, err := b.Advisor.OptimizeDescription(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out.Suggestions)
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print every snapshot until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		filter, err := filterFromFlags(cmd)
		if err != nil {
			return err
		}

		b, err := openBoard(ctx)
		if err != nil {
			return err
		}
		defer closeBoard(context.Background(), b)

		if err := liveItems(ctx, b); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for items := range b.Cache.Watch(ctx) {
			fmt.Fprintf(out, "--- %s\n", time.Now().Format(time.TimeOnly))
			printItems(out, filter.Apply(items), b.Cache.Degraded())
		}
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write the demo items if the store is empty",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		b, err := openBoard(ctx)
		if err != nil {
			return err
		}
		defer closeBoard(ctx, b)

		n, err := b.Cache.SeedIfEmpty(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d items\n", n)
		return nil
	},
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("institution", "i", "", "Only this institution (IIITA, IIITH, IIITD, IIITB)")
	cmd.Flags().StringP("category", "c", "", "Only this category")
	cmd.Flags().StringP("status", "s", "", "Only lost or found")
	cmd.Flags().BoolP("all", "a", false, "Include resolved items")
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "TOML config file (default $NEXUSFIND_CONFIG)")

	rootCmd.AddCommand(whoamiCmd)

	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().String("institution", "", "Institution code")
	verifyCmd.Flags().String("email", "", "Institution email address")
	verifyCmd.Flags().String("location", "", "Campus location")

	rootCmd.AddCommand(unverifyCmd)

	rootCmd.AddCommand(itemsCmd)
	addFilterFlags(itemsCmd)

	rootCmd.AddCommand(postCmd)
	postCmd.Flags().String("name", "", "Item name")
	postCmd.Flags().String("description", "", "Item description")
	postCmd.Flags().String("status", "", "lost or found")
	postCmd.Flags().String("category", "", "Item category")
	postCmd.Flags().String("institution", "", "Institution code (default: your verified institution)")
	postCmd.Flags().String("image", "", "Path to a photo")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(optimizeCmd)

	rootCmd.AddCommand(watchCmd)
	addFilterFlags(watchCmd)

	rootCmd.AddCommand(seedCmd)
}
