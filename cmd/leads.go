package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/harborview-living/directory-cli/internal/crm"
	"github.com/harborview-living/directory-cli/internal/model"
	"github.com/harborview-living/directory-cli/internal/store"
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Inspect and deliver captured leads",
}

var (
	leadsListStatus string
	leadsListLimit  int
)

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List captured leads",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		leads, err := st.ListLeads(ctx, store.LeadFilter{
			Status: model.LeadStatus(leadsListStatus),
			Limit:  leadsListLimit,
		})
		if err != nil {
			return eris.Wrap(err, "leads list")
		}

		if len(leads) == 0 {
			fmt.Println("No leads found")
			return nil
		}

		fmt.Printf("%-36s %-22s %-28s %-8s %s\n", "ID", "Name", "Email", "Status", "Created")
		fmt.Println(strings.Repeat("-", 110))
		for _, l := range leads {
			fmt.Printf("%-36s %-22s %-28s %-8s %s\n",
				l.ID,
				strings.TrimSpace(l.FirstName+" "+l.LastName),
				l.Email,
				l.Status,
				l.CreatedAt.Format("2006-01-02 15:04"),
			)
		}
		return nil
	},
}

var leadsSyncLimit int

var leadsSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Deliver pending leads to Salesforce",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		client, err := initSalesforce()
		if err != nil {
			return err
		}

		report, err := crm.NewSyncer(st, client).SyncPending(ctx, leadsSyncLimit)
		if err != nil {
			return eris.Wrap(err, "leads sync")
		}

		fmt.Printf("Synced %d, skipped %d duplicates, %d failed\n",
			report.Synced, report.Skipped, report.Failed)
		if report.Failed > 0 {
			return eris.Errorf("leads sync: %d leads failed", report.Failed)
		}
		return nil
	},
}

func init() {
	leadsListCmd.Flags().StringVar(&leadsListStatus, "status", "", "filter by status (new, synced, failed)")
	leadsListCmd.Flags().IntVar(&leadsListLimit, "limit", 50, "maximum leads to list")
	leadsSyncCmd.Flags().IntVar(&leadsSyncLimit, "limit", 0, "maximum leads to sync (0 = all pending)")
	leadsCmd.AddCommand(leadsListCmd)
	leadsCmd.AddCommand(leadsSyncCmd)
	rootCmd.AddCommand(leadsCmd)
}
